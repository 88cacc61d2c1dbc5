package domain

import "fmt"

// SourceType identifies an origin platform variant.
// The set of variants is closed: every value is declared below.
type SourceType string

const (
	// SourceSlack reads a Slack channel and its threads.
	SourceSlack SourceType = "slack"

	// SourceGitHub reads a repository's issues and their comments.
	SourceGitHub SourceType = "github"

	// SourceExport reads a Slack-style JSON export file.
	SourceExport SourceType = "export"

	// SourceJira is declared but not implemented. Building it fails with ErrNotImplemented.
	SourceJira SourceType = "jira"
)

// SourceTypes returns every declared source type in a stable order.
func SourceTypes() []SourceType {
	return []SourceType{SourceSlack, SourceGitHub, SourceExport, SourceJira}
}

// IsValid returns true if the source type is one of the declared variants.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceSlack, SourceGitHub, SourceExport, SourceJira:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Description returns a human-readable description of the source type.
func (t SourceType) Description() string {
	switch t {
	case SourceSlack:
		return "Slack channel with threads"
	case SourceGitHub:
		return "GitHub issues with comments"
	case SourceExport:
		return "Slack-style JSON export file"
	case SourceJira:
		return "Jira project (not implemented)"
	default:
		return "Unknown"
	}
}

// Source is a configured origin the sync engine pulls from.
type Source struct {
	// Name is the unique, human-readable source name.
	Name string `toml:"name"`

	// Type selects the connector variant.
	Type SourceType `toml:"type"`

	// Channel is the channel, stream or repository to read
	// (e.g. "general", "owner/repo", or an export file path).
	Channel string `toml:"channel"`

	// Collection overrides the collection name. Defaults to the source type.
	Collection string `toml:"collection,omitempty"`

	// Config holds connector-specific options.
	Config map[string]string `toml:"config,omitempty"`
}

// CollectionName returns the collection this source's records belong to.
func (s *Source) CollectionName() string {
	if s.Collection != "" {
		return s.Collection
	}
	return string(s.Type)
}

// Validate checks that the source is well formed.
func (s *Source) Validate() error {
	if s.Name == "" {
		return NewConfigurationError("sources.name", "must not be empty")
	}
	if !s.Type.IsValid() {
		return NewConfigurationError("sources."+s.Name+".type",
			fmt.Sprintf("unknown source type %q", s.Type))
	}
	if s.Channel == "" {
		return NewConfigurationError("sources."+s.Name+".channel", "must not be empty")
	}
	return nil
}

// ConfigValue returns a connector option or the fallback when unset.
func (s *Source) ConfigValue(key, fallback string) string {
	if v, ok := s.Config[key]; ok && v != "" {
		return v
	}
	return fallback
}
