package github

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// Issue state filters accepted by the issues API.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all"
)

// Config holds the parsed configuration for a GitHub source.
type Config struct {
	// Owner and Repo identify the repository read as the channel.
	Owner string
	Repo  string

	// State filters issues by state. Default: all.
	State string

	// BaseURL overrides the API endpoint (GitHub Enterprise). Empty uses api.github.com.
	BaseURL string

	// RequestsPerSecond throttles API calls. Zero uses ProactiveRate.
	RequestsPerSecond float64
}

// ParseConfig parses a source into a Config.
func ParseConfig(source domain.Source) (*Config, error) {
	owner, repo, err := SplitRepository(source.Channel)
	if err != nil {
		return nil, domain.NewConfigurationError("sources."+source.Name+".channel", err.Error())
	}

	cfg := &Config{
		Owner:   owner,
		Repo:    repo,
		State:   strings.ToLower(source.ConfigValue("state", StateAll)),
		BaseURL: source.ConfigValue("base_url", ""),
	}

	switch cfg.State {
	case StateOpen, StateClosed, StateAll:
	default:
		return nil, domain.NewConfigurationError("sources."+source.Name+".config.state",
			fmt.Sprintf("unknown issue state %q", cfg.State))
	}

	if rps := source.ConfigValue("requests_per_second", ""); rps != "" {
		v, err := strconv.ParseFloat(rps, 64)
		if err != nil || v <= 0 {
			return nil, domain.NewConfigurationError("sources."+source.Name+".config.requests_per_second",
				fmt.Sprintf("invalid rate %q", rps))
		}
		cfg.RequestsPerSecond = v
	}

	return cfg, nil
}

// SplitRepository splits "owner/repo" into its parts.
func SplitRepository(fullName string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidRepository
	}
	return parts[0], parts[1], nil
}

// FullName returns "owner/repo".
func (c *Config) FullName() string {
	return c.Owner + "/" + c.Repo
}
