package slack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// Default configuration values.
const (
	DefaultTypes             = "public_channel"
	DefaultPageSize          = 200
	DefaultRequestsPerSecond = 0.8
)

// Config holds the parsed configuration for a Slack source.
type Config struct {
	// Channel is the channel name without '#', or a channel ID.
	Channel string

	// Types are the conversation types searched when resolving the name.
	Types []string

	// PageSize is the page size of list and history calls.
	PageSize int

	// RequestsPerSecond throttles API calls.
	RequestsPerSecond float64

	// APIURL overrides the Web API base URL. Empty uses slack.com.
	APIURL string
}

// ParseConfig parses a source into a Config.
func ParseConfig(source domain.Source) (*Config, error) {
	field := "sources." + source.Name
	cfg := &Config{
		Channel:           strings.TrimPrefix(strings.TrimSpace(source.Channel), "#"),
		Types:             splitList(source.ConfigValue("types", DefaultTypes)),
		PageSize:          DefaultPageSize,
		RequestsPerSecond: DefaultRequestsPerSecond,
		APIURL:            source.ConfigValue("api_url", ""),
	}
	if cfg.Channel == "" {
		return nil, domain.NewConfigurationError(field+".channel", "must not be empty")
	}

	if v := source.ConfigValue("page_size", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			return nil, domain.NewConfigurationError(field+".config.page_size",
				fmt.Sprintf("must be within [1, 1000], got %q", v))
		}
		cfg.PageSize = n
	}

	if v := source.ConfigValue("requests_per_second", ""); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, domain.NewConfigurationError(field+".config.requests_per_second",
				fmt.Sprintf("invalid rate %q", v))
		}
		cfg.RequestsPerSecond = rps
	}

	if cfg.APIURL != "" && !strings.HasSuffix(cfg.APIURL, "/") {
		cfg.APIURL += "/"
	}

	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
