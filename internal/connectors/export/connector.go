package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector reads messages from an export file.
type Connector struct {
	path          string
	channelName   string
	permalinkBase string
}

// New creates a connector for the export file at path.
func New(path, channelName, permalinkBase string) *Connector {
	if channelName == "" {
		base := filepath.Base(path)
		channelName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &Connector{
		path:          path,
		channelName:   channelName,
		permalinkBase: strings.TrimSuffix(permalinkBase, "/"),
	}
}

// Build is the connector builder for export sources.
func Build(_ context.Context, source domain.Source) (driven.Connector, error) {
	if source.Channel == "" {
		return nil, domain.NewConfigurationError("sources."+source.Name+".channel", "export file path is required")
	}
	return New(
		ExpandPath(source.Channel),
		source.ConfigValue("channel_name", ""),
		source.ConfigValue("permalink_base", ""),
	), nil
}

// ExpandPath resolves a leading "~/" against the home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.SourceType {
	return domain.SourceExport
}

// FetchMessages reads and decodes the export file.
func (c *Connector) FetchMessages(ctx context.Context) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("export %s: %w", c.path, domain.ErrSourceEmpty)
		}
		return nil, fmt.Errorf("export %s: %w: %w", c.path, domain.ErrSourceUnavailable, err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("export %s: %w: decode: %w", c.path, domain.ErrSourceUnavailable, err)
	}

	logger.Debug("export: read %d messages from %s", len(messages), c.path)
	return messages, nil
}

// Permalink builds a link from permalink_base, or "" when none is configured.
func (c *Connector) Permalink(_ context.Context, messageID string) (string, error) {
	if c.permalinkBase == "" || messageID == "" {
		return "", nil
	}
	return c.permalinkBase + "/p" + strings.ReplaceAll(messageID, ".", ""), nil
}

// List returns the single channel the export file holds.
func (c *Connector) List(_ context.Context) ([]string, error) {
	return []string{c.channelName}, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}
