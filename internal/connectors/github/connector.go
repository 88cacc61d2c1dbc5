package github

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector reads one repository's issues and comments.
type Connector struct {
	config *Config
	client *Client

	mu         sync.RWMutex
	permalinks map[string]string
}

// New creates a new GitHub connector.
func New(cfg *Config, client *Client) *Connector {
	return &Connector{
		config:     cfg,
		client:     client,
		permalinks: make(map[string]string),
	}
}

// Builder returns a connector builder that authenticates with token.
func Builder(token string) driven.ConnectorBuilder {
	return func(ctx context.Context, source domain.Source) (driven.Connector, error) {
		cfg, err := ParseConfig(source)
		if err != nil {
			return nil, err
		}
		client, err := NewClient(ctx, token, cfg.BaseURL, cfg.RequestsPerSecond)
		if err != nil {
			return nil, err
		}
		return New(cfg, client), nil
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.SourceType {
	return domain.SourceGitHub
}

// FetchMessages returns every issue of the repository with its comments.
func (c *Connector) FetchMessages(ctx context.Context) ([]domain.Message, error) {
	messages, links, err := FetchIssues(ctx, c.client, c.config)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: repository %s: %w", domain.ErrSourceEmpty, c.config.FullName(), err)
		}
		return nil, fmt.Errorf("repository %s: %w", c.config.FullName(), err)
	}

	c.mu.Lock()
	c.permalinks = links
	c.mu.Unlock()

	logger.Debug("github: fetched %d issues from %s", len(messages), c.config.FullName())
	return messages, nil
}

// Permalink returns the issue html_url captured by the last fetch, or "".
func (c *Connector) Permalink(_ context.Context, messageID string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.permalinks[messageID], nil
}

// List returns the repositories visible to the token.
func (c *Connector) List(ctx context.Context) ([]string, error) {
	return c.client.ListRepositories(ctx)
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	c.permalinks = make(map[string]string)
	c.mu.Unlock()
	return nil
}
