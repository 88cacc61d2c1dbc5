package slack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector reads one Slack channel with its threads.
type Connector struct {
	config  *Config
	client  *slack.Client
	limiter *rate.Limiter

	mu        sync.Mutex
	channelID string
}

// New creates a new Slack connector authenticated with token.
func New(cfg *Config, token string) (*Connector, error) {
	if token == "" {
		return nil, domain.NewConfigurationError("credentials.slack_token", "SLACK_TOKEN is not set")
	}

	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}

	return &Connector{
		config:  cfg,
		client:  slack.New(token, opts...),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Builder returns a connector builder that authenticates with token.
func Builder(token string) driven.ConnectorBuilder {
	return func(_ context.Context, source domain.Source) (driven.Connector, error) {
		cfg, err := ParseConfig(source)
		if err != nil {
			return nil, err
		}
		return New(cfg, token)
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.SourceType {
	return domain.SourceSlack
}

// FetchMessages returns the channel history in API order with every thread's
// replies in chronological order.
func (c *Connector) FetchMessages(ctx context.Context) ([]domain.Message, error) {
	channelID, err := c.resolveChannel(ctx)
	if err != nil {
		return nil, err
	}

	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     c.config.PageSize,
	}

	var messages []domain.Message
	for {
		var resp *slack.GetConversationHistoryResponse
		err := c.call(ctx, "conversations.history", func() error {
			var callErr error
			resp, callErr = c.client.GetConversationHistoryContext(ctx, params)
			return callErr
		})
		if err != nil {
			return nil, err
		}

		for i := range resp.Messages {
			msg := &resp.Messages[i]
			out := domain.Message{
				ID:     msg.Timestamp,
				Author: msg.User,
				Text:   msg.Text,
			}
			if msg.ThreadTimestamp != "" {
				replies, err := c.fetchReplies(ctx, channelID, msg.Timestamp)
				switch {
				case err == nil:
					out.Replies = replies
				case messageScoped(err):
					logger.Warn("slack: thread %s unavailable: %v", msg.Timestamp, err)
					out.ThreadError = err.Error()
				default:
					return nil, err
				}
			}
			messages = append(messages, out)
		}

		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		params.Cursor = resp.ResponseMetaData.NextCursor
	}

	logger.Debug("slack: fetched %d messages from #%s", len(messages), c.config.Channel)
	return messages, nil
}

// fetchReplies reads a thread and drops its first element, the root.
func (c *Connector) fetchReplies(ctx context.Context, channelID, ts string) ([]domain.Reply, error) {
	params := &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: ts,
		Limit:     c.config.PageSize,
	}

	var replies []domain.Reply
	first := true
	for {
		var (
			msgs       []slack.Message
			hasMore    bool
			nextCursor string
		)
		err := c.call(ctx, "conversations.replies", func() error {
			var callErr error
			msgs, hasMore, nextCursor, callErr = c.client.GetConversationRepliesContext(ctx, params)
			return callErr
		})
		if err != nil {
			return nil, err
		}

		if first && len(msgs) > 0 {
			msgs = msgs[1:]
		}
		first = false

		for i := range msgs {
			replies = append(replies, domain.Reply{Author: msgs[i].User, Text: msgs[i].Text})
		}

		if !hasMore || nextCursor == "" {
			break
		}
		params.Cursor = nextCursor
	}

	return replies, nil
}

// Permalink resolves a message link with chat.getPermalink.
// A message Slack no longer knows has no link.
func (c *Connector) Permalink(ctx context.Context, messageID string) (string, error) {
	channelID, err := c.resolveChannel(ctx)
	if err != nil {
		return "", err
	}

	var link string
	err = c.call(ctx, "chat.getPermalink", func() error {
		var callErr error
		link, callErr = c.client.GetPermalinkContext(ctx, &slack.PermalinkParameters{
			Channel: channelID,
			Ts:      messageID,
		})
		return callErr
	})
	if err != nil {
		if errorCode(err) == codeMessageNotFound {
			return "", nil
		}
		return "", err
	}
	return link, nil
}

// List returns the names of the channels visible to the token.
func (c *Connector) List(ctx context.Context) ([]string, error) {
	var names []string
	err := c.eachChannel(ctx, func(ch slack.Channel) bool {
		names = append(names, ch.Name)
		return true
	})
	return names, err
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// resolveChannel finds the configured channel's ID once and caches it.
func (c *Connector) resolveChannel(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channelID != "" {
		return c.channelID, nil
	}

	var found string
	err := c.eachChannel(ctx, func(ch slack.Channel) bool {
		if ch.Name == c.config.Channel || ch.ID == c.config.Channel {
			found = ch.ID
			return false
		}
		return true
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("slack: channel %q: %w", c.config.Channel, domain.ErrSourceEmpty)
	}

	c.channelID = found
	return found, nil
}

// eachChannel walks conversations.list until fn returns false or pages run out.
func (c *Connector) eachChannel(ctx context.Context, fn func(slack.Channel) bool) error {
	params := &slack.GetConversationsParameters{
		Types:           c.config.Types,
		Limit:           c.config.PageSize,
		ExcludeArchived: true,
	}

	for {
		var (
			channels   []slack.Channel
			nextCursor string
		)
		err := c.call(ctx, "conversations.list", func() error {
			var callErr error
			channels, nextCursor, callErr = c.client.GetConversationsContext(ctx, params)
			return callErr
		})
		if err != nil {
			return err
		}

		for _, ch := range channels {
			if !fn(ch) {
				return nil
			}
		}

		if nextCursor == "" {
			return nil
		}
		params.Cursor = nextCursor
	}
}

// call throttles fn and retries it once after a rate limited response.
func (c *Connector) call(ctx context.Context, operation string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("slack: %s: rate limit wait: %w", operation, err)
		}

		err := fn()
		var rateErr *slack.RateLimitedError
		if attempt == 0 && errors.As(err, &rateErr) {
			logger.Warn("slack: %s rate limited, retrying after %s", operation, rateErr.RetryAfter)
			if err := sleep(ctx, rateErr.RetryAfter); err != nil {
				return fmt.Errorf("slack: %s: %w", operation, err)
			}
			continue
		}
		return wrapError(err, operation)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
