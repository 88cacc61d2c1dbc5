package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// Slack error codes with a specific classification.
const (
	codeChannelNotFound = "channel_not_found"
	codeMessageNotFound = "message_not_found"
)

// Slack error codes that concern the token or workspace rather than one call.
var fatalCodes = map[string]bool{
	"invalid_auth":     true,
	"not_authed":       true,
	"account_inactive": true,
	"token_revoked":    true,
	"token_expired":    true,
	"missing_scope":    true,
	"not_in_channel":   true,
	"ratelimited":      true,
}

// wrapError converts slack-go errors to domain error classes.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("slack: %s: %w", operation, err)
	}

	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("slack: %s: %w: %w: %w", operation, domain.ErrSourceUnavailable, domain.ErrTransient, err)
	}

	if errorCode(err) == codeChannelNotFound {
		return fmt.Errorf("slack: %s: %w: %w", operation, domain.ErrSourceEmpty, err)
	}

	return fmt.Errorf("slack: %s: %w: %w", operation, domain.ErrSourceUnavailable, err)
}

// errorCode returns the Slack API error code carried by err, or "".
func errorCode(err error) string {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return apiErr.Err
	}
	return ""
}

// messageScoped reports whether err is an API error confined to the requested
// object, such as a thread that no longer exists. Transport failures, rate
// limits and token problems are not.
func messageScoped(err error) bool {
	code := errorCode(err)
	return code != "" && !fatalCodes[code]
}
