package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// MessageID returns the stable identity of an issue: owner/repo#number.
func MessageID(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s#%d", owner, repo, number)
}

// IssueText renders an issue as a root message text: title, blank line, body.
func IssueText(issue *gh.Issue) string {
	if issue.GetBody() == "" {
		return issue.GetTitle()
	}
	return issue.GetTitle() + "\n\n" + issue.GetBody()
}

// FetchIssues retrieves all issues with their comments as messages, in
// creation order, and the html_url of each message keyed by identity.
func FetchIssues(ctx context.Context, client *Client, cfg *Config) ([]domain.Message, map[string]string, error) {
	issues, err := client.ListIssues(ctx, cfg.Owner, cfg.Repo, cfg.State)
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(issues))
	links := make(map[string]string, len(issues))

	for _, issue := range issues {
		id := MessageID(cfg.Owner, cfg.Repo, issue.GetNumber())
		msg := domain.Message{
			ID:     id,
			Author: issue.GetUser().GetLogin(),
			Text:   IssueText(issue),
		}

		if issue.GetComments() > 0 {
			comments, err := client.ListComments(ctx, cfg.Owner, cfg.Repo, issue.GetNumber())
			switch {
			case err == nil:
				msg.Replies = make([]domain.Reply, 0, len(comments))
				for _, comment := range comments {
					msg.Replies = append(msg.Replies, domain.Reply{
						Author: comment.GetUser().GetLogin(),
						Text:   comment.GetBody(),
					})
				}
			case messageScoped(err):
				logger.Warn("github: comments of %s unavailable: %v", id, err)
				msg.ThreadError = err.Error()
			default:
				return nil, nil, err
			}
		}

		messages = append(messages, msg)
		if url := issue.GetHTMLURL(); url != "" {
			links[id] = url
		}
	}

	return messages, links, nil
}
