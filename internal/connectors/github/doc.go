// Package github implements a connector that reads one repository's issues
// as conversations.
//
// Each issue is a root message whose text is the issue title, a blank line and
// the issue body. The issue comments, in creation order, are the thread
// replies. Pull requests are excluded even though the issues endpoint lists
// them.
//
// # Identity and Links
//
// Message identity is "owner/repo#number", stable across runs. The permalink
// of a message is the issue's html_url as returned by the API during the last
// fetch; an identity that was not part of that fetch has no link.
//
// # Configuration
//
// The source channel is "owner/repo". Optional source config keys:
//
//   - state: issue state filter, one of open, closed, all. Default: all.
//   - base_url: API base URL for GitHub Enterprise. Default: api.github.com.
//
// The token is read from credentials.github_token (or GITHUB_TOKEN) and sent
// through a static oauth2 token source. It is never refreshed.
//
// # Rate Limiting
//
// Requests are throttled proactively by a token bucket and reactively from the
// X-RateLimit-Remaining and X-RateLimit-Reset response headers. When the
// remaining quota falls under a small reserve, the client waits for the reset.
//
// # Error Handling
//
// A missing repository is reported as [domain.ErrSourceEmpty]. Every other API
// failure, rate limit exhaustion included, is [domain.ErrSourceUnavailable] and
// aborts the sync.
package github
