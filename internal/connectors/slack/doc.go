// Package slack implements a connector that reads one Slack channel and its
// threads through the Web API.
//
// The channel is resolved by name over the paginated conversations.list
// endpoint. Its history is read page by page from conversations.history and,
// for every message carrying a thread timestamp, the thread is read from
// conversations.replies with the root dropped. Message identity is the Slack
// ts. Permalinks come from chat.getPermalink.
//
// # Configuration
//
// The source channel is the channel name, with or without a leading '#', or a
// channel ID. Optional source config keys:
//
//   - types: conversation types searched when resolving the name.
//     Default: public_channel.
//   - page_size: page size of list and history calls. Default: 200.
//   - requests_per_second: proactive throttle. Default: 0.8 (Tier 3).
//   - api_url: Web API base URL. Default: https://slack.com/api/.
//
// # Rate Limiting
//
// Calls are throttled by a token bucket. A rate limited response waits for
// the Retry-After duration the server sent and is retried once.
//
// # Error Handling
//
// An unknown channel is [domain.ErrSourceEmpty]. Authentication failures,
// repeated rate limiting and transport failures are
// [domain.ErrSourceUnavailable].
package slack
