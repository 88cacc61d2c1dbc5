// Package export implements a connector over a Slack-style JSON export file.
//
// The file holds a JSON array of messages:
//
//	[{"id": "1700000001.000100", "user": "U1", "text": "...",
//	  "thread_replies": [{"user": "U2", "text": "..."}]}]
//
// which is also the layout the file staging store writes, so a staged batch
// can be re-ingested as an export. The source channel is the file path.
//
// Optional source config keys:
//
//   - permalink_base: workspace archive URL such as
//     https://acme.slack.com/archives/C024BE91L. The permalink of a message is
//     the base followed by "/p" and the ts with its dot removed.
//   - channel_name: name reported by List. Default: the file name stem.
//
// A missing file is [domain.ErrSourceEmpty]; an unreadable or malformed file
// is [domain.ErrSourceUnavailable].
package export
