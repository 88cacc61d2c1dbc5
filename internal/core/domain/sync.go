package domain

import "time"

// Classification is the change detector's verdict for one message.
type Classification int

const (
	// ClassInsert means no record exists for the identity.
	ClassInsert Classification = iota

	// ClassUpdate means a record exists with a different document.
	ClassUpdate

	// ClassUnchanged means a record exists with a byte-equal document.
	ClassUnchanged
)

// String returns the string representation.
func (c Classification) String() string {
	switch c {
	case ClassInsert:
		return "insert"
	case ClassUpdate:
		return "update"
	case ClassUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// NoPermalink is written to the audit log when no link could be resolved.
const NoPermalink = "No permalink available"

// AuditEntry is one inserted or updated message as written to the audit log.
type AuditEntry struct {
	// Document is the formatted document text.
	Document string

	// Permalink is the resolved link, or "" when unresolved.
	Permalink string
}

// Link returns the permalink, or the NoPermalink sentinel.
func (e AuditEntry) Link() string {
	if e.Permalink == "" {
		return NoPermalink
	}
	return e.Permalink
}

// MessageFailure records why one message could not be indexed.
type MessageFailure struct {
	// MessageID is the failed message identity.
	MessageID string

	// Stage is the pipeline step that failed (classify, embed, upsert).
	Stage string

	// Err is the final error after retries.
	Err error
}

// SyncReport summarises one sync run.
type SyncReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// Source is the configured source name.
	Source string

	// Collection is the collection that was written.
	Collection string

	// Total is the number of messages fetched.
	Total int

	// Inserted, Updated, Skipped and Failed count messages by outcome.
	Inserted int
	Updated  int
	Skipped  int
	Failed   int

	// Failures lists every failed message.
	Failures []MessageFailure

	// SourceEmpty is true when the target channel could not be found.
	SourceEmpty bool

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run ended.
	FinishedAt time.Time
}

// Processed returns the number of messages that reached an outcome.
func (r *SyncReport) Processed() int {
	return r.Inserted + r.Updated + r.Skipped + r.Failed
}

// Changed returns the number of messages written to the collection.
func (r *SyncReport) Changed() int {
	return r.Inserted + r.Updated
}

// Duration returns how long the run took.
func (r *SyncReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
