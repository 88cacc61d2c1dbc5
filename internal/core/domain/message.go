package domain

// Message is a root conversational unit fetched from a source platform.
type Message struct {
	// ID is the origin-assigned identity (e.g. a Slack ts).
	// It is stable across fetches and is the indexing identity.
	ID string `json:"id"`

	// Author is the origin-assigned author identity.
	Author string `json:"user,omitempty"`

	// Text is the raw root message text.
	Text string `json:"text"`

	// Replies holds the thread replies in chronological order.
	// The root message is never part of this list.
	Replies []Reply `json:"thread_replies"`

	// ThreadError is set when the thread could not be fetched.
	// The message is then recorded as failed instead of being indexed
	// without its replies.
	ThreadError string `json:"thread_error,omitempty"`
}

// Reply is a message attached to a root message's thread.
type Reply struct {
	// Author is the origin-assigned author identity.
	Author string `json:"user,omitempty"`

	// Text is the raw reply text.
	Text string `json:"text"`
}
