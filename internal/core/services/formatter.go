package services

import (
	"strings"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// Document boundary markers.
const (
	MarkerMessageStart = "|<message_start>|"
	MarkerMessageEnd   = "|<message_end>|"
	MarkerThreadStart  = "|<thread_start>|"
	MarkerThreadEnd    = "|<thread_end>|"
)

// threadPrefix introduces a reply when a document is rendered for display.
const threadPrefix = "\n  └─ "

// FormatMessage renders a message and its thread replies into the canonical
// indexable document. The output depends only on the root text and the
// ordered reply texts.
func FormatMessage(msg domain.Message) string {
	var b strings.Builder
	b.WriteString(MarkerMessageStart)
	b.WriteByte(' ')
	b.WriteString(msg.Text)
	b.WriteByte(' ')
	b.WriteString(MarkerMessageEnd)

	for _, reply := range msg.Replies {
		b.WriteByte(' ')
		b.WriteString(MarkerThreadStart)
		b.WriteByte(' ')
		b.WriteString(reply.Text)
		b.WriteByte(' ')
		b.WriteString(MarkerThreadEnd)
	}
	return b.String()
}

// CleanDocument strips boundary markers for display.
// Each thread reply is placed on its own indented line.
func CleanDocument(doc string) string {
	r := strings.NewReplacer(
		MarkerMessageStart+" ", "",
		MarkerMessageStart, "",
		" "+MarkerMessageEnd, "",
		MarkerMessageEnd, "",
		MarkerThreadStart+" ", threadPrefix,
		MarkerThreadStart, threadPrefix,
		" "+MarkerThreadEnd, "",
		MarkerThreadEnd, "",
	)
	lines := strings.Split(r.Replace(doc), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NormaliseQuestion removes a leading bot mention such as "<@U123> ".
// Questions without a mention are only trimmed.
func NormaliseQuestion(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "<@") {
		if _, rest, ok := strings.Cut(text, ">"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return text
}
