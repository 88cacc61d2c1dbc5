package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

const sampleExport = `[
	{"id":"1700000001.000100","user":"U1","text":"why did CI fail?",
	 "thread_replies":[{"user":"U2","text":"flaky test"},{"user":"U1","text":"thanks"}]},
	{"id":"1700000000.000200","user":"U3","text":"deploy done","thread_replies":[]}
]`

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "general.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConnector_FetchMessages(t *testing.T) {
	conn := New(writeExport(t, sampleExport), "", "")

	messages, err := conn.FetchMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, domain.Message{
		ID:     "1700000001.000100",
		Author: "U1",
		Text:   "why did CI fail?",
		Replies: []domain.Reply{
			{Author: "U2", Text: "flaky test"},
			{Author: "U1", Text: "thanks"},
		},
	}, messages[0])
	assert.Equal(t, "deploy done", messages[1].Text)
	assert.Empty(t, messages[1].Replies)
}

func TestConnector_FetchMessages_MissingFile(t *testing.T) {
	conn := New(filepath.Join(t.TempDir(), "absent.json"), "", "")

	_, err := conn.FetchMessages(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceEmpty)
}

func TestConnector_FetchMessages_Malformed(t *testing.T) {
	conn := New(writeExport(t, `{"not":"an array"}`), "", "")

	_, err := conn.FetchMessages(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.NotErrorIs(t, err, domain.ErrSourceEmpty)
}

func TestConnector_FetchMessages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(writeExport(t, sampleExport), "", "").FetchMessages(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnector_Permalink(t *testing.T) {
	tests := []struct {
		name string
		base string
		id   string
		want string
	}{
		{
			name: "base configured",
			base: "https://acme.slack.com/archives/C024BE91L",
			id:   "1700000001.000100",
			want: "https://acme.slack.com/archives/C024BE91L/p1700000001000100",
		},
		{
			name: "trailing slash trimmed",
			base: "https://acme.slack.com/archives/C024BE91L/",
			id:   "1.2",
			want: "https://acme.slack.com/archives/C024BE91L/p12",
		},
		{name: "no base", base: "", id: "1.2", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := New("x.json", "", tt.base).Permalink(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, link)
		})
	}
}

func TestConnector_List(t *testing.T) {
	names, err := New("/data/exports/general.json", "", "").List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, names)

	names, err = New("/data/exports/general.json", "eng-general", "").List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eng-general"}, names)
}

func TestBuild(t *testing.T) {
	conn, err := Build(context.Background(), domain.Source{
		Name:    "archive",
		Type:    domain.SourceExport,
		Channel: "/tmp/general.json",
		Config:  map[string]string{"permalink_base": "https://acme.slack.com/archives/C1"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceExport, conn.Type())
	assert.NoError(t, conn.Close())

	link, err := conn.Permalink(context.Background(), "1.5")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.slack.com/archives/C1/p15", link)

	_, err = Build(context.Background(), domain.Source{Name: "archive", Type: domain.SourceExport})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "exports/a.json"), ExpandPath("~/exports/a.json"))
	assert.Equal(t, "/abs/a.json", ExpandPath("/abs/a.json"))
}
