package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleSourcesResource(t *testing.T) {
	sources := &mockSourceService{sources: []domain.Source{
		{Name: "eng", Type: domain.SourceSlack, Channel: "engineering"},
		{Name: "issues", Type: domain.SourceGitHub, Channel: "acme/widgets", Collection: "gh"},
	}}
	server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Sources: sources})

	result, err := server.handleSourcesResource(context.Background(), readRequest("threadrag://sources"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var infos []sourceInfo
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "slack", infos[0].Type)
	assert.Equal(t, "gh", infos[1].Collection)
}

func TestServer_handleSourcesResource_NoService(t *testing.T) {
	server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}})

	result, err := server.handleSourcesResource(context.Background(), readRequest("threadrag://sources"))
	require.NoError(t, err)
	assert.Equal(t, "[]", result.Contents[0].Text)
}

func TestServer_handleChannelsResource(t *testing.T) {
	sources := &mockSourceService{channels: []string{"general", "random"}}
	server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Sources: sources})

	result, err := server.handleChannelsResource(context.Background(),
		readRequest("threadrag://sources/eng/channels"))
	require.NoError(t, err)
	assert.Equal(t, "eng", sources.gotName)

	var channels []string
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &channels))
	assert.Equal(t, []string{"general", "random"}, channels)
}

func TestServer_handleChannelsResource_Errors(t *testing.T) {
	t.Run("unknown source", func(t *testing.T) {
		sources := &mockSourceService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Sources: sources})

		_, err := server.handleChannelsResource(context.Background(),
			readRequest("threadrag://sources/nope/channels"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed uri", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Sources: &mockSourceService{}})

		_, err := server.handleChannelsResource(context.Background(),
			readRequest("threadrag://sources//channels"))
		assert.Error(t, err)
	})
}

func TestExtractSourceName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"threadrag://sources/eng/channels", "eng"},
		{"threadrag://sources//channels", ""},
		{"threadrag://sources/a/b/channels", ""},
		{"threadrag://sources", ""},
		{"other://sources/eng/channels", ""},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSourceName(tt.uri))
		})
	}
}
