package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

func TestSourcesCmd_ServiceNotConfigured(t *testing.T) {
	withServices(t, &Services{})

	_, err := execute(t, "sources")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source service not configured")
}

func TestSourcesCmd_List(t *testing.T) {
	withServices(t, &Services{Sources: &mockSourceService{sources: []domain.Source{
		{Name: "eng", Type: domain.SourceSlack, Channel: "engineering"},
		{Name: "issues", Type: domain.SourceGitHub, Channel: "acme/widgets", Collection: "gh"},
	}}})

	out, err := execute(t, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "eng")
	assert.Contains(t, out, "engineering -> slack")
	assert.Contains(t, out, "acme/widgets -> gh")
}

func TestSourcesCmd_ListEmpty(t *testing.T) {
	withServices(t, &Services{Sources: &mockSourceService{}})

	out, err := execute(t, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "No sources configured.")
}

func TestSourcesCmd_Channels(t *testing.T) {
	withServices(t, &Services{Sources: &mockSourceService{channels: []string{"general", "engineering"}}})

	out, err := execute(t, "sources", "eng")
	require.NoError(t, err)
	assert.Contains(t, out, "  general\n")
	assert.Contains(t, out, "  engineering\n")
}

func TestSourcesCmd_ChannelsError(t *testing.T) {
	withServices(t, &Services{Sources: &mockSourceService{err: domain.ErrNotFound}})

	_, err := execute(t, "sources", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
