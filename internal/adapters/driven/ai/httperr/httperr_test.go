package httperr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{400, false},
		{401, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := FromStatus("openai", domain.ErrEmbeddingUnavailable, tt.status, []byte("oops"))
			assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
			assert.Equal(t, tt.transient, domain.IsTransient(err))
			assert.Contains(t, err.Error(), "oops")
		})
	}
}

func TestFromStatus_TruncatesBody(t *testing.T) {
	err := FromStatus("openai", domain.ErrEmbeddingUnavailable, 400, []byte(strings.Repeat("x", 2000)))
	assert.Less(t, len(err.Error()), 700)
}

func TestFromTransport(t *testing.T) {
	timeout := FromTransport("ollama", domain.ErrEmbeddingUnavailable, timeoutErr{})
	assert.ErrorIs(t, timeout, domain.ErrEmbeddingUnavailable)
	assert.True(t, domain.IsTransient(timeout))

	deadline := FromTransport("ollama", domain.ErrEmbeddingUnavailable, context.DeadlineExceeded)
	assert.True(t, domain.IsTransient(deadline))

	refused := FromTransport("ollama", domain.ErrEmbeddingUnavailable, errors.New("connection refused"))
	assert.ErrorIs(t, refused, domain.ErrEmbeddingUnavailable)
	assert.False(t, domain.IsTransient(refused))

	cancelled := FromTransport("ollama", domain.ErrEmbeddingUnavailable, context.Canceled)
	assert.ErrorIs(t, cancelled, context.Canceled)
	assert.False(t, errors.Is(cancelled, domain.ErrEmbeddingUnavailable))
}
