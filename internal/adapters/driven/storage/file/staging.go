package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// Ensure StagingStore implements the interface.
var _ driven.StagingStore = (*StagingStore)(nil)

// StagingStore writes each fetched batch as a JSON array of messages.
// The format is the one the export connector reads back.
type StagingStore struct {
	mu  sync.Mutex
	dir string
}

// NewStagingStore creates a staging store writing into dir.
func NewStagingStore(dir string) *StagingStore {
	return &StagingStore{dir: dir}
}

// StagingPath returns the staging file for a collection.
func (s *StagingStore) StagingPath(collection string) string {
	return filepath.Join(s.dir, safeName(collection)+"_messages.json")
}

// Stage replaces the staged batch. The file is written to a temporary name
// and renamed so readers never see a partial batch.
func (s *StagingStore) Stage(_ context.Context, collection string, messages []domain.Message) error {
	if messages == nil {
		messages = []domain.Message{}
	}
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling messages: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	path := s.StagingPath(collection)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing staging file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing staging file: %w", err)
	}
	return nil
}

// Load reads the staged batch back.
func (s *StagingStore) Load(_ context.Context, collection string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.StagingPath(collection))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("staged batch %s: %w", collection, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading staging file: %w", err)
	}
	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decoding staging file: %w", err)
	}
	return messages, nil
}

// safeName keeps collection names usable as file name parts.
func safeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
