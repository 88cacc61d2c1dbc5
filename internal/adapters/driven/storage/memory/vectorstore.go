package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// Ensure Collection implements the interface.
var _ driven.VectorIndex = (*Collection)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Collections live for the lifetime of the store.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]*Collection),
	}
}

// Collection opens a collection, creating it on first use.
func (s *VectorStore) Collection(_ context.Context, name string) (driven.VectorIndex, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = newCollection(name)
		s.collections[name] = c
	}
	return c, nil
}

// Collections returns the collection names in name order.
func (s *VectorStore) Collections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for the memory store.
func (s *VectorStore) Close() error {
	return nil
}

// Collection is one named in-memory record set.
type Collection struct {
	name string

	mu      sync.RWMutex
	dims    int
	order   []string
	records map[string]domain.VectorRecord
}

func newCollection(name string) *Collection {
	return &Collection{
		name:    name,
		records: make(map[string]domain.VectorRecord),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Get returns the stored records for the ids that exist, in id order given.
func (c *Collection) Get(_ context.Context, ids ...string) ([]domain.VectorRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]domain.VectorRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := c.records[id]; ok {
			records = append(records, copyRecord(rec))
		}
	}
	return records, nil
}

// Add stores a new record. Existing ids are rejected with ErrAlreadyExists.
func (c *Collection) Add(_ context.Context, record domain.VectorRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record id: %w", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[record.ID]; ok {
		return fmt.Errorf("record %s: %w", record.ID, domain.ErrAlreadyExists)
	}
	if err := c.checkDims(len(record.Embedding)); err != nil {
		return err
	}
	if c.dims == 0 {
		c.dims = len(record.Embedding)
	}
	c.records[record.ID] = copyRecord(record)
	c.order = append(c.order, record.ID)
	return nil
}

// Update overwrites an existing record. Missing ids return ErrNotFound.
func (c *Collection) Update(_ context.Context, record domain.VectorRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[record.ID]; !ok {
		return fmt.Errorf("record %s: %w", record.ID, domain.ErrNotFound)
	}
	if err := c.checkDims(len(record.Embedding)); err != nil {
		return err
	}
	c.records[record.ID] = copyRecord(record)
	return nil
}

// Query returns the k nearest records by cosine distance, nearest first.
// Equal distances keep insertion order.
func (c *Collection) Query(_ context.Context, vector []float32, k int) ([]domain.VectorMatch, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive: %w", domain.ErrInvalidInput)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.records) == 0 {
		return []domain.VectorMatch{}, nil
	}
	if err := c.checkDims(len(vector)); err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(c.order))
	for _, id := range c.order {
		rec := c.records[id]
		matches = append(matches, domain.VectorMatch{
			ID:       rec.ID,
			Document: rec.Document,
			Distance: domain.CosineDistance(vector, rec.Embedding),
			Metadata: copyMetadata(rec.Metadata),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of stored records.
func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records), nil
}

// Dimensions returns the fixed vector size, or 0 before the first write.
func (c *Collection) Dimensions(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dims, nil
}

// checkDims must be called with the lock held.
func (c *Collection) checkDims(n int) error {
	if n == 0 {
		return fmt.Errorf("empty embedding: %w", domain.ErrInvalidInput)
	}
	if c.dims != 0 && n != c.dims {
		return fmt.Errorf("%w: %w", domain.ErrDimensionMismatch, domain.NewConfigurationError("embedding.model",
			fmt.Sprintf("vector has %d dimensions but collection %s holds %d", n, c.name, c.dims)))
	}
	return nil
}

func copyRecord(r domain.VectorRecord) domain.VectorRecord {
	out := r
	out.Embedding = append([]float32(nil), r.Embedding...)
	out.Metadata = copyMetadata(r.Metadata)
	return out
}

func copyMetadata(m domain.Metadata) domain.Metadata {
	if m == nil {
		return nil
	}
	out := make(domain.Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
