package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// ChangeDetector decides whether a formatted document differs from what is indexed.
// The comparison is over the whole document: any change to the root or to any
// reply re-embeds the full thread.
type ChangeDetector struct {
	index driven.VectorIndex
}

// NewChangeDetector creates a change detector over a collection.
func NewChangeDetector(index driven.VectorIndex) *ChangeDetector {
	return &ChangeDetector{index: index}
}

// Classify looks up the record for id and compares its stored document.
func (d *ChangeDetector) Classify(ctx context.Context, id, document string) (domain.Classification, error) {
	records, err := d.index.Get(ctx, id)
	if err != nil {
		return domain.ClassInsert, fmt.Errorf("lookup %s: %w", id, err)
	}

	for i := range records {
		if records[i].ID != id {
			continue
		}
		if records[i].Document == document {
			return domain.ClassUnchanged, nil
		}
		return domain.ClassUpdate, nil
	}
	return domain.ClassInsert, nil
}
