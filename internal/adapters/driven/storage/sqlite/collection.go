package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// collection implements driven.VectorIndex over the records table.
type collection struct {
	store *Store
	name  string
}

var _ driven.VectorIndex = (*collection)(nil)

// Name returns the collection name.
func (c *collection) Name() string {
	return c.name
}

// Get returns the stored records for the ids that exist, in id order given.
func (c *collection) Get(ctx context.Context, ids ...string) ([]domain.VectorRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, c.name)
	for _, id := range ids {
		args = append(args, id)
	}

	//nolint:gosec // placeholders are generated, values are bound
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, document, embedding, metadata FROM records WHERE collection = ? AND id IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, wrapDBError("getting records", err)
	}
	defer rows.Close()

	found := make(map[string]domain.VectorRecord, len(ids))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		found[rec.ID] = *rec
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating records", err)
	}

	records := make([]domain.VectorRecord, 0, len(found))
	for _, id := range ids {
		if rec, ok := found[id]; ok {
			records = append(records, rec)
			delete(found, id)
		}
	}
	return records, nil
}

// Add stores a new record. Existing ids are rejected with ErrAlreadyExists.
// The first record written fixes the collection's dimensionality.
func (c *collection) Add(ctx context.Context, record domain.VectorRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record id: %w", domain.ErrInvalidInput)
	}
	return c.write(ctx, record, func(tx *sql.Tx, metadata string) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM records WHERE collection = ? AND id = ?", c.name, record.ID).Scan(&exists)
		if err != nil {
			return wrapDBError("checking record", err)
		}
		if exists > 0 {
			return fmt.Errorf("record %s: %w", record.ID, domain.ErrAlreadyExists)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (collection, id, document, embedding, metadata, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.name, record.ID, record.Document, float32SliceToBytes(record.Embedding), metadata,
			c.store.now().UnixNano())
		if err != nil {
			return wrapDBError("inserting record", err)
		}
		return nil
	})
}

// Update overwrites an existing record. Missing ids return ErrNotFound.
func (c *collection) Update(ctx context.Context, record domain.VectorRecord) error {
	return c.write(ctx, record, func(tx *sql.Tx, metadata string) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE records SET document = ?, embedding = ?, metadata = ?, updated_at = ?
			WHERE collection = ? AND id = ?
		`, record.Document, float32SliceToBytes(record.Embedding), metadata, c.store.now().UnixNano(),
			c.name, record.ID)
		if err != nil {
			return wrapDBError("updating record", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return wrapDBError("updating record", err)
		}
		if affected == 0 {
			return fmt.Errorf("record %s: %w", record.ID, domain.ErrNotFound)
		}
		return nil
	})
}

// write runs fn in a transaction after checking and fixing dimensionality.
func (c *collection) write(ctx context.Context, record domain.VectorRecord, fn func(tx *sql.Tx, metadata string) error) error {
	if len(record.Embedding) == 0 {
		return fmt.Errorf("empty embedding: %w", domain.ErrInvalidInput)
	}

	metadata, err := marshalMetadata(record.Metadata)
	if err != nil {
		return err
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("beginning transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var dims int
	if err := tx.QueryRowContext(ctx, "SELECT dimensions FROM collections WHERE name = ?", c.name).Scan(&dims); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %s: %w", c.name, domain.ErrNotFound)
		}
		return wrapDBError("reading dimensions", err)
	}
	if err := c.checkDims(dims, len(record.Embedding)); err != nil {
		return err
	}

	if err := fn(tx, metadata); err != nil {
		return err
	}

	if dims == 0 {
		if _, err := tx.ExecContext(ctx, "UPDATE collections SET dimensions = ? WHERE name = ?",
			len(record.Embedding), c.name); err != nil {
			return wrapDBError("fixing dimensions", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapDBError("committing", err)
	}
	return nil
}

// Query returns the k nearest records by cosine distance, nearest first.
// Equal distances keep insertion order.
func (c *collection) Query(ctx context.Context, vector []float32, k int) ([]domain.VectorMatch, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive: %w", domain.ErrInvalidInput)
	}
	dims, err := c.Dimensions(ctx)
	if err != nil {
		return nil, err
	}
	if dims == 0 {
		return []domain.VectorMatch{}, nil
	}
	if err := c.checkDims(dims, len(vector)); err != nil {
		return nil, err
	}

	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, document, embedding, metadata FROM records WHERE collection = ? ORDER BY rowid", c.name)
	if err != nil {
		return nil, wrapDBError("querying records", err)
	}
	defer rows.Close()

	var matches []domain.VectorMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, domain.VectorMatch{
			ID:       rec.ID,
			Document: rec.Document,
			Distance: domain.CosineDistance(vector, rec.Embedding),
			Metadata: rec.Metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating records", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	if matches == nil {
		matches = []domain.VectorMatch{}
	}
	return matches, nil
}

// Count returns the number of stored records.
func (c *collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM records WHERE collection = ?", c.name).Scan(&n)
	if err != nil {
		return 0, wrapDBError("counting records", err)
	}
	return n, nil
}

// Dimensions returns the fixed vector size, or 0 before the first write.
func (c *collection) Dimensions(ctx context.Context) (int, error) {
	var dims int
	err := c.store.db.QueryRowContext(ctx, "SELECT dimensions FROM collections WHERE name = ?", c.name).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapDBError("reading dimensions", err)
	}
	return dims, nil
}

func (c *collection) checkDims(have, got int) error {
	if have != 0 && have != got {
		return fmt.Errorf("%w: %w", domain.ErrDimensionMismatch, domain.NewConfigurationError("embedding.model",
			fmt.Sprintf("vector has %d dimensions but collection %s holds %d", got, c.name, have)))
	}
	return nil
}

// scanRecord scans one records row.
func scanRecord(rows *sql.Rows) (*domain.VectorRecord, error) {
	var rec domain.VectorRecord
	var embedding []byte
	var metadataJSON string
	if err := rows.Scan(&rec.ID, &rec.Document, &embedding, &metadataJSON); err != nil {
		return nil, wrapDBError("scanning record", err)
	}
	rec.Embedding = bytesToFloat32Slice(embedding)
	if metadataJSON != "" && metadataJSON != "{}" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

func marshalMetadata(md domain.Metadata) (string, error) {
	if len(md) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(data), nil
}
