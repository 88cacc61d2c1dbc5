package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// runStore implements driven.SyncRunStore.
type runStore struct {
	store *Store
}

var _ driven.SyncRunStore = (*runStore)(nil)

// storedFailure is the persisted form of a message failure.
type storedFailure struct {
	MessageID string `json:"message_id"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}

// Record stores a finished run. Re-recording a run id overwrites it.
func (s *runStore) Record(ctx context.Context, report *domain.SyncReport) error {
	if report == nil {
		return domain.ErrInvalidInput
	}

	failures := make([]storedFailure, len(report.Failures))
	for i, f := range report.Failures {
		failures[i] = storedFailure{MessageID: f.MessageID, Stage: f.Stage}
		if f.Err != nil {
			failures[i].Error = f.Err.Error()
		}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("marshalling failures: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (run_id, source, collection, total, inserted, updated, skipped, failed,
			source_empty, failures, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			total = excluded.total,
			inserted = excluded.inserted,
			updated = excluded.updated,
			skipped = excluded.skipped,
			failed = excluded.failed,
			source_empty = excluded.source_empty,
			failures = excluded.failures,
			finished_at = excluded.finished_at
	`, report.RunID, report.Source, report.Collection, report.Total, report.Inserted, report.Updated,
		report.Skipped, report.Failed, boolToInt(report.SourceEmpty), string(failuresJSON),
		timeNano(report.StartedAt), timeNano(report.FinishedAt))
	if err != nil {
		return wrapDBError("recording sync run", err)
	}
	return nil
}

// Latest returns up to limit runs, newest first. An empty source matches all.
func (s *runStore) Latest(ctx context.Context, source string, limit int) ([]domain.SyncReport, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, source, collection, total, inserted, updated, skipped, failed,
			source_empty, failures, started_at, finished_at
		FROM sync_runs
		WHERE ? = '' OR source = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, source, source, limit)
	if err != nil {
		return nil, wrapDBError("querying sync runs", err)
	}
	defer rows.Close()

	var reports []domain.SyncReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.SyncReport
		var sourceEmpty int
		var failuresJSON string
		var startedAt, finishedAt int64
		if err := rows.Scan(&r.RunID, &r.Source, &r.Collection, &r.Total, &r.Inserted, &r.Updated,
			&r.Skipped, &r.Failed, &sourceEmpty, &failuresJSON, &startedAt, &finishedAt); err != nil {
			return nil, wrapDBError("scanning sync run", err)
		}
		r.SourceEmpty = sourceEmpty == 1
		r.StartedAt = unixNano(startedAt)
		r.FinishedAt = unixNano(finishedAt)

		var failures []storedFailure
		if err := json.Unmarshal([]byte(failuresJSON), &failures); err != nil {
			return nil, fmt.Errorf("unmarshalling failures for %s: %w", r.RunID, err)
		}
		for _, f := range failures {
			r.Failures = append(r.Failures, domain.MessageFailure{
				MessageID: f.MessageID,
				Stage:     f.Stage,
				Err:       errors.New(f.Error),
			})
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating sync runs", err)
	}
	return reports, nil
}
