package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// Ensure SyncEngine implements the interfaces.
var (
	_ driving.SyncEngine = (*SyncEngine)(nil)
	_ driving.RunHistory = (*SyncEngine)(nil)
)

// Pipeline stages recorded on message failures.
const (
	StageFetch    = "fetch"
	StageValidate = "validate"
	StageClassify = "classify"
	StageEmbed    = "embed"
	StageUpsert   = "upsert"
)

// SyncEngine coordinates message synchronisation:
// fetch, stage, format, change-detect, embed, upsert, audit.
type SyncEngine struct {
	factory  driven.ConnectorFactory
	store    driven.VectorStore
	embedder driven.EmbeddingService
	staging  driven.StagingStore
	auditLog driven.AuditLog
	runStore driven.SyncRunStore
	retry    RetryPolicy
	sources  []domain.Source
	now      func() time.Time

	// Collections with a run in progress, and per-source progress.
	mu          sync.Mutex
	running     map[string]bool
	activeSyncs map[string]*driving.SyncStatus
}

// NewSyncEngine creates a new sync engine.
// The runStore is optional - if nil, run history is not recorded.
func NewSyncEngine(
	factory driven.ConnectorFactory,
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	staging driven.StagingStore,
	auditLog driven.AuditLog,
	runStore driven.SyncRunStore,
	retry RetryPolicy,
	sources []domain.Source,
) *SyncEngine {
	return &SyncEngine{
		factory:     factory,
		store:       store,
		embedder:    embedder,
		staging:     staging,
		auditLog:    auditLog,
		runStore:    runStore,
		retry:       retry,
		sources:     sources,
		now:         time.Now,
		running:     make(map[string]bool),
		activeSyncs: make(map[string]*driving.SyncStatus),
	}
}

// Sync runs one synchronisation of a source.
//
// Errors scoped to one message are recorded in the report and never abort
// the run. The run aborts when the connector cannot reach its platform.
// On cancellation the run stops before the next message, flushes the audit
// log, and returns the partial report together with the context error.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (e *SyncEngine) Sync(ctx context.Context, source domain.Source) (*domain.SyncReport, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	collection := source.CollectionName()

	// 1. Exclude other runs on the same collection
	if !e.acquire(collection) {
		return nil, fmt.Errorf("collection %s: %w", collection, domain.ErrSyncInProgress)
	}
	defer e.release(collection)

	status := &driving.SyncStatus{Source: source.Name, Running: true}
	e.setStatus(source.Name, status)
	defer e.clearStatus(source.Name)

	report := &domain.SyncReport{
		RunID:      uuid.NewString(),
		Source:     source.Name,
		Collection: collection,
		StartedAt:  e.now(),
	}

	// 2. Open the collection and check the embedding model fits it
	index, err := e.store.Collection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", collection, err)
	}
	if err := e.checkDimensions(ctx, index); err != nil {
		return nil, err
	}

	// 3. Create connector from source
	if e.factory == nil {
		return nil, domain.NewConfigurationError("connectors", "connector factory not configured")
	}
	connector, err := e.factory.Create(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	logger.Info("Starting sync for source %s (collection %s)", source.Name, collection)

	// 4. Fetch and stage
	messages, err := e.fetch(ctx, connector, collection)
	if errors.Is(err, domain.ErrSourceEmpty) {
		logger.Warn("Source %s: %v", source.Name, err)
		report.SourceEmpty = true
		report.FinishedAt = e.now()
		e.recordRun(ctx, report)
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	report.Total = len(messages)

	// 5. Process each message in fetch order
	detector := NewChangeDetector(index)
	var entries []domain.AuditEntry
	var runErr error

	for i := range messages {
		if err := ctx.Err(); err != nil {
			runErr = err
			logger.Warn("Sync of %s cancelled after %d of %d messages", source.Name, i, len(messages))
			break
		}

		msg := &messages[i]
		entry, class, failure, err := e.processMessage(ctx, connector, index, detector, source.Type, msg)
		if err != nil {
			runErr = err
			logger.Warn("Sync of %s cancelled after %d of %d messages", source.Name, i, len(messages))
			break
		}
		switch {
		case failure != nil:
			report.Failed++
			report.Failures = append(report.Failures, *failure)
			logger.Warn("Failed to index message %s (%s): %v", msg.ID, failure.Stage, failure.Err)
		case class == domain.ClassUnchanged:
			report.Skipped++
		case class == domain.ClassUpdate:
			report.Updated++
			entries = append(entries, *entry)
		default:
			report.Inserted++
			entries = append(entries, *entry)
		}
		e.updateStatus(status, failure != nil)
	}

	// 6. Flush the audit log, even after cancellation
	if err := e.flushAudit(context.WithoutCancel(ctx), collection, entries); err != nil && runErr == nil {
		runErr = err
	}

	report.FinishedAt = e.now()
	e.recordRun(context.WithoutCancel(ctx), report)

	logger.Info("Sync complete: %d inserted, %d updated, %d skipped, %d failed",
		report.Inserted, report.Updated, report.Skipped, report.Failed)
	return report, runErr
}

// SyncAll synchronises every configured source.
func (e *SyncEngine) SyncAll(ctx context.Context) ([]*domain.SyncReport, error) {
	var reports []*domain.SyncReport
	var errs []error
	for i := range e.sources {
		report, err := e.Sync(ctx, e.sources[i])
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", e.sources[i].Name, err))
		}
	}

	if len(errs) > 0 {
		return reports, errors.Join(errs...)
	}
	return reports, nil
}

// Status returns sync status for a source.
func (e *SyncEngine) Status(_ context.Context, sourceName string) (*driving.SyncStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if status, ok := e.activeSyncs[sourceName]; ok {
		// Return a copy to avoid race conditions
		statusCopy := *status
		return &statusCopy, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{Source: sourceName}, nil
}

// History returns recorded runs of a source, newest first.
// Without a run store there is no history.
func (e *SyncEngine) History(ctx context.Context, source string, limit int) ([]domain.SyncReport, error) {
	if e.runStore == nil {
		return nil, nil
	}
	return e.runStore.Latest(ctx, source, limit)
}

// fetch pulls messages from the connector and routes them through staging.
func (e *SyncEngine) fetch(ctx context.Context, connector driven.Connector, collection string) ([]domain.Message, error) {
	messages, err := connector.FetchMessages(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSourceEmpty) || errors.Is(err, domain.ErrSourceUnavailable) {
			return nil, fmt.Errorf("fetch messages: %w", err)
		}
		return nil, fmt.Errorf("fetch messages: %w: %w", domain.ErrSourceUnavailable, err)
	}

	if e.staging == nil {
		return messages, nil
	}
	if err := e.staging.Stage(ctx, collection, messages); err != nil {
		return nil, fmt.Errorf("stage messages: %w", err)
	}
	staged, err := e.staging.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load staged messages: %w", err)
	}
	logger.Debug("Staged %d messages for %s", len(staged), collection)
	return staged, nil
}

// processMessage runs the per-message pipeline. It returns the audit entry
// for inserted or updated messages, the classification, and a failure when
// the message could not be indexed. The error is non-nil only when ctx was
// cancelled mid-pipeline; the message then counts as neither indexed nor failed.
//
//nolint:gocognit // Pipeline orchestration with sequential steps
func (e *SyncEngine) processMessage(
	ctx context.Context,
	connector driven.Connector,
	index driven.VectorIndex,
	detector *ChangeDetector,
	sourceType domain.SourceType,
	msg *domain.Message,
) (*domain.AuditEntry, domain.Classification, *domain.MessageFailure, error) {
	fail := func(stage string, err error) (*domain.AuditEntry, domain.Classification, *domain.MessageFailure, error) {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, domain.ClassInsert, nil, ctxErr
		}
		return nil, domain.ClassInsert, &domain.MessageFailure{MessageID: msg.ID, Stage: stage, Err: err}, nil
	}

	if msg.ID == "" {
		return fail(StageValidate, fmt.Errorf("message without identity: %w", domain.ErrInvalidInput))
	}
	if msg.ThreadError != "" {
		return fail(StageFetch, fmt.Errorf("thread replies: %s: %w", msg.ThreadError, domain.ErrSourceUnavailable))
	}

	// 1. FORMAT
	document := FormatMessage(*msg)

	// 2. CLASSIFY
	var class domain.Classification
	err := e.retry.Do(ctx, "classify "+msg.ID, func(ctx context.Context) error {
		var classifyErr error
		class, classifyErr = detector.Classify(ctx, msg.ID, document)
		return classifyErr
	})
	if err != nil {
		return fail(StageClassify, err)
	}

	// 3. SKIP UNCHANGED
	if class == domain.ClassUnchanged {
		logger.Debug("Skipping unchanged message %s", msg.ID)
		return nil, class, nil, nil
	}

	// 4. RESOLVE PERMALINK (best effort)
	permalink, err := connector.Permalink(ctx, msg.ID)
	if err != nil {
		logger.Warn("Permalink for %s unresolved: %v", msg.ID, err)
		permalink = ""
	}

	if err := ctx.Err(); err != nil {
		return nil, class, nil, err
	}

	// 5. EMBED
	var embedding []float32
	err = e.retry.Do(ctx, "embed "+msg.ID, func(ctx context.Context) error {
		var embedErr error
		embedding, embedErr = e.embedder.Embed(ctx, document)
		return embedErr
	})
	if err != nil {
		return fail(StageEmbed, err)
	}

	// 6. UPSERT BY IDENTITY
	record := domain.VectorRecord{
		ID:        msg.ID,
		Embedding: embedding,
		Document:  document,
		Metadata:  domain.NewRecordMetadata(sourceType, permalink),
	}
	err = e.retry.Do(ctx, "upsert "+msg.ID, func(ctx context.Context) error {
		if class == domain.ClassUpdate {
			logger.Debug("Updating message %s", msg.ID)
			return index.Update(ctx, record)
		}
		logger.Debug("Adding new message %s", msg.ID)
		return index.Add(ctx, record)
	})
	if err != nil {
		return fail(StageUpsert, err)
	}

	return &domain.AuditEntry{Document: document, Permalink: permalink}, class, nil, nil
}

// checkDimensions rejects an embedding model whose vectors cannot live in the collection.
func (e *SyncEngine) checkDimensions(ctx context.Context, index driven.VectorIndex) error {
	want := e.embedder.Dimensions()
	if want <= 0 {
		return nil
	}
	have, err := index.Dimensions(ctx)
	if err != nil {
		return fmt.Errorf("collection dimensions: %w", err)
	}
	if have > 0 && have != want {
		return fmt.Errorf("%w: %w", domain.ErrDimensionMismatch, domain.NewConfigurationError("embedding.model",
			fmt.Sprintf("model %s produces %d dimensions but collection %s holds %d",
				e.embedder.ModelName(), want, index.Name(), have)))
	}
	return nil
}

// flushAudit appends the run's entries to the collection's audit log.
func (e *SyncEngine) flushAudit(ctx context.Context, collection string, entries []domain.AuditEntry) error {
	if len(entries) == 0 {
		logger.Info("No new messages to add")
		return nil
	}
	if e.auditLog == nil {
		return nil
	}
	if err := e.auditLog.Append(ctx, collection, entries); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	logger.Info("Added %d new messages to the %s audit log", len(entries), collection)
	return nil
}

// recordRun stores the report in the run history. Failures are logged only.
func (e *SyncEngine) recordRun(ctx context.Context, report *domain.SyncReport) {
	if e.runStore == nil {
		return
	}
	if err := e.runStore.Record(ctx, report); err != nil {
		logger.Warn("Failed to record sync run %s: %v", report.RunID, err)
	}
}

// acquire marks a collection as being synced. Returns false if it already is.
func (e *SyncEngine) acquire(collection string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[collection] {
		return false
	}
	e.running[collection] = true
	return true
}

// release clears the in-progress mark for a collection.
func (e *SyncEngine) release(collection string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, collection)
}

// updateStatus counts one processed message.
func (e *SyncEngine) updateStatus(status *driving.SyncStatus, failed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	status.MessagesProcessed++
	if failed {
		status.ErrorCount++
	}
}

// setStatus sets the sync status for a source.
func (e *SyncEngine) setStatus(sourceName string, status *driving.SyncStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeSyncs[sourceName] = status
}

// clearStatus removes the sync status for a source.
func (e *SyncEngine) clearStatus(sourceName string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.activeSyncs, sourceName)
}
