package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// Scheduler runs SyncAll at a fixed interval.
type Scheduler struct {
	interval time.Duration
	engine   driving.SyncEngine

	// OnRun, if set, receives the outcome of every scheduled run.
	OnRun func(reports []*domain.SyncReport, err error)

	mu      sync.Mutex
	running bool
	busy    bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. A non-positive interval uses the default.
func NewScheduler(interval time.Duration, engine driving.SyncEngine) *Scheduler {
	if interval <= 0 {
		interval = domain.DefaultScheduleInterval
	}
	return &Scheduler{
		interval: interval,
		engine:   engine,
	}
}

// Interval returns the time between runs.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start runs a sync immediately and then once per interval.
// It blocks until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	logger.Info("Scheduler started (interval %s)", s.interval)
	s.trigger(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

// Stop shuts the scheduler down and waits for an in-flight run.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// trigger starts a run unless the scheduler stopped or the previous run
// is still going.
func (s *Scheduler) trigger(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	if s.busy {
		s.mu.Unlock()
		logger.Debug("Scheduler: previous run still in progress, skipping tick")
		return
	}
	s.busy = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.busy = false
			s.mu.Unlock()
		}()

		started := time.Now()
		reports, err := s.engine.SyncAll(ctx)
		if err != nil {
			logger.Error("Scheduled sync failed: %v", err)
		}
		logger.Info("Scheduled sync finished: %d source(s) in %s", len(reports), time.Since(started).Round(time.Millisecond))

		if s.OnRun != nil {
			s.OnRun(reports, err)
		}
	}()
}
