package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bgbahoue/yaxis-bot/internal/storage"
)

// Scheduler drives the pipeline on a fixed interval with single-flight
// semantics: a tick that arrives while a cycle is still in flight is
// skipped, never queued.
type Scheduler struct {
	interval time.Duration
	pipeline *Pipeline
	store    storage.TransactionStore
	state    *StateMachine
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewScheduler(interval time.Duration, pipeline *Pipeline, store storage.TransactionStore, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		interval: interval,
		pipeline: pipeline,
		store:    store,
		state:    NewStateMachine(),
		logger:   logger,
	}
}

// State returns the current worker state.
func (s *Scheduler) State() State {
	return s.state.Current()
}

// Run initializes the store schema, fires one immediate cycle, then
// ticks until ctx is cancelled. A schema init failure is fatal and the
// timer never starts; a failed cycle only logs and the next tick retries
// naturally.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}

	s.logger.Info("initiating db link")
	if err := s.store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	s.state.MarkInitialized()
	s.logger.Info("db link successfully created")

	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			s.logger.Debug("worker waking up", zap.String("state", s.state.Current().String()))
			s.Tick(ctx)
		}
	}
}

// Tick starts one asynchronous cycle if the worker is free. The worker
// is released to Available when the cycle settles, whatever the outcome.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.state.TryBegin() {
		s.logger.Info("skipping tick", zap.String("state", s.state.Current().String()))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.state.Finish()

		outcome, err := s.pipeline.RunCycle(ctx)
		if err != nil {
			s.logger.Error("cycle failed", zap.String("outcome", outcome.String()), zap.Error(err))
			return
		}
		s.logger.Info("cycle complete", zap.String("outcome", outcome.String()))
	}()
}

// Wait blocks until any in-flight cycle has settled.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
