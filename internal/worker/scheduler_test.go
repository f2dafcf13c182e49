package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bgbahoue/yaxis-bot/internal/model"
)

// blockingLedger parks every fetch until released, to hold a cycle in
// flight from the test.
type blockingLedger struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingLedger() *blockingLedger {
	return &blockingLedger{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (l *blockingLedger) TokenTransfers(ctx context.Context, address string, startBlock uint64) ([]model.TransferEvent, error) {
	l.entered <- struct{}{}
	select {
	case <-l.release:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestTickSingleFlight(t *testing.T) {
	store := newMemStore()
	ledger := newBlockingLedger()
	pipeline := NewPipeline("0xcontract", ledger, fixedResolver{price: decimal.New(1, 0)}, store, &recordingNotifier{}, nil)
	scheduler := NewScheduler(time.Minute, pipeline, store, nil)
	scheduler.state.MarkInitialized()

	ctx := context.Background()
	scheduler.Tick(ctx)
	<-ledger.entered

	if got := scheduler.State(); got != StateWorking {
		t.Fatalf("state = %v, want working", got)
	}

	// Further ticks while the cycle is in flight must not start a
	// second pipeline execution.
	scheduler.Tick(ctx)
	scheduler.Tick(ctx)

	select {
	case <-ledger.entered:
		t.Fatalf("second pipeline execution started while working")
	case <-time.After(50 * time.Millisecond):
	}

	close(ledger.release)
	scheduler.Wait()

	if got := scheduler.State(); got != StateAvailable {
		t.Fatalf("state = %v, want available after cycle settles", got)
	}

	// A tick after release starts a fresh cycle.
	ledger.release = make(chan struct{})
	scheduler.Tick(ctx)
	<-ledger.entered
	close(ledger.release)
	scheduler.Wait()
}

func TestTickSkippedWhileInitializing(t *testing.T) {
	store := newMemStore()
	ledger := newBlockingLedger()
	pipeline := NewPipeline("0xcontract", ledger, fixedResolver{price: decimal.New(1, 0)}, store, &recordingNotifier{}, nil)
	scheduler := NewScheduler(time.Minute, pipeline, store, nil)

	scheduler.Tick(context.Background())

	select {
	case <-ledger.entered:
		t.Fatalf("cycle started before initialization completed")
	case <-time.After(50 * time.Millisecond):
	}
	if got := scheduler.State(); got != StateInitializing {
		t.Fatalf("state = %v, want initializing", got)
	}
}

func TestStateAvailableAfterFailedCycle(t *testing.T) {
	store := newMemStore()
	ledger := &memLedger{err: fmt.Errorf("api down")}
	pipeline := newTestPipeline(ledger, store, &recordingNotifier{})
	scheduler := NewScheduler(time.Minute, pipeline, store, nil)
	scheduler.state.MarkInitialized()

	scheduler.Tick(context.Background())
	scheduler.Wait()

	// Guaranteed release: failure must not leave the worker stuck in
	// Working.
	if got := scheduler.State(); got != StateAvailable {
		t.Fatalf("state = %v, want available", got)
	}
}

type failingInitStore struct {
	*memStore
}

func (s failingInitStore) InitSchema(ctx context.Context) error {
	return fmt.Errorf("permission denied")
}

func TestRunFatalOnSchemaInitFailure(t *testing.T) {
	store := failingInitStore{newMemStore()}
	pipeline := newTestPipeline(&memLedger{}, store.memStore, &recordingNotifier{})
	scheduler := NewScheduler(time.Minute, pipeline, store, nil)

	if err := scheduler.Run(context.Background()); err == nil {
		t.Fatalf("schema init failure must be fatal")
	}
	if got := scheduler.State(); got != StateInitializing {
		t.Fatalf("state = %v, want initializing after fatal startup", got)
	}
}

func TestRunImmediateFirstCycleAndShutdown(t *testing.T) {
	store := newMemStore()
	ledger := &memLedger{events: []model.TransferEvent{makeEvent("0xone", 101, 2000)}}
	notifier := &recordingNotifier{}
	pipeline := newTestPipeline(ledger, store, notifier)
	scheduler := NewScheduler(time.Hour, pipeline, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for notifier.publishedCount() == 0 {
		select {
		case <-deadline:
			t.Fatalf("first cycle did not run immediately")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if ledger.calls != 1 {
		t.Fatalf("expected exactly one cycle with a 1h interval, got %d", ledger.calls)
	}
}
