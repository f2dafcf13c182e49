package worker

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bgbahoue/yaxis-bot/internal/model"
	"github.com/bgbahoue/yaxis-bot/internal/storage"
)

// Ledger fetches transfer events for a contract from a start block.
type Ledger interface {
	TokenTransfers(ctx context.Context, address string, startBlock uint64) ([]model.TransferEvent, error)
}

// PriceResolver returns the USD token price for an event timestamp.
type PriceResolver interface {
	Resolve(ctx context.Context, timestamp int64) (decimal.Decimal, error)
}

// Notifier publishes one processed event downstream.
type Notifier interface {
	Publish(ctx context.Context, event model.TransferEvent, price decimal.Decimal) error
}

// Pipeline runs one full poll-process-notify cycle: read the high-water
// mark, fetch newer events, resolve prices, persist, then publish.
type Pipeline struct {
	contract string
	ledger   Ledger
	prices   PriceResolver
	store    storage.TransactionStore
	notifier Notifier
	logger   *zap.Logger
}

func NewPipeline(contract string, ledger Ledger, prices PriceResolver, store storage.TransactionStore, notifier Notifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		contract: contract,
		ledger:   ledger,
		prices:   prices,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// RunCycle executes one cycle and reports its outcome. Persistence of
// the whole batch strictly precedes publication, and publication follows
// the fetched (ascending block) order.
func (p *Pipeline) RunCycle(ctx context.Context) (Outcome, error) {
	maxBlock, err := p.store.MaxPersistedBlock(ctx)
	if err != nil {
		return OutcomeError, fmt.Errorf("read high-water mark: %w", err)
	}
	p.logger.Debug("latest known block", zap.Uint64("block", maxBlock))

	events, err := p.ledger.TokenTransfers(ctx, p.contract, maxBlock+1)
	if err != nil {
		return OutcomeError, fmt.Errorf("fetch transfers: %w", err)
	}
	if len(events) == 0 {
		return OutcomeDidNothing, nil
	}

	p.logger.Info("new transactions found", zap.Int("count", len(events)))

	// Price resolution is read-mostly and idempotent, so it fans out
	// across the batch.
	resolved := make([]decimal.Decimal, len(events))
	g, gctx := errgroup.WithContext(ctx)
	for i, event := range events {
		i, event := i, event
		g.Go(func() error {
			price, err := p.prices.Resolve(gctx, event.Timestamp)
			if err != nil {
				return fmt.Errorf("resolve price for %s: %w", event.Hash, err)
			}
			resolved[i] = price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return OutcomeError, err
	}

	// Persist the whole batch before any notification goes out. A
	// failure here aborts the cycle; unpersisted events are re-fetched
	// next cycle since the high-water mark did not advance for them.
	g, gctx = errgroup.WithContext(ctx)
	for _, event := range events {
		event := event
		g.Go(func() error {
			if err := p.store.InsertTransaction(gctx, event); err != nil {
				return fmt.Errorf("persist %s: %w", event.Hash, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return OutcomeError, err
	}

	for i, event := range events {
		if err := p.notifier.Publish(ctx, event, resolved[i]); err != nil {
			return OutcomeError, fmt.Errorf("publish %s: %w", event.Hash, err)
		}
	}

	p.logger.Info("transactions published", zap.Int("count", len(events)))
	return OutcomeDidSomething, nil
}
