package price

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bgbahoue/yaxis-bot/internal/storage"
)

// Scraper obtains the current token price from a live source.
type Scraper interface {
	Scrape(ctx context.Context) (decimal.Decimal, error)
}

// Resolver resolves a USD token price for an event timestamp using the
// persisted cache, falling back to a live scrape on a miss and writing
// the scraped value back keyed by the event's timestamp.
type Resolver struct {
	store   storage.TransactionStore
	scraper Scraper
	logger  *zap.Logger
}

func NewResolver(store storage.TransactionStore, scraper Scraper, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, scraper: scraper, logger: logger}
}

// Resolve returns the USD price for an event timestamp. On a cache miss
// the current price stands in for the historical one; that approximation
// is intentional and the cached row keeps the event's timestamp as key.
func (r *Resolver) Resolve(ctx context.Context, timestamp int64) (decimal.Decimal, error) {
	cached, found, err := r.store.GetCachedPrice(ctx, timestamp)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read price cache: %w", err)
	}
	if found {
		r.logger.Debug("price cache hit", zap.Int64("timestamp", timestamp), zap.String("price", cached.String()))
		return cached, nil
	}

	scraped, err := r.scraper.Scrape(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("scrape price: %w", err)
	}

	r.logger.Info("caching scraped price", zap.Int64("timestamp", timestamp), zap.String("price", scraped.String()))
	if err := r.store.PutCachedPrice(ctx, timestamp, scraped); err != nil {
		return decimal.Zero, fmt.Errorf("write price cache: %w", err)
	}
	return scraped, nil
}
