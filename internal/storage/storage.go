package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bgbahoue/yaxis-bot/internal/model"
)

// TransactionStore is the persistence boundary for transfer events and
// the historical price cache.
type TransactionStore interface {
	// InitSchema creates the persisted structures if absent. Called once
	// at startup.
	InitSchema(ctx context.Context) error

	// MaxPersistedBlock returns the highest block number already
	// persisted, 0 when the store is empty.
	MaxPersistedBlock(ctx context.Context) (uint64, error)

	// InsertTransaction persists an event. Inserting a hash that already
	// exists is a no-op, not an error.
	InsertTransaction(ctx context.Context, event model.TransferEvent) error

	// GetCachedPrice returns the cached USD price for an exact timestamp,
	// with found=false when no entry exists.
	GetCachedPrice(ctx context.Context, timestamp int64) (price decimal.Decimal, found bool, err error)

	// PutCachedPrice stores a price for a timestamp. The first writer
	// wins: an existing entry is left untouched.
	PutCachedPrice(ctx context.Context, timestamp int64, price decimal.Decimal) error
}
