package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bgbahoue/yaxis-bot/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	hash TEXT PRIMARY KEY,
	timestamp BIGINT NOT NULL,
	block_number BIGINT NOT NULL,
	data JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS token_prices (
	timestamp BIGINT PRIMARY KEY,
	price NUMERIC(9, 2) NOT NULL
);
`

// Store provides Postgres persistence for transfer events and the
// historical price cache.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the transactions and token_prices tables if absent.
func (s *Store) InitSchema(ctx context.Context) error {
	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// MaxPersistedBlock returns the highest persisted block number, 0 when
// the transactions table is empty.
func (s *Store) MaxPersistedBlock(ctx context.Context) (uint64, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var block int64
	row := conn.QueryRow(ctx, `SELECT COALESCE(MAX(block_number), 0) FROM transactions`)
	if err := row.Scan(&block); err != nil {
		return 0, fmt.Errorf("query max block: %w", err)
	}
	return uint64(block), nil
}

// InsertTransaction persists an event, ignoring duplicate hashes.
func (s *Store) InsertTransaction(ctx context.Context, event model.TransferEvent) error {
	if event.Hash == "" {
		return fmt.Errorf("event hash is required")
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		INSERT INTO transactions (hash, timestamp, block_number, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hash) DO NOTHING
	`, event.Hash, event.Timestamp, int64(event.BlockNumber), string(event.Payload))
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", event.Hash, err)
	}
	return nil
}

// GetCachedPrice looks up a cached price by exact timestamp.
func (s *Store) GetCachedPrice(ctx context.Context, timestamp int64) (decimal.Decimal, bool, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	defer conn.Release()

	var text string
	row := conn.QueryRow(ctx, `SELECT price::text FROM token_prices WHERE timestamp = $1`, timestamp)
	if err := row.Scan(&text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("query cached price: %w", err)
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse cached price %q: %w", text, err)
	}
	return price, true, nil
}

// PutCachedPrice stores a price for a timestamp, leaving any existing
// entry untouched.
func (s *Store) PutCachedPrice(ctx context.Context, timestamp int64, price decimal.Decimal) error {
	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		INSERT INTO token_prices (timestamp, price)
		VALUES ($1, $2)
		ON CONFLICT (timestamp) DO NOTHING
	`, timestamp, price.StringFixed(2))
	if err != nil {
		return fmt.Errorf("insert cached price for %d: %w", timestamp, err)
	}
	return nil
}
