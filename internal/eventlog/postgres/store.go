// Package postgres persists pool records to Postgres.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"swapPool/internal/model"
)

// Store provides Postgres persistence for pool records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the record tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS mint_events (
			id bigserial PRIMARY KEY,
			provider text NOT NULL,
			amount_a numeric NOT NULL,
			amount_b numeric NOT NULL,
			shares_minted numeric NOT NULL,
			ts bigint NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS burn_events (
			id bigserial PRIMARY KEY,
			provider text NOT NULL,
			amount_a numeric NOT NULL,
			amount_b numeric NOT NULL,
			shares_burned numeric NOT NULL,
			ts bigint NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS swap_events (
			id bigserial PRIMARY KEY,
			trader text NOT NULL,
			asset_given text NOT NULL,
			amount_given numeric NOT NULL,
			asset_received text NOT NULL,
			amount_received numeric NOT NULL,
			reserve_given_after numeric NOT NULL,
			reserve_received_after numeric NOT NULL,
			ts bigint NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// AppendMint inserts a mint record.
func (s *Store) AppendMint(ctx context.Context, rec model.MintRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO mint_events (provider, amount_a, amount_b, shares_minted, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.Provider, rec.AmountA, rec.AmountB, rec.SharesMinted, int64(rec.Timestamp))
	return err
}

// AppendBurn inserts a burn record.
func (s *Store) AppendBurn(ctx context.Context, rec model.BurnRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO burn_events (provider, amount_a, amount_b, shares_burned, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.Provider, rec.AmountA, rec.AmountB, rec.SharesBurned, int64(rec.Timestamp))
	return err
}

// AppendSwap inserts a swap record.
func (s *Store) AppendSwap(ctx context.Context, rec model.SwapRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO swap_events (
			trader, asset_given, amount_given, asset_received, amount_received,
			reserve_given_after, reserve_received_after, ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.Trader,
		rec.AssetGiven,
		rec.AmountGiven,
		rec.AssetReceived,
		rec.AmountReceived,
		rec.ReserveGivenAfter,
		rec.ReserveReceivedAfter,
		int64(rec.Timestamp),
	)
	return err
}
