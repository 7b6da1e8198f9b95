package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type transactor struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
	logger      zerolog.Logger
}

// NewTransactor creates a Transactor whose transactions run at READ COMMITTED and
// give up waiting on row locks after lockTimeout. Zero waits forever.
func NewTransactor(pool *pgxpool.Pool, lockTimeout time.Duration, logger zerolog.Logger) Transactor {
	return &transactor{
		pool:        pool,
		lockTimeout: lockTimeout,
		logger:      logger.With().Str("repository", "transactor").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (t *transactor) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if t.lockTimeout > 0 {
		ms := strconv.FormatInt(t.lockTimeout.Milliseconds(), 10)
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", ms); err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			t.logger.Error().Err(err).Msg("failed to set lock timeout")
			return nil, fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	return tx, nil
}
