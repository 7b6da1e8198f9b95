package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warehouse-receiving/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id_order, id_product, amount, (price * 100)::bigint, created_at, fulfilled_at`

// FindMatchingForUpdate locks the first order matching product, amount and creation bound.
func (r *orderRepository) FindMatchingForUpdate(
	ctx context.Context,
	tx pgx.Tx,
	productID, amount int,
	before time.Time,
) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM "order"
		WHERE id_product = $1 AND amount = $2 AND created_at < $3
		ORDER BY (fulfilled_at IS NOT NULL), id_order
		LIMIT 1
		FOR UPDATE
	`

	order, err := scanOrder(tx.QueryRow(ctx, query, productID, amount, before))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Int("id_product", productID).
				Int("amount", amount).
				Msg("no matching order")
			return nil, nil
		}
		r.logger.Error().Err(err).Int("id_product", productID).Msg("failed to query matching order")
		return nil, fmt.Errorf("failed to query matching order: %w", err)
	}

	return order, nil
}

// MarkFulfilled sets the fulfillment time of an order.
func (r *orderRepository) MarkFulfilled(ctx context.Context, tx pgx.Tx, orderID int, at time.Time) error {
	tag, err := tx.Exec(ctx, `UPDATE "order" SET fulfilled_at = $1 WHERE id_order = $2`, at, orderID)
	if err != nil {
		r.logger.Error().Err(err).Int("id_order", orderID).Msg("failed to mark order fulfilled")
		return fmt.Errorf("failed to mark order fulfilled: %w", err)
	}

	if tag.RowsAffected() != 1 {
		r.logger.Error().
			Int("id_order", orderID).
			Int64("rows_affected", tag.RowsAffected()).
			Msg("unexpected row count marking order fulfilled")
		return fmt.Errorf("failed to mark order fulfilled: %d rows affected", tag.RowsAffected())
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id int) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM "order" WHERE id_order = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int("id_order", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int("id_order", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o     model.Order
		cents int64
	)
	if err := row.Scan(&o.ID, &o.ProductID, &o.Amount, &cents, &o.CreatedAt, &o.FulfilledAt); err != nil {
		return nil, err
	}
	o.UnitPrice = model.Money(cents)
	return &o, nil
}
