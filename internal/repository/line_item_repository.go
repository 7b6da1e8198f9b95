package repository

import (
	"context"
	"errors"
	"fmt"

	"warehouse-receiving/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// LineItemOrderConstraint is the unique constraint allowing one line item per order.
const LineItemOrderConstraint = "product_warehouse_id_order_key"

type lineItemRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLineItemRepository creates a new PostgreSQL-backed line item repository.
func NewLineItemRepository(pool *pgxpool.Pool, logger zerolog.Logger) LineItemRepository {
	return &lineItemRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "line_item").Logger(),
	}
}

// ExistsForOrder reports whether any line item references the order.
func (r *lineItemRepository) ExistsForOrder(ctx context.Context, tx pgx.Tx, orderID int) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM product_warehouse WHERE id_order = $1)`, orderID).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Int("id_order", orderID).Msg("failed to check line items for order")
		return false, fmt.Errorf("failed to check line items for order: %w", err)
	}
	return exists, nil
}

// Create inserts the line item within the provided transaction.
func (r *lineItemRepository) Create(ctx context.Context, tx pgx.Tx, item *model.LineItem) error {
	query := `
		INSERT INTO product_warehouse (id_warehouse, id_product, id_order, amount, price, created_at)
		VALUES ($1, $2, $3, $4, $5::bigint::numeric / 100, $6)
		RETURNING id_product_warehouse
	`

	err := tx.QueryRow(ctx, query,
		item.WarehouseID,
		item.ProductID,
		item.OrderID,
		item.Amount,
		int64(item.TotalPrice),
		item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int("id_order", item.OrderID).
			Int("id_warehouse", item.WarehouseID).
			Msg("failed to create line item")
		return fmt.Errorf("failed to create line item: %w", err)
	}

	r.logger.Debug().
		Int("id_product_warehouse", item.ID).
		Int("id_order", item.OrderID).
		Msg("line item created successfully")

	return nil
}

// GetByOrderID retrieves the line item recorded for an order.
func (r *lineItemRepository) GetByOrderID(ctx context.Context, orderID int) (*model.LineItem, error) {
	query := `
		SELECT id_product_warehouse, id_warehouse, id_product, id_order, amount,
			(price * 100)::bigint, created_at
		FROM product_warehouse
		WHERE id_order = $1
	`

	var (
		item  model.LineItem
		cents int64
	)
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&item.ID,
		&item.WarehouseID,
		&item.ProductID,
		&item.OrderID,
		&item.Amount,
		&cents,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int("id_order", orderID).Msg("failed to query line item")
		return nil, fmt.Errorf("failed to query line item: %w", err)
	}
	item.TotalPrice = model.Money(cents)

	return &item, nil
}
