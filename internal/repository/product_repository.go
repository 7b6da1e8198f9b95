package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type productRepository struct {
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(logger zerolog.Logger) ProductRepository {
	return &productRepository{
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// Exists reports whether a product with the given ID exists.
func (r *productRepository) Exists(ctx context.Context, tx pgx.Tx, id int) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM product WHERE id_product = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Int("id_product", id).Msg("failed to check product")
		return false, fmt.Errorf("failed to check product: %w", err)
	}
	return exists, nil
}

type warehouseRepository struct {
	logger zerolog.Logger
}

// NewWarehouseRepository creates a new PostgreSQL-backed warehouse repository.
func NewWarehouseRepository(logger zerolog.Logger) WarehouseRepository {
	return &warehouseRepository{
		logger: logger.With().Str("repository", "warehouse").Logger(),
	}
}

// Exists reports whether a warehouse with the given ID exists.
func (r *warehouseRepository) Exists(ctx context.Context, tx pgx.Tx, id int) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM warehouse WHERE id_warehouse = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Int("id_warehouse", id).Msg("failed to check warehouse")
		return false, fmt.Errorf("failed to check warehouse: %w", err)
	}
	return exists, nil
}
