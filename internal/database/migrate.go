package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schema
}

// Migrate creates the tables, constraints and the add_product_to_warehouse procedure.
// It is safe to run repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().Msg("database schema applied")
	return nil
}

// Seed inserts a small reference data set: two products, two warehouses and
// one open order per product. Existing rows are left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	statements := []string{
		`INSERT INTO product (id_product, name, description, price) VALUES
			(1, 'Pallet jack', 'Manual pallet jack', 10.00),
			(2, 'Shelf unit', 'Steel shelving unit', 25.50)
		 ON CONFLICT (id_product) DO NOTHING`,
		`INSERT INTO warehouse (id_warehouse, name, address) VALUES
			(1, 'Central', 'Dock A'),
			(2, 'North', 'Dock B')
		 ON CONFLICT (id_warehouse) DO NOTHING`,
		`INSERT INTO "order" (id_order, id_product, amount, price, created_at) VALUES
			(1, 1, 5, 10.00, NOW() - INTERVAL '1 day'),
			(2, 2, 3, 25.50, NOW() - INTERVAL '1 day')
		 ON CONFLICT (id_order) DO NOTHING`,
		`SELECT setval(pg_get_serial_sequence('product', 'id_product'), (SELECT MAX(id_product) FROM product))`,
		`SELECT setval(pg_get_serial_sequence('warehouse', 'id_warehouse'), (SELECT MAX(id_warehouse) FROM warehouse))`,
		`SELECT setval(pg_get_serial_sequence('"order"', 'id_order'), (SELECT MAX(id_order) FROM "order"))`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to seed reference data: %w", err)
		}
	}

	logger.Info().Msg("reference data seeded")
	return nil
}
