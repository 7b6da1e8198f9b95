package repository

import (
	"context"
	"testing"
	"time"

	"warehouse-receiving/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the schema applied and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)
	pool, err := database.Connect(ctx, poolConfig, zerolog.Nop())
	require.NoError(t, err)

	// Create schema
	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	// Cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedReference inserts product 1 and warehouse 1.
func seedReference(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO product (id_product, name, price) VALUES (1, 'Product A', 10.00)`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `INSERT INTO warehouse (id_warehouse, name) VALUES (1, 'Central')`)
	require.NoError(t, err)
}

// seedOrder inserts an order and returns its ID.
func seedOrder(t *testing.T, pool *pgxpool.Pool, productID, amount int, price string, createdAt time.Time) int {
	ctx := context.Background()

	var id int
	err := pool.QueryRow(ctx,
		`INSERT INTO "order" (id_product, amount, price, created_at) VALUES ($1, $2, $3::numeric, $4) RETURNING id_order`,
		productID, amount, price, createdAt,
	).Scan(&id)
	require.NoError(t, err)

	return id
}
