package integration

import (
	"context"
	"testing"
	"time"

	"warehouse-receiving/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the schema and returns a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 20

	pool, err := database.Connect(ctx, poolConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedReference inserts product 1 (unit price 10.00) and warehouse 1.
func SeedReference(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	if _, err := pool.Exec(ctx, `INSERT INTO product (id_product, name, price) VALUES (1, 'Pallet jack', 10.00)`); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO warehouse (id_warehouse, name) VALUES (1, 'Central')`); err != nil {
		t.Fatalf("failed to seed warehouse: %v", err)
	}
}

// SeedOrder inserts an open order and returns its id.
func SeedOrder(t *testing.T, pool *pgxpool.Pool, productID, amount int, price string, createdAt time.Time) int {
	t.Helper()

	var id int
	err := pool.QueryRow(context.Background(),
		`INSERT INTO "order" (id_product, amount, price, created_at) VALUES ($1, $2, $3::numeric, $4) RETURNING id_order`,
		productID, amount, price, createdAt,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}

	return id
}

// CleanupDB truncates all tables and resets their sequences.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`TRUNCATE product_warehouse, "order", warehouse, product RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// Snapshot summarizes the mutable state a fulfillment touches.
type Snapshot struct {
	LineItems       int
	FulfilledOrders int
}

// TakeSnapshot reads the current Snapshot.
func TakeSnapshot(t *testing.T, pool *pgxpool.Pool) Snapshot {
	t.Helper()

	var s Snapshot
	err := pool.QueryRow(context.Background(), `
		SELECT
			(SELECT COUNT(*) FROM product_warehouse),
			(SELECT COUNT(*) FROM "order" WHERE fulfilled_at IS NOT NULL)`,
	).Scan(&s.LineItems, &s.FulfilledOrders)
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}

	return s
}
