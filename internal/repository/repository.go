package repository

import (
	"context"
	"time"

	"warehouse-receiving/internal/model"

	"github.com/jackc/pgx/v5"
)

// Transactor starts the unit of work every fulfillment runs in.
type Transactor interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// ProductRepository defines product lookups.
type ProductRepository interface {
	// Exists reports whether a product with the given ID exists.
	Exists(ctx context.Context, tx pgx.Tx, id int) (bool, error)
}

// WarehouseRepository defines warehouse lookups.
type WarehouseRepository interface {
	// Exists reports whether a warehouse with the given ID exists.
	Exists(ctx context.Context, tx pgx.Tx, id int) (bool, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// FindMatchingForUpdate locks and returns the order for productID and amount created
	// strictly before the given time. Unfulfilled orders come first, then lowest ID.
	// Returns nil when nothing matches.
	FindMatchingForUpdate(ctx context.Context, tx pgx.Tx, productID, amount int, before time.Time) (*model.Order, error)

	// MarkFulfilled sets the fulfillment time of an order.
	MarkFulfilled(ctx context.Context, tx pgx.Tx, orderID int, at time.Time) error

	// GetByID retrieves an order outside of any transaction. Returns nil when absent.
	GetByID(ctx context.Context, id int) (*model.Order, error)
}

// LineItemRepository defines access to the product_warehouse records.
type LineItemRepository interface {
	// ExistsForOrder reports whether any line item references the order.
	ExistsForOrder(ctx context.Context, tx pgx.Tx, orderID int) (bool, error)

	// Create inserts the line item and sets its generated ID.
	Create(ctx context.Context, tx pgx.Tx, item *model.LineItem) error

	// GetByOrderID retrieves the line item recorded for an order. Returns nil when absent.
	GetByOrderID(ctx context.Context, orderID int) (*model.LineItem, error)
}
