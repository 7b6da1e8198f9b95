package model

import "time"

// Order is a purchase order waiting to be received into a warehouse.
type Order struct {
	ID          int        `json:"idOrder" db:"id_order"`
	ProductID   int        `json:"idProduct" db:"id_product"`
	Amount      int        `json:"amount" db:"amount"`
	UnitPrice   Money      `json:"price" db:"price"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	FulfilledAt *time.Time `json:"fulfilledAt,omitempty" db:"fulfilled_at"`
}

// IsFulfilled reports whether the fulfillment time has been recorded.
func (o *Order) IsFulfilled() bool {
	return o.FulfilledAt != nil
}

// LineItem records stock received into a warehouse against one order.
type LineItem struct {
	ID          int       `json:"idProductWarehouse" db:"id_product_warehouse"`
	WarehouseID int       `json:"idWarehouse" db:"id_warehouse"`
	ProductID   int       `json:"idProduct" db:"id_product"`
	OrderID     int       `json:"idOrder" db:"id_order"`
	Amount      int       `json:"amount" db:"amount"`
	TotalPrice  Money     `json:"price" db:"price"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// FulfillmentRequest is the payload for receiving stock against an order.
type FulfillmentRequest struct {
	ProductID   int       `json:"idProduct"`
	WarehouseID int       `json:"idWarehouse"`
	Amount      int       `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FulfillmentResult describes a committed fulfillment.
type FulfillmentResult struct {
	LineItemID int   `json:"idLineItem"`
	OrderID    int   `json:"idOrder"`
	TotalPrice Money `json:"totalPrice"`
}

// FulfillmentResponse is the HTTP response body for a successful fulfillment.
type FulfillmentResponse struct {
	LineItemID int `json:"idLineItem"`
}
