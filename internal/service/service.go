package service

import (
	"context"
	"math"

	"warehouse-receiving/internal/model"
)

// Fulfiller receives stock into a warehouse against a matching purchase order.
//
// Implementations either commit exactly one line item and the order's
// fulfillment time, or leave the store untouched and return a *model.DomainError.
type Fulfiller interface {
	Fulfill(ctx context.Context, req *model.FulfillmentRequest) (*model.FulfillmentResult, error)
}

// validateRequest rejects requests no store state could satisfy. Store
// columns are INTEGER, so values outside int32 are rejected before they
// reach the driver.
func validateRequest(req *model.FulfillmentRequest) error {
	switch {
	case req == nil || req.Amount <= 0:
		return model.ErrInvalidAmount
	case req.Amount > math.MaxInt32:
		return model.ErrAmountOutOfRange
	case req.ProductID > math.MaxInt32 || req.ProductID < math.MinInt32:
		return model.ErrProductNotFound
	case req.WarehouseID > math.MaxInt32 || req.WarehouseID < math.MinInt32:
		return model.ErrWarehouseNotFound
	}
	return nil
}
