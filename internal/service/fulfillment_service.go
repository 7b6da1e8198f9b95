package service

import (
	"context"
	"errors"
	"time"

	"warehouse-receiving/internal/model"
	"warehouse-receiving/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// fulfillmentService runs the fulfillment sequence as application-level
// orchestration inside one READ COMMITTED transaction.
type fulfillmentService struct {
	transactor repository.Transactor
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	orders     repository.OrderRepository
	lineItems  repository.LineItemRepository
	timeout    time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewFulfillmentService creates the transactional Fulfiller. A zero timeout
// leaves the caller's deadline as the only bound.
func NewFulfillmentService(
	transactor repository.Transactor,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	orders repository.OrderRepository,
	lineItems repository.LineItemRepository,
	timeout time.Duration,
	logger zerolog.Logger,
) Fulfiller {
	return &fulfillmentService{
		transactor: transactor,
		products:   products,
		warehouses: warehouses,
		orders:     orders,
		lineItems:  lineItems,
		timeout:    timeout,
		now:        time.Now,
		logger:     logger.With().Str("service", "fulfillment").Logger(),
	}
}

// Fulfill validates the request, locks the matching order and records the line item.
func (s *fulfillmentService) Fulfill(ctx context.Context, req *model.FulfillmentRequest) (*model.FulfillmentResult, error) {
	if err := validateRequest(req); err != nil {
		s.logger.Warn().Err(err).Msg("invalid fulfillment request")
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.logger.With().
		Int("id_product", req.ProductID).
		Int("id_warehouse", req.WarehouseID).
		Int("amount", req.Amount).
		Logger()

	tx, err := s.transactor.BeginTx(ctx)
	if err != nil {
		return nil, s.fail(log, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	result, err := s.fulfill(ctx, tx, req)
	if err != nil {
		return nil, s.fail(log, err)
	}

	// Commit transaction
	if err := tx.Commit(context.WithoutCancel(ctx)); err != nil {
		return nil, s.fail(log, classifyCommitError(err))
	}
	committed = true

	log.Info().
		Int("id_order", result.OrderID).
		Int("id_product_warehouse", result.LineItemID).
		Str("total_price", result.TotalPrice.String()).
		Msg("order fulfilled")

	return result, nil
}

func (s *fulfillmentService) fulfill(ctx context.Context, tx pgx.Tx, req *model.FulfillmentRequest) (*model.FulfillmentResult, error) {
	exists, err := s.products.Exists(ctx, tx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrProductNotFound
	}

	exists, err = s.warehouses.Exists(ctx, tx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrWarehouseNotFound
	}

	order, err := s.orders.FindMatchingForUpdate(ctx, tx, req.ProductID, req.Amount, req.CreatedAt)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	fulfilled, err := s.lineItems.ExistsForOrder(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	if fulfilled {
		return nil, model.ErrOrderAlreadyFulfilled
	}

	total, err := order.UnitPrice.Times(req.Amount)
	if err != nil {
		return nil, err
	}

	// From here on the unit of work runs to commit or rollback regardless of the caller.
	writeCtx := context.WithoutCancel(ctx)
	now := s.now()

	if err := s.orders.MarkFulfilled(writeCtx, tx, order.ID, now); err != nil {
		return nil, err
	}

	item := &model.LineItem{
		WarehouseID: req.WarehouseID,
		ProductID:   req.ProductID,
		OrderID:     order.ID,
		Amount:      req.Amount,
		TotalPrice:  total,
		CreatedAt:   now,
	}
	if err := s.lineItems.Create(writeCtx, tx, item); err != nil {
		return nil, err
	}

	return &model.FulfillmentResult{
		LineItemID: item.ID,
		OrderID:    order.ID,
		TotalPrice: item.TotalPrice,
	}, nil
}

// fail classifies err and logs it at a level matching its kind.
func (s *fulfillmentService) fail(log zerolog.Logger, err error) error {
	classified := classifyStoreError(err)
	logFailure(log, classified)
	return classified
}

func logFailure(log zerolog.Logger, err error) {
	kind := model.KindOf(err)
	var event *zerolog.Event
	switch kind {
	case model.KindTransient, model.KindFatal:
		event = log.Error()
	default:
		event = log.Warn()
	}
	event.Err(err).Str("kind", kind.String()).Msg("fulfillment failed")
}
