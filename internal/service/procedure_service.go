package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"warehouse-receiving/internal/model"

	"github.com/rs/zerolog"
)

const callAddProductToWarehouse = `CALL add_product_to_warehouse($1, $2, $3, $4, NULL, NULL, NULL)`

// procedureService delegates the whole fulfillment sequence to the
// add_product_to_warehouse stored procedure.
type procedureService struct {
	db          *sql.DB
	timeout     time.Duration
	lockTimeout time.Duration
	logger      zerolog.Logger
}

// NewProcedureService creates a Fulfiller backed by the stored procedure.
func NewProcedureService(db *sql.DB, timeout, lockTimeout time.Duration, logger zerolog.Logger) Fulfiller {
	return &procedureService{
		db:          db,
		timeout:     timeout,
		lockTimeout: lockTimeout,
		logger:      logger.With().Str("service", "fulfillment_procedure").Logger(),
	}
}

// Fulfill calls the stored procedure in its own transaction.
func (s *procedureService) Fulfill(ctx context.Context, req *model.FulfillmentRequest) (*model.FulfillmentResult, error) {
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

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, s.fail(log, err)
	}
	defer conn.Close()

	// database/sql rolls a transaction back when its context ends.
	// ctx only bounds acquisition and setup.
	tx, err := conn.BeginTx(context.WithoutCancel(ctx), &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, s.fail(log, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	// The CALL runs detached from ctx, so its order-lock wait is bounded here.
	if wait := lockWaitBound(ctx, s.lockTimeout); wait > 0 {
		ms := strconv.FormatInt(wait.Milliseconds(), 10)
		if _, err := tx.ExecContext(ctx, "SELECT set_config('lock_timeout', $1, true)", ms); err != nil {
			return nil, s.fail(log, err)
		}
	}

	// The procedure is one statement; once started it runs to completion.
	callCtx := context.WithoutCancel(ctx)

	var (
		result model.FulfillmentResult
		cents  int64
	)
	err = tx.QueryRowContext(callCtx, callAddProductToWarehouse,
		req.ProductID,
		req.WarehouseID,
		req.Amount,
		req.CreatedAt,
	).Scan(&result.LineItemID, &result.OrderID, &cents)
	if err != nil {
		return nil, s.fail(log, err)
	}
	result.TotalPrice = model.Money(cents)

	if err := tx.Commit(); err != nil {
		return nil, s.fail(log, classifyCommitError(err))
	}
	committed = true

	log.Info().
		Int("id_order", result.OrderID).
		Int("id_product_warehouse", result.LineItemID).
		Str("total_price", result.TotalPrice.String()).
		Msg("order fulfilled by procedure")

	return &result, nil
}

// lockWaitBound returns the configured lock wait, capped at the time left
// before ctx's deadline. Zero means unbounded.
func lockWaitBound(ctx context.Context, configured time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return configured
	}
	left := time.Until(deadline)
	if left < time.Millisecond {
		left = time.Millisecond
	}
	if configured <= 0 || left < configured {
		return left
	}
	return configured
}

func (s *procedureService) fail(log zerolog.Logger, err error) error {
	classified := classifyStoreError(err)
	logFailure(log, classified)
	return classified
}
