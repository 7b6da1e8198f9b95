package service

import (
	"context"
	"errors"
	"net"

	"warehouse-receiving/internal/model"
	"warehouse-receiving/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// classifyStoreError maps a failure from the store onto the domain taxonomy.
// Errors that are already domain errors pass through unchanged.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	var de *model.DomainError
	if errors.As(err, &de) {
		return de
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.Transient(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPgError(pgErr, err)
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return model.Transient(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return model.Transient(err)
	}

	return model.Fatal(err)
}

// classifyCommitError is classifyStoreError for a failed COMMIT. A failure
// that carries no server response leaves the outcome unknown and is never
// reported as retryable.
func classifyCommitError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) || pgconn.SafeToRetry(err) {
		return classifyStoreError(err)
	}
	return model.CommitOutcomeUnknown(err)
}

func classifyPgError(pgErr *pgconn.PgError, err error) error {
	switch {
	case pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == repository.LineItemOrderConstraint:
		return model.ErrOrderAlreadyFulfilled
	case pgErr.Code == pgerrcode.NoDataFound:
		switch model.Entity(pgErr.TableName) {
		case model.EntityProduct:
			return model.ErrProductNotFound
		case model.EntityWarehouse:
			return model.ErrWarehouseNotFound
		case model.EntityOrder:
			return model.ErrOrderNotFound
		}
		return model.Fatal(err)
	case pgErr.Code == pgerrcode.InvalidParameterValue:
		return model.ErrInvalidAmount
	case pgErr.Code == pgerrcode.NumericValueOutOfRange:
		return model.ErrTotalOutOfRange
	case pgerrcode.IsTransactionRollback(pgErr.Code),
		pgErr.Code == pgerrcode.LockNotAvailable,
		pgerrcode.IsConnectionException(pgErr.Code),
		pgerrcode.IsInsufficientResources(pgErr.Code),
		pgerrcode.IsOperatorIntervention(pgErr.Code):
		return model.Transient(err)
	default:
		return model.Fatal(err)
	}
}
