package service

import (
	"context"
	"database/sql/driver"
	"net"
	"regexp"
	"strconv"
	"syscall"
	"testing"
	"time"

	"warehouse-receiving/internal/model"
	"warehouse-receiving/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	callQuery      = regexp.QuoteMeta(callAddProductToWarehouse)
	setLockTimeout = regexp.QuoteMeta("SELECT set_config('lock_timeout', $1, true)")
)

func TestProcedureService_Fulfill_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := testRequest()
	svc := NewProcedureService(db, time.Minute, 5*time.Second, zerolog.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(setLockTimeout).WithArgs("5000").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(callQuery).
		WithArgs(1, 1, 5, req.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"p_new_id", "p_id_order", "p_total_cents"}).AddRow(42, 7, 5000))
	mock.ExpectCommit()

	result, err := svc.Fulfill(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 42, result.LineItemID)
	assert.Equal(t, 7, result.OrderID)
	assert.Equal(t, model.Money(5000), result.TotalPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcedureService_Fulfill_WithoutLockTimeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := testRequest()
	svc := NewProcedureService(db, 0, 0, zerolog.Nop())

	mock.ExpectBegin()
	mock.ExpectQuery(callQuery).
		WithArgs(1, 1, 5, req.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"p_new_id", "p_id_order", "p_total_cents"}).AddRow(1, 1, 100))
	mock.ExpectCommit()

	_, err = svc.Fulfill(context.Background(), req)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcedureService_Fulfill_InvalidAmount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := testRequest()
	req.Amount = 0
	svc := NewProcedureService(db, time.Second, 0, zerolog.Nop())

	result, err := svc.Fulfill(context.Background(), req)

	assert.Nil(t, result)
	assert.Equal(t, model.ErrInvalidAmount, err)
	// No expectations were set: any store access would fail this.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcedureService_Fulfill_ProcedureErrors(t *testing.T) {
	tests := []struct {
		name         string
		pgErr        *pgconn.PgError
		expectedErr  error
		expectedKind model.ErrorKind
	}{
		{
			name:        "Product not found",
			pgErr:       &pgconn.PgError{Code: pgerrcode.NoDataFound, TableName: "product", Message: "Product not found"},
			expectedErr: model.ErrProductNotFound,
		},
		{
			name:        "Warehouse not found",
			pgErr:       &pgconn.PgError{Code: pgerrcode.NoDataFound, TableName: "warehouse", Message: "Warehouse not found"},
			expectedErr: model.ErrWarehouseNotFound,
		},
		{
			name:        "Order not found",
			pgErr:       &pgconn.PgError{Code: pgerrcode.NoDataFound, TableName: "order", Message: "Order not found"},
			expectedErr: model.ErrOrderNotFound,
		},
		{
			name: "Order already fulfilled",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: repository.LineItemOrderConstraint,
				Message:        "Order already fulfilled",
			},
			expectedErr: model.ErrOrderAlreadyFulfilled,
		},
		{
			name:        "Amount rejected by procedure",
			pgErr:       &pgconn.PgError{Code: pgerrcode.InvalidParameterValue},
			expectedErr: model.ErrInvalidAmount,
		},
		{
			name:        "Total out of range",
			pgErr:       &pgconn.PgError{Code: pgerrcode.NumericValueOutOfRange},
			expectedErr: model.ErrTotalOutOfRange,
		},
		{
			name:         "Lock wait exceeded",
			pgErr:        &pgconn.PgError{Code: pgerrcode.LockNotAvailable},
			expectedKind: model.KindTransient,
		},
		{
			name:         "Procedure missing",
			pgErr:        &pgconn.PgError{Code: pgerrcode.UndefinedFunction},
			expectedKind: model.KindFatal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			req := testRequest()
			svc := NewProcedureService(db, time.Second, 0, zerolog.Nop())

			mock.ExpectBegin()
			mock.ExpectExec(setLockTimeout).WithArgs(lockWaitAtMost(time.Second)).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(callQuery).WithArgs(1, 1, 5, req.CreatedAt).WillReturnError(tt.pgErr)
			mock.ExpectRollback()

			result, err := svc.Fulfill(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, result)
			if tt.expectedErr != nil {
				assert.Equal(t, tt.expectedErr, err)
			} else {
				assert.Equal(t, tt.expectedKind, model.KindOf(err))
				assert.ErrorIs(t, err, tt.pgErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProcedureService_Fulfill_CommitFailure(t *testing.T) {
	tests := []struct {
		name         string
		commitErr    error
		expectedKind model.ErrorKind
		message      string
	}{
		{
			name:         "Serialization failure is retryable",
			commitErr:    &pgconn.PgError{Code: pgerrcode.SerializationFailure},
			expectedKind: model.KindTransient,
			message:      "store temporarily unavailable",
		},
		{
			name:         "Connection lost leaves outcome unknown",
			commitErr:    &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET},
			expectedKind: model.KindFatal,
			message:      "commit outcome unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			req := testRequest()
			svc := NewProcedureService(db, 0, 0, zerolog.Nop())

			mock.ExpectBegin()
			mock.ExpectQuery(callQuery).
				WithArgs(1, 1, 5, req.CreatedAt).
				WillReturnRows(sqlmock.NewRows([]string{"p_new_id", "p_id_order", "p_total_cents"}).AddRow(42, 7, 5000))
			mock.ExpectCommit().WillReturnError(tt.commitErr)

			result, err := svc.Fulfill(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.expectedKind, model.KindOf(err))
			assert.Contains(t, err.Error(), tt.message)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProcedureService_Fulfill_LockWaitBoundedByTimeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := testRequest()
	svc := NewProcedureService(db, 2*time.Second, 0, zerolog.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(setLockTimeout).WithArgs(lockWaitAtMost(2 * time.Second)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(callQuery).
		WithArgs(1, 1, 5, req.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"p_new_id", "p_id_order", "p_total_cents"}).AddRow(42, 7, 5000))
	mock.ExpectCommit()

	_, err = svc.Fulfill(context.Background(), req)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockWaitBound(t *testing.T) {
	noDeadline := context.Background()
	soon, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	assert.Equal(t, time.Duration(0), lockWaitBound(noDeadline, 0))
	assert.Equal(t, 5*time.Second, lockWaitBound(noDeadline, 5*time.Second))
	assert.Equal(t, 100*time.Millisecond, lockWaitBound(soon, 100*time.Millisecond))

	capped := lockWaitBound(soon, 5*time.Second)
	assert.Greater(t, capped, time.Duration(0))
	assert.LessOrEqual(t, capped, 300*time.Millisecond)

	unbounded := lockWaitBound(soon, 0)
	assert.Greater(t, unbounded, time.Duration(0))
	assert.LessOrEqual(t, unbounded, 300*time.Millisecond)

	assert.Equal(t, time.Millisecond, lockWaitBound(expired, 0))
}

// lockWaitArg matches a lock_timeout setting in milliseconds within (0, max].
type lockWaitArg struct {
	max time.Duration
}

func lockWaitAtMost(max time.Duration) lockWaitArg {
	return lockWaitArg{max: max}
}

func (a lockWaitArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	return err == nil && ms > 0 && ms <= a.max.Milliseconds()
}

func TestProcedureService_Fulfill_ClosedDatabase(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	db.Close()

	svc := NewProcedureService(db, time.Second, 0, zerolog.Nop())

	result, err := svc.Fulfill(context.Background(), testRequest())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, model.KindFatal, model.KindOf(err))
}
