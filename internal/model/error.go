package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeInvalidAmount     = "INVALID_AMOUNT"
	ErrCodeTotalOutOfRange   = "TOTAL_OUT_OF_RANGE"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeWarehouseNotFound = "WAREHOUSE_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeAlreadyFulfilled  = "ORDER_ALREADY_FULFILLED"
	ErrCodeStoreUnavailable  = "STORE_UNAVAILABLE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeTooManyRequests   = "TOO_MANY_REQUESTS"
)

// ErrorKind classifies a failure by how the caller should react to it.
type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindTransient
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Entity names the record a NotFound or Conflict error refers to.
type Entity string

const (
	EntityProduct   Entity = "product"
	EntityWarehouse Entity = "warehouse"
	EntityOrder     Entity = "order"
)

// DomainError is the single error type returned by fulfillment.
// Transient and Fatal errors carry the underlying store fault in Err.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Entity  Entity
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Kind and Entity so wrapped errors compare equal to the sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Entity == t.Entity
}

// Retryable reports whether repeating the same request may succeed.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindTransient
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NotFound creates a not-found error for the given entity.
func NotFound(entity Entity) *DomainError {
	code, message := ErrCodeOrderNotFound, "Order not found"
	switch entity {
	case EntityProduct:
		code, message = ErrCodeProductNotFound, "Product not found"
	case EntityWarehouse:
		code, message = ErrCodeWarehouseNotFound, "Warehouse not found"
	}
	return &DomainError{
		Kind:    KindNotFound,
		Code:    code,
		Entity:  entity,
		Message: message,
	}
}

// Transient wraps a store fault that is safe to retry.
func Transient(err error) *DomainError {
	return &DomainError{
		Kind:    KindTransient,
		Code:    ErrCodeStoreUnavailable,
		Message: "store temporarily unavailable",
		Err:     err,
	}
}

// Fatal wraps an unexpected, non-retryable store fault.
func Fatal(err error) *DomainError {
	return &DomainError{
		Kind:    KindFatal,
		Code:    ErrCodeInternalError,
		Message: "unexpected store failure",
		Err:     err,
	}
}

// CommitOutcomeUnknown wraps a commit that failed without a server response.
// The transaction may have landed, so the request must not be replayed.
func CommitOutcomeUnknown(err error) *DomainError {
	return &DomainError{
		Kind:    KindFatal,
		Code:    ErrCodeInternalError,
		Message: "commit outcome unknown",
		Err:     err,
	}
}

// KindOf returns the kind of err, or KindFatal if err is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindFatal
}

// Common domain errors
var (
	ErrInvalidAmount         = NewDomainError(KindInvalidInput, ErrCodeInvalidAmount, "Amount must be greater than zero")
	ErrAmountOutOfRange      = NewDomainError(KindInvalidInput, ErrCodeInvalidAmount, "Amount exceeds the largest orderable quantity")
	ErrTotalOutOfRange       = NewDomainError(KindInvalidInput, ErrCodeTotalOutOfRange, "Total price exceeds the representable range")
	ErrProductNotFound       = NotFound(EntityProduct)
	ErrWarehouseNotFound     = NotFound(EntityWarehouse)
	ErrOrderNotFound         = NotFound(EntityOrder)
	ErrOrderAlreadyFulfilled = &DomainError{
		Kind:    KindConflict,
		Code:    ErrCodeAlreadyFulfilled,
		Entity:  EntityOrder,
		Message: "Order already fulfilled",
	}
)
