// Package apierror provides standardized error structures for the sale engine and
// its HTTP adapter. All errors returned to clients go through this package to ensure
// consistency and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail   string `json:"detail"`
	Kind     Kind   `json:"kind,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// ── Domain errors ─────────────────────────────────────────────────────────────

// Kind classifies an engine failure. Only KindConcurrency is safe to retry.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindNotFound               Kind = "not_found"
	KindInsufficientStock      Kind = "insufficient_stock"
	KindCreditRequiresCustomer Kind = "credit_requires_customer"
	KindUnderPayment           Kind = "under_payment"
	KindOverPaymentMismatch    Kind = "over_payment_mismatch"
	KindInvalidDiscount        Kind = "invalid_discount"
	KindConcurrency            Kind = "concurrency"
)

// Error is a business or storage failure carrying enough structure (kind plus
// offending entity) for the caller to render an actionable message.
type Error struct {
	Kind     Kind
	EntityID string
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind, and by entity when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.EntityID == "" || t.EntityID == e.EntityID)
}

// Sentinels for errors.Is.
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInsufficientStock      = &Error{Kind: KindInsufficientStock}
	ErrCreditRequiresCustomer = &Error{Kind: KindCreditRequiresCustomer}
	ErrUnderPayment           = &Error{Kind: KindUnderPayment}
	ErrOverPaymentMismatch    = &Error{Kind: KindOverPaymentMismatch}
	ErrInvalidDiscount        = &Error{Kind: KindInvalidDiscount}
	ErrConcurrency            = &Error{Kind: KindConcurrency}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// NotFound is also returned for entities that exist in another tenant.
func NotFound(entidad string, id fmt.Stringer) *Error {
	return &Error{Kind: KindNotFound, EntityID: id.String(), Detail: fmt.Sprintf("%s %s no encontrado", entidad, id)}
}

func InsufficientStock(productoID fmt.Stringer, nombre string) *Error {
	return &Error{Kind: KindInsufficientStock, EntityID: productoID.String(), Detail: "Stock insuficiente para " + nombre}
}

func CreditRequiresCustomer() *Error {
	return &Error{Kind: KindCreditRequiresCustomer, Detail: "La venta a credito requiere un cliente"}
}

func UnderPayment(pendiente fmt.Stringer) *Error {
	return &Error{Kind: KindUnderPayment, Detail: fmt.Sprintf("El monto total de pagos es insuficiente: faltan %s", pendiente)}
}

func OverPaymentMismatch(exceso fmt.Stringer) *Error {
	return &Error{Kind: KindOverPaymentMismatch, Detail: fmt.Sprintf("Los pagos no en efectivo exceden el total por %s", exceso)}
}

func InvalidDiscount(total fmt.Stringer) *Error {
	return &Error{Kind: KindInvalidDiscount, Detail: fmt.Sprintf("El descuento deja un total negativo (%s)", total)}
}

func Concurrency(err error) *Error {
	return &Error{Kind: KindConcurrency, Detail: "Conflicto de concurrencia, reintente", Err: err}
}

// ── Classification ────────────────────────────────────────────────────────────

// lockSQLStates are the Postgres codes for serialization failure, deadlock and
// lock_not_available.
var lockSQLStates = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
}

// IsConcurrency reports whether err is a lock/timeout-class storage failure
// (Postgres lock SQLSTATEs, SQLite busy/locked).
// Context cancellation is never one: a cancelled sale must not be retried.
func IsConcurrency(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrConcurrency) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return lockSQLStates[pgErr.Code]
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked
	}
	return false
}

// HTTPStatus maps an engine error to the response status used by the handlers.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindInvalidDiscount,
		KindCreditRequiresCustomer, KindUnderPayment, KindOverPaymentMismatch:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock, KindConcurrency:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the client envelope. Unknown errors never leak their text.
func FromError(err error) *APIError {
	var e *Error
	if !errors.As(err, &e) {
		return New("Error interno del servidor")
	}
	return &APIError{Detail: e.Detail, Kind: e.Kind, EntityID: e.EntityID}
}
