package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation              = "VALIDATION_ERROR"
	ErrCodeBadRequest              = "BAD_REQUEST"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeUnauthorized            = "UNAUTHORIZED"
	ErrCodeConflict                = "CONFLICT"
	ErrCodeInternal                = "INTERNAL_ERROR"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeTooManyRequests         = "TOO_MANY_REQUESTS"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
	ErrCodeUpstreamUnavailable     = "UPSTREAM_UNAVAILABLE"
	ErrCodePaymentNotCompleted     = "PAYMENT_NOT_COMPLETED"
	ErrCodeOrderPersistenceFailure = "ORDER_PERSISTENCE_FAILURE"
	ErrCodeTimeout                 = "TIMEOUT"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrCodeConflict, message, http.StatusConflict)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrCodeTooManyRequests, message, http.StatusTooManyRequests)
}

func InvalidQuantityError(message string) *AppError {
	return NewAppError(ErrCodeInvalidQuantity, message, http.StatusBadRequest)
}

func InsufficientStockError(message string) *AppError {
	return NewAppError(ErrCodeInsufficientStock, message, http.StatusBadRequest)
}

// UpstreamUnavailableError covers non-success responses and network errors
// from the payment, catalog, chat and try-on providers.
func UpstreamUnavailableError(message string) *AppError {
	return NewAppError(ErrCodeUpstreamUnavailable, message, http.StatusBadGateway)
}

func PaymentNotCompletedError(message string) *AppError {
	return NewAppError(ErrCodePaymentNotCompleted, message, http.StatusPaymentRequired)
}

// OrderPersistenceFailureError is raised when payment succeeded but no order
// record could be written.
func OrderPersistenceFailureError(message string) *AppError {
	return NewAppError(ErrCodeOrderPersistenceFailure, message, http.StatusInternalServerError)
}

func TimeoutError(message string) *AppError {
	return NewAppError(ErrCodeTimeout, message, http.StatusGatewayTimeout)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
