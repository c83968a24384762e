package http

import (
	"errors"
	"log/slog"
	"net/http"

	"boxoffice/internal/domain"

	"github.com/labstack/echo/v4"
)

const (
	codeInvalidRequestBody  = "invalid_request_body"
	codeEventNameRequired   = "event_name_required"
	codeInvalidCapacity     = "invalid_capacity"
	codeInvalidQuantity     = "invalid_quantity"
	codeInvalidTTL          = "invalid_ttl"
	codeInvalidID           = "invalid_id"
	codeEventNotFound       = "event_not_found"
	codeHoldNotFound        = "hold_not_found"
	codeInsufficientSeats   = "insufficient_seats"
	codeLockTimeout         = "lock_timeout"
	codeHoldExpired         = "hold_expired"
	codeHoldNotActive       = "hold_not_active"
	codeInvalidPaymentToken = "invalid_payment_token"
	codeUnauthorized        = "unauthorized"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// writeDomainError maps domain errors onto HTTP statuses. Conflicts that
// depend on concurrent state (insufficient seats, lock timeouts, terminal
// holds) are 409 so callers know a retry or a fresh hold may change the
// outcome; shape errors are 400; unknown errors are logged and masked.
func writeDomainError(c echo.Context, err error) error {
	status, code := http.StatusInternalServerError, codeInternalError

	switch {
	case errors.Is(err, domain.ErrEventNameRequired):
		status, code = http.StatusBadRequest, codeEventNameRequired
	case errors.Is(err, domain.ErrInvalidCapacity):
		status, code = http.StatusBadRequest, codeInvalidCapacity
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, code = http.StatusBadRequest, codeInvalidQuantity
	case errors.Is(err, domain.ErrInvalidTTL):
		status, code = http.StatusBadRequest, codeInvalidTTL
	case errors.Is(err, domain.ErrInvalidID):
		status, code = http.StatusBadRequest, codeInvalidID
	case errors.Is(err, domain.ErrEventNotFound):
		status, code = http.StatusNotFound, codeEventNotFound
	case errors.Is(err, domain.ErrHoldNotFound):
		status, code = http.StatusNotFound, codeHoldNotFound
	case errors.Is(err, domain.ErrInsufficientSeats):
		status, code = http.StatusConflict, codeInsufficientSeats
	case errors.Is(err, domain.ErrLockTimeout):
		status, code = http.StatusConflict, codeLockTimeout
	case errors.Is(err, domain.ErrHoldExpired):
		status, code = http.StatusConflict, codeHoldExpired
	case errors.Is(err, domain.ErrHoldNotActive):
		status, code = http.StatusConflict, codeHoldNotActive
	case errors.Is(err, domain.ErrInvalidPaymentToken):
		status, code = http.StatusUnauthorized, codeInvalidPaymentToken
	}

	correlationID := CorrelationIDFrom(c)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"path", c.Path(),
			"correlation_id", correlationID,
		)
		msg = "internal error"
	}

	return c.JSON(status, errorResponse{
		Error:         msg,
		Code:          code,
		CorrelationID: correlationID,
	})
}

func writeBadRequest(c echo.Context, code, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{
		Error:         msg,
		Code:          code,
		CorrelationID: CorrelationIDFrom(c),
	})
}
