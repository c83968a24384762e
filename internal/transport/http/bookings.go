package http

import (
	"context"
	"net/http"

	"boxoffice/internal/app"

	"github.com/labstack/echo/v4"
)

// BookingConfirmer is the minimal interface needed to confirm a booking.
type BookingConfirmer interface {
	ConfirmBooking(ctx context.Context, in app.ConfirmBookingInput) (app.ConfirmBookingResult, error)
}

type confirmBookingRequest struct {
	HoldID       string `json:"hold_id"`
	PaymentToken string `json:"payment_token"`
}

type confirmBookingResponse struct {
	BookingID string `json:"booking_id"`
}

// HandleConfirmBooking returns the POST /api/book handler. Replays of an
// already-confirmed hold get 200 with the same booking reference; a fresh
// confirmation gets 201.
func HandleConfirmBooking(svc BookingConfirmer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req confirmBookingRequest
		if err := c.Bind(&req); err != nil {
			return writeBadRequest(c, codeInvalidRequestBody, "invalid request body")
		}
		if req.HoldID == "" {
			return writeBadRequest(c, codeInvalidID, "hold_id is required")
		}
		if req.PaymentToken == "" {
			return writeBadRequest(c, codeInvalidPaymentToken, "payment_token is required")
		}

		result, err := svc.ConfirmBooking(c.Request().Context(), app.ConfirmBookingInput{
			HoldID:       req.HoldID,
			PaymentToken: req.PaymentToken,
		})
		if err != nil {
			return writeDomainError(c, err)
		}

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		return c.JSON(status, confirmBookingResponse{
			BookingID: result.Booking.BookingRef,
		})
	}
}
