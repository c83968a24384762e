package http

import (
	"context"
	"net/http"
	"time"

	"boxoffice/internal/app"
	"boxoffice/internal/domain"

	"github.com/labstack/echo/v4"
)

// HoldCreator is the minimal interface needed to create a hold.
type HoldCreator interface {
	CreateHold(ctx context.Context, in app.CreateHoldInput) (domain.Hold, error)
}

type createHoldRequest struct {
	EventID    string `json:"event_id"`
	Qty        int    `json:"qty"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type createHoldResponse struct {
	HoldID       string    `json:"hold_id"`
	PaymentToken string    `json:"payment_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HandleCreateHold returns the POST /api/holds handler.
func HandleCreateHold(svc HoldCreator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createHoldRequest
		if err := c.Bind(&req); err != nil {
			return writeBadRequest(c, codeInvalidRequestBody, "invalid request body")
		}
		if req.EventID == "" {
			return writeBadRequest(c, codeInvalidID, "event_id is required")
		}
		if req.Qty <= 0 {
			return writeBadRequest(c, codeInvalidQuantity, domain.ErrInvalidQuantity.Error())
		}
		if req.TTLSeconds < 0 {
			return writeBadRequest(c, codeInvalidTTL, domain.ErrInvalidTTL.Error())
		}

		hold, err := svc.CreateHold(c.Request().Context(), app.CreateHoldInput{
			EventID: req.EventID,
			Qty:     req.Qty,
			TTL:     time.Duration(req.TTLSeconds) * time.Second,
		})
		if err != nil {
			return writeDomainError(c, err)
		}

		return c.JSON(http.StatusCreated, createHoldResponse{
			HoldID:       hold.ID,
			PaymentToken: hold.PaymentToken,
			ExpiresAt:    hold.ExpiresAt,
		})
	}
}
