package http

import (
	"context"
	"net/http"
	"time"

	"boxoffice/internal/app"
	"boxoffice/internal/domain"

	"github.com/labstack/echo/v4"
)

// EventsService is the slice of the event service the handlers need.
type EventsService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetAvailability(ctx context.Context, eventID string) (domain.Availability, error)
}

type createEventRequest struct {
	Name       string `json:"name"`
	TotalSeats int    `json:"total_seats"`
}

type eventResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TotalSeats int       `json:"total_seats"`
	CreatedAt  time.Time `json:"created_at"`
}

type availabilityResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Held      int    `json:"held"`
	Booked    int    `json:"booked"`
}

func HandleCreateEvent(svc EventsService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createEventRequest
		if err := c.Bind(&req); err != nil {
			return writeBadRequest(c, codeInvalidRequestBody, "invalid request body")
		}

		event, err := svc.CreateEvent(c.Request().Context(), app.CreateEventInput{
			Name:       req.Name,
			TotalSeats: req.TotalSeats,
		})
		if err != nil {
			return writeDomainError(c, err)
		}

		return c.JSON(http.StatusCreated, eventResponse{
			ID:         event.ID,
			Name:       event.Name,
			TotalSeats: event.TotalSeats,
			CreatedAt:  event.CreatedAt,
		})
	}
}

func HandleListEvents(svc EventsService) echo.HandlerFunc {
	return func(c echo.Context) error {
		events, err := svc.ListEvents(c.Request().Context())
		if err != nil {
			return writeDomainError(c, err)
		}

		resp := make([]eventResponse, 0, len(events))
		for _, e := range events {
			resp = append(resp, eventResponse{
				ID:         e.ID,
				Name:       e.Name,
				TotalSeats: e.TotalSeats,
				CreatedAt:  e.CreatedAt,
			})
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// HandleGetEvent returns live availability for one event.
func HandleGetEvent(svc EventsService) echo.HandlerFunc {
	return func(c echo.Context) error {
		avail, err := svc.GetAvailability(c.Request().Context(), c.Param("id"))
		if err != nil {
			return writeDomainError(c, err)
		}

		return c.JSON(http.StatusOK, availabilityResponse{
			ID:        avail.EventID,
			Name:      avail.Name,
			Total:     avail.Total,
			Available: avail.Available,
			Held:      avail.Held,
			Booked:    avail.Booked,
		})
	}
}
