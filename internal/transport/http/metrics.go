package http

import (
	"context"
	"net/http"
	"time"

	"boxoffice/internal/domain"

	"github.com/labstack/echo/v4"
)

// MetricsProvider is the slice of the metrics service the handlers need.
type MetricsProvider interface {
	GetEventMetrics(ctx context.Context, eventID string) (domain.EventMetrics, error)
	GetSystemMetrics(ctx context.Context) (domain.SystemMetrics, error)
}

type eventMetricsResponse struct {
	EventName        string    `json:"event_name"`
	TotalHolds       int       `json:"total_holds"`
	TotalBookings    int       `json:"total_bookings"`
	TotalExpiries    int       `json:"total_expiries"`
	TotalHeldSeats   int       `json:"total_held_seats"`
	TotalBookedSeats int       `json:"total_booked_seats"`
	TotalExpiredSeat int       `json:"total_expired_seats"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type systemMetricsResponse struct {
	TotalEvents      int              `json:"total_events"`
	TotalActiveHolds int              `json:"total_active_holds"`
	TotalBookings    int              `json:"total_bookings"`
	TotalExpiries    int              `json:"total_expiries"`
	TotalHeldSeats   int              `json:"total_held_seats"`
	TotalBookedSeats int              `json:"total_booked_seats"`
	TotalExpiredSeat int              `json:"total_expired_seats"`
	UptimeSeconds    int64            `json:"uptime_seconds"`
	RedisMetrics     map[string]int64 `json:"redis_metrics"`
}

func HandleEventMetrics(svc MetricsProvider) echo.HandlerFunc {
	return func(c echo.Context) error {
		m, err := svc.GetEventMetrics(c.Request().Context(), c.Param("id"))
		if err != nil {
			return writeDomainError(c, err)
		}

		return c.JSON(http.StatusOK, eventMetricsResponse{
			EventName:        m.EventName,
			TotalHolds:       m.TotalHolds,
			TotalBookings:    m.TotalBookings,
			TotalExpiries:    m.TotalExpiries,
			TotalHeldSeats:   m.HeldSeats,
			TotalBookedSeats: m.BookedSeats,
			TotalExpiredSeat: m.ExpiredSeats,
			UpdatedAt:        m.UpdatedAt,
		})
	}
}

func HandleSystemMetrics(svc MetricsProvider) echo.HandlerFunc {
	return func(c echo.Context) error {
		m, err := svc.GetSystemMetrics(c.Request().Context())
		if err != nil {
			return writeDomainError(c, err)
		}

		return c.JSON(http.StatusOK, systemMetricsResponse{
			TotalEvents:      m.TotalEvents,
			TotalActiveHolds: m.TotalActiveHolds,
			TotalBookings:    m.TotalBookings,
			TotalExpiries:    m.TotalExpiries,
			TotalHeldSeats:   m.HeldSeats,
			TotalBookedSeats: m.BookedSeats,
			TotalExpiredSeat: m.ExpiredSeats,
			UptimeSeconds:    m.UptimeSeconds,
			RedisMetrics:     m.Counters,
		})
	}
}
