package http

import (
	"net/http"

	"boxoffice/internal/auth"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Services bundles everything the HTTP surface needs.
type Services struct {
	Events   EventsService
	Holds    HoldCreator
	Bookings BookingConfirmer
	Metrics  MetricsProvider
	Authn    auth.Authenticator
}

// NewRouter builds the echo instance with all routes and middleware.
func NewRouter(svcs Services, corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(CorrelationID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	api.GET("/events", HandleListEvents(svcs.Events))
	api.GET("/events/:id", HandleGetEvent(svcs.Events))
	api.GET("/events/:id/metrics", HandleEventMetrics(svcs.Metrics))
	api.GET("/metrics", HandleSystemMetrics(svcs.Metrics))

	api.POST("/holds", HandleCreateHold(svcs.Holds))
	api.POST("/book", HandleConfirmBooking(svcs.Bookings))

	// Event creation is the admin surface; everything else is public.
	api.POST("/events", HandleCreateEvent(svcs.Events), RequireAuth(svcs.Authn))

	return e
}
