package http

import (
	"net/http"
	"strings"

	"boxoffice/internal/auth"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const correlationHeader = "X-Correlation-ID"

const correlationContextKey = "correlation_id"

// CorrelationID attaches a correlation ID to every request: reused from the
// inbound header when present, generated otherwise, and echoed back in the
// response so errors can be traced to their originating request.
func CorrelationID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(correlationHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(correlationContextKey, id)
			c.Response().Header().Set(correlationHeader, id)
			return next(c)
		}
	}
}

func CorrelationIDFrom(c echo.Context) string {
	id, _ := c.Get(correlationContextKey).(string)
	return id
}

// RequireAuth guards a route group with bearer-token authentication.
func RequireAuth(authn auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{
					Error:         "bearer token required",
					Code:          codeUnauthorized,
					CorrelationID: CorrelationIDFrom(c),
				})
			}

			principal, err := authn.Authenticate(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{
					Error:         "invalid credentials",
					Code:          codeUnauthorized,
					CorrelationID: CorrelationIDFrom(c),
				})
			}

			c.Set("principal", principal)
			return next(c)
		}
	}
}
