package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boxoffice/internal/app"
	"boxoffice/internal/auth"
	"boxoffice/internal/domain"

	"github.com/labstack/echo/v4"
)

const testJWTSecret = "test-secret"

func newTestRouter(t *testing.T, svcs Services) *echo.Echo {
	t.Helper()
	if svcs.Authn == nil {
		svcs.Authn = auth.NewJWTAuthenticator(testJWTSecret)
	}
	return NewRouter(svcs, []string{"*"})
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (body %s)", status, rec.Code, rec.Body.String())
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != code {
		t.Fatalf("expected code %q, got %q", code, resp.Code)
	}
	if resp.CorrelationID == "" {
		t.Fatalf("expected correlation id in error response")
	}
}

type fakeHoldCreator struct {
	lastInput app.CreateHoldInput
	hold      domain.Hold
	err       error
}

func (f *fakeHoldCreator) CreateHold(_ context.Context, in app.CreateHoldInput) (domain.Hold, error) {
	f.lastInput = in
	if f.err != nil {
		return domain.Hold{}, f.err
	}
	return f.hold, nil
}

type fakeBookingConfirmer struct {
	lastInput app.ConfirmBookingInput
	result    app.ConfirmBookingResult
	err       error
}

func (f *fakeBookingConfirmer) ConfirmBooking(_ context.Context, in app.ConfirmBookingInput) (app.ConfirmBookingResult, error) {
	f.lastInput = in
	if f.err != nil {
		return app.ConfirmBookingResult{}, f.err
	}
	return f.result, nil
}

type fakeEventsService struct {
	created []app.CreateEventInput
	event   domain.Event
	events  []domain.Event
	avail   domain.Availability
	err     error
}

func (f *fakeEventsService) CreateEvent(_ context.Context, in app.CreateEventInput) (domain.Event, error) {
	if f.err != nil {
		return domain.Event{}, f.err
	}
	f.created = append(f.created, in)
	return f.event, nil
}

func (f *fakeEventsService) ListEvents(context.Context) ([]domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeEventsService) GetAvailability(_ context.Context, eventID string) (domain.Availability, error) {
	if f.err != nil {
		return domain.Availability{}, f.err
	}
	return f.avail, nil
}

type fakeMetricsProvider struct {
	event  domain.EventMetrics
	system domain.SystemMetrics
	err    error
}

func (f *fakeMetricsProvider) GetEventMetrics(_ context.Context, eventID string) (domain.EventMetrics, error) {
	if f.err != nil {
		return domain.EventMetrics{}, f.err
	}
	return f.event, nil
}

func (f *fakeMetricsProvider) GetSystemMetrics(context.Context) (domain.SystemMetrics, error) {
	if f.err != nil {
		return domain.SystemMetrics{}, f.err
	}
	return f.system, nil
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.NewJWTAuthenticator(testJWTSecret).IssueToken("admin", "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
