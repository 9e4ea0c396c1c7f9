package ginserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuecal/internal/app/dto"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/middleware"
	"venuecal/internal/app/validation"
	"venuecal/internal/app/wiring"
	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/pricing"
	"venuecal/internal/domain/shared/money"
	"venuecal/internal/infra/config"
	"venuecal/internal/infra/obs"
	"venuecal/internal/infra/storage/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	buses := wiring.Build(wiring.Deps{
		Calendars:   memory.NewCalendarRepository(),
		Sessions:    memory.NewSessionRepository(),
		Outbox:      memory.NewOutbox(64),
		Idempotency: memory.NewIdempotencyStore(0),
		Validator:   validation.New(),
		Defaults:    availability.Settings{MinNights: 1, NightlyPrice: money.Must(10000, "USD")},
		Terms:       pricing.DefaultTerms("USD"),
		Clock: support.Clock{
			Now:      func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) },
			Location: time.UTC,
		},
	})
	h := Handlers{
		Calendar:  CalendarHandler{Commands: buses.Commands, Queries: buses.Queries},
		Booking:   BookingHandler{Commands: buses.Commands, Queries: buses.Queries},
		Selection: SelectionHandler{Commands: buses.Commands, Queries: buses.Queries},
		Quote:     QuoteHandler{Queries: buses.Queries},
	}
	return NewRouter(config.Config{CORSOrigins: []string{"*"}}, obs.Middleware{}, obs.HealthHandlers{}, h)
}

func do(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestBookingAndMonthFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPut, "/api/v1/venues/v1/calendar", map[string]any{"min_nights": 2, "nightly_price_cents": 10000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[dto.VenueSettings](t, rec).MinNights)

	booking := map[string]string{"booking_id": "b1", "date_from": "2024-03-10", "date_to": "2024-03-12"}
	rec = do(t, r, http.MethodPost, "/api/v1/venues/v1/bookings", booking, "Idempotency-Key", "evt-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/api/v1/venues/v1/bookings", booking, "Idempotency-Key", "evt-1")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "b1", decode[dto.Booking](t, rec).ID)

	overlap := map[string]string{"booking_id": "b2", "date_from": "2024-03-11", "date_to": "2024-03-13"}
	rec = do(t, r, http.MethodPost, "/api/v1/venues/v1/bookings", overlap, "Idempotency-Key", "evt-2")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/venues/v1/calendar?month=2024-03", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	month := decode[dto.CalendarMonth](t, rec)
	require.Len(t, month.Days, 42)
	blocked := map[string]bool{}
	for _, d := range month.Days {
		blocked[d.Date] = d.Blocked
	}
	assert.True(t, blocked["2024-03-10"])
	assert.True(t, blocked["2024-03-11"])
	assert.False(t, blocked["2024-03-12"])

	rec = do(t, r, http.MethodGet, "/api/v1/venues/v1/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]dto.Booking](t, rec)["items"], 1)

	rec = do(t, r, http.MethodDelete, "/api/v1/venues/v1/bookings/b1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, r, http.MethodDelete, "/api/v1/venues/v1/bookings/b1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectionAndQuoteFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/venues/v1/selections", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[dto.Selection](t, rec)
	require.NotEmpty(t, sess.SessionID)
	assert.Equal(t, "empty", sess.State)

	events := "/api/v1/selections/" + sess.SessionID + "/events"
	rec = do(t, r, http.MethodPost, events, map[string]string{"kind": "pick", "day": "2024-03-03"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "start_only", decode[dto.Selection](t, rec).State)

	rec = do(t, r, http.MethodPost, events, map[string]string{"kind": "pick", "day": "2024-03-06"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dto.Selection](t, rec)
	assert.Equal(t, "committed", got.State)
	assert.True(t, got.Close)
	assert.Equal(t, 3, got.Nights)

	rec = do(t, r, http.MethodGet, "/api/v1/venues/v1/quote?session="+sess.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quote := decode[dto.PriceQuote](t, rec)
	assert.Equal(t, int64(35750), quote.TotalCents)

	rec = do(t, r, http.MethodDelete, "/api/v1/selections/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/v1/selections/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientErrors(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/venues/v1/calendar?month=March", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/selections/nope/events", map[string]string{"kind": "dance"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/venues/v1/quote", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/venues/v1/calendar/export?month=2024-03", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, r, http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusForUnknownErrorIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusConflict, statusFor(availability.ErrVersionConflict))
}

func TestRetriedRequestKeepsItsStatus(t *testing.T) {
	r := newTestRouter(t)

	first := do(t, r, http.MethodDelete, "/api/v1/venues/v1/bookings/nope", nil, "Idempotency-Key", "k1")
	second := do(t, r, http.MethodDelete, "/api/v1/venues/v1/bookings/nope", nil, "Idempotency-Key", "k1")
	assert.Equal(t, http.StatusNotFound, first.Code, first.Body.String())
	assert.Equal(t, http.StatusNotFound, second.Code, second.Body.String())
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	overlap := map[string]any{"booking_id": "b2", "date_from": "2024-03-10", "date_to": "2024-03-12"}
	rec := do(t, r, http.MethodPost, "/api/v1/venues/v1/bookings",
		map[string]any{"booking_id": "b1", "date_from": "2024-03-09", "date_to": "2024-03-11"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	for i := 0; i < 2; i++ {
		rec = do(t, r, http.MethodPost, "/api/v1/venues/v1/bookings", overlap, "Idempotency-Key", "k2")
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	}

	bad := map[string]any{"booking_id": "b3", "date_from": "2024-03-20", "date_to": "2024-03-18"}
	for i := 0; i < 2; i++ {
		rec = do(t, r, http.MethodPost, "/api/v1/venues/v1/bookings", bad, "Idempotency-Key", "k3")
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestStatusForReplays(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(middleware.ReplayedError{Message: "gone", Kind: availability.ErrBookingNotFound}))
	assert.Equal(t, http.StatusBadRequest, statusFor(middleware.ReplayedError{Message: "bad", Kind: validation.ErrInvalid}))
	assert.Equal(t, http.StatusConflict, statusFor(middleware.ReplayedError{Message: "unknown"}))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("%w: bookings.record:k", middleware.ErrInProgress)))
}
