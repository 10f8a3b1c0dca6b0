package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
	"github.com/minbok/shuttle-reservation/internal/service"
)

// stubLedger returns canned results so handler tests only exercise the
// HTTP mapping, not the booking rules.
type stubLedger struct {
	createErr error
	cancelErr error
	ticket    *repository.TicketDetail
	ticketErr error
}

func (s *stubLedger) Create(_ context.Context, res *model.Reservation) error {
	if s.createErr != nil {
		return s.createErr
	}
	res.ID = 42
	res.Status = model.ReservationConfirmed
	res.CreatedAt = time.Now().UTC()
	return nil
}

func (s *stubLedger) Cancel(context.Context, uint64, uint64) error { return s.cancelErr }

func (s *stubLedger) GetTicketForUser(context.Context, uint64, uint64) (*repository.TicketDetail, error) {
	return s.ticket, s.ticketErr
}

func (s *stubLedger) ListByUser(context.Context, uint64) ([]repository.ReservationSummary, error) {
	return []repository.ReservationSummary{}, nil
}

type stubCatalog struct{}

func (stubCatalog) GetByID(_ context.Context, id uint64) (*model.Schedule, error) {
	return &model.Schedule{ID: id, IsActive: true, TotalSeats: 40}, nil
}

func newHandlerHarness(ledger *stubLedger) *ReservationHandler {
	day, _ := time.Parse(clock.ServiceDayFormat, "2026-09-01")
	svc := service.NewReservationService(ledger, stubCatalog{}, service.NopNotifier{}, clock.Fixed{T: day})
	return NewReservationHandler(svc)
}

func doRequest(h echo.HandlerFunc, method, target, body string, userID interface{}, params ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	_ = h(c)
	return rec
}

func TestCreateReservationEndpoint(t *testing.T) {
	h := newHandlerHarness(&stubLedger{})

	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations",
		`{"schedule_id":1,"reservation_date":"2026-09-02"}`, float64(7))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(42), resp["id"])
	assert.Equal(t, "confirmed", resp["status"])
	assert.NotEmpty(t, resp["qr_code"])
}

func TestCreateReservationEndpointErrors(t *testing.T) {
	cases := []struct {
		name     string
		ledger   *stubLedger
		body     string
		userID   interface{}
		wantCode int
	}{
		{"no auth", &stubLedger{}, `{"schedule_id":1,"reservation_date":"2026-09-02"}`, nil, http.StatusUnauthorized},
		{"bad date", &stubLedger{}, `{"schedule_id":1,"reservation_date":"tomorrow"}`, float64(7), http.StatusBadRequest},
		{"duplicate", &stubLedger{createErr: repository.ErrDuplicateReservation}, `{"schedule_id":1,"reservation_date":"2026-09-02"}`, float64(7), http.StatusConflict},
		{"full", &stubLedger{createErr: repository.ErrCapacityExceeded}, `{"schedule_id":1,"reservation_date":"2026-09-02"}`, float64(7), http.StatusConflict},
		{"unknown schedule", &stubLedger{createErr: repository.ErrScheduleNotFound}, `{"schedule_id":1,"reservation_date":"2026-09-02"}`, float64(7), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandlerHarness(tc.ledger)
			rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", tc.body, tc.userID)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestCancelReservationEndpoint(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"ok", nil, http.StatusOK},
		{"not found", repository.ErrReservationNotFound, http.StatusNotFound},
		{"foreign", repository.ErrForbidden, http.StatusForbidden},
		{"repeat", repository.ErrAlreadyCancelled, http.StatusConflict},
		{"completed", repository.ErrConflict, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandlerHarness(&stubLedger{cancelErr: tc.err})
			rec := doRequest(h.Cancel, http.MethodDelete, "/v1/reservations/5", "", float64(7), "id", "5")
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestBoardingPassEndpoint(t *testing.T) {
	ledger := &stubLedger{ticket: &repository.TicketDetail{
		ReservationID:   5,
		Status:          model.ReservationConfirmed,
		ReservationDate: "2026-09-01",
		QRCode:          "qr-abc",
		HolderName:      "Test Rider",
		RouteName:       "HQ Express",
		DepartureTime:   "08:30:00",
	}}
	h := newHandlerHarness(ledger)

	rec := doRequest(h.BoardingPass, http.MethodGet, "/v1/reservations/5/pass", "", float64(7), "id", "5")
	require.Equal(t, http.StatusOK, rec.Code)

	var pass model.BoardingPass
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pass))
	assert.True(t, pass.Valid)
	assert.Equal(t, "qr-abc", pass.QRCode)
	assert.Equal(t, "HQ Express", pass.RouteName)
}

func TestBoardingPassEndpointExpired(t *testing.T) {
	ledger := &stubLedger{ticket: &repository.TicketDetail{
		ReservationID:   5,
		Status:          model.ReservationConfirmed,
		ReservationDate: "2026-08-20",
		QRCode:          "qr-abc",
	}}
	h := newHandlerHarness(ledger)

	rec := doRequest(h.BoardingPass, http.MethodGet, "/v1/reservations/5/pass", "", float64(7), "id", "5")
	require.Equal(t, http.StatusOK, rec.Code)

	var pass model.BoardingPass
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pass))
	assert.False(t, pass.Valid)
	assert.Empty(t, pass.QRCode)
}

func TestGetUserIDClaimShapes(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	c.Set("user_id", float64(7))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	c.Set("user_id", "12")
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	c.Set("user_id", "not-a-number")
	_, err = getUserID(c)
	assert.Error(t, err)
}
