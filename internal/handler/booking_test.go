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

	"github.com/iliyamo/facility-booking/internal/model"
	"github.com/iliyamo/facility-booking/internal/repository"
	"github.com/iliyamo/facility-booking/internal/service"
)

// Compact in-memory stubs: just enough store behaviour for the engine
// to run end-to-end under the handlers.  Side-effect collaborators are
// stateless no-ops so background goroutines cannot race the test.

type stubBookings struct {
	nextID uint64
	rows   map[uint64]model.Booking
}

func (s *stubBookings) Create(_ context.Context, b *model.Booking) error {
	for _, o := range s.rows {
		if o.FacilityID == b.FacilityID && model.Overlaps(b.StartTime, b.EndTime, o.StartTime, o.EndTime) {
			return repository.ErrOverlap
		}
	}
	s.nextID++
	b.ID = s.nextID
	s.rows[b.ID] = *b
	return nil
}

func (s *stubBookings) Update(_ context.Context, b *model.Booking) error {
	s.rows[b.ID] = *b
	return nil
}

func (s *stubBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *stubBookings) Delete(_ context.Context, id uint64) error {
	delete(s.rows, id)
	return nil
}

func (s *stubBookings) List(_ context.Context, f model.BookingFilter) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for _, b := range s.rows {
		if f.FacilityID != 0 && b.FacilityID != f.FacilityID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *stubBookings) HasConflict(_ context.Context, facilityID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	for _, o := range s.rows {
		if o.FacilityID == facilityID && o.ID != excludeID && model.Overlaps(start, end, o.StartTime, o.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubBookings) CountInRange(_ context.Context, _, _, _ uint64, from, to time.Time) (int, error) {
	n := 0
	for _, b := range s.rows {
		if !b.StartTime.Before(from) && b.StartTime.Before(to) {
			n++
		}
	}
	return n, nil
}

type stubHistory struct {
	nextID uint64
	rows   map[uint64]model.BookingHistory
}

func (s *stubHistory) Create(_ context.Context, h *model.BookingHistory) error {
	s.nextID++
	h.ID = s.nextID
	s.rows[h.ID] = *h
	return nil
}

func (s *stubHistory) FindForBooking(_ context.Context, b *model.Booking) (*model.BookingHistory, error) {
	for _, h := range s.rows {
		if h.BookingID != nil && *h.BookingID == b.ID {
			h := h
			return &h, nil
		}
	}
	return nil, nil
}

func (s *stubHistory) GetByID(_ context.Context, id uint64) (*model.BookingHistory, error) {
	h, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (s *stubHistory) MarkReminderSent(_ context.Context, id uint64) error { return nil }

func (s *stubHistory) Terminate(_ context.Context, id uint64, status string, at time.Time) error {
	h := s.rows[id]
	h.Status = status
	h.DeletedAt = &at
	s.rows[id] = h
	return nil
}

func (s *stubHistory) AttachBookingID(_ context.Context, _, _ uint64) error { return nil }

func (s *stubHistory) ListOrphans(_ context.Context) ([]model.BookingHistory, error) {
	return nil, nil
}

func (s *stubHistory) List(_ context.Context, _ model.HistoryFilter) ([]model.BookingHistory, error) {
	out := make([]model.BookingHistory, 0, len(s.rows))
	for _, h := range s.rows {
		out = append(out, h)
	}
	return out, nil
}

type stubQuotas struct{}

func (stubQuotas) Find(context.Context, uint64, uint64, uint64) (*model.QuotaRule, error) {
	return nil, nil
}

type stubFacilities struct{ rows map[uint64]model.Facility }

func (s stubFacilities) GetByID(_ context.Context, id uint64) (*model.Facility, error) {
	f, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

type stubUsers struct{ rows map[uint64]model.User }

func (s stubUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type stubAudit struct{}

func (stubAudit) Insert(context.Context, *model.BookingLog) error { return nil }
func (stubAudit) List(context.Context, model.LogFilter) ([]model.BookingLog, error) {
	return nil, nil
}

type stubNotifier struct{}

func (stubNotifier) Send(context.Context, string, string, string, bool) bool { return true }

type stubEvents struct{}

func (stubEvents) Publish(context.Context, string, any) error { return nil }

func newTestHandler() *BookingHandler {
	users := stubUsers{rows: map[uint64]model.User{
		7: {ID: 7, ClientID: 3, Name: "Rae", Email: "rae@example.com", Role: model.RoleMember},
	}}
	bookings := &stubBookings{rows: map[uint64]model.Booking{}}
	history := &stubHistory{rows: map[uint64]model.BookingHistory{}}
	svc := service.NewBookingService(
		bookings, history, service.NewQuotaResolver(stubQuotas{}),
		stubFacilities{rows: map[uint64]model.Facility{5: {ID: 5, ClientID: 3, Name: "Studio"}}},
		users, stubAudit{}, stubNotifier{}, stubEvents{},
	)
	sweeper := service.NewSweeper(bookings, history,
		users, stubFacilities{rows: map[uint64]model.Facility{}}, stubNotifier{})
	return NewBookingHandler(svc, sweeper, users)
}

// request builds an echo context authenticated as client 3.
func request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("account_id", uint64(3))
	c.Set("account_type", "client")
	return c, rec
}

func createBody(start, end time.Time) string {
	b, _ := json.Marshal(map[string]any{
		"facility_id":         5,
		"user_id":             7,
		"start_time":          start.Format(time.RFC3339),
		"end_time":            end.Format(time.RFC3339),
		"conditions_accepted": true,
	})
	return string(b)
}

func TestCreateBookingEndpoint(t *testing.T) {
	h := newTestHandler()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	c, rec := request(http.MethodPost, "/v1/bookings", createBody(start, start.Add(time.Hour)))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp bookingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, uint64(3), resp.ClientID)
	assert.Equal(t, uint64(7), resp.UserID)
	assert.Equal(t, model.BookingStatusConfirmed, resp.Status)
}

func TestCreateBookingEndpointRejectsBadTimestamp(t *testing.T) {
	h := newTestHandler()
	c, rec := request(http.MethodPost, "/v1/bookings",
		`{"facility_id":5,"user_id":7,"start_time":"tomorrow","end_time":"later","conditions_accepted":true}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingEndpointConflict(t *testing.T) {
	h := newTestHandler()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	c, rec := request(http.MethodPost, "/v1/bookings", createBody(start, start.Add(time.Hour)))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = request(http.MethodPost, "/v1/bookings", createBody(start.Add(30*time.Minute), start.Add(2*time.Hour)))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already booked")
}

func TestCreateBookingEndpointQuotaFailure(t *testing.T) {
	h := newTestHandler()
	// Default advance window is four weeks; ten weeks out must fail.
	start := time.Now().UTC().Add(10 * 7 * 24 * time.Hour).Truncate(time.Second)

	c, rec := request(http.MethodPost, "/v1/bookings", createBody(start, start.Add(time.Hour)))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "advance window")
}

func TestGetBookingEndpointNotFound(t *testing.T) {
	h := newTestHandler()
	c, rec := request(http.MethodGet, "/v1/bookings/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBookingEndpoint(t *testing.T) {
	h := newTestHandler()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	c, rec := request(http.MethodPost, "/v1/bookings", createBody(start, start.Add(time.Hour)))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created bookingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	c, rec = request(http.MethodDelete, "/v1/bookings/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = request(http.MethodGet, "/v1/bookings/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookingScopesUserToken(t *testing.T) {
	h := newTestHandler()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	// A user token may not book on behalf of someone else.
	body, _ := json.Marshal(map[string]any{
		"facility_id": 5, "user_id": 8,
		"start_time": start.Format(time.RFC3339), "end_time": start.Add(time.Hour).Format(time.RFC3339),
		"conditions_accepted": true,
	})
	c, rec := request(http.MethodPost, "/v1/bookings", string(body))
	c.Set("account_id", uint64(7))
	c.Set("account_type", "user")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "another user")
}

func TestCreateBookingUserTokenInheritsClient(t *testing.T) {
	h := newTestHandler()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	c, rec := request(http.MethodPost, "/v1/bookings", createBody(start, start.Add(time.Hour)))
	c.Set("account_id", uint64(7))
	c.Set("account_type", "user")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp bookingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(3), resp.ClientID, "client id comes from the user record")
	assert.Equal(t, uint64(7), resp.UserID)
}
