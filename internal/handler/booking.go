package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/model"
	"github.com/iliyamo/facility-booking/internal/service"
)

// BookingHandler exposes the booking engine over HTTP.  All admission
// logic lives in the service; this layer only parses requests, scopes
// them to the authenticated principal and translates engine errors.
type BookingHandler struct {
	Svc     *service.BookingService
	Sweeper *service.Sweeper
	Users   service.UserStore
}

// NewBookingHandler constructs a BookingHandler and panics if a
// dependency is nil.
func NewBookingHandler(svc *service.BookingService, sweeper *service.Sweeper, users service.UserStore) *BookingHandler {
	if svc == nil || sweeper == nil || users == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Sweeper: sweeper, Users: users}
}

// scope resolves the (client, user) pair a request acts for.  A client
// token may book for any of its users and must name one; a user token
// always books for itself, and its client is looked up from the user
// record.
func (h *BookingHandler) scope(c echo.Context, requestedUserID uint64) (clientID, userID uint64, errMsg string) {
	id, err := getAccountID(c)
	if err != nil {
		return 0, 0, "unauthorized"
	}
	switch accountType(c) {
	case "client":
		if requestedUserID == 0 {
			return 0, 0, "user_id is required"
		}
		return id, requestedUserID, ""
	case "user":
		if requestedUserID != 0 && requestedUserID != id {
			return 0, 0, "cannot book for another user"
		}
		u, err := h.Users.GetByID(c.Request().Context(), id)
		if err != nil || u == nil {
			return 0, 0, "unauthorized"
		}
		return u.ClientID, id, ""
	}
	return 0, 0, "unauthorized"
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var body struct {
		FacilityID         uint64 `json:"facility_id"`
		UserID             uint64 `json:"user_id"`
		StartTime          string `json:"start_time"`
		EndTime            string `json:"end_time"`
		ConditionsAccepted bool   `json:"conditions_accepted"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	start, err := parseRFC3339(body.StartTime)
	if err != nil {
		return badRequest(c, "start_time must be an RFC 3339 timestamp")
	}
	end, err := parseRFC3339(body.EndTime)
	if err != nil {
		return badRequest(c, "end_time must be an RFC 3339 timestamp")
	}
	clientID, userID, msg := h.scope(c, body.UserID)
	if msg != "" {
		return badRequest(c, msg)
	}

	b, err := h.Svc.Create(c.Request().Context(), service.CreateBookingInput{
		ClientID:           clientID,
		FacilityID:         body.FacilityID,
		UserID:             userID,
		StartTime:          start,
		EndTime:            end,
		ConditionsAccepted: body.ConditionsAccepted,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, newBookingView(b))
}

// List handles GET /v1/bookings with optional client_id, facility_id
// and user_id query filters.
func (h *BookingHandler) List(c echo.Context) error {
	f := model.BookingFilter{
		ClientID:   queryID(c, "client_id"),
		FacilityID: queryID(c, "facility_id"),
		UserID:     queryID(c, "user_id"),
	}
	bookings, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": newBookingViews(bookings)})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, newBookingView(b))
}

// Update handles PATCH /v1/bookings/:id.  Absent fields stay unchanged.
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var body struct {
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
		Status    *string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	var in service.UpdateBookingInput
	if body.StartTime != nil {
		t, err := parseRFC3339(*body.StartTime)
		if err != nil {
			return badRequest(c, "start_time must be an RFC 3339 timestamp")
		}
		in.StartTime = &t
	}
	if body.EndTime != nil {
		t, err := parseRFC3339(*body.EndTime)
		if err != nil {
			return badRequest(c, "end_time must be an RFC 3339 timestamp")
		}
		in.EndTime = &t
	}
	in.Status = body.Status

	b, err := h.Svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, newBookingView(b))
}

// Delete handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}

// ListHistory handles GET /v1/bookings/history.
func (h *BookingHandler) ListHistory(c echo.Context) error {
	f := model.HistoryFilter{
		ClientID:   queryID(c, "client_id"),
		FacilityID: queryID(c, "facility_id"),
		UserID:     queryID(c, "user_id"),
		Status:     c.QueryParam("status"),
	}
	items, err := h.Svc.ListHistory(c.Request().Context(), f)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": newHistoryViews(items)})
}

// GetHistory handles GET /v1/bookings/history/:id.
func (h *BookingHandler) GetHistory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	rec, err := h.Svc.GetHistory(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, newHistoryView(rec))
}

// Cleanup handles POST /v1/bookings/cleanup and runs one sweep pass
// immediately instead of waiting for the next scheduled one.
func (h *BookingHandler) Cleanup(c echo.Context) error {
	h.Sweeper.Sweep(c.Request().Context(), nowUTC())
	return c.JSON(http.StatusOK, echo.Map{"status": "cleanup completed"})
}

// ListLogs handles GET /v1/bookings/logs.
func (h *BookingHandler) ListLogs(c echo.Context) error {
	f := model.LogFilter{
		ClientID:   queryID(c, "client_id"),
		UserID:     queryID(c, "user_id"),
		FacilityID: queryID(c, "facility_id"),
		Status:     c.QueryParam("status"),
	}
	items, err := h.Svc.ListLogs(c.Request().Context(), f)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": newLogViews(items)})
}
