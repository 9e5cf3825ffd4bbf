package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/model"
	"github.com/iliyamo/facility-booking/internal/repository"
	"github.com/iliyamo/facility-booking/internal/service"
)

// QuotaHandler manages per-user-per-facility booking limits and exposes
// the effective limits the admission pipeline would apply.
type QuotaHandler struct {
	Repo     *repository.QuotaRepo
	Resolver *service.QuotaResolver
}

// NewQuotaHandler constructs a QuotaHandler and panics if a dependency
// is nil.
func NewQuotaHandler(repo *repository.QuotaRepo, resolver *service.QuotaResolver) *QuotaHandler {
	if repo == nil || resolver == nil {
		panic("nil dependency passed to NewQuotaHandler")
	}
	return &QuotaHandler{Repo: repo, Resolver: resolver}
}

// Upsert handles PUT /v1/quotas.  Creating and overriding use the same
// route; the unique (client, user, facility) key decides which happens.
func (h *QuotaHandler) Upsert(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		UserID              uint64 `json:"user_id"`
		FacilityID          uint64 `json:"facility_id"`
		MaxBookingsPerWeek  int    `json:"max_bookings_per_week"`
		MaxBookingsPerMonth int    `json:"max_bookings_per_month"`
		MaxWeeksAdvance     int    `json:"max_weeks_advance"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.UserID == 0 || body.FacilityID == 0 {
		return badRequest(c, "user_id and facility_id are required")
	}
	if body.MaxBookingsPerWeek <= 0 || body.MaxBookingsPerMonth <= 0 || body.MaxWeeksAdvance <= 0 {
		return badRequest(c, "limits must be positive")
	}

	overriddenBy := clientID
	rule := &model.QuotaRule{
		ClientID:            clientID,
		UserID:              body.UserID,
		FacilityID:          body.FacilityID,
		MaxBookingsPerWeek:  body.MaxBookingsPerWeek,
		MaxBookingsPerMonth: body.MaxBookingsPerMonth,
		MaxWeeksAdvance:     body.MaxWeeksAdvance,
		OverriddenBy:        &overriddenBy,
	}
	if err := h.Repo.Upsert(c.Request().Context(), rule); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save quota rule"})
	}
	return c.JSON(http.StatusOK, newQuotaRuleView(rule))
}

// List handles GET /v1/quotas?user_id=&facility_id= and returns the
// caller's explicit rules for a user.
func (h *QuotaHandler) List(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID := queryID(c, "user_id")
	if userID == 0 {
		return badRequest(c, "user_id is required")
	}
	rules, err := h.Repo.ListByUser(c.Request().Context(), clientID, userID, queryID(c, "facility_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	views := make([]quotaRuleView, 0, len(rules))
	for i := range rules {
		views = append(views, newQuotaRuleView(&rules[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// Effective handles GET /v1/quotas/effective?user_id=&facility_id= and
// returns the limits the admission pipeline would apply, defaults
// included.
func (h *QuotaHandler) Effective(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID := queryID(c, "user_id")
	facilityID := queryID(c, "facility_id")
	if userID == 0 || facilityID == 0 {
		return badRequest(c, "user_id and facility_id are required")
	}
	q, err := h.Resolver.Resolve(c.Request().Context(), clientID, userID, facilityID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"max_weeks_advance":      q.MaxWeeksAdvance,
		"max_bookings_per_week":  q.MaxBookingsPerWeek,
		"max_bookings_per_month": q.MaxBookingsPerMonth,
	})
}
