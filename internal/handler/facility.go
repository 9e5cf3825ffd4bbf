package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/model"
	"github.com/iliyamo/facility-booking/internal/repository"
)

// FacilityHandler provides CRUD over a client's facilities.  All routes
// require a client token; facilities are always scoped to the caller.
type FacilityHandler struct {
	Repo *repository.FacilityRepo
}

// NewFacilityHandler constructs a FacilityHandler and panics if the
// repository is nil.
func NewFacilityHandler(repo *repository.FacilityRepo) *FacilityHandler {
	if repo == nil {
		panic("nil repository passed to NewFacilityHandler")
	}
	return &FacilityHandler{Repo: repo}
}

// Create handles POST /v1/facilities.
func (h *FacilityHandler) Create(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}
	f := &model.Facility{ClientID: clientID, Name: name, Description: body.Description}
	if err := h.Repo.Create(c.Request().Context(), f); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "facility name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create facility"})
	}
	return c.JSON(http.StatusCreated, newFacilityView(f))
}

// List handles GET /v1/facilities and returns the caller's facilities.
func (h *FacilityHandler) List(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Repo.ListByClient(c.Request().Context(), clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	views := make([]facilityView, 0, len(items))
	for i := range items {
		views = append(views, newFacilityView(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// Get handles GET /v1/facilities/:id.
func (h *FacilityHandler) Get(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	f, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if f == nil || f.ClientID != clientID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
	}
	return c.JSON(http.StatusOK, newFacilityView(f))
}

// Update handles PUT /v1/facilities/:id.
func (h *FacilityHandler) Update(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}
	f, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if f == nil || f.ClientID != clientID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
	}
	f.Name = name
	f.Description = body.Description
	if err := h.Repo.Update(c.Request().Context(), f); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "facility name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, newFacilityView(f))
}

// Delete handles DELETE /v1/facilities/:id.
func (h *FacilityHandler) Delete(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	f, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if f == nil || f.ClientID != clientID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}
