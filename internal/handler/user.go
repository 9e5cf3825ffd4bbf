package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/model"
	"github.com/iliyamo/facility-booking/internal/repository"
)

// UserHandler lets a client inspect its users.  User creation lives on
// AuthHandler.RegisterUser because it also hashes credentials.
type UserHandler struct {
	Repo *repository.UserRepo
}

// NewUserHandler constructs a UserHandler and panics if the repository
// is nil.
func NewUserHandler(repo *repository.UserRepo) *UserHandler {
	if repo == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Repo: repo}
}

// List handles GET /v1/users and returns the caller's users.
func (h *UserHandler) List(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Repo.ListByClient(c.Request().Context(), clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	views := make([]userView, 0, len(items))
	for i := range items {
		views = append(views, newUserView(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	u, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if u == nil || u.ClientID != clientID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, newUserView(u))
}

// Update handles PUT /v1/users/:id and rewrites the user's name and
// role.  Email and password are fixed at registration.
func (h *UserHandler) Update(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var body struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}
	if body.Role != model.RoleAdmin && body.Role != model.RoleMember {
		return badRequest(c, "role must be admin or member")
	}
	u, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if u == nil || u.ClientID != clientID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	u.Name = name
	u.Role = body.Role
	if err := h.Repo.Update(c.Request().Context(), u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, newUserView(u))
}

// Delete handles DELETE /v1/users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	u, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if u == nil || u.ClientID != clientID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}
