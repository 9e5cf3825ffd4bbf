package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/model"
	"github.com/iliyamo/facility-booking/internal/repository"
	"github.com/iliyamo/facility-booking/internal/utils"
)

// AuthHandler serves registration and login for both account types.
// Clients are tenant operators; users are the subjects bookings are
// made for.  Both receive an HS256 access token whose typ claim tells
// the middleware which kind of principal is calling.
type AuthHandler struct {
	Clients      *repository.ClientRepo
	Users        *repository.UserRepo
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
}

// NewAuthHandler constructs an AuthHandler and panics if a repository is nil.
func NewAuthHandler(clients *repository.ClientRepo, users *repository.UserRepo, secret string, ttlMin, bcryptCost int) *AuthHandler {
	if clients == nil || users == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{
		Clients:      clients,
		Users:        users,
		JWTSecret:    secret,
		AccessTTLMin: ttlMin,
		BcryptCost:   bcryptCost,
	}
}

// RegisterClient handles POST /v1/auth/clients/register.
func (h *AuthHandler) RegisterClient(c echo.Context) error {
	var body struct {
		Name        string  `json:"name"`
		Email       string  `json:"email"`
		Password    string  `json:"password"`
		PhoneNumber *string `json:"phone_number"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Name == "" || body.Email == "" || len(body.Password) < 8 {
		return badRequest(c, "name, email and a password of at least 8 characters are required")
	}

	hash, err := utils.HashPassword(body.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not hash password"})
	}
	client := &model.Client{
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: hash,
		PhoneNumber:  body.PhoneNumber,
	}
	if err := h.Clients.Create(c.Request().Context(), client); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create client"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": client.ID, "name": client.Name, "email": client.Email})
}

// LoginClient handles POST /v1/auth/clients/login and issues a client
// access token.
func (h *AuthHandler) LoginClient(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	client, err := h.Clients.GetByEmail(c.Request().Context(), strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	// Same response for unknown email and wrong password.
	if client == nil || !utils.VerifyPassword(client.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.JWTSecret, client.ID, "client", model.RoleAdmin, h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": tok.Token, "expires_at": tok.Exp})
}

// RegisterUser handles POST /v1/users.  Only an authenticated client
// may create users, and they are always created under that client.
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	clientID, err := getAccountID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Name == "" || body.Email == "" || len(body.Password) < 8 {
		return badRequest(c, "name, email and a password of at least 8 characters are required")
	}
	role := body.Role
	if role == "" {
		role = model.RoleMember
	}
	if role != model.RoleAdmin && role != model.RoleMember {
		return badRequest(c, "role must be admin or member")
	}

	hash, err := utils.HashPassword(body.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not hash password"})
	}
	user := &model.User{
		ClientID:     clientID,
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.Users.Create(c.Request().Context(), user); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}
	return c.JSON(http.StatusCreated, newUserView(user))
}

// LoginUser handles POST /v1/auth/users/login and issues a user access
// token carrying the user's role.
func (h *AuthHandler) LoginUser(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.Users.GetByEmail(c.Request().Context(), strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if user == nil || !utils.VerifyPassword(user.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.JWTSecret, user.ID, "user", user.Role, h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": tok.Token, "expires_at": tok.Exp})
}
