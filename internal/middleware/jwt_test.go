package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/utils"
)

const testSecret = "test-secret"

func run(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "user", "member", 5)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	rec, c := run(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if got := c.Get("account_type"); got != "user" {
		t.Errorf("account_type = %v, want user", got)
	}
	if got := c.Get("role"); got != "member" {
		t.Errorf("role = %v, want member", got)
	}
	// Claim numbers decode as float64.
	if got, ok := c.Get("account_id").(float64); !ok || uint64(got) != 42 {
		t.Errorf("account_id = %v, want 42", c.Get("account_id"))
	}
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	rec, _ := run(t, JWTAuth(testSecret), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("another-secret", 42, "user", "member", 5)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	rec, _ := run(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsGarbage(t *testing.T) {
	rec, _ := run(t, JWTAuth(testSecret), "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAccountType(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("account_type", "user")

	handler := RequireAccountType("client")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set("account_type", "client")
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
