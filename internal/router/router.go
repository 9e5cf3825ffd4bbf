package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/handler"
	"github.com/iliyamo/facility-booking/internal/middleware"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Auth       *handler.AuthHandler
	Bookings   *handler.BookingHandler
	Facilities *handler.FacilityHandler
	Users      *handler.UserHandler
	Quotas     *handler.QuotaHandler
	JWTSecret  string
	RateLimit  echo.MiddlewareFunc // nil disables limiting
}

// RegisterRoutes wires all endpoints onto the echo instance.
//
// Booking reads (list, history, logs) and the manual cleanup trigger
// are public; booking writes require any authenticated principal, and
// tenant administration (facilities, users, quotas) requires a client
// token.
func RegisterRoutes(e *echo.Echo, d Deps) {
	limit := d.RateLimit
	if limit == nil {
		limit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1", limit)

	// Authentication endpoints.
	auth := v1.Group("/auth")
	auth.POST("/clients/register", d.Auth.RegisterClient)
	auth.POST("/clients/login", d.Auth.LoginClient)
	auth.POST("/users/login", d.Auth.LoginUser)

	// Public booking reads.  The static /history, /logs and /cleanup
	// segments coexist with the :id parameter route; echo matches
	// static paths first.
	v1.GET("/bookings", d.Bookings.List)
	v1.GET("/bookings/history", d.Bookings.ListHistory)
	v1.GET("/bookings/history/:id", d.Bookings.GetHistory)
	v1.GET("/bookings/logs", d.Bookings.ListLogs)
	v1.POST("/bookings/cleanup", d.Bookings.Cleanup)
	v1.GET("/bookings/:id", d.Bookings.Get)

	// Booking writes: any authenticated client or user.
	authed := v1.Group("", middleware.JWTAuth(d.JWTSecret))
	authed.POST("/bookings", d.Bookings.Create)
	authed.PATCH("/bookings/:id", d.Bookings.Update)
	authed.DELETE("/bookings/:id", d.Bookings.Delete)

	// Tenant administration: client tokens only.
	admin := v1.Group("", middleware.JWTAuth(d.JWTSecret), middleware.RequireAccountType("client"))
	admin.POST("/users", d.Auth.RegisterUser)
	admin.GET("/users", d.Users.List)
	admin.GET("/users/:id", d.Users.Get)
	admin.PUT("/users/:id", d.Users.Update)
	admin.DELETE("/users/:id", d.Users.Delete)

	admin.POST("/facilities", d.Facilities.Create)
	admin.GET("/facilities", d.Facilities.List)
	admin.GET("/facilities/:id", d.Facilities.Get)
	admin.PUT("/facilities/:id", d.Facilities.Update)
	admin.DELETE("/facilities/:id", d.Facilities.Delete)

	admin.PUT("/quotas", d.Quotas.Upsert)
	admin.GET("/quotas", d.Quotas.List)
	admin.GET("/quotas/effective", d.Quotas.Effective)
}
