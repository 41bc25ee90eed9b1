// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/vespanova/booking-api/internal/handler"
	"github.com/vespanova/booking-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated booking funnel: the
// submission endpoint, the month calendar and the consent log. Rate
// limiting happens inside the submission handlers, after sanitization
// and validation, keyed by customer email with an IP fallback.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, a *handler.AvailabilityHandler, cons *handler.ConsentHandler) {
	e.POST("/v1/bookings", b.Create)
	e.GET("/v1/availability/:year/:month", a.GetMonth)
	e.POST("/v1/consent", cons.Create)
}

// RegisterAdmin registers the operator console under /v1/admin. Every
// route requires a valid bearer token with the ADMIN role and, when
// configured, an email on the administrator allow-list.
func RegisterAdmin(e *echo.Echo, jwtSecret string, adminEmails []string, ab *handler.AdminBookingHandler, av *handler.AvailabilityHandler, rep *handler.ReportHandler) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireAdmin(adminEmails))

	g.GET("/bookings", ab.List)
	g.GET("/bookings/:id", ab.Get)
	g.POST("/bookings/:id/confirm", ab.Confirm)
	g.POST("/bookings/:id/cancel", ab.Cancel)
	g.POST("/bookings/:id/complete", ab.Complete)
	g.PATCH("/bookings/:id", ab.Edit)
	g.DELETE("/bookings/:id", ab.Delete)
	g.GET("/bookings/:id/emails", ab.EmailLog)

	// Condition-report ledgers; :kind is damage-reports or
	// inspection-reports.
	g.POST("/bookings/:id/:kind", rep.Append)
	g.GET("/bookings/:id/:kind", rep.List)

	g.GET("/availability/:year/:month", av.GetAdminMonth)
}
