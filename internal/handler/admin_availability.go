package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vespanova/booking-api/internal/availability"
)

// GetAdminMonth handles GET /v1/admin/availability/:year/:month. The
// admin calendar shows full booking detail per date, including full
// dates the public calendar merely blocks, and always recomputes from
// the database so operators see mutations immediately.
func (h *AvailabilityHandler) GetAdminMonth(c echo.Context) error {
	year, month, ok := parseMonth(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year or month"})
	}
	ctx := c.Request().Context()
	first, last := availability.MonthWindow(year, month)
	bookings, err := h.Bookings.ListByDateRange(ctx, first, last)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":     "availability temporarily unavailable",
			"retryable": true,
		})
	}
	snap := availability.Build(year, month, h.FleetSize, bookings, time.Now().UTC(), true)
	return c.JSON(http.StatusOK, snap)
}
