package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vespanova/booking-api/internal/availability"
	"github.com/vespanova/booking-api/internal/repository"
)

// AvailabilityHandler serves the public per-month calendar. The
// snapshot is derived from live booking rows on every recompute; the
// Redis cache only shortcuts repeated month navigation and is
// invalidated by every booking writer.
type AvailabilityHandler struct {
	Bookings  *repository.BookingRepo
	Cache     *availability.Cache
	FleetSize int
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(bookings *repository.BookingRepo, cache *availability.Cache, fleetSize int) *AvailabilityHandler {
	if bookings == nil {
		panic("nil repository passed to NewAvailabilityHandler")
	}
	if fleetSize < 1 {
		fleetSize = 1
	}
	return &AvailabilityHandler{Bookings: bookings, Cache: cache, FleetSize: fleetSize}
}

// parseMonth validates the :year/:month path parameters.
func parseMonth(c echo.Context) (int, time.Month, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// GetMonth handles GET /v1/availability/:year/:month. A failed fetch
// surfaces as a retryable 503 rather than an empty snapshot, so a
// database outage never falsely reports open availability.
func (h *AvailabilityHandler) GetMonth(c echo.Context) error {
	year, month, ok := parseMonth(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year or month"})
	}
	ctx := c.Request().Context()

	if snap, ok := h.Cache.Get(ctx, year, month); ok {
		return c.JSON(http.StatusOK, snap)
	}

	first, last := availability.MonthWindow(year, month)
	bookings, err := h.Bookings.ListByDateRange(ctx, first, last)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":     "availability temporarily unavailable",
			"retryable": true,
		})
	}
	snap := availability.Build(year, month, h.FleetSize, bookings, time.Now().UTC(), false)
	h.Cache.Set(ctx, snap)
	return c.JSON(http.StatusOK, snap)
}
