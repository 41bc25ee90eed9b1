package handler

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vespanova/booking-api/internal/availability"
	"github.com/vespanova/booking-api/internal/model"
	"github.com/vespanova/booking-api/internal/queue"
	"github.com/vespanova/booking-api/internal/ratelimit"
	"github.com/vespanova/booking-api/internal/repository"
	"github.com/vespanova/booking-api/internal/validate"
)

// BookingHandler serves the public booking funnel. A submission passes
// through sanitization, collected validation and the rate limiter
// before the reservation writer persists it; the created event is
// appended to the outbox inside the same transaction as the insert.
type BookingHandler struct {
	Bookings  *repository.BookingRepo
	Outbox    *repository.OutboxRepo
	Cache     *availability.Cache
	Limiter   *ratelimit.Limiter
	FleetSize int
}

// NewBookingHandler constructs a BookingHandler. Repositories must be
// non-nil; the cache and limiter may be degraded instances.
func NewBookingHandler(bookings *repository.BookingRepo, outbox *repository.OutboxRepo, cache *availability.Cache, limiter *ratelimit.Limiter, fleetSize int) *BookingHandler {
	if bookings == nil || outbox == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	if fleetSize < 1 {
		fleetSize = 1
	}
	return &BookingHandler{Bookings: bookings, Outbox: outbox, Cache: cache, Limiter: limiter, FleetSize: fleetSize}
}

// Create handles POST /v1/bookings. Validation violations are
// collected and returned together so the funnel can display the whole
// list; a rate-limit denial is a distinct response with a retry_after
// hint, never folded into validation errors. Capacity is enforced
// inside the insert transaction: the active-booking count for the date
// and the insert commit atomically, so two concurrent submissions for
// the last unit cannot both succeed.
func (h *BookingHandler) Create(c echo.Context) error {
	var sub validate.Submission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sub.Sanitize()

	if errs := validate.Check(sub, time.Now().UTC()); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation_failed",
			"errors": errs,
		})
	}

	identity := sub.Email
	if identity == "" {
		identity = c.RealIP()
	}
	ctx := c.Request().Context()
	if dec := h.Limiter.Allow(ctx, identity); !dec.Allowed {
		retry := int(math.Ceil(dec.RetryAfter.Seconds()))
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error":       "too_many_requests",
			"retry_after": retry,
		})
	}

	now := time.Now().UTC()
	b := validate.ToBooking(sub)
	b.Reference = model.NewBookingReference(now)
	b.Metadata.UserAgent = validate.CleanString(c.Request().UserAgent(), 300)

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Bookings.CreateCapacityCheckedTx(ctx, tx, b, h.FleetSize); err != nil {
		if errors.Is(err, repository.ErrDateFull) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "date_full",
				"date":  b.Rental.StartDate,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	payload, err := queue.EncodeBookingEvent(model.EventBookingCreated, b, model.StatusPending, model.StatusPending, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := h.Outbox.AppendTx(ctx, tx, b.ID, model.EventBookingCreated, payload); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit booking"})
	}
	committed = true
	h.Cache.InvalidateDate(ctx, b.Rental.StartDate)

	return c.JSON(http.StatusCreated, echo.Map{
		"booking": b,
	})
}
