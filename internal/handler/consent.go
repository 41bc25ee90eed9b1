package handler

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vespanova/booking-api/internal/ratelimit"
	"github.com/vespanova/booking-api/internal/repository"
	"github.com/vespanova/booking-api/internal/validate"
)

// ConsentHandler records document-acceptance events from the funnel.
// The ledger is append-only and independent of booking creation, so a
// withdrawn funnel still leaves its consent trail. The endpoint has
// its own rate-limit cap, separate from the submission endpoint.
type ConsentHandler struct {
	Consents *repository.ConsentRepo
	Limiter  *ratelimit.Limiter
}

// NewConsentHandler constructs a ConsentHandler.
func NewConsentHandler(consents *repository.ConsentRepo, limiter *ratelimit.Limiter) *ConsentHandler {
	if consents == nil {
		panic("nil repository passed to NewConsentHandler")
	}
	return &ConsentHandler{Consents: consents, Limiter: limiter}
}

// Create handles POST /v1/consent.
func (h *ConsentHandler) Create(c echo.Context) error {
	var body struct {
		BookingReference string `json:"booking_reference"`
		Document         string `json:"document"`
		Accepted         bool   `json:"accepted"`
		Email            string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.BookingReference = validate.CleanString(body.BookingReference, 32)
	body.Document = validate.CleanString(body.Document, 64)
	body.Email = validate.CleanEmail(body.Email)
	if body.Document == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation_failed",
			"errors": []string{"document is required"},
		})
	}

	identity := body.Email
	if identity == "" {
		identity = c.RealIP()
	}
	ctx := c.Request().Context()
	if dec := h.Limiter.Allow(ctx, identity); !dec.Allowed {
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error":       "too_many_requests",
			"retry_after": int(math.Ceil(dec.RetryAfter.Seconds())),
		})
	}

	rec := &repository.ConsentRecord{
		BookingReference: body.BookingReference,
		Document:         body.Document,
		Accepted:         body.Accepted,
		ClientEmail:      body.Email,
		UserAgent:        validate.CleanString(c.Request().UserAgent(), 300),
	}
	if err := h.Consents.Append(ctx, rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record consent"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"consent": rec})
}
