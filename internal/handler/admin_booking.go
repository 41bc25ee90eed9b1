package handler

// Handlers for the admin console's mutation surface. Every
// status-changing action re-invokes the lifecycle state machine and
// appends its event to the outbox in the same transaction as the
// status write. Edits never touch the status and always recompute
// pricing totals server-side.

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vespanova/booking-api/internal/availability"
	"github.com/vespanova/booking-api/internal/model"
	"github.com/vespanova/booking-api/internal/queue"
	"github.com/vespanova/booking-api/internal/repository"
	"github.com/vespanova/booking-api/internal/validate"
)

// AdminBookingHandler groups the repositories backing operator actions
// on the reservation ledger.
type AdminBookingHandler struct {
	Bookings  *repository.BookingRepo
	Outbox    *repository.OutboxRepo
	Emails    *repository.EmailLogRepo
	Cache     *availability.Cache
	FleetSize int
}

// NewAdminBookingHandler constructs an AdminBookingHandler. All
// repositories must be non-nil.
func NewAdminBookingHandler(bookings *repository.BookingRepo, outbox *repository.OutboxRepo, emails *repository.EmailLogRepo, cache *availability.Cache, fleetSize int) *AdminBookingHandler {
	if bookings == nil || outbox == nil || emails == nil {
		panic("nil repository passed to NewAdminBookingHandler")
	}
	if fleetSize < 1 {
		fleetSize = 1
	}
	return &AdminBookingHandler{Bookings: bookings, Outbox: outbox, Emails: emails, Cache: cache, FleetSize: fleetSize}
}

// List handles GET /v1/admin/bookings with optional status, from and
// to query filters.
func (h *AdminBookingHandler) List(c echo.Context) error {
	f := repository.ListFilter{
		From: validate.CleanString(c.QueryParam("from"), 10),
		To:   validate.CleanString(c.QueryParam("to"), 10),
	}
	if s := c.QueryParam("status"); s != "" {
		status := model.Status(s)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
		}
		f.Status = status
	}
	items, err := h.Bookings.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Get handles GET /v1/admin/bookings/:id.
func (h *AdminBookingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// Confirm handles POST /v1/admin/bookings/:id/confirm.
func (h *AdminBookingHandler) Confirm(c echo.Context) error {
	return h.transition(c, model.StatusConfirmed)
}

// Cancel handles POST /v1/admin/bookings/:id/cancel. Cancelling frees
// the booking's date immediately: the availability index filters by
// current status on every read.
func (h *AdminBookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, model.StatusCancelled)
}

// Complete handles POST /v1/admin/bookings/:id/complete.
func (h *AdminBookingHandler) Complete(c echo.Context) error {
	return h.transition(c, model.StatusCompleted)
}

// transition runs one lifecycle step: lock the row, validate the
// status change against the legal table, persist the new status and
// append the matching event to the outbox, all inside one
// transaction. An illegal transition is rejected before any write and
// logged distinctly: it signals a UI or programming error, not bad
// user input.
func (h *AdminBookingHandler) transition(c echo.Context, to model.Status) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
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

	b, err := h.Bookings.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}

	if err := model.Transition(b.Status, to); err != nil {
		c.Logger().Warnf("illegal transition attempted on booking %d: %v", b.ID, err)
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "illegal_transition",
			"from":  b.Status,
			"to":    to,
		})
	}

	now := time.Now().UTC()
	if err := h.Bookings.UpdateStatusTx(ctx, tx, b.ID, to); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	payload, err := queue.EncodeBookingEvent(model.EventForStatus(to), b, b.Status, to, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	if err := h.Outbox.AppendTx(ctx, tx, b.ID, model.EventForStatus(to), payload); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	h.Cache.InvalidateDate(ctx, b.Rental.StartDate)

	b.Status = to
	b.Metadata.UpdatedAt = now
	if to == model.StatusCompleted {
		b.Workflow.CompletedAt = &now
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// EditRequest carries an admin correction of non-status fields. Only
// set pointers are applied. Base and helmet cents may be overridden
// directly; subtotal and total are always rederived from the stored
// components and never accepted from the client.
type EditRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Age             *int    `json:"age"`
	LicenseCategory *string `json:"license_category"`
	Model           *string `json:"model"`
	StartDate       *string `json:"start_date"`
	RentalType      *string `json:"rental_type"`
	Route           *string `json:"route"`
	Helmet          *bool   `json:"helmet"`
	Message         *string `json:"message"`
	BaseCents       *uint32 `json:"base_cents"`
	HelmetCents     *uint32 `json:"helmet_cents"`
}

// Edit handles PATCH /v1/admin/bookings/:id. It corrects customer,
// rental and pricing detail without changing the status.
func (h *AdminBookingHandler) Edit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req EditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
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

	b, err := h.Bookings.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	oldDate := b.Rental.StartDate

	if errs := applyEdit(b, req); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation_failed",
			"errors": errs,
		})
	}

	// Moving an active booking occupies a unit on the target date, so
	// the edit recounts under lock the same way the create path does.
	// Cancelled bookings hold no capacity and may move freely.
	if b.Active() && b.Rental.StartDate != oldDate {
		n, err := h.Bookings.CountActiveOnDateTx(ctx, tx, b.Rental.StartDate)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
		}
		if n >= h.FleetSize {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "date_full",
				"date":  b.Rental.StartDate,
			})
		}
	}

	if err := h.Bookings.UpdateDetailsTx(ctx, tx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	h.Cache.InvalidateDate(ctx, oldDate)
	if b.Rental.StartDate != oldDate {
		h.Cache.InvalidateDate(ctx, b.Rental.StartDate)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// applyEdit sanitizes and applies the supplied fields, then rederives
// the pricing totals. Violations are collected and reported together.
func applyEdit(b *model.Booking, req EditRequest) []string {
	var errs []string
	if req.Name != nil {
		b.Customer.Name = validate.CleanString(*req.Name, validate.MaxName)
		if len(b.Customer.Name) < 2 {
			errs = append(errs, "name must be at least 2 characters")
		}
	}
	if req.Email != nil {
		b.Customer.Email = validate.CleanEmail(*req.Email)
		if b.Customer.Email == "" {
			errs = append(errs, "a valid email address is required")
		}
	}
	if req.Phone != nil {
		b.Customer.Phone = validate.CleanPhone(*req.Phone)
		if b.Customer.Phone == "" {
			errs = append(errs, "a valid phone number is required")
		}
	}
	if req.Age != nil {
		if *req.Age < 21 || *req.Age > 80 {
			errs = append(errs, "age must be between 21 and 80")
		} else {
			b.Customer.Age = *req.Age
		}
	}
	if req.LicenseCategory != nil {
		b.Customer.LicenseCategory = validate.CleanString(*req.LicenseCategory, 20)
		if b.Customer.LicenseCategory == "" {
			errs = append(errs, "a driving-license category is required")
		}
	}
	if req.Model != nil {
		b.Rental.Model = validate.CleanString(*req.Model, validate.MaxName)
		if b.Rental.Model == "" {
			errs = append(errs, "a vespa model is required")
		}
	}
	if req.StartDate != nil {
		d := validate.CleanString(*req.StartDate, 10)
		if _, err := time.Parse(validate.DateLayout, d); err != nil {
			errs = append(errs, "start_date must be a valid date in YYYY-MM-DD format")
		} else {
			b.Rental.StartDate = d
			b.Rental.EndDate = d
		}
	}
	if req.RentalType != nil {
		t := model.RentalType(validate.CleanString(*req.RentalType, 20))
		if !t.Valid() {
			errs = append(errs, "rental_type must be one of full, morning, evening")
		} else {
			b.Rental.RentalType = t
		}
	}
	if req.Route != nil {
		b.Rental.Route = validate.CleanString(*req.Route, validate.MaxGeneric)
	}
	if req.Helmet != nil {
		b.Rental.Helmet = *req.Helmet
	}
	if req.Message != nil {
		b.Rental.Message = validate.CleanString(*req.Message, validate.MaxMessage)
	}
	if len(errs) > 0 {
		return errs
	}

	// Rederive pricing from components. Explicit cent overrides win,
	// otherwise the rate table for the (possibly edited) rental type
	// and helmet flag applies.
	b.Pricing = model.ComputePricing(b.Rental.RentalType, b.Rental.Helmet)
	if req.BaseCents != nil {
		b.Pricing.BaseCents = *req.BaseCents
	}
	if req.HelmetCents != nil {
		b.Pricing.HelmetCents = *req.HelmetCents
	}
	b.Pricing.SubtotalCents = b.Pricing.BaseCents + b.Pricing.HelmetCents
	b.Pricing.TotalCents = b.Pricing.SubtotalCents + b.Pricing.DepositCents
	return nil
}

// Delete handles DELETE /v1/admin/bookings/:id. This is a hard,
// irreversible removal, not a status transition. Pending outbox rows
// are removed in the same transaction so no event fires for a booking
// that no longer exists.
func (h *AdminBookingHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
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

	b, err := h.Bookings.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	if err := h.Outbox.DeletePendingForBookingTx(ctx, tx, b.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}
	if err := h.Bookings.DeleteTx(ctx, tx, b.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	h.Cache.InvalidateDate(ctx, b.Rental.StartDate)
	return c.NoContent(http.StatusNoContent)
}

// EmailLog handles GET /v1/admin/bookings/:id/emails. It returns the
// ordered list of delivery attempts recorded by the event consumer so
// the console can render a booking's workflow status.
func (h *AdminBookingHandler) EmailLog(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Bookings.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	items, err := h.Emails.ListByBooking(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load email log"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
