package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vespanova/booking-api/internal/model"
	"github.com/vespanova/booking-api/internal/repository"
	"github.com/vespanova/booking-api/internal/validate"
)

// ReportHandler serves the vehicle-condition ledgers operators fill in
// after a completed rental. Both ledgers are append-only.
type ReportHandler struct {
	Reports  *repository.ReportRepo
	Bookings *repository.BookingRepo
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reports *repository.ReportRepo, bookings *repository.BookingRepo) *ReportHandler {
	if reports == nil || bookings == nil {
		panic("nil repository passed to NewReportHandler")
	}
	return &ReportHandler{Reports: reports, Bookings: bookings}
}

// reportKind resolves the ledger from the route's :kind parameter.
func reportKind(c echo.Context) (model.ReportKind, bool) {
	switch c.Param("kind") {
	case "damage-reports":
		return model.ReportDamage, true
	case "inspection-reports":
		return model.ReportInspection, true
	}
	return "", false
}

// Append handles POST /v1/admin/bookings/:id/:kind. The zone must be
// one of the fixed vehicle areas; photo URLs come from the external
// blob store and are kept only when they parse as http(s).
func (h *ReportHandler) Append(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	kind, ok := reportKind(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown report kind"})
	}
	var body struct {
		Zone     string `json:"zone"`
		Checked  bool   `json:"checked"`
		Note     string `json:"note"`
		PhotoURL string `json:"photo_url"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	zone := model.ReportZone(validate.CleanString(body.Zone, 16))
	if !zone.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle zone"})
	}

	ctx := c.Request().Context()
	if _, err := h.Bookings.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}

	rep := &model.ConditionReport{
		BookingID: id,
		Kind:      kind,
		Zone:      zone,
		Checked:   body.Checked,
		Note:      validate.CleanString(body.Note, validate.MaxMessage),
		PhotoURL:  validate.CleanURL(body.PhotoURL),
	}
	if err := h.Reports.Append(ctx, rep); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record report"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": rep})
}

// List handles GET /v1/admin/bookings/:id/:kind.
func (h *ReportHandler) List(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	kind, ok := reportKind(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown report kind"})
	}
	items, err := h.Reports.ListByBooking(c.Request().Context(), id, kind)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reports"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
