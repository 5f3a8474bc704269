package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthcenter/healthcenter/pkg/pagination"
)

// Handler exposes the slot engine over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the scheduling API. adminOnly wraps the admin
// projection endpoints; pass echo's no-op middleware to disable gating in
// tests.
func (h *Handler) RegisterRoutes(api *echo.Group, adminOnly echo.MiddlewareFunc) {
	api.GET("/slots", h.ListOpenSlots)
	api.GET("/calendar-slots", h.ListCalendarSlots)
	api.POST("/slots", h.CreateBlockedTime)
	api.DELETE("/slots/:id", h.DeleteBlockedTime)
	api.GET("/blocked-times", h.ListBlockedTimes, adminOnly)
	api.GET("/appointments", h.ListAppointments, adminOnly)
	api.POST("/appointments", h.BookAppointment)
	api.GET("/my-appointments", h.ListMyAppointments)
	api.DELETE("/appointments/:id", h.CancelAppointment)
	api.PATCH("/appointments/:id/notes", h.UpdateNotes)
	api.GET("/appointment-types", h.ListAppointmentTypes)
}

type errorStatus struct {
	err  error
	code int
}

var errorStatuses = []errorStatus{
	{ErrNotWeekday, http.StatusBadRequest},
	{ErrOutsideWindow, http.StatusBadRequest},
	{ErrOffGrid, http.StatusBadRequest},
	{ErrLunchClosure, http.StatusBadRequest},
	{ErrNotFuture, http.StatusBadRequest},
	{ErrBeyondHorizon, http.StatusBadRequest},
	{ErrUnknownType, http.StatusBadRequest},
	{ErrNotesTooLong, http.StatusBadRequest},
	{ErrEmailRequired, http.StatusBadRequest},
	{ErrNotUpcoming, http.StatusBadRequest},
	{ErrBlockNotAdmin, http.StatusForbidden},
	{ErrUnblockNotAdmin, http.StatusForbidden},
	{ErrBookNotStudent, http.StatusForbidden},
	{ErrCancelNotStudent, http.StatusForbidden},
	{ErrNotesNotStudent, http.StatusForbidden},
	{ErrListNotStudent, http.StatusForbidden},
	{ErrNotYourAppointment, http.StatusForbidden},
	{ErrNotYourNotes, http.StatusForbidden},
	{ErrBlockedNotFound, http.StatusNotFound},
	{ErrAppointmentNotFound, http.StatusNotFound},
	{ErrTimeBlocked, http.StatusConflict},
	{ErrTimeBooked, http.StatusConflict},
	{ErrStoreUnavailable, http.StatusServiceUnavailable},
}

// httpError maps an engine error to its HTTP status, echoing the sentinel's
// message rather than any wrapped detail.
func httpError(err error) error {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return echo.NewHTTPError(es.code, es.err.Error())
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// parseSlotInstant combines date (YYYY-MM-DD) and time (HH:MM) fields into a
// local instant.
func parseSlotInstant(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
}

// -- Availability --

func (h *Handler) ListOpenSlots(c echo.Context) error {
	slots, err := h.svc.OpenSlots(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) ListCalendarSlots(c echo.Context) error {
	days := 0
	if d := c.QueryParam("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "days must be a number")
		}
		days = parsed
	}
	typeTag := c.QueryParam("type")
	if typeTag == "" {
		typeTag = "general"
	}
	slots, err := h.svc.TypeSlots(c.Request().Context(), days, typeTag)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

// -- Blocking --

type blockRequest struct {
	AdminEmail string `json:"admin_email"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

func (h *Handler) CreateBlockedTime(c echo.Context) error {
	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	start, err := parseSlotInstant(req.Date, req.Time)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date or time format.")
	}
	b, err := h.svc.Block(c.Request().Context(), req.AdminEmail, start)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) DeleteBlockedTime(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Unblock(c.Request().Context(), c.QueryParam("admin_email"), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListBlockedTimes(c echo.Context) error {
	items, err := h.svc.ListBlocked(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// -- Appointments --

type bookRequest struct {
	StudentEmail    string `json:"student_email"`
	AppointmentType string `json:"appointment_type"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Notes           string `json:"notes"`
}

func (h *Handler) BookAppointment(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	start, err := parseSlotInstant(req.Date, req.Time)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date or time format.")
	}
	appt, err := h.svc.Book(c.Request().Context(), BookingRequest{
		StudentEmail:    req.StudentEmail,
		AppointmentType: req.AppointmentType,
		Start:           start,
		Notes:           req.Notes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListMyAppointments(c echo.Context) error {
	items, err := h.svc.ListStudentAppointments(c.Request().Context(), c.QueryParam("student_email"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Cancel(c.Request().Context(), c.QueryParam("student_email"), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type notesRequest struct {
	StudentEmail string `json:"student_email"`
	Notes        string `json:"notes"`
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req notesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.UpdateNotes(c.Request().Context(), req.StudentEmail, id, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointmentTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Catalog())
}
