package scheduling

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinident/clinident/internal/platform/auth"
	"github.com/clinident/clinident/internal/platform/db"
	"github.com/clinident/clinident/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleDentist, auth.RoleAssistant, auth.RoleReception))
	read.GET("/appointments", h.list)
	read.GET("/appointments/:id", h.get)
	read.GET("/reminders", h.listReminders)
	read.GET("/reminders/:id", h.getReminder)

	write := api.Group("", auth.RequireRole(auth.RoleReception))
	write.POST("/appointments", h.create)
	write.PUT("/appointments/:id", h.update)
	write.PUT("/appointments/:id/status/:code", h.setStatus)
	write.DELETE("/appointments/:id", h.delete)
	write.POST("/reminders", h.createReminder)
	write.PUT("/reminders/:id", h.updateReminder)
	write.POST("/reminders/:id/sent", h.markReminderSent)
	write.DELETE("/reminders/:id", h.deleteReminder)
}

func (h *Handler) create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.Create(c.Request().Context(), &a); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "patient does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = id
	if err := h.service.Update(c.Request().Context(), &a); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "patient does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) setStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	if err := h.service.SetStatus(c.Request().Context(), id, c.Param("code")); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update status")
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id.String(), "status": c.Param("code")})
}

func (h *Handler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "appointment has dependent records")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete appointment")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) list(c echo.Context) error {
	p := pagination.FromContext(c)
	params := SearchParams{
		Status: c.QueryParam("status"),
		Start:  c.QueryParam("start"),
		End:    c.QueryParam("end"),
		Query:  c.QueryParam("q"),
	}
	appointments, total, err := h.service.Search(c.Request().Context(), params, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appointments, total, p))
}

func (h *Handler) createReminder(c echo.Context) error {
	var rm Reminder
	if err := c.Bind(&rm); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// The scheduling screen links here with ?consulta=<id> so the
	// appointment does not have to be repeated in the body.
	if rm.AppointmentID == uuid.Nil {
		if id, err := uuid.Parse(c.QueryParam("consulta")); err == nil {
			rm.AppointmentID = id
		}
	}
	if err := h.service.CreateReminder(c.Request().Context(), &rm); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "appointment does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rm)
}

func (h *Handler) getReminder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reminder id")
	}
	rm, err := h.service.GetReminder(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "reminder not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch reminder")
	}
	return c.JSON(http.StatusOK, rm)
}

func (h *Handler) updateReminder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reminder id")
	}
	var rm Reminder
	if err := c.Bind(&rm); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rm.ID = id
	if err := h.service.UpdateReminder(c.Request().Context(), &rm); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "reminder not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "appointment does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, rm)
}

func (h *Handler) markReminderSent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reminder id")
	}
	if err := h.service.MarkReminderSent(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "reminder not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to mark reminder sent")
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id.String(), "status": ReminderSent})
}

func (h *Handler) deleteReminder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reminder id")
	}
	if err := h.service.DeleteReminder(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "reminder not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete reminder")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listReminders(c echo.Context) error {
	p := pagination.FromContext(c)
	var appointmentID *uuid.UUID
	if raw := c.QueryParam("consulta"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid consulta filter")
		}
		appointmentID = &id
	}
	reminders, total, err := h.service.ListReminders(c.Request().Context(), appointmentID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list reminders")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reminders, total, p))
}
