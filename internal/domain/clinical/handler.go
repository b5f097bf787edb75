package clinical

import (
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
	read := api.Group("", auth.RequireRole(auth.RoleDentist, auth.RoleAssistant))
	read.GET("/odontogram", h.listEntries)
	read.GET("/odontogram/:id", h.getEntry)
	read.GET("/notes", h.listNotes)
	read.GET("/notes/:id", h.getNote)
	read.GET("/attachments", h.listAttachments)
	read.GET("/attachments/:id", h.getAttachment)
	read.GET("/prescriptions", h.listPrescriptions)
	read.GET("/prescriptions/:id", h.getPrescription)
	read.GET("/consents", h.listConsents)
	read.GET("/consents/:id", h.getConsent)

	dentist := api.Group("", auth.RequireRole(auth.RoleDentist))
	dentist.POST("/odontogram", h.createEntry)
	dentist.PUT("/odontogram/:id", h.updateEntry)
	dentist.DELETE("/odontogram/:id", h.deleteEntry)
	dentist.POST("/notes", h.createNote)
	dentist.PUT("/notes/:id", h.updateNote)
	dentist.DELETE("/notes/:id", h.deleteNote)
	dentist.POST("/prescriptions", h.createPrescription)
	dentist.PUT("/prescriptions/:id", h.updatePrescription)
	dentist.DELETE("/prescriptions/:id", h.deletePrescription)
	dentist.POST("/consents", h.createConsent)
	dentist.PUT("/consents/:id", h.updateConsent)
	dentist.POST("/consents/:id/sign", h.signConsent)
	dentist.DELETE("/consents/:id", h.deleteConsent)

	files := api.Group("", auth.RequireRole(auth.RoleDentist, auth.RoleAssistant))
	files.POST("/attachments", h.createAttachment)
	files.PUT("/attachments/:id", h.updateAttachment)
	files.DELETE("/attachments/:id", h.deleteAttachment)
}

func parseID(c echo.Context, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+label+" id")
	}
	return id, nil
}

func optionalFilter(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" filter")
	}
	return &id, nil
}

func (h *Handler) createEntry(c echo.Context) error {
	var e OdontogramEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreateEntry(c.Request().Context(), &e); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) getEntry(c echo.Context) error {
	id, err := parseID(c, "odontogram entry")
	if err != nil {
		return err
	}
	e, err := h.service.GetEntry(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "odontogram entry not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch odontogram entry")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) updateEntry(c echo.Context) error {
	id, err := parseID(c, "odontogram entry")
	if err != nil {
		return err
	}
	var e OdontogramEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	e.ID = id
	if err := h.service.UpdateEntry(c.Request().Context(), &e); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "odontogram entry not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) deleteEntry(c echo.Context) error {
	id, err := parseID(c, "odontogram entry")
	if err != nil {
		return err
	}
	if err := h.service.DeleteEntry(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "odontogram entry not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete odontogram entry")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listEntries(c echo.Context) error {
	p := pagination.FromContext(c)
	patientID, err := optionalFilter(c, "paciente")
	if err != nil {
		return err
	}
	entries, total, err := h.service.ListEntries(c.Request().Context(), patientID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list odontogram entries")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, p))
}

func (h *Handler) createNote(c echo.Context) error {
	var n ProgressNote
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// A consulta query parameter pins the appointment regardless of the body.
	if id, err := uuid.Parse(c.QueryParam("consulta")); err == nil {
		n.AppointmentID = id
	}
	if err := h.service.CreateNote(c.Request().Context(), &n); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "appointment does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) getNote(c echo.Context) error {
	id, err := parseID(c, "note")
	if err != nil {
		return err
	}
	n, err := h.service.GetNote(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "note not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch note")
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) updateNote(c echo.Context) error {
	id, err := parseID(c, "note")
	if err != nil {
		return err
	}
	var n ProgressNote
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	n.ID = id
	if err := h.service.UpdateNote(c.Request().Context(), &n); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "note not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) deleteNote(c echo.Context) error {
	id, err := parseID(c, "note")
	if err != nil {
		return err
	}
	if err := h.service.DeleteNote(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "note not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete note")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listNotes(c echo.Context) error {
	p := pagination.FromContext(c)
	appointmentID, err := optionalFilter(c, "consulta")
	if err != nil {
		return err
	}
	notes, total, err := h.service.ListNotes(c.Request().Context(), appointmentID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list notes")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(notes, total, p))
}

func (h *Handler) createAttachment(c echo.Context) error {
	var a Attachment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreateAttachment(c.Request().Context(), &a); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) getAttachment(c echo.Context) error {
	id, err := parseID(c, "attachment")
	if err != nil {
		return err
	}
	a, err := h.service.GetAttachment(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "attachment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch attachment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) updateAttachment(c echo.Context) error {
	id, err := parseID(c, "attachment")
	if err != nil {
		return err
	}
	var a Attachment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = id
	if err := h.service.UpdateAttachment(c.Request().Context(), &a); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "attachment not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) deleteAttachment(c echo.Context) error {
	id, err := parseID(c, "attachment")
	if err != nil {
		return err
	}
	if err := h.service.DeleteAttachment(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "attachment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete attachment")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listAttachments(c echo.Context) error {
	p := pagination.FromContext(c)
	patientID, err := optionalFilter(c, "paciente")
	if err != nil {
		return err
	}
	attachments, total, err := h.service.ListAttachments(c.Request().Context(), patientID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list attachments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(attachments, total, p))
}

func (h *Handler) createPrescription(c echo.Context) error {
	var pr Prescription
	if err := c.Bind(&pr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if id, err := uuid.Parse(c.QueryParam("consulta")); err == nil {
		pr.AppointmentID = id
	}
	if err := h.service.CreatePrescription(c.Request().Context(), &pr); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "appointment does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, pr)
}

func (h *Handler) getPrescription(c echo.Context) error {
	id, err := parseID(c, "prescription")
	if err != nil {
		return err
	}
	pr, err := h.service.GetPrescription(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch prescription")
	}
	return c.JSON(http.StatusOK, pr)
}

func (h *Handler) updatePrescription(c echo.Context) error {
	id, err := parseID(c, "prescription")
	if err != nil {
		return err
	}
	var pr Prescription
	if err := c.Bind(&pr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pr.ID = id
	if err := h.service.UpdatePrescription(c.Request().Context(), &pr); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "appointment does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, pr)
}

func (h *Handler) deletePrescription(c echo.Context) error {
	id, err := parseID(c, "prescription")
	if err != nil {
		return err
	}
	if err := h.service.DeletePrescription(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete prescription")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listPrescriptions(c echo.Context) error {
	p := pagination.FromContext(c)
	appointmentID, err := optionalFilter(c, "consulta")
	if err != nil {
		return err
	}
	prescriptions, total, err := h.service.ListPrescriptions(c.Request().Context(), appointmentID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prescriptions")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(prescriptions, total, p))
}

func (h *Handler) createConsent(c echo.Context) error {
	var f ConsentForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreateConsent(c.Request().Context(), &f); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) getConsent(c echo.Context) error {
	id, err := parseID(c, "consent form")
	if err != nil {
		return err
	}
	f, err := h.service.GetConsent(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "consent form not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch consent form")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) updateConsent(c echo.Context) error {
	id, err := parseID(c, "consent form")
	if err != nil {
		return err
	}
	var f ConsentForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	f.ID = id
	if err := h.service.UpdateConsent(c.Request().Context(), &f); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "consent form not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) signConsent(c echo.Context) error {
	id, err := parseID(c, "consent form")
	if err != nil {
		return err
	}
	var body struct {
		SignaturePath string `json:"signature_path"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.SignConsent(c.Request().Context(), id, body.SignaturePath); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "consent form not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign consent form")
	}
	f, err := h.service.GetConsent(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch consent form")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) deleteConsent(c echo.Context) error {
	id, err := parseID(c, "consent form")
	if err != nil {
		return err
	}
	if err := h.service.DeleteConsent(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "consent form not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete consent form")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listConsents(c echo.Context) error {
	p := pagination.FromContext(c)
	patientID, err := optionalFilter(c, "paciente")
	if err != nil {
		return err
	}
	forms, total, err := h.service.ListConsents(c.Request().Context(), patientID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list consent forms")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(forms, total, p))
}
