package treatment

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
	read := api.Group("", auth.RequireRole(auth.RoleDentist, auth.RoleAssistant, auth.RoleReception))
	read.GET("/procedures", h.listCatalog)
	read.GET("/procedures/:id", h.getCatalog)
	read.GET("/plans", h.listPlans)
	read.GET("/plans/:id", h.getPlan)
	read.GET("/planned-procedures", h.listPlanned)
	read.GET("/planned-procedures/:id", h.getPlanned)
	read.GET("/executed-procedures", h.listExecuted)
	read.GET("/executed-procedures/:id", h.getExecuted)
	read.GET("/quotes", h.listQuotes)
	read.GET("/quotes/:id", h.getQuote)

	// The procedure catalog is clinic configuration, not day-to-day data.
	catalog := api.Group("", auth.RequireRole(auth.RoleAdmin))
	catalog.POST("/procedures", h.createCatalog)
	catalog.PUT("/procedures/:id", h.updateCatalog)
	catalog.DELETE("/procedures/:id", h.deleteCatalog)

	dentist := api.Group("", auth.RequireRole(auth.RoleDentist))
	dentist.POST("/plans", h.createPlan)
	dentist.PUT("/plans/:id", h.updatePlan)
	dentist.DELETE("/plans/:id", h.deletePlan)
	dentist.POST("/planned-procedures", h.createPlanned)
	dentist.PUT("/planned-procedures/:id", h.updatePlanned)
	dentist.DELETE("/planned-procedures/:id", h.deletePlanned)
	dentist.POST("/executed-procedures", h.createExecuted)
	dentist.PUT("/executed-procedures/:id", h.updateExecuted)
	dentist.DELETE("/executed-procedures/:id", h.deleteExecuted)

	quotes := api.Group("", auth.RequireRole(auth.RoleDentist, auth.RoleReception))
	quotes.POST("/quotes", h.createQuote)
	quotes.PUT("/quotes/:id", h.updateQuote)
	quotes.POST("/quotes/:id/approve", h.approveQuote)
	quotes.DELETE("/quotes/:id", h.deleteQuote)
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

func (h *Handler) createCatalog(c echo.Context) error {
	var p CatalogProcedure
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreateCatalogProcedure(c.Request().Context(), &p); err != nil {
		if db.IsUniqueViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "a procedure with this code already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) getCatalog(c echo.Context) error {
	id, err := parseID(c, "procedure")
	if err != nil {
		return err
	}
	p, err := h.service.GetCatalogProcedure(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "procedure not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch procedure")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) updateCatalog(c echo.Context) error {
	id, err := parseID(c, "procedure")
	if err != nil {
		return err
	}
	var p CatalogProcedure
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.service.UpdateCatalogProcedure(c.Request().Context(), &p); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "procedure not found")
		case db.IsUniqueViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "a procedure with this code already exists")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteCatalog(c echo.Context) error {
	id, err := parseID(c, "procedure")
	if err != nil {
		return err
	}
	if err := h.service.DeleteCatalogProcedure(c.Request().Context(), id); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "procedure not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "procedure is referenced by treatment records")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete procedure")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listCatalog(c echo.Context) error {
	p := pagination.FromContext(c)
	procedures, total, err := h.service.ListCatalog(c.Request().Context(), c.QueryParam("q"), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list procedures")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(procedures, total, p))
}

func (h *Handler) createPlan(c echo.Context) error {
	var p TreatmentPlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreatePlan(c.Request().Context(), &p); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "patient does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) getPlan(c echo.Context) error {
	id, err := parseID(c, "plan")
	if err != nil {
		return err
	}
	p, err := h.service.GetPlan(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "plan not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch plan")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) updatePlan(c echo.Context) error {
	id, err := parseID(c, "plan")
	if err != nil {
		return err
	}
	var p TreatmentPlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.service.UpdatePlan(c.Request().Context(), &p); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "plan not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "patient does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) deletePlan(c echo.Context) error {
	id, err := parseID(c, "plan")
	if err != nil {
		return err
	}
	if err := h.service.DeletePlan(c.Request().Context(), id); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "plan not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "plan has dependent records")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete plan")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listPlans(c echo.Context) error {
	p := pagination.FromContext(c)
	patientID, err := optionalFilter(c, "paciente")
	if err != nil {
		return err
	}
	params := PlanSearchParams{
		PatientID: patientID,
		Status:    c.QueryParam("status"),
	}
	plans, total, err := h.service.SearchPlans(c.Request().Context(), params, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list plans")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(plans, total, p))
}

func (h *Handler) createPlanned(c echo.Context) error {
	// Quantity defaults to 1 only when the field is absent; an explicit
	// zero survives the bind.
	pl := PlannedProcedure{Quantity: 1}
	if err := c.Bind(&pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// The plan screen links here with ?plano=<id>.
	if pl.PlanID == uuid.Nil {
		if id, err := uuid.Parse(c.QueryParam("plano")); err == nil {
			pl.PlanID = id
		}
	}
	if err := h.service.CreatePlanned(c.Request().Context(), &pl); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, pl)
}

func (h *Handler) getPlanned(c echo.Context) error {
	id, err := parseID(c, "planned procedure")
	if err != nil {
		return err
	}
	pl, err := h.service.GetPlanned(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "planned procedure not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch planned procedure")
	}
	return c.JSON(http.StatusOK, pl)
}

func (h *Handler) updatePlanned(c echo.Context) error {
	id, err := parseID(c, "planned procedure")
	if err != nil {
		return err
	}
	var pl PlannedProcedure
	if err := c.Bind(&pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pl.ID = id
	if err := h.service.UpdatePlanned(c.Request().Context(), &pl); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "planned procedure not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, pl)
}

func (h *Handler) deletePlanned(c echo.Context) error {
	id, err := parseID(c, "planned procedure")
	if err != nil {
		return err
	}
	if err := h.service.DeletePlanned(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "planned procedure not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete planned procedure")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listPlanned(c echo.Context) error {
	p := pagination.FromContext(c)
	planID, err := optionalFilter(c, "plano")
	if err != nil {
		return err
	}
	procedures, total, err := h.service.ListPlanned(c.Request().Context(), planID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list planned procedures")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(procedures, total, p))
}

func (h *Handler) createExecuted(c echo.Context) error {
	var e ExecutedProcedure
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// The appointment screen links here with ?consulta=<id>&planejado=<id>.
	if e.AppointmentID == uuid.Nil {
		if id, err := uuid.Parse(c.QueryParam("consulta")); err == nil {
			e.AppointmentID = id
		}
	}
	if e.PlannedID == nil {
		if id, err := uuid.Parse(c.QueryParam("planejado")); err == nil {
			e.PlannedID = &id
		}
	}
	if err := h.service.CreateExecuted(c.Request().Context(), &e); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) getExecuted(c echo.Context) error {
	id, err := parseID(c, "executed procedure")
	if err != nil {
		return err
	}
	e, err := h.service.GetExecuted(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "executed procedure not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch executed procedure")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) updateExecuted(c echo.Context) error {
	id, err := parseID(c, "executed procedure")
	if err != nil {
		return err
	}
	var e ExecutedProcedure
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	e.ID = id
	if err := h.service.UpdateExecuted(c.Request().Context(), &e); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "executed procedure not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) deleteExecuted(c echo.Context) error {
	id, err := parseID(c, "executed procedure")
	if err != nil {
		return err
	}
	if err := h.service.DeleteExecuted(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "executed procedure not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete executed procedure")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listExecuted(c echo.Context) error {
	p := pagination.FromContext(c)
	appointmentID, err := optionalFilter(c, "consulta")
	if err != nil {
		return err
	}
	executed, total, err := h.service.ListExecuted(c.Request().Context(), appointmentID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list executed procedures")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(executed, total, p))
}

func (h *Handler) createQuote(c echo.Context) error {
	var q Quote
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if q.PlanID == uuid.Nil {
		if id, err := uuid.Parse(c.QueryParam("plano")); err == nil {
			q.PlanID = id
		}
	}
	if err := h.service.CreateQuote(c.Request().Context(), &q); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "plan does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, q)
}

func (h *Handler) getQuote(c echo.Context) error {
	id, err := parseID(c, "quote")
	if err != nil {
		return err
	}
	q, err := h.service.GetQuote(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "quote not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch quote")
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) updateQuote(c echo.Context) error {
	id, err := parseID(c, "quote")
	if err != nil {
		return err
	}
	var q Quote
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	q.ID = id
	if err := h.service.UpdateQuote(c.Request().Context(), &q); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "quote not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "plan does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) approveQuote(c echo.Context) error {
	id, err := parseID(c, "quote")
	if err != nil {
		return err
	}
	if err := h.service.ApproveQuote(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "quote not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to approve quote")
	}
	q, err := h.service.GetQuote(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch quote")
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) deleteQuote(c echo.Context) error {
	id, err := parseID(c, "quote")
	if err != nil {
		return err
	}
	if err := h.service.DeleteQuote(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "quote not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete quote")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listQuotes(c echo.Context) error {
	p := pagination.FromContext(c)
	planID, err := optionalFilter(c, "plano")
	if err != nil {
		return err
	}
	quotes, total, err := h.service.ListQuotes(c.Request().Context(), planID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list quotes")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(quotes, total, p))
}
