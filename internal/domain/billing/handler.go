package billing

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
	read := api.Group("", auth.RequireRole(auth.RoleFinance, auth.RoleReception))
	read.GET("/invoices", h.listInvoices)
	read.GET("/invoices/:id", h.getInvoice)
	read.GET("/payments", h.listPayments)
	read.GET("/payments/:id", h.getPayment)

	write := api.Group("", auth.RequireRole(auth.RoleFinance))
	write.POST("/invoices", h.createInvoice)
	write.PUT("/invoices/:id", h.updateInvoice)
	write.PUT("/invoices/status/:code", h.setStatusBulk)
	write.DELETE("/invoices/:id", h.deleteInvoice)
	write.POST("/payments", h.createPayment)
	write.PUT("/payments/:id", h.updatePayment)
	write.DELETE("/payments/:id", h.deletePayment)
}

func parseID(c echo.Context, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+label+" id")
	}
	return id, nil
}

func (h *Handler) createInvoice(c echo.Context) error {
	var inv Invoice
	if err := c.Bind(&inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreateInvoice(c.Request().Context(), &inv); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "patient does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) getInvoice(c echo.Context) error {
	id, err := parseID(c, "invoice")
	if err != nil {
		return err
	}
	inv, err := h.service.GetInvoice(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch invoice")
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) updateInvoice(c echo.Context) error {
	id, err := parseID(c, "invoice")
	if err != nil {
		return err
	}
	var inv Invoice
	if err := c.Bind(&inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	inv.ID = id
	if err := h.service.UpdateInvoice(c.Request().Context(), &inv); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "patient does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) setStatusBulk(c echo.Context) error {
	var body struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	affected, err := h.service.SetStatusBulk(c.Request().Context(), body.IDs, c.Param("code"))
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update invoices")
	}
	return c.JSON(http.StatusOK, map[string]any{"affected": affected, "status": c.Param("code")})
}

func (h *Handler) deleteInvoice(c echo.Context) error {
	id, err := parseID(c, "invoice")
	if err != nil {
		return err
	}
	if err := h.service.DeleteInvoice(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete invoice")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listInvoices(c echo.Context) error {
	p := pagination.FromContext(c)
	params := InvoiceSearchParams{
		Status: c.QueryParam("status"),
		Query:  c.QueryParam("q"),
	}
	// A malformed paciente filter is dropped rather than rejected,
	// matching the list screen's tolerance for junk in the URL.
	if id, err := uuid.Parse(c.QueryParam("paciente")); err == nil {
		params.PatientID = &id
	}
	invoices, total, err := h.service.SearchInvoices(c.Request().Context(), params, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list invoices")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(invoices, total, p))
}

func (h *Handler) createPayment(c echo.Context) error {
	var p Payment
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreatePayment(c.Request().Context(), &p); err != nil {
		if db.IsForeignKeyViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "invoice does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) getPayment(c echo.Context) error {
	id, err := parseID(c, "payment")
	if err != nil {
		return err
	}
	p, err := h.service.GetPayment(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch payment")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) updatePayment(c echo.Context) error {
	id, err := parseID(c, "payment")
	if err != nil {
		return err
	}
	var p Payment
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.service.UpdatePayment(c.Request().Context(), &p); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "payment not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "invoice does not exist")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) deletePayment(c echo.Context) error {
	id, err := parseID(c, "payment")
	if err != nil {
		return err
	}
	if err := h.service.DeletePayment(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete payment")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listPayments(c echo.Context) error {
	p := pagination.FromContext(c)
	var invoiceID *uuid.UUID
	if raw := c.QueryParam("fatura"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid fatura filter")
		}
		invoiceID = &id
	}
	payments, total, err := h.service.ListPayments(c.Request().Context(), invoiceID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list payments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(payments, total, p))
}
