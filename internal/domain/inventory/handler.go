package inventory

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
	read := api.Group("", auth.RequireRole(auth.RoleAssistant, auth.RoleDentist, auth.RoleReception))
	read.GET("/stock-items", h.listItems)
	read.GET("/stock-items/:id", h.getItem)
	read.GET("/stock-movements", h.listMovements)
	read.GET("/stock-movements/:id", h.getMovement)

	write := api.Group("", auth.RequireRole(auth.RoleAssistant))
	write.POST("/stock-items", h.createItem)
	write.PUT("/stock-items/:id", h.updateItem)
	write.DELETE("/stock-items/:id", h.deleteItem)
	write.POST("/stock-items/zero", h.zeroQuantity)
	write.POST("/stock-items/raise-to-minimum", h.raiseToMinimum)
	write.POST("/stock-movements", h.createMovement)
	write.DELETE("/stock-movements/:id", h.deleteMovement)
}

func parseID(c echo.Context, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+label+" id")
	}
	return id, nil
}

func (h *Handler) createItem(c echo.Context) error {
	var i StockItem
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreateItem(c.Request().Context(), &i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *Handler) getItem(c echo.Context) error {
	id, err := parseID(c, "stock item")
	if err != nil {
		return err
	}
	i, err := h.service.GetItem(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "stock item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch stock item")
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) updateItem(c echo.Context) error {
	id, err := parseID(c, "stock item")
	if err != nil {
		return err
	}
	var i StockItem
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	i.ID = id
	if err := h.service.UpdateItem(c.Request().Context(), &i); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "stock item not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) deleteItem(c echo.Context) error {
	id, err := parseID(c, "stock item")
	if err != nil {
		return err
	}
	if err := h.service.DeleteItem(c.Request().Context(), id); err != nil {
		switch {
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "stock item not found")
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "stock item has recorded movements")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete stock item")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listItems(c echo.Context) error {
	p := pagination.FromContext(c)
	belowMinimum := c.QueryParam("below_minimum") == "true"
	items, total, err := h.service.ListItems(c.Request().Context(), c.QueryParam("q"), belowMinimum, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list stock items")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p))
}

type bulkRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *Handler) zeroQuantity(c echo.Context) error {
	var body bulkRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	affected, err := h.service.ZeroQuantity(c.Request().Context(), body.IDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to zero stock items")
	}
	return c.JSON(http.StatusOK, map[string]any{"affected": affected})
}

func (h *Handler) raiseToMinimum(c echo.Context) error {
	var body bulkRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	affected, err := h.service.RaiseToMinimum(c.Request().Context(), body.IDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to restock items")
	}
	return c.JSON(http.StatusOK, map[string]any{"affected": affected})
}

func (h *Handler) createMovement(c echo.Context) error {
	var m StockMovement
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.service.CreateMovement(c.Request().Context(), &m); err != nil {
		switch {
		case errors.Is(err, ErrInvalidMovementType):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case db.IsForeignKeyViolation(err):
			return echo.NewHTTPError(http.StatusConflict, "referenced record does not exist")
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "stock item not found")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) getMovement(c echo.Context) error {
	id, err := parseID(c, "movement")
	if err != nil {
		return err
	}
	m, err := h.service.GetMovement(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "movement not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch movement")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) deleteMovement(c echo.Context) error {
	id, err := parseID(c, "movement")
	if err != nil {
		return err
	}
	if err := h.service.DeleteMovement(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "movement not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete movement")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listMovements(c echo.Context) error {
	p := pagination.FromContext(c)
	var itemID *uuid.UUID
	if raw := c.QueryParam("item"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid item filter")
		}
		itemID = &id
	}
	movements, total, err := h.service.ListMovements(c.Request().Context(), itemID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list movements")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(movements, total, p))
}
