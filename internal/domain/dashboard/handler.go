package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinident/clinident/internal/platform/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.summary, auth.RequireRole(
		auth.RoleDentist, auth.RoleAssistant, auth.RoleReception, auth.RoleFinance))
}

func (h *Handler) summary(c echo.Context) error {
	sum, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build dashboard")
	}
	return c.JSON(http.StatusOK, sum)
}
