package availability

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nyny77/mely-api/internal/platform/apperror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/disponibilites", h.Projection)
	api.POST("/disponibilites/sync", h.Sync)
}

func (h *Handler) Projection(c echo.Context) error {
	slots, occupied, err := h.svc.Projection(c.Request().Context())
	if err != nil {
		return apperror.JSON(c, err)
	}
	disponibilites := make([]map[string]interface{}, 0, len(slots))
	for _, s := range slots {
		disponibilites = append(disponibilites, s.Public())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"disponibilites": disponibilites,
		"creneaux_pris":  occupied,
	})
}

func (h *Handler) Sync(c echo.Context) error {
	var req struct {
		Creneaux []SlotInput `json:"creneaux"`
	}
	if err := c.Bind(&req); err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "requête invalide"))
	}
	count, err := h.svc.ReplaceAll(c.Request().Context(), req.Creneaux)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}
