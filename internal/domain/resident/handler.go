package resident

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nyny77/mely-api/internal/platform/apperror"
	"github.com/nyny77/mely-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/residents", h.List)
	api.POST("/residents/verify-code", h.VerifyCode)
	api.POST("/residents/sync", h.Sync)
	api.POST("/residents/:id/delete", h.SoftDelete)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, _, err := h.svc.ListActive(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperror.JSON(c, err)
	}
	residents := make([]map[string]interface{}, 0, len(items))
	for _, r := range items {
		residents = append(residents, r.Public())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"residents": residents,
	})
}

func (h *Handler) VerifyCode(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "requête invalide"))
	}
	res, err := h.svc.VerifyCode(c.Request().Context(), req.Code)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"resident": res.Public(),
	})
}

func (h *Handler) Sync(c echo.Context) error {
	var in SyncInput
	if err := c.Bind(&in); err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "requête invalide"))
	}
	action, res, err := h.svc.Sync(c.Request().Context(), in)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"action":   action,
		"resident": res,
	})
}

func (h *Handler) SoftDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "identifiant invalide"))
	}
	if err := h.svc.SoftDelete(c.Request().Context(), id); err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
