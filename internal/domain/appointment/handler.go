package appointment

import (
	"context"
	"net/http"
	"strconv"

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
	api.GET("/rdv/:familleId", h.ListByFamily)
	api.POST("/rdv/request", h.Request)
	api.POST("/rdv/:id/cancel", h.Cancel)
	api.POST("/rdv/:id/approve", h.Approve)
	api.POST("/rdv/:id/reject", h.Reject)
	api.POST("/rdv/:id/confirm", h.Confirm)
	api.POST("/rdv/:id/start", h.Start)
	api.POST("/rdv/:id/complete", h.Complete)
	api.POST("/rdv/:id/delete", h.HardDelete)
}

func (h *Handler) ListByFamily(c echo.Context) error {
	familleID, err := strconv.ParseInt(c.Param("familleId"), 10, 64)
	if err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "identifiant invalide"))
	}
	items, err := h.svc.ListNonTerminalByFamily(c.Request().Context(), familleID)
	if err != nil {
		return apperror.JSON(c, err)
	}
	rdvs := make([]map[string]interface{}, 0, len(items))
	for _, rv := range items {
		rdvs = append(rdvs, rv.Public())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"rdvs":    rdvs,
	})
}

func (h *Handler) Request(c echo.Context) error {
	var in RequestInput
	if err := c.Bind(&in); err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "requête invalide"))
	}
	rv, err := h.svc.SubmitRequest(c.Request().Context(), in)
	if err != nil {
		return apperror.JSON(c, err)
	}
	lien := ""
	if rv.LienJitsi != nil {
		lien = *rv.LienJitsi
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Demande envoyée avec succès",
		"rdv_id":     rv.ID,
		"jitsi_link": lien,
	})
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return apperror.JSON(c, err)
	}
	_, sent, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "RDV annulé",
		"email_envoye": sent,
	})
}

func (h *Handler) Approve(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return apperror.JSON(c, err)
	}
	rv, sent, err := h.svc.Approve(c.Request().Context(), id)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"rdv":          rv.Public(),
		"email_envoye": sent,
	})
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return apperror.JSON(c, err)
	}
	rv, sent, err := h.svc.Reject(c.Request().Context(), id)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"rdv":          rv.Public(),
		"email_envoye": sent,
	})
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.simple(c, h.svc.Confirm)
}

func (h *Handler) Start(c echo.Context) error {
	return h.simple(c, h.svc.Start)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.simple(c, h.svc.Complete)
}

func (h *Handler) simple(c echo.Context, fn func(ctx context.Context, id int64) (*RendezVous, error)) error {
	id, err := h.id(c)
	if err != nil {
		return apperror.JSON(c, err)
	}
	rv, err := fn(c.Request().Context(), id)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"rdv":     rv.Public(),
	})
}

func (h *Handler) HardDelete(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return apperror.JSON(c, err)
	}
	if err := h.svc.HardDelete(c.Request().Context(), id); err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) id(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.New(apperror.KindInvalidInput, "identifiant invalide")
	}
	return id, nil
}
