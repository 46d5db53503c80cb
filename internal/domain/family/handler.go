package family

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nyny77/mely-api/internal/platform/apperror"
	"github.com/nyny77/mely-api/internal/platform/auth"
)

type Handler struct {
	svc    *Service
	tokens *auth.TokenIssuer
}

func NewHandler(svc *Service, tokens *auth.TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/login", h.Login)
	api.POST("/familles/register", h.Register)
	api.GET("/familles/pending", h.ListPending)
	api.POST("/familles/:id/approve", h.Approve)
	api.POST("/familles/:id/reject", h.Reject)
	api.POST("/familles/:id/delete", h.SoftDelete)
	// Legacy singular path kept for existing portal clients.
	api.POST("/famille/:id/delete", h.SoftDelete)
	api.GET("/residents/:id/familles", h.ListByResident)

	me := api.Group("/me", auth.RequireFamily(h.tokens))
	me.GET("", h.Me)
}

func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "requête invalide"))
	}
	out, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"token":    out.Token,
		"famille":  out.Famille.Public(),
		"resident": out.Resident.Public(),
	})
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "requête invalide"))
	}
	f, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "inscription enregistrée, en attente de validation",
		"famille": f.Public(),
	})
}

// Me returns the logged-in family's profile from its session token.
func (h *Handler) Me(c echo.Context) error {
	claims := auth.ClaimsFromContext(c)
	if claims == nil {
		return apperror.JSON(c, apperror.New(apperror.KindUnauthorized, "session invalide"))
	}
	f, err := h.svc.Get(c.Request().Context(), claims.FamilleID)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"famille": f.Public(),
	})
}

func (h *Handler) ListPending(c echo.Context) error {
	items, err := h.svc.ListPending(c.Request().Context())
	if err != nil {
		return apperror.JSON(c, err)
	}
	familles := make([]map[string]interface{}, 0, len(items))
	for _, f := range items {
		familles = append(familles, f.Public())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"familles": familles,
	})
}

func (h *Handler) ListByResident(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "identifiant invalide"))
	}
	items, err := h.svc.ListByResident(c.Request().Context(), id)
	if err != nil {
		return apperror.JSON(c, err)
	}
	familles := make([]map[string]interface{}, 0, len(items))
	for _, f := range items {
		familles = append(familles, f.Public())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"familles": familles,
	})
}

func (h *Handler) Approve(c echo.Context) error {
	return h.decide(c, h.svc.Approve)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.decide(c, h.svc.Reject)
}

func (h *Handler) decide(c echo.Context, fn func(ctx context.Context, id int64) (*Famille, bool, error)) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.JSON(c, apperror.New(apperror.KindInvalidInput, "identifiant invalide"))
	}
	f, sent, err := fn(c.Request().Context(), id)
	if err != nil {
		return apperror.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"famille":      f.Public(),
		"email_envoye": sent,
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
