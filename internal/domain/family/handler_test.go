package family

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyny77/mely-api/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *Service, *echo.Echo) {
	t.Helper()
	svc, _, _, _ := newTestService(t)
	return NewHandler(svc, auth.NewTokenIssuer("test-secret", time.Hour)), svc, echo.New()
}

func TestHandler_Login(t *testing.T) {
	h, svc, e := newTestHandler(t)
	registerApproved(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"email":"julie@example.com","password":"secret42"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success  bool                   `json:"success"`
		Token    string                 `json:"token"`
		Famille  map[string]interface{} `json:"famille"`
		Resident map[string]interface{} `json:"resident"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Token == "" {
		t.Errorf("expected a token in the login response, got %+v", body)
	}
	if _, leaked := body.Famille["password_hash"]; leaked {
		t.Error("password hash must not leak to the portal")
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, svc, e := newTestHandler(t)
	registerApproved(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"email":"julie@example.com","password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Success || body.Message == "" {
		t.Errorf("expected failure envelope, got %+v", body)
	}
}

func TestHandler_Register(t *testing.T) {
	h, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"code_acces":"MARCEL2024","nom":"Dupont","prenom":"Julie","email":"julie@example.com","password":"secret42"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_Me(t *testing.T) {
	h, svc, e := newTestHandler(t)
	f := registerApproved(t, svc)

	out, err := svc.Login(context.Background(), "julie@example.com", "secret42")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	wrapped := auth.RequireFamily(auth.NewTokenIssuer("test-secret", time.Hour))(h.Me)
	if err := wrapped(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Famille map[string]interface{} `json:"famille"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if int64(body.Famille["id"].(float64)) != f.ID {
		t.Errorf("me returned famille %v, want %d", body.Famille["id"], f.ID)
	}
}

func TestHandler_Me_WithoutToken(t *testing.T) {
	h, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	wrapped := auth.RequireFamily(auth.NewTokenIssuer("test-secret", time.Hour))(h.Me)
	err := wrapped(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestHandler_Approve(t *testing.T) {
	h, svc, e := newTestHandler(t)
	f, err := svc.Register(context.Background(), RegisterInput{
		CodeAcces: "MARCEL2024",
		Nom:       "Dupont", Prenom: "Julie",
		Email: "julie@example.com", Password: "secret42",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.Approve(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Success     bool `json:"success"`
		EmailEnvoye bool `json:"email_envoye"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || !body.EmailEnvoye {
		t.Errorf("expected success with email_envoye, got %+v", body)
	}

	got, err := svc.Get(context.Background(), f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RegistrationStatus != RegistrationApproved {
		t.Errorf("status = %q, want approved", got.RegistrationStatus)
	}
}

func TestHandler_Approve_Unknown(t *testing.T) {
	h, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := h.Approve(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
