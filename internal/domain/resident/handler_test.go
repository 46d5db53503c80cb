package resident

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	svc, repo := newTestService()
	return NewHandler(svc), repo, echo.New()
}

func TestHandler_List(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.Create(context.Background(), &Resident{Nom: "Dupont", Prenom: "Jean", CodeAcces: "AB12", Actif: true})
	repo.Create(context.Background(), &Resident{Nom: "Durand", Prenom: "Paul", CodeAcces: "CD34", Actif: false})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Success   bool                     `json:"success"`
		Residents []map[string]interface{} `json:"residents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || len(body.Residents) != 1 {
		t.Errorf("expected 1 active resident, got %+v", body)
	}
	if _, leaked := body.Residents[0]["code_acces"]; leaked {
		t.Error("access code must not leak to the portal")
	}
}

func TestHandler_VerifyCode(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.Create(context.Background(), &Resident{Nom: "Dupont", Prenom: "Jean", CodeAcces: "AB12", Actif: true})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"AB12"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.VerifyCode(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_VerifyCode_NotFound(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"ZZZZ"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.VerifyCode(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("expected failure envelope, got %s", rec.Body.String())
	}
}

func TestHandler_Sync(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"nom":"Dupont","prenom":"Jean","chambre":"12","code_acces":"AB12"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Sync(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Action  string `json:"action"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Action != "created" {
		t.Errorf("expected action created, got %s", resp.Action)
	}
}

func TestHandler_SoftDelete_NotFound(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := h.SoftDelete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_SoftDelete_BadID(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := h.SoftDelete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
