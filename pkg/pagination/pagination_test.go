package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func params(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		limit      int
		offset     int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "limit=10&offset=30", 10, 30},
		{"capped", "limit=9999", MaxLimit, 0},
		{"negative offset", "limit=10&offset=-5", 10, 0},
		{"garbage", "limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := params(t, tc.query)
			if p.Limit != tc.limit || p.Offset != tc.offset {
				t.Errorf("got %+v, want limit=%d offset=%d", p, tc.limit, tc.offset)
			}
		})
	}
}

func TestHasNext(t *testing.T) {
	p := Params{Limit: 10, Offset: 20}
	if !p.HasNext(31) {
		t.Error("expected more results at total=31")
	}
	if p.HasNext(30) {
		t.Error("expected no more results at total=30")
	}
}
