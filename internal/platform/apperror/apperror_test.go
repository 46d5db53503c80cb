package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotFound, "resident introuvable")
	if KindOf(err) != KindNotFound {
		t.Errorf("expected KindNotFound, got %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected KindUnknown for a plain error")
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := New(KindInvalidTransition, "statut terminal")
	outer := fmt.Errorf("approve: %w", inner)
	if KindOf(outer) != KindInvalidTransition {
		t.Errorf("expected KindInvalidTransition through wrapping, got %v", KindOf(outer))
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindInvalidTransition, http.StatusConflict},
		{KindMissingResource, http.StatusConflict},
		{KindRemoteUnavailable, http.StatusServiceUnavailable},
		{KindStore, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(New(tc.kind, "x")); got != tc.want {
			t.Errorf("kind %v: expected %d, got %d", tc.kind, tc.want, got)
		}
	}
	if HTTPStatus(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("plain error should map to 500")
	}
}

func TestMessage(t *testing.T) {
	err := Wrap(KindStore, "insertion rendez-vous", errors.New("connection reset"))
	if Message(err) != "insertion rendez-vous" {
		t.Errorf("unexpected message: %s", Message(err))
	}
	if err.Error() != "insertion rendez-vous: connection reset" {
		t.Errorf("unexpected Error(): %s", err.Error())
	}
}
