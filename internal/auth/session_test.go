package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionHeader(t *testing.T) {
	s := NewSession(Cookie{Name: "a", Value: "1"}, Cookie{Name: "b", Value: "2"})
	if got := s.Header(); got != "a=1; b=2" {
		t.Fatalf("Header() = %q", got)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "stale=1")
	s.Apply(req)
	if got := req.Header.Get("Cookie"); got != "a=1; b=2" {
		t.Fatalf("Cookie after Apply = %q", got)
	}
}

func TestSessionIsImmutable(t *testing.T) {
	src := []Cookie{{Name: "sid", Value: "abc"}}
	s := NewSession(src...)
	src[0].Value = "changed"

	cookies := s.Cookies()
	cookies[0].Value = "mutated"

	if got := s.Header(); got != "sid=abc" {
		t.Fatalf("Header() = %q, want sid=abc", got)
	}
}

func TestSessionFromResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	http.SetCookie(rec, &http.Cookie{Name: "lobster_trap", Value: "xyz", Path: "/", HttpOnly: true})
	http.SetCookie(rec, &http.Cookie{Name: "other", Value: "1"})

	s, err := sessionFromResponse(rec.Result())
	if err != nil {
		t.Fatalf("sessionFromResponse error = %v", err)
	}
	if got := s.Header(); got != "lobster_trap=xyz; other=1" {
		t.Fatalf("Header() = %q", got)
	}

	_, err = sessionFromResponse(httptest.NewRecorder().Result())
	if err == nil {
		t.Fatal("expected error when no cookies are set")
	}
}
