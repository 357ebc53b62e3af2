package userclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolveByEmailForwardsCredential(t *testing.T) {
	var gotAuth, gotEmail string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/by-email" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotEmail = r.URL.Query().Get("email")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":9}`))
	}))
	t.Cleanup(srv.Close)

	resolver := New(srv.URL, time.Second)
	id, err := resolver.ResolveByEmail(context.Background(), "a@x.com", "Bearer original-token")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 9 {
		t.Fatalf("unexpected id: %d", id)
	}
	if gotAuth != "Bearer original-token" {
		t.Fatalf("expected original credential to be forwarded, got %q", gotAuth)
	}
	if gotEmail != "a@x.com" {
		t.Fatalf("unexpected email param: %q", gotEmail)
	}
}

func TestResolveByEmailNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	resolver := New(srv.URL, time.Second)
	if _, err := resolver.ResolveByEmail(context.Background(), "ghost@x.com", "Bearer t"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResolveByEmailServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	resolver := New(srv.URL, time.Second)
	if _, err := resolver.ResolveByEmail(context.Background(), "a@x.com", "Bearer t"); !errors.Is(err, ErrPeerUnavailable) {
		t.Fatalf("expected ErrPeerUnavailable, got %v", err)
	}
}

func TestResolveByEmailTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	resolver := New(srv.URL, time.Second)
	if _, err := resolver.ResolveByEmail(context.Background(), "a@x.com", "Bearer t"); !errors.Is(err, ErrPeerUnavailable) {
		t.Fatalf("expected ErrPeerUnavailable, got %v", err)
	}
}

func TestResolveByEmailMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not-json`))
	}))
	t.Cleanup(srv.Close)

	resolver := New(srv.URL, time.Second)
	if _, err := resolver.ResolveByEmail(context.Background(), "a@x.com", "Bearer t"); !errors.Is(err, ErrPeerUnavailable) {
		t.Fatalf("expected ErrPeerUnavailable, got %v", err)
	}
}
