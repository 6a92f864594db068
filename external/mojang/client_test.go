package mojang

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mba-league/mbabot/internal/platform/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
		Logger:  logging.NewNop(),
	})
}

func TestClient_ResolveUsername(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/profiles/minecraft/Steve" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"8667ba71b85a4004af54457a9734eed7","name":"Steve"}`))
	})

	profile, err := client.ResolveUsername(t.Context(), "Steve")
	if err != nil {
		t.Fatalf("resolve username: %v", err)
	}
	if profile.Username != "Steve" {
		t.Fatalf("expected username Steve, got %q", profile.Username)
	}
	if profile.UUID != "8667ba71b85a4004af54457a9734eed7" {
		t.Fatalf("unexpected uuid %q", profile.UUID)
	}
}

func TestClient_ResolveUsername_Unknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	profile, err := client.ResolveUsername(t.Context(), "nobody")
	if err != nil {
		t.Fatalf("resolve unknown username: %v", err)
	}
	if profile.UUID != "" || profile.Username != "" {
		t.Fatalf("expected empty profile, got %+v", profile)
	}
}

func TestClient_ResolveUsername_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.ResolveUsername(t.Context(), "Steve"); err == nil {
		t.Fatal("expected error on server failure")
	}
}
