package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prismgate/console/internal/config"
	"github.com/prismgate/console/internal/services"
)

func TestConsoleServer(t *testing.T) {
	// Stand in for the gateway's auth endpoints
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == config.GetAuthLoginPath() {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_credentials"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer gateway.Close()

	restore := config.SetGatewayBaseURL(gateway.URL)
	defer restore()

	svc, err := services.InitializeServices()
	if err != nil {
		t.Fatalf("InitializeServices() error: %v", err)
	}
	defer svc.Close()

	server := httptest.NewServer(setupRouter(svc))
	defer server.Close()

	t.Run("session endpoint reports logged out", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/auth/session")
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status code %d, got %d", http.StatusOK, resp.StatusCode)
		}

		var body struct {
			Authenticated bool `json:"authenticated"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if body.Authenticated {
			t.Error("Expected authenticated=false with no session")
		}
	})

	t.Run("login with rejected credentials", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/auth/login", "application/json", strings.NewReader(`{
			"email": "user@example.com",
			"password": "wrong"
		}`))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, resp.StatusCode)
		}
	})

	t.Run("api routes require a session cookie", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/models")
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, resp.StatusCode)
		}
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/invalid")
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status code %d, got %d", http.StatusNotFound, resp.StatusCode)
		}
	})
}
