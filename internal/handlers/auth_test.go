package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prismgate/console/internal/auth"
	"github.com/prismgate/console/internal/infrastructure/gateway"
	"github.com/prismgate/console/internal/services/session"
)

func newAuthFixtures(t *testing.T, gatewayHandler http.Handler) (*gateway.Service, *auth.Manager, *session.Service) {
	t.Helper()

	server := httptest.NewServer(gatewayHandler)
	t.Cleanup(server.Close)

	gatewayService := gateway.NewService().SetBaseURL(server.URL)
	manager := auth.NewManager(auth.NewRecordStore(nil), gatewayService)
	t.Cleanup(manager.Close)

	return gatewayService, manager, session.NewService(nil)
}

func tokenIssuer(accessToken string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": "r1",
			"expires_in":    1800,
		})
	})
}

func TestHandleLoginSuccess(t *testing.T) {
	gatewayService, manager, sessionService := newAuthFixtures(t, tokenIssuer("a1"))

	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{
		"email": "user@example.com",
		"password": "hunter2"
	}`))
	w := httptest.NewRecorder()

	HandleLogin(gatewayService, manager, sessionService, w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	if len(w.Result().Cookies()) != 1 {
		t.Error("login should set the session cookie")
	}

	if !manager.IsAuthenticated(r.Context()) {
		t.Error("manager should hold a live session after login")
	}
	if got := manager.GetAccessToken(r.Context()); got != "a1" {
		t.Errorf("GetAccessToken() = %q, want a1", got)
	}
}

func TestHandleLoginBadRequests(t *testing.T) {
	gatewayService, manager, sessionService := newAuthFixtures(t, tokenIssuer("a1"))

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{`},
		{"missing password", `{"email":"user@example.com"}`},
		{"missing email", `{"password":"hunter2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			HandleLogin(gatewayService, manager, sessionService, w, r)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleLoginRejectedCredentials(t *testing.T) {
	rejecting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	gatewayService, manager, sessionService := newAuthFixtures(t, rejecting)

	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{
		"email": "user@example.com",
		"password": "wrong"
	}`))
	w := httptest.NewRecorder()

	HandleLogin(gatewayService, manager, sessionService, w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if manager.IsAuthenticated(r.Context()) {
		t.Error("manager must not hold a session after a rejected login")
	}
}

func TestHandleLogout(t *testing.T) {
	gatewayService, manager, sessionService := newAuthFixtures(t, tokenIssuer("a1"))

	login := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{
		"email": "user@example.com",
		"password": "hunter2"
	}`))
	loginRec := httptest.NewRecorder()
	HandleLogin(gatewayService, manager, sessionService, loginRec, login)

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	for _, cookie := range loginRec.Result().Cookies() {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()

	HandleLogout(manager, sessionService, w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if manager.IsAuthenticated(r.Context()) {
		t.Error("manager still holds a session after logout")
	}
}

func TestHandleSession(t *testing.T) {
	gatewayService, manager, sessionService := newAuthFixtures(t, tokenIssuer("a1"))

	assertAuthenticated := func(t *testing.T, want bool) {
		t.Helper()

		r := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		w := httptest.NewRecorder()
		HandleSession(manager, w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		var body sessionResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Authenticated != want {
			t.Errorf("authenticated = %v, want %v", body.Authenticated, want)
		}
	}

	assertAuthenticated(t, false)

	login := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{
		"email": "user@example.com",
		"password": "hunter2"
	}`))
	HandleLogin(gatewayService, manager, sessionService, httptest.NewRecorder(), login)

	assertAuthenticated(t, true)
}
