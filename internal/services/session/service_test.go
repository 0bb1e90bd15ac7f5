package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prismgate/console/internal/config"
)

func issueCookie(t *testing.T, service *Service, userID string) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	if err := service.CreateSession(context.Background(), w, userID); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("CreateSession() set %d cookies, want 1", len(cookies))
	}
	return cookies[0]
}

func TestCreateAndValidateSession(t *testing.T) {
	service := NewService(nil)

	cookie := issueCookie(t, service, "user@example.com")
	if cookie.Name != config.GetSessionCookieName() {
		t.Errorf("cookie name = %q, want %q", cookie.Name, config.GetSessionCookieName())
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	r := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	r.AddCookie(cookie)

	claims, err := service.ValidateSession(r)
	if err != nil {
		t.Fatalf("ValidateSession() error: %v", err)
	}
	if claims == nil {
		t.Fatal("ValidateSession() = nil for a freshly issued cookie")
	}
	if claims.UserID != "user@example.com" {
		t.Errorf("UserID = %q, want user@example.com", claims.UserID)
	}
}

func TestValidateSessionWithoutCookie(t *testing.T) {
	service := NewService(nil)

	r := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	claims, err := service.ValidateSession(r)
	if err != nil {
		t.Fatalf("ValidateSession() error: %v", err)
	}
	if claims != nil {
		t.Errorf("ValidateSession() = %+v without a cookie, want nil", claims)
	}
}

func TestValidateSessionRejectsTamperedCookie(t *testing.T) {
	service := NewService(nil)

	cookie := issueCookie(t, service, "user@example.com")
	cookie.Value = cookie.Value + "tampered"

	r := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	r.AddCookie(cookie)

	claims, err := service.ValidateSession(r)
	if err == nil && claims != nil {
		t.Error("ValidateSession() accepted a tampered cookie")
	}
}

func TestClearSessionRemovesServerSideState(t *testing.T) {
	service := NewService(nil)

	cookie := issueCookie(t, service, "user@example.com")

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()

	service.ClearSession(w, r)

	cleared := w.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Error("ClearSession() should expire the cookie")
	}

	// The old cookie no longer maps to a server-side session
	r2 := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	r2.AddCookie(cookie)

	claims, err := service.ValidateSession(r2)
	if err != nil {
		t.Fatalf("ValidateSession() error: %v", err)
	}
	if claims != nil {
		t.Error("ValidateSession() still accepts a cleared session")
	}
}
