package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/prismgate/console/internal/auth"
	"github.com/prismgate/console/internal/infrastructure/gateway"
	"github.com/prismgate/console/internal/services/session"
	"github.com/prismgate/console/pkg/httpext"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// HandleLogin exchanges browser credentials for a gateway token pair,
// hands the pair to the token manager and issues the session cookie.
func HandleLogin(gatewayService *gateway.Service, tokenManager *auth.Manager, sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpext.JsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpext.JsonError(w, "Missing credentials", http.StatusBadRequest)
		return
	}

	tokens, err := gatewayService.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Gateway rejected login")
		httpext.JsonError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := tokenManager.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresIn); err != nil {
		log.Error().Err(err).Msg("Failed to persist token record after login")
		httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := sessionService.CreateSession(ctx, w, req.Email); err != nil {
		log.Error().Err(err).Msg("Failed to create session cookie")
		httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true})
}

// HandleLogout ends the gateway session and clears the session cookie
func HandleLogout(tokenManager *auth.Manager, sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	if err := tokenManager.Logout(r.Context()); err != nil {
		log.Warn().Err(err).Msg("Failed to clear token record on logout")
	}
	sessionService.ClearSession(w, r)

	w.WriteHeader(http.StatusNoContent)
}

// HandleSession reports whether the console currently holds a live session
func HandleSession(tokenManager *auth.Manager, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: tokenManager.IsAuthenticated(r.Context()),
	})
}
