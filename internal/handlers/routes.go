package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prismgate/console/internal/config"
	"github.com/prismgate/console/internal/middleware"
	"github.com/prismgate/console/internal/services"
)

// SetupRoutes wires the console's HTTP surface onto the router
func SetupRoutes(r *mux.Router, svc *services.Services) {
	loginLimiter := middleware.RateLimit("auth_login")

	r.Handle("/auth/login", loginLimiter(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		HandleLogin(svc.GetGatewayService(), svc.GetTokenManager(), svc.GetSessionService(), w, req)
	}))).Methods(http.MethodPost)

	r.HandleFunc("/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		HandleLogout(svc.GetTokenManager(), svc.GetSessionService(), w, req)
	}).Methods(http.MethodPost)

	r.HandleFunc("/auth/session", func(w http.ResponseWriter, req *http.Request) {
		HandleSession(svc.GetTokenManager(), w, req)
	}).Methods(http.MethodGet)

	// Everything under the public prefix requires a session cookie
	api := r.PathPrefix(config.GetPublicPrefix()).Subrouter()
	api.Use(middleware.RequireSession(svc.GetSessionService()))

	chatLimiter := middleware.RateLimit("chat_completion")
	api.Handle("/chat/completions", chatLimiter(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		HandleChatCompletion(svc.GetChatService(), w, req)
	}))).Methods(http.MethodPost)

	api.HandleFunc("/realtime", func(w http.ResponseWriter, req *http.Request) {
		HandleSocket(svc.GetProxyService(), w, req)
	})

	// Catch-all REST forward to the gateway
	api.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		HandleProxy(svc.GetProxyService(), w, req)
	})
}
