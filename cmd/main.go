package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prismgate/console/internal/config"
	"github.com/prismgate/console/internal/handlers"
	"github.com/prismgate/console/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	level, err := zerolog.ParseLevel(config.GetEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	svc, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer svc.Close()

	r := setupRouter(svc)

	addr := config.GetListenAddr()
	log.Info().Str("addr", addr).Msg("Console server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("ListenAndServe error")
	}
}

func setupRouter(svc *services.Services) *mux.Router {
	r := mux.NewRouter()
	handlers.SetupRoutes(r, svc)
	return r
}
