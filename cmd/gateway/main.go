package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"medfront.com/clinicdesk/internal/cache"
	"medfront.com/clinicdesk/internal/config"
	"medfront.com/clinicdesk/internal/gateway"
	"medfront.com/clinicdesk/internal/metrics"
	"medfront.com/clinicdesk/internal/patients"
	"medfront.com/clinicdesk/internal/rest"
	"medfront.com/clinicdesk/internal/users"
	"medfront.com/clinicdesk/pkg/zerolog_config"
)

func main() {
	zerolog_config.SetAppPrefix("clinicdesk-gateway")

	cfg, err := config.Load()
	if err != nil {
		zerolog_config.StartupWithEnv("", "logs")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs")

	log.Info().Msg("Starting clinicdesk-gateway service")

	session, err := config.NewSession(cfg.APIToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session")
	}

	client, err := rest.NewClient(cfg, session)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create backend client")
	}

	service := patients.NewService(client, cfg)
	userService := users.NewService(client)
	store := cache.New()
	server := gateway.NewServer(service, userService, store, cfg)

	metrics.StartSystemMetrics(15 * time.Second)

	httpServer := &http.Server{
		Addr:         ":" + cfg.GatewayPort,
		Handler:      server.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on interrupt or terminate
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.GatewayPort).
		Str("backend", cfg.APIBaseURL).
		Msg("Gateway starting")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start gateway")
	}

	log.Info().Msg("Gateway stopped")
}
