package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/engine"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/handler"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/service"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/storage"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/config"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/httputil"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("claims-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("claims-service", cfg.Server.Environment)
	log.Info().Msg("starting Claims Extraction Service")

	// Wire the extraction engine and its collaborators
	eng := engine.New(engine.Config{
		ProximityWindow:     cfg.Engine.ProximityWindow,
		ContextWindow:       cfg.Engine.ContextWindow,
		SimilarityThreshold: cfg.Engine.SimilarityThreshold,
		MaxHammingDistance:  cfg.Engine.MaxHammingDistance,
		FuzzyScanCap:        cfg.Engine.FuzzyScanCap,
		SentinelDates:       cfg.Engine.SentinelDates,
	}, log.WithComponent("extraction-engine"))

	store := storage.NewRunStore(cfg.Engine.RunSummaryTTL)
	svc := service.NewService(eng, store, log.WithComponent("extraction-service"))
	h := handler.NewHandler(svc, log.WithComponent("extraction-handler"))

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/claims", func(r chi.Router) {
		r.Post("/extract-license-expiry", h.Extract)
		r.Get("/extractions/{runID}", h.GetRun)
	})

	// HTTP server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
