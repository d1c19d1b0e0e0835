package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bomsource_backend/internal/events"
	apphttp "bomsource_backend/internal/http"
	"bomsource_backend/internal/http/router"
	"bomsource_backend/internal/sourcing"
	"bomsource_backend/platform/config"
	"bomsource_backend/platform/logger"
	"bomsource_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	registerEventAudit(eventBus, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	sourcingModule := sourcing.NewModule(ctx, cfg, eventBus, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			sourcingModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// registerEventAudit subscribes audit-log handlers for the sourcing domain
// events. Keeping the subscriptions in the composition root leaves the
// sourcing module free of logging policy.
func registerEventAudit(bus events.Bus, log *logger.Logger) {
	bus.Subscribe("sourcing.run.completed", events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.SuggestionRunCompleted); ok {
			log.Info("suggestion run completed",
				"items", e.Items,
				"matched", e.Matched,
				"unmatched", e.Unmatched,
				"suggestions", e.Suggestions,
				"durationMs", e.DurationMs,
			)
		}
		return nil
	}))

	bus.Subscribe("sourcing.gateway.search_failed", events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.GatewaySearchFailed); ok {
			log.Warn("gateway search degraded",
				"provider", e.Provider,
				"itemId", e.ItemID,
				"query", e.Query,
				"error", e.Error,
			)
		}
		return nil
	}))
}
