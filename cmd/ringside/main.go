package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kelseyhightower/envconfig"
	"github.com/riandyrn/otelchi"

	"github.com/ringside-hq/ringside/internal/adapter/fsm"
	handler "github.com/ringside-hq/ringside/internal/adapter/http"
	"github.com/ringside-hq/ringside/internal/adapter/otel"
	"github.com/ringside-hq/ringside/internal/adapter/river"
	"github.com/ringside-hq/ringside/internal/adapter/sqlite"
	"github.com/ringside-hq/ringside/internal/app"
	"github.com/ringside-hq/ringside/internal/domain"
)

// config holds server settings, read from the environment with the
// RINGSIDE_ prefix (RINGSIDE_PORT, RINGSIDE_DATABASE_PATH).
type config struct {
	Port         string `default:"8080"`
	DatabasePath string `split_words:"true" default:"ringside.db"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	var cfg config
	if err := envconfig.Process("ringside", &cfg); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	// --- Observability ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	queue, err := river.Setup(ctx, db)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}

	tracedStore := otel.NewTracingStore(store)
	publisher := otel.NewTracingPublisher(river.NewPublisher(queue))
	clock := app.SystemClock()

	// --- Application ---
	svc := handler.Services{
		Roster:       app.NewRosterService(tracedStore, clock),
		Lifecycle:    app.NewLifecycleService(tracedStore, fsm.New(), publisher, clock),
		Membership:   app.NewMembershipService(tracedStore, clock),
		Availability: app.NewAvailabilityService(tracedStore, openCalendar{}, clock),
		Championship: app.NewChampionshipService(tracedStore, clock),
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("ringside", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("ringside", "0.1.0"))
	handler.Register(api, svc)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ringside listening", "port", cfg.Port)
		slog.Info("api docs", "url", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		slog.Error("river shutdown", "error", err)
	}

	slog.Info("stopped")
	return nil
}

// openCalendar is the BookingGateway until the match-assembly service is
// wired in: every date is free.
type openCalendar struct{}

func (openCalendar) HasBookingOn(_ context.Context, _ domain.EntityRef, _ time.Time) (bool, error) {
	return false, nil
}
