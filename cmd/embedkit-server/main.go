// EmbedKit - Chatbot Widget Host Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatbotku/embedkit/internal/api"
	"github.com/chatbotku/embedkit/internal/backend"
	"github.com/chatbotku/embedkit/internal/config"
	"github.com/chatbotku/embedkit/internal/middleware"
	"github.com/chatbotku/embedkit/internal/relay"
	"github.com/chatbotku/embedkit/internal/store"
	"github.com/chatbotku/embedkit/internal/widget"
	"github.com/chatbotku/embedkit/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close state store", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	client := backend.New(cfg.BackendURL)
	registry := widget.NewRegistry()

	// Relay between embedding pages and their widget frames. Frame events
	// mirror into the server-side sessions through the registry sink.
	hub := relay.NewHub()
	relayRouter := relay.NewRouter(cfg.AllowedOrigins, widget.NewSessionSink(registry))
	wsHandler := relay.NewWebSocketHandler(hub, relayRouter, cfg.IsDevelopment())

	// Initialize handlers.
	baseHandler := api.NewHandler(client, registry, repo, cfg)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// Readiness and metrics.
	baseHandler.RegisterHealth(r)
	r.Handle("/metrics", promhttp.Handler())

	// Widget endpoints are called from frames on arbitrary customer sites.
	r.Group(func(r chi.Router) {
		r.Use(middleware.PermissiveCORS)
		baseHandler.RegisterWidgetRoutes(r)
	})

	// Dashboard proxy stays behind the explicit origin allow-list.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
		baseHandler.RegisterDashboardRoutes(r)
	})

	// WebSocket relay endpoint.
	r.Get("/ws/relay", wsHandler.ServeHTTP)

	// Serve embedded widget assets.
	r.Handle("/*", middleware.PermissiveCORS(web.Handler()))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // relay connections are long-lived
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
