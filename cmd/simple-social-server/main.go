// Command simple-social-server exposes the publish tick over HTTP for
// environments that prefer an HTTP trigger (or a scheduler sidecar) over
// cron. Publish runs are serialized with a mutex: two concurrent ticks could
// otherwise select the same basename before either commits.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"

	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/config"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "err", err)
		os.Exit(2)
	}

	ctx := context.Background()
	svc, err := cfg.BuildService(ctx, logger)
	if err != nil {
		logger.Error("Failed to build service", "err", err)
		os.Exit(2)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := NewHTTPServer(svc, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: server.Routes(),
	}

	go func() {
		logger.Info("simple-social server starting", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}
}

// HTTPServer wraps the simple-social service for HTTP access
type HTTPServer struct {
	service simplesocial.Service
	logger  *slog.Logger

	// publishMu serializes publish runs; Select and Commit must not overlap.
	publishMu sync.Mutex
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(service simplesocial.Service, logger *slog.Logger) *HTTPServer {
	return &HTTPServer{service: service, logger: logger}
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "OK")
	})
	r.Get("/available", s.handleAvailable)
	r.Post("/publish", s.handlePublish)

	return r
}

func (s *HTTPServer) handleAvailable(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.ListAvailable(r.Context())
	if err != nil {
		s.logger.Error("list available failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}
	render.JSON(w, r, map[string]interface{}{"available": names})
}

func (s *HTTPServer) handlePublish(w http.ResponseWriter, r *http.Request) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	result, err := s.service.PublishRandom(r.Context())
	if err != nil {
		s.logger.Error("publish run failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]interface{}{"error": err.Error(), "result": result})
		return
	}
	if !result.Committed {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, result)
		return
	}
	render.JSON(w, r, result)
}
