package webhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodySize caps webhook payloads. GitHub itself refuses payloads
// over 25MB, but relayed messages only need a handful of fields.
const DefaultMaxBodySize int64 = 1 << 20 // 1MB

// Response bodies are plain text, matching what GitHub shows in the
// delivery log for a hook.
const (
	responseForbidden        = "403: Forbidden"
	responseMethodNotAllowed = "405: Method Not Allowed"
)

// DeliveryHandler processes a verified-or-not webhook delivery and reports
// the relay outcome. Implemented by relay.Orchestrator.
type DeliveryHandler interface {
	Handle(ctx context.Context, header http.Header, body []byte) (string, error)
}

// ServerConfig holds the webhook HTTP server settings.
type ServerConfig struct {
	Listen      string
	MaxBodySize int64
}

// Server is the public HTTP boundary that GitHub posts deliveries to.
type Server struct {
	config  ServerConfig
	handler DeliveryHandler
	logger  *slog.Logger
	server  *http.Server
}

// NewServer creates a webhook server that forwards deliveries to handler.
func NewServer(config ServerConfig, handler DeliveryHandler, logger *slog.Logger) *Server {
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	return &Server{
		config:  config,
		handler: handler,
		logger:  logger,
	}
}

// Start starts the webhook HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting", "listen", s.config.Listen)

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post("/", s.handleDelivery)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	return r
}

// loggingMiddleware logs HTTP requests (excludes sensitive payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Log request (no body content for security)
		s.logger.Info("webhook request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleDelivery handles incoming webhook POST requests.
func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Enforce body size limit
	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondText(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondText(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	outcome, err := s.handler.Handle(ctx, r.Header, body)
	if err != nil {
		// Any verification failure gets the same opaque response; the
		// specifics are already in the logs.
		s.respondText(w, http.StatusForbidden, responseForbidden)
		return
	}

	s.respondText(w, http.StatusOK, "Send to Telegram: "+outcome)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.respondText(w, http.StatusMethodNotAllowed, responseMethodNotAllowed)
}

func (s *Server) respondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, message)
}
