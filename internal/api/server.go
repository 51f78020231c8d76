// Package api is the operator-facing HTTP surface: manual lockdown/reopen
// triggers, transcript export/import, the calendar append feed, and event
// snapshots for the watch TUI.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/curfewd/internal/calendar"
	appcfg "github.com/mattjoyce/curfewd/internal/config"
	"github.com/mattjoyce/curfewd/internal/engine"
	"github.com/mattjoyce/curfewd/internal/events"
	"github.com/mattjoyce/curfewd/internal/transcript"
)

// Conductor defines the reconciliation operations exposed over HTTP.
type Conductor interface {
	Lockdown(ctx context.Context, workspaceID string, p engine.Params, prov engine.Provenance) (*transcript.Transcript, error)
	Reopen(ctx context.Context, workspaceID string, t *transcript.Transcript, prov engine.Provenance) (*transcript.Report, error)
}

// TranscriptReader reads the stored transcript for export and reopen.
type TranscriptReader interface {
	Latest(ctx context.Context, workspaceID string) (*transcript.Transcript, error)
}

// CalendarLog is the calendar-sync collaborator surface.
type CalendarLog interface {
	Append(ctx context.Context, action calendar.Action, scheduledAt time.Time) error
	List(ctx context.Context, limit int) ([]calendar.Entry, error)
}

// Config holds API server configuration.
type Config struct {
	Listen string
	APIKey string
}

// Server represents the HTTP API server.
type Server struct {
	config     Config
	engine     Conductor
	reader     TranscriptReader
	cal        CalendarLog
	workspaces map[string]appcfg.WorkspacePolicy
	hub        *events.Hub
	logger     *slog.Logger
	server     *http.Server
	startedAt  time.Time
}

// New creates a new API server instance.
func New(config Config, eng Conductor, reader TranscriptReader, cal CalendarLog, workspaces map[string]appcfg.WorkspacePolicy, hub *events.Hub, logger *slog.Logger) *Server {
	return &Server{
		config:     config,
		engine:     eng,
		reader:     reader,
		cal:        cal,
		workspaces: workspaces,
		hub:        hub,
		logger:     logger.With("component", "api"),
		startedAt:  time.Now(),
	}
}

// Start starts the HTTP server (blocking until ctx is cancelled).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // lockdowns pace themselves against the platform budget
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Unauthenticated ops endpoint.
	r.Get("/healthz", s.handleHealthz)

	// Protected API.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/workspace/{workspaceID}/lockdown", s.handleLockdown)
		r.Post("/workspace/{workspaceID}/reopen", s.handleReopen)
		r.Get("/workspace/{workspaceID}/transcript", s.handleGetTranscript)
		r.Get("/calendar", s.handleCalendarList)
		r.Post("/calendar", s.handleCalendarAppend)
		r.Get("/events", s.handleEvents)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
