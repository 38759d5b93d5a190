// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nhancris/KPresent/internal/deck"
	"github.com/nhancris/KPresent/internal/export"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/storage"
	"github.com/nhancris/KPresent/internal/telemetry"
	"github.com/nhancris/KPresent/internal/theme"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8787"

	// MaxRequestBodySize is the maximum size for request body (2MB). Slide
	// patches may carry a whole SVG document.
	MaxRequestBodySize = 2 * 1024 * 1024

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// SERVER
// ============================================================================

// Options configures a Server.
type Options struct {
	Addr string

	// AuthToken enables bearer authentication on /api routes when set.
	AuthToken string

	// CORSOrigins lists allowed browser origins. Empty disables CORS.
	CORSOrigins []string

	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int

	// DefaultSlides and DefaultMode apply when a request omits them.
	DefaultSlides int
	DefaultMode   model.GenerationMode

	// Metrics enables /metrics and HTTP instrumentation.
	Metrics *telemetry.Collector

	Logger *zap.Logger
}

// Server is the HTTP API over the assembler and a presentation store.
type Server struct {
	asm     *deck.Assembler
	store   storage.Store
	opts    Options
	logger  *zap.Logger
	handler http.Handler
	started time.Time

	upgrader websocket.Upgrader

	// edits serializes load-modify-save cycles so concurrent edits of one
	// presentation do not lose updates.
	edits sync.Mutex

	mu     sync.Mutex
	server *http.Server
}

// New creates a Server. A nil logger discards logs.
func New(asm *deck.Assembler, store storage.Store, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.DefaultSlides < 1 {
		opts.DefaultSlides = model.DefaultSlideCount
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = model.ModeNormal
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		asm:     asm,
		store:   store,
		opts:    opts,
		logger:  logger.Named("server"),
		started: time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	var obs HTTPObserver
	if s.opts.Metrics != nil {
		obs = s.opts.Metrics
	}

	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(LoggingMiddleware(s.logger, obs))
	r.Use(SecurityHeadersMiddleware)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
			ExposedHeaders:   []string{RequestIDHeader, "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	var limiter *RateLimiter
	if s.opts.RateLimit > 0 {
		limiter = NewRateLimiter(s.opts.RateLimit)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(s.opts.AuthToken, s.logger))
		r.Use(RateLimitMiddleware(limiter))

		r.Get("/themes", s.handleThemes)
		r.Post("/render", s.handleRender)
		r.Post("/image-prompt", s.handleImagePrompt)

		r.Route("/presentations", func(r chi.Router) {
			r.Post("/", s.handleGenerate)
			r.Get("/", s.handleList)
			r.Get("/stream", s.handleStream)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Delete("/", s.handleDelete)
				r.Put("/theme", s.handleApplyTheme)
				r.Get("/export/{format}", s.handleExport)

				r.Post("/slides", s.handleAddSlide)
				r.Get("/slides/{slideID}.svg", s.handleSlideSVG)
				r.Patch("/slides/{slideID}", s.handlePatchSlide)
				r.Delete("/slides/{slideID}", s.handleDeleteSlide)
				r.Post("/slides/{slideID}/regenerate", s.handleRegenerate)
			})
		})
	})

	return r
}

// checkOrigin accepts same-host WebSocket upgrades and configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address until Shutdown is called. It
// returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Assembly with pacing and remote calls can take minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.logger.Info("server starting",
		zap.String("addr", s.opts.Addr),
		zap.String("version", Version),
		zap.Bool("auth", s.opts.AuthToken != ""),
		zap.Bool("online", s.asm.Orchestrator().Online()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("server shutting down")
	return srv.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// decodeJSON reads a size-limited JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", errTooLarge, MaxRequestBodySize)
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return validateStruct(v)
}

var (
	errTooLarge = errors.New("request too large")
	errBadJSON  = errors.New("malformed JSON body")
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadJSON), errors.Is(err, errValidation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, deck.ErrSlideNotFound),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidID), errors.Is(err, deck.ErrInvalidSlideCount),
		errors.Is(err, deck.ErrSlideIndex), errors.Is(err, theme.ErrUnknownTheme),
		errors.Is(err, theme.ErrInvalidColor), errors.Is(err, model.ErrUnknownLayout),
		errors.Is(err, model.ErrUnknownTransition), errors.Is(err, model.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Server errors are logged and
// hidden from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		if status == http.StatusInternalServerError {
			writeError(w, status, "internal server error")
			return
		}
	}
	var verr *validationError
	if errors.As(err, &verr) {
		writeError(w, status, "invalid request", verr.details...)
		return
	}
	writeError(w, status, err.Error())
}
