// Package api provides the RESTful HTTP API server for the character template generator.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the HTTP interface layer of the system. It exposes template
// rendering, token counting and the writing reference over JSON endpoints, with a
// middleware stack, standardized responses and OpenAPI documentation.
//
// KEY RESPONSIBILITIES:
// - Expose render, count, skeleton and reference operations via HTTP endpoints
// - Apply the middleware stack (request IDs, logging, metrics, CORS, panic recovery)
// - Validate request parameters before they reach the command layer
// - Serve rendered templates as plain-text downloads
// - Provide OpenAPI 3.0 documentation with Swagger UI
//
// INTEGRATION POINTS:
// - internal/commands/types.go: every endpoint executes a command through CommandExecutor
// - internal/errors/handlers.go: APIServer.errorHandler (HTTPErrorHandler) formats error responses
// - internal/validation/middleware.go: routes declare their schema through RequestValidator
// - internal/metrics/metrics.go: request latency is recorded per route pattern
// - internal/api/openapi.go: self-documenting API at /api/docs and /api/openapi.json
//
// MIDDLEWARE STACK:
// - Request ID: X-Request-ID is propagated or generated
// - Logging: one zap entry per request with status and latency
// - Metrics: latency histogram labelled by route and status
// - CORS: cross-origin headers for browser clients
// - Content-Type: JSON by default, handlers may override
// - Error Handling: panic recovery with the standard error envelope
//
// ENDPOINT STRUCTURE:
// - /api/v1/render: render a template for a format
// - /api/v1/tokens: count tokens in arbitrary text
// - /api/v1/formats: list formats and their field trees
// - /api/v1/reference: trait lists, appearance prompts and guides
// - /api/v1/download: return template text as a .txt attachment
// - /api/v1/health: service status
// - /metrics: Prometheus metrics
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dpshade/character-template/internal/commands"
	"github.com/dpshade/character-template/internal/config"
	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/metrics"
	"github.com/dpshade/character-template/internal/service"
	"github.com/dpshade/character-template/internal/validation"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// APIServer provides the HTTP API with middleware support
type APIServer struct {
	service      *service.Service
	executor     *commands.CommandExecutor
	errorHandler *errors.HTTPErrorHandler
	validator    *validation.RequestValidator
	log          *zap.Logger
	cfg          config.ServerConfig
	server       *http.Server
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *service.Service, cfg config.ServerConfig) *APIServer {
	log := svc.Logger().Named("api")
	includeDetails := !cfg.HideErrorDetails

	return &APIServer{
		service:      svc,
		executor:     commands.NewCommandExecutor(svc),
		errorHandler: errors.NewHTTPErrorHandler(log, includeDetails),
		validator:    validation.NewRequestValidator(log, includeDetails, map[string]string{"code": "format"}),
		log:          log,
		cfg:          cfg,
	}
}

// Handler builds the routed and middleware-wrapped handler
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "POST /api/v1/render", "render_template", s.handleRender)
	s.route(mux, "POST /api/v1/tokens", "count_tokens", s.handleCountTokens)
	s.route(mux, "GET /api/v1/formats", "", s.handleFormats)
	s.route(mux, "GET /api/v1/formats/{code}/skeleton", "get_skeleton", s.handleSkeleton)
	s.route(mux, "GET /api/v1/reference", "get_reference", s.handleReference)
	s.route(mux, "GET /api/v1/reference/traits", "search_traits", s.handleTraits)
	s.route(mux, "GET /api/v1/reference/appearance", "", s.handleAppearance)
	s.route(mux, "POST /api/v1/download", "export_template", s.handleDownload)
	s.route(mux, "GET /api/v1/health", "", s.handleHealth)

	// OpenAPI documentation
	s.route(mux, "GET /api/docs", "", s.handleOpenAPI)
	s.route(mux, "GET /api/openapi.json", "", s.handleOpenAPISpec)

	mux.Handle("GET /metrics", metrics.Handler())
	s.route(mux, "/", "", s.handleNotFound)

	return mux
}

// route registers handler under pattern, validating against schema when one is named
func (s *APIServer) route(mux *http.ServeMux, pattern, schema string, handler http.HandlerFunc) {
	if schema != "" {
		handler = s.validator.ValidateRequest(schema)(handler)
	}
	mux.HandleFunc(pattern, s.withMiddleware(pattern, handler))
}

// newHTTPServer builds the http.Server. It must exist before serving starts so
// Stop never observes a nil server.
func (s *APIServer) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Start begins serving HTTP requests and blocks until the server is stopped
func (s *APIServer) Start() error {
	if s.server == nil {
		s.server = s.newHTTPServer()
	}
	return s.serve()
}

func (s *APIServer) serve() error {
	s.log.Info("API server starting",
		zap.String("url", fmt.Sprintf("http://%s", s.cfg.Addr())),
		zap.String("docs", fmt.Sprintf("http://%s/api/docs", s.cfg.Addr())),
		zap.String("token_strategy", string(s.service.Strategy())),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, errors.ErrCodeInternalError, "API server failed").
			WithContext("addr", s.cfg.Addr())
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down within the configured timeout
func (s *APIServer) Run(ctx context.Context) error {
	s.server = s.newHTTPServer()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.serve()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("API server shutting down", zap.Duration("timeout", timeout))
	if err := s.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Stop gracefully shuts down the server
func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// withMiddleware applies middleware to HTTP handlers
func (s *APIServer) withMiddleware(route string, handler http.HandlerFunc) http.HandlerFunc {
	return s.requestIDMiddleware(
		s.loggingMiddleware(route,
			s.corsMiddleware(
				s.contentTypeMiddleware(
					s.errorMiddleware(handler),
				),
			),
		),
	)
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// requestIDMiddleware propagates or generates the request ID
func (s *APIServer) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(RequestIDHeader, requestID)
		}
		w.Header().Set(RequestIDHeader, requestID)
		next(w, r)
	}
}

// loggingMiddleware logs HTTP requests and records their latency
func (s *APIServer) loggingMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		latency := time.Since(start)
		metrics.ObserveRequest(route, fmt.Sprintf("%d", rec.status), latency)

		fields := []zap.Field{
			zap.Int("status", rec.status),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Duration("latency", latency),
			zap.String("request_id", r.Header.Get(RequestIDHeader)),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			s.log.Error("Server error", fields...)
		case rec.status >= http.StatusBadRequest:
			s.log.Warn("Client error", fields...)
		default:
			s.log.Info("Request completed", fields...)
		}
	}
}

// corsMiddleware handles CORS headers
func (s *APIServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader+", Content-Disposition")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// contentTypeMiddleware sets default content type
func (s *APIServer) contentTypeMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next(w, r)
	}
}

// errorMiddleware handles panics
func (s *APIServer) errorMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("Panic in handler", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				s.errorHandler.WriteHTTPError(w, errors.InternalError("Internal server error"))
			}
		}()
		next(w, r)
	}
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// writeResponse writes a standardized JSON response
func (s *APIServer) writeResponse(w http.ResponseWriter, data interface{}, message string, statusCode int) {
	response := APIResponse{
		Success:   statusCode < 400,
		Data:      data,
		Message:   message,
		Timestamp: time.Now(),
	}

	w.WriteHeader(statusCode)

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		json.NewEncoder(w).Encode(response)
		return
	}

	w.Write(jsonData)
}

// writeError writes an error response using the error handler
func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

// execute runs a command with the validated request parameters
func (s *APIServer) execute(r *http.Request, command string) (*commands.CommandResult, error) {
	result, err := s.executor.Execute(r.Context(), command, validation.DataFromContext(r.Context()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCommandFailed, "Request cancelled")
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errors.InternalError("Command failed")
	}
	return result, nil
}

// executeAndWrite runs a command and writes its result envelope
func (s *APIServer) executeAndWrite(w http.ResponseWriter, r *http.Request, command string) {
	result, err := s.execute(r, command)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, result.Data, result.Message, http.StatusOK)
}

// handleRender handles POST /api/v1/render
func (s *APIServer) handleRender(w http.ResponseWriter, r *http.Request) {
	s.executeAndWrite(w, r, "render")
}

// handleCountTokens handles POST /api/v1/tokens
func (s *APIServer) handleCountTokens(w http.ResponseWriter, r *http.Request) {
	s.executeAndWrite(w, r, "count")
}

// handleFormats handles GET /api/v1/formats
func (s *APIServer) handleFormats(w http.ResponseWriter, r *http.Request) {
	s.executeAndWrite(w, r, "formats")
}

// handleSkeleton handles GET /api/v1/formats/{code}/skeleton
func (s *APIServer) handleSkeleton(w http.ResponseWriter, r *http.Request) {
	s.executeAndWrite(w, r, "skeleton")
}

// handleReference handles GET /api/v1/reference?section=
func (s *APIServer) handleReference(w http.ResponseWriter, r *http.Request) {
	s.executeAndWrite(w, r, "reference")
}

// handleTraits handles GET /api/v1/reference/traits. With q or query it searches,
// otherwise it lists the trait vocabularies.
func (s *APIServer) handleTraits(w http.ResponseWriter, r *http.Request) {
	params := validation.DataFromContext(r.Context())
	if q := r.URL.Query().Get("q"); q != "" {
		params["query"] = validation.SanitizeString(q)
	}

	command := "traits"
	if _, ok := params["query"]; ok {
		command = "search-traits"
	}

	r = r.WithContext(validation.WithData(r.Context(), params))
	s.executeAndWrite(w, r, command)
}

// handleAppearance handles GET /api/v1/reference/appearance
func (s *APIServer) handleAppearance(w http.ResponseWriter, r *http.Request) {
	s.executeAndWrite(w, r, "appearance")
}

// handleDownload handles POST /api/v1/download. The text is returned as a
// plain-text attachment named after the character; nothing is written server side.
func (s *APIServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	params := validation.DataFromContext(r.Context())
	text, _ := params["text"].(string)
	name, _ := params["name"].(string)

	filename := s.service.SuggestedFilename(name)
	metrics.ObserveExport("download", nil)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// handleHealth handles GET /api/v1/health
func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.executeAndWrite(w, r, "health")
}

// handleNotFound answers unknown paths with the error envelope
func (s *APIServer) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, errors.NotFoundError(fmt.Sprintf("Endpoint '%s %s'", r.Method, r.URL.Path)))
}
