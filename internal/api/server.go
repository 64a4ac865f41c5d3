// Package api serves the task backend over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"todoboard/pkg/imagehost"
	"todoboard/pkg/logger"
	"todoboard/pkg/task"
)

// Server is the HTTP API server.
type Server struct {
	tasks     task.Store
	images    imagehost.Uploader
	log       logger.Logger
	metrics   *metrics
	wasmDir   string
	maxUpload int64
	mux       *http.ServeMux
}

type Option func(*Server)

// WithWasmDir sets the directory the web UI is served from.
func WithWasmDir(dir string) Option {
	return func(s *Server) { s.wasmDir = dir }
}

// WithMaxUploadBytes caps the request body of image uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a new Server.
func New(tasks task.Store, images imagehost.Uploader, opts ...Option) *Server {
	if images == nil {
		images = imagehost.Disabled{}
	}
	s := &Server{
		tasks:     tasks,
		images:    images,
		log:       logger.Default(),
		metrics:   newMetrics(),
		wasmDir:   filepath.Join(".", "web"),
		maxUpload: 64 << 20,
		mux:       http.NewServeMux(),
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.metrics.instrument(pattern, h))
}

func (s *Server) routes() {
	// Tasks
	s.handle("GET /data", s.handleTaskList)
	s.handle("GET /todo/{id}", s.handleTaskGet)
	s.handle("POST /add", s.handleTaskCreate)
	s.handle("PUT /tasks/{id}", s.handleTaskUpdate)
	s.handle("PUT /todo/status", s.handleTaskStatus)
	s.handle("POST /delete", s.handleTaskDelete)

	// Images; older clients post to image_url
	s.handle("POST /todo/{id}/images", s.handleTaskImages)
	s.handle("POST /todo/{id}/image_url", s.handleTaskImages)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.handler())

	// Static files (Gio WASM UI)
	s.mux.Handle("GET /", http.FileServer(http.Dir(s.wasmDir)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Default().Error("write json", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError logs err and writes a 500 with its message.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}
