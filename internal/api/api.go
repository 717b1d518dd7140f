// Package api implements the HTTP API server for revlog.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/model"
)

// Server serves one review log file over HTTP.
type Server struct {
	addr   string
	path   string
	format codec.Format
	watch  bool

	mu     sync.Mutex
	review *model.Review

	mux    *http.ServeMux
	server *http.Server

	subMu sync.Mutex
	subs  map[*websocket.Conn]bool
}

// New creates an API server backed by the review log at path. Appends
// are persisted in the file's own encoding.
func New(addr, path string, watch bool) (*Server, error) {
	review, format, err := codec.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading review: %w", err)
	}

	s := &Server{
		addr:   addr,
		path:   path,
		format: format,
		watch:  watch,
		review: review,
		subs:   make(map[*websocket.Conn]bool),
	}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/review", s.handleReview)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/activities", s.handleAppend)
	s.mux.HandleFunc("POST /api/merge", s.handleMerge)
	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
}

// ListenAndServe starts the HTTP server. When watching is enabled,
// external edits to the backing file are reloaded and pushed to
// WebSocket clients.
func (s *Server) ListenAndServe() error {
	if s.watch {
		if err := s.startWatcher(); err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
	}
	log.Printf("revlog API server listening on %s (serving %s)", s.addr, s.path)
	return s.server.ListenAndServe()
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// snapshot returns a copy of the pointer under the lock. Handlers must
// treat the review as read-only; mutations go through withReview.
func (s *Server) snapshot() *model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.review
}

// withReview runs fn against the current review under the lock and, if
// fn succeeds, persists the result to the backing file.
func (s *Server) withReview(fn func(r *model.Review) (*model.Review, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(s.review)
	if err != nil {
		return err
	}
	if err := codec.Save(s.path, updated, s.format); err != nil {
		return fmt.Errorf("persisting review: %w", err)
	}
	s.review = updated
	return nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
