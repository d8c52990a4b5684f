// Package server exposes the board over HTTP: a JSON API and the embedded
// drag-and-drop board page.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/nick-dorsch/taskboard/embed/board_assets"
	"github.com/nick-dorsch/taskboard/internal/board"
	"github.com/nick-dorsch/taskboard/internal/logging"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

type Server struct {
	board   *board.Controller
	logger  *log.Logger
	origins []string

	mu     sync.Mutex
	server *http.Server
	closed bool
}

type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithAllowedOrigins sets the CORS origins. The default allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

func NewServer(ctrl *board.Controller, opts ...Option) *Server {
	s := &Server{
		board:   ctrl,
		logger:  logging.Discard(),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full handler chain: routes, CORS and access logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/tasks", s.handleListTasks).Methods("GET")
	r.HandleFunc("/api/tasks", s.handleAddTask).Methods("POST")
	r.HandleFunc("/api/tasks/clear-done", s.handleClearDone).Methods("POST")
	r.HandleFunc("/api/tasks/{id}", s.handleRemoveTask).Methods("DELETE")
	r.HandleFunc("/api/tasks/{id}/status", s.handleSetStatus).Methods("PUT")
	r.HandleFunc("/api/tasks/{id}/title", s.handleSetTitle).Methods("PUT")
	r.HandleFunc("/api/tasks/{id}/toggle", s.handleToggle).Methods("POST")
	r.HandleFunc("/api/board", s.handleBoard).Methods("GET")
	r.HandleFunc("/api/drop", s.handleDrop).Methods("POST")

	// Static files
	r.PathPrefix("/").Handler(http.FileServer(http.FS(board_assets.Assets))).Methods("GET", "HEAD")

	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	origins := gorillahandlers.AllowedOrigins(s.origins)
	handler := gorillahandlers.CORS(headers, methods, origins)(r)

	access := s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()
	return gorillahandlers.LoggingHandler(access, handler)
}

// Start listens on addr until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown, including one that happened before Start.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("serving board", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// mutationResponse is returned by every command endpoint. SaveError is set
// when the change applied in memory but could not be persisted.
type mutationResponse struct {
	Tasks     []models.Task `json:"tasks"`
	SaveError string        `json:"save_error,omitempty"`
}

type addResponse struct {
	Task *models.Task `json:"task"`
	mutationResponse
}

type dropResponse struct {
	Kind    string        `json:"kind"`
	Command board.Command `json:"command"`
	mutationResponse
}

func newMutationResponse(tasks []models.Task, err error) mutationResponse {
	resp := mutationResponse{Tasks: tasks}
	if err != nil {
		resp.SaveError = err.Error()
	}
	return resp
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		s.respond(w, http.StatusOK, s.board.Tasks())
		return
	}
	status, ok := models.ParseStatus(raw)
	if !ok {
		http.Error(w, "invalid status: "+raw, http.StatusBadRequest)
		return
	}
	s.respond(w, http.StatusOK, s.board.View(status))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.board.Snapshot())
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	task, tasks, err := s.board.Add(r.Context(), req.Title)
	code := http.StatusOK
	if task != nil {
		code = http.StatusCreated
	}
	s.respond(w, code, addResponse{Task: task, mutationResponse: newMutationResponse(tasks, err)})
}

func (s *Server) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	_, tasks, err := s.board.Remove(r.Context(), mux.Vars(r)["id"])
	s.respond(w, http.StatusOK, newMutationResponse(tasks, err))
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	status, _ := models.ParseStatus(req.Status)
	tasks, err := s.board.SetStatus(r.Context(), mux.Vars(r)["id"], status)
	if errors.Is(err, board.ErrInvalidStatus) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.respond(w, http.StatusOK, newMutationResponse(tasks, err))
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	tasks, err := s.board.SetTitle(r.Context(), mux.Vars(r)["id"], req.Title)
	s.respond(w, http.StatusOK, newMutationResponse(tasks, err))
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.board.Toggle(r.Context(), mux.Vars(r)["id"])
	s.respond(w, http.StatusOK, newMutationResponse(tasks, err))
}

func (s *Server) handleClearDone(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.board.ClearDone(r.Context())
	s.respond(w, http.StatusOK, newMutationResponse(tasks, err))
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DraggedID string  `json:"dragged_id"`
		Target    *string `json:"target"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	cmd, tasks, err := s.board.Drop(r.Context(), req.DraggedID, req.Target)
	s.respond(w, http.StatusOK, dropResponse{
		Kind:             cmd.Kind.String(),
		Command:          cmd,
		mutationResponse: newMutationResponse(tasks, err),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}
