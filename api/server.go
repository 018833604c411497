package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/reindeermaze/game/config"
	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/service"
	"github.com/wricardo/mcp-training/reindeermaze/transport/websocket"
)

// maxBodyBytes bounds request bodies; the largest payload is an inline layout
const maxBodyBytes = 1 << 20

var log = logrus.New()

// SetLogger replaces the package logger
func SetLogger(l *logrus.Logger) {
	log = l
}

// Server represents the REST API server
type Server struct {
	service service.SolverService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case solves
// are not pushed and /ws is unavailable.
func NewServer(solver service.SolverService, hub *websocket.Hub) *Server {
	s := &Server{
		service: solver,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes. Routes sit on the root router so
// a known path with the wrong method answers 405 instead of 404.
func (s *Server) setupRoutes() {
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	s.router.HandleFunc("/api", s.handleHealth).Methods("GET")

	// Maze definitions
	s.router.HandleFunc("/api/mazes", s.handleListMazes).Methods("GET")
	s.router.HandleFunc("/api/mazes", s.handleSaveMaze).Methods("POST")
	s.router.HandleFunc("/api/mazes/{name}", s.handleGetMaze).Methods("GET")

	// Solving
	s.router.HandleFunc("/api/mazes/{name}/solve", s.handleSolveMaze).Methods("POST")
	s.router.HandleFunc("/api/solve", s.handleSolveLayout).Methods("POST")

	// History
	s.router.HandleFunc("/api/solutions", s.handleGetHistory).Methods("GET")
	s.router.HandleFunc("/api/solutions/{id}", s.handleGetSolution).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrConfigNotFound), errors.Is(err, service.ErrSolutionNotFound):
		return http.StatusNotFound
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Maze Handlers

func (s *Server) handleListMazes(w http.ResponseWriter, r *http.Request) {
	mazes, err := s.service.ListMazes(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	if mazes == nil {
		mazes = []*service.MazeInfo{}
	}

	respondJSON(w, http.StatusOK, mazes)
}

func (s *Server) handleGetMaze(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	cfg, err := s.service.LoadMaze(r.Context(), name)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusNotFound
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSaveMaze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		engine.MazeConfig
		MazeID string `json:"maze_id,omitempty"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Maze name is required")
		return
	}
	id := req.MazeID
	if id == "" {
		id = req.Name
	}

	if err := s.service.SaveMaze(r.Context(), id, &req.MazeConfig); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save maze: %v", err))
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(id, websocket.EventMazeSaved, &req.MazeConfig)
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Maze saved successfully",
		"maze_id": id,
	})
}

// Solve Handlers

func (s *Server) handleSolveMaze(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var opts service.SolveOptions
	if err := decodeBody(w, r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Solve(r.Context(), name, opts)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.publish(result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSolveLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.SolveOptions
		Layout []string `json:"layout"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Layout) == 0 {
		respondError(w, http.StatusBadRequest, "Layout is required")
		return
	}

	result, err := s.service.SolveLayout(r.Context(), req.Layout, req.SolveOptions)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.publish(result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) publish(result *service.SolveResult) {
	if s.hub != nil {
		s.hub.BroadcastSolution(result)
	}

	log.WithFields(logrus.Fields{
		"maze":      result.MazeName,
		"id":        result.ID,
		"reachable": result.Reachable,
		"cost":      result.MinCost,
		"cells":     result.OptimalCells,
	}).Debug("solve served")
}

// History Handlers

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetHistory(r.Context(), opts)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.service.GetSolution(r.Context(), id)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}

	name := r.URL.Query().Get("maze")
	if name == "" {
		http.Error(w, "maze parameter required", http.StatusBadRequest)
		return
	}

	if name != service.InlineMazeName {
		if _, err := s.service.LoadMaze(r.Context(), name); err != nil {
			http.Error(w, "Unknown maze", http.StatusNotFound)
			return
		}
	}

	s.hub.ServeWS(w, r, name)
}
