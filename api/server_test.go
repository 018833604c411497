package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/reindeermaze/game/config"
	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/service"
	wshub "github.com/wricardo/mcp-training/reindeermaze/transport/websocket"
)

func init() {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	SetLogger(quiet)
	wshub.SetLogger(quiet)
}

// MockSolverService implements service.SolverService for testing
type MockSolverService struct {
	ListMazesFunc   func(ctx context.Context) ([]*service.MazeInfo, error)
	LoadMazeFunc    func(ctx context.Context, name string) (*engine.MazeConfig, error)
	SaveMazeFunc    func(ctx context.Context, name string, cfg *engine.MazeConfig) error
	SolveFunc       func(ctx context.Context, name string, opts service.SolveOptions) (*service.SolveResult, error)
	SolveLayoutFunc func(ctx context.Context, layout []string, opts service.SolveOptions) (*service.SolveResult, error)
	GetSolutionFunc func(ctx context.Context, id string) (*service.SolveResult, error)
	GetHistoryFunc  func(ctx context.Context, opts service.HistoryOptions) (*service.HistoryResponse, error)
}

func (m *MockSolverService) ListMazes(ctx context.Context) ([]*service.MazeInfo, error) {
	if m.ListMazesFunc != nil {
		return m.ListMazesFunc(ctx)
	}
	return []*service.MazeInfo{}, nil
}

func (m *MockSolverService) LoadMaze(ctx context.Context, name string) (*engine.MazeConfig, error) {
	if m.LoadMazeFunc != nil {
		return m.LoadMazeFunc(ctx, name)
	}
	return &engine.MazeConfig{Name: name, Layout: []string{"S.E"}}, nil
}

func (m *MockSolverService) SaveMaze(ctx context.Context, name string, cfg *engine.MazeConfig) error {
	if m.SaveMazeFunc != nil {
		return m.SaveMazeFunc(ctx, name, cfg)
	}
	return nil
}

func (m *MockSolverService) Solve(ctx context.Context, name string, opts service.SolveOptions) (*service.SolveResult, error) {
	if m.SolveFunc != nil {
		return m.SolveFunc(ctx, name, opts)
	}
	return &service.SolveResult{ID: "sol-1", MazeName: name, Reachable: true, MinCost: 4, OptimalCells: 5}, nil
}

func (m *MockSolverService) SolveLayout(ctx context.Context, layout []string, opts service.SolveOptions) (*service.SolveResult, error) {
	if m.SolveLayoutFunc != nil {
		return m.SolveLayoutFunc(ctx, layout, opts)
	}
	return &service.SolveResult{ID: "sol-2", MazeName: service.InlineMazeName, Reachable: true}, nil
}

func (m *MockSolverService) GetSolution(ctx context.Context, id string) (*service.SolveResult, error) {
	if m.GetSolutionFunc != nil {
		return m.GetSolutionFunc(ctx, id)
	}
	return &service.SolveResult{ID: id}, nil
}

func (m *MockSolverService) GetHistory(ctx context.Context, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, opts)
	}
	return &service.HistoryResponse{Solutions: []*service.SolveResult{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rr.Body.String(), err)
	}
	return body["error"]
}

func TestHealth(t *testing.T) {
	s := NewServer(&MockSolverService{}, nil)

	rr := doRequest(t, s, "GET", "/api", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "healthy") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestListMazes(t *testing.T) {
	mock := &MockSolverService{
		ListMazesFunc: func(ctx context.Context) ([]*service.MazeInfo, error) {
			return []*service.MazeInfo{
				{MazeID: "small", Name: "Small", Rows: 15, Cols: 15},
				{MazeID: "large", Name: "Large", Rows: 17, Cols: 17},
			}, nil
		},
	}
	s := NewServer(mock, nil)

	rr := doRequest(t, s, "GET", "/api/mazes", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}

	var mazes []*service.MazeInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &mazes); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(mazes) != 2 || mazes[0].MazeID != "small" {
		t.Errorf("Unexpected mazes: %+v", mazes)
	}
}

func TestListMazesEmpty(t *testing.T) {
	mock := &MockSolverService{
		ListMazesFunc: func(ctx context.Context) ([]*service.MazeInfo, error) {
			return nil, nil
		},
	}
	s := NewServer(mock, nil)

	rr := doRequest(t, s, "GET", "/api/mazes", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", rr.Body.String())
	}
}

func TestGetMaze(t *testing.T) {
	mock := &MockSolverService{
		LoadMazeFunc: func(ctx context.Context, name string) (*engine.MazeConfig, error) {
			if name != "small" {
				return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, name)
			}
			return &engine.MazeConfig{Name: "Small", Layout: []string{"S.E"}}, nil
		},
	}
	s := NewServer(mock, nil)

	rr := doRequest(t, s, "GET", "/api/mazes/small", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var cfg engine.MazeConfig
	if err := json.Unmarshal(rr.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if cfg.Name != "Small" {
		t.Errorf("Expected Small, got %s", cfg.Name)
	}

	rr = doRequest(t, s, "GET", "/api/mazes/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "missing") {
		t.Errorf("Expected maze name in error, got %q", msg)
	}
}

func TestSaveMaze(t *testing.T) {
	var savedName string
	var savedConfig *engine.MazeConfig
	mock := &MockSolverService{
		SaveMazeFunc: func(ctx context.Context, name string, cfg *engine.MazeConfig) error {
			if len(cfg.Layout) == 0 {
				return fmt.Errorf("%w: layout required", config.ErrInvalidConfig)
			}
			savedName, savedConfig = name, cfg
			return nil
		},
	}
	s := NewServer(mock, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantID     string
	}{
		{
			name:       "id from name",
			body:       `{"name": "tiny", "layout": ["S.E"], "turn_cost": 5}`,
			wantStatus: http.StatusCreated,
			wantID:     "tiny",
		},
		{
			name:       "explicit id",
			body:       `{"maze_id": "tiny-2", "name": "Tiny Two", "layout": ["S.E"]}`,
			wantStatus: http.StatusCreated,
			wantID:     "tiny-2",
		},
		{
			name:       "missing name",
			body:       `{"layout": ["S.E"]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid definition",
			body:       `{"name": "empty"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"name": `,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			savedName = ""
			rr := doRequest(t, s, "POST", "/api/mazes", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantID != "" && savedName != tt.wantID {
				t.Errorf("Expected maze saved as %s, got %s", tt.wantID, savedName)
			}
		})
	}

	doRequest(t, s, "POST", "/api/mazes", `{"name": "tiny", "layout": ["S.E"], "turn_cost": 5}`)
	if savedConfig == nil || savedConfig.TurnCost != 5 {
		t.Errorf("Expected turn cost to reach the service, got %+v", savedConfig)
	}
}

func TestSolveMaze(t *testing.T) {
	var gotName string
	var gotOpts service.SolveOptions
	mock := &MockSolverService{
		SolveFunc: func(ctx context.Context, name string, opts service.SolveOptions) (*service.SolveResult, error) {
			gotName, gotOpts = name, opts
			return &service.SolveResult{ID: "sol-1", MazeName: name, Reachable: true, MinCost: 7036, OptimalCells: 45}, nil
		},
	}
	s := NewServer(mock, nil)

	rr := doRequest(t, s, "POST", "/api/mazes/small/solve", `{"facing": "north", "turn_cost": 10, "render": true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotName != "small" {
		t.Errorf("Expected maze small, got %s", gotName)
	}
	if gotOpts.Facing != "north" || gotOpts.TurnCost != 10 || !gotOpts.Render {
		t.Errorf("Options not forwarded: %+v", gotOpts)
	}

	var result service.SolveResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.MinCost != 7036 || result.OptimalCells != 45 {
		t.Errorf("Unexpected result: %+v", result)
	}

	// An empty body keeps the maze's own settings
	rr = doRequest(t, s, "POST", "/api/mazes/small/solve", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 without body, got %d", rr.Code)
	}
	if gotOpts != (service.SolveOptions{}) {
		t.Errorf("Expected zero options, got %+v", gotOpts)
	}
}

func TestSolveMazeErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
	}{
		{"not found", fmt.Errorf("wrapped: %w", config.ErrConfigNotFound), "", http.StatusNotFound},
		{"invalid options", fmt.Errorf("%w: bad facing", service.ErrInvalidRequest), "", http.StatusBadRequest},
		{"invalid stored maze", fmt.Errorf("%w: jagged", config.ErrInvalidConfig), "", http.StatusBadRequest},
		{"internal", errors.New("disk on fire"), "", http.StatusInternalServerError},
		{"malformed body", nil, `{"facing": 3`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockSolverService{
				SolveFunc: func(ctx context.Context, name string, opts service.SolveOptions) (*service.SolveResult, error) {
					return nil, tt.err
				},
			}
			s := NewServer(mock, nil)

			rr := doRequest(t, s, "POST", "/api/mazes/small/solve", tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if decodeError(t, rr) == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestSolveLayout(t *testing.T) {
	var gotLayout []string
	mock := &MockSolverService{
		SolveLayoutFunc: func(ctx context.Context, layout []string, opts service.SolveOptions) (*service.SolveResult, error) {
			gotLayout = layout
			if opts.StepCost != 2 {
				t.Errorf("Expected step cost 2, got %d", opts.StepCost)
			}
			return &service.SolveResult{ID: "sol-2", MazeName: service.InlineMazeName, Reachable: true, MinCost: 4}, nil
		},
	}
	s := NewServer(mock, nil)

	rr := doRequest(t, s, "POST", "/api/solve", `{"layout": ["#####", "#S.E#", "#####"], "step_cost": 2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(gotLayout) != 3 || gotLayout[1] != "#S.E#" {
		t.Errorf("Layout not forwarded: %v", gotLayout)
	}

	rr = doRequest(t, s, "POST", "/api/solve", `{"step_cost": 2}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without layout, got %d", rr.Code)
	}
}

func TestGetHistory(t *testing.T) {
	var gotOpts service.HistoryOptions
	mock := &MockSolverService{
		GetHistoryFunc: func(ctx context.Context, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			gotOpts = opts
			return &service.HistoryResponse{Solutions: []*service.SolveResult{{ID: "a"}}, TotalSolutions: 1, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
		},
	}
	s := NewServer(mock, nil)

	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=2&limit=5&order=asc", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		rr := doRequest(t, s, "GET", "/api/solutions"+tt.query, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200 for %q, got %d", tt.query, rr.Code)
		}
		if gotOpts != tt.want {
			t.Errorf("Query %q: expected %+v, got %+v", tt.query, tt.want, gotOpts)
		}
	}
}

func TestGetSolution(t *testing.T) {
	mock := &MockSolverService{
		GetSolutionFunc: func(ctx context.Context, id string) (*service.SolveResult, error) {
			if id != "known" {
				return nil, fmt.Errorf("%w: %s", service.ErrSolutionNotFound, id)
			}
			return &service.SolveResult{ID: id, MinCost: 11048}, nil
		},
	}
	s := NewServer(mock, nil)

	rr := doRequest(t, s, "GET", "/api/solutions/known", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "11048") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}

	rr = doRequest(t, s, "GET", "/api/solutions/unknown", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := NewServer(&MockSolverService{}, nil)

	tests := []struct {
		method string
		path   string
	}{
		{"DELETE", "/api/mazes/small"},
		{"POST", "/api/mazes/small"},
		{"GET", "/api/mazes/small/solve"},
		{"PUT", "/api/solutions/abc"},
		{"DELETE", "/api"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := doRequest(t, s, tt.method, tt.path, "")
			if rr.Code != http.StatusMethodNotAllowed {
				t.Fatalf("Expected 405, got %d", rr.Code)
			}
			if msg := decodeError(t, rr); !strings.Contains(msg, tt.method) {
				t.Errorf("Expected method in error, got %q", msg)
			}
		})
	}

	rr := doRequest(t, s, "GET", "/api/unknown", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", rr.Code)
	}
}

func TestWebSocketRequiresHubAndMaze(t *testing.T) {
	s := NewServer(&MockSolverService{}, nil)
	rr := doRequest(t, s, "GET", "/ws?maze=small", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without hub, got %d", rr.Code)
	}

	mock := &MockSolverService{
		LoadMazeFunc: func(ctx context.Context, name string) (*engine.MazeConfig, error) {
			return nil, config.ErrConfigNotFound
		},
	}
	s = NewServer(mock, wshub.NewHub())

	rr = doRequest(t, s, "GET", "/ws", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without maze, got %d", rr.Code)
	}
	rr = doRequest(t, s, "GET", "/ws?maze=missing", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown maze, got %d", rr.Code)
	}
}

func TestSolveIsPushedToSubscribers(t *testing.T) {
	hub := wshub.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	s := NewServer(&MockSolverService{}, hub)
	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?maze=small"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("small") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/api/mazes/small/solve", "application/json", bytes.NewBufferString(`{}`))
	if err != nil {
		t.Fatalf("Solve request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read pushed solution: %v", err)
	}

	var message wshub.Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}
	if message.Event != wshub.EventSolution || message.Solution == nil || message.Solution.ID != "sol-1" {
		t.Errorf("Unexpected message: %s", data)
	}
}

func TestSaveMazeIsPushedToSubscribers(t *testing.T) {
	hub := wshub.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	s := NewServer(&MockSolverService{}, hub)
	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?maze=hall"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("hall") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	body := `{"maze_id": "hall", "name": "Hall", "layout": ["#####", "#S.E#", "#####"]}`
	resp, err := http.Post(ts.URL+"/api/mazes", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("Save request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read pushed event: %v", err)
	}

	var message struct {
		Maze  string            `json:"maze"`
		Event string            `json:"event"`
		Data  engine.MazeConfig `json:"data"`
	}
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}
	if message.Maze != "hall" || message.Event != wshub.EventMazeSaved || message.Data.Name != "Hall" {
		t.Errorf("Unexpected message: %s", data)
	}
}
