package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Reindeer Maze Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Reindeer Maze Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A reindeer starts on S facing east and must reach E. Moving one cell forward
costs 1 point, turning 90 degrees in place costs 1000. The solver reports the
lowest possible score and how many cells lie on at least one best path.

AVAILABLE TOOLS:
- list_mazes: List stored maze definitions
- get_maze: Show a stored maze grid and its settings
- solve_maze: Solve a stored maze, optionally overriding facing and costs
- solve_layout: Solve a grid you provide
- solve_history: Page through recent solutions
- maze_instructions: Grid format and scoring rules`),
	)

	c.registerTools()
}

var solveOptionProperties = map[string]interface{}{
	"facing": map[string]interface{}{
		"type":        "string",
		"enum":        []string{"north", "east", "south", "west"},
		"description": "Starting heading (default: the maze's own, usually east)",
	},
	"step_cost": map[string]interface{}{
		"type":        "integer",
		"description": "Cost of one forward step (default 1)",
	},
	"turn_cost": map[string]interface{}{
		"type":        "integer",
		"description": "Cost of one quarter turn (default 1000)",
	},
	"render": map[string]interface{}{
		"type":        "boolean",
		"description": "Include the grid with optimal cells marked O",
	},
}

func withSolveOptions(props map[string]interface{}) map[string]interface{} {
	for k, v := range solveOptionProperties {
		props[k] = v
	}
	return props
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_mazes",
		Description: "List the stored maze definitions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMazes)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_maze",
		Description: "Show a stored maze grid with its costs and starting heading",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"maze": map[string]interface{}{
					"type":        "string",
					"description": "Maze id from list_mazes",
				},
			},
			Required: []string{"maze"},
		},
	}, c.handleGetMaze)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_maze",
		Description: "Solve a stored maze: minimum score and number of cells on any best path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withSolveOptions(map[string]interface{}{
				"maze": map[string]interface{}{
					"type":        "string",
					"description": "Maze id from list_mazes",
				},
			}),
			Required: []string{"maze"},
		},
	}, c.handleSolveMaze)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_layout",
		Description: "Solve a maze grid given inline, one string per row",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withSolveOptions(map[string]interface{}{
				"layout": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Grid rows using # . S E",
				},
			}),
			Required: []string{"layout"},
		},
	}, c.handleSolveLayout)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_history",
		Description: "Page through recent solutions, newest first by default",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Solutions per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order by solve time",
				},
			},
		},
	}, c.handleSolveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "maze_instructions",
		Description: "Explain the grid format and scoring rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// solveOptions reads the shared solve arguments. JSON numbers arrive as float64.
func solveOptions(args map[string]interface{}) service.SolveOptions {
	var opts service.SolveOptions
	opts.Facing, _ = args["facing"].(string)
	if v, ok := args["step_cost"].(float64); ok {
		opts.StepCost = int(v)
	}
	if v, ok := args["turn_cost"].(float64); ok {
		opts.TurnCost = int(v)
	}
	opts.Render, _ = args["render"].(bool)
	return opts
}

// layoutArg accepts the grid as an array of rows or as one newline separated string
func layoutArg(v interface{}) []string {
	switch layout := v.(type) {
	case []interface{}:
		rows := make([]string, 0, len(layout))
		for _, row := range layout {
			if s, ok := row.(string); ok {
				rows = append(rows, s)
			}
		}
		return rows
	case []string:
		return layout
	case string:
		return strings.Split(strings.TrimSpace(strings.ReplaceAll(layout, "\r", "")), "\n")
	}
	return nil
}

// Tool handlers

func (c *Client) handleListMazes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var mazes []service.MazeInfo
	if err := c.apiCall(ctx, "GET", "/api/mazes", nil, &mazes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(mazes) == 0 {
		return mcp.NewToolResultText("No mazes stored. Use solve_layout to solve a grid directly."), nil
	}

	var b strings.Builder
	b.WriteString("Available Mazes:\n\n")
	for _, m := range mazes {
		fmt.Fprintf(&b, "• %s (%s)\n", m.MazeID, m.Name)
		if m.Description != "" {
			fmt.Fprintf(&b, "  %s\n", m.Description)
		}
		fmt.Fprintf(&b, "  Grid: %dx%d, Step: %d, Turn: %d, Facing: %s\n\n", m.Rows, m.Cols, m.StepCost, m.TurnCost, m.Facing)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name, _ := args["maze"].(string)
	if name == "" {
		return mcp.NewToolResultError("maze is required"), nil
	}

	var cfg engine.MazeConfig
	if err := c.apiCall(ctx, "GET", "/api/mazes/"+url.PathEscape(name), nil, &cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMaze(name, &cfg)), nil
}

func (c *Client) handleSolveMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name, _ := args["maze"].(string)
	if name == "" {
		return mcp.NewToolResultError("maze is required"), nil
	}

	var result service.SolveResult
	path := fmt.Sprintf("/api/mazes/%s/solve", url.PathEscape(name))
	if err := c.apiCall(ctx, "POST", path, solveOptions(args), &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleSolveLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	layout := layoutArg(args["layout"])
	if len(layout) == 0 {
		return mcp.NewToolResultError("layout is required"), nil
	}

	body := struct {
		service.SolveOptions
		Layout []string `json:"layout"`
	}{solveOptions(args), layout}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", "/api/solve", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleSolveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := "/api/solutions"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Reindeer Maze - Instructions

GRID:
• # wall, . open floor, S start (exactly one), E end (exactly one)
• Rows must all have the same width
• Stepping off the grid is never allowed, even without a wall border

MOVES:
• Forward: move one cell in the current heading (cost: step_cost, default 1)
• Turn left / turn right: rotate 90 degrees in place (cost: turn_cost, default 1000)
• The reindeer starts on S facing east unless told otherwise
• E may be reached in any heading

RESULTS:
• min_cost: the lowest total score from S to E
• optimal_cells: number of distinct cells (S and E included) lying on at
  least one path that achieves min_cost
• reachable: false when walls cut E off from S

TIPS:
• Use render=true to see the best-path cells marked O
• Turns dominate the score; a long straight detour usually beats a turn
• solve_history keeps the most recent solutions with their ids`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatMaze(id string, cfg *engine.MazeConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Maze: %s (%s)\n", id, cfg.Name)
	if cfg.Description != "" {
		fmt.Fprintf(&b, "%s\n", cfg.Description)
	}
	costs := cfg.Costs()
	facing := engine.DefaultFacing.String()
	if d, err := cfg.Direction(); err == nil {
		facing = d.String()
	}
	fmt.Fprintf(&b, "Step: %d, Turn: %d, Facing: %s\n\n", costs.Step, costs.Turn, facing)
	for _, row := range cfg.Layout {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatSolveResult(r *service.SolveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Maze: %s (%dx%d)\n", r.MazeName, r.Rows, r.Cols)
	fmt.Fprintf(&b, "Start: %s facing %s, End: %s\n", r.Start, r.Facing, r.End)
	fmt.Fprintf(&b, "Costs: step %d, turn %d\n", r.StepCost, r.TurnCost)
	if !r.Reachable {
		b.WriteString("✗ No path: the end cell cannot be reached\n")
	} else {
		fmt.Fprintf(&b, "✓ Minimum score: %d\n", r.MinCost)
		fmt.Fprintf(&b, "Cells on an optimal path: %d\n", r.OptimalCells)
	}
	if r.Rendered != "" {
		b.WriteString("\n")
		b.WriteString(r.Rendered)
	}
	fmt.Fprintf(&b, "\nSolution id: %s\n", r.ID)
	return b.String()
}

func formatHistory(h *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solutions (page %d/%d, %d total):\n\n", h.Page, h.TotalPages, h.TotalSolutions)
	if len(h.Solutions) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, s := range h.Solutions {
		outcome := "no path"
		if s.Reachable {
			outcome = fmt.Sprintf("cost %d, %d cells", s.MinCost, s.OptimalCells)
		}
		fmt.Fprintf(&b, "• %s  %s  %s  %s\n", s.SolvedAt.Format(time.RFC3339), s.MazeName, outcome, s.ID)
	}
	if h.HasNext {
		fmt.Fprintf(&b, "\nMore: page %d\n", h.Page+1)
	}
	return b.String()
}
