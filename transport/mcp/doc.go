// Package mcp exposes the maze solver to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API served by package api, and the JSON answer is turned into text.
//
// MCP Tools:
//   - list_mazes: stored maze definitions with size, costs and heading
//   - get_maze: one definition including its grid
//   - solve_maze: solve a stored maze, with optional facing and cost overrides
//   - solve_layout: solve a grid passed inline
//   - solve_history: page through recent solutions
//   - maze_instructions: grid format and scoring rules
//
// Transport Modes:
//
// The same server is served over stdio for local agents or mounted on the
// HTTP router at /mcp.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
