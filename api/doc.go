// Package api provides the HTTP REST API for the maze solver.
//
// Endpoints:
//
// Health:
//   - GET /api - Liveness check
//
// Maze definitions:
//   - GET /api/mazes - List stored mazes
//   - POST /api/mazes - Store a maze definition (body: MazeConfig plus optional maze_id)
//   - GET /api/mazes/{name} - Get one definition
//
// Solving:
//   - POST /api/mazes/{name}/solve - Solve a stored maze
//   - POST /api/solve - Solve an inline layout
//
// Both solve endpoints accept optional overrides:
//
//	{
//	  "facing": "north|east|south|west",
//	  "step_cost": 1,
//	  "turn_cost": 1000,
//	  "render": true,
//	  "layout": ["#####", "#S.E#", "#####"] // POST /api/solve only
//	}
//
// History:
//   - GET /api/solutions?page=1&limit=20&order=desc - Recent solutions
//   - GET /api/solutions/{id} - One solution by id
//
// WebSocket:
//   - GET /ws?maze={name} - Push every solve of that maze ("inline" for layouts)
//
// Error Handling:
//
// Errors are returned as JSON with a matching status code: 404 for unknown
// mazes and solutions, 400 for malformed grids, facings or costs.
//
//	{"error": "error message"}
package api
