// Package service provides the business logic layer for the Reindeer Maze solver.
//
// The service package implements:
//   - Maze definition listing, loading and saving
//   - Solving stored mazes and ad-hoc layouts with per-request overrides
//   - A bounded, paginated history of recent solutions
//
// Core Interfaces:
//
// SolverService is the main service interface used by the HTTP, WebSocket
// and MCP transports. ConfigManager loads and stores maze definitions; the
// config package provides the file-backed implementation.
//
// Usage:
//
//	configMgr, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	solver := service.NewSolverService(configMgr, service.DefaultHistorySize)
//
//	result, err := solver.Solve(ctx, "small", service.SolveOptions{Render: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.MinCost, result.OptimalCells)
//
// History:
//
// Every solve, reachable or not, is recorded under a random UUID. Once the
// history is full the oldest solution is evicted and GetSolution reports
// ErrSolutionNotFound for it.
package service
