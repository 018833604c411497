// Package config provides maze definition management for the Reindeer Maze solver.
//
// The config package handles:
//   - Loading maze definitions from JSON files or bare grid text files
//   - Definition validation through the engine package
//   - Default maze selection
//   - Definition discovery and listing
//
// Definition Format:
//
// A JSON definition names the maze and carries its grid as one string per
// row, with optional step_cost, turn_cost and facing overrides:
//
//	{
//	  "name": "corridor",
//	  "layout": ["#######", "#S...E#", "#######"],
//	  "turn_cost": 1000,
//	  "facing": "east"
//	}
//
// A .txt file holds only the grid; its file name becomes the maze name and
// the default costs and facing apply. When both name.json and name.txt
// exist, the JSON definition wins.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	small, err := manager.LoadConfig("small")
//	defaultMaze := manager.GetDefault()
//	mazes, err := manager.ListConfigs()
package config
