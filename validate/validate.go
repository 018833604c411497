// Command validate provides a small CLI that validates maze definitions in
// the ../configs directory (or the directory given as the first argument).
// It checks:
//   - JSON structure and required fields
//   - Grid consistency and allowed characters (#, ., S, E)
//   - Exactly one start (S) and one end (E)
//   - Move costs are not negative and the facing is a compass heading
//   - Reachability: the end can be reached from the start
//
// Bare grids in *.txt files get the same grid and reachability checks.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single maze definition file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.MazeConfig
	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		if err := json.Unmarshal(data, &config); err != nil {
			result.fail("Invalid JSON: %v", err)
			return result
		}
		if strings.TrimSpace(config.Name) == "" {
			result.fail("name is required")
		}
	} else {
		config.Name = strings.TrimSuffix(result.File, filepath.Ext(result.File))
		config.Layout = strings.Split(strings.TrimSpace(strings.ReplaceAll(string(data), "\r", "")), "\n")
	}

	starts, ends := lintLayout(&result, config.Layout)

	if starts != 1 {
		result.fail("Must have exactly 1 start (S), found %d", starts)
	}
	if ends != 1 {
		result.fail("Must have exactly 1 end (E), found %d", ends)
	}

	if config.StepCost < 0 {
		result.fail("step_cost must not be negative, got %d", config.StepCost)
	}
	if config.TurnCost < 0 {
		result.fail("turn_cost must not be negative, got %d", config.TurnCost)
	}
	if _, err := config.Direction(); err != nil {
		result.fail("facing: %v", err)
	}

	if result.Valid {
		reachability := validateReachability(&config)
		if !reachability.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, reachability.Errors...)
	}

	if result.Valid {
		costs := config.Costs()
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d", len(config.Layout), len([]rune(config.Layout[0])))
		result.info("Costs: step %d, turn %d", costs.Step, costs.Turn)
	}

	return result
}

// lintLayout reports every width and character problem and counts the start
// and end cells
func lintLayout(result *ValidationResult, layout []string) (starts, ends int) {
	if len(layout) == 0 {
		result.fail("Layout is empty")
		return 0, 0
	}

	width := -1
	for i, row := range layout {
		cells := []rune(row)
		if width == -1 {
			width = len(cells)
		} else if len(cells) != width {
			result.fail("Inconsistent grid width at row %d: expected %d, got %d", i+1, width, len(cells))
		}

		for j, char := range cells {
			cell, ok := maze.ParseCell(char)
			if !ok {
				result.fail("Invalid character '%c' at position [%d,%d]", char, i+1, j+1)
				continue
			}
			switch cell {
			case maze.Start:
				starts++
			case maze.End:
				ends++
			}
		}
	}
	return starts, ends
}

// validateReachability solves config and reports whether the end can be
// reached, with the optimal score when it can.
func validateReachability(config *engine.MazeConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	eng, err := engine.NewEngineFromConfig(config)
	if err != nil {
		result.fail("Cannot validate reachability: %v", err)
		return result
	}
	facing, err := config.Direction()
	if err != nil {
		result.fail("Cannot validate reachability: %v", err)
		return result
	}

	sol, err := eng.Solve(facing)
	switch {
	case errors.Is(err, engine.ErrNoPath):
		m := eng.Maze()
		result.fail("Reachability failure: end %s unreachable from start %s", m.End(), m.Start())
	case err != nil:
		result.fail("Reachability check failed: %v", err)
	default:
		result.info("Reachability: min cost %d, %d cells on optimal paths", sol.Cost, sol.CellCount())
	}
	return result
}

// main scans the config directory for definitions and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(configDir, pattern))
		if err != nil {
			fmt.Printf("Error finding config files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	if !report(files) {
		os.Exit(1)
	}
}

// report prints the result of every file and whether all of them passed
func report(files []string) bool {
	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All maze definitions are valid!")
	} else {
		fmt.Println("❌ Some maze definitions have errors")
	}
	return allValid
}
