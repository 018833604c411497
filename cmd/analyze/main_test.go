package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestAnalyzeConfig(t *testing.T) {
	cfg := &engine.MazeConfig{
		Name: "Bend",
		Layout: []string{
			"######",
			"#..E.#",
			"#S####",
			"######",
		},
	}

	a, err := analyzeConfig("bend", cfg)
	if err != nil {
		t.Fatalf("analyzeConfig failed: %v", err)
	}

	if a.ID != "bend" || a.Name != "Bend" {
		t.Errorf("Unexpected identity %s/%s", a.ID, a.Name)
	}
	if a.Rows != 4 || a.Cols != 6 {
		t.Errorf("Expected 4x6, got %dx%d", a.Rows, a.Cols)
	}
	if a.Facing != maze.East {
		t.Errorf("Expected default facing east, got %s", a.Facing)
	}
	if a.Open != 3 {
		t.Errorf("Expected 3 open cells, got %d", a.Open)
	}
	if a.Walls != 19 {
		t.Errorf("Expected 19 walls, got %d", a.Walls)
	}
	if a.DeadEnds != 1 {
		t.Errorf("Expected 1 dead end, got %d", a.DeadEnds)
	}
	// Distance 3 plus one turn
	if a.Bound != 1003 {
		t.Errorf("Expected lower bound 1003, got %d", a.Bound)
	}
	if !a.Reachable || a.MinCost != 2003 || a.Cells != 4 {
		t.Errorf("Expected reachable with cost 2003 and 4 cells, got %+v", a)
	}
}

func TestAnalyzeConfigUnreachable(t *testing.T) {
	cfg := &engine.MazeConfig{Name: "Walled", Layout: []string{"#####", "#S#E#", "#####"}}

	a, err := analyzeConfig("walled", cfg)
	if err != nil {
		t.Fatalf("analyzeConfig failed: %v", err)
	}
	if a.Reachable {
		t.Error("Expected unreachable maze")
	}

	var out bytes.Buffer
	printAnalysis(&out, a)
	if !strings.Contains(out.String(), "unreachable") {
		t.Errorf("Expected unreachable warning, got:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Min Cost") {
		t.Error("Unreachable maze should not report a cost")
	}
}

func TestAnalyzeConfigInvalid(t *testing.T) {
	if _, err := analyzeConfig("bad", &engine.MazeConfig{Name: "Bad", Layout: []string{"#S#"}}); err == nil {
		t.Error("Expected error for layout without an end")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hall.txt", "#####\n#S.E#\n#####\n")
	writeFile(t, dir, "cheap.json", `{"name": "Cheap Turns", "turn_cost": 10, "layout": ["####", "#.E#", "#S.#", "####"]}`)
	writeFile(t, dir, "broken.json", `{"name": `)

	var out bytes.Buffer
	if err := run(&out, dir); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		"=== Analyzing cheap.json ===",
		"Costs: step 1, turn 10, facing east",
		"✅ Min Cost: 12 (0 over bound)",
		"=== Analyzing hall.txt ===",
		"✅ Min Cost: 2 (0 over bound)",
		"Cells on optimal paths: 3",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
	if strings.Contains(text, "broken") {
		t.Error("Invalid definitions should be skipped")
	}
	if strings.Index(text, "cheap.json") > strings.Index(text, "hall.txt") {
		t.Error("Mazes should be listed in id order")
	}
}

func TestRunMissingDir(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}
