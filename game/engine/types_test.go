package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

func TestCostConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"DefaultStepCost", DefaultStepCost, 1},
		{"DefaultTurnCost", DefaultTurnCost, 1000},
		{"DefaultCosts.Step", DefaultCosts.Step, 1},
		{"DefaultCosts.Turn", DefaultCosts.Turn, 1000},
	}

	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("%s: expected %d, got %d", test.name, test.expected, test.actual)
		}
	}
	if DefaultFacing != maze.East {
		t.Errorf("Expected default facing east, got %s", DefaultFacing)
	}
}

func TestCostsValidate(t *testing.T) {
	if err := DefaultCosts.Validate(); err != nil {
		t.Errorf("Expected default costs to be valid, got: %v", err)
	}

	for _, c := range []Costs{{0, 1}, {1, 0}, {-3, 1000}} {
		err := c.Validate()
		if !errors.Is(err, ErrInvalidCosts) {
			t.Errorf("Expected ErrInvalidCosts for %+v, got: %v", c, err)
		}
	}
}

func TestMoveString(t *testing.T) {
	tests := []struct {
		move     Move
		expected string
	}{
		{Forward, "forward"},
		{TurnRight, "turn_right"},
		{TurnLeft, "turn_left"},
		{Move(7), "move(7)"},
	}

	for _, test := range tests {
		if test.move.String() != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, test.move.String())
		}
	}
}

func TestStateString(t *testing.T) {
	s := State{Pos: maze.Position{Row: 2, Col: 5}, Facing: maze.South}
	if got := s.String(); got != "(2,5) facing south" {
		t.Errorf("Unexpected state string: %s", got)
	}
}

func TestSolutionJSONMarshaling(t *testing.T) {
	sol := Solution{
		Start: State{Pos: maze.Position{Row: 1, Col: 1}, Facing: maze.East},
		Cost:  4,
		Cells: []maze.Position{{Row: 1, Col: 1}, {Row: 1, Col: 2}},
		Ends:  []State{{Pos: maze.Position{Row: 1, Col: 2}, Facing: maze.East}},
	}

	data, err := json.Marshal(sol)
	if err != nil {
		t.Fatalf("Failed to marshal solution: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal solution: %v", err)
	}
	for _, key := range []string{"start", "cost", "cells", "ends"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected key %q in %s", key, data)
		}
	}

	start := raw["start"].(map[string]interface{})
	if start["facing"] != "east" {
		t.Errorf("Expected facing to marshal by name, got %v", start["facing"])
	}

	if sol.CellCount() != 2 {
		t.Errorf("Expected 2 cells, got %d", sol.CellCount())
	}
}
