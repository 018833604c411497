package maze

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyMaze        = errors.New("maze has no rows")
	ErrJaggedRows       = errors.New("maze rows differ in width")
	ErrInvalidCell      = errors.New("invalid maze character")
	ErrMissingStart     = errors.New("maze has no start cell")
	ErrDuplicateStart   = errors.New("maze has more than one start cell")
	ErrMissingEnd       = errors.New("maze has no end cell")
	ErrDuplicateEnd     = errors.New("maze has more than one end cell")
	ErrInvalidDirection = errors.New("invalid direction")
)

// Maze is an immutable rectangular grid with exactly one start and one end
type Maze struct {
	rows  int
	cols  int
	grid  [][]Cell
	start Position
	end   Position
}

// Parse builds a maze from one string per row
func Parse(layout []string) (*Maze, error) {
	if len(layout) == 0 {
		return nil, ErrEmptyMaze
	}

	width := -1
	grid := make([][]Cell, len(layout))
	var starts, ends []Position

	for i, line := range layout {
		chars := []rune(line)
		if width == -1 {
			width = len(chars)
			if width == 0 {
				return nil, fmt.Errorf("%w: row 1 is empty", ErrEmptyMaze)
			}
		} else if len(chars) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrJaggedRows, i+1, len(chars), width)
		}

		row := make([]Cell, width)
		for j, char := range chars {
			cell, ok := ParseCell(char)
			if !ok {
				return nil, fmt.Errorf("%w: %q at row %d, col %d", ErrInvalidCell, char, i+1, j+1)
			}
			switch cell {
			case Start:
				starts = append(starts, Position{Row: i, Col: j})
			case End:
				ends = append(ends, Position{Row: i, Col: j})
			}
			row[j] = cell
		}
		grid[i] = row
	}

	switch {
	case len(starts) == 0:
		return nil, ErrMissingStart
	case len(starts) > 1:
		return nil, fmt.Errorf("%w: found %d at %v", ErrDuplicateStart, len(starts), starts)
	case len(ends) == 0:
		return nil, ErrMissingEnd
	case len(ends) > 1:
		return nil, fmt.Errorf("%w: found %d at %v", ErrDuplicateEnd, len(ends), ends)
	}

	return &Maze{
		rows:  len(grid),
		cols:  width,
		grid:  grid,
		start: starts[0],
		end:   ends[0],
	}, nil
}

// ParseString builds a maze from newline separated text. Carriage returns
// and surrounding blank lines are ignored.
func ParseString(text string) (*Maze, error) {
	return Read(strings.NewReader(text))
}

// Read builds a maze from r, one row per line
func Read(r io.Reader) (*Maze, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read maze: %w", err)
	}
	return Parse(trimBlankLines(lines))
}

func trimBlankLines(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Rows returns the grid height
func (m *Maze) Rows() int {
	return m.rows
}

// Cols returns the grid width
func (m *Maze) Cols() int {
	return m.cols
}

// Start returns the position of the start cell
func (m *Maze) Start() Position {
	return m.start
}

// End returns the position of the end cell
func (m *Maze) End() Position {
	return m.end
}

// InBounds checks whether pos lies inside the grid
func (m *Maze) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < m.rows && pos.Col >= 0 && pos.Col < m.cols
}

// CellAt returns the cell at pos. The caller must check InBounds first.
func (m *Maze) CellAt(pos Position) Cell {
	return m.grid[pos.Row][pos.Col]
}

// IsWall reports whether pos holds a wall. Out of bounds counts as a wall.
func (m *Maze) IsWall(pos Position) bool {
	return !m.InBounds(pos) || m.grid[pos.Row][pos.Col] == Wall
}

// CountCellType counts the cells of the given kind
func (m *Maze) CountCellType(cell Cell) int {
	count := 0
	for _, row := range m.grid {
		for _, c := range row {
			if c == cell {
				count++
			}
		}
	}
	return count
}

// Layout returns a copy of the grid as one string per row
func (m *Maze) Layout() []string {
	layout := make([]string, m.rows)
	for i, row := range m.grid {
		var b strings.Builder
		b.Grow(m.cols)
		for _, c := range row {
			b.WriteRune(c.Rune())
		}
		layout[i] = b.String()
	}
	return layout
}

// String renders the grid, one newline terminated line per row
func (m *Maze) String() string {
	return m.Render(nil)
}

// Render draws the grid with every marked position replaced by PathMarker.
// Positions outside the grid are ignored.
func (m *Maze) Render(marked []Position) string {
	overlay := make(map[Position]bool, len(marked))
	for _, p := range marked {
		if m.InBounds(p) {
			overlay[p] = true
		}
	}

	var b strings.Builder
	b.Grow(m.rows * (m.cols + 1))
	for i, row := range m.grid {
		for j, c := range row {
			if overlay[Position{Row: i, Col: j}] {
				b.WriteRune(PathMarker)
			} else {
				b.WriteRune(c.Rune())
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
