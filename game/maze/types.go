package maze

import (
	"fmt"
	"strings"
)

// Cell represents the content of a single grid cell
type Cell byte

const (
	Open  Cell = '.'
	Wall  Cell = '#'
	Start Cell = 'S'
	End   Cell = 'E'

	// PathMarker is drawn over cells highlighted by Render
	PathMarker = 'O'
)

// ParseCell maps a layout character to its cell kind
func ParseCell(r rune) (Cell, bool) {
	switch r {
	case '.':
		return Open, true
	case '#':
		return Wall, true
	case 'S':
		return Start, true
	case 'E':
		return End, true
	}
	return 0, false
}

// Rune returns the layout character for the cell
func (c Cell) Rune() rune {
	return rune(c)
}

func (c Cell) String() string {
	switch c {
	case Open:
		return "open"
	case Wall:
		return "wall"
	case Start:
		return "start"
	case End:
		return "end"
	}
	return fmt.Sprintf("cell(%q)", rune(c))
}

// Position represents row,col coordinates in the grid
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Step returns the neighbouring position one cell away in direction d
func (p Position) Step(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction is one of the four compass headings.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists every heading in clockwise order starting at North.
var Directions = [...]Direction{North, East, South, West}

var (
	deltas = [...][2]int{
		North: {-1, 0},
		East:  {0, 1},
		South: {1, 0},
		West:  {0, -1},
	}
	rightOf = [...]Direction{
		North: East,
		East:  South,
		South: West,
		West:  North,
	}
	leftOf = [...]Direction{
		North: West,
		East:  North,
		South: East,
		West:  South,
	}
	directionNames = [...]string{
		North: "north",
		East:  "east",
		South: "south",
		West:  "west",
	}
)

// Valid reports whether d is one of the four headings
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

// Delta returns the (row, col) unit vector of the heading
func (d Direction) Delta() (int, int) {
	v := deltas[d]
	return v[0], v[1]
}

// Right returns the heading after a 90° clockwise turn
func (d Direction) Right() Direction {
	return rightOf[d]
}

// Left returns the heading after a 90° counter-clockwise turn
func (d Direction) Left() Direction {
	return leftOf[d]
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection accepts compass names, their initials and the
// up/right/down/left screen aliases, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n", "up":
		return North, nil
	case "east", "e", "right":
		return East, nil
	case "south", "s", "down":
		return South, nil
	case "west", "w", "left":
		return West, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// MarshalText encodes the direction by name
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText decodes any spelling accepted by ParseDirection
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
