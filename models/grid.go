package models

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid is returned when grid geometry is out of range
var ErrInvalidGrid = errors.New("invalid grid config")

// GridConfig holds the geometry shared by every layer of a map
type GridConfig struct {
	CellWidth  float64 `json:"cellWidth"`
	CellHeight float64 `json:"cellHeight"`
	Columns    int     `json:"columns"`
	Rows       int     `json:"rows"`
	XMorph     float64 `json:"xMorph"` // perspective skew, -1..1
	YMorph     float64 `json:"yMorph"`
}

// DefaultGridConfig is the geometry given to freshly created maps
func DefaultGridConfig() GridConfig {
	return GridConfig{
		CellWidth:  50,
		CellHeight: 50,
		Columns:    30,
		Rows:       30,
	}
}

// Validate checks that dimensions are positive and morph factors are in range
func (g GridConfig) Validate() error {
	switch {
	case !(g.CellWidth > 0) || !(g.CellHeight > 0):
		return fmt.Errorf("%w: cell size %gx%g", ErrInvalidGrid, g.CellWidth, g.CellHeight)
	case g.Columns <= 0 || g.Rows <= 0:
		return fmt.Errorf("%w: %d columns x %d rows", ErrInvalidGrid, g.Columns, g.Rows)
	case g.XMorph < -1 || g.XMorph > 1 || g.YMorph < -1 || g.YMorph > 1:
		return fmt.Errorf("%w: morph (%g, %g) outside [-1, 1]", ErrInvalidGrid, g.XMorph, g.YMorph)
	}
	return nil
}

// InBounds reports whether (x, y) is a cell of the grid
func (g GridConfig) InBounds(x, y int) bool {
	return x >= 0 && x < g.Columns && y >= 0 && y < g.Rows
}

// Direction is one of the eight neighbours of a cell
type Direction string

const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	NorthEast Direction = "northeast"
	NorthWest Direction = "northwest"
	SouthEast Direction = "southeast"
	SouthWest Direction = "southwest"
)

// AllDirections is the fixed iteration order used by edge generation and migration
var AllDirections = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionDeltas = map[Direction][2]int{
	North:     {0, -1},
	NorthEast: {1, -1},
	East:      {1, 0},
	SouthEast: {1, 1},
	South:     {0, 1},
	SouthWest: {-1, 1},
	West:      {-1, 0},
	NorthWest: {-1, -1},
}

// Delta returns the x/y offset of the neighbour in this direction.
// North is towards row 0.
func (d Direction) Delta() (dx, dy int) {
	delta := directionDeltas[d]
	return delta[0], delta[1]
}

// Valid reports whether d is one of the eight directions
func (d Direction) Valid() bool {
	_, ok := directionDeltas[d]
	return ok
}

// Diagonal reports whether d moves along both axes
func (d Direction) Diagonal() bool {
	dx, dy := d.Delta()
	return dx != 0 && dy != 0
}

// Opposite returns the direction pointing back
func (d Direction) Opposite() Direction {
	dx, dy := d.Delta()
	for _, o := range AllDirections {
		ox, oy := o.Delta()
		if ox == -dx && oy == -dy {
			return o
		}
	}
	return ""
}

// ParseDirection converts a name into a Direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("invalid direction %q", s)
	}
	return d, nil
}
