package models

import "fmt"

// EdgeID identifies a directed edge between two cells on the same layer
type EdgeID struct {
	FromX int `json:"fromX"`
	FromY int `json:"fromY"`
	ToX   int `json:"toX"`
	ToY   int `json:"toY"`
	Layer int `json:"layer"`
}

func (id EdgeID) String() string {
	return fmt.Sprintf("%d,%d->%d,%d@%d", id.FromX, id.FromY, id.ToX, id.ToY, id.Layer)
}

// From returns the source cell key
func (id EdgeID) From() CellKey {
	return CellKey{X: id.FromX, Y: id.FromY, Layer: id.Layer}
}

// To returns the target cell key
func (id EdgeID) To() CellKey {
	return CellKey{X: id.ToX, Y: id.ToY, Layer: id.Layer}
}

// EdgeBetween builds the id of the edge leaving from in direction d
func EdgeBetween(from CellKey, d Direction) EdgeID {
	to := from.Neighbor(d)
	return EdgeID{FromX: from.X, FromY: from.Y, ToX: to.X, ToY: to.Y, Layer: from.Layer}
}

// Edge records whether movement from one cell to an adjacent one is allowed
type Edge struct {
	ID          EdgeID    `json:"id"`
	Direction   Direction `json:"direction"`
	Blocked     bool      `json:"blocked"`
	Cost        *float64  `json:"cost,omitempty"`
	Description string    `json:"description,omitempty"`
}

// NewEdge creates an edge leaving from in direction d
func NewEdge(from CellKey, d Direction, blocked bool) Edge {
	return Edge{
		ID:        EdgeBetween(from, d),
		Direction: d,
		Blocked:   blocked,
	}
}

// Consistent reports whether the target matches the source plus the direction delta
func (e Edge) Consistent() bool {
	return e.Direction.Valid() && EdgeBetween(e.ID.From(), e.Direction) == e.ID
}
