package models

import "fmt"

// CellKey identifies a cell on one layer
type CellKey struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Layer int `json:"layer"`
}

func (k CellKey) String() string {
	return fmt.Sprintf("%d,%d@%d", k.X, k.Y, k.Layer)
}

// Neighbor returns the key one step away in direction d on the same layer
func (k CellKey) Neighbor(d Direction) CellKey {
	dx, dy := d.Delta()
	return CellKey{X: k.X + dx, Y: k.Y + dy, Layer: k.Layer}
}

// Content is a spawner or game object placed on a cell
type Content struct {
	Kind       string                 `json:"kind"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Cell is the stored state of one grid position on one layer. A cell with no
// record behaves like DefaultCell.
type Cell struct {
	X              int         `json:"x"`
	Y              int         `json:"y"`
	Layer          int         `json:"layer"`
	Terrain        TerrainKind `json:"terrain"`
	Passable       bool        `json:"passable"`
	Occupied       bool        `json:"occupied"`
	OccupantID     string      `json:"occupantId,omitempty"`
	Spawner        *Content    `json:"spawner,omitempty"`
	GameObject     *Content    `json:"gameObject,omitempty"`
	VisualOverride string      `json:"visualOverride,omitempty"`
	Notes          string      `json:"notes,omitempty"`

	// Version 1 documents carry these instead of terrain/passable and edges.
	Available   *bool           `json:"available,omitempty"`
	Connections map[string]bool `json:"connections,omitempty"`
}

// Key returns the identity of the cell
func (c Cell) Key() CellKey {
	return CellKey{X: c.X, Y: c.Y, Layer: c.Layer}
}

// HasContent reports whether a spawner or game object is placed on the cell
func (c Cell) HasContent() bool {
	return c.Spawner != nil || c.GameObject != nil
}

// DefaultCell is the implicit state of a position with no record
func DefaultCell(k CellKey) Cell {
	return Cell{
		X:        k.X,
		Y:        k.Y,
		Layer:    k.Layer,
		Terrain:  TerrainGrass,
		Passable: true,
	}
}

// CellUpdate lists the fields to merge into a cell; nil fields are left alone
type CellUpdate struct {
	Terrain        *TerrainKind `json:"terrain,omitempty"`
	Passable       *bool        `json:"passable,omitempty"`
	Occupied       *bool        `json:"occupied,omitempty"`
	OccupantID     *string      `json:"occupantId,omitempty"`
	Spawner        *Content     `json:"spawner,omitempty"`
	GameObject     *Content     `json:"gameObject,omitempty"`
	VisualOverride *string      `json:"visualOverride,omitempty"`
	Notes          *string      `json:"notes,omitempty"`
}

// Apply returns a copy of c with the update merged in
func (u CellUpdate) Apply(c Cell) Cell {
	if u.Terrain != nil {
		c.Terrain = *u.Terrain
	}
	if u.Passable != nil {
		c.Passable = *u.Passable
	}
	if u.Occupied != nil {
		c.Occupied = *u.Occupied
	}
	if u.OccupantID != nil {
		c.OccupantID = *u.OccupantID
	}
	if u.Spawner != nil {
		c.Spawner = u.Spawner
	}
	if u.GameObject != nil {
		c.GameObject = u.GameObject
	}
	if u.VisualOverride != nil {
		c.VisualOverride = *u.VisualOverride
	}
	if u.Notes != nil {
		c.Notes = *u.Notes
	}
	return c
}
