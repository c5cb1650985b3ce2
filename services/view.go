package services

import "tabletop-map/server/models"

// MaxViewRadius caps the window a renderer can request at once
const MaxViewRadius = 32

// ViewCell is a resolved cell inside a view window
type ViewCell struct {
	models.Cell
	InBounds     bool     `json:"inBounds"`
	Stored       bool     `json:"stored"`
	MovementCost *float64 `json:"movementCost,omitempty"` // nil when impassable
	Edges        int      `json:"edges"`
}

// MapView is a square window of cells around a centre on one layer
type MapView struct {
	Layer   int          `json:"layer"`
	CenterX int          `json:"centerX"`
	CenterY int          `json:"centerY"`
	Radius  int          `json:"radius"`
	Tiles   [][]ViewCell `json:"tiles"` // [row][column]
}

// View resolves the cells within radius of (centerX, centerY). Positions
// outside the grid come back as impassable void.
func (s *MapService) View(layer, centerX, centerY, radius int) (*MapView, error) {
	if _, err := s.Layer(layer); err != nil {
		return nil, err
	}
	if radius < 0 {
		radius = 0
	}
	if radius > MaxViewRadius {
		radius = MaxViewRadius
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	outgoing := make(map[models.CellKey]int)
	for _, e := range s.edges.Edges() {
		if e.ID.Layer == layer && !e.Blocked {
			outgoing[e.ID.From()]++
		}
	}

	diameter := radius*2 + 1
	tiles := make([][]ViewCell, diameter)
	for i := 0; i < diameter; i++ {
		tiles[i] = make([]ViewCell, diameter)
		for j := 0; j < diameter; j++ {
			k := models.CellKey{X: centerX - radius + j, Y: centerY - radius + i, Layer: layer}
			if !s.grid.InBounds(k.X, k.Y) {
				void := models.DefaultCell(k)
				void.Terrain = models.TerrainVoid
				void.Passable = false
				tiles[i][j] = ViewCell{Cell: void}
				continue
			}

			cell, stored := s.cells.Get(k)
			if !stored {
				cell = models.DefaultCell(k)
			}
			vc := ViewCell{Cell: cell, InBounds: true, Stored: stored, Edges: outgoing[k]}
			if props := models.PropertiesOf(cell.Terrain); cell.Passable && props.Passable() {
				cost := props.MovementCost
				vc.MovementCost = &cost
			}
			tiles[i][j] = vc
		}
	}

	return &MapView{
		Layer:   layer,
		CenterX: centerX,
		CenterY: centerY,
		Radius:  radius,
		Tiles:   tiles,
	}, nil
}
