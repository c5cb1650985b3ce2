package services

import (
	"fmt"
	"time"

	"tabletop-map/server/models"
)

// MigrationInputError reports a legacy document that cannot be migrated
type MigrationInputError struct {
	Reason string
	Err    error
}

func (e *MigrationInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("migrate map: %s: %v", e.Reason, e.Err)
	}
	return "migrate map: " + e.Reason
}

func (e *MigrationInputError) Unwrap() error {
	return e.Err
}

// MigrateMapToV2 converts a version 1 document, where cells carry an
// availability flag and a per-direction connection map, into the current
// cell and edge list format. Documents that are already current are returned
// as is, so running the migration on its own output is a no-op.
//
// Terrain is reduced to grass or rock since v1 only recorded availability.
// Positions without any v1 record get open edges to every neighbour that is
// available or also unrecorded, on active layers only.
func MigrateMapToV2(m *models.MapData, now time.Time) (*models.MapData, error) {
	if m == nil {
		return nil, &MigrationInputError{Reason: "no map"}
	}
	if m.Current() {
		return m, nil
	}
	if m.Grid.Columns <= 0 || m.Grid.Rows <= 0 {
		return nil, &MigrationInputError{Reason: "missing grid"}
	}
	if err := m.Grid.Validate(); err != nil {
		return nil, &MigrationInputError{Reason: "bad grid", Err: err}
	}
	if len(m.Layers) == 0 {
		return nil, &MigrationInputError{Reason: "missing layers"}
	}

	grid := m.Grid
	layers := models.NormalizeLayers(m.Layers)

	legacy := make(map[models.CellKey]models.Cell, len(m.Cells))
	order := make([]models.CellKey, 0, len(m.Cells))
	for _, c := range m.Cells {
		k := c.Key()
		if !models.ValidLayer(k.Layer) || !grid.InBounds(k.X, k.Y) {
			continue
		}
		if _, seen := legacy[k]; !seen {
			order = append(order, k)
		}
		legacy[k] = c
	}

	// absent neighbours count as available
	neighborOpen := func(k models.CellKey) bool {
		c, ok := legacy[k]
		return !ok || legacyAvailable(c)
	}

	cells := make([]models.Cell, 0, len(order))
	edges := make([]models.Edge, 0)
	for _, k := range order {
		src := legacy[k]
		avail := legacyAvailable(src)
		cells = append(cells, migrateCell(src, avail))
		if !avail {
			continue
		}
		for _, dir := range models.AllDirections {
			to := k.Neighbor(dir)
			if !grid.InBounds(to.X, to.Y) || !neighborOpen(to) {
				continue
			}
			open, set := src.Connections[string(dir)]
			edges = append(edges, models.NewEdge(k, dir, set && !open))
		}
	}

	for _, layer := range layers {
		if !layer.Active {
			continue
		}
		for y := 0; y < grid.Rows; y++ {
			for x := 0; x < grid.Columns; x++ {
				k := models.CellKey{X: x, Y: y, Layer: layer.ID}
				if _, ok := legacy[k]; ok {
					continue
				}
				for _, dir := range models.AllDirections {
					to := k.Neighbor(dir)
					if grid.InBounds(to.X, to.Y) && neighborOpen(to) {
						edges = append(edges, models.NewEdge(k, dir, false))
					}
				}
			}
		}
	}

	meta := m.Metadata
	meta.Modified = now
	meta.Version = models.CurrentVersion
	if m.Metadata.Tags != nil {
		meta.Tags = append([]string(nil), m.Metadata.Tags...)
	}

	return &models.MapData{
		Version:         models.CurrentVersion,
		Metadata:        meta,
		Grid:            grid,
		Layers:          layers,
		Cells:           cells,
		Edges:           edges,
		BackgroundImage: m.BackgroundImage,
	}, nil
}

// legacyAvailable reads the v1 availability flag. Records written after the
// terrain field existed but before edge lists fall back to their passable flag;
// anything else is available.
func legacyAvailable(c models.Cell) bool {
	if c.Available != nil {
		return *c.Available
	}
	if c.Terrain != "" {
		return c.Passable
	}
	return true
}

func migrateCell(src models.Cell, available bool) models.Cell {
	c := src
	c.Available = nil
	c.Connections = nil
	c.Passable = available
	c.Terrain = models.TerrainRock
	if available {
		c.Terrain = models.TerrainGrass
	}
	return c
}
