package services

import "tabletop-map/server/models"

// GenerateEdges rebuilds the full edge set from cell passability. For every
// active layer it emits an open edge from each passable cell to each passable
// in-bounds neighbour. The result is meant to replace any previous edge set.
func GenerateEdges(grid models.GridConfig, layers []models.Layer, cells CellStore) []models.Edge {
	edges := make([]models.Edge, 0)
	for _, layer := range layers {
		if !layer.Active || !models.ValidLayer(layer.ID) {
			continue
		}
		for y := 0; y < grid.Rows; y++ {
			for x := 0; x < grid.Columns; x++ {
				from := models.CellKey{X: x, Y: y, Layer: layer.ID}
				if !cells.Passable(from) {
					continue
				}
				for _, dir := range models.AllDirections {
					to := from.Neighbor(dir)
					if !grid.InBounds(to.X, to.Y) || !cells.Passable(to) {
						continue
					}
					edges = append(edges, models.NewEdge(from, dir, false))
				}
			}
		}
	}
	return edges
}
