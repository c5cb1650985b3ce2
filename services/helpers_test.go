package services

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"tabletop-map/server/models"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testGrid(columns, rows int) models.GridConfig {
	return models.GridConfig{CellWidth: 10, CellHeight: 10, Columns: columns, Rows: rows}
}

func newTestService(t *testing.T, columns, rows int) *MapService {
	t.Helper()
	s := NewMapService(nil, zap.NewNop(), WithClock(func() time.Time { return testNow }))
	if err := s.NewMap("test", "tester", testGrid(columns, rows)); err != nil {
		t.Fatalf("new map: %v", err)
	}
	return s
}

func targets(edges []models.Edge) map[[2]int]bool {
	out := make(map[[2]int]bool, len(edges))
	for _, e := range edges {
		out[[2]int{e.ID.ToX, e.ID.ToY}] = true
	}
	return out
}

// checkEdgeInvariants verifies the structural rules every generated edge set obeys
func checkEdgeInvariants(t *testing.T, grid models.GridConfig, cells CellStore, edges []models.Edge) {
	t.Helper()
	seen := make(map[models.EdgeID]bool, len(edges))
	for _, e := range edges {
		if seen[e.ID] {
			t.Fatalf("duplicate edge %v", e.ID)
		}
		seen[e.ID] = true
		if e.ID.From() == e.ID.To() {
			t.Fatalf("self loop %v", e.ID)
		}
		if !e.Consistent() {
			t.Fatalf("edge %v does not match direction %s", e.ID, e.Direction)
		}
		if !grid.InBounds(e.ID.FromX, e.ID.FromY) || !grid.InBounds(e.ID.ToX, e.ID.ToY) {
			t.Fatalf("edge %v leaves the grid", e.ID)
		}
		if !cells.Passable(e.ID.From()) || !cells.Passable(e.ID.To()) {
			t.Fatalf("edge %v touches an impassable cell", e.ID)
		}
	}
}
