package services

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"tabletop-map/server/models"
)

func boolPtr(b bool) *bool { return &b }

func legacyMap(columns, rows int, cells ...models.Cell) *models.MapData {
	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.MapData{
		Version: "1.0",
		Metadata: models.Metadata{
			Name:     "old",
			Author:   "someone",
			Created:  created,
			Modified: created,
			Version:  "1.0",
			Tags:     []string{"dungeon"},
		},
		Grid:   testGrid(columns, rows),
		Layers: models.DefaultLayers(),
		Cells:  cells,
	}
}

func legacyCell(x, y int, available bool, conns map[string]bool) models.Cell {
	return models.Cell{X: x, Y: y, Layer: 0, Available: boolPtr(available), Connections: conns}
}

func edgeMap(edges []models.Edge) map[models.EdgeID]models.Edge {
	out := make(map[models.EdgeID]models.Edge, len(edges))
	for _, e := range edges {
		out[e.ID] = e
	}
	return out
}

func TestMigrateCurrentMapReturnsInput(t *testing.T) {
	m := models.NewMapData("fresh", "me", testGrid(3, 3), testNow)

	got, err := MigrateMapToV2(m, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != m {
		t.Fatal("expected the same map back")
	}
	if !got.Metadata.Modified.Equal(testNow) {
		t.Fatal("modified timestamp changed on a current map")
	}
}

func TestMigrateVersionTwoWithoutEdgesStillMigrates(t *testing.T) {
	m := models.NewMapData("half", "me", testGrid(2, 2), testNow)
	m.Edges = nil

	got, err := MigrateMapToV2(m, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == m || got.Edges == nil {
		t.Fatal("expected a migrated copy with an edge list")
	}
	if len(got.Edges) != 12 {
		t.Fatalf("expected default fill to connect the 2x2 grid, got %d edges", len(got.Edges))
	}
}

func TestMigrateCornerCellConnections(t *testing.T) {
	in := legacyMap(3, 3, legacyCell(0, 0, true, map[string]bool{
		"north": false, "south": true, "east": true, "west": true,
	}))

	out, err := MigrateMapToV2(in, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fromCorner []models.Edge
	for _, e := range out.Edges {
		if e.ID.FromX == 0 && e.ID.FromY == 0 {
			fromCorner = append(fromCorner, e)
		}
	}
	if len(fromCorner) != 3 {
		t.Fatalf("expected 3 in-bounds edges from the corner, got %d", len(fromCorner))
	}
	wantDirs := map[models.Direction]bool{models.East: true, models.South: true, models.SouthEast: true}
	for _, e := range fromCorner {
		if !wantDirs[e.Direction] {
			t.Fatalf("unexpected direction %s", e.Direction)
		}
		if e.Blocked {
			t.Fatalf("edge %s should be open; only north was false and it is off the grid", e.Direction)
		}
	}

	if len(out.Edges) != 40 {
		t.Fatalf("expected a fully connected 3x3 grid, got %d edges", len(out.Edges))
	}
	checkEdgeInvariants(t, out.Grid, NewCellStore(out.Cells), out.Edges)
}

func TestMigrateBlockedAndUnavailableCells(t *testing.T) {
	in := legacyMap(3, 3,
		legacyCell(1, 1, true, map[string]bool{"east": false, "north": true}),
		legacyCell(0, 1, false, nil),
	)

	out, err := MigrateMapToV2(in, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edges := edgeMap(out.Edges)
	east := models.EdgeBetween(models.CellKey{X: 1, Y: 1}, models.East)
	if e, ok := edges[east]; !ok || !e.Blocked {
		t.Fatalf("expected blocked east edge, got %+v (present %t)", e, ok)
	}
	north := models.EdgeBetween(models.CellKey{X: 1, Y: 1}, models.North)
	if e := edges[north]; e.Blocked {
		t.Fatal("expected open north edge")
	}
	southWest := models.EdgeBetween(models.CellKey{X: 1, Y: 1}, models.SouthWest)
	if e, ok := edges[southWest]; !ok || e.Blocked {
		t.Fatal("expected missing connection key to mean open")
	}

	// every edge touching the unavailable cell is skipped
	if len(out.Edges) != 30 {
		t.Fatalf("expected 30 edges, got %d", len(out.Edges))
	}
	blocked := 0
	for _, e := range out.Edges {
		if e.Blocked {
			blocked++
		}
	}
	if blocked != 1 {
		t.Fatalf("expected exactly 1 blocked edge, got %d", blocked)
	}
	checkEdgeInvariants(t, out.Grid, NewCellStore(out.Cells), out.Edges)

	cells := NewCellStore(out.Cells)
	if c, _ := cells.Get(models.CellKey{X: 0, Y: 1}); c.Terrain != models.TerrainRock || c.Passable {
		t.Fatalf("expected unavailable cell to become rock, got %+v", c)
	}
	if c, _ := cells.Get(models.CellKey{X: 1, Y: 1}); c.Terrain != models.TerrainGrass || !c.Passable {
		t.Fatalf("expected available cell to become grass, got %+v", c)
	}
	for _, c := range out.Cells {
		if c.Available != nil || c.Connections != nil {
			t.Fatalf("legacy fields left on %v", c.Key())
		}
	}
}

func TestMigrateMetadataAndVersion(t *testing.T) {
	in := legacyMap(2, 2)
	later := testNow.Add(24 * time.Hour)

	out, err := MigrateMapToV2(in, later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Version != models.CurrentVersion || out.Metadata.Version != models.CurrentVersion {
		t.Fatalf("expected version %s, got %s/%s", models.CurrentVersion, out.Version, out.Metadata.Version)
	}
	if !out.Metadata.Modified.Equal(later) {
		t.Fatalf("expected modified %v, got %v", later, out.Metadata.Modified)
	}
	if !out.Metadata.Created.Equal(in.Metadata.Created) || out.Metadata.Name != "old" {
		t.Fatal("expected the rest of the metadata to carry over")
	}
	if in.Version != "1.0" || in.Edges != nil {
		t.Fatal("migration modified its input")
	}
}

func TestMigrateTwiceEqualsOnce(t *testing.T) {
	in := legacyMap(4, 3,
		legacyCell(2, 1, true, map[string]bool{"west": false}),
		legacyCell(3, 2, false, nil),
	)

	once, err := MigrateMapToV2(in, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := MigrateMapToV2(once, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if twice != once || !reflect.DeepEqual(twice, once) {
		t.Fatal("second migration changed the map")
	}
}

func TestMigrateRejectsIncompleteInput(t *testing.T) {
	noGrid := legacyMap(3, 3)
	noGrid.Grid = models.GridConfig{}

	noLayers := legacyMap(3, 3)
	noLayers.Layers = nil

	badGrid := legacyMap(3, 3)
	badGrid.Grid.XMorph = 4

	for name, m := range map[string]*models.MapData{
		"nil":       nil,
		"no grid":   noGrid,
		"no layers": noLayers,
		"bad grid":  badGrid,
	} {
		t.Run(name, func(t *testing.T) {
			out, err := MigrateMapToV2(m, testNow)
			var inputErr *MigrationInputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("expected MigrationInputError, got %v", err)
			}
			if out != nil {
				t.Fatal("expected no map on failure")
			}
		})
	}
}

func TestMigrateDropsCellsOutsideGrid(t *testing.T) {
	in := legacyMap(2, 2,
		legacyCell(5, 5, true, nil),
		legacyCell(1, 1, true, nil),
	)
	out, err := MigrateMapToV2(in, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Cells) != 1 || out.Cells[0].Key() != (models.CellKey{X: 1, Y: 1}) {
		t.Fatalf("expected only the in-bounds cell, got %+v", out.Cells)
	}
}
