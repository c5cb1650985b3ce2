package persistence

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tabletop-map/server/models"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testMap(name string) *models.MapData {
	grid := models.GridConfig{CellWidth: 10, CellHeight: 10, Columns: 4, Rows: 3}
	m := models.NewMapData(name, "tester", grid, testTime)
	m.Cells = append(m.Cells, models.Cell{X: 1, Y: 2, Terrain: models.TerrainRock})
	m.Edges = append(m.Edges, models.NewEdge(models.CellKey{X: 0, Y: 0}, models.East, true))
	return m
}

func newTestStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "maps.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, path
}

func TestJSONStoreSaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)

	in := testMap("crypt")
	if err := store.SaveMap("crypt", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	// later changes to the caller's map must not leak into storage
	in.Cells[0].Terrain = models.TerrainGrass

	out, err := store.LoadMap("crypt")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Metadata.Name != "crypt" || !out.Metadata.Created.Equal(testTime) {
		t.Fatalf("unexpected metadata %+v", out.Metadata)
	}
	if len(out.Cells) != 1 || out.Cells[0].Terrain != models.TerrainRock {
		t.Fatalf("unexpected cells %+v", out.Cells)
	}
	if len(out.Edges) != 1 || !out.Edges[0].Blocked || out.Edges[0].Direction != models.East {
		t.Fatalf("unexpected edges %+v", out.Edges)
	}
	if !out.Current() {
		t.Fatal("expected a current document")
	}
}

func TestJSONStoreMissingMap(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.LoadMap("nope"); !errors.Is(err, ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
	if err := store.DeleteMap("nope"); !errors.Is(err, ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestJSONStoreListDeleteAndReopen(t *testing.T) {
	store, path := newTestStore(t)

	for _, name := range []string{"tower", "abbey", "marsh"} {
		if err := store.SaveMap(name, testMap(name)); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	if err := store.DeleteMap("marsh"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	list, err := reopened.ListMaps()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "abbey" || list[1].Name != "tower" {
		t.Fatalf("unexpected listing %+v", list)
	}
	if list[0].Version != models.CurrentVersion || !list[0].Modified.Equal(testTime) {
		t.Fatalf("unexpected summary %+v", list[0])
	}
}

func TestJSONStoreKeepsLegacyDocuments(t *testing.T) {
	store, _ := newTestStore(t)

	legacy := testMap("old")
	legacy.Version = "1.0"
	legacy.Edges = nil
	available := false
	legacy.Cells[0].Available = &available
	legacy.Cells[0].Connections = map[string]bool{"north": true}

	if err := store.SaveMap("old", legacy); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := store.LoadMap("old")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Edges != nil || out.Current() {
		t.Fatal("expected the edge list to stay absent")
	}
	c := out.Cells[0]
	if c.Available == nil || *c.Available || !c.Connections["north"] {
		t.Fatalf("legacy fields lost: %+v", c)
	}
}
