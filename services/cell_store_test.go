package services

import (
	"testing"

	"tabletop-map/server/models"
)

func TestCellStoreWithLeavesOriginalUntouched(t *testing.T) {
	k := models.CellKey{X: 1, Y: 2, Layer: 0}
	base := NewCellStore([]models.Cell{models.DefaultCell(k)})

	rock := models.DefaultCell(k)
	rock.Terrain = models.TerrainRock
	rock.Passable = false
	replaced := base.With(rock)

	if c, _ := base.Get(k); c.Terrain != models.TerrainGrass {
		t.Fatalf("original store changed to %s", c.Terrain)
	}
	if c, _ := replaced.Get(k); c.Terrain != models.TerrainRock {
		t.Fatalf("expected rock in new store, got %s", c.Terrain)
	}

	other := models.CellKey{X: 0, Y: 0, Layer: 3}
	added := replaced.With(models.DefaultCell(other))
	if replaced.Len() != 1 || added.Len() != 2 {
		t.Fatalf("expected lengths 1 and 2, got %d and %d", replaced.Len(), added.Len())
	}
	if _, ok := replaced.Get(other); ok {
		t.Fatal("append leaked into the previous store's index")
	}
}

func TestCellStoreDefaultsAndDuplicates(t *testing.T) {
	k := models.CellKey{X: 4, Y: 4, Layer: 1}
	first := models.DefaultCell(k)
	second := models.DefaultCell(k)
	second.Notes = "later"

	s := NewCellStore([]models.Cell{first, second})
	if s.Len() != 1 {
		t.Fatalf("expected duplicates to collapse, got %d cells", s.Len())
	}
	if c, _ := s.Get(k); c.Notes != "later" {
		t.Fatalf("expected later record to win, got %q", c.Notes)
	}

	absent := models.CellKey{X: 9, Y: 9, Layer: 0}
	if !s.Passable(absent) {
		t.Fatal("absent cell should be passable")
	}
	if c := s.Resolve(absent); c.Terrain != models.TerrainGrass || !c.Passable || c.Key() != absent {
		t.Fatalf("unexpected default cell %+v", c)
	}
}

func TestEdgeStoreFromAndWith(t *testing.T) {
	origin := models.CellKey{X: 1, Y: 1}
	s := NewEdgeStore([]models.Edge{
		models.NewEdge(origin, models.North, false),
		models.NewEdge(origin, models.East, false),
		models.NewEdge(models.CellKey{X: 2, Y: 1}, models.West, false),
	})

	if got := len(s.From(origin)); got != 2 {
		t.Fatalf("expected 2 edges from origin, got %d", got)
	}

	blocked := models.NewEdge(origin, models.North, true)
	next := s.With(blocked)
	if e, _ := s.Get(blocked.ID); e.Blocked {
		t.Fatal("original edge store changed")
	}
	if e, _ := next.Get(blocked.ID); !e.Blocked {
		t.Fatal("expected blocked edge in new store")
	}
	if next.Len() != 3 {
		t.Fatalf("expected replace not append, got %d edges", next.Len())
	}
}
