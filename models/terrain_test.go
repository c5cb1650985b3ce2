package models

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestTerrainCatalogCoversEveryKind(t *testing.T) {
	impassable := map[TerrainKind]bool{
		TerrainWater: true, TerrainLava: true, TerrainRock: true, TerrainMountain: true, TerrainVoid: true,
	}

	for _, kind := range TerrainKinds {
		props := PropertiesOf(kind)
		if props.Description == "" {
			t.Errorf("%s has no description", kind)
		}
		if impassable[kind] {
			if !math.IsInf(props.MovementCost, 1) || kind.Passable() {
				t.Errorf("expected %s to be impassable, cost %v", kind, props.MovementCost)
			}
			continue
		}
		if !(props.MovementCost > 0) || math.IsInf(props.MovementCost, 0) || !kind.Passable() {
			t.Errorf("expected %s to have a finite positive cost, got %v", kind, props.MovementCost)
		}
	}
}

func TestParseTerrainKind(t *testing.T) {
	if k, err := ParseTerrainKind("swamp"); err != nil || k != TerrainSwamp {
		t.Fatalf("expected swamp, got %q (%v)", k, err)
	}
	if _, err := ParseTerrainKind("lavender"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestDefaultTerrainCatalogIsACopy(t *testing.T) {
	c := DefaultTerrainCatalog()
	c[TerrainGrass] = TerrainProperties{MovementCost: 99}
	if PropertiesOf(TerrainGrass).MovementCost == 99 {
		t.Fatal("mutating the copy changed the built-in catalog")
	}
}

func TestLoadTerrainCatalog(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, terrainYAML, 0644); err != nil {
		t.Fatal(err)
	}
	catalog, err := LoadTerrainCatalog(good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog) != len(TerrainKinds) {
		t.Fatalf("expected %d kinds, got %d", len(TerrainKinds), len(catalog))
	}

	bad := filepath.Join(dir, "bad.yaml")
	body := "terrain:\n  - kind: grass\n    movement_cost: 1\n"
	if err := os.WriteFile(bad, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTerrainCatalog(bad); err == nil {
		t.Fatal("expected error for catalog missing kinds")
	}
}
