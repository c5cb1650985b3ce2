package models

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// TerrainKind is the closed set of ground types a cell can carry
type TerrainKind string

const (
	TerrainGrass    TerrainKind = "grass"
	TerrainRoad     TerrainKind = "road"
	TerrainDirt     TerrainKind = "dirt"
	TerrainSand     TerrainKind = "sand"
	TerrainSwamp    TerrainKind = "swamp"
	TerrainWater    TerrainKind = "water"
	TerrainLava     TerrainKind = "lava"
	TerrainSnow     TerrainKind = "snow"
	TerrainRock     TerrainKind = "rock"
	TerrainForest   TerrainKind = "forest"
	TerrainMountain TerrainKind = "mountain"
	TerrainVoid     TerrainKind = "void"
)

// TerrainKinds lists every terrain kind in catalog order
var TerrainKinds = []TerrainKind{
	TerrainGrass, TerrainRoad, TerrainDirt, TerrainSand, TerrainSwamp, TerrainWater,
	TerrainLava, TerrainSnow, TerrainRock, TerrainForest, TerrainMountain, TerrainVoid,
}

// TerrainProperties describes how a terrain kind behaves and looks
type TerrainProperties struct {
	MovementCost float64 `yaml:"movement_cost"`
	Description  string  `yaml:"description"`
	VisualStyle  string  `yaml:"visual_style"`
}

// Passable reports whether units can enter terrain with these properties
func (p TerrainProperties) Passable() bool {
	return !math.IsInf(p.MovementCost, 1)
}

// TerrainCatalog maps every terrain kind to its properties
type TerrainCatalog map[TerrainKind]TerrainProperties

//go:embed terrain.yaml
var terrainYAML []byte

var defaultCatalog = mustParseTerrainCatalog(terrainYAML)

// DefaultTerrainCatalog returns a copy of the built-in catalog
func DefaultTerrainCatalog() TerrainCatalog {
	c := make(TerrainCatalog, len(defaultCatalog))
	for k, v := range defaultCatalog {
		c[k] = v
	}
	return c
}

// PropertiesOf looks up a kind in the built-in catalog
func PropertiesOf(kind TerrainKind) TerrainProperties {
	return defaultCatalog[kind]
}

// Passable reports whether the kind can be traversed
func (k TerrainKind) Passable() bool {
	return PropertiesOf(k).Passable()
}

// Valid reports whether k is one of the known kinds
func (k TerrainKind) Valid() bool {
	_, ok := defaultCatalog[k]
	return ok
}

// ParseTerrainKind converts a name into a TerrainKind
func ParseTerrainKind(s string) (TerrainKind, error) {
	k := TerrainKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown terrain kind %q", s)
	}
	return k, nil
}

// LoadTerrainCatalog reads a catalog override from a YAML file. Every kind must
// be present; entries for unknown kinds are rejected.
func LoadTerrainCatalog(path string) (TerrainCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terrain catalog: %w", err)
	}
	return parseTerrainCatalog(data)
}

func parseTerrainCatalog(data []byte) (TerrainCatalog, error) {
	var file struct {
		Terrain []struct {
			Kind              TerrainKind `yaml:"kind"`
			TerrainProperties `yaml:",inline"`
		} `yaml:"terrain"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse terrain catalog: %w", err)
	}

	known := make(map[TerrainKind]bool, len(TerrainKinds))
	for _, k := range TerrainKinds {
		known[k] = true
	}

	catalog := make(TerrainCatalog, len(file.Terrain))
	for _, t := range file.Terrain {
		if !known[t.Kind] {
			return nil, fmt.Errorf("parse terrain catalog: unknown kind %q", t.Kind)
		}
		if !(t.MovementCost > 0) {
			return nil, fmt.Errorf("parse terrain catalog: %s has non-positive movement cost", t.Kind)
		}
		catalog[t.Kind] = t.TerrainProperties
	}
	for _, k := range TerrainKinds {
		if _, ok := catalog[k]; !ok {
			return nil, fmt.Errorf("parse terrain catalog: missing kind %q", k)
		}
	}
	return catalog, nil
}

func mustParseTerrainCatalog(data []byte) TerrainCatalog {
	c, err := parseTerrainCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}
