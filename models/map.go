package models

import "time"

// CurrentVersion is the document version produced by this server
const CurrentVersion = "2.0"

// Metadata describes a map document
type Metadata struct {
	Name        string    `json:"name"`
	Author      string    `json:"author"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// MapData is the persisted map document. Cells and edges are sparse: a missing
// cell is default grass, a missing edge has never been recorded. A nil Edges
// slice means the document predates edge lists.
type MapData struct {
	Version         string     `json:"version"`
	Metadata        Metadata   `json:"metadata"`
	Grid            GridConfig `json:"grid"`
	Layers          []Layer    `json:"layers"`
	Cells           []Cell     `json:"cells"`
	Edges           []Edge     `json:"edges"`
	BackgroundImage string     `json:"backgroundImage,omitempty"`
}

// NewMapData creates an empty current-version map
func NewMapData(name, author string, grid GridConfig, now time.Time) *MapData {
	return &MapData{
		Version: CurrentVersion,
		Metadata: Metadata{
			Name:     name,
			Author:   author,
			Created:  now,
			Modified: now,
			Version:  CurrentVersion,
		},
		Grid:   grid,
		Layers: DefaultLayers(),
		Cells:  []Cell{},
		Edges:  []Edge{},
	}
}

// Current reports whether the document already uses the edge list format
func (m *MapData) Current() bool {
	return m.Version == CurrentVersion && m.Edges != nil
}
