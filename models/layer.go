package models

// LayerCount is the fixed number of layers in every map
const LayerCount = 10

// Layer is one of the parallel planes sharing the grid geometry.
// Active gates edge generation only; cells and edges are stored regardless.
type Layer struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	VisualStyle string  `json:"visualStyle"`
	EnergyCost  float64 `json:"energyCost"`
	Active      bool    `json:"active"`
}

var defaultLayers = [LayerCount]Layer{
	{ID: 0, Name: "Material", Description: "The physical world", VisualStyle: "#ffffff", EnergyCost: 0, Active: true},
	{ID: 1, Name: "Ethereal", Description: "A misty echo of the material world", VisualStyle: "#b3e5fc", EnergyCost: 1},
	{ID: 2, Name: "Shadow", Description: "A dim reflection where light is scarce", VisualStyle: "#424242", EnergyCost: 2},
	{ID: 3, Name: "Fey", Description: "A vivid, capricious realm", VisualStyle: "#c5e1a5", EnergyCost: 2},
	{ID: 4, Name: "Astral", Description: "The silver void between worlds", VisualStyle: "#e1bee7", EnergyCost: 3},
	{ID: 5, Name: "Fire", Description: "Elemental plane of fire", VisualStyle: "#ff8a65", EnergyCost: 4},
	{ID: 6, Name: "Water", Description: "Elemental plane of water", VisualStyle: "#4fc3f7", EnergyCost: 4},
	{ID: 7, Name: "Air", Description: "Elemental plane of air", VisualStyle: "#eceff1", EnergyCost: 4},
	{ID: 8, Name: "Earth", Description: "Elemental plane of earth", VisualStyle: "#a1887f", EnergyCost: 4},
	{ID: 9, Name: "Void", Description: "The space beyond all planes", VisualStyle: "#000000", EnergyCost: 5},
}

// DefaultLayers returns the ten stock layers; only layer 0 starts active
func DefaultLayers() []Layer {
	layers := make([]Layer, LayerCount)
	copy(layers, defaultLayers[:])
	return layers
}

// ValidLayer reports whether id names one of the fixed layers
func ValidLayer(id int) bool {
	return id >= 0 && id < LayerCount
}

// NormalizeLayers returns exactly LayerCount layers ordered by id. Entries with
// ids outside the fixed range are dropped, later duplicates win, and missing ids
// are filled from the defaults as inactive layers.
func NormalizeLayers(in []Layer) []Layer {
	out := make([]Layer, LayerCount)
	seen := make([]bool, LayerCount)
	for _, l := range in {
		if !ValidLayer(l.ID) {
			continue
		}
		out[l.ID] = l
		seen[l.ID] = true
	}
	for id := range out {
		if !seen[id] {
			out[id] = defaultLayers[id]
			out[id].Active = false
		}
	}
	return out
}
