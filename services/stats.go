package services

// LayerStats counts what is stored on one layer
type LayerStats struct {
	Layer           int  `json:"layer"`
	Active          bool `json:"active"`
	StoredCells     int  `json:"storedCells"`
	ImpassableCells int  `json:"impassableCells"`
	Spawners        int  `json:"spawners"`
	GameObjects     int  `json:"gameObjects"`
	OccupiedCells   int  `json:"occupiedCells"`
	Edges           int  `json:"edges"`
	BlockedEdges    int  `json:"blockedEdges"`
}

// MapStats summarises the map for status displays
type MapStats struct {
	Columns         int          `json:"columns"`
	Rows            int          `json:"rows"`
	ActiveLayers    int          `json:"activeLayers"`
	StoredCells     int          `json:"storedCells"`
	ImpassableCells int          `json:"impassableCells"`
	Spawners        int          `json:"spawners"`
	GameObjects     int          `json:"gameObjects"`
	OccupiedCells   int          `json:"occupiedCells"`
	Edges           int          `json:"edges"`
	BlockedEdges    int          `json:"blockedEdges"`
	Layers          []LayerStats `json:"layers"`
	Version         uint64       `json:"version"`
	Dirty           bool         `json:"dirty"`
}

// Stats counts cells, content and edges per layer. Implicit default cells
// are not counted.
func (s *MapService) Stats() MapStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	st := MapStats{
		Columns: s.grid.Columns,
		Rows:    s.grid.Rows,
		Layers:  make([]LayerStats, len(s.layers)),
		Version: s.version,
		Dirty:   s.dirty,
	}
	for i, l := range s.layers {
		st.Layers[i] = LayerStats{Layer: l.ID, Active: l.Active}
		if l.Active {
			st.ActiveLayers++
		}
	}

	for _, c := range s.cells.Cells() {
		ls := &st.Layers[c.Layer]
		ls.StoredCells++
		if !c.Passable {
			ls.ImpassableCells++
		}
		if c.Spawner != nil {
			ls.Spawners++
		}
		if c.GameObject != nil {
			ls.GameObjects++
		}
		if c.Occupied {
			ls.OccupiedCells++
		}
	}
	for _, e := range s.edges.Edges() {
		ls := &st.Layers[e.ID.Layer]
		ls.Edges++
		if e.Blocked {
			ls.BlockedEdges++
		}
	}

	for _, ls := range st.Layers {
		st.StoredCells += ls.StoredCells
		st.ImpassableCells += ls.ImpassableCells
		st.Spawners += ls.Spawners
		st.GameObjects += ls.GameObjects
		st.OccupiedCells += ls.OccupiedCells
		st.Edges += ls.Edges
		st.BlockedEdges += ls.BlockedEdges
	}
	return st
}
