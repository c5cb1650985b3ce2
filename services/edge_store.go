package services

import "tabletop-map/server/models"

// EdgeStore is an immutable set of directed edges keyed by their id
type EdgeStore struct {
	edges []models.Edge
	index map[models.EdgeID]int
}

// NewEdgeStore indexes edges. Later edges with the same id replace earlier ones.
func NewEdgeStore(edges []models.Edge) EdgeStore {
	s := EdgeStore{
		edges: make([]models.Edge, 0, len(edges)),
		index: make(map[models.EdgeID]int, len(edges)),
	}
	for _, e := range edges {
		if i, ok := s.index[e.ID]; ok {
			s.edges[i] = e
			continue
		}
		s.index[e.ID] = len(s.edges)
		s.edges = append(s.edges, e)
	}
	return s
}

// Get returns the edge with the given id
func (s EdgeStore) Get(id models.EdgeID) (models.Edge, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Edge{}, false
	}
	return s.edges[i], true
}

// From returns every edge whose source is k
func (s EdgeStore) From(k models.CellKey) []models.Edge {
	var out []models.Edge
	for _, e := range s.edges {
		if e.ID.From() == k {
			out = append(out, e)
		}
	}
	return out
}

// With returns a store where e replaces or adds the edge with e.ID
func (s EdgeStore) With(e models.Edge) EdgeStore {
	next := EdgeStore{index: s.index}
	if i, ok := s.index[e.ID]; ok {
		next.edges = make([]models.Edge, len(s.edges))
		copy(next.edges, s.edges)
		next.edges[i] = e
		return next
	}

	next.edges = make([]models.Edge, len(s.edges), len(s.edges)+1)
	copy(next.edges, s.edges)
	next.edges = append(next.edges, e)
	next.index = make(map[models.EdgeID]int, len(s.index)+1)
	for k, v := range s.index {
		next.index[k] = v
	}
	next.index[e.ID] = len(next.edges) - 1
	return next
}

// Filter returns a store holding only the edges keep accepts
func (s EdgeStore) Filter(keep func(models.Edge) bool) EdgeStore {
	kept := make([]models.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	return NewEdgeStore(kept)
}

// Edges returns the edges in insertion order. The slice must not be modified.
func (s EdgeStore) Edges() []models.Edge {
	return s.edges
}

// Len returns the number of edges
func (s EdgeStore) Len() int {
	return len(s.edges)
}
