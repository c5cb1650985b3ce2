package services

import "tabletop-map/server/models"

// CellStore is an immutable, coordinate-indexed set of cell records.
// Updates return a new store and never touch the receiver's backing arrays.
type CellStore struct {
	cells []models.Cell
	index map[models.CellKey]int
}

// NewCellStore indexes cells. Later records with the same key replace earlier ones.
func NewCellStore(cells []models.Cell) CellStore {
	s := CellStore{
		cells: make([]models.Cell, 0, len(cells)),
		index: make(map[models.CellKey]int, len(cells)),
	}
	for _, c := range cells {
		if i, ok := s.index[c.Key()]; ok {
			s.cells[i] = c
			continue
		}
		s.index[c.Key()] = len(s.cells)
		s.cells = append(s.cells, c)
	}
	return s
}

// Get returns the stored record for k, if there is one
func (s CellStore) Get(k models.CellKey) (models.Cell, bool) {
	i, ok := s.index[k]
	if !ok {
		return models.Cell{}, false
	}
	return s.cells[i], true
}

// Resolve returns the stored record or the implicit default
func (s CellStore) Resolve(k models.CellKey) models.Cell {
	if c, ok := s.Get(k); ok {
		return c
	}
	return models.DefaultCell(k)
}

// Passable reports whether k can be entered; absent cells are passable
func (s CellStore) Passable(k models.CellKey) bool {
	c, ok := s.Get(k)
	return !ok || c.Passable
}

// With returns a store where c replaces or adds the record at c.Key()
func (s CellStore) With(c models.Cell) CellStore {
	next := CellStore{index: s.index}
	if i, ok := s.index[c.Key()]; ok {
		next.cells = make([]models.Cell, len(s.cells))
		copy(next.cells, s.cells)
		next.cells[i] = c
		return next
	}

	next.cells = make([]models.Cell, len(s.cells), len(s.cells)+1)
	copy(next.cells, s.cells)
	next.cells = append(next.cells, c)
	next.index = make(map[models.CellKey]int, len(s.index)+1)
	for k, v := range s.index {
		next.index[k] = v
	}
	next.index[c.Key()] = len(next.cells) - 1
	return next
}

// Filter returns a store holding only the cells keep accepts
func (s CellStore) Filter(keep func(models.Cell) bool) CellStore {
	kept := make([]models.Cell, 0, len(s.cells))
	for _, c := range s.cells {
		if keep(c) {
			kept = append(kept, c)
		}
	}
	return NewCellStore(kept)
}

// Cells returns the records in insertion order. The slice must not be modified.
func (s CellStore) Cells() []models.Cell {
	return s.cells
}

// Len returns the number of stored records
func (s CellStore) Len() int {
	return len(s.cells)
}
