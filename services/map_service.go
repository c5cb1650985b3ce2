package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tabletop-map/server/models"
	"tabletop-map/server/persistence"
)

// ErrNoStorage is returned by Save/LoadFromStorage when no store is configured
var ErrNoStorage = errors.New("no map storage configured")

// ErrUnknownLayer is returned for layer ids outside the fixed range
var ErrUnknownLayer = errors.New("unknown layer")

// MapService owns the map being edited. Every applied mutation replaces the
// affected collection with a new one, bumps the version by one and notifies
// subscribers once. Snapshots handed out earlier are never modified.
type MapService struct {
	meta       models.Metadata
	grid       models.GridConfig
	layers     []models.Layer
	background string
	cells      CellStore
	edges      EdgeStore

	dirty     bool
	version   uint64
	editor    EditorState
	selection *models.CellKey

	db    persistence.Storage
	log   *zap.Logger
	now   func() time.Time
	mutex sync.RWMutex

	// pubMutex serializes mutators together with their notifications so that
	// subscribers see versions in order. It is taken before mutex.
	pubMutex sync.Mutex

	subMutex    sync.RWMutex
	subscribers map[int]func(Change)
	nextSub     int
}

// Option configures a MapService
type Option func(*MapService)

// WithClock replaces time.Now for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *MapService) { s.now = now }
}

// NewMapService creates a service holding a fresh default map. db may be nil
// when the caller handles persistence itself.
func NewMapService(db persistence.Storage, logger *zap.Logger, opts ...Option) *MapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MapService{
		db:          db,
		log:         logger,
		now:         time.Now,
		editor:      DefaultEditorState(),
		subscribers: make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.install(models.NewMapData("Untitled", "", models.DefaultGridConfig(), s.now()))
	return s
}

// Subscribe registers fn for change notifications and returns a function that
// removes it. Notifications are delivered in version order after the service
// lock is released; fn may read the map but must not mutate it.
func (s *MapService) Subscribe(fn func(Change)) func() {
	s.subMutex.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subMutex.Unlock()

	return func() {
		s.subMutex.Lock()
		delete(s.subscribers, id)
		s.subMutex.Unlock()
	}
}

func (s *MapService) publish(c Change) {
	s.subMutex.RLock()
	fns := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMutex.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}

// apply runs fn under the write lock and publishes the change it returns, if any
func (s *MapService) apply(fn func() (Outcome, *Change)) Outcome {
	s.pubMutex.Lock()
	defer s.pubMutex.Unlock()

	s.mutex.Lock()
	outcome, change := fn()
	s.mutex.Unlock()

	if change != nil {
		s.publish(*change)
	}
	return outcome
}

// changed records a data mutation. Callers hold the write lock.
func (s *MapService) changed(kind ChangeKind) *Change {
	s.version++
	s.dirty = true
	return &Change{Kind: kind, Version: s.version, Dirty: true}
}

// install replaces the whole model. Callers hold the write lock or own s exclusively.
func (s *MapService) install(m *models.MapData) {
	s.meta = m.Metadata
	if m.Metadata.Tags != nil {
		s.meta.Tags = append([]string(nil), m.Metadata.Tags...)
	}
	s.grid = m.Grid
	s.layers = models.NormalizeLayers(m.Layers)
	s.background = m.BackgroundImage

	grid := s.grid
	s.cells = NewCellStore(m.Cells).Filter(func(c models.Cell) bool {
		return models.ValidLayer(c.Layer) && grid.InBounds(c.X, c.Y)
	})
	s.edges = NewEdgeStore(m.Edges).Filter(func(e models.Edge) bool {
		return edgeInBounds(grid, e)
	})

	if dropped := len(m.Cells) - s.cells.Len(); dropped > 0 {
		s.log.Warn("dropped duplicate or out-of-bounds cells", zap.Int("count", dropped))
	}
	if dropped := len(m.Edges) - s.edges.Len(); dropped > 0 {
		s.log.Warn("dropped duplicate or invalid edges", zap.Int("count", dropped))
	}

	s.dirty = false
	s.selection = nil
	s.version++
}

func edgeInBounds(grid models.GridConfig, e models.Edge) bool {
	return e.Consistent() &&
		models.ValidLayer(e.ID.Layer) &&
		grid.InBounds(e.ID.FromX, e.ID.FromY) &&
		grid.InBounds(e.ID.ToX, e.ID.ToY)
}

func (s *MapService) inBounds(k models.CellKey) bool {
	return models.ValidLayer(k.Layer) && s.grid.InBounds(k.X, k.Y)
}

func (s *MapService) loadedChange() *Change {
	return &Change{Kind: ChangeLoaded, Version: s.version}
}

// Reads

// Snapshot returns the current map as a document. The cell and edge slices
// are shared with the service and must be treated as read-only.
func (s *MapService) Snapshot() *models.MapData {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.snapshotLocked()
}

func (s *MapService) snapshotLocked() *models.MapData {
	layers := make([]models.Layer, len(s.layers))
	copy(layers, s.layers)
	cells := s.cells.Cells()
	if cells == nil {
		cells = []models.Cell{}
	}
	edges := s.edges.Edges()
	if edges == nil {
		edges = []models.Edge{}
	}
	return &models.MapData{
		Version:         models.CurrentVersion,
		Metadata:        s.meta,
		Grid:            s.grid,
		Layers:          layers,
		Cells:           cells,
		Edges:           edges,
		BackgroundImage: s.background,
	}
}

// CellAt returns the stored cell at (x, y, layer). ok is false when no record
// exists; the returned cell is then the implicit default.
func (s *MapService) CellAt(x, y, layer int) (cell models.Cell, ok bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	k := models.CellKey{X: x, Y: y, Layer: layer}
	if c, found := s.cells.Get(k); found {
		return c, true
	}
	return models.DefaultCell(k), false
}

// EdgesFrom returns the edges leaving (x, y, layer)
func (s *MapService) EdgesFrom(x, y, layer int) []models.Edge {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.edges.From(models.CellKey{X: x, Y: y, Layer: layer})
}

// Layers returns a copy of the layer records
func (s *MapService) Layers() []models.Layer {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	layers := make([]models.Layer, len(s.layers))
	copy(layers, s.layers)
	return layers
}

// Layer returns one layer record
func (s *MapService) Layer(id int) (models.Layer, error) {
	if !models.ValidLayer(id) {
		return models.Layer{}, fmt.Errorf("%w: %d", ErrUnknownLayer, id)
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.layers[id], nil
}

// Grid returns the grid geometry
func (s *MapService) Grid() models.GridConfig {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.grid
}

// Metadata returns the map metadata
func (s *MapService) Metadata() models.Metadata {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.meta
}

// Dirty reports whether there are unsaved changes
func (s *MapService) Dirty() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.dirty
}

// Version returns the map version counter
func (s *MapService) Version() uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.version
}

// Cell mutations

// UpsertCell merges u into the cell at (x, y, layer), creating it from the
// defaults when there is no record yet.
func (s *MapService) UpsertCell(x, y, layer int, u models.CellUpdate) Outcome {
	return s.apply(func() (Outcome, *Change) {
		k := models.CellKey{X: x, Y: y, Layer: layer}
		if !s.inBounds(k) {
			return OutcomeOutOfBounds, nil
		}
		if u.Terrain != nil && !u.Terrain.Valid() {
			return OutcomeInvalid, nil
		}
		s.cells = s.cells.With(u.Apply(s.cells.Resolve(k)))
		c := s.changed(ChangeCell)
		c.Cell = &k
		return OutcomeOK, c
	})
}

// TogglePassability flips passable and couples the terrain to it: passable
// cells become grass, impassable cells become rock.
func (s *MapService) TogglePassability(x, y, layer int) Outcome {
	return s.apply(func() (Outcome, *Change) {
		k := models.CellKey{X: x, Y: y, Layer: layer}
		if !s.inBounds(k) {
			return OutcomeOutOfBounds, nil
		}
		cell := s.cells.Resolve(k)
		cell.Passable = !cell.Passable
		if cell.Passable {
			cell.Terrain = models.TerrainGrass
		} else {
			cell.Terrain = models.TerrainRock
		}
		s.cells = s.cells.With(cell)
		c := s.changed(ChangeCell)
		c.Cell = &k
		return OutcomeOK, c
	})
}

// PaintTerrain sets the terrain of a cell and derives passable from the catalog
func (s *MapService) PaintTerrain(x, y, layer int, kind models.TerrainKind) Outcome {
	return s.apply(func() (Outcome, *Change) {
		k := models.CellKey{X: x, Y: y, Layer: layer}
		if !s.inBounds(k) {
			return OutcomeOutOfBounds, nil
		}
		if !kind.Valid() {
			return OutcomeInvalid, nil
		}
		cell := s.cells.Resolve(k)
		cell.Terrain = kind
		cell.Passable = kind.Passable()
		s.cells = s.cells.With(cell)
		c := s.changed(ChangeCell)
		c.Cell = &k
		return OutcomeOK, c
	})
}

// ClearContent removes the spawner and game object of a cell. Terrain and
// passability are untouched.
func (s *MapService) ClearContent(x, y, layer int) Outcome {
	return s.apply(func() (Outcome, *Change) {
		k := models.CellKey{X: x, Y: y, Layer: layer}
		if !s.inBounds(k) {
			return OutcomeOutOfBounds, nil
		}
		cell, ok := s.cells.Get(k)
		if !ok || !cell.HasContent() {
			return OutcomeOK, nil
		}
		cell.Spawner = nil
		cell.GameObject = nil
		s.cells = s.cells.With(cell)
		c := s.changed(ChangeCell)
		c.Cell = &k
		return OutcomeOK, c
	})
}

// PlaceSpawner puts a spawner on a passable cell
func (s *MapService) PlaceSpawner(x, y, layer int, spawner models.Content) Outcome {
	return s.place(x, y, layer, func(cell *models.Cell) bool {
		if spawner.Kind == "" {
			return false
		}
		cell.Spawner = &spawner
		return true
	})
}

// PlaceGameObject puts a game object on a passable cell
func (s *MapService) PlaceGameObject(x, y, layer int, obj models.Content) Outcome {
	return s.place(x, y, layer, func(cell *models.Cell) bool {
		if obj.Kind == "" {
			return false
		}
		cell.GameObject = &obj
		return true
	})
}

// SetOccupant marks a passable cell as occupied by occupantID
func (s *MapService) SetOccupant(x, y, layer int, occupantID string) Outcome {
	return s.place(x, y, layer, func(cell *models.Cell) bool {
		cell.Occupied = true
		cell.OccupantID = occupantID
		return true
	})
}

// ClearOccupant marks a cell as unoccupied
func (s *MapService) ClearOccupant(x, y, layer int) Outcome {
	return s.apply(func() (Outcome, *Change) {
		k := models.CellKey{X: x, Y: y, Layer: layer}
		if !s.inBounds(k) {
			return OutcomeOutOfBounds, nil
		}
		cell, ok := s.cells.Get(k)
		if !ok || (!cell.Occupied && cell.OccupantID == "") {
			return OutcomeOK, nil
		}
		cell.Occupied = false
		cell.OccupantID = ""
		s.cells = s.cells.With(cell)
		c := s.changed(ChangeCell)
		c.Cell = &k
		return OutcomeOK, c
	})
}

// place applies edit to a passable in-bounds cell; edit returns false for bad input
func (s *MapService) place(x, y, layer int, edit func(*models.Cell) bool) Outcome {
	return s.apply(func() (Outcome, *Change) {
		k := models.CellKey{X: x, Y: y, Layer: layer}
		if !s.inBounds(k) {
			return OutcomeOutOfBounds, nil
		}
		cell := s.cells.Resolve(k)
		if !cell.Passable {
			return OutcomeImpassable, nil
		}
		if !edit(&cell) {
			return OutcomeInvalid, nil
		}
		s.cells = s.cells.With(cell)
		c := s.changed(ChangeCell)
		c.Cell = &k
		return OutcomeOK, c
	})
}

// Edge mutations

// ToggleEdge flips the blocked flag of the edge leaving (x, y, layer) in
// direction dir. When no edge has been recorded yet the first toggle creates
// it blocked. Targets outside the grid and impassable endpoints are rejected.
func (s *MapService) ToggleEdge(x, y, layer int, dir models.Direction) Outcome {
	return s.apply(func() (Outcome, *Change) {
		id, outcome := s.checkEdgeLocked(x, y, layer, dir)
		if outcome != OutcomeOK {
			return outcome, nil
		}
		edge, ok := s.edges.Get(id)
		if ok {
			edge.Blocked = !edge.Blocked
		} else {
			edge = models.NewEdge(id.From(), dir, true)
		}
		s.edges = s.edges.With(edge)
		c := s.changed(ChangeEdge)
		c.Edge = &id
		return OutcomeOK, c
	})
}

// SetEdgeBlocked sets the blocked flag of an edge, creating it when missing
func (s *MapService) SetEdgeBlocked(x, y, layer int, dir models.Direction, blocked bool) Outcome {
	return s.apply(func() (Outcome, *Change) {
		id, outcome := s.checkEdgeLocked(x, y, layer, dir)
		if outcome != OutcomeOK {
			return outcome, nil
		}
		edge, ok := s.edges.Get(id)
		if ok && edge.Blocked == blocked {
			return OutcomeOK, nil
		}
		if !ok {
			edge = models.NewEdge(id.From(), dir, blocked)
		}
		edge.Blocked = blocked
		s.edges = s.edges.With(edge)
		c := s.changed(ChangeEdge)
		c.Edge = &id
		return OutcomeOK, c
	})
}

func (s *MapService) checkEdgeLocked(x, y, layer int, dir models.Direction) (models.EdgeID, Outcome) {
	if !dir.Valid() {
		return models.EdgeID{}, OutcomeInvalid
	}
	from := models.CellKey{X: x, Y: y, Layer: layer}
	id := models.EdgeBetween(from, dir)
	if !s.inBounds(from) || !s.inBounds(id.To()) {
		return id, OutcomeOutOfBounds
	}
	if !s.cells.Passable(from) || !s.cells.Passable(id.To()) {
		return id, OutcomeImpassable
	}
	return id, OutcomeOK
}

// AutoGenerateEdges replaces every edge with open edges between passable
// neighbours on active layers and returns the new edge count. Hand-blocked
// edges are discarded.
func (s *MapService) AutoGenerateEdges() int {
	var count int
	s.apply(func() (Outcome, *Change) {
		s.edges = NewEdgeStore(GenerateEdges(s.grid, s.layers, s.cells))
		count = s.edges.Len()
		return OutcomeOK, s.changed(ChangeEdgesRebuilt)
	})
	s.log.Info("edges regenerated", zap.Int("edges", count))
	return count
}

// Layer and grid mutations

// LayerUpdate lists layer fields to change; nil fields are left alone
type LayerUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	VisualStyle *string  `json:"visualStyle,omitempty"`
	EnergyCost  *float64 `json:"energyCost,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// UpdateLayer changes the descriptive fields or active flag of a layer
func (s *MapService) UpdateLayer(id int, u LayerUpdate) Outcome {
	return s.apply(func() (Outcome, *Change) {
		if !models.ValidLayer(id) {
			return OutcomeInvalid, nil
		}
		layers := make([]models.Layer, len(s.layers))
		copy(layers, s.layers)
		l := &layers[id]
		if u.Name != nil {
			l.Name = *u.Name
		}
		if u.Description != nil {
			l.Description = *u.Description
		}
		if u.VisualStyle != nil {
			l.VisualStyle = *u.VisualStyle
		}
		if u.EnergyCost != nil {
			l.EnergyCost = *u.EnergyCost
		}
		if u.Active != nil {
			l.Active = *u.Active
		}
		s.layers = layers
		c := s.changed(ChangeLayer)
		c.Layer = &id
		return OutcomeOK, c
	})
}

// SetLayerActive turns edge generation for a layer on or off
func (s *MapService) SetLayerActive(id int, active bool) Outcome {
	return s.UpdateLayer(id, LayerUpdate{Active: &active})
}

// UpdateGrid replaces the grid geometry. Cells and edges that no longer fit
// are removed.
func (s *MapService) UpdateGrid(grid models.GridConfig) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	var prunedCells, prunedEdges int
	s.apply(func() (Outcome, *Change) {
		cells := s.cells.Filter(func(c models.Cell) bool { return grid.InBounds(c.X, c.Y) })
		edges := s.edges.Filter(func(e models.Edge) bool { return edgeInBounds(grid, e) })
		prunedCells = s.cells.Len() - cells.Len()
		prunedEdges = s.edges.Len() - edges.Len()
		s.grid = grid
		s.cells = cells
		s.edges = edges
		return OutcomeOK, s.changed(ChangeGrid)
	})
	s.log.Info("grid updated",
		zap.Int("columns", grid.Columns),
		zap.Int("rows", grid.Rows),
		zap.Int("pruned_cells", prunedCells),
		zap.Int("pruned_edges", prunedEdges))
	return nil
}

// MetadataUpdate lists metadata fields to change; nil fields are left alone
type MetadataUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Author      *string   `json:"author,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Background  *string   `json:"backgroundImage,omitempty"`
}

// UpdateMetadata edits the descriptive metadata and background image
func (s *MapService) UpdateMetadata(u MetadataUpdate) {
	s.apply(func() (Outcome, *Change) {
		meta := s.meta
		if u.Name != nil {
			meta.Name = *u.Name
		}
		if u.Author != nil {
			meta.Author = *u.Author
		}
		if u.Description != nil {
			meta.Description = *u.Description
		}
		if u.Tags != nil {
			meta.Tags = append([]string(nil), (*u.Tags)...)
		}
		if u.Background != nil {
			s.background = *u.Background
		}
		s.meta = meta
		return OutcomeOK, s.changed(ChangeMetadata)
	})
}

// Lifecycle

// NewMap discards the current map and starts an empty one
func (s *MapService) NewMap(name, author string, grid models.GridConfig) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	s.apply(func() (Outcome, *Change) {
		s.install(models.NewMapData(name, author, grid, s.now()))
		return OutcomeOK, s.loadedChange()
	})
	s.log.Info("new map", zap.String("name", name), zap.Int("columns", grid.Columns), zap.Int("rows", grid.Rows))
	return nil
}

// Reset replaces the map with the default empty map
func (s *MapService) Reset() {
	s.apply(func() (Outcome, *Change) {
		s.install(models.NewMapData("Untitled", "", models.DefaultGridConfig(), s.now()))
		s.editor = DefaultEditorState()
		return OutcomeOK, s.loadedChange()
	})
}

// Load replaces the map with m, migrating legacy documents first. The new map
// starts clean with no selection.
func (s *MapService) Load(m *models.MapData) error {
	migrated, err := MigrateMapToV2(m, s.now())
	if err != nil {
		s.log.Error("map migration failed", zap.Error(err))
		return err
	}
	if migrated != m {
		s.log.Info("migrated legacy map",
			zap.String("from_version", m.Version),
			zap.Int("cells", len(migrated.Cells)),
			zap.Int("edges", len(migrated.Edges)))
	}
	if err := migrated.Grid.Validate(); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	if err := ValidateDocument(migrated); err != nil {
		s.log.Warn("map rejected", zap.Error(err))
		return err
	}

	s.apply(func() (Outcome, *Change) {
		s.install(migrated)
		return OutcomeOK, s.loadedChange()
	})
	s.log.Info("map loaded", zap.String("name", migrated.Metadata.Name))
	return nil
}

// Import parses and loads a JSON document. Failures are logged and reported
// as false so the caller can ask for another file.
func (s *MapService) Import(data []byte) bool {
	m, err := ParseImport(data)
	if err != nil {
		s.log.Warn("map import rejected", zap.Error(err))
		return false
	}
	if err := s.Load(m); err != nil {
		s.log.Warn("map import failed", zap.Error(err))
		return false
	}
	return true
}

// Export encodes the current map as indented JSON
func (s *MapService) Export() ([]byte, error) {
	return json.MarshalIndent(s.Snapshot(), "", "  ")
}

// MarkSaved acknowledges that the current map has been persisted elsewhere
func (s *MapService) MarkSaved() {
	s.apply(func() (Outcome, *Change) {
		s.dirty = false
		return OutcomeOK, &Change{Kind: ChangeSaved, Version: s.version}
	})
}

// Save writes the map to storage under name and clears the dirty flag
func (s *MapService) Save(name string) error {
	if s.db == nil {
		return ErrNoStorage
	}

	s.mutex.Lock()
	s.meta.Modified = s.now()
	s.meta.Version = models.CurrentVersion
	snap := s.snapshotLocked()
	version := s.version
	s.mutex.Unlock()

	if err := s.db.SaveMap(name, snap); err != nil {
		s.log.Error("map save failed", zap.String("name", name), zap.Error(err))
		return fmt.Errorf("save map %s: %w", name, err)
	}

	s.apply(func() (Outcome, *Change) {
		// a mutation between snapshot and write keeps the map dirty
		if s.version != version {
			return OutcomeOK, nil
		}
		s.dirty = false
		return OutcomeOK, &Change{Kind: ChangeSaved, Version: s.version}
	})

	s.log.Info("map saved", zap.String("name", name), zap.Int("cells", len(snap.Cells)), zap.Int("edges", len(snap.Edges)))
	return nil
}

// LoadFromStorage loads the map stored under name
func (s *MapService) LoadFromStorage(name string) error {
	if s.db == nil {
		return ErrNoStorage
	}
	m, err := s.db.LoadMap(name)
	if err != nil {
		return err
	}
	return s.Load(m)
}

// DeleteStored removes a map from storage. The map being edited is kept.
func (s *MapService) DeleteStored(name string) error {
	if s.db == nil {
		return ErrNoStorage
	}
	if err := s.db.DeleteMap(name); err != nil {
		return err
	}
	s.log.Info("stored map deleted", zap.String("name", name))
	return nil
}

// ListStored lists the maps in storage
func (s *MapService) ListStored() ([]persistence.MapSummary, error) {
	if s.db == nil {
		return nil, ErrNoStorage
	}
	return s.db.ListMaps()
}

// Editor state

// Editor returns the current mode and tool
func (s *MapService) Editor() EditorState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.editor
}

// SetMode switches editor mode and resets the tool to the mode's default
func (s *MapService) SetMode(mode EditorMode) error {
	var err error
	s.apply(func() (Outcome, *Change) {
		var next EditorState
		if next, err = s.editor.WithMode(mode); err != nil {
			return OutcomeInvalid, nil
		}
		s.editor = next
		return OutcomeOK, &Change{Kind: ChangeEditor, Version: s.version, Dirty: s.dirty}
	})
	return err
}

// SetTool selects a tool of the current mode
func (s *MapService) SetTool(tool EditorTool) error {
	var err error
	s.apply(func() (Outcome, *Change) {
		var next EditorState
		if next, err = s.editor.WithTool(tool); err != nil {
			return OutcomeInvalid, nil
		}
		s.editor = next
		return OutcomeOK, &Change{Kind: ChangeEditor, Version: s.version, Dirty: s.dirty}
	})
	return err
}

// Select marks a cell as selected
func (s *MapService) Select(x, y, layer int) Outcome {
	return s.apply(func() (Outcome, *Change) {
		k := models.CellKey{X: x, Y: y, Layer: layer}
		if !s.inBounds(k) {
			return OutcomeOutOfBounds, nil
		}
		s.selection = &k
		return OutcomeOK, &Change{Kind: ChangeEditor, Version: s.version, Dirty: s.dirty, Cell: &k}
	})
}

// ClearSelection drops the selected cell
func (s *MapService) ClearSelection() {
	s.apply(func() (Outcome, *Change) {
		if s.selection == nil {
			return OutcomeOK, nil
		}
		s.selection = nil
		return OutcomeOK, &Change{Kind: ChangeEditor, Version: s.version, Dirty: s.dirty}
	})
}

// Selection returns the selected cell, if any
func (s *MapService) Selection() (models.CellKey, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.selection == nil {
		return models.CellKey{}, false
	}
	return *s.selection, true
}
