package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"tabletop-map/server/models"
)

// JSONStore handles map persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData represents the structure of the JSON file. Documents are kept
// raw so that loads never share memory with earlier saves.
type JSONData struct {
	Maps map[string]json.RawMessage `json:"maps"`
}

// NewJSONStore opens or creates the JSON file at filePath
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Maps: make(map[string]json.RawMessage),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		store.mutex.Lock()
		err := store.saveLocked()
		store.mutex.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Maps == nil {
		js.data.Maps = make(map[string]json.RawMessage)
	}
	return nil
}

// saveLocked writes through a temp file so a crash never leaves half a file
func (js *JSONStore) saveLocked() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(js.filePath), ".mapstore-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), js.filePath)
}

// SaveMap stores a map under name, replacing any previous one
func (js *JSONStore) SaveMap(name string, m *models.MapData) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal map %s: %w", name, err)
	}

	js.mutex.Lock()
	defer js.mutex.Unlock()

	js.data.Maps[name] = doc
	return js.saveLocked()
}

// LoadMap loads a map by name
func (js *JSONStore) LoadMap(name string) (*models.MapData, error) {
	js.mutex.RLock()
	doc, exists := js.data.Maps[name]
	js.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}

	var m models.MapData
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("failed to decode map %s: %w", name, err)
	}
	return &m, nil
}

// ListMaps returns a summary of every stored map sorted by name
func (js *JSONStore) ListMaps() ([]MapSummary, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	summaries := make([]MapSummary, 0, len(js.data.Maps))
	for name, doc := range js.data.Maps {
		var head struct {
			Version  string          `json:"version"`
			Metadata models.Metadata `json:"metadata"`
		}
		if err := json.Unmarshal(doc, &head); err != nil {
			return nil, fmt.Errorf("failed to decode map %s: %w", name, err)
		}
		summaries = append(summaries, MapSummary{
			Name:     name,
			Version:  head.Version,
			Modified: head.Metadata.Modified,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// DeleteMap removes a stored map
func (js *JSONStore) DeleteMap(name string) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	if _, exists := js.data.Maps[name]; !exists {
		return fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}
	delete(js.data.Maps, name)
	return js.saveLocked()
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
