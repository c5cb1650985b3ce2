package persistence

import (
	"errors"
	"time"

	"tabletop-map/server/models"
)

// ErrMapNotFound is returned when no map is stored under a name
var ErrMapNotFound = errors.New("map not found")

// MapSummary is the listing entry for a stored map
type MapSummary struct {
	Name     string    `json:"name"`
	Version  string    `json:"version"`
	Modified time.Time `json:"modified"`
}

// Storage defines the interface for map persistence. Stores keep documents as
// given, so legacy maps come back unmigrated.
type Storage interface {
	SaveMap(name string, m *models.MapData) error
	LoadMap(name string) (*models.MapData, error)
	ListMaps() ([]MapSummary, error)
	DeleteMap(name string) error
	Close() error
}
