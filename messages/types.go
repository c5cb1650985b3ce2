package messages

import (
	"encoding/json"

	"tabletop-map/server/models"
)

// MessageType defines the type of message being sent
type MessageType string

// Requests from the editor client
const (
	MessageTypeGetSnapshot       MessageType = "get_snapshot"
	MessageTypeGetCell           MessageType = "get_cell"
	MessageTypeGetEdges          MessageType = "get_edges"
	MessageTypeGetView           MessageType = "get_view"
	MessageTypeGetStats          MessageType = "get_stats"
	MessageTypeGetTerrain        MessageType = "get_terrain"
	MessageTypeUpsertCell        MessageType = "upsert_cell"
	MessageTypeTogglePassability MessageType = "toggle_passability"
	MessageTypePaintTerrain      MessageType = "paint_terrain"
	MessageTypeClearContent      MessageType = "clear_content"
	MessageTypePlaceSpawner      MessageType = "place_spawner"
	MessageTypePlaceGameObject   MessageType = "place_game_object"
	MessageTypeSetOccupant       MessageType = "set_occupant"
	MessageTypeClearOccupant     MessageType = "clear_occupant"
	MessageTypeToggleEdge        MessageType = "toggle_edge"
	MessageTypeSetEdgeBlocked    MessageType = "set_edge_blocked"
	MessageTypeGenerateEdges     MessageType = "generate_edges"
	MessageTypeUpdateLayer       MessageType = "update_layer"
	MessageTypeUpdateGrid        MessageType = "update_grid"
	MessageTypeUpdateMetadata    MessageType = "update_metadata"
	MessageTypeSetMode           MessageType = "set_mode"
	MessageTypeSetTool           MessageType = "set_tool"
	MessageTypeSelect            MessageType = "select"
	MessageTypeClearSelection    MessageType = "clear_selection"
	MessageTypeNewMap            MessageType = "new_map"
	MessageTypeImport            MessageType = "import"
	MessageTypeExport            MessageType = "export"
	MessageTypeSave              MessageType = "save"
	MessageTypeLoad              MessageType = "load"
	MessageTypeListMaps          MessageType = "list_maps"
	MessageTypeDeleteMap         MessageType = "delete_map"
)

// Messages from the server
const (
	MessageTypeResult     MessageType = "result"
	MessageTypeMapChanged MessageType = "map_changed"
	MessageTypeError      MessageType = "error"
)

// BaseMessage is the envelope for all messages. ID is echoed back in the
// result so clients can match replies to requests.
type BaseMessage struct {
	Type    MessageType     `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OutgoingMessage is the envelope for server messages
type OutgoingMessage struct {
	Type    MessageType `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// CellMessage addresses one cell
type CellMessage struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Layer int `json:"layer"`
}

// UpsertCellMessage merges fields into a cell
type UpsertCellMessage struct {
	CellMessage
	Update models.CellUpdate `json:"update"`
}

// PaintTerrainMessage sets the terrain of a cell
type PaintTerrainMessage struct {
	CellMessage
	Terrain string `json:"terrain"`
}

// PlaceContentMessage places a spawner or game object
type PlaceContentMessage struct {
	CellMessage
	Content models.Content `json:"content"`
}

// OccupantMessage sets the occupant of a cell
type OccupantMessage struct {
	CellMessage
	OccupantID string `json:"occupantId"`
}

// EdgeMessage addresses the edge leaving a cell in a direction
type EdgeMessage struct {
	CellMessage
	Direction string `json:"direction"` // north, south, east, west, northeast, northwest, southeast, southwest
	Blocked   bool   `json:"blocked"`   // set_edge_blocked only
}

// ViewMessage requests a window of cells
type ViewMessage struct {
	Layer   int `json:"layer"`
	CenterX int `json:"centerX"`
	CenterY int `json:"centerY"`
	Radius  int `json:"radius"`
}

// LayerMessage updates a layer
type LayerMessage struct {
	ID          int      `json:"id"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	VisualStyle *string  `json:"visualStyle,omitempty"`
	EnergyCost  *float64 `json:"energyCost,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// NewMapMessage starts a fresh map
type NewMapMessage struct {
	Name   string             `json:"name"`
	Author string             `json:"author"`
	Grid   *models.GridConfig `json:"grid,omitempty"`
}

// ModeMessage switches editor mode or tool
type ModeMessage struct {
	Mode string `json:"mode,omitempty"`
	Tool string `json:"tool,omitempty"`
}

// MetadataMessage edits map metadata; omitted fields are left alone
type MetadataMessage struct {
	Name            *string   `json:"name,omitempty"`
	Author          *string   `json:"author,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	BackgroundImage *string   `json:"backgroundImage,omitempty"`
}

// EditorStateMessage is the reply to set_mode and set_tool
type EditorStateMessage struct {
	Mode  string   `json:"mode"`
	Tool  string   `json:"tool"`
	Tools []string `json:"tools"`
}

// StorageMessage names a stored map
type StorageMessage struct {
	Name string `json:"name"`
}

// ResultMessage answers a request
type ResultMessage struct {
	Outcome string      `json:"outcome,omitempty"`
	Version uint64      `json:"version"`
	Dirty   bool        `json:"dirty"`
	Data    interface{} `json:"data,omitempty"`
}

// TerrainEntry describes one terrain kind; MovementCost is nil when impassable
type TerrainEntry struct {
	Kind         string   `json:"kind"`
	MovementCost *float64 `json:"movementCost,omitempty"`
	Passable     bool     `json:"passable"`
	Description  string   `json:"description"`
	VisualStyle  string   `json:"visualStyle"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
