package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tabletop-map/server/messages"
	"tabletop-map/server/models"
	"tabletop-map/server/network"
	"tabletop-map/server/persistence"
	"tabletop-map/server/services"
)

var sessionSeq atomic.Uint64

// EditorHandler manages the connection of the editing client
type EditorHandler struct {
	id       string
	conn     *network.Connection
	maps     *services.MapService
	sessions *SessionManager
	log      *zap.Logger
}

// HandleEditorConnection serves one editor client until it disconnects. A
// second client is turned away while another session owns the map.
func HandleEditorConnection(wsConn *websocket.Conn, maps *services.MapService, sessions *SessionManager, logger *zap.Logger) {
	id := fmt.Sprintf("session_%d", sessionSeq.Add(1))
	log := logger.With(zap.String("session", id))
	conn := network.NewConnection(wsConn, log)

	handler := &EditorHandler{
		id:       id,
		conn:     conn,
		maps:     maps,
		sessions: sessions,
		log:      log,
	}

	if !sessions.Acquire(id, handler) {
		log.Info("rejecting editor, map is locked", zap.String("owner", sessions.Owner()))
		handler.sendError("", "MAP_LOCKED", "another editor session owns the map")
		conn.Close()
		conn.WritePump()
		return
	}
	defer sessions.Release(id)

	log.Info("editor connected", zap.String("remote", wsConn.RemoteAddr().String()))

	unsubscribe := maps.Subscribe(func(c services.Change) {
		conn.SendMessage(messages.OutgoingMessage{Type: messages.MessageTypeMapChanged, Payload: c})
	})
	defer unsubscribe()

	go conn.WritePump()

	conn.SendMessage(messages.OutgoingMessage{
		Type:    messages.MessageTypeMapChanged,
		Payload: services.Change{Kind: services.ChangeLoaded, Version: maps.Version(), Dirty: maps.Dirty()},
	})

	conn.ReadPump(handler)

	log.Info("editor disconnected")
}

// HandleMessage dispatches one request from the client
func (h *EditorHandler) HandleMessage(conn *network.Connection, message []byte) {
	var msg messages.BaseMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.log.Warn("error unmarshaling message", zap.Error(err))
		h.sendError("", "BAD_MESSAGE", "message is not valid JSON")
		return
	}
	h.log.Debug("received", zap.String("type", string(msg.Type)), zap.String("id", msg.ID))

	switch msg.Type {
	case messages.MessageTypeGetSnapshot:
		h.reply(msg.ID, "", h.maps.Snapshot())
	case messages.MessageTypeGetCell:
		h.handleGetCell(msg)
	case messages.MessageTypeGetEdges:
		var p messages.CellMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, "", h.maps.EdgesFrom(p.X, p.Y, p.Layer))
		}
	case messages.MessageTypeGetView:
		h.handleGetView(msg)
	case messages.MessageTypeGetStats:
		h.reply(msg.ID, "", h.maps.Stats())
	case messages.MessageTypeGetTerrain:
		h.reply(msg.ID, "", terrainEntries())
	case messages.MessageTypeUpsertCell:
		var p messages.UpsertCellMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.UpsertCell(p.X, p.Y, p.Layer, p.Update), nil)
		}
	case messages.MessageTypeTogglePassability:
		var p messages.CellMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.TogglePassability(p.X, p.Y, p.Layer), nil)
		}
	case messages.MessageTypePaintTerrain:
		var p messages.PaintTerrainMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.PaintTerrain(p.X, p.Y, p.Layer, models.TerrainKind(p.Terrain)), nil)
		}
	case messages.MessageTypeClearContent:
		var p messages.CellMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.ClearContent(p.X, p.Y, p.Layer), nil)
		}
	case messages.MessageTypePlaceSpawner:
		var p messages.PlaceContentMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.PlaceSpawner(p.X, p.Y, p.Layer, p.Content), nil)
		}
	case messages.MessageTypePlaceGameObject:
		var p messages.PlaceContentMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.PlaceGameObject(p.X, p.Y, p.Layer, p.Content), nil)
		}
	case messages.MessageTypeSetOccupant:
		var p messages.OccupantMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.SetOccupant(p.X, p.Y, p.Layer, p.OccupantID), nil)
		}
	case messages.MessageTypeClearOccupant:
		var p messages.CellMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.ClearOccupant(p.X, p.Y, p.Layer), nil)
		}
	case messages.MessageTypeToggleEdge:
		var p messages.EdgeMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.ToggleEdge(p.X, p.Y, p.Layer, models.Direction(p.Direction)), nil)
		}
	case messages.MessageTypeSetEdgeBlocked:
		var p messages.EdgeMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.SetEdgeBlocked(p.X, p.Y, p.Layer, models.Direction(p.Direction), p.Blocked), nil)
		}
	case messages.MessageTypeGenerateEdges:
		count := h.maps.AutoGenerateEdges()
		h.reply(msg.ID, services.OutcomeOK, map[string]int{"edges": count})
	case messages.MessageTypeUpdateLayer:
		var p messages.LayerMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.UpdateLayer(p.ID, services.LayerUpdate{
				Name:        p.Name,
				Description: p.Description,
				VisualStyle: p.VisualStyle,
				EnergyCost:  p.EnergyCost,
				Active:      p.Active,
			}), nil)
		}
	case messages.MessageTypeUpdateGrid:
		var p models.GridConfig
		if h.decode(msg, &p) {
			h.replyErr(msg.ID, "GRID_REJECTED", h.maps.UpdateGrid(p))
		}
	case messages.MessageTypeUpdateMetadata:
		var p messages.MetadataMessage
		if h.decode(msg, &p) {
			h.maps.UpdateMetadata(services.MetadataUpdate{
				Name:        p.Name,
				Author:      p.Author,
				Description: p.Description,
				Tags:        p.Tags,
				Background:  p.BackgroundImage,
			})
			h.reply(msg.ID, services.OutcomeOK, h.maps.Metadata())
		}
	case messages.MessageTypeSetMode:
		var p messages.ModeMessage
		if h.decode(msg, &p) {
			err := h.maps.SetMode(services.EditorMode(p.Mode))
			h.replyErr(msg.ID, "MODE_REJECTED", err, editorState(h.maps.Editor()))
		}
	case messages.MessageTypeSetTool:
		var p messages.ModeMessage
		if h.decode(msg, &p) {
			err := h.maps.SetTool(services.EditorTool(p.Tool))
			h.replyErr(msg.ID, "TOOL_REJECTED", err, editorState(h.maps.Editor()))
		}
	case messages.MessageTypeSelect:
		var p messages.CellMessage
		if h.decode(msg, &p) {
			h.reply(msg.ID, h.maps.Select(p.X, p.Y, p.Layer), nil)
		}
	case messages.MessageTypeClearSelection:
		h.maps.ClearSelection()
		h.reply(msg.ID, services.OutcomeOK, nil)
	case messages.MessageTypeNewMap:
		h.handleNewMap(msg)
	case messages.MessageTypeImport:
		if !h.maps.Import(msg.Payload) {
			h.sendError(msg.ID, "IMPORT_FAILED", "map document is invalid or could not be migrated")
			return
		}
		h.reply(msg.ID, services.OutcomeOK, nil)
	case messages.MessageTypeExport:
		h.reply(msg.ID, "", h.maps.Snapshot())
	case messages.MessageTypeSave:
		h.handleSave(msg)
	case messages.MessageTypeLoad:
		var p messages.StorageMessage
		if h.decode(msg, &p) {
			h.replyErr(msg.ID, "LOAD_FAILED", h.maps.LoadFromStorage(p.Name))
		}
	case messages.MessageTypeListMaps:
		list, err := h.maps.ListStored()
		if err != nil {
			h.sendError(msg.ID, "LIST_FAILED", err.Error())
			return
		}
		h.reply(msg.ID, "", list)
	case messages.MessageTypeDeleteMap:
		var p messages.StorageMessage
		if h.decode(msg, &p) {
			h.replyErr(msg.ID, "DELETE_FAILED", h.maps.DeleteStored(p.Name))
		}
	default:
		h.log.Warn("unknown message type", zap.String("type", string(msg.Type)))
		h.sendError(msg.ID, "UNKNOWN_MESSAGE_TYPE", "Unknown message type received")
	}
}

func (h *EditorHandler) handleGetCell(msg messages.BaseMessage) {
	var p messages.CellMessage
	if !h.decode(msg, &p) {
		return
	}
	cell, stored := h.maps.CellAt(p.X, p.Y, p.Layer)
	h.reply(msg.ID, "", map[string]interface{}{
		"cell":   cell,
		"stored": stored,
		"edges":  h.maps.EdgesFrom(p.X, p.Y, p.Layer),
	})
}

func (h *EditorHandler) handleGetView(msg messages.BaseMessage) {
	var p messages.ViewMessage
	if !h.decode(msg, &p) {
		return
	}
	view, err := h.maps.View(p.Layer, p.CenterX, p.CenterY, p.Radius)
	if err != nil {
		h.sendError(msg.ID, "VIEW_FAILED", err.Error())
		return
	}
	h.reply(msg.ID, "", view)
}

func (h *EditorHandler) handleNewMap(msg messages.BaseMessage) {
	var p messages.NewMapMessage
	if !h.decode(msg, &p) {
		return
	}
	grid := models.DefaultGridConfig()
	if p.Grid != nil {
		grid = *p.Grid
	}
	if p.Name == "" {
		p.Name = "Untitled"
	}
	h.replyErr(msg.ID, "NEW_MAP_REJECTED", h.maps.NewMap(p.Name, p.Author, grid))
}

func (h *EditorHandler) handleSave(msg messages.BaseMessage) {
	var p messages.StorageMessage
	if !h.decode(msg, &p) {
		return
	}
	if p.Name == "" {
		p.Name = h.maps.Metadata().Name
	}
	h.replyErr(msg.ID, "SAVE_FAILED", h.maps.Save(p.Name))
}

// decode unpacks the payload into v, answering with an error when it does not fit
func (h *EditorHandler) decode(msg messages.BaseMessage, v interface{}) bool {
	payload := msg.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		h.log.Warn("error unmarshaling payload", zap.String("type", string(msg.Type)), zap.Error(err))
		h.sendError(msg.ID, "BAD_PAYLOAD", err.Error())
		return false
	}
	return true
}

func (h *EditorHandler) reply(id string, outcome services.Outcome, data interface{}) {
	if outcome != "" && !outcome.Applied() {
		h.log.Debug("mutation rejected", zap.String("id", id), zap.String("outcome", string(outcome)))
	}
	h.send(messages.OutgoingMessage{
		Type: messages.MessageTypeResult,
		ID:   id,
		Payload: messages.ResultMessage{
			Outcome: string(outcome),
			Version: h.maps.Version(),
			Dirty:   h.maps.Dirty(),
			Data:    data,
		},
	})
}

// replyErr answers with an error when err is set and an OK result otherwise
func (h *EditorHandler) replyErr(id, code string, err error, data ...interface{}) {
	if err != nil {
		if errors.Is(err, persistence.ErrMapNotFound) {
			code = "MAP_NOT_FOUND"
		}
		h.sendError(id, code, err.Error())
		return
	}
	var payload interface{}
	if len(data) > 0 {
		payload = data[0]
	}
	h.reply(id, services.OutcomeOK, payload)
}

func (h *EditorHandler) sendError(id, code, message string) {
	h.send(messages.OutgoingMessage{
		Type: messages.MessageTypeError,
		ID:   id,
		Payload: messages.ErrorMessage{
			Code:    code,
			Message: message,
		},
	})
}

func (h *EditorHandler) send(msg messages.OutgoingMessage) {
	if err := h.conn.SendMessage(msg); err != nil {
		h.log.Warn("error sending message", zap.String("type", string(msg.Type)), zap.Error(err))
	}
}

func editorState(e services.EditorState) messages.EditorStateMessage {
	tools := e.Tools()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = string(t)
	}
	return messages.EditorStateMessage{Mode: string(e.Mode), Tool: string(e.Tool), Tools: names}
}

func terrainEntries() []messages.TerrainEntry {
	entries := make([]messages.TerrainEntry, 0, len(models.TerrainKinds))
	for _, kind := range models.TerrainKinds {
		props := models.PropertiesOf(kind)
		entry := messages.TerrainEntry{
			Kind:        string(kind),
			Passable:    props.Passable(),
			Description: props.Description,
			VisualStyle: props.VisualStyle,
		}
		if props.Passable() {
			cost := props.MovementCost
			entry.MovementCost = &cost
		}
		entries = append(entries, entry)
	}
	return entries
}
