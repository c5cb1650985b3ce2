package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tabletop-map/server/messages"
	"tabletop-map/server/models"
	"tabletop-map/server/persistence"
	"tabletop-map/server/services"
)

func newTestServer(t *testing.T, db persistence.Storage) (*services.MapService, string) {
	t.Helper()
	maps := services.NewMapService(db, zap.NewNop())
	grid := models.GridConfig{CellWidth: 10, CellHeight: 10, Columns: 3, Rows: 3}
	if err := maps.NewMap("test", "tester", grid); err != nil {
		t.Fatalf("new map: %v", err)
	}
	sessions := NewSessionManager()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		HandleEditorConnection(conn, maps, sessions, zap.NewNop())
	}))
	t.Cleanup(srv.Close)

	return maps, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) messages.BaseMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg messages.BaseMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func sendRequest(t *testing.T, conn *websocket.Conn, typ messages.MessageType, id string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(messages.BaseMessage{Type: typ, ID: id, Payload: raw}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestEditorReceivesChangeThenResult(t *testing.T) {
	maps, url := newTestServer(t, nil)
	conn := dial(t, url)

	if msg := readMessage(t, conn); msg.Type != messages.MessageTypeMapChanged {
		t.Fatalf("expected initial map_changed, got %s", msg.Type)
	}

	sendRequest(t, conn, messages.MessageTypeTogglePassability, "req-1", messages.CellMessage{X: 1, Y: 1})

	changed := readMessage(t, conn)
	if changed.Type != messages.MessageTypeMapChanged {
		t.Fatalf("expected map_changed, got %s", changed.Type)
	}
	var change services.Change
	if err := json.Unmarshal(changed.Payload, &change); err != nil {
		t.Fatal(err)
	}
	if change.Kind != services.ChangeCell || !change.Dirty {
		t.Fatalf("unexpected change %+v", change)
	}

	result := readMessage(t, conn)
	if result.Type != messages.MessageTypeResult || result.ID != "req-1" {
		t.Fatalf("expected result for req-1, got %s %q", result.Type, result.ID)
	}
	var res messages.ResultMessage
	if err := json.Unmarshal(result.Payload, &res); err != nil {
		t.Fatal(err)
	}
	if res.Outcome != string(services.OutcomeOK) || res.Version != change.Version {
		t.Fatalf("unexpected result %+v", res)
	}

	if cell, _ := maps.CellAt(1, 1, 0); cell.Passable {
		t.Fatal("expected the cell to be impassable")
	}
}

func TestEditorRejectedMutationHasNoChange(t *testing.T) {
	_, url := newTestServer(t, nil)
	conn := dial(t, url)
	readMessage(t, conn)

	sendRequest(t, conn, messages.MessageTypeToggleEdge, "req-2", messages.EdgeMessage{
		CellMessage: messages.CellMessage{X: 0, Y: 0},
		Direction:   string(models.North),
	})

	msg := readMessage(t, conn)
	if msg.Type != messages.MessageTypeResult {
		t.Fatalf("expected result without a change, got %s", msg.Type)
	}
	var res messages.ResultMessage
	if err := json.Unmarshal(msg.Payload, &res); err != nil {
		t.Fatal(err)
	}
	if res.Outcome != string(services.OutcomeOutOfBounds) || res.Dirty {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEditorUnknownMessageType(t *testing.T) {
	_, url := newTestServer(t, nil)
	conn := dial(t, url)
	readMessage(t, conn)

	sendRequest(t, conn, "teleport", "req-3", struct{}{})

	msg := readMessage(t, conn)
	var e messages.ErrorMessage
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		t.Fatal(err)
	}
	if msg.Type != messages.MessageTypeError || e.Code != "UNKNOWN_MESSAGE_TYPE" {
		t.Fatalf("unexpected reply %s %+v", msg.Type, e)
	}
}

func TestSecondEditorIsTurnedAway(t *testing.T) {
	_, url := newTestServer(t, nil)
	first := dial(t, url)
	readMessage(t, first)

	second := dial(t, url)
	msg := readMessage(t, second)
	var e messages.ErrorMessage
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		t.Fatal(err)
	}
	if msg.Type != messages.MessageTypeError || e.Code != "MAP_LOCKED" {
		t.Fatalf("expected MAP_LOCKED, got %s %+v", msg.Type, e)
	}

	second.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := second.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected a normal close, got %v", err)
	}
}

func readResult(t *testing.T, conn *websocket.Conn, id string) messages.ResultMessage {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Type == messages.MessageTypeMapChanged {
			continue
		}
		if msg.Type != messages.MessageTypeResult || msg.ID != id {
			t.Fatalf("expected result for %s, got %s %q: %s", id, msg.Type, msg.ID, msg.Payload)
		}
		var res messages.ResultMessage
		if err := json.Unmarshal(msg.Payload, &res); err != nil {
			t.Fatal(err)
		}
		return res
	}
}

func TestEditorUpdateMetadataAndSelection(t *testing.T) {
	maps, url := newTestServer(t, nil)
	conn := dial(t, url)
	readMessage(t, conn)

	name := "Harbor"
	sendRequest(t, conn, messages.MessageTypeUpdateMetadata, "meta", messages.MetadataMessage{Name: &name})
	if res := readResult(t, conn, "meta"); res.Outcome != string(services.OutcomeOK) || !res.Dirty {
		t.Fatalf("unexpected result %+v", res)
	}
	if maps.Metadata().Name != name {
		t.Fatalf("expected name %q, got %q", name, maps.Metadata().Name)
	}

	sendRequest(t, conn, messages.MessageTypeSelect, "sel", messages.CellMessage{X: 2, Y: 2})
	readResult(t, conn, "sel")
	sendRequest(t, conn, messages.MessageTypeClearSelection, "clear", struct{}{})
	readResult(t, conn, "clear")
	if _, ok := maps.Selection(); ok {
		t.Fatal("expected the selection to be cleared")
	}
}

func TestEditorSetModeReturnsTools(t *testing.T) {
	_, url := newTestServer(t, nil)
	conn := dial(t, url)
	readMessage(t, conn)

	sendRequest(t, conn, messages.MessageTypeSetMode, "mode", messages.ModeMessage{Mode: string(services.ModePath)})
	res := readResult(t, conn, "mode")

	raw, err := json.Marshal(res.Data)
	if err != nil {
		t.Fatal(err)
	}
	var state messages.EditorStateMessage
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatal(err)
	}
	want := []string{string(services.ToolEdge), string(services.ToolEdgeBrush)}
	if state.Mode != string(services.ModePath) || state.Tool != want[0] || len(state.Tools) != 2 || state.Tools[1] != want[1] {
		t.Fatalf("unexpected editor state %+v", state)
	}
}

func TestEditorDeleteMap(t *testing.T) {
	db, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "maps.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	maps, url := newTestServer(t, db)
	if err := maps.Save("old"); err != nil {
		t.Fatalf("save: %v", err)
	}
	conn := dial(t, url)
	readMessage(t, conn)

	sendRequest(t, conn, messages.MessageTypeDeleteMap, "del", messages.StorageMessage{Name: "old"})
	readResult(t, conn, "del")
	if list, _ := db.ListMaps(); len(list) != 0 {
		t.Fatalf("expected the map to be deleted, got %+v", list)
	}

	sendRequest(t, conn, messages.MessageTypeDeleteMap, "again", messages.StorageMessage{Name: "old"})
	msg := readMessage(t, conn)
	var e messages.ErrorMessage
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		t.Fatal(err)
	}
	if msg.Type != messages.MessageTypeError || e.Code != "MAP_NOT_FOUND" {
		t.Fatalf("expected MAP_NOT_FOUND, got %s %+v", msg.Type, e)
	}
}
