package services

import (
	"errors"
	"fmt"
)

// ErrInvalidTool is returned when a tool is not offered by the current mode
var ErrInvalidTool = errors.New("tool not available in mode")

// EditorMode selects which kind of editing the session is doing. It does not
// change map data.
type EditorMode string

const (
	ModeAvailability EditorMode = "availability"
	ModeObject       EditorMode = "object"
	ModePath         EditorMode = "path"
	ModeConfig       EditorMode = "config"
)

// EditorTool is the active tool within a mode
type EditorTool string

const (
	ToolToggle     EditorTool = "toggle"
	ToolPaint      EditorTool = "paint"
	ToolSelect     EditorTool = "select"
	ToolSpawner    EditorTool = "spawner"
	ToolGameObject EditorTool = "game_object"
	ToolOccupant   EditorTool = "occupant"
	ToolErase      EditorTool = "erase"
	ToolEdge       EditorTool = "edge"
	ToolEdgeBrush  EditorTool = "edge_brush"
	ToolGrid       EditorTool = "grid"
	ToolLayers     EditorTool = "layers"
)

// modeTools lists the tools of each mode; the first one is the default
var modeTools = map[EditorMode][]EditorTool{
	ModeAvailability: {ToolToggle, ToolPaint},
	ModeObject:       {ToolSelect, ToolSpawner, ToolGameObject, ToolOccupant, ToolErase},
	ModePath:         {ToolEdge, ToolEdgeBrush},
	ModeConfig:       {ToolGrid, ToolLayers},
}

// EditorState is the informational mode/tool pair of an editing session
type EditorState struct {
	Mode EditorMode `json:"mode"`
	Tool EditorTool `json:"tool"`
}

// DefaultEditorState starts in availability mode with the toggle tool
func DefaultEditorState() EditorState {
	return EditorState{Mode: ModeAvailability, Tool: ToolToggle}
}

// WithMode switches mode and resets the tool to the mode's default
func (e EditorState) WithMode(mode EditorMode) (EditorState, error) {
	tools, ok := modeTools[mode]
	if !ok {
		return e, fmt.Errorf("unknown editor mode %q", mode)
	}
	return EditorState{Mode: mode, Tool: tools[0]}, nil
}

// WithTool selects a tool offered by the current mode
func (e EditorState) WithTool(tool EditorTool) (EditorState, error) {
	for _, t := range modeTools[e.Mode] {
		if t == tool {
			e.Tool = tool
			return e, nil
		}
	}
	return e, fmt.Errorf("%w: %q in %s", ErrInvalidTool, tool, e.Mode)
}

// Tools returns the tools of the current mode
func (e EditorState) Tools() []EditorTool {
	return append([]EditorTool(nil), modeTools[e.Mode]...)
}
