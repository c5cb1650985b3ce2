package services

import "tabletop-map/server/models"

// Outcome is the result of a mutation that can be rejected. Rejections leave
// the map untouched and are not errors.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeOutOfBounds Outcome = "out_of_bounds"
	OutcomeImpassable  Outcome = "impassable"
	OutcomeInvalid     Outcome = "invalid"
)

// Applied reports whether the operation was accepted
func (o Outcome) Applied() bool {
	return o == OutcomeOK
}

// ChangeKind says which part of the map a change touched
type ChangeKind string

const (
	ChangeCell         ChangeKind = "cell"
	ChangeEdge         ChangeKind = "edge"
	ChangeEdgesRebuilt ChangeKind = "edges_rebuilt"
	ChangeLayer        ChangeKind = "layer"
	ChangeGrid         ChangeKind = "grid"
	ChangeMetadata     ChangeKind = "metadata"
	ChangeLoaded       ChangeKind = "loaded"
	ChangeSaved        ChangeKind = "saved"
	ChangeEditor       ChangeKind = "editor"
)

// Change is sent to subscribers once per applied mutation. Version is the map
// version after the change; it only moves for changes to map data.
type Change struct {
	Kind    ChangeKind      `json:"kind"`
	Version uint64          `json:"version"`
	Dirty   bool            `json:"dirty"`
	Cell    *models.CellKey `json:"cell,omitempty"`
	Edge    *models.EdgeID  `json:"edge,omitempty"`
	Layer   *int            `json:"layer,omitempty"`
}
