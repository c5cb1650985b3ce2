package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tabletop-map/server/models"
)

// requiredImportKeys are the top-level keys every imported document must have.
// edges is optional because version 1 documents do not carry it.
var requiredImportKeys = []string{"version", "metadata", "grid", "layers", "cells"}

// ValidationError reports a malformed import document
type ValidationError struct {
	Missing []string
	Err     error
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "invalid map document: missing " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("invalid map document: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseImport decodes an exported or legacy map document after checking that
// the required top-level keys are present
func ParseImport(data []byte) (*models.MapData, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Err: err}
	}

	var missing []string
	for _, key := range requiredImportKeys {
		if v, ok := raw[key]; !ok || string(v) == "null" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	var m models.MapData
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ValidationError{Err: err}
	}
	if err := ValidateDocument(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ValidateDocument rejects documents whose content cannot be installed as is:
// an empty layer list or a cell naming a terrain outside the catalog. Legacy
// cells without a terrain are accepted because migration assigns one.
func ValidateDocument(m *models.MapData) error {
	if len(m.Layers) == 0 {
		return &ValidationError{Err: errors.New("layer list is empty")}
	}
	for _, c := range m.Cells {
		if c.Terrain != "" && !c.Terrain.Valid() {
			return &ValidationError{Err: fmt.Errorf("cell %s: unknown terrain %q", c.Key(), c.Terrain)}
		}
	}
	return nil
}
