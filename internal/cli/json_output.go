// json_output.go - JSON output for scripting.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/storage"
)

// JSONResponse is the envelope of every --json answer.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC 3339 time the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// ListData is the data of the list command.
type ListData struct {
	Presentations []storage.Summary `json:"presentations"`
	Count         int               `json:"count"`
	Query         string            `json:"query,omitempty"`
}

// PlanData is the data of the plan command.
type PlanData struct {
	Topic string       `json:"topic"`
	Items []PlanRecord `json:"items"`
}

// PlanRecord is one planned slide.
type PlanRecord struct {
	Number int              `json:"number"`
	Layout model.LayoutKind `json:"layout"`
	Focus  string           `json:"focus"`
}

// RegenerateData is the data of the regenerate command.
type RegenerateData struct {
	Presentation *model.Presentation `json:"presentation"`
	SlideID      string              `json:"slide_id"`
	Summary      string              `json:"summary"`
	Diff         string              `json:"diff,omitempty"`
}

// ExportData is the data of the export command.
type ExportData struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Bytes  int64  `json:"bytes"`
}

// RefineData is the data of the refine command.
type RefineData struct {
	Idea   string `json:"idea"`
	Prompt string `json:"prompt"`
}

// DeleteData is the data of the delete command.
type DeleteData struct {
	ID      string `json:"id,omitempty"`
	SlideID string `json:"slide_id,omitempty"`
	All     bool   `json:"all,omitempty"`
}
