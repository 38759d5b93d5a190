// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/nhancris/KPresent/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports presentations to JSON format.
// NOTE: JSON exports always include the complete presentation and ignore the
// filtering options, so the output can be loaded back.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a presentation to JSON format.
func (e *JSONExporter) Export(p *model.Presentation) ([]byte, error) {
	if p == nil {
		return nil, ErrNilPresentation
	}
	return json.MarshalIndent(p, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}

// =============================================================================
// PPTX
// =============================================================================

// PPTXExporter reserves the pptx format name. Every export fails.
type PPTXExporter struct{}

// Export always returns ErrUnsupported.
func (PPTXExporter) Export(*model.Presentation) ([]byte, error) {
	return nil, ErrUnsupported
}

// FileExtension returns the file extension for PowerPoint.
func (PPTXExporter) FileExtension() string {
	return ".pptx"
}

// MimeType returns the MIME type for PowerPoint.
func (PPTXExporter) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
}
