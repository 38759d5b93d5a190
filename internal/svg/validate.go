// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package svg

import (
	"errors"
	"strings"
)

// ErrNotSVG is returned when a document does not open with an svg root tag
// and close with its matching end tag.
var ErrNotSVG = errors.New("document is not an svg root element")

// CheckDocument performs the structural sanity check applied to remote
// output. It is not a schema validation.
func CheckDocument(doc string) error {
	if !strings.HasPrefix(doc, "<svg") || !strings.HasSuffix(doc, "</svg>") {
		return ErrNotSVG
	}
	return nil
}
