// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Tones are the suggested presentation tones.
var Tones = []string{"Formal", "Casual", "Persuasive", "Informative", "Inspirational", "Humorous"}

// Styles are the suggested presentation styles.
var Styles = []string{"Minimalist", "Corporate", "Playful", "Artistic", "Bold", "Elegant"}

// SlideCountOptions are the slide counts offered by default.
var SlideCountOptions = []int{3, 5, 7, 10, 12, 15}

// DefaultSlideCount is used when no count is requested.
const DefaultSlideCount = 5
