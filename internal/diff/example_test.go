// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff_test

import (
	"fmt"

	"github.com/nhancris/KPresent/internal/diff"
	"github.com/nhancris/KPresent/internal/model"
)

func ExampleFormatUnifiedDiff() {
	d := diff.ComputeDiff("notes", "line1\nline2\nline3", "line1\nmodified\nline3")
	fmt.Print(diff.FormatUnifiedDiff(d))

	// Output:
	// --- a/notes
	// +++ b/notes
	// @@ -1,3 +1,3 @@
	//  line1
	// -line2
	// +modified
	//  line3
}

func ExampleCompareSlides() {
	before := model.Slide{ID: "id-1", Title: "Benefits of Solar", SpeakerNotes: "Cost.\nScale."}
	after := model.Slide{ID: "id-1", Title: "Benefits of Solar", SpeakerNotes: "Cost.\nScale.\nJobs."}

	fmt.Println(diff.CompareSlides(before, after).Summary())
	// Output:
	// title unchanged, notes +1, svg unchanged
}
