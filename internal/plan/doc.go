// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan produces the structure of a presentation before any content
// is generated.
//
// A plan is an ordered list of (layout, focus) items. The first item is
// always a title slide. Body items draw focuses and layouts round-robin from
// fixed pools, and long decks get a section header halfway through the body.
// The planner reserves one slot for a conclusion but never adds it, pads or
// truncates: matching the requested count exactly is the assembler's job.
//
// # Key Types
//
//   - Planner: Focus and layout pools, with Plan producing the item list
//
// # Usage
//
//	topic := plan.DeriveTopic("The future of renewable energy, in 2030")
//	items := plan.Default().Plan(topic, 7)
//	for _, it := range items {
//	    fmt.Println(it.Layout, it.Focus)
//	}
package plan
