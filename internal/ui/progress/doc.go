// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package progress is the terminal display shown while a deck is assembled.
//
// # Key Types
//
//   - Model: bubbletea model with a spinner, a progress bar and the titles
//     of the most recent slides
//   - SlideMsg, DoneMsg: messages fed to the model
//
// # Usage
//
//	err := progress.Run(ctx, os.Stdin, os.Stdout, "Generating", 5,
//	    func(ctx context.Context, report progress.Reporter) error {
//	        req.OnProgress = func(ev deck.Event) {
//	            report(progress.SlideMsg{Index: ev.Index, Total: ev.Total, Title: ev.Slide.Title})
//	        }
//	        _, err := asm.Assemble(ctx, req)
//	        return err
//	    })
//
// The display quits on DoneMsg. Pressing q, esc or ctrl+c cancels the work
// context and Run returns ErrCancelled.
package progress
