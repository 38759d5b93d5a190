// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the kpresent command line.
//
// Commands generate presentations from a prompt, inspect and edit stored
// decks, export them, and run the HTTP API. Slide content comes from the
// remote provider when an API key is configured and is synthesized locally
// otherwise (or with --offline).
//
// # Key Types
//
//   - Command: enumeration of the commands
//   - Args: global flags plus an ArgParser over the command's arguments
//   - App: the generation pipeline (themes, orchestrator, assembler, store)
//     built from the configuration for one invocation
//   - Shell: the interactive editor behind "kpresent shell"
//
// # Usage
//
//	ctx := context.Background()
//	os.Exit(cli.Run(ctx, os.Args[1:], cli.StdStreams()))
//
// Every command supports --json, which wraps the result in a JSONResponse
// envelope. Errors map to exit codes through GetExitCode.
package cli
