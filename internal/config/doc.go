// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for kpresent.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - GenerationConfig: Mode, slide count, seed, concurrency and pacing
//   - RemoteConfig: Generative provider, credentials and guard limits
//   - StorageConfig: File or SQLite presentation store
//   - ServerConfig: HTTP API address, auth and CORS
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (KPRESENT_*, API_KEY)
//   - ~/.kpresent/config.toml
//   - ~/.kpresent/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Reload on change:
//
//	go config.Watch(ctx, path, func(cfg *config.Config, err error) {
//	    // swap in the new settings
//	})
package config
