// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides presentation persistence for kpresent.
//
// Two backends implement the same Store contract: FileStore keeps one JSON
// document per presentation in a directory, and SQLiteStore keeps them in a
// single pure-Go SQLite database.
//
// # Key Types
//
//   - Store: Persistence contract shared by both backends
//   - FileStore: One JSON file per presentation, atomic writes
//   - SQLiteStore: SQLite table keyed by presentation id
//   - Summary: Lightweight metadata for listing
//
// # Usage
//
// Save and reload a presentation:
//
//	store, err := storage.NewFileStore(dir)
//	id, err := store.Save(p)
//	p, err = store.Load(id)
//
// List and search:
//
//	all, err := store.List()
//	hits, err := store.Search("renewable")
//
// # Storage Location
//
// FileStore defaults to ~/.kpresent/presentations/.
package storage
