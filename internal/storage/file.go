// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore keeps one JSON file per presentation.
type FileStore struct {
	// BaseDir is the directory for storing presentations
	// Default: ~/.kpresent/presentations/
	BaseDir string

	// MaxPresentations limits stored presentations (0 = unlimited)
	MaxPresentations int

	mu sync.Mutex
}

// DefaultDir returns ~/.kpresent/presentations.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kpresent", "presentations"), nil
}

// NewFileStore creates a store rooted at baseDir, creating it if needed.
// An empty baseDir uses DefaultDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{
		BaseDir:          baseDir,
		MaxPresentations: DefaultMaxPresentations,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a presentation and returns its ID.
func (s *FileStore) Save(p *model.Presentation) (string, error) {
	if err := prepare(p); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := util.AtomicWriteJSON(s.filePath(p.ID), p, 0644); err != nil {
		return "", fmt.Errorf("save presentation %s: %w", p.ID, err)
	}

	if s.MaxPresentations > 0 {
		s.enforceLimit()
	}
	return p.ID, nil
}

// enforceLimit removes the oldest presentations if over limit.
func (s *FileStore) enforceLimit() {
	metas, err := s.list()
	if err != nil || len(metas) <= s.MaxPresentations {
		return
	}
	// list is newest first.
	for _, m := range metas[s.MaxPresentations:] {
		os.Remove(s.filePath(m.ID))
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a presentation by ID.
func (s *FileStore) Load(id string) (*model.Presentation, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}

	var p model.Presentation
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode presentation %s: %w", id, err)
	}
	return &p, nil
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved presentations (most recent first).
func (s *FileStore) List() ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

func (s *FileStore) list() ([]Summary, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, err
	}

	metas := []Summary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // Skip corrupted files
		}
		metas = append(metas, Summarize(p))
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds presentations matching a query string.
func (s *FileStore) Search(query string) ([]Summary, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	results := []Summary{}
	for _, meta := range all {
		p, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		if strings.Contains(searchText(p), query) {
			results = append(results, meta)
		}
	}
	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a presentation by ID.
func (s *FileStore) Delete(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &NotFoundError{ID: id}
		}
		return err
	}
	return nil
}

// Clear removes all saved presentations.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	return nil
}

// filePath returns the file path for a presentation ID.
func (s *FileStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}
