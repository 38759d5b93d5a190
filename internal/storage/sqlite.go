// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nhancris/KPresent/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS presentations (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	topic       TEXT NOT NULL,
	theme       TEXT NOT NULL,
	mode        TEXT NOT NULL,
	slide_count INTEGER NOT NULL,
	preview     TEXT NOT NULL,
	search_text TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL,
	data        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_presentations_updated ON presentations(updated_at);
`

const summaryColumns = `id, title, topic, theme, mode, slide_count, preview, created_at, updated_at`

// =============================================================================
// SQLITE STORE
// =============================================================================

// SQLiteStore keeps presentations in a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// MaxPresentations limits stored presentations (0 = unlimited)
	MaxPresentations int
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db, MaxPresentations: DefaultMaxPresentations}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save persists a presentation and returns its ID.
func (s *SQLiteStore) Save(p *model.Presentation) (string, error) {
	if err := prepare(p); err != nil {
		return "", err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := Summarize(p)

	_, err = s.db.Exec(`
		INSERT INTO presentations (id, title, topic, theme, mode, slide_count, preview, search_text, created_at, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			topic = excluded.topic,
			theme = excluded.theme,
			mode = excluded.mode,
			slide_count = excluded.slide_count,
			preview = excluded.preview,
			search_text = excluded.search_text,
			updated_at = excluded.updated_at,
			data = excluded.data`,
		sum.ID, sum.Title, sum.Topic, sum.Theme, string(sum.Mode), sum.SlideCount, sum.Preview,
		searchText(p), p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(), string(data))
	if err != nil {
		return "", fmt.Errorf("save presentation %s: %w", p.ID, err)
	}

	if s.MaxPresentations > 0 {
		if _, err := s.db.Exec(`
			DELETE FROM presentations WHERE id NOT IN (
				SELECT id FROM presentations ORDER BY updated_at DESC LIMIT ?
			)`, s.MaxPresentations); err != nil {
			return "", fmt.Errorf("enforce retention: %w", err)
		}
	}
	return p.ID, nil
}

// Load retrieves a presentation by ID.
func (s *SQLiteStore) Load(id string) (*model.Presentation, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRow(`SELECT data FROM presentations WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}

	var p model.Presentation
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode presentation %s: %w", id, err)
	}
	return &p, nil
}

// List returns all saved presentations (most recent first).
func (s *SQLiteStore) List() ([]Summary, error) {
	return s.query(`SELECT ` + summaryColumns + ` FROM presentations ORDER BY updated_at DESC`)
}

// Search finds presentations matching a query string.
func (s *SQLiteStore) Search(query string) ([]Summary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.List()
	}
	return s.query(`SELECT `+summaryColumns+` FROM presentations
		WHERE instr(search_text, ?) > 0 ORDER BY updated_at DESC`, query)
}

// Delete removes a presentation by ID.
func (s *SQLiteStore) Delete(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	res, err := s.db.Exec(`DELETE FROM presentations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

// Clear removes all saved presentations.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM presentations`)
	return err
}

func (s *SQLiteStore) query(q string, args ...any) ([]Summary, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum              Summary
			mode             string
			created, updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Topic, &sum.Theme, &mode,
			&sum.SlideCount, &sum.Preview, &created, &updated); err != nil {
			return nil, err
		}
		sum.Mode = model.GenerationMode(mode)
		sum.CreatedAt = time.Unix(0, created).UTC()
		sum.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
