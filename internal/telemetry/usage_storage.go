// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nhancris/KPresent/internal/util"
)

// =============================================================================
// USAGE STORAGE
// =============================================================================

// sessionTimeLayout is the timestamp prefix of session IDs.
const sessionTimeLayout = "20060102-150405"

// UsageStorage persists session usage as one JSON file per session.
type UsageStorage struct {
	dir string
}

// NewUsageStorage creates the storage directory if needed.
func NewUsageStorage(dir string) (*UsageStorage, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(homeDir, ".kpresent", "usage")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &UsageStorage{dir: dir}, nil
}

// Save persists a session.
func (us *UsageStorage) Save(session *SessionUsage) error {
	if session == nil {
		return nil
	}
	return util.AtomicWriteJSON(filepath.Join(us.dir, session.ID+".json"), session, 0644)
}

// Load reads a session.
func (us *UsageStorage) Load(sessionID string) (*SessionUsage, error) {
	data, err := os.ReadFile(filepath.Join(us.dir, sessionID+".json"))
	if err != nil {
		return nil, err
	}
	var session SessionUsage
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns the IDs of sessions started within [from, to], oldest first.
func (us *UsageStorage) List(from, to time.Time) ([]string, error) {
	entries, err := os.ReadDir(us.dir)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		id, ts, ok := parseSessionFile(entry)
		if !ok {
			continue
		}
		if ts.Before(from) || ts.After(to) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteBefore removes sessions started before the given time.
func (us *UsageStorage) DeleteBefore(before time.Time) error {
	entries, err := os.ReadDir(us.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		_, ts, ok := parseSessionFile(entry)
		if ok && ts.Before(before) {
			os.Remove(filepath.Join(us.dir, entry.Name())) // Ignore errors
		}
	}
	return nil
}

// Count returns the number of stored sessions.
func (us *UsageStorage) Count() (int, error) {
	entries, err := os.ReadDir(us.dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if _, _, ok := parseSessionFile(entry); ok {
			count++
		}
	}
	return count, nil
}

// parseSessionFile extracts the ID and start time from a session file name
// (YYYYMMDD-HHMMSS-counter.json). Times are parsed in local time, which is
// how they were formatted.
func parseSessionFile(entry os.DirEntry) (string, time.Time, bool) {
	if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
		return "", time.Time{}, false
	}
	id := strings.TrimSuffix(entry.Name(), ".json")
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return "", time.Time{}, false
	}
	ts, err := time.ParseInLocation(sessionTimeLayout, parts[0]+"-"+parts[1], time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	return id, ts, true
}
