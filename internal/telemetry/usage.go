// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nhancris/KPresent/internal/util"
)

// =============================================================================
// USAGE TRACKER
// =============================================================================

// maxSlowest is how many of the slowest slides a session keeps.
const maxSlowest = 10

// sessionIDCounter ensures unique session IDs even when created rapidly
var sessionIDCounter uint64

// UsageTracker tracks how slides were produced across sessions.
type UsageTracker struct {
	mu        sync.RWMutex
	sessions  map[string]*SessionUsage
	currentID string
	storage   *UsageStorage
}

// SessionUsage holds the counts for a single session.
type SessionUsage struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// Slide counts by source
	Offline  int `json:"offline"`
	Remote   int `json:"remote"`
	Fallback int `json:"fallback"`

	// Decks assembled, and decks that failed or were cancelled
	Decks       int `json:"decks"`
	FailedDecks int `json:"failed_decks"`

	// Time spent producing slides
	SlideTime time.Duration `json:"slide_time"`

	Slowest []SlideTiming `json:"slowest"`
	Prompts []string      `json:"prompts"`
}

// Slides returns the total slide count.
func (s *SessionUsage) Slides() int {
	return s.Offline + s.Remote + s.Fallback
}

// SlideTiming is one slide's production time.
type SlideTiming struct {
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"`
	Layout    string        `json:"layout"`
	Duration  time.Duration `json:"duration"`
}

// UsageTrends aggregates usage over a window of days.
type UsageTrends struct {
	Days           int            `json:"days"`
	Slides         int            `json:"slides"`
	Decks          int            `json:"decks"`
	DailyBreakdown []DailyUsage   `json:"daily_breakdown"`
	SourceTotals   map[string]int `json:"source_totals"`
}

// DailyUsage is one day of usage.
type DailyUsage struct {
	Date   time.Time `json:"date"`
	Slides int       `json:"slides"`
	Decks  int       `json:"decks"`
}

// NewUsageTracker creates a tracker persisting to dir (default
// ~/.kpresent/usage).
func NewUsageTracker(dir string) (*UsageTracker, error) {
	storage, err := NewUsageStorage(dir)
	if err != nil {
		return nil, err
	}

	ut := &UsageTracker{
		sessions:  make(map[string]*SessionUsage),
		currentID: generateSessionID(),
		storage:   storage,
	}
	ut.sessions[ut.currentID] = newSession(ut.currentID)
	return ut, nil
}

func newSession(id string) *SessionUsage {
	return &SessionUsage{
		ID:        id,
		StartTime: time.Now(),
		Slowest:   make([]SlideTiming, 0),
		Prompts:   make([]string, 0),
	}
}

// =============================================================================
// RECORDING
// =============================================================================

// ObserveSlide implements Observer.
func (ut *UsageTracker) ObserveSlide(source, layout string, d time.Duration) {
	if ut == nil {
		return
	}
	ut.mu.Lock()
	defer ut.mu.Unlock()

	session := ut.sessions[ut.currentID]
	if session == nil {
		return
	}

	switch source {
	case SourceRemote:
		session.Remote++
	case SourceFallback:
		session.Fallback++
	default:
		session.Offline++
	}
	session.SlideTime += d

	session.Slowest = append(session.Slowest, SlideTiming{
		Timestamp: time.Now(),
		Source:    source,
		Layout:    layout,
		Duration:  d,
	})
	sort.SliceStable(session.Slowest, func(i, j int) bool {
		return session.Slowest[i].Duration > session.Slowest[j].Duration
	})
	if len(session.Slowest) > maxSlowest {
		session.Slowest = session.Slowest[:maxSlowest]
	}
}

// ObserveDeck implements Observer.
func (ut *UsageTracker) ObserveDeck(prompt string, _ int, outcome string, _ time.Duration) {
	if ut == nil {
		return
	}
	ut.mu.Lock()
	defer ut.mu.Unlock()

	session := ut.sessions[ut.currentID]
	if session == nil {
		return
	}
	session.Decks++
	if outcome != "ok" {
		session.FailedDecks++
	}
	session.Prompts = append(session.Prompts, util.TruncateRunes(prompt, 100))
}

// =============================================================================
// RETRIEVAL
// =============================================================================

// CurrentSession returns a copy of the current session.
func (ut *UsageTracker) CurrentSession() *SessionUsage {
	ut.mu.RLock()
	defer ut.mu.RUnlock()

	session := ut.sessions[ut.currentID]
	if session == nil {
		return newSession(ut.currentID)
	}
	return copySession(session)
}

// History returns stored sessions started within [from, to].
func (ut *UsageTracker) History(from, to time.Time) []*SessionUsage {
	ids, err := ut.storage.List(from, to)
	if err != nil {
		return nil
	}

	sessions := make([]*SessionUsage, 0, len(ids))
	for _, id := range ids {
		session, err := ut.storage.Load(id)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions
}

// Trends aggregates stored sessions over the last days.
func (ut *UsageTracker) Trends(days int) *UsageTrends {
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	trends := &UsageTrends{
		Days:           days,
		DailyBreakdown: make([]DailyUsage, 0),
		SourceTotals: map[string]int{
			SourceOffline:  0,
			SourceRemote:   0,
			SourceFallback: 0,
		},
	}

	daily := make(map[string]*DailyUsage)
	for _, session := range ut.History(from, to) {
		key := session.StartTime.Format("2006-01-02")
		d, ok := daily[key]
		if !ok {
			y, m, dd := session.StartTime.Date()
			d = &DailyUsage{Date: time.Date(y, m, dd, 0, 0, 0, 0, session.StartTime.Location())}
			daily[key] = d
		}
		d.Slides += session.Slides()
		d.Decks += session.Decks

		trends.Slides += session.Slides()
		trends.Decks += session.Decks
		trends.SourceTotals[SourceOffline] += session.Offline
		trends.SourceTotals[SourceRemote] += session.Remote
		trends.SourceTotals[SourceFallback] += session.Fallback
	}

	for _, d := range daily {
		trends.DailyBreakdown = append(trends.DailyBreakdown, *d)
	}
	sort.Slice(trends.DailyBreakdown, func(i, j int) bool {
		return trends.DailyBreakdown[i].Date.Before(trends.DailyBreakdown[j].Date)
	})
	return trends
}

// =============================================================================
// SESSION MANAGEMENT
// =============================================================================

// EndSession saves the current session and starts a new one.
func (ut *UsageTracker) EndSession() error {
	ut.mu.Lock()
	defer ut.mu.Unlock()

	if session := ut.sessions[ut.currentID]; session != nil {
		session.EndTime = time.Now()
		if err := ut.storage.Save(session); err != nil {
			return err
		}
		delete(ut.sessions, ut.currentID)
	}

	ut.currentID = generateSessionID()
	ut.sessions[ut.currentID] = newSession(ut.currentID)
	return nil
}

// SaveCurrentSession saves the current session without ending it. Empty
// sessions are not written.
func (ut *UsageTracker) SaveCurrentSession() error {
	ut.mu.RLock()
	session := ut.sessions[ut.currentID]
	var snapshot *SessionUsage
	if session != nil && (session.Slides() > 0 || session.Decks > 0) {
		snapshot = copySession(session)
	}
	ut.mu.RUnlock()

	if snapshot == nil {
		return nil
	}
	return ut.storage.Save(snapshot)
}

// =============================================================================
// HELPERS
// =============================================================================

func copySession(src *SessionUsage) *SessionUsage {
	dst := *src
	dst.Slowest = append([]SlideTiming(nil), src.Slowest...)
	dst.Prompts = append([]string(nil), src.Prompts...)
	return &dst
}

// generateSessionID returns a timestamp plus counter identifier.
func generateSessionID() string {
	counter := atomic.AddUint64(&sessionIDCounter, 1)
	return fmt.Sprintf("%s-%d", time.Now().Format("20060102-150405"), counter)
}
