// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// COLLECTOR TESTS
// =============================================================================

func TestCollector_ObserveSlide(t *testing.T) {
	c := NewCollector("test")
	c.ObserveSlide(SourceRemote, "title_slide", 2*time.Second)
	c.ObserveSlide(SourceRemote, "title_slide", time.Second)
	c.ObserveSlide(SourceFallback, "quote_slide", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.SlidesGenerated.WithLabelValues(SourceRemote, "title_slide")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SlidesGenerated.WithLabelValues(SourceFallback, "quote_slide")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.SlideDuration))
}

func TestCollector_ObserveDeckAndHTTP(t *testing.T) {
	c := NewCollector("test")
	c.ObserveDeck("p", 5, "ok", time.Second)
	c.ObserveDeck("p", 5, "cancelled", time.Second)
	c.ObserveHTTP("GET", "/health", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Decks.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Decks.WithLabelValues("cancelled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/health", "200")))
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveSlide(SourceOffline, "blank", time.Second)
		c.ObserveDeck("p", 1, "ok", time.Second)
		c.ObserveHTTP("GET", "/", 200, time.Second)
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("kp")
	c.ObserveSlide(SourceOffline, "blank", time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `kp_slides_generated_total{layout="blank",source="offline"} 1`)
}

func TestCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("a")
		NewCollector("a")
	})
}

// =============================================================================
// USAGE TRACKER TESTS
// =============================================================================

func TestUsageTracker_Records(t *testing.T) {
	tracker, err := NewUsageTracker(t.TempDir())
	require.NoError(t, err)

	tracker.ObserveSlide(SourceOffline, "title_slide", time.Millisecond)
	tracker.ObserveSlide(SourceRemote, "two_content", 3*time.Second)
	tracker.ObserveSlide(SourceFallback, "big_number", time.Second)
	tracker.ObserveDeck(strings.Repeat("p", 300), 3, "ok", 4*time.Second)
	tracker.ObserveDeck("x", 2, "cancelled", time.Second)

	s := tracker.CurrentSession()
	assert.Equal(t, 1, s.Offline)
	assert.Equal(t, 1, s.Remote)
	assert.Equal(t, 1, s.Fallback)
	assert.Equal(t, 3, s.Slides())
	assert.Equal(t, 2, s.Decks)
	assert.Equal(t, 1, s.FailedDecks)
	require.Len(t, s.Slowest, 3)
	assert.Equal(t, "two_content", s.Slowest[0].Layout)
	assert.Len(t, []rune(s.Prompts[0]), 100)
}

func TestUsageTracker_SlowestCapped(t *testing.T) {
	tracker, err := NewUsageTracker(t.TempDir())
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		tracker.ObserveSlide(SourceOffline, "blank", time.Duration(i)*time.Millisecond)
	}
	s := tracker.CurrentSession()
	assert.Len(t, s.Slowest, maxSlowest)
	assert.Equal(t, 24*time.Millisecond, s.Slowest[0].Duration)
}

func TestUsageTracker_CopyIsIndependent(t *testing.T) {
	tracker, err := NewUsageTracker(t.TempDir())
	require.NoError(t, err)
	tracker.ObserveSlide(SourceOffline, "blank", time.Millisecond)

	s := tracker.CurrentSession()
	s.Slowest[0].Layout = "changed"
	assert.Equal(t, "blank", tracker.CurrentSession().Slowest[0].Layout)
}

func TestUsageTracker_PersistAndTrends(t *testing.T) {
	dir := t.TempDir()
	tracker, err := NewUsageTracker(dir)
	require.NoError(t, err)

	require.NoError(t, tracker.SaveCurrentSession(), "empty session is skipped")
	count, err := tracker.storage.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	tracker.ObserveSlide(SourceRemote, "title_slide", time.Second)
	tracker.ObserveDeck("p", 1, "ok", time.Second)
	require.NoError(t, tracker.EndSession())

	tracker.ObserveSlide(SourceOffline, "title_slide", time.Second)
	tracker.ObserveSlide(SourceOffline, "blank", time.Second)
	require.NoError(t, tracker.EndSession())

	count, err = tracker.storage.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	trends := tracker.Trends(1)
	assert.Equal(t, 3, trends.Slides)
	assert.Equal(t, 1, trends.Decks)
	assert.Equal(t, 2, trends.SourceTotals[SourceOffline])
	assert.Equal(t, 1, trends.SourceTotals[SourceRemote])
	require.NotEmpty(t, trends.DailyBreakdown)
}

func TestUsageStorage_DeleteBefore(t *testing.T) {
	storage, err := NewUsageStorage(t.TempDir())
	require.NoError(t, err)

	old := newSession("20200101-000000-1")
	recent := newSession(generateSessionID())
	require.NoError(t, storage.Save(old))
	require.NoError(t, storage.Save(recent))

	require.NoError(t, storage.DeleteBefore(time.Now().AddDate(0, 0, -1)))
	ids, err := storage.List(time.Time{}, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{recent.ID}, ids)
}

func TestMulti(t *testing.T) {
	c := NewCollector("m")
	tracker, err := NewUsageTracker(t.TempDir())
	require.NoError(t, err)

	obs := Multi(c, nil, tracker)
	obs.ObserveSlide(SourceRemote, "blank", time.Second)
	obs.ObserveDeck("p", 1, "ok", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.SlidesGenerated.WithLabelValues(SourceRemote, "blank")))
	assert.Equal(t, 1, tracker.CurrentSession().Remote)
}
