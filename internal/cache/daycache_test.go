// ABOUTME: Tests for DayCache policies over an in-memory badger store.
// ABOUTME: Covers refresh protection, the staleness boundary, and window purge.
package cache

import (
	"testing"
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
)

func newTestCache(t *testing.T, clock func() time.Time) *DayCache {
	t.Helper()
	store, err := NewInMemoryStore()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewDayCache(store, clock)
}

func sampleWithSpeed(pid string, date time.Time, speed float64) models.DaySample {
	s := models.NewDaySample(pid, date)
	s.SetValue(models.MetricWalkingSpeed, &speed)
	return s
}

func TestCacheDayStoresFreshSample(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c := newTestCache(t, func() time.Time { return now })

	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	stored, err := c.CacheDay(date, sampleWithSpeed("P001", date, 1.2))
	if err != nil {
		t.Fatalf("CacheDay: %v", err)
	}
	if !stored {
		t.Fatal("expected sample to be stored")
	}

	entry, err := c.ReadDay(date)
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if entry == nil {
		t.Fatal("expected cached entry")
	}
	if got := entry.Sample.Value(models.MetricWalkingSpeed); got == nil || *got != 1.2 {
		t.Errorf("cached speed = %v, want 1.2", got)
	}
	if !entry.CapturedAt.Equal(now) {
		t.Errorf("CapturedAt = %v, want %v", entry.CapturedAt, now)
	}
}

func TestFailedRefreshNeverDestroysGoodData(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c := newTestCache(t, func() time.Time { return now })

	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if _, err := c.CacheDay(date, sampleWithSpeed("P001", date, 1.2)); err != nil {
		t.Fatalf("CacheDay: %v", err)
	}

	// A later all-null refresh must leave the good entry untouched.
	empty := models.NewDaySample("P001", date)
	stored, err := c.CacheDay(date, empty)
	if err != nil {
		t.Fatalf("CacheDay(empty): %v", err)
	}
	if stored {
		t.Error("all-null sample should not be stored")
	}

	entry, err := c.ReadDay(date)
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if entry == nil {
		t.Fatal("previous entry should survive")
	}
	if got := entry.Sample.Value(models.MetricWalkingSpeed); got == nil || *got != 1.2 {
		t.Errorf("cached speed = %v, want 1.2", got)
	}
}

func TestReadDayAbsent(t *testing.T) {
	c := newTestCache(t, nil)
	entry, err := c.ReadDay(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if entry != nil {
		t.Error("expected nil entry for uncached day")
	}
}

func TestStalenessBoundary(t *testing.T) {
	captured := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := &Entry{CapturedAt: captured}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"fresh", captured.Add(time.Hour), false},
		{"exactly seven days", captured.Add(7 * 24 * time.Hour), false},
		{"just past seven days", captured.Add(7*24*time.Hour + time.Second), true},
		{"well past", captured.Add(30 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.IsStale(tt.now); got != tt.want {
				t.Errorf("IsStale(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestPurgeWindow(t *testing.T) {
	now := time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)
	c := newTestCache(t, func() time.Time { return now })

	for _, date := range c.WindowDates() {
		if _, err := c.CacheDay(date, sampleWithSpeed("P001", date, 1.0)); err != nil {
			t.Fatalf("CacheDay: %v", err)
		}
	}

	if err := c.PurgeWindow(); err != nil {
		t.Fatalf("PurgeWindow: %v", err)
	}

	for _, date := range c.WindowDates() {
		entry, err := c.ReadDay(date)
		if err != nil {
			t.Fatalf("ReadDay: %v", err)
		}
		if entry != nil {
			t.Errorf("entry for %s should be purged", date.Format(models.DateFormat))
		}
	}
}

func TestWindowDatesSpanEightDays(t *testing.T) {
	now := time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)
	c := newTestCache(t, func() time.Time { return now })

	dates := c.WindowDates()
	if len(dates) != WindowDays {
		t.Fatalf("window length = %d, want %d", len(dates), WindowDays)
	}
	if dates[0].Format(models.DateFormat) != "2024-03-08" {
		t.Errorf("window should start today, got %s", dates[0].Format(models.DateFormat))
	}
	if dates[7].Format(models.DateFormat) != "2024-03-01" {
		t.Errorf("window should end seven days back, got %s", dates[7].Format(models.DateFormat))
	}
}

func TestLastSuccessfulUpload(t *testing.T) {
	c := newTestCache(t, nil)

	got, err := c.LastSuccessfulUpload()
	if err != nil {
		t.Fatalf("LastSuccessfulUpload: %v", err)
	}
	if !got.IsZero() {
		t.Error("expected zero time before any upload")
	}

	at := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	if err := c.SetLastSuccessfulUpload(at); err != nil {
		t.Fatalf("SetLastSuccessfulUpload: %v", err)
	}

	got, err = c.LastSuccessfulUpload()
	if err != nil {
		t.Fatalf("LastSuccessfulUpload: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("LastSuccessfulUpload = %v, want %v", got, at)
	}
}

func TestSetupFlags(t *testing.T) {
	c := newTestCache(t, nil)

	if err := c.SetParticipantID("p001"); err != nil {
		t.Fatalf("SetParticipantID: %v", err)
	}
	id, err := c.ParticipantID()
	if err != nil {
		t.Fatalf("ParticipantID: %v", err)
	}
	if id != "P001" {
		t.Errorf("ParticipantID = %q, want normalized P001", id)
	}

	done, err := c.SetupComplete()
	if err != nil {
		t.Fatalf("SetupComplete: %v", err)
	}
	if done {
		t.Error("setup should start incomplete")
	}
	if err := c.SetSetupComplete(true); err != nil {
		t.Fatalf("SetSetupComplete: %v", err)
	}
	done, err = c.SetupComplete()
	if err != nil {
		t.Fatalf("SetupComplete: %v", err)
	}
	if !done {
		t.Error("setup should be complete after SetSetupComplete(true)")
	}
}

func TestDeviceIDIsStable(t *testing.T) {
	c := newTestCache(t, nil)

	first, err := c.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if first == "" {
		t.Fatal("expected generated device id")
	}
	second, err := c.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if first != second {
		t.Errorf("device id changed between reads: %q vs %q", first, second)
	}
}
