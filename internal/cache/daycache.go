// ABOUTME: DayCache holds the rolling window of per-day gait samples on-device.
// ABOUTME: Enforces the never-destroy-good-data and staleness policies.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stepforwardrx/stepforward/internal/models"
)

const (
	// WindowDays is the tracked cache window: today through 7 days back.
	WindowDays = 8
	// StalenessWindow is the maximum entry age the uploader will accept.
	// Entries at exactly this age are still fresh.
	StalenessWindow = 7 * 24 * time.Hour

	dayKeyPrefix = "day:"

	keyLastSuccessfulUpload = "last_successful_upload"
	keyParticipantID        = "participant_id"
	keyPharmacyID           = "pharmacy_id"
	keySetupComplete        = "setup_complete"
	keyDeviceID             = "device_id"
)

// Entry is a cached day sample plus the moment it was captured from the
// sensor source.
type Entry struct {
	Sample     models.DaySample `json:"sample"`
	CapturedAt time.Time        `json:"captured_at"`
}

// IsStale reports whether the entry is too old to upload at the given
// moment. The boundary at exactly StalenessWindow is not stale.
func (e *Entry) IsStale(now time.Time) bool {
	return now.Sub(e.CapturedAt) > StalenessWindow
}

// DayCache wraps a Store with the day-keyed caching policy.
type DayCache struct {
	store Store
	now   func() time.Time
}

// NewDayCache wraps the given store. A nil clock defaults to time.Now.
func NewDayCache(store Store, clock func() time.Time) *DayCache {
	if clock == nil {
		clock = time.Now
	}
	return &DayCache{store: store, now: clock}
}

func dayKey(date time.Time) string {
	return dayKeyPrefix + date.Format(models.DateFormat)
}

// CacheDay stores the sample for its day when it carries at least one
// non-null reading and reports whether it was stored. An all-null sample is
// a failed refresh: the existing entry for that day, if any, stays
// untouched, since stale-but-present data beats no data.
func (c *DayCache) CacheDay(date time.Time, sample models.DaySample) (bool, error) {
	if !sample.HasData() {
		return false, nil
	}

	entry := Entry{Sample: sample, CapturedAt: c.now()}
	raw, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.store.Set(dayKey(date), raw); err != nil {
		return false, fmt.Errorf("store cache entry: %w", err)
	}
	return true, nil
}

// ReadDay returns the cached entry for the given day, or nil when absent.
func (c *DayCache) ReadDay(date time.Time) (*Entry, error) {
	raw, err := c.store.Get(dayKey(date))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// WindowDates returns the tracked window, most recent day first.
func (c *DayCache) WindowDates() []time.Time {
	today := c.now()
	dates := make([]time.Time, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		dates = append(dates, today.AddDate(0, 0, -i))
	}
	return dates
}

// PurgeWindow clears every entry in the tracked window. Explicit operator
// action only; stale entries are otherwise kept for inspection.
func (c *DayCache) PurgeWindow() error {
	for _, date := range c.WindowDates() {
		if err := c.store.Delete(dayKey(date)); err != nil {
			return fmt.Errorf("purge %s: %w", date.Format(models.DateFormat), err)
		}
	}
	return nil
}

// LastSuccessfulUpload returns the recorded time of the last sync pass that
// uploaded at least one day, or the zero time when none is recorded.
func (c *DayCache) LastSuccessfulUpload() (time.Time, error) {
	raw, err := c.store.Get(keyLastSuccessfulUpload)
	if errors.Is(err, ErrKeyNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last upload timestamp: %w", err)
	}
	return t, nil
}

// SetLastSuccessfulUpload records the completion time of a successful sync.
func (c *DayCache) SetLastSuccessfulUpload(t time.Time) error {
	return c.store.Set(keyLastSuccessfulUpload, []byte(t.Format(time.RFC3339Nano)))
}

// ParticipantID returns the enrolled participant id, empty when not set up.
func (c *DayCache) ParticipantID() (string, error) {
	return c.getString(keyParticipantID)
}

// SetParticipantID stores the enrolled participant id in canonical form.
func (c *DayCache) SetParticipantID(id string) error {
	return c.store.Set(keyParticipantID, []byte(models.NormalizeParticipantID(id)))
}

// PharmacyID returns the enrolled pharmacy affiliation, may be empty.
func (c *DayCache) PharmacyID() (string, error) {
	return c.getString(keyPharmacyID)
}

// SetPharmacyID stores the pharmacy affiliation.
func (c *DayCache) SetPharmacyID(id string) error {
	return c.store.Set(keyPharmacyID, []byte(id))
}

// SetupComplete reports whether enrollment finished on this device.
func (c *DayCache) SetupComplete() (bool, error) {
	v, err := c.getString(keySetupComplete)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetSetupComplete records the enrollment state.
func (c *DayCache) SetSetupComplete(done bool) error {
	v := "false"
	if done {
		v = "true"
	}
	return c.store.Set(keySetupComplete, []byte(v))
}

// DeviceID returns a stable per-device identifier, generating one on first
// use.
func (c *DayCache) DeviceID() (string, error) {
	id, err := c.getString(keyDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.New().String()
	if err := c.store.Set(keyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

func (c *DayCache) getString(key string) (string, error) {
	raw, err := c.store.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
