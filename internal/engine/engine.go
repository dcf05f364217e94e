// ABOUTME: Reconciliation engine between the local day cache and the remote store.
// ABOUTME: Collects sensor readings, uploads fresh days, and enforces the rate guard.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stepforwardrx/stepforward/internal/cache"
	"github.com/stepforwardrx/stepforward/internal/models"
	"github.com/stepforwardrx/stepforward/internal/remote"
	"github.com/stepforwardrx/stepforward/internal/sensor"
	"go.uber.org/zap"
)

const (
	// MinSyncInterval is the spacing guard between unforced sync passes.
	MinSyncInterval = time.Hour
	// SyncBudget bounds one full sync pass.
	SyncBudget = 30 * time.Second
	// BatchSize is the backfill upload batch size.
	BatchSize = 50
)

var (
	// ErrNotEnrolled means no participant id is stored on this device yet.
	ErrNotEnrolled = errors.New("engine: device not enrolled, run setup first")
	// ErrRecentlySynced means an unforced pass ran inside MinSyncInterval.
	ErrRecentlySynced = errors.New("engine: last upload was under an hour ago")
	// ErrParticipantTaken means enrollment hit an id already registered
	// remotely and the caller did not ask to take it over.
	ErrParticipantTaken = errors.New("engine: participant id already registered")
)

// RemoteStore is the slice of the remote client the engine drives.
type RemoteStore interface {
	CreateParticipant(ctx context.Context, p models.Participant) error
	GetDaySample(ctx context.Context, participantID, date string) (*models.DaySample, error)
	InsertDaySample(ctx context.Context, sample models.DaySample) error
	PatchDaySample(ctx context.Context, sample models.DaySample) error
	BulkUpsertDaySamples(ctx context.Context, samples []models.DaySample) error
}

// Outcome classifies what happened to one day during a sync pass.
type Outcome string

const (
	OutcomeUploaded      Outcome = "uploaded"
	OutcomeSkippedNoData Outcome = "skipped_no_data"
	OutcomeSkippedStale  Outcome = "skipped_stale"
	OutcomeFailed        Outcome = "failed"
)

// Summary tallies per-day outcomes across one sync pass.
type Summary struct {
	Uploaded      int `json:"uploaded"`
	SkippedNoData int `json:"skipped_no_data"`
	SkippedStale  int `json:"skipped_stale"`
	Failed        int `json:"failed"`
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeUploaded:
		s.Uploaded++
	case OutcomeSkippedNoData:
		s.SkippedNoData++
	case OutcomeSkippedStale:
		s.SkippedStale++
	case OutcomeFailed:
		s.Failed++
	}
}

// Engine ties the sensor source, the day cache, and the remote store
// together.
type Engine struct {
	cache  *cache.DayCache
	remote RemoteStore
	sensor sensor.Source
	log    *zap.Logger
	now    func() time.Time

	participantEnsured bool
}

// New builds an Engine. A nil logger is replaced with a no-op one and a nil
// clock defaults to time.Now.
func New(dayCache *cache.DayCache, store RemoteStore, source sensor.Source, logger *zap.Logger, clock func() time.Time) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		cache:  dayCache,
		remote: store,
		sensor: source,
		log:    logger,
		now:    clock,
	}
}

// Enroll registers the participant remotely and records enrollment locally.
// When the id is already registered remotely, enrollment stops with
// ErrParticipantTaken unless takeOver is set, in which case this device
// claims the existing id and continues.
func (e *Engine) Enroll(ctx context.Context, participantID, pharmacyID string, takeOver bool) error {
	participantID = models.NormalizeParticipantID(participantID)
	if participantID == "" {
		return fmt.Errorf("engine: participant id is required")
	}

	p := models.Participant{ID: participantID}
	if pharmacyID != "" {
		p.PharmacyID = &pharmacyID
	}

	err := e.remote.CreateParticipant(ctx, p)
	switch {
	case errors.Is(err, remote.ErrParticipantExists):
		if !takeOver {
			return ErrParticipantTaken
		}
		e.log.Warn("taking over existing participant id", zap.String("participant_id", participantID))
	case err != nil:
		return fmt.Errorf("register participant: %w", err)
	}

	if err := e.cache.SetParticipantID(participantID); err != nil {
		return fmt.Errorf("store participant id: %w", err)
	}
	if err := e.cache.SetPharmacyID(pharmacyID); err != nil {
		return fmt.Errorf("store pharmacy id: %w", err)
	}
	if err := e.cache.SetSetupComplete(true); err != nil {
		return fmt.Errorf("store setup state: %w", err)
	}

	e.participantEnsured = true
	e.log.Info("enrollment complete", zap.String("participant_id", participantID))
	return nil
}

// CollectWindow refreshes the cache from the sensor source for every day in
// the tracked window. A day the source cannot answer for keeps whatever the
// cache already holds; a successful but empty reading is likewise ignored.
// Returns the number of days cached.
func (e *Engine) CollectWindow(ctx context.Context) (int, error) {
	participantID, err := e.cache.ParticipantID()
	if err != nil {
		return 0, err
	}
	if participantID == "" {
		return 0, ErrNotEnrolled
	}

	cached := 0
	for _, date := range e.cache.WindowDates() {
		if err := ctx.Err(); err != nil {
			return cached, err
		}

		sample, err := e.sensor.QueryDay(ctx, participantID, date)
		if err != nil {
			e.log.Warn("sensor query failed, keeping cached data",
				zap.String("date", date.Format(models.DateFormat)), zap.Error(err))
			continue
		}

		stored, err := e.cache.CacheDay(date, sample)
		if err != nil {
			return cached, err
		}
		if stored {
			cached++
		}
	}
	return cached, nil
}

// SyncDay reconciles one day with the remote store. Absent or all-null cache
// entries and stale entries are skipped; otherwise the day is inserted or,
// when the remote already has the row, patched in full.
func (e *Engine) SyncDay(ctx context.Context, date time.Time) (Outcome, error) {
	participantID, err := e.cache.ParticipantID()
	if err != nil {
		return OutcomeFailed, err
	}
	if participantID == "" {
		return OutcomeFailed, ErrNotEnrolled
	}

	entry, err := e.cache.ReadDay(date)
	if err != nil {
		return OutcomeFailed, err
	}
	if entry == nil || !entry.Sample.HasData() {
		return OutcomeSkippedNoData, nil
	}
	if entry.IsStale(e.now()) {
		e.log.Debug("skipping stale entry",
			zap.String("date", date.Format(models.DateFormat)),
			zap.Time("captured_at", entry.CapturedAt))
		return OutcomeSkippedStale, nil
	}

	if err := e.ensureParticipant(ctx, participantID); err != nil {
		return OutcomeFailed, err
	}

	sample := entry.Sample
	sample.ParticipantID = participantID

	_, err = e.remote.GetDaySample(ctx, participantID, sample.Date)
	switch {
	case errors.Is(err, remote.ErrNotFound):
		if err := e.remote.InsertDaySample(ctx, sample); err != nil {
			return OutcomeFailed, err
		}
	case err != nil:
		return OutcomeFailed, err
	default:
		if err := e.remote.PatchDaySample(ctx, sample); err != nil {
			return OutcomeFailed, err
		}
	}

	return OutcomeUploaded, nil
}

// SyncWindow reconciles every day in the tracked window, checking for
// cancellation between days. Per-day upload failures are tallied and do not
// stop the pass.
func (e *Engine) SyncWindow(ctx context.Context) (Summary, error) {
	var summary Summary
	for _, date := range e.cache.WindowDates() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome, err := e.SyncDay(ctx, date)
		if err != nil {
			if errors.Is(err, ErrNotEnrolled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			e.log.Warn("day sync failed",
				zap.String("date", date.Format(models.DateFormat)), zap.Error(err))
		}
		summary.add(outcome)
	}
	return summary, nil
}

// SyncPass runs one full collect-then-upload pass under the sync budget.
// Unforced passes are skipped with ErrRecentlySynced when the last
// successful upload is under MinSyncInterval old. A pass that uploads at
// least one day records a new last-upload time.
func (e *Engine) SyncPass(ctx context.Context, force bool) (Summary, error) {
	if !force {
		last, err := e.cache.LastSuccessfulUpload()
		if err != nil {
			return Summary{}, err
		}
		if !last.IsZero() && e.now().Sub(last) < MinSyncInterval {
			return Summary{}, ErrRecentlySynced
		}
	}

	ctx, cancel := context.WithTimeout(ctx, SyncBudget)
	defer cancel()

	if _, err := e.CollectWindow(ctx); err != nil {
		return Summary{}, err
	}

	summary, err := e.SyncWindow(ctx)
	if err != nil {
		return summary, err
	}

	if summary.Uploaded > 0 {
		if err := e.cache.SetLastSuccessfulUpload(e.now()); err != nil {
			return summary, err
		}
	}

	e.log.Info("sync pass complete",
		zap.Int("uploaded", summary.Uploaded),
		zap.Int("skipped_no_data", summary.SkippedNoData),
		zap.Int("skipped_stale", summary.SkippedStale),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// Backfill queries the sensor source for every day in [from, to] and
// uploads the days that carry data in merge-on-conflict batches, so
// re-running the same range never duplicates rows. progress, when non-nil,
// is called after each day with days done and days total. Returns the
// number of rows uploaded.
func (e *Engine) Backfill(ctx context.Context, from, to time.Time, progress func(done, total int)) (int, error) {
	participantID, err := e.cache.ParticipantID()
	if err != nil {
		return 0, err
	}
	if participantID == "" {
		return 0, ErrNotEnrolled
	}
	if to.Before(from) {
		return 0, fmt.Errorf("engine: backfill range ends before it starts")
	}

	if err := e.ensureParticipant(ctx, participantID); err != nil {
		return 0, err
	}

	total := int(to.Sub(from).Hours()/24) + 1
	uploaded := 0
	done := 0
	batch := make([]models.DaySample, 0, BatchSize)

	flush := func() error {
		if err := e.remote.BulkUpsertDaySamples(ctx, batch); err != nil {
			return fmt.Errorf("upload batch: %w", err)
		}
		uploaded += len(batch)
		batch = batch[:0]
		return nil
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}

		sample, err := e.sensor.QueryDay(ctx, participantID, d)
		if err != nil {
			return uploaded, fmt.Errorf("query %s: %w", d.Format(models.DateFormat), err)
		}
		if sample.HasData() {
			batch = append(batch, sample)
			if len(batch) == BatchSize {
				if err := flush(); err != nil {
					return uploaded, err
				}
			}
		}

		done++
		if progress != nil {
			progress(done, total)
		}
	}

	if err := flush(); err != nil {
		return uploaded, err
	}

	e.log.Info("backfill complete",
		zap.Int("days", total), zap.Int("rows", uploaded))
	return uploaded, nil
}

// ensureParticipant makes sure the participant row exists remotely before
// day uploads reference it. An already-registered id is fine here.
func (e *Engine) ensureParticipant(ctx context.Context, participantID string) error {
	if e.participantEnsured {
		return nil
	}

	pharmacyID, err := e.cache.PharmacyID()
	if err != nil {
		return err
	}
	p := models.Participant{ID: participantID}
	if pharmacyID != "" {
		p.PharmacyID = &pharmacyID
	}

	err = e.remote.CreateParticipant(ctx, p)
	if err != nil && !errors.Is(err, remote.ErrParticipantExists) {
		return fmt.Errorf("ensure participant: %w", err)
	}

	e.participantEnsured = true
	return nil
}
