// ABOUTME: Source interface over the platform health-sensor framework.
// ABOUTME: Per-metric failures yield nulls; siblings are never aborted.
package sensor

import (
	"context"
	"errors"
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
)

// ErrUnavailable signals the sensor framework as a whole cannot be reached
// right now (locked device, missing bridge file). Callers treat it as a
// transient failure and keep whatever they already cached.
var ErrUnavailable = errors.New("sensor: source unavailable")

// Source answers per-day average queries for the tracked gait metrics. A
// metric with no samples in the day window comes back null; an error on one
// metric must not abort collection of the other four, so implementations
// query each metric independently and only return an error when the source
// itself is unreachable.
type Source interface {
	QueryDay(ctx context.Context, participantID string, date time.Time) (models.DaySample, error)
}
