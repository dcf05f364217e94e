// ABOUTME: Deterministic simulated sensor source for development and tests.
// ABOUTME: Value ranges mirror realistic gait readings per metric.
package sensor

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
)

// Simulated produces plausible per-day readings, deterministic for a given
// (participant, date) pair so repeated queries and backfill re-runs agree.
type Simulated struct{}

// NewSimulated returns a simulated sensor source.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// QueryDay synthesizes a full day of readings.
func (s *Simulated) QueryDay(_ context.Context, participantID string, date time.Time) (models.DaySample, error) {
	sample := models.NewDaySample(participantID, date)

	h := fnv.New64a()
	_, _ = h.Write([]byte(sample.ParticipantID))
	_, _ = h.Write([]byte(sample.Date))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	set := func(m models.Metric, base, spread float64) {
		v := base + rng.Float64()*spread
		sample.SetValue(m, &v)
	}

	set(models.MetricDoubleSupportTime, 0.3, 0.1)
	set(models.MetricWalkingAsymmetry, 2, 3)
	set(models.MetricWalkingSpeed, 1.2, 0.3)
	set(models.MetricWalkingStepLength, 0.65, 0.15)
	set(models.MetricWalkingSteadiness, 85, 10)

	return sample, nil
}
