// ABOUTME: DaySample model holding one participant-day of gait readings.
// ABOUTME: Nullable fields marshal as explicit JSON nulls for the remote store.
package models

import "time"

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// DaySample is one participant, one calendar day, up to five nullable gait
// readings. Identity key: (ParticipantID, Date). The metric fields carry no
// omitempty on purpose: the remote store does not merge-patch missing keys
// consistently, so partial objects must never be sent.
type DaySample struct {
	ParticipantID     string   `json:"participant_id"`
	Date              string   `json:"date"`
	DoubleSupportTime *float64 `json:"double_support_time"`
	WalkingAsymmetry  *float64 `json:"walking_asymmetry"`
	WalkingSpeed      *float64 `json:"walking_speed"`
	WalkingStepLength *float64 `json:"walking_step_length"`
	WalkingSteadiness *float64 `json:"walking_steadiness"`
}

// NewDaySample creates an empty sample for the given participant and day.
func NewDaySample(participantID string, date time.Time) DaySample {
	return DaySample{
		ParticipantID: NormalizeParticipantID(participantID),
		Date:          date.Format(DateFormat),
	}
}

// Value returns the reading for the given metric, nil when absent.
func (s *DaySample) Value(m Metric) *float64 {
	switch m {
	case MetricDoubleSupportTime:
		return s.DoubleSupportTime
	case MetricWalkingAsymmetry:
		return s.WalkingAsymmetry
	case MetricWalkingSpeed:
		return s.WalkingSpeed
	case MetricWalkingStepLength:
		return s.WalkingStepLength
	case MetricWalkingSteadiness:
		return s.WalkingSteadiness
	}
	return nil
}

// SetValue stores a reading for the given metric. A nil value records the
// metric as missing for the day.
func (s *DaySample) SetValue(m Metric, v *float64) {
	switch m {
	case MetricDoubleSupportTime:
		s.DoubleSupportTime = v
	case MetricWalkingAsymmetry:
		s.WalkingAsymmetry = v
	case MetricWalkingSpeed:
		s.WalkingSpeed = v
	case MetricWalkingStepLength:
		s.WalkingStepLength = v
	case MetricWalkingSteadiness:
		s.WalkingSteadiness = v
	}
}

// HasData reports whether at least one metric has a non-null reading.
func (s *DaySample) HasData() bool {
	for _, m := range AllMetrics {
		if s.Value(m) != nil {
			return true
		}
	}
	return false
}

// Day parses the sample's date field.
func (s *DaySample) Day() (time.Time, error) {
	return time.Parse(DateFormat, s.Date)
}
