// ABOUTME: Tests for DaySample accessors and JSON wire shape.
// ABOUTME: Ensures missing readings marshal as explicit nulls.
package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewDaySampleNormalizesID(t *testing.T) {
	s := NewDaySample(" p001 ", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	if s.ParticipantID != "P001" {
		t.Errorf("ParticipantID = %q, want P001", s.ParticipantID)
	}
	if s.Date != "2024-03-05" {
		t.Errorf("Date = %q, want 2024-03-05", s.Date)
	}
}

func TestDaySampleValueRoundTrip(t *testing.T) {
	s := NewDaySample("P001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	v := 1.25
	s.SetValue(MetricWalkingSpeed, &v)

	got := s.Value(MetricWalkingSpeed)
	if got == nil || *got != 1.25 {
		t.Fatalf("Value(walking_speed) = %v, want 1.25", got)
	}
	if s.Value(MetricWalkingAsymmetry) != nil {
		t.Error("unset metric should be nil")
	}
}

func TestDaySampleHasData(t *testing.T) {
	s := NewDaySample("P001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	if s.HasData() {
		t.Error("empty sample should have no data")
	}

	v := 0.31
	s.SetValue(MetricDoubleSupportTime, &v)
	if !s.HasData() {
		t.Error("sample with one reading should have data")
	}
}

func TestDaySampleMarshalsExplicitNulls(t *testing.T) {
	s := NewDaySample("P001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	v := 1.1
	s.SetValue(MetricWalkingSpeed, &v)

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Every metric column must be present, missing ones as null.
	for _, m := range AllMetrics {
		if !strings.Contains(string(raw), `"`+string(m)+`"`) {
			t.Errorf("marshaled payload missing key %s: %s", m, raw)
		}
	}
	if !strings.Contains(string(raw), `"walking_asymmetry":null`) {
		t.Errorf("missing reading should marshal as null: %s", raw)
	}
}
