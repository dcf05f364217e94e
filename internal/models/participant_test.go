// ABOUTME: Tests for participant id normalization.
// ABOUTME: The canonical form is trimmed uppercase; every remote path relies on it.
package models

import "testing"

func TestNormalizeParticipantID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"p001", "P001"},
		{"P001", "P001"},
		{"  p001  ", "P001"},
		{"abc-12", "ABC-12"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeParticipantID(tt.in); got != tt.want {
				t.Errorf("NormalizeParticipantID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once := NormalizeParticipantID("p0a1")
	twice := NormalizeParticipantID(once)
	if once != twice {
		t.Errorf("normalization not idempotent: %q vs %q", once, twice)
	}
}
