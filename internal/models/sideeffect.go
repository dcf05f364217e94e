// ABOUTME: SideEffect model for participant-authored free-text reports.
// ABOUTME: Append-only; no update or delete path exists.
package models

import "time"

// SideEffectTimeFormat is ISO-8601 with fractional seconds, matching the
// remote store's reported_at column.
const SideEffectTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SideEffect is a free-text note a participant reports against their own
// record.
type SideEffect struct {
	ParticipantID string `json:"participant_id"`
	Message       string `json:"message"`
	ReportedAt    string `json:"reported_at"`
}

// NewSideEffect builds a report stamped at the given time.
func NewSideEffect(participantID, message string, at time.Time) SideEffect {
	return SideEffect{
		ParticipantID: NormalizeParticipantID(participantID),
		Message:       message,
		ReportedAt:    at.UTC().Format(SideEffectTimeFormat),
	}
}
