// ABOUTME: Participant, Pharmacy, and Researcher models.
// ABOUTME: Holds the shared participant id normalization used by every remote path.
package models

import "strings"

// Participant is a study participant. Created lazily on first upload;
// creation is idempotent.
type Participant struct {
	ID         string  `json:"id"`
	PharmacyID *string `json:"pharmacy_id,omitempty"`
}

// Pharmacy is a read-only affiliation record.
type Pharmacy struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Address string `json:"address,omitempty"`
}

// Researcher is a dashboard user. Pharmacy access is scoped through the
// researcher_pharmacy_access join table, not by the remote store itself.
type Researcher struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// NormalizeParticipantID folds a participant id to its canonical stored
// form: trimmed and uppercased. The remote schema normalizes the same way
// on write, so every code path that builds a participant-keyed URL or
// payload must go through this function to avoid key mismatches.
func NormalizeParticipantID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
