// ABOUTME: Medication model and dose frequency enum.
// ABOUTME: Used only for chart dose annotations, never mutates metric data.
package models

// Frequency is the medication dosing schedule. The wire value for
// as-needed is "asneeded", matching the remote store's enum.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyAsNeeded Frequency = "asneeded"
)

// AllFrequencies lists every valid dosing frequency.
var AllFrequencies = []Frequency{
	FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
	FrequencyMonthly, FrequencyAsNeeded,
}

// FrequencyLabels maps frequencies to display labels.
var FrequencyLabels = map[Frequency]string{
	FrequencyDaily:    "Daily",
	FrequencyWeekly:   "Weekly",
	FrequencyBiweekly: "Every 2 Weeks",
	FrequencyMonthly:  "Monthly",
	FrequencyAsNeeded: "As Needed",
}

// IsValidFrequency checks if a string is a valid dosing frequency.
func IsValidFrequency(s string) bool {
	for _, f := range AllFrequencies {
		if string(f) == s {
			return true
		}
	}
	return false
}

// Medication is a participant-scoped dose schedule. A nil EndDate means the
// medication is currently active.
type Medication struct {
	ID             int64     `json:"id,omitempty"`
	ParticipantID  string    `json:"participant_id"`
	MedicationName string    `json:"medication_name"`
	Dose           string    `json:"dose"`
	Frequency      Frequency `json:"frequency"`
	StartDate      string    `json:"start_date"`
	EndDate        *string   `json:"end_date"`
}
