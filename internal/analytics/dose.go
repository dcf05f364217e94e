// ABOUTME: Dose-date expansion from a medication's start/end/frequency triple.
// ABOUTME: Produces the literal calendar dates where chart annotations render.
package analytics

import (
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
)

// frequencyStrides maps dosing frequencies to their day strides. Monthly is
// a fixed 30-day stride, not calendar-month-aware; kept as a known
// approximation of the source behavior.
var frequencyStrides = map[models.Frequency]int{
	models.FrequencyDaily:    1,
	models.FrequencyWeekly:   7,
	models.FrequencyBiweekly: 14,
	models.FrequencyMonthly:  30,
}

// ExpandDoseDates lists every calendar date a dose annotation should render
// for the medication. A missing end date means currently active and
// defaults to now. As-needed medications mark only the start date, plus the
// end date when one is set.
func ExpandDoseDates(med models.Medication, now time.Time) ([]time.Time, error) {
	start, err := time.Parse(models.DateFormat, med.StartDate)
	if err != nil {
		return nil, err
	}

	end := now
	hasEnd := false
	if med.EndDate != nil && *med.EndDate != "" {
		end, err = time.Parse(models.DateFormat, *med.EndDate)
		if err != nil {
			return nil, err
		}
		hasEnd = true
	}

	if med.Frequency == models.FrequencyAsNeeded {
		doses := []time.Time{start}
		if hasEnd {
			doses = append(doses, end)
		}
		return doses, nil
	}

	stride, ok := frequencyStrides[med.Frequency]
	if !ok {
		stride = 1
	}

	var doses []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, stride) {
		doses = append(doses, d)
	}
	return doses, nil
}
