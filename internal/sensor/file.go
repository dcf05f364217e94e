// ABOUTME: File-backed sensor source reading a day-keyed JSON recording.
// ABOUTME: Used where a platform bridge exports readings instead of a live API.
package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
)

// File reads per-day readings from a JSON file mapping "yyyy-MM-dd" to a
// metric-name → nullable value object. The file is re-read on every query
// so a bridge process can keep appending days.
type File struct {
	path string
}

// NewFile returns a file-backed sensor source.
func NewFile(path string) *File {
	return &File{path: path}
}

// QueryDay looks up the recorded readings for the given day. Days missing
// from the recording yield an all-null sample, matching a day with no
// sensor coverage. Unknown metric names in the file are ignored.
func (f *File) QueryDay(_ context.Context, participantID string, date time.Time) (models.DaySample, error) {
	sample := models.NewDaySample(participantID, date)

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sample, ErrUnavailable
		}
		return sample, fmt.Errorf("read sensor recording: %w", err)
	}

	var days map[string]map[string]*float64
	if err := json.Unmarshal(raw, &days); err != nil {
		return sample, fmt.Errorf("parse sensor recording: %w", err)
	}

	readings, ok := days[sample.Date]
	if !ok {
		return sample, nil
	}
	for name, value := range readings {
		if models.IsValidMetric(name) {
			sample.SetValue(models.Metric(name), value)
		}
	}
	return sample, nil
}
