// ABOUTME: Trailing moving-average baseline and two-sigma anomaly detection.
// ABOUTME: Population variance over the smoothed series, excluding its last point.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
)

const (
	// BaselineWindow is the trailing moving-average look-back count.
	BaselineWindow = 14
	// MinPoints is the minimum series length before flagging is possible.
	MinPoints = 14
	// SigmaMultiplier widens the baseline band to the alert threshold.
	SigmaMultiplier = 2.0
)

// Status classifies the most recent observation against the baseline.
type Status string

const (
	// StatusInsufficient means fewer than MinPoints observations exist;
	// such series are never flagged.
	StatusInsufficient Status = "insufficient"
	StatusNormal       Status = "normal"
	StatusWarning      Status = "warning"
)

// Point is one dated observation of a single metric.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Assessment is the outcome of analyzing one metric's series.
type Assessment struct {
	Status    Status  `json:"status"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Threshold float64 `json:"threshold"`
	Current   float64 `json:"current"`
	Points    int     `json:"points"`
}

// MovingAverage computes a trailing moving average with the given window.
// For index i it averages values[max(0, i-window+1) .. i], so the window
// shrinks near the start and every input yields one smoothed output.
func MovingAverage(values []float64, window int) []float64 {
	result := make([]float64, 0, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for _, v := range values[start : i+1] {
			sum += v
		}
		result = append(result, sum/float64(i+1-start))
	}
	return result
}

// Analyze flags whether the most recent raw observation is an outlier
// relative to recent history. The baseline mean and standard deviation are
// computed over the moving-average series excluding its last point, with
// population variance (denominator = baseline length). The compared value
// is the raw, not smoothed, most recent observation.
func Analyze(points []Point, direction models.Direction) Assessment {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	if len(sorted) < MinPoints {
		return Assessment{Status: StatusInsufficient, Points: len(sorted)}
	}

	values := make([]float64, len(sorted))
	for i, p := range sorted {
		values[i] = p.Value
	}

	movingAvg := MovingAverage(values, BaselineWindow)
	baseline := movingAvg[:len(movingAvg)-1]

	mean := 0.0
	for _, v := range baseline {
		mean += v
	}
	mean /= float64(len(baseline))

	variance := 0.0
	for _, v := range baseline {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(baseline))
	std := math.Sqrt(variance)

	current := values[len(values)-1]

	assessment := Assessment{
		Status:  StatusNormal,
		Mean:    mean,
		StdDev:  std,
		Current: current,
		Points:  len(sorted),
	}

	switch direction {
	case models.WorsensOnIncrease:
		assessment.Threshold = mean + SigmaMultiplier*std
		if current > assessment.Threshold {
			assessment.Status = StatusWarning
		}
	case models.WorsensOnDecrease:
		assessment.Threshold = mean - SigmaMultiplier*std
		if current < assessment.Threshold {
			assessment.Status = StatusWarning
		}
	}

	return assessment
}

// ExtractPoints pulls the non-null (date, value) pairs for one metric out
// of a day-sample series. Rows with unparseable dates are skipped.
func ExtractPoints(samples []models.DaySample, metric models.Metric) []Point {
	points := make([]Point, 0, len(samples))
	for i := range samples {
		value := samples[i].Value(metric)
		if value == nil {
			continue
		}
		day, err := samples[i].Day()
		if err != nil {
			continue
		}
		points = append(points, Point{Date: day, Value: *value})
	}
	return points
}
