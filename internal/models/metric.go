// ABOUTME: Gait metric enum with directionality for anomaly detection.
// ABOUTME: Defines the five tracked mobility metrics and their display metadata.
package models

// Metric identifies one of the tracked gait mobility metrics. The string
// value doubles as the remote store column name.
type Metric string

const (
	MetricDoubleSupportTime Metric = "double_support_time"
	MetricWalkingAsymmetry  Metric = "walking_asymmetry"
	MetricWalkingSpeed      Metric = "walking_speed"
	MetricWalkingStepLength Metric = "walking_step_length"
	MetricWalkingSteadiness Metric = "walking_steadiness"
)

// Direction declares which way a metric moves when mobility deteriorates.
type Direction string

const (
	// WorsensOnIncrease flags values above the baseline band.
	WorsensOnIncrease Direction = "increase"
	// WorsensOnDecrease flags values below the baseline band.
	WorsensOnDecrease Direction = "decrease"
)

// AllMetrics lists every tracked metric in chart order.
var AllMetrics = []Metric{
	MetricDoubleSupportTime,
	MetricWalkingAsymmetry,
	MetricWalkingSpeed,
	MetricWalkingStepLength,
	MetricWalkingSteadiness,
}

// MetricDirections maps each metric to its deterioration direction.
var MetricDirections = map[Metric]Direction{
	MetricDoubleSupportTime: WorsensOnIncrease,
	MetricWalkingAsymmetry:  WorsensOnIncrease,
	MetricWalkingSpeed:      WorsensOnDecrease,
	MetricWalkingStepLength: WorsensOnDecrease,
	MetricWalkingSteadiness: WorsensOnDecrease,
}

// MetricLabels maps metric names to human-readable chart labels.
var MetricLabels = map[Metric]string{
	MetricDoubleSupportTime: "Double Support Time",
	MetricWalkingAsymmetry:  "Walking Asymmetry",
	MetricWalkingSpeed:      "Walking Speed",
	MetricWalkingStepLength: "Step Length",
	MetricWalkingSteadiness: "Walking Steadiness",
}

// MetricUnits maps metric names to their display units.
var MetricUnits = map[Metric]string{
	MetricDoubleSupportTime: "s",
	MetricWalkingAsymmetry:  "%",
	MetricWalkingSpeed:      "m/s",
	MetricWalkingStepLength: "m",
	MetricWalkingSteadiness: "%",
}

// IsValidMetric checks if a string names a tracked metric.
func IsValidMetric(s string) bool {
	for _, m := range AllMetrics {
		if string(m) == s {
			return true
		}
	}
	return false
}
