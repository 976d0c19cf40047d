package health

import (
	"fmt"

	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

// OverallStatus is the band of the overall health index.
type OverallStatus string

const (
	OverallExcellent OverallStatus = "EXCELLENT"
	OverallGood      OverallStatus = "GOOD"
	OverallFair      OverallStatus = "FAIR"
	OverallPoor      OverallStatus = "POOR"
)

// Overall band thresholds.
const (
	ThresholdExcellent   = 85.0
	ThresholdOverallGood = 70.0
	ThresholdOverallFair = 50.0
)

// OverallStatusFor maps a mean score to its band.
func OverallStatusFor(score float64) OverallStatus {
	switch {
	case score >= ThresholdExcellent:
		return OverallExcellent
	case score >= ThresholdOverallGood:
		return OverallGood
	case score >= ThresholdOverallFair:
		return OverallFair
	default:
		return OverallPoor
	}
}

// Description is the one-line assessment printed next to the band.
func (s OverallStatus) Description() string {
	switch s {
	case OverallExcellent:
		return "System is running optimally"
	case OverallGood:
		return "System is healthy with minor issues"
	case OverallFair:
		return "Some components need attention"
	default:
		return "Multiple components require immediate attention"
	}
}

// OverallHealthIndex is the mean of the present component scores.
type OverallHealthIndex struct {
	MeanScore  float64
	Status     OverallStatus
	Components int
}

// Aggregate averages the component scores. It returns false when there are
// no components, in which case no mean is defined.
func Aggregate(components []ComponentHealth) (OverallHealthIndex, bool) {
	if len(components) == 0 {
		return OverallHealthIndex{}, false
	}

	scores := make([]float64, len(components))
	for i, c := range components {
		scores[i] = c.Score
	}

	m := clamp(mean(scores), 0, 100)
	return OverallHealthIndex{
		MeanScore:  m,
		Status:     OverallStatusFor(m),
		Components: len(components),
	}, true
}

// RecommendationThreshold is the score below which a component gets advice.
const RecommendationThreshold = 60.0

type Recommendation struct {
	ComponentID telemetry.Domain
	Message     string
}

func (r Recommendation) String() string {
	return fmt.Sprintf("%s: %s", r.ComponentID.Title(), r.Message)
}

// Recommend returns advice for every component scoring below the threshold,
// in component order.
func Recommend(components []ComponentHealth) []Recommendation {
	var out []Recommendation
	for _, c := range components {
		if c.Score >= RecommendationThreshold {
			continue
		}
		if msg := advice(c); msg != "" {
			out = append(out, Recommendation{ComponentID: c.ID, Message: msg})
		}
	}
	return out
}

func advice(c ComponentHealth) string {
	switch c.ID {
	case telemetry.DomainBattery:
		return fmt.Sprintf("Consider replacement, health at %.1f%%", c.Score)
	case telemetry.DomainMemory:
		return "High usage detected, consider adding RAM"
	case telemetry.DomainStorage:
		return "Check disk space and consider cleanup/upgrade"
	case telemetry.DomainTemperature:
		return "Check cooling system, clean fans/vents"
	case telemetry.DomainPerformance:
		return "High CPU usage, check for resource-heavy processes"
	default:
		return ""
	}
}
