package report

import (
	"math"
	"time"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/prediction"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

// View is the structured form of a result. Scores are rounded to one
// decimal place.
type View struct {
	Timestamp       time.Time              `json:"timestamp" yaml:"timestamp"`
	Platform        telemetry.PlatformInfo `json:"platform" yaml:"platform"`
	Components      []ComponentView        `json:"components" yaml:"components"`
	Overall         *OverallView           `json:"overall" yaml:"overall"`
	Predictions     []prediction.Record    `json:"predictions" yaml:"predictions"`
	HighRiskCount   int                    `json:"high_risk_count" yaml:"high_risk_count"`
	Recommendations []string               `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

type ComponentView struct {
	ID          telemetry.Domain          `json:"id" yaml:"id"`
	Score       float64                   `json:"score" yaml:"score"`
	Status      health.Status             `json:"status" yaml:"status"`
	Summary     string                    `json:"summary" yaml:"summary"`
	Error       string                    `json:"error,omitempty" yaml:"error,omitempty"`
	Battery     *health.BatteryDetail     `json:"battery,omitempty" yaml:"battery,omitempty"`
	Memory      *health.MemoryDetail      `json:"memory,omitempty" yaml:"memory,omitempty"`
	Storage     *health.StorageDetail     `json:"storage,omitempty" yaml:"storage,omitempty"`
	Temperature *health.TemperatureDetail `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Performance *health.PerformanceDetail `json:"performance,omitempty" yaml:"performance,omitempty"`
}

type OverallView struct {
	Score      float64              `json:"score" yaml:"score"`
	Status     health.OverallStatus `json:"status" yaml:"status"`
	Components int                  `json:"components" yaml:"components"`
}

func NewView(r engine.Result) View {
	v := View{
		Timestamp:     r.Timestamp,
		Platform:      r.Platform,
		Components:    make([]ComponentView, 0, len(r.Components)),
		Predictions:   r.Predictions,
		HighRiskCount: prediction.HighRiskCount(r.Predictions),
	}
	if v.Predictions == nil {
		v.Predictions = []prediction.Record{}
	}

	for _, c := range r.Components {
		v.Components = append(v.Components, ComponentView{
			ID:          c.ID,
			Score:       round1(c.Score),
			Status:      componentStatus(c),
			Summary:     c.Summary,
			Error:       c.Err,
			Battery:     c.Battery,
			Memory:      c.Memory,
			Storage:     c.Storage,
			Temperature: c.Temperature,
			Performance: c.Performance,
		})
	}

	if r.Overall != nil {
		v.Overall = &OverallView{
			Score:      round1(r.Overall.MeanScore),
			Status:     overallStatus(*r.Overall),
			Components: r.Overall.Components,
		}
	}

	for _, rec := range r.Recommendations {
		v.Recommendations = append(v.Recommendations, rec.String())
	}

	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Displayed statuses are banded on the one-decimal score so a rendered
// "85.0" never reads GOOD.
func componentStatus(c health.ComponentHealth) health.Status {
	return health.StatusFor(round1(c.Score))
}

func overallStatus(o health.OverallHealthIndex) health.OverallStatus {
	return health.OverallStatusFor(round1(o.MeanScore))
}
