// Package engine maps one telemetry snapshot to component health, the overall
// index and lifespan predictions. Evaluate is pure: it performs no I/O and
// keeps no state between calls.
package engine

import (
	"time"

	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/prediction"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

// Result is the complete outcome of one scan. Each scan yields a fresh
// Result that replaces any previous one.
type Result struct {
	Timestamp       time.Time
	Platform        telemetry.PlatformInfo
	Components      []health.ComponentHealth
	Overall         *health.OverallHealthIndex
	Predictions     []prediction.Record
	Recommendations []health.Recommendation
}

// Component returns the scored component for d, if present.
func (r Result) Component(d telemetry.Domain) (health.ComponentHealth, bool) {
	for _, c := range r.Components {
		if c.ID == d {
			return c, true
		}
	}
	return health.ComponentHealth{}, false
}

// Evaluate scores every collected domain in display order. Domains that were
// not requested are absent; domains that failed are scored with their
// fallback.
func Evaluate(s telemetry.Snapshot) Result {
	components := make([]health.ComponentHealth, 0, len(telemetry.AllDomains()))

	if s.Battery.Collected {
		components = append(components, health.ScoreBattery(s.Battery, s.Platform))
	}
	if s.Memory.Collected {
		components = append(components, health.ScoreMemory(s.Memory))
	}
	if s.Storage.Collected {
		components = append(components, health.ScoreStorage(s.Storage))
	}
	if s.Temperature.Collected {
		components = append(components, health.ScoreTemperature(s.Temperature))
	}
	if s.Performance.Collected {
		components = append(components, health.ScorePerformance(s.Performance))
	}

	r := Result{
		Timestamp:       s.Timestamp,
		Platform:        s.Platform,
		Components:      components,
		Predictions:     prediction.Predict(components),
		Recommendations: health.Recommend(components),
	}
	if idx, ok := health.Aggregate(components); ok {
		r.Overall = &idx
	}
	return r
}

// Unavailable reports whether every collected domain failed acquisition.
// An empty selection is not unavailable.
func Unavailable(s telemetry.Snapshot) bool {
	collected, failed := 0, 0
	count := func(c bool, err error) {
		if !c {
			return
		}
		collected++
		if err != nil {
			failed++
		}
	}

	count(s.Battery.Collected, s.Battery.Err)
	count(s.Memory.Collected, s.Memory.Err)
	count(s.Storage.Collected, s.Storage.Err)
	count(s.Temperature.Collected, s.Temperature.Err)
	count(s.Performance.Collected, s.Performance.Err)

	return collected > 0 && failed == collected
}
