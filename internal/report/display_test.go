package report_test

import (
	"bytes"
	"testing"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/report"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredResult(scores map[telemetry.Domain]float64) engine.Result {
	var components []health.ComponentHealth
	for _, d := range telemetry.AllDomains() {
		score, ok := scores[d]
		if !ok {
			continue
		}
		components = append(components, health.ComponentHealth{
			ID:     d,
			Score:  score,
			Status: health.StatusFor(score),
		})
	}

	r := engine.Result{
		Components:      components,
		Recommendations: health.Recommend(components),
	}
	if idx, ok := health.Aggregate(components); ok {
		r.Overall = &idx
	}
	return r
}

func TestDisplayedStatusFollowsRoundedScore(t *testing.T) {
	r := scoredResult(map[telemetry.Domain]float64{
		telemetry.DomainBattery:     59.8,
		telemetry.DomainMemory:      95,
		telemetry.DomainStorage:     100,
		telemetry.DomainTemperature: 90,
		telemetry.DomainPerformance: 79.96,
	})
	require.NotNil(t, r.Overall)
	require.Equal(t, health.OverallGood, r.Overall.Status, "raw mean is just under the EXCELLENT band")

	v := report.NewView(r)
	require.NotNil(t, v.Overall)
	assert.Equal(t, 85.0, v.Overall.Score)
	assert.Equal(t, health.OverallExcellent, v.Overall.Status)
	assert.Equal(t, 80.0, v.Components[4].Score)
	assert.Equal(t, health.StatusGood, v.Components[4].Status)

	out := render(t, report.FormatText, r)
	assert.Contains(t, out, "Status: EXCELLENT")

	summary := render(t, report.FormatSummary, r)
	assert.Contains(t, summary, "Overall: EXCELLENT")
}

func TestTextReportWithoutRecommendations(t *testing.T) {
	r := scoredResult(map[telemetry.Domain]float64{
		telemetry.DomainMemory:      95,
		telemetry.DomainPerformance: 70,
	})
	require.Empty(t, r.Recommendations)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatText, r))
	assert.Contains(t, buf.String(), "Recommendations:\n• None, all components are healthy\n")
}
