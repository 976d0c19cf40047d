package prediction_test

import (
	"testing"

	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/prediction"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func battery(score, cycles, years float64) health.ComponentHealth {
	return health.ComponentHealth{
		ID:    telemetry.DomainBattery,
		Score: score,
		Battery: &health.BatteryDetail{
			Present:         true,
			EstimatedCycles: cycles,
			RemainingYears:  years,
		},
	}
}

func memory(age int, remaining float64) health.ComponentHealth {
	return health.ComponentHealth{
		ID:     telemetry.DomainMemory,
		Memory: &health.MemoryDetail{EstimatedAgeYears: age, RemainingYears: remaining},
	}
}

func storage(devices ...health.DeviceHealth) health.ComponentHealth {
	return health.ComponentHealth{
		ID:      telemetry.DomainStorage,
		Storage: &health.StorageDetail{Devices: devices},
	}
}

func TestBatteryRisk(t *testing.T) {
	tests := []struct {
		score     float64
		risk      prediction.RiskLevel
		remaining string
	}{
		{29.9, prediction.RiskHigh, "3-6 months"},
		{29.96, prediction.RiskMedium, "6-12 months"},
		{30, prediction.RiskMedium, "6-12 months"},
		{59.9, prediction.RiskMedium, "6-12 months"},
		{59.96, prediction.RiskLow, "2.5 years"},
		{60, prediction.RiskLow, "2.5 years"},
	}

	for _, tt := range tests {
		records := prediction.Predict([]health.ComponentHealth{battery(tt.score, 50.7, 450.0/182.5)})
		require.Len(t, records, 1)
		r := records[0]
		assert.Equal(t, tt.risk, r.Risk, "score %.2f", tt.score)
		assert.Equal(t, tt.remaining, r.RemainingLife)
		assert.Equal(t, "50 cycles", r.CurrentAge)
		assert.Equal(t, "500-1000 cycles", r.EstimatedLifespan)
		assert.Equal(t, "Battery", r.Label)
	}
}

func TestMemoryRisk(t *testing.T) {
	tests := []struct {
		remaining float64
		want      prediction.RiskLevel
	}{
		{0.9, prediction.RiskHigh},
		{1.0, prediction.RiskMedium},
		{2.9, prediction.RiskMedium},
		{3.0, prediction.RiskLow},
		{8, prediction.RiskLow},
	}
	for _, tt := range tests {
		records := prediction.Predict([]health.ComponentHealth{memory(2, tt.remaining)})
		require.Len(t, records, 1)
		assert.Equal(t, tt.want, records[0].Risk, "remaining %.1f", tt.remaining)
	}

	r := prediction.Predict([]health.ComponentHealth{memory(6, 4)})[0]
	assert.Equal(t, "Memory (RAM)", r.Label)
	assert.Equal(t, "6 years", r.CurrentAge)
	assert.Equal(t, "8-10 years", r.EstimatedLifespan)
	assert.Equal(t, "4.0 years", r.RemainingLife)
	assert.Equal(t, prediction.RiskLow, r.Risk)
}

func TestStorageRisk(t *testing.T) {
	tests := []struct {
		remaining float64
		want      prediction.RiskLevel
	}{
		{0, prediction.RiskHigh},
		{1.0, prediction.RiskMedium},
		{1.9, prediction.RiskMedium},
		{2.0, prediction.RiskLow},
	}
	for _, tt := range tests {
		records := prediction.Predict([]health.ComponentHealth{storage(health.DeviceHealth{DeviceID: "sda1", RemainingYears: tt.remaining})})
		require.Len(t, records, 1)
		assert.Equal(t, tt.want, records[0].Risk, "remaining %.1f", tt.remaining)
	}
}

func TestStorageLabels(t *testing.T) {
	records := prediction.Predict([]health.ComponentHealth{storage(
		health.DeviceHealth{DeviceID: "/dev/nvme0n1p1", SolidState: true, EstimatedAgeYears: 2, RemainingYears: 6},
		health.DeviceHealth{DeviceID: "/dev/sda1", EstimatedAgeYears: 4, RemainingYears: 2},
	)})

	require.Len(t, records, 2)
	assert.Equal(t, "Storage (/dev/nvme0n1p1)", records[0].Label)
	assert.Equal(t, "8-10 years", records[0].EstimatedLifespan)
	assert.Equal(t, "6.0 years", records[0].RemainingLife)
	assert.Equal(t, prediction.RiskLow, records[0].Risk)
	assert.Equal(t, "/dev/sda1", records[1].Device)
	assert.Equal(t, "5-7 years", records[1].EstimatedLifespan)
	assert.Equal(t, "4 years", records[1].CurrentAge)
}

func TestPredictOrderAndEligibility(t *testing.T) {
	components := []health.ComponentHealth{
		storage(health.DeviceHealth{DeviceID: "sda1", RemainingYears: 2}),
		{ID: telemetry.DomainTemperature, Score: 95, Temperature: &health.TemperatureDetail{}},
		memory(2, 8),
		{ID: telemetry.DomainPerformance, Score: 90, Performance: &health.PerformanceDetail{}},
		battery(95, 50, 2.5),
	}

	records := prediction.Predict(components)
	require.Len(t, records, 3)
	assert.Equal(t, telemetry.DomainBattery, records[0].ComponentID)
	assert.Equal(t, telemetry.DomainMemory, records[1].ComponentID)
	assert.Equal(t, telemetry.DomainStorage, records[2].ComponentID)
}

func TestPredictSkipsFallbackAndDesktop(t *testing.T) {
	records := prediction.Predict([]health.ComponentHealth{
		{ID: telemetry.DomainBattery, Score: 100, Battery: &health.BatteryDetail{}},
		{ID: telemetry.DomainMemory, Score: 50, Err: "denied"},
		{ID: telemetry.DomainStorage, Score: 50, Err: "denied"},
	})
	assert.Empty(t, records)
	assert.Empty(t, prediction.Predict(nil))
}

func TestHighRiskCount(t *testing.T) {
	records := prediction.Predict([]health.ComponentHealth{
		battery(10, 5000, 0),
		memory(6, 0.5),
		storage(health.DeviceHealth{DeviceID: "sda1", RemainingYears: 6}),
	})
	assert.Equal(t, 2, prediction.HighRiskCount(records))
}
