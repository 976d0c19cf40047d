package engine_test

import (
	stderrors "errors"
	"testing"
	"time"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/prediction"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gb = uint64(1 << 30)

func fullSnapshot() telemetry.Snapshot {
	return telemetry.Snapshot{
		Timestamp: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Platform:  telemetry.PlatformInfo{OS: "linux", UptimeHours: 100 * 24},
		Battery:   telemetry.Ok(&telemetry.BatteryReading{ChargePercent: 80}),
		Memory:    telemetry.Ok(telemetry.MemoryReading{TotalBytes: 16 * gb, AvailableBytes: gb, UsedPercent: 92}),
		Storage: telemetry.Ok([]telemetry.PartitionReading{
			{DeviceID: "/dev/nvme0n1p2", MountPoint: "/", TotalBytes: 1200 * gb, UsedPercent: 96, IsSolidState: true},
		}),
		Temperature: telemetry.Ok([]telemetry.SensorReading{{SensorID: "a", CurrentC: 70}, {SensorID: "b", CurrentC: 82}}),
		Performance: telemetry.Ok(telemetry.CPUReading{UsedPercent: 12, CoreCount: 8}),
	}
}

func TestEvaluateScenarios(t *testing.T) {
	r := engine.Evaluate(fullSnapshot())

	require.Len(t, r.Components, 5)
	ids := make([]telemetry.Domain, len(r.Components))
	for i, c := range r.Components {
		ids[i] = c.ID
		assert.GreaterOrEqual(t, c.Score, 0.0)
		assert.LessOrEqual(t, c.Score, 100.0)
	}
	assert.Equal(t, telemetry.AllDomains(), ids)

	bat, ok := r.Component(telemetry.DomainBattery)
	require.True(t, ok)
	assert.Equal(t, 95.0, bat.Score)

	mem, _ := r.Component(telemetry.DomainMemory)
	assert.Equal(t, 30.0, mem.Score)
	assert.Equal(t, 2, mem.Memory.EstimatedAgeYears)

	temp, _ := r.Component(telemetry.DomainTemperature)
	assert.Equal(t, 35.0, temp.Score)
	assert.Equal(t, health.StatusPoor, temp.Status)

	sto, _ := r.Component(telemetry.DomainStorage)
	assert.Equal(t, 20.0, sto.Score)

	require.Len(t, r.Predictions, 3)
	assert.Equal(t, prediction.RiskLow, r.Predictions[0].Risk)
	assert.Equal(t, "2.5 years", r.Predictions[0].RemainingLife)
	assert.Equal(t, prediction.RiskLow, r.Predictions[1].Risk)
	assert.Equal(t, "8.0 years", r.Predictions[1].RemainingLife)
	assert.Equal(t, prediction.RiskLow, r.Predictions[2].Risk)
	assert.Equal(t, "6.0 years", r.Predictions[2].RemainingLife)

	require.NotNil(t, r.Overall)
	assert.InDelta(t, (95.0+30+20+35+90)/5, r.Overall.MeanScore, 1e-9)
	assert.Equal(t, health.OverallFair, r.Overall.Status)
	assert.Len(t, r.Recommendations, 3)
}

func TestEvaluateSmallMemory(t *testing.T) {
	r := engine.Evaluate(telemetry.Snapshot{
		Memory: telemetry.Ok(telemetry.MemoryReading{TotalBytes: 4 * gb, UsedPercent: 50}),
	})

	require.Len(t, r.Components, 1)
	assert.Equal(t, 95.0, r.Components[0].Score)
	require.Len(t, r.Predictions, 1)
	assert.Equal(t, 4.0, r.Predictions[0].RemainingYears)
	assert.Equal(t, prediction.RiskLow, r.Predictions[0].Risk)
}

func TestEvaluateEmpty(t *testing.T) {
	r := engine.Evaluate(telemetry.Snapshot{})

	assert.Nil(t, r.Overall)
	assert.Empty(t, r.Components)
	assert.Empty(t, r.Predictions)
	assert.Empty(t, r.Recommendations)
	assert.False(t, engine.Unavailable(telemetry.Snapshot{}))
}

func TestEvaluateIsIdempotent(t *testing.T) {
	s := fullSnapshot()
	assert.Equal(t, engine.Evaluate(s), engine.Evaluate(s))
}

func TestEvaluateContainsBatteryFailure(t *testing.T) {
	healthy := engine.Evaluate(fullSnapshot())

	s := fullSnapshot()
	s.Battery = telemetry.Failed[*telemetry.BatteryReading](stderrors.New("acpi read failed"))
	degraded := engine.Evaluate(s)

	require.Len(t, degraded.Components, 5)
	bat, _ := degraded.Component(telemetry.DomainBattery)
	assert.Equal(t, 50.0, bat.Score)
	assert.True(t, bat.Fallback())

	for _, d := range []telemetry.Domain{telemetry.DomainMemory, telemetry.DomainStorage, telemetry.DomainTemperature, telemetry.DomainPerformance} {
		want, _ := healthy.Component(d)
		got, _ := degraded.Component(d)
		assert.Equal(t, want, got, d.String())
	}

	assert.Len(t, degraded.Predictions, 2)
	assert.False(t, engine.Unavailable(s))
}

func TestUnavailable(t *testing.T) {
	fail := stderrors.New("no access")
	s := telemetry.Snapshot{
		Memory:      telemetry.Failed[telemetry.MemoryReading](fail),
		Performance: telemetry.Failed[telemetry.CPUReading](fail),
	}
	assert.True(t, engine.Unavailable(s))

	r := engine.Evaluate(s)
	require.NotNil(t, r.Overall)
	assert.Equal(t, 60.0, r.Overall.MeanScore)
}
