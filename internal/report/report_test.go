package report_test

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/report"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const gb = uint64(1 << 30)

func sampleResult() engine.Result {
	secs := int64(2*3600 + 15*60)
	high := 90.0
	return engine.Evaluate(telemetry.Snapshot{
		Timestamp: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Platform:  telemetry.PlatformInfo{OS: "linux", Hostname: "box", UptimeHours: 2400},
		Battery:   telemetry.Ok(&telemetry.BatteryReading{ChargePercent: 80, SecondsRemaining: &secs}),
		Memory:    telemetry.Ok(telemetry.MemoryReading{TotalBytes: 16 * gb, AvailableBytes: 2 * gb, UsedPercent: 92}),
		Storage: telemetry.Ok([]telemetry.PartitionReading{
			{DeviceID: "/dev/nvme0n1p2", MountPoint: "/", FilesystemType: "ext4", TotalBytes: 1200 * gb, UsedPercent: 96, IsSolidState: true},
		}),
		Temperature: telemetry.Ok([]telemetry.SensorReading{{SensorID: "coretemp", CurrentC: 70, HighC: &high}, {SensorID: "gpu0", CurrentC: 82}}),
		Performance: telemetry.Failed[telemetry.CPUReading](stderrors.New("sample failed")),
	})
}

func render(t *testing.T, f report.Format, r engine.Result) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, f, r))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	f, err := report.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, f)

	f, err = report.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, report.FormatText, f)

	_, err = report.ParseFormat("xml")
	assert.True(t, errors.HasCode(err, errors.ErrInvalidFormat))
}

func TestTextReport(t *testing.T) {
	out := render(t, report.FormatText, sampleResult())

	headers := []string{
		"DETAILED HARDWARE DIAGNOSTIC REPORT",
		"SYSTEM INFORMATION:",
		"BATTERY ANALYSIS:",
		"MEMORY ANALYSIS:",
		"STORAGE ANALYSIS:",
		"TEMPERATURE MONITORING:",
		"PERFORMANCE ANALYSIS:",
		"OVERALL ASSESSMENT:",
	}
	last := -1
	for _, h := range headers {
		idx := strings.Index(out, h)
		require.NotEqual(t, -1, idx, h)
		assert.Greater(t, idx, last, "%s out of order", h)
		last = idx
	}

	assert.Contains(t, out, "Generated: 2024-05-01 09:30:00")
	assert.Contains(t, out, "Estimated Cycles: 50")
	assert.Contains(t, out, "Time Remaining: 2h 15m")
	assert.Contains(t, out, "Drive Type: SSD")
	assert.Contains(t, out, "High Threshold: 90.0°C")
	assert.Contains(t, out, "Performance telemetry unavailable")
	assert.Contains(t, out, "Storage (/dev/nvme0n1p2):")
	assert.Contains(t, out, "• Memory: High usage detected, consider adding RAM")
}

func TestTextReportEmpty(t *testing.T) {
	out := render(t, report.FormatText, engine.Evaluate(telemetry.Snapshot{}))
	assert.Contains(t, out, "SYSTEM INFORMATION:")
	assert.NotContains(t, out, "BATTERY ANALYSIS:")
	assert.Contains(t, out, "No components analyzed")
}

func TestSummary(t *testing.T) {
	r := sampleResult()
	out := render(t, report.FormatSummary, r)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 9)
	assert.Equal(t, "HEALTH SUMMARY", lines[0])
	assert.Equal(t, "Overall: FAIR", lines[3])
	assert.Equal(t, "[GOOD] Battery: 95%", lines[6])
	assert.Equal(t, "[POOR] Memory: 30%", lines[7])
	assert.Equal(t, "[FAIR] Performance: 70%", lines[8])
	assert.NotContains(t, out, "high failure risk")

	assert.Contains(t, report.SummaryLine(r), "FAIR")
	assert.Equal(t, "no components analyzed", report.SummaryLine(engine.Result{}))
}

func TestJSON(t *testing.T) {
	out := render(t, report.FormatJSON, sampleResult())

	var v report.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Len(t, v.Components, 5)
	assert.Equal(t, telemetry.DomainBattery, v.Components[0].ID)
	assert.Equal(t, 35.0, v.Components[3].Score)
	assert.Equal(t, "sample failed", v.Components[4].Error)
	require.NotNil(t, v.Overall)
	assert.Equal(t, 50.0, v.Overall.Score)
	assert.Len(t, v.Predictions, 3)

	empty := render(t, report.FormatJSON, engine.Evaluate(telemetry.Snapshot{}))
	assert.Contains(t, empty, `"overall": null`)
	assert.Contains(t, empty, `"predictions": []`)
}

func TestYAML(t *testing.T) {
	out := render(t, report.FormatYAML, sampleResult())

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "components")
	assert.Contains(t, doc, "predictions")
	assert.Contains(t, out, "label: Memory (RAM)")
}

func TestPrometheus(t *testing.T) {
	out := render(t, report.FormatPrometheus, sampleResult())

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(strings.NewReader(out))
	require.NoError(t, err)

	require.Contains(t, families, "hwhealth_overall_score")
	assert.Equal(t, 50.0, families["hwhealth_overall_score"].GetMetric()[0].GetGauge().GetValue())
	assert.Len(t, families["hwhealth_component_score"].GetMetric(), 5)
	assert.Len(t, families["hwhealth_sensor_temperature_celsius"].GetMetric(), 2)
	assert.Len(t, families["hwhealth_prediction_risk_level"].GetMetric(), 3)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", report.ContentType(report.FormatJSON))
	assert.True(t, strings.HasPrefix(report.ContentType(report.FormatPrometheus), "text/plain"))
}
