package report_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/history"
	"codeberg.org/mutker/hwhealth/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyEntries() []history.Entry {
	score := 78.5
	return []history.Entry{
		{
			ID:            "b2",
			Timestamp:     time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
			Hostname:      "box",
			OverallScore:  &score,
			OverallStatus: "GOOD",
			Components: []history.ComponentScore{
				{Component: "memory", Score: 64, Status: "FAIR"},
				{Component: "storage", Score: 93, Status: "GOOD"},
			},
		},
		{ID: "a1", Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), Hostname: "box"},
	}
}

func TestWriteHistoryText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteHistory(&buf, report.FormatText, historyEntries()))

	out := buf.String()
	assert.Contains(t, out, "TIME")
	assert.Contains(t, out, "2024-05-02 10:00:00")
	assert.Contains(t, out, "78.5% GOOD")
	assert.Contains(t, out, "memory=64 storage=93")
}

func TestWriteHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteHistory(&buf, report.FormatText, nil))
	assert.Equal(t, "No scans recorded\n", buf.String())

	buf.Reset()
	require.NoError(t, report.WriteHistory(&buf, report.FormatJSON, nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestWriteHistoryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteHistory(&buf, report.FormatJSON, historyEntries()))

	var decoded []history.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "b2", decoded[0].ID)
	assert.Nil(t, decoded[1].OverallScore)
}

func TestWriteHistoryPrometheusRejected(t *testing.T) {
	var buf bytes.Buffer
	err := report.WriteHistory(&buf, report.FormatPrometheus, historyEntries())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, report.ErrInvalidFormat))
}
