package history

import (
	"context"
	"time"

	"codeberg.org/mutker/hwhealth/internal/engine"
)

// Recorder stores scan results and reads them back.
type Recorder interface {
	// Record stores r and returns the generated scan ID.
	Record(ctx context.Context, r engine.Result) (string, error)
	// Recent returns up to limit scans, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Enabled() bool
	Close() error
}

// Entry is one stored scan.
type Entry struct {
	ID            string            `json:"id" yaml:"id"`
	Timestamp     time.Time         `json:"timestamp" yaml:"timestamp"`
	Hostname      string            `json:"hostname" yaml:"hostname"`
	OverallScore  *float64          `json:"overall_score" yaml:"overall_score"`
	OverallStatus string            `json:"overall_status,omitempty" yaml:"overall_status,omitempty"`
	Components    []ComponentScore  `json:"components" yaml:"components"`
	Predictions   []PredictionEntry `json:"predictions" yaml:"predictions"`
}

type ComponentScore struct {
	Component string  `json:"component" yaml:"component"`
	Score     float64 `json:"score" yaml:"score"`
	Status    string  `json:"status" yaml:"status"`
	Summary   string  `json:"summary" yaml:"summary"`
	Fallback  bool    `json:"fallback" yaml:"fallback"`
}

type PredictionEntry struct {
	Component      string  `json:"component" yaml:"component"`
	Device         string  `json:"device,omitempty" yaml:"device,omitempty"`
	Label          string  `json:"label" yaml:"label"`
	RemainingYears float64 `json:"remaining_years" yaml:"remaining_years"`
	RemainingLife  string  `json:"remaining_life" yaml:"remaining_life"`
	Risk           string  `json:"risk" yaml:"risk"`
}
