// Package health turns raw telemetry into per-component health scores and
// combines them into an overall system health index.
package health

import "codeberg.org/mutker/hwhealth/internal/telemetry"

// Status is the qualitative band of a single component score.
type Status string

const (
	StatusGood Status = "GOOD"
	StatusFair Status = "FAIR"
	StatusPoor Status = "POOR"
)

// Component band thresholds.
const (
	ThresholdGood = 80.0
	ThresholdFair = 60.0
)

// StatusFor maps a score to its band.
func StatusFor(score float64) Status {
	switch {
	case score >= ThresholdGood:
		return StatusGood
	case score >= ThresholdFair:
		return StatusFair
	default:
		return StatusPoor
	}
}

// Fallback scores substituted when a domain's telemetry is unavailable.
const (
	FallbackBattery     = 50.0
	FallbackMemory      = 50.0
	FallbackStorage     = 50.0
	FallbackTemperature = 85.0
	FallbackPerformance = 70.0

	// DesktopBatteryScore applies when no battery is present.
	DesktopBatteryScore = 100.0
)

const bytesPerGB = 1 << 30

// ComponentHealth is the scored state of one domain. On success exactly one
// detail pointer is set. A fallback component has no detail and Err holds
// the provider message.
type ComponentHealth struct {
	ID      telemetry.Domain
	Score   float64
	Status  Status
	Summary string
	Err     string

	Battery     *BatteryDetail
	Memory      *MemoryDetail
	Storage     *StorageDetail
	Temperature *TemperatureDetail
	Performance *PerformanceDetail
}

// Fallback reports whether the score is a substituted default.
func (c ComponentHealth) Fallback() bool {
	return c.Err != ""
}

type BatteryDetail struct {
	Present          bool    `json:"present" yaml:"present"`
	ChargePercent    float64 `json:"charge_percent" yaml:"charge_percent"`
	PluggedIn        bool    `json:"plugged_in" yaml:"plugged_in"`
	SecondsRemaining *int64  `json:"seconds_remaining,omitempty" yaml:"seconds_remaining,omitempty"`
	EstimatedCycles  float64 `json:"estimated_cycles" yaml:"estimated_cycles"`
	RemainingCycles  float64 `json:"remaining_cycles" yaml:"remaining_cycles"`
	RemainingYears   float64 `json:"remaining_years" yaml:"remaining_years"`
}

type MemoryDetail struct {
	TotalGB           float64 `json:"total_gb" yaml:"total_gb"`
	AvailableGB       float64 `json:"available_gb" yaml:"available_gb"`
	UsedPercent       float64 `json:"used_percent" yaml:"used_percent"`
	EstimatedAgeYears int     `json:"estimated_age_years" yaml:"estimated_age_years"`
	RemainingYears    float64 `json:"remaining_years" yaml:"remaining_years"`
}

// StorageDetail holds one entry per readable partition, in provider order.
type StorageDetail struct {
	Devices []DeviceHealth `json:"devices,omitempty" yaml:"devices,omitempty"`
}

type DeviceHealth struct {
	DeviceID          string  `json:"device_id" yaml:"device_id"`
	MountPoint        string  `json:"mount_point" yaml:"mount_point"`
	FilesystemType    string  `json:"filesystem_type" yaml:"filesystem_type"`
	TotalGB           float64 `json:"total_gb" yaml:"total_gb"`
	UsedPercent       float64 `json:"used_percent" yaml:"used_percent"`
	SolidState        bool    `json:"solid_state" yaml:"solid_state"`
	Score             float64 `json:"score" yaml:"score"`
	Status            Status  `json:"status" yaml:"status"`
	EstimatedAgeYears int     `json:"estimated_age_years" yaml:"estimated_age_years"`
	LifespanYears     int     `json:"lifespan_years" yaml:"lifespan_years"`
	RemainingYears    float64 `json:"remaining_years" yaml:"remaining_years"`
}

// DriveType returns "SSD" or "HDD".
func (d DeviceHealth) DriveType() string {
	if d.SolidState {
		return "SSD"
	}
	return "HDD"
}

type TemperatureDetail struct {
	Sensors  []SensorHealth `json:"sensors,omitempty" yaml:"sensors,omitempty"`
	AverageC float64        `json:"average_c" yaml:"average_c"`
}

type SensorHealth struct {
	SensorID  string   `json:"sensor_id" yaml:"sensor_id"`
	CurrentC  float64  `json:"current_c" yaml:"current_c"`
	HighC     *float64 `json:"high_c,omitempty" yaml:"high_c,omitempty"`
	CriticalC *float64 `json:"critical_c,omitempty" yaml:"critical_c,omitempty"`
	Score     float64  `json:"score" yaml:"score"`
	Status    Status   `json:"status" yaml:"status"`
}

type PerformanceDetail struct {
	UsedPercent  float64  `json:"used_percent" yaml:"used_percent"`
	FrequencyMHz *float64 `json:"frequency_mhz,omitempty" yaml:"frequency_mhz,omitempty"`
	CoreCount    int      `json:"core_count" yaml:"core_count"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func newComponent(id telemetry.Domain, score float64, summary string) ComponentHealth {
	score = clamp(score, 0, 100)
	return ComponentHealth{
		ID:      id,
		Score:   score,
		Status:  StatusFor(score),
		Summary: summary,
	}
}

func fallback(id telemetry.Domain, score float64, err error) ComponentHealth {
	c := newComponent(id, score, "Telemetry unavailable")
	if err != nil {
		c.Err = err.Error()
	}
	return c
}
