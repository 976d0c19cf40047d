// Package prediction estimates remaining life and failure risk for the
// components that physically wear: battery, memory and storage devices.
package prediction

import (
	"fmt"
	"math"

	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Record is one lifespan estimate. Storage produces one record per device.
type Record struct {
	ComponentID       telemetry.Domain `json:"component_id" yaml:"component_id"`
	Device            string           `json:"device,omitempty" yaml:"device,omitempty"`
	Label             string           `json:"label" yaml:"label"`
	CurrentAge        string           `json:"current_age" yaml:"current_age"`
	EstimatedLifespan string           `json:"estimated_lifespan" yaml:"estimated_lifespan"`
	RemainingLife     string           `json:"remaining_life" yaml:"remaining_life"`
	RemainingYears    float64          `json:"remaining_years" yaml:"remaining_years"`
	Risk              RiskLevel        `json:"risk" yaml:"risk"`
}

// Predict derives records from scored components. Output order is battery,
// memory, then storage devices in provider order, regardless of input
// order. Components without detail (fallbacks, desktops) yield nothing.
func Predict(components []health.ComponentHealth) []Record {
	var battery, memory, storage []Record
	for _, c := range components {
		switch c.ID {
		case telemetry.DomainBattery:
			if c.Battery != nil && c.Battery.Present {
				battery = append(battery, batteryRecord(c.Score, c.Battery))
			}
		case telemetry.DomainMemory:
			if c.Memory != nil {
				memory = append(memory, memoryRecord(c.Memory))
			}
		case telemetry.DomainStorage:
			if c.Storage != nil {
				for _, d := range c.Storage.Devices {
					storage = append(storage, storageRecord(d))
				}
			}
		}
	}

	out := make([]Record, 0, len(battery)+len(memory)+len(storage))
	out = append(out, battery...)
	out = append(out, memory...)
	return append(out, storage...)
}

// HighRiskCount returns how many records are at HIGH risk.
func HighRiskCount(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Risk == RiskHigh {
			n++
		}
	}
	return n
}

func batteryRecord(score float64, d *health.BatteryDetail) Record {
	r := Record{
		ComponentID:       telemetry.DomainBattery,
		Label:             "Battery",
		CurrentAge:        fmt.Sprintf("%d cycles", int(d.EstimatedCycles)),
		EstimatedLifespan: "500-1000 cycles",
		RemainingYears:    d.RemainingYears,
	}

	// Banded on the score as displayed, to one decimal.
	score = math.Round(score*10) / 10
	switch {
	case score < 30:
		r.Risk, r.RemainingLife = RiskHigh, "3-6 months"
	case score < 60:
		r.Risk, r.RemainingLife = RiskMedium, "6-12 months"
	default:
		r.Risk, r.RemainingLife = RiskLow, years(d.RemainingYears)
	}
	return r
}

func memoryRecord(d *health.MemoryDetail) Record {
	r := Record{
		ComponentID:       telemetry.DomainMemory,
		Label:             "Memory (RAM)",
		CurrentAge:        fmt.Sprintf("%d years", d.EstimatedAgeYears),
		EstimatedLifespan: "8-10 years",
		RemainingLife:     years(d.RemainingYears),
		RemainingYears:    d.RemainingYears,
	}

	switch {
	case d.RemainingYears < 1:
		r.Risk = RiskHigh
	case d.RemainingYears < 3:
		r.Risk = RiskMedium
	default:
		r.Risk = RiskLow
	}
	return r
}

func storageRecord(d health.DeviceHealth) Record {
	lifespan := "5-7 years"
	if d.SolidState {
		lifespan = "8-10 years"
	}

	r := Record{
		ComponentID:       telemetry.DomainStorage,
		Device:            d.DeviceID,
		Label:             fmt.Sprintf("Storage (%s)", d.DeviceID),
		CurrentAge:        fmt.Sprintf("%d years", d.EstimatedAgeYears),
		EstimatedLifespan: lifespan,
		RemainingLife:     years(d.RemainingYears),
		RemainingYears:    d.RemainingYears,
	}

	switch {
	case d.RemainingYears < 1:
		r.Risk = RiskHigh
	case d.RemainingYears < 2:
		r.Risk = RiskMedium
	default:
		r.Risk = RiskLow
	}
	return r
}

func years(v float64) string {
	return fmt.Sprintf("%.1f years", v)
}
