package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	banner = strings.Repeat("=", 60)
	rule   = strings.Repeat("-", 30)
)

type textWriter struct {
	w *bufio.Writer
}

func (t textWriter) line(format string, args ...any) {
	fmt.Fprintf(t.w, format+"\n", args...)
}

func (t textWriter) section(title string) {
	t.line("%s:", title)
	t.line("%s", rule)
}

func writeText(w io.Writer, r engine.Result) error {
	t := textWriter{w: bufio.NewWriter(w)}

	t.line("%s", banner)
	t.line("DETAILED HARDWARE DIAGNOSTIC REPORT")
	t.line("%s", banner)
	t.line("")
	t.line("Generated: %s", r.Timestamp.Format(timeLayout))
	t.line("")

	writePlatform(t, r.Platform)

	for _, c := range r.Components {
		switch c.ID {
		case telemetry.DomainBattery:
			writeBattery(t, c)
		case telemetry.DomainMemory:
			writeMemory(t, c)
		case telemetry.DomainStorage:
			writeStorage(t, c)
		case telemetry.DomainTemperature:
			writeTemperature(t, c)
		case telemetry.DomainPerformance:
			writePerformance(t, c)
		}
	}

	if len(r.Predictions) > 0 {
		t.section("LIFESPAN PREDICTIONS")
		for _, p := range r.Predictions {
			t.line("%s:", p.Label)
			t.line("  Current Age: %s", p.CurrentAge)
			t.line("  Estimated Lifespan: %s", p.EstimatedLifespan)
			t.line("  Remaining Life: %s", p.RemainingLife)
			t.line("  Risk Level: %s", p.Risk)
		}
		t.line("")
	}

	writeOverall(t, r)

	return t.w.Flush()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func writePlatform(t textWriter, p telemetry.PlatformInfo) {
	t.section("SYSTEM INFORMATION")
	t.line("Platform: %s", orUnknown(p.OS))
	t.line("Platform Version: %s", orUnknown(p.Version))
	t.line("Architecture: %s", orUnknown(p.Architecture))
	t.line("Processor: %s", orUnknown(p.Processor))
	t.line("Hostname: %s", orUnknown(p.Hostname))
	if p.BootTime.IsZero() {
		t.line("Boot Time: Unknown")
	} else {
		t.line("Boot Time: %s", p.BootTime.Format(timeLayout))
	}
	t.line("Uptime Hours: %.1f", p.UptimeHours)
	t.line("")
}

func unavailable(t textWriter, c health.ComponentHealth) {
	t.line("%s telemetry unavailable: %s", c.ID.Title(), c.Err)
	t.line("Health Score: %.1f%% (default)", c.Score)
	t.line("")
}

func writeBattery(t textWriter, c health.ComponentHealth) {
	t.section("BATTERY ANALYSIS")
	if c.Battery == nil {
		unavailable(t, c)
		return
	}

	b := c.Battery
	if !b.Present {
		t.line("No battery detected (Desktop system)")
		t.line("")
		return
	}

	t.line("Current Charge: %.1f%%", b.ChargePercent)
	t.line("Power Plugged: %s", yesNo(b.PluggedIn))
	t.line("Estimated Cycles: %d", int(b.EstimatedCycles))
	t.line("Health Score: %.1f%%", c.Score)
	t.line("Estimated Remaining Years: %.1f", b.RemainingYears)
	if b.SecondsRemaining != nil && *b.SecondsRemaining > 0 {
		secs := *b.SecondsRemaining
		t.line("Time Remaining: %dh %dm", secs/3600, (secs%3600)/60)
	}
	t.line("")
}

func writeMemory(t textWriter, c health.ComponentHealth) {
	t.section("MEMORY ANALYSIS")
	if c.Memory == nil {
		unavailable(t, c)
		return
	}

	m := c.Memory
	t.line("Total RAM: %.2f GB", m.TotalGB)
	t.line("Available RAM: %.2f GB", m.AvailableGB)
	t.line("Used Percentage: %.1f%%", m.UsedPercent)
	t.line("Health Score: %.1f%%", c.Score)
	t.line("Estimated Age: %d years", m.EstimatedAgeYears)
	t.line("Estimated Remaining Life: %.1f years", m.RemainingYears)
	t.line("")
}

func writeStorage(t textWriter, c health.ComponentHealth) {
	t.section("STORAGE ANALYSIS")
	if c.Storage == nil {
		unavailable(t, c)
		return
	}
	if len(c.Storage.Devices) == 0 {
		t.line("No readable partitions")
		t.line("")
		return
	}

	for _, d := range c.Storage.Devices {
		t.line("Device: %s", d.DeviceID)
		t.line("  Mount Point: %s", orNA(d.MountPoint))
		t.line("  File System: %s", orNA(d.FilesystemType))
		t.line("  Total Size: %.2f GB", d.TotalGB)
		t.line("  Used: %.1f%%", d.UsedPercent)
		t.line("  Drive Type: %s", d.DriveType())
		t.line("  Health Score: %.1f%%", d.Score)
		t.line("  Estimated Age: %d years", d.EstimatedAgeYears)
		t.line("  Est. Remaining Life: %.1f years", d.RemainingYears)
		t.line("")
	}
}

func writeTemperature(t textWriter, c health.ComponentHealth) {
	t.section("TEMPERATURE MONITORING")
	if c.Temperature == nil || len(c.Temperature.Sensors) == 0 {
		t.line("Temperature sensors not available or accessible")
		t.line("")
		return
	}

	for _, s := range c.Temperature.Sensors {
		t.line("Sensor: %s", s.SensorID)
		t.line("  Current: %.1f°C", s.CurrentC)
		if s.HighC != nil {
			t.line("  High Threshold: %.1f°C", *s.HighC)
		}
		if s.CriticalC != nil {
			t.line("  Critical Threshold: %.1f°C", *s.CriticalC)
		}
		t.line("  Health Score: %.1f%%", s.Score)
		t.line("")
	}
}

func writePerformance(t textWriter, c health.ComponentHealth) {
	t.section("PERFORMANCE ANALYSIS")
	if c.Performance == nil {
		unavailable(t, c)
		return
	}

	p := c.Performance
	t.line("CPU Usage: %.1f%%", p.UsedPercent)
	if p.FrequencyMHz != nil {
		t.line("CPU Frequency: %.0f MHz", *p.FrequencyMHz)
	}
	t.line("CPU Cores: %d", p.CoreCount)
	t.line("Performance Health Score: %.1f%%", c.Score)
	t.line("")
}

func writeOverall(t textWriter, r engine.Result) {
	t.section("OVERALL ASSESSMENT")
	if r.Overall == nil {
		t.line("No components analyzed")
		return
	}

	t.line("Overall System Health: %.1f%%", r.Overall.MeanScore)
	status := overallStatus(*r.Overall)
	t.line("Status: %s - %s", status, status.Description())

	t.line("")
	t.line("Recommendations:")
	if len(r.Recommendations) == 0 {
		t.line("• None, all components are healthy")
		return
	}
	for _, rec := range r.Recommendations {
		t.line("• %s", rec)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
