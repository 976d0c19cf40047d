package health

import (
	"fmt"
	"math"

	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

// Heuristic constants. These are coarse proxies for data the OS does not
// expose (cycle counts, purchase dates) and are kept fixed.
const (
	daysPerCycle          = 2.0
	batteryLifespanCycles = 500.0
	memoryLifespanYears   = 10
	largeDriveGB          = 1000.0
)

// ScoreBattery scores the battery from its reading and the platform uptime.
// A nil reading means the host has no battery.
func ScoreBattery(s telemetry.Sample[*telemetry.BatteryReading], platform telemetry.PlatformInfo) ComponentHealth {
	if !s.Available() {
		return fallback(telemetry.DomainBattery, FallbackBattery, s.Err)
	}

	if s.Value == nil {
		c := newComponent(telemetry.DomainBattery, DesktopBatteryScore, "No battery detected (Desktop PC)")
		c.Battery = &BatteryDetail{}
		return c
	}

	r := s.Value
	cycles := math.Max(1, platform.UptimeDays()/daysPerCycle)
	remaining := math.Max(0, batteryLifespanCycles-cycles)
	years := remaining / (365 / daysPerCycle)

	c := newComponent(telemetry.DomainBattery, 100-cycles/10,
		fmt.Sprintf("%.0f%% charge, ~%.1fy left", r.ChargePercent, years))
	c.Battery = &BatteryDetail{
		Present:          true,
		ChargePercent:    r.ChargePercent,
		PluggedIn:        r.PluggedIn,
		SecondsRemaining: r.SecondsRemaining,
		EstimatedCycles:  cycles,
		RemainingCycles:  remaining,
		RemainingYears:   years,
	}
	return c
}

// ScoreMemory scores memory pressure and estimates module age from the
// installed capacity.
func ScoreMemory(s telemetry.Sample[telemetry.MemoryReading]) ComponentHealth {
	if !s.Available() {
		return fallback(telemetry.DomainMemory, FallbackMemory, s.Err)
	}

	r := s.Value
	totalGB := float64(r.TotalBytes) / bytesPerGB
	availableGB := float64(r.AvailableBytes) / bytesPerGB

	var score float64
	switch {
	case r.UsedPercent > 90:
		score = 30
	case r.UsedPercent > 80:
		score = 60
	case r.UsedPercent > 70:
		score = 80
	default:
		score = 95
	}

	var age int
	switch {
	case totalGB >= 16:
		age = 2
	case totalGB >= 8:
		age = 4
	default:
		age = 6
	}

	c := newComponent(telemetry.DomainMemory, score,
		fmt.Sprintf("%.0f%% used, %.1fGB free", r.UsedPercent, availableGB))
	c.Memory = &MemoryDetail{
		TotalGB:           totalGB,
		AvailableGB:       availableGB,
		UsedPercent:       r.UsedPercent,
		EstimatedAgeYears: age,
		RemainingYears:    math.Max(0, float64(memoryLifespanYears-age)),
	}
	return c
}

// ScoreStorage scores each partition by fill level and averages them.
// Partitions without a usable size are skipped.
func ScoreStorage(s telemetry.Sample[[]telemetry.PartitionReading]) ComponentHealth {
	if !s.Available() {
		return fallback(telemetry.DomainStorage, FallbackStorage, s.Err)
	}

	devices := make([]DeviceHealth, 0, len(s.Value))
	scores := make([]float64, 0, len(s.Value))
	for _, p := range s.Value {
		if p.TotalBytes == 0 {
			continue
		}
		d := scoreDevice(p)
		devices = append(devices, d)
		scores = append(scores, d.Score)
	}

	if len(devices) == 0 {
		c := newComponent(telemetry.DomainStorage, FallbackStorage, "No readable partitions")
		c.Storage = &StorageDetail{Devices: devices}
		return c
	}

	c := newComponent(telemetry.DomainStorage, mean(scores),
		fmt.Sprintf("%.0f%% used", devices[0].UsedPercent))
	c.Storage = &StorageDetail{Devices: devices}
	return c
}

func scoreDevice(p telemetry.PartitionReading) DeviceHealth {
	var score float64
	switch {
	case p.UsedPercent > 95:
		score = 20
	case p.UsedPercent > 85:
		score = 50
	case p.UsedPercent > 70:
		score = 75
	default:
		score = 90
	}

	sizeGB := float64(p.TotalBytes) / bytesPerGB

	var age, lifespan int
	if sizeGB > largeDriveGB {
		age, lifespan = 2, 5
		if p.IsSolidState {
			lifespan = 8
		}
	} else {
		age, lifespan = 4, 6
		if p.IsSolidState {
			lifespan = 10
		}
	}

	return DeviceHealth{
		DeviceID:          p.DeviceID,
		MountPoint:        p.MountPoint,
		FilesystemType:    p.FilesystemType,
		TotalGB:           sizeGB,
		UsedPercent:       p.UsedPercent,
		SolidState:        p.IsSolidState,
		Score:             score,
		Status:            StatusFor(score),
		EstimatedAgeYears: age,
		LifespanYears:     lifespan,
		RemainingYears:    math.Max(0, float64(lifespan-age)),
	}
}

// ScoreTemperature scores every sensor reading and averages them. With no
// sensors the nominal default applies, since many hosts expose none.
func ScoreTemperature(s telemetry.Sample[[]telemetry.SensorReading]) ComponentHealth {
	if !s.Available() {
		return fallback(telemetry.DomainTemperature, FallbackTemperature, s.Err)
	}

	sensors := make([]SensorHealth, 0, len(s.Value))
	scores := make([]float64, 0, len(s.Value))
	temps := make([]float64, 0, len(s.Value))
	for _, r := range s.Value {
		if math.IsNaN(r.CurrentC) {
			continue
		}
		score := temperatureScore(r.CurrentC)
		sensors = append(sensors, SensorHealth{
			SensorID:  r.SensorID,
			CurrentC:  r.CurrentC,
			HighC:     r.HighC,
			CriticalC: r.CriticalC,
			Score:     score,
			Status:    StatusFor(score),
		})
		scores = append(scores, score)
		temps = append(temps, r.CurrentC)
	}

	if len(sensors) == 0 {
		c := newComponent(telemetry.DomainTemperature, FallbackTemperature, "No sensors reported")
		c.Temperature = &TemperatureDetail{Sensors: sensors}
		return c
	}

	avg := mean(temps)
	c := newComponent(telemetry.DomainTemperature, mean(scores), fmt.Sprintf("Avg: %.0f°C", avg))
	c.Temperature = &TemperatureDetail{Sensors: sensors, AverageC: avg}
	return c
}

func temperatureScore(c float64) float64 {
	switch {
	case c > 80:
		return 20
	case c > 70:
		return 50
	case c > 60:
		return 75
	default:
		return 95
	}
}

// ScorePerformance scores the sampled CPU load.
func ScorePerformance(s telemetry.Sample[telemetry.CPUReading]) ComponentHealth {
	if !s.Available() {
		return fallback(telemetry.DomainPerformance, FallbackPerformance, s.Err)
	}

	r := s.Value
	var score float64
	switch {
	case r.UsedPercent > 90:
		score = 30
	case r.UsedPercent > 70:
		score = 60
	default:
		score = 90
	}

	c := newComponent(telemetry.DomainPerformance, score, fmt.Sprintf("CPU: %.0f%% usage", r.UsedPercent))
	c.Performance = &PerformanceDetail{
		UsedPercent:  r.UsedPercent,
		FrequencyMHz: r.FrequencyMHz,
		CoreCount:    r.CoreCount,
	}
	return c
}
