package telemetry

import "time"

// Snapshot is one internally consistent set of readings. It is built once by
// Collect and never modified afterwards.
type Snapshot struct {
	Timestamp   time.Time
	Platform    PlatformInfo
	Battery     Sample[*BatteryReading]
	Memory      Sample[MemoryReading]
	Storage     Sample[[]PartitionReading]
	Temperature Sample[[]SensorReading]
	Performance Sample[CPUReading]
}

// Sample is the outcome of reading one domain. The zero value means the
// domain was not requested.
type Sample[T any] struct {
	Collected bool
	Value     T
	Err       error
}

// Ok wraps a successful reading.
func Ok[T any](v T) Sample[T] {
	return Sample[T]{Collected: true, Value: v}
}

// Failed records a reading that was requested but could not be obtained.
func Failed[T any](err error) Sample[T] {
	return Sample[T]{Collected: true, Err: err}
}

// Available reports whether the sample holds a usable value.
func (s Sample[T]) Available() bool {
	return s.Collected && s.Err == nil
}

type PlatformInfo struct {
	OS           string    `json:"os" yaml:"os"`
	Version      string    `json:"version" yaml:"version"`
	Architecture string    `json:"architecture" yaml:"architecture"`
	Processor    string    `json:"processor" yaml:"processor"`
	Hostname     string    `json:"hostname" yaml:"hostname"`
	BootTime     time.Time `json:"boot_time" yaml:"boot_time"`
	UptimeHours  float64   `json:"uptime_hours" yaml:"uptime_hours"`
}

// UptimeDays converts the reported uptime into days.
func (p PlatformInfo) UptimeDays() float64 {
	return p.UptimeHours / 24
}

type BatteryReading struct {
	ChargePercent float64
	PluggedIn     bool
	// SecondsRemaining is nil when the platform cannot estimate it.
	SecondsRemaining *int64
}

type MemoryReading struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedPercent    float64
}

type PartitionReading struct {
	DeviceID       string
	MountPoint     string
	FilesystemType string
	TotalBytes     uint64
	UsedPercent    float64
	IsSolidState   bool
}

type SensorReading struct {
	SensorID  string
	CurrentC  float64
	HighC     *float64
	CriticalC *float64
}

type CPUReading struct {
	UsedPercent  float64
	FrequencyMHz *float64
	CoreCount    int
}
