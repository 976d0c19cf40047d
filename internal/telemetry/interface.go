package telemetry

import (
	"context"
	"time"
)

// Provider acquires raw telemetry from the host. Implementations may block
// on OS calls; CPU takes a fixed sample window.
type Provider interface {
	PlatformInfo(ctx context.Context) (PlatformInfo, error)
	// Battery returns nil without error when the host has no battery.
	Battery(ctx context.Context) (*BatteryReading, error)
	Memory(ctx context.Context) (MemoryReading, error)
	// StoragePartitions silently omits partitions it cannot query.
	StoragePartitions(ctx context.Context) ([]PartitionReading, error)
	// TemperatureSensors may return an empty list.
	TemperatureSensors(ctx context.Context) ([]SensorReading, error)
	CPU(ctx context.Context, sampleInterval time.Duration) (CPUReading, error)
}

// SensorSource contributes additional temperature readings, such as GPU
// dies that the OS sensor interface does not expose.
type SensorSource interface {
	Temperatures(ctx context.Context) ([]SensorReading, error)
}
