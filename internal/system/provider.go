// Package system reads host telemetry through gopsutil and Linux sysfs.
package system

import (
	"context"
	"math"
	"strings"
	"time"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const defaultSysfsRoot = "/sys"

// Provider implements telemetry.Provider for the local host.
type Provider struct {
	sysfs  string
	logger logger.Logger
	errs   errors.Factory
}

type Option func(*Provider)

// WithSysfsRoot points battery and drive-type lookups at another sysfs tree.
func WithSysfsRoot(root string) Option {
	return func(p *Provider) {
		p.sysfs = root
	}
}

func WithLogger(l logger.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}

func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		sysfs:  defaultSysfsRoot,
		logger: logger.Nop(),
		errs:   errors.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ telemetry.Provider = (*Provider)(nil)

func (p *Provider) PlatformInfo(ctx context.Context) (telemetry.PlatformInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil && info == nil {
		return telemetry.PlatformInfo{}, p.errs.Wrap(ErrHostInfo, err)
	}

	out := telemetry.PlatformInfo{
		OS:           info.OS,
		Version:      platformVersion(info),
		Architecture: info.KernelArch,
		Hostname:     info.Hostname,
		UptimeHours:  float64(info.Uptime) / 3600,
	}
	if info.BootTime > 0 {
		out.BootTime = time.Unix(int64(info.BootTime), 0)
	}

	if cpus, cpuErr := cpu.InfoWithContext(ctx); cpuErr == nil && len(cpus) > 0 {
		out.Processor = strings.TrimSpace(cpus[0].ModelName)
	}

	if info.Uptime == 0 {
		if err != nil {
			return out, p.errs.Wrap(ErrNoUptime, err)
		}
		return out, p.errs.New(ErrNoUptime)
	}

	return out, nil
}

func platformVersion(info *host.InfoStat) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{info.Platform, info.PlatformVersion, info.KernelVersion} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (p *Provider) Battery(_ context.Context) (*telemetry.BatteryReading, error) {
	r, err := readBattery(p.sysfs)
	if err != nil {
		return nil, p.errs.Wrap(ErrBatteryRead, err)
	}
	return r, nil
}

func (p *Provider) Memory(ctx context.Context) (telemetry.MemoryReading, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return telemetry.MemoryReading{}, p.errs.Wrap(ErrMemoryRead, err)
	}

	return telemetry.MemoryReading{
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
		UsedPercent:    vm.UsedPercent,
	}, nil
}

func (p *Provider) StoragePartitions(ctx context.Context) ([]telemetry.PartitionReading, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil && len(parts) == 0 {
		return nil, p.errs.Wrap(ErrPartitionList, err)
	}

	out := make([]telemetry.PartitionReading, 0, len(parts))
	for _, part := range realPartitions(parts) {
		usage, usageErr := disk.UsageWithContext(ctx, part.Mountpoint)
		if usageErr != nil {
			p.logger.Debug().Str("mountpoint", part.Mountpoint).Err(usageErr).Msg("Skipping unreadable partition")
			continue
		}
		if usage.Total == 0 {
			continue
		}

		out = append(out, telemetry.PartitionReading{
			DeviceID:       part.Device,
			MountPoint:     part.Mountpoint,
			FilesystemType: part.Fstype,
			TotalBytes:     usage.Total,
			UsedPercent:    float64(usage.Used) / float64(usage.Total) * 100,
			IsSolidState:   solidState(p.sysfs, part.Device),
		})
	}

	return out, nil
}

func (p *Provider) TemperatureSensors(ctx context.Context) ([]telemetry.SensorReading, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		return nil, p.errs.Wrap(ErrSensorRead, err)
	}
	if err != nil {
		p.logger.Debug().Err(err).Msg("Some temperature sensors could not be read")
	}

	out := make([]telemetry.SensorReading, 0, len(temps))
	for _, t := range temps {
		if math.IsNaN(t.Temperature) {
			continue
		}
		out = append(out, telemetry.SensorReading{
			SensorID:  t.SensorKey,
			CurrentC:  t.Temperature,
			HighC:     positive(t.High),
			CriticalC: positive(t.Critical),
		})
	}

	return out, nil
}

func (p *Provider) CPU(ctx context.Context, sampleInterval time.Duration) (telemetry.CPUReading, error) {
	pct, err := cpu.PercentWithContext(ctx, sampleInterval, false)
	if err != nil {
		return telemetry.CPUReading{}, p.errs.Wrap(ErrCPUSample, err)
	}
	if len(pct) == 0 {
		return telemetry.CPUReading{}, p.errs.New(ErrNoCPUSample)
	}

	out := telemetry.CPUReading{UsedPercent: pct[0]}

	if n, countErr := cpu.CountsWithContext(ctx, true); countErr == nil {
		out.CoreCount = n
	}
	if infos, infoErr := cpu.InfoWithContext(ctx); infoErr == nil && len(infos) > 0 {
		out.FrequencyMHz = positive(infos[0].Mhz)
	}

	return out, nil
}

// positive returns nil for zero or negative thresholds, which gopsutil uses
// when a value is unknown.
func positive(v float64) *float64 {
	if v <= 0 || math.IsNaN(v) {
		return nil
	}
	return &v
}
