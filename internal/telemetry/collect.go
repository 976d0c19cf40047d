package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
)

// DefaultSampleInterval is the CPU usage sample window.
const DefaultSampleInterval = time.Second

// Options controls a single acquisition.
type Options struct {
	// Domains selects what to read. Unselected domains stay zero in the
	// snapshot and are absent from scoring.
	Domains        []Domain
	SampleInterval time.Duration
	// Sensors are extra temperature sources merged after the provider's own.
	Sensors []SensorSource
	Logger  logger.Logger
	Now     func() time.Time
}

// Collect reads every selected domain concurrently and assembles a Snapshot.
// A failing domain is recorded in its Sample and never aborts the others.
func Collect(ctx context.Context, p Provider, opts Options) (Snapshot, error) {
	if p == nil {
		return Snapshot{}, errors.New().New(ErrNoProvider)
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.SampleInterval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	snap := Snapshot{Timestamp: now()}

	var wg sync.WaitGroup
	run := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("domain", name).Interface("panic", r).Msg("Telemetry reader panicked")
				}
			}()
			fn()
		}()
	}

	var platformErr error
	run("platform", func() {
		platformErr = fmt.Errorf("platform reader panicked")
		info, err := p.PlatformInfo(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Platform information incomplete")
		}
		snap.Platform, platformErr = info, err
	})

	seen := make(map[Domain]bool, len(opts.Domains))
	for _, d := range opts.Domains {
		if seen[d] {
			continue
		}
		seen[d] = true

		d := d
		switch d {
		case DomainBattery:
			run(string(d), func() {
				snap.Battery = Failed[*BatteryReading](panicked(d))
				snap.Battery = read(d, log, func() (*BatteryReading, error) { return p.Battery(ctx) })
			})
		case DomainMemory:
			run(string(d), func() {
				snap.Memory = Failed[MemoryReading](panicked(d))
				snap.Memory = read(d, log, func() (MemoryReading, error) { return p.Memory(ctx) })
			})
		case DomainStorage:
			run(string(d), func() {
				snap.Storage = Failed[[]PartitionReading](panicked(d))
				snap.Storage = read(d, log, func() ([]PartitionReading, error) { return p.StoragePartitions(ctx) })
			})
		case DomainTemperature:
			run(string(d), func() {
				snap.Temperature = Failed[[]SensorReading](panicked(d))
				snap.Temperature = readTemperatures(ctx, p, opts.Sensors, log)
			})
		case DomainPerformance:
			run(string(d), func() {
				snap.Performance = Failed[CPUReading](panicked(d))
				snap.Performance = read(d, log, func() (CPUReading, error) { return p.CPU(ctx, interval) })
			})
		}
	}

	wg.Wait()

	// Battery wear is derived from uptime; without it a present battery
	// cannot be scored.
	if platformErr != nil && snap.Battery.Available() && snap.Battery.Value != nil {
		snap.Battery = Failed[*BatteryReading](newProviderError(DomainBattery, platformErr))
	}

	return snap, nil
}

func read[T any](d Domain, log logger.Logger, fn func() (T, error)) Sample[T] {
	v, err := fn()
	if err != nil {
		log.Warn().Str("domain", string(d)).Err(err).Msg("Telemetry read failed")
		return Failed[T](newProviderError(d, err))
	}
	return Ok(v)
}

func readTemperatures(ctx context.Context, p Provider, sources []SensorSource, log logger.Logger) Sample[[]SensorReading] {
	readings, err := p.TemperatureSensors(ctx)

	var extra []SensorReading
	for _, src := range sources {
		more, srcErr := src.Temperatures(ctx)
		if srcErr != nil {
			log.Debug().Err(srcErr).Msg("Extra sensor source unavailable")
			continue
		}
		extra = append(extra, more...)
	}

	if err != nil {
		if len(extra) > 0 {
			log.Debug().Err(err).Int("extra_sensors", len(extra)).Msg("OS sensors unavailable, using extra sources only")
			return Ok(extra)
		}
		log.Warn().Str("domain", string(DomainTemperature)).Err(err).Msg("Telemetry read failed")
		return Failed[[]SensorReading](newProviderError(DomainTemperature, err))
	}

	return Ok(append(readings, extra...))
}

// panicked is the placeholder outcome left in place if a reader panics
// before producing a sample.
func panicked(d Domain) error {
	return newProviderError(d, fmt.Errorf("reader panicked"))
}
