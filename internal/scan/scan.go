// Package scan runs complete scans: collect a snapshot, evaluate it and
// record the result.
package scan

import (
	"context"
	"time"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/history"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

const ErrScanUnavailable = errors.ErrScanUnavailable

// Outcome is what one scan task delivers.
type Outcome struct {
	Result engine.Result
	// ScanID is set when the result was recorded to history.
	ScanID string
	Err    error
}

type Scanner struct {
	provider       telemetry.Provider
	sensors        []telemetry.SensorSource
	recorder       history.Recorder
	logger         logger.Logger
	sampleInterval time.Duration
	now            func() time.Time
}

type Option func(*Scanner)

// WithSensors adds temperature sources read alongside the OS sensors.
func WithSensors(sources ...telemetry.SensorSource) Option {
	return func(s *Scanner) {
		s.sensors = append(s.sensors, sources...)
	}
}

func WithRecorder(r history.Recorder) Option {
	return func(s *Scanner) {
		s.recorder = r
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

func WithSampleInterval(d time.Duration) Option {
	return func(s *Scanner) {
		s.sampleInterval = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

func New(p telemetry.Provider, opts ...Option) *Scanner {
	s := &Scanner{
		provider:       p,
		logger:         logger.Nop(),
		sampleInterval: telemetry.DefaultSampleInterval,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one scan of the selected domains. It fails only when every
// selected domain failed acquisition; an empty selection yields an empty
// result. Recording failures are logged and do not fail the scan.
func (s *Scanner) Run(ctx context.Context, domains []telemetry.Domain) Outcome {
	errFactory := errors.New()

	snap, err := telemetry.Collect(ctx, s.provider, telemetry.Options{
		Domains:        domains,
		SampleInterval: s.sampleInterval,
		Sensors:        s.sensors,
		Logger:         s.logger,
		Now:            s.now,
	})
	if err != nil {
		return Outcome{Err: err}
	}

	if ctx.Err() != nil {
		return Outcome{Err: errFactory.Wrap(errors.ErrTimeout, ctx.Err())}
	}

	if engine.Unavailable(snap) {
		return Outcome{
			Result: engine.Evaluate(snap),
			Err:    errFactory.WithData(ErrScanUnavailable, telemetryErrors(snap)),
		}
	}

	out := Outcome{Result: engine.Evaluate(snap)}

	if s.recorder != nil && s.recorder.Enabled() {
		id, recErr := s.recorder.Record(ctx, out.Result)
		if recErr != nil {
			s.logger.Warn().Err(recErr).Msg("Failed to record scan")
		} else {
			out.ScanID = id
		}
	}

	return out
}

// Start runs a scan in the background. The channel delivers exactly one
// Outcome and is then closed.
func (s *Scanner) Start(ctx context.Context, domains []telemetry.Domain) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- s.Run(ctx, domains)
	}()
	return ch
}

// Watch scans immediately and then once per interval until ctx is done.
// domains is consulted before every scan so the selection can change while
// running.
func (s *Scanner) Watch(ctx context.Context, interval time.Duration, domains func() []telemetry.Domain, fn func(Outcome)) error {
	if interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, interval.String())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(s.Run(ctx, domains()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			fn(s.Run(ctx, domains()))
		}
	}
}

func telemetryErrors(snap telemetry.Snapshot) map[string]string {
	out := make(map[string]string)
	add := func(d telemetry.Domain, err error) {
		if err != nil {
			out[string(d)] = err.Error()
		}
	}
	add(telemetry.DomainBattery, snap.Battery.Err)
	add(telemetry.DomainMemory, snap.Memory.Err)
	add(telemetry.DomainStorage, snap.Storage.Err)
	add(telemetry.DomainTemperature, snap.Temperature.Err)
	add(telemetry.DomainPerformance, snap.Performance.Err)
	return out
}
