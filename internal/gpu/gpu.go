// Package gpu exposes NVIDIA GPU die temperatures as an extra sensor source
// for the temperature domain.
package gpu

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

type gpuInfo struct {
	index    int
	name     string
	dev      device
	slowdown uint32
	shutdown uint32
}

// Sensors reads the temperature of every NVML-visible GPU.
type Sensors struct {
	lib    library
	logger logger.Logger
	errs   errors.Factory

	mu          sync.Mutex
	initialized bool
	gpus        []gpuInfo
}

type Option func(*Sensors)

func WithLogger(l logger.Logger) Option {
	return func(s *Sensors) {
		s.logger = l
	}
}

func withLibrary(lib library) Option {
	return func(s *Sensors) {
		s.lib = lib
	}
}

var _ telemetry.SensorSource = (*Sensors)(nil)

// Open initializes NVML and enumerates devices. It fails when the driver is
// not loaded; callers treat that as "no GPU sensors".
func Open(opts ...Option) (*Sensors, error) {
	s := &Sensors{
		lib:    newNVMLLibrary(),
		logger: logger.Nop(),
		errs:   errors.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.lib.Init(); err != nil {
		return nil, err
	}
	s.initialized = true

	count, err := s.lib.DeviceCount()
	if err != nil {
		_ = s.shutdown()
		return nil, err
	}

	for i := 0; i < count; i++ {
		dev, devErr := s.lib.Device(i)
		if devErr != nil {
			s.logger.Warn().Int("index", i).Err(devErr).Msg("Skipping GPU")
			continue
		}

		info := gpuInfo{index: i, dev: dev}
		if name, nameErr := dev.Name(); nameErr == nil {
			info.name = name
		} else {
			s.logger.Warn().Int("index", i).Err(nameErr).Msg("Failed to get GPU name")
		}
		info.slowdown, info.shutdown = dev.Thresholds()

		s.logger.Info().Int("index", i).Str("name", info.name).Msg("Detected GPU")
		s.gpus = append(s.gpus, info)
	}

	return s, nil
}

// Count returns the number of GPUs being read.
func (s *Sensors) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gpus)
}

// Temperatures reads every GPU once. A device that fails is skipped; the
// call errors only when every device failed.
func (s *Sensors) Temperatures(_ context.Context) ([]telemetry.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, s.errs.New(ErrNotInitialized)
	}

	out := make([]telemetry.SensorReading, 0, len(s.gpus))
	var lastErr error
	for _, g := range s.gpus {
		temp, err := g.dev.Temperature()
		if err != nil {
			lastErr = err
			s.logger.Debug().Int("index", g.index).Err(err).Msg("GPU temperature read failed")
			continue
		}

		out = append(out, telemetry.SensorReading{
			SensorID:  sensorID(g),
			CurrentC:  float64(temp),
			HighC:     celsius(g.slowdown),
			CriticalC: celsius(g.shutdown),
		})
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// Close shuts NVML down. It is safe to call more than once.
func (s *Sensors) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *Sensors) shutdown() error {
	if !s.initialized {
		return nil
	}
	s.initialized = false
	s.gpus = nil
	return s.lib.Shutdown()
}

func sensorID(g gpuInfo) string {
	if g.name == "" {
		return fmt.Sprintf("gpu%d", g.index)
	}
	return fmt.Sprintf("gpu%d %s", g.index, g.name)
}

func celsius(v uint32) *float64 {
	if v == 0 {
		return nil
	}
	c := float64(v)
	return &c
}
