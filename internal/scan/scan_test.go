package scan_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/history"
	"codeberg.org/mutker/hwhealth/internal/scan"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gb = 1 << 30

type fakeProvider struct {
	fail        bool
	platformErr error
}

var errOffline = stderrors.New("offline")

func (f *fakeProvider) PlatformInfo(context.Context) (telemetry.PlatformInfo, error) {
	return telemetry.PlatformInfo{OS: "linux", Hostname: "bench", UptimeHours: 24 * 100}, f.platformErr
}

func (f *fakeProvider) Battery(context.Context) (*telemetry.BatteryReading, error) {
	if f.fail {
		return nil, errOffline
	}
	return &telemetry.BatteryReading{ChargePercent: 90}, nil
}

func (f *fakeProvider) Memory(context.Context) (telemetry.MemoryReading, error) {
	if f.fail {
		return telemetry.MemoryReading{}, errOffline
	}
	return telemetry.MemoryReading{TotalBytes: 16 * gb, AvailableBytes: 8 * gb, UsedPercent: 50}, nil
}

func (f *fakeProvider) StoragePartitions(context.Context) ([]telemetry.PartitionReading, error) {
	if f.fail {
		return nil, errOffline
	}
	return []telemetry.PartitionReading{{DeviceID: "/dev/nvme0n1p1", TotalBytes: 512 * gb, UsedPercent: 30, IsSolidState: true}}, nil
}

func (f *fakeProvider) TemperatureSensors(context.Context) ([]telemetry.SensorReading, error) {
	if f.fail {
		return nil, errOffline
	}
	return []telemetry.SensorReading{{SensorID: "cpu", CurrentC: 45}}, nil
}

func (f *fakeProvider) CPU(context.Context, time.Duration) (telemetry.CPUReading, error) {
	if f.fail {
		return telemetry.CPUReading{}, errOffline
	}
	return telemetry.CPUReading{UsedPercent: 20, CoreCount: 8}, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []engine.Result
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, res engine.Result) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.results = append(r.results, res)
	return "scan-1", nil
}

func (r *fakeRecorder) Recent(context.Context, int) ([]history.Entry, error) { return nil, nil }
func (r *fakeRecorder) Enabled() bool                                        { return true }
func (r *fakeRecorder) Close() error                                         { return nil }

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
}

func TestRunRecordsResult(t *testing.T) {
	rec := &fakeRecorder{}
	s := scan.New(&fakeProvider{}, scan.WithRecorder(rec), scan.WithClock(fixedClock))

	out := s.Run(context.Background(), telemetry.AllDomains())
	require.NoError(t, out.Err)

	assert.Equal(t, "scan-1", out.ScanID)
	assert.Len(t, out.Result.Components, 5)
	require.NotNil(t, out.Result.Overall)
	assert.Equal(t, fixedClock(), out.Result.Timestamp)
	assert.Equal(t, 1, rec.count())
}

func TestRunSelection(t *testing.T) {
	s := scan.New(&fakeProvider{})

	out := s.Run(context.Background(), []telemetry.Domain{telemetry.DomainMemory})
	require.NoError(t, out.Err)

	require.Len(t, out.Result.Components, 1)
	assert.Equal(t, telemetry.DomainMemory, out.Result.Components[0].ID)
}

func TestRunEmptySelection(t *testing.T) {
	s := scan.New(&fakeProvider{fail: true})

	out := s.Run(context.Background(), []telemetry.Domain{})
	require.NoError(t, out.Err)
	assert.Empty(t, out.Result.Components)
	assert.Nil(t, out.Result.Overall)
}

func TestRunAllDomainsFailed(t *testing.T) {
	rec := &fakeRecorder{}
	s := scan.New(&fakeProvider{fail: true}, scan.WithRecorder(rec))

	out := s.Run(context.Background(), telemetry.AllDomains())
	require.Error(t, out.Err)
	assert.True(t, errors.HasCode(out.Err, scan.ErrScanUnavailable))
	assert.Zero(t, rec.count())
}

func TestRunRecordFailureDoesNotFailScan(t *testing.T) {
	rec := &fakeRecorder{err: stderrors.New("disk full")}
	s := scan.New(&fakeProvider{}, scan.WithRecorder(rec))

	out := s.Run(context.Background(), telemetry.AllDomains())
	require.NoError(t, out.Err)
	assert.Empty(t, out.ScanID)
	assert.Len(t, out.Result.Components, 5)
}

func TestRunBatteryFallsBackWithoutUptime(t *testing.T) {
	s := scan.New(&fakeProvider{platformErr: stderrors.New("boot time unavailable")})

	out := s.Run(context.Background(), telemetry.AllDomains())
	require.NoError(t, out.Err)

	bat, ok := out.Result.Component(telemetry.DomainBattery)
	require.True(t, ok)
	assert.True(t, bat.Fallback())
	assert.Equal(t, health.FallbackBattery, bat.Score)
	assert.Nil(t, bat.Battery)

	for _, p := range out.Result.Predictions {
		assert.NotEqual(t, telemetry.DomainBattery, p.ComponentID)
	}

	mem, ok := out.Result.Component(telemetry.DomainMemory)
	require.True(t, ok)
	assert.False(t, mem.Fallback())
}

func TestStartDeliversOnce(t *testing.T) {
	s := scan.New(&fakeProvider{})

	ch := s.Start(context.Background(), telemetry.AllDomains())

	out, ok := <-ch
	require.True(t, ok)
	require.NoError(t, out.Err)
	assert.Len(t, out.Result.Components, 5)

	_, ok = <-ch
	assert.False(t, ok)
}

func TestWatchRunsUntilCancelled(t *testing.T) {
	rec := &fakeRecorder{}
	s := scan.New(&fakeProvider{}, scan.WithRecorder(rec))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var outcomes []scan.Outcome

	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, 10*time.Millisecond, telemetry.AllDomains, func(o scan.Outcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			n := len(outcomes)
			mu.Unlock()
			if n == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(outcomes), 2)
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
	}
}

func TestWatchRejectsInterval(t *testing.T) {
	s := scan.New(&fakeProvider{})

	err := s.Watch(context.Background(), 0, telemetry.AllDomains, func(scan.Outcome) {})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}
