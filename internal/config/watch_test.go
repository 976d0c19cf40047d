package config_test

import (
	"context"
	"os"
	"testing"
	"time"

	"codeberg.org/mutker/hwhealth/internal/config"
	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloads(t *testing.T) {
	path := writeConfig(t, `components = ["battery"]`)

	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- cfg.Watch(ctx, logger.Nop(), func(next *config.Config) {
			select {
			case changes <- next:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`components = ["memory", "storage"]`), 0o600))

	// A truncating write can surface as more than one event.
	want := []telemetry.Domain{telemetry.DomainMemory, telemetry.DomainStorage}
	timeout := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case next := <-changes:
			reloaded = assert.ObjectsAreEqual(want, next.Domains())
		case <-timeout:
			t.Fatal("no reload after write")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	if cfg.ConfigFile != "" {
		t.Skip("system configuration file present")
	}

	err = cfg.Watch(context.Background(), logger.Nop(), func(*config.Config) {})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrWatchConfig))
}
