package system_test

import (
	"context"
	"runtime"
	"testing"

	"codeberg.org/mutker/hwhealth/internal/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderBatteryWithoutSupplies(t *testing.T) {
	p := system.NewProvider(system.WithSysfsRoot(t.TempDir()))

	r, err := p.Battery(context.Background())
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestProviderMemory(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("reads /proc/meminfo")
	}

	r, err := system.NewProvider().Memory(context.Background())
	require.NoError(t, err)
	assert.Positive(t, r.TotalBytes)
	assert.GreaterOrEqual(t, r.UsedPercent, 0.0)
	assert.LessOrEqual(t, r.UsedPercent, 100.0)
}
