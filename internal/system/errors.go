package system

import "codeberg.org/mutker/hwhealth/internal/errors"

const (
	ErrHostInfo      = errors.ErrorCode("system_host_info_failed")
	ErrNoUptime      = errors.ErrorCode("system_uptime_unavailable")
	ErrBatteryRead   = errors.ErrorCode("system_battery_read_failed")
	ErrMemoryRead    = errors.ErrorCode("system_memory_read_failed")
	ErrPartitionList = errors.ErrorCode("system_partition_list_failed")
	ErrSensorRead    = errors.ErrorCode("system_sensor_read_failed")
	ErrCPUSample     = errors.ErrorCode("system_cpu_sample_failed")
	ErrNoCPUSample   = errors.ErrorCode("system_cpu_no_sample")
)
