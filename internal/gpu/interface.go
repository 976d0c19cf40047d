package gpu

// library abstracts the NVML entry points used here so tests can run
// without a driver.
type library interface {
	Init() error
	Shutdown() error
	DeviceCount() (int, error)
	Device(index int) (device, error)
}

type device interface {
	Name() (string, error)
	// Temperature returns the die temperature in degrees Celsius.
	Temperature() (uint32, error)
	// Thresholds returns the slowdown and shutdown temperatures. A zero
	// value means the driver does not report it.
	Thresholds() (slowdown, shutdown uint32)
}
