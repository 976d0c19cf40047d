package gpu

import (
	"codeberg.org/mutker/hwhealth/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

type nvmlLibrary struct {
	errs errors.Factory
}

func newNVMLLibrary() library {
	return &nvmlLibrary{errs: errors.New()}
}

func (l *nvmlLibrary) Init() error {
	if ret := nvml.Init(); !IsNVMLSuccess(ret) {
		return l.errs.Wrap(ErrInitFailed, newNVMLError(ret))
	}
	return nil
}

func (l *nvmlLibrary) Shutdown() error {
	if ret := nvml.Shutdown(); !IsNVMLSuccess(ret) {
		return l.errs.Wrap(ErrShutdownFailed, newNVMLError(ret))
	}
	return nil
}

func (l *nvmlLibrary) DeviceCount() (int, error) {
	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return 0, l.errs.Wrap(ErrDeviceCountFailed, newNVMLError(ret))
	}
	return count, nil
}

func (l *nvmlLibrary) Device(index int) (device, error) {
	d, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		return nil, l.errs.Wrap(ErrDeviceNotFound, newNVMLError(ret)).WithData(index)
	}
	return &nvmlDevice{device: d, errs: l.errs}, nil
}

type nvmlDevice struct {
	device nvml.Device
	errs   errors.Factory
}

func (d *nvmlDevice) Name() (string, error) {
	name, ret := d.device.GetName()
	if !IsNVMLSuccess(ret) {
		return "", newNVMLError(ret)
	}
	return name, nil
}

func (d *nvmlDevice) Temperature() (uint32, error) {
	temp, ret := d.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return 0, d.errs.Wrap(ErrTemperatureReadFailed, newNVMLError(ret))
	}
	return temp, nil
}

func (d *nvmlDevice) Thresholds() (slowdown, shutdown uint32) {
	if v, ret := d.device.GetTemperatureThreshold(nvml.TEMPERATURE_THRESHOLD_SLOWDOWN); IsNVMLSuccess(ret) {
		slowdown = v
	}
	if v, ret := d.device.GetTemperatureThreshold(nvml.TEMPERATURE_THRESHOLD_SHUTDOWN); IsNVMLSuccess(ret) {
		shutdown = v
	}
	return slowdown, shutdown
}
