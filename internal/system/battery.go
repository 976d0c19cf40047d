package system

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

// readBattery reads the first battery under <sysfs>/class/power_supply.
// It returns nil with no error when the host has no battery.
func readBattery(sysfs string) (*telemetry.BatteryReading, error) {
	dir := filepath.Join(sysfs, "class", "power_supply")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var battery string
	mainsOnline := false
	for _, name := range names {
		supply := filepath.Join(dir, name)
		switch readString(supply, "type") {
		case "Battery":
			if scope := readString(supply, "scope"); scope == "Device" {
				// Peripheral batteries (mice, headsets) report scope=Device.
				continue
			}
			if battery == "" {
				battery = supply
			}
		case "Mains", "USB":
			if readString(supply, "online") == "1" {
				mainsOnline = true
			}
		}
	}

	if battery == "" {
		return nil, nil
	}

	charge, err := readFloat(battery, "capacity")
	if err != nil {
		return nil, err
	}

	status := readString(battery, "status")
	plugged := mainsOnline || status == "Charging" || status == "Full" || status == "Not charging"

	r := &telemetry.BatteryReading{
		ChargePercent: charge,
		PluggedIn:     plugged,
	}
	if !plugged {
		r.SecondsRemaining = secondsRemaining(battery)
	}

	return r, nil
}

// secondsRemaining estimates discharge time from energy or charge counters.
func secondsRemaining(battery string) *int64 {
	pairs := [][2]string{
		{"energy_now", "power_now"},
		{"charge_now", "current_now"},
	}
	for _, pair := range pairs {
		level, err := readFloat(battery, pair[0])
		if err != nil {
			continue
		}
		rate, err := readFloat(battery, pair[1])
		if err != nil || rate <= 0 {
			continue
		}
		secs := int64(level / rate * 3600)
		if secs < 0 {
			return nil
		}
		return &secs
	}
	return nil
}

func readString(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readFloat(dir, name string) (float64, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}
