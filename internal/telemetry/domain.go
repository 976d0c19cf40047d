package telemetry

import (
	"strings"

	"codeberg.org/mutker/hwhealth/internal/errors"
)

// Domain is one of the five hardware areas analyzed by a scan.
type Domain string

const (
	DomainBattery     Domain = "battery"
	DomainMemory      Domain = "memory"
	DomainStorage     Domain = "storage"
	DomainTemperature Domain = "temperature"
	DomainPerformance Domain = "performance"
)

var allDomains = []Domain{
	DomainBattery,
	DomainMemory,
	DomainStorage,
	DomainTemperature,
	DomainPerformance,
}

// AllDomains returns every domain in display order.
func AllDomains() []Domain {
	out := make([]Domain, len(allDomains))
	copy(out, allDomains)
	return out
}

// Title returns the capitalized display name ("Battery").
func (d Domain) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

func (d Domain) String() string {
	return string(d)
}

// ParseDomain parses a single component name, case-insensitively.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allDomains {
		if d == known {
			return d, nil
		}
	}
	return "", errors.New().WithData(errors.ErrInvalidComponent, s)
}

// ParseDomains parses a component selection. The result is deduplicated and
// sorted into display order regardless of input order.
func ParseDomains(names []string) ([]Domain, error) {
	seen := make(map[Domain]bool, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		d, err := ParseDomain(name)
		if err != nil {
			return nil, err
		}
		seen[d] = true
	}

	out := make([]Domain, 0, len(seen))
	for _, d := range allDomains {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out, nil
}
