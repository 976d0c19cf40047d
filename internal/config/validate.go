package config

import (
	"strings"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/report"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
)

// Commands accepted as the first positional argument.
const (
	CommandScan    = "scan"
	CommandWatch   = "watch"
	CommandServe   = "serve"
	CommandHistory = "history"
)

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Command {
	case "", CommandScan, CommandWatch, CommandServe, CommandHistory:
	default:
		return invalid(errors.ErrInvalidArgument, "command", c.Command, "unknown command")
	}

	if _, err := telemetry.ParseDomains(c.Components); err != nil {
		return invalid(errors.ErrInvalidComponent, "components", c.Components, err.Error())
	}

	if _, err := report.ParseFormat(c.Format); err != nil {
		return invalid(errors.ErrInvalidFormat, "format", c.Format, "must be one of "+strings.Join(formatNames(), ", "))
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return invalid(errors.ErrInvalidLogLevel, "log_level", c.LogLevel, "must be debug, info, warning or error")
	}

	if c.SampleInterval <= 0 {
		return invalid(errors.ErrInvalidInterval, "sample_interval", c.SampleInterval, "must be positive")
	}

	if c.Interval <= 0 {
		return invalid(errors.ErrInvalidInterval, "interval", c.Interval, "must be positive")
	}

	if c.Command == CommandServe && c.Listen == "" {
		return invalid(errors.ErrInvalidConfig, "listen", c.Listen, "required in serve mode")
	}

	if c.HistoryLimit < 1 {
		return invalid(errors.ErrInvalidArgument, "history.limit", c.HistoryLimit, "must be at least 1")
	}

	if err := c.History.Validate(); err != nil {
		return invalid(errors.ErrInvalidConfig, "history.db_path", c.History.DBPath, err.Error())
	}

	return nil
}

// Domains returns the selected components in display order.
func (c *Config) Domains() []telemetry.Domain {
	domains, err := telemetry.ParseDomains(c.Components)
	if err != nil {
		return telemetry.AllDomains()
	}
	return domains
}

// OutputFormat returns the parsed report format.
func (c *Config) OutputFormat() report.Format {
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return report.FormatText
	}
	return f
}
