// Package config loads hwhealth settings from defaults, a TOML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"io"
	"strings"
	"time"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/history"
	"codeberg.org/mutker/hwhealth/internal/report"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultEnvPrefix      = "HWHEALTH"
	defaultFormat         = "text"
	defaultSampleInterval = time.Second
	defaultInterval       = time.Minute
	defaultLogLevel       = "info"
	defaultListen         = ":9273"
	defaultHistoryLimit   = 10
)

// Config is the resolved configuration. Command holds the first positional
// argument (scan, watch, serve or history), empty when none was given.
type Config struct {
	Command        string
	Components     []string
	Format         string
	SampleInterval time.Duration
	Interval       time.Duration
	LogLevel       string
	GPU            bool
	Listen         string
	PIDDir         string
	History        history.Config
	HistoryLimit   int
	ConfigFile     string

	args []string
	opts []Option
}

// Load parses args (without the program name) and merges every source.
// A missing config file is not an error unless one was named explicitly.
// The result is validated.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: defaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, err
		}
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindFlags(v, fs); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	path := o.configPath
	if p := v.GetString("config"); p != "" {
		path = p
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	cfg := &Config{
		Components:     splitList(v.GetStringSlice("components")),
		Format:         strings.ToLower(v.GetString("format")),
		SampleInterval: v.GetDuration("sample_interval"),
		Interval:       v.GetDuration("interval"),
		LogLevel:       strings.ToLower(v.GetString("log_level")),
		GPU:            v.GetBool("gpu"),
		Listen:         v.GetString("listen"),
		PIDDir:         v.GetString("pid_dir"),
		History: history.Config{
			Enabled:   v.GetBool("history.enabled"),
			DBPath:    v.GetString("history.db_path"),
			BackupDir: v.GetString("history.backup_dir"),
		},
		HistoryLimit: v.GetInt("history.limit"),
		ConfigFile:   v.ConfigFileUsed(),
		args:         args,
		opts:         opts,
	}
	if fs.NArg() > 0 {
		cfg.Command = fs.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Usage returns the flag help text.
func Usage() string {
	return newFlagSet().FlagUsages()
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("hwhealth", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.String("config", "", "Path to configuration file")
	fs.StringSliceP("components", "c", nil, "Components to scan (battery,memory,storage,temperature,performance)")
	fs.StringP("format", "f", defaultFormat, "Output format ("+strings.Join(formatNames(), "|")+")")
	fs.Duration("sample-interval", defaultSampleInterval, "CPU utilization sample window")
	fs.Duration("interval", defaultInterval, "Scan period in watch mode")
	fs.String("log-level", defaultLogLevel, "Log level (debug|info|warning|error)")
	fs.Bool("gpu", true, "Include NVIDIA GPU temperature sensors")
	fs.String("listen", defaultListen, "Listen address in serve mode")
	fs.String("pid-dir", "", "Directory for the PID file in watch and serve mode")
	fs.Bool("history", false, "Record scans to the history database")
	fs.String("history-db", history.DefaultConfig().DBPath, "History database path")
	fs.String("history-backup-dir", "", "Directory for history backups before schema migration")
	fs.Int("history-limit", defaultHistoryLimit, "Number of scans listed by the history command")

	return fs
}

func setDefaults(v *viper.Viper) {
	names := make([]string, 0, len(telemetry.AllDomains()))
	for _, d := range telemetry.AllDomains() {
		names = append(names, d.String())
	}

	v.SetDefault("components", names)
	v.SetDefault("format", defaultFormat)
	v.SetDefault("sample_interval", defaultSampleInterval)
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("gpu", true)
	v.SetDefault("listen", defaultListen)
	v.SetDefault("pid_dir", "")
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.db_path", history.DefaultConfig().DBPath)
	v.SetDefault("history.backup_dir", "")
	v.SetDefault("history.limit", defaultHistoryLimit)
}

// bindFlags maps flag names to config keys. Only flags set on the command
// line override the other sources.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	keys := map[string]string{
		"config":             "config",
		"components":         "components",
		"format":             "format",
		"sample-interval":    "sample_interval",
		"interval":           "interval",
		"log-level":          "log_level",
		"gpu":                "gpu",
		"listen":             "listen",
		"pid-dir":            "pid_dir",
		"history":            "history.enabled",
		"history-db":         "history.db_path",
		"history-backup-dir": "history.backup_dir",
		"history-limit":      "history.limit",
	}
	for flag, key := range keys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName("hwhealth")
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	v.AddConfigPath("$HOME/.config/hwhealth")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}
	return nil
}

// splitList accepts both list values and comma-separated strings, which is
// what an environment variable provides.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func formatNames() []string {
	out := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		out = append(out, string(f))
	}
	return out
}
