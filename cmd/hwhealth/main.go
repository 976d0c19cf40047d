package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"codeberg.org/mutker/hwhealth/internal/config"
	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/gpu"
	"codeberg.org/mutker/hwhealth/internal/history"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"codeberg.org/mutker/hwhealth/internal/pid"
	"codeberg.org/mutker/hwhealth/internal/report"
	"codeberg.org/mutker/hwhealth/internal/scan"
	"codeberg.org/mutker/hwhealth/internal/server"
	"codeberg.org/mutker/hwhealth/internal/system"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/spf13/pflag"
)

const usageHeader = "Usage: hwhealth [flags] [scan|watch|serve|history]\n\nFlags:\n"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Print(usageHeader + config.Usage())
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	logger.Debug().Str("file", cfg.ConfigFile).Str("command", cfg.Command).Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	log := logger.Default()

	recorder, err := history.NewService(ctx, cfg.History, log.With("history"))
	if err != nil {
		logError(err, "Failed to open scan history")
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logError(err, "Failed to close scan history")
		}
	}()

	if cfg.Command == config.CommandHistory {
		return printHistory(ctx, cfg, recorder)
	}

	opts := []scan.Option{
		scan.WithRecorder(recorder),
		scan.WithLogger(log.With("scan")),
		scan.WithSampleInterval(cfg.SampleInterval),
	}
	if cfg.GPU {
		if sensors := openGPU(log); sensors != nil {
			defer sensors.Close()
			opts = append(opts, scan.WithSensors(sensors))
		}
	}
	scanner := scan.New(system.NewProvider(system.WithLogger(log.With("system"))), opts...)

	switch cfg.Command {
	case config.CommandWatch:
		return runLongLived(ctx, cfg, func(sel *selection) error {
			return watch(ctx, cfg, scanner, sel)
		})
	case config.CommandServe:
		return runLongLived(ctx, cfg, func(sel *selection) error {
			srv := server.New(cfg.Listen, scanner,
				server.WithRecorder(recorder),
				server.WithLogger(log.With("server")),
				server.WithDomains(sel.get),
			)
			return srv.Run(ctx)
		})
	default:
		return scanOnce(ctx, cfg, scanner)
	}
}

func scanOnce(ctx context.Context, cfg *config.Config, scanner *scan.Scanner) int {
	out := <-scanner.Start(ctx, cfg.Domains())
	if out.Err != nil {
		logError(out.Err, "Scan failed")
		return 1
	}

	if err := report.Write(os.Stdout, cfg.OutputFormat(), out.Result); err != nil {
		logError(err, "Failed to write report")
		return 1
	}
	return 0
}

func watch(ctx context.Context, cfg *config.Config, scanner *scan.Scanner, sel *selection) error {
	logger.Info().Dur("interval", cfg.Interval).Msg("Watch mode started")

	return scanner.Watch(ctx, cfg.Interval, sel.get, func(out scan.Outcome) {
		if out.Err != nil {
			logger.Warn().Err(out.Err).Msg("Scan failed")
			return
		}
		logger.Info().Str("scan_id", out.ScanID).Msg(report.SummaryLine(out.Result))
	})
}

// runLongLived guards fn with the PID file and keeps the component
// selection in sync with the configuration file.
func runLongLived(ctx context.Context, cfg *config.Config, fn func(*selection) error) int {
	pidFile := pid.New(cfg.PIDDir, "")
	if err := pidFile.Write(); err != nil {
		logError(err, "Failed to write PID file")
		return 1
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	sel := newSelection(cfg.Domains())
	if cfg.ConfigFile != "" {
		go func() {
			err := cfg.Watch(ctx, logger.Default().With("config"), func(next *config.Config) {
				sel.set(next.Domains())
				logger.Info().Strs("components", next.Components).Msg("Component selection updated")
			})
			if err != nil {
				logger.Warn().Err(err).Msg("Configuration watch stopped")
			}
		}()
	}

	if err := fn(sel); err != nil {
		logError(err, "Stopped with error")
		return 1
	}
	logger.Info().Msg("Exiting...")
	return 0
}

func printHistory(ctx context.Context, cfg *config.Config, recorder history.Recorder) int {
	if !recorder.Enabled() {
		logger.Error().Msg("Scan history is disabled, enable it with --history or history.enabled")
		return 1
	}

	entries, err := recorder.Recent(ctx, cfg.HistoryLimit)
	if err != nil {
		logError(err, "Failed to read scan history")
		return 1
	}

	if err := report.WriteHistory(os.Stdout, cfg.OutputFormat(), entries); err != nil {
		logError(err, "Failed to write history")
		return 1
	}
	return 0
}

// openGPU returns nil when NVML is unavailable. GPU sensors are optional.
func openGPU(log logger.Logger) *gpu.Sensors {
	sensors, err := gpu.Open(gpu.WithLogger(log.With("gpu")))
	if err != nil {
		logger.Debug().Err(err).Msg("GPU sensors unavailable")
		return nil
	}
	return sensors
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func logError(err error, msg string) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		logger.ErrorWithCode(appErr).Msg(msg)
		return
	}
	logger.Error().Err(err).Msg(msg)
}

type selection struct {
	mu      sync.RWMutex
	domains []telemetry.Domain
}

func newSelection(domains []telemetry.Domain) *selection {
	return &selection{domains: domains}
}

func (s *selection) get() []telemetry.Domain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains
}

func (s *selection) set(domains []telemetry.Domain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains = domains
}
