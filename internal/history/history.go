// Package history persists scan results to SQLite.
package history

import (
	"context"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
)

// No-op implementation
type noopRecorder struct{}

// NewService opens the history store, or returns a no-op recorder when
// history is disabled.
func NewService(ctx context.Context, cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Scan history disabled, using no-op recorder")
		return &noopRecorder{}, nil
	}

	repo, err := newRepository(ctx, cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create history repository")
		return nil, err
	}

	return repo, nil
}

func (*noopRecorder) Record(_ context.Context, _ engine.Result) (string, error) {
	return "", nil
}

func (*noopRecorder) Recent(_ context.Context, _ int) ([]Entry, error) {
	return []Entry{}, nil
}

func (*noopRecorder) Enabled() bool {
	return false
}

func (*noopRecorder) Close() error {
	return nil
}
