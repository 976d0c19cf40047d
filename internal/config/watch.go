package config

import (
	"context"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration each time the file in use is written and
// passes the new value to onChange. Flags given to the first Load keep
// their precedence. An invalid file is logged and the previous
// configuration stays in effect. Watch runs until ctx is cancelled.
func (c *Config) Watch(ctx context.Context, log logger.Logger, onChange func(*Config)) error {
	errFactory := errors.New()

	if c.ConfigFile == "" {
		return errFactory.WithMessage(errors.ErrWatchConfig, "no configuration file in use")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errFactory.Wrap(errors.ErrWatchConfig, err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.ConfigFile); err != nil {
		return errFactory.Wrap(errors.ErrWatchConfig, err)
	}

	log.Debug().Str("path", c.ConfigFile).Msg("Watching configuration file")

	opts := append([]Option{WithConfigFile(c.ConfigFile)}, c.opts...)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors that save atomically produce Create instead of Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			next, err := Load(c.args, opts...)
			if err != nil {
				log.Warn().Err(err).Str("path", c.ConfigFile).Msg("Configuration reload failed, keeping previous")
				continue
			}

			log.Info().Str("path", c.ConfigFile).Msg("Configuration reloaded")
			onChange(next)

			// The inode may have been replaced.
			_ = watcher.Add(c.ConfigFile)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Configuration watcher error")
		}
	}
}
