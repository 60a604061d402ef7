// ABOUTME: Adapter implementations for TUI interfaces and TUI mode wiring
// ABOUTME: Bridges the library watcher, recommender and logger to TUI interface contracts

package main

import (
	"github.com/rs/zerolog"

	"playlist-explorer/config"
	"playlist-explorer/logging"
	"playlist-explorer/playlist"
	"playlist-explorer/tui"
)

// playlistWriterAdapter adapts playlist.WritePlaylist to tui.PlaylistWriter interface
type playlistWriterAdapter struct{}

func (p *playlistWriterAdapter) Write(path string, tracks []*playlist.Track) error {
	return playlist.WritePlaylist(path, tracks)
}

// loggerAdapter adapts a zerolog logger to tui.Logger interface
type loggerAdapter struct {
	debugf func(string, ...interface{})
}

func newLoggerAdapter(logger zerolog.Logger) *loggerAdapter {
	return &loggerAdapter{debugf: logging.Debugf(logger)}
}

func (l *loggerAdapter) Debugf(format string, args ...interface{}) {
	l.debugf(format, args...)
}

// RunTUI starts interactive mode with live library reload
func RunTUI(opts RunOptions) error {
	app, err := initialize(opts, true)
	if err != nil {
		return err
	}
	defer app.Close()

	logger := newLoggerAdapter(app.Logger)
	sharedCfg := config.NewSharedConfig(app.Config)

	deps := tui.Dependencies{
		ConfigProvider: sharedCfg,
		PlaylistWriter: &playlistWriterAdapter{},
		Logger:         logger,
		ConfigPath:     config.GetConfigPath(),
	}

	// A nil *Runner must not become a non-nil tui.Recommender
	if runner := newRecommender(app.Config.Recommend, opts.Seed, app.Logger, app.Registry); runner != nil {
		deps.Recommender = runner
	} else {
		app.Logger.Warn().Err(errNoProvider).Msg("recommendations disabled")
	}

	watcher, err := playlist.NewWatcher(opts.LibraryPath, libraryOptions(app.Config.Library, false), app.Playlist, logger.Debugf)
	if err != nil {
		app.Logger.Warn().Err(err).Msg("live reload disabled")
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Debugf("[MAIN] Failed to close watcher: %v", err)
			}
		}()

		deps.Source = watcher
	}

	err = tui.Run(app.Playlist, tui.Options{
		OutputPath: opts.OutputPath,
		DryRun:     opts.DryRun,
		Accuracy:   opts.Accuracy,
	}, deps)

	logMetrics(app.Logger, app.Registry)

	return err
}
