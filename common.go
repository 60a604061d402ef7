// ABOUTME: Shared initialization code for CLI and TUI modes
// ABOUTME: Provides library loading, logger setup and recommender construction

package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"playlist-explorer/config"
	"playlist-explorer/logging"
	"playlist-explorer/playlist"
	"playlist-explorer/recommend"
)

const debugLogFile = "playlist-explorer-debug.log"

// RunOptions contains command-line options for all modes
type RunOptions struct {
	LibraryPath string
	DryRun      bool
	OutputPath  string
	DebugLog    bool

	// Filter flags
	Query  string
	Genres []string
	Ranges []string
	Sort   string

	// Recommendation flags
	Pins     []string
	Accuracy int
	Seed     uint64
}

// appContext contains the loaded library and the collaborators built from config
type appContext struct {
	Config   config.Config
	Playlist *playlist.Playlist
	Logger   zerolog.Logger
	Registry *prometheus.Registry
	closer   io.Closer
}

// Close releases the debug log file, if any
func (a *appContext) Close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// loadConfig loads the config file, falling back to defaults on error
func loadConfig() (config.Config, string) {
	path := config.GetConfigPath()

	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	return cfg, path
}

// setupLogger returns a logger writing to the debug log file when debug is set.
// Without it, CLI mode logs warnings to stderr and TUI mode logs nothing.
func setupLogger(cfg config.LogConfig, debug, visual bool) (zerolog.Logger, io.Closer, error) {
	lc := logging.Config{Level: cfg.Level, Format: cfg.Format}

	if debug {
		lc.Level = "debug"

		logger, closer, err := logging.OpenFile(debugLogFile, lc)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to setup debug log: %w", err)
		}

		if isTTY(os.Stdout) {
			fmt.Printf("Debug logging enabled: %s\n", debugLogFile)
		}

		return logger, closer, nil
	}

	if visual {
		return zerolog.Nop(), nil, nil
	}

	lc.Output = os.Stderr
	if logging.ParseLevel(lc.Level) < zerolog.WarnLevel {
		lc.Level = "warn"
	}

	return logging.New(lc), nil, nil
}

// initialize loads config, logger and library for either mode
func initialize(opts RunOptions, visual bool) (*appContext, error) {
	cfg, _ := loadConfig()

	logger, closer, err := setupLogger(cfg.Log, opts.DebugLog, visual)
	if err != nil {
		return nil, err
	}

	pl, err := loadLibrary(opts.LibraryPath, cfg.Library, !visual)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}

		return nil, err
	}

	logger.Debug().
		Str("library", opts.LibraryPath).
		Int("tracks", pl.Len()).
		Int("genres", len(pl.Genres())).
		Msg("library loaded")

	return &appContext{
		Config:   cfg,
		Playlist: pl,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		closer:   closer,
	}, nil
}

// libraryOptions converts the library config section into loader options
func libraryOptions(cfg config.LibraryConfig, verbose bool) playlist.LoadOptions {
	return playlist.LoadOptions{
		BuildOptions: playlist.BuildOptions{ExpandGenreParents: cfg.ExpandGenreParents},
		Workers:      cfg.Workers,
		Verbose:      verbose,
	}
}

// loadLibrary reads a JSON library or M3U8 playlist
func loadLibrary(path string, cfg config.LibraryConfig, verbose bool) (*playlist.Playlist, error) {
	if verbose {
		fmt.Printf("Reading library: %s\n", path)
	}

	pl, err := playlist.Load(path, libraryOptions(cfg, verbose))
	if err != nil {
		return nil, err
	}

	if verbose {
		fmt.Printf("Loaded %d tracks, %d genres\n", pl.Len(), len(pl.Genres()))
	}

	return pl, nil
}

// newRand returns the sampling RNG. seed 0 picks a time-based seed.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// errNoProvider is returned when recommendations are requested without provider_url
var errNoProvider = errors.New("no recommendation provider configured (set provider_url in [recommend])")

// newRecommender wires the HTTP provider into a Runner. It returns nil when no provider URL is set.
func newRecommender(cfg config.RecommendConfig, seed uint64, logger zerolog.Logger, reg prometheus.Registerer) *recommend.Runner {
	if strings.TrimSpace(cfg.ProviderURL) == "" {
		return nil
	}

	provider := recommend.NewHTTPProvider(recommend.HTTPProviderConfig{
		BaseURL:           cfg.ProviderURL,
		Timeout:           cfg.ProviderTimeout.Duration,
		RequestsPerSecond: cfg.RequestsPerSecond,
		BreakerFailures:   cfg.BreakerFailures,
		BreakerCooldown:   cfg.BreakerCooldown.Duration,
		Limit:             cfg.ResultsPerSeed,
	})

	return recommend.NewRunner(provider, newRand(seed), recommend.RunnerConfig{
		Timeout:     cfg.ProviderTimeout.Duration,
		Concurrency: cfg.Concurrency,
		Logger:      &logger,
		Metrics:     recommend.NewMetrics(reg),
	})
}

// logMetrics writes the gathered counter and histogram totals at debug level
func logMetrics(logger zerolog.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to gather metrics")

		return
	}

	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			ev := logger.Debug().Str("metric", mf.GetName())

			for _, lp := range metric.GetLabel() {
				ev = ev.Str(lp.GetName(), lp.GetValue())
			}

			switch {
			case metric.GetCounter() != nil:
				ev = ev.Float64("value", metric.GetCounter().GetValue())
			case metric.GetHistogram() != nil:
				ev = ev.Uint64("count", metric.GetHistogram().GetSampleCount()).
					Float64("sum", metric.GetHistogram().GetSampleSum())
			}

			ev.Msg("metric")
		}
	}
}

// isTTY checks if the given file is a terminal
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}

// truncate shortens string to maxLen runes, adding "..." if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}
