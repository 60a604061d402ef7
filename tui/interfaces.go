// ABOUTME: Interfaces defining dependencies for the TUI package
// ABOUTME: Allows clean separation and easy testing with mocks

package tui

import (
	"context"

	"playlist-explorer/config"
	"playlist-explorer/playlist"
	"playlist-explorer/recommend"
)

// ConfigProvider provides thread-safe access to the configuration
type ConfigProvider interface {
	Get() config.Config
	Update(cfg config.Config)
}

// Recommender runs a recommendation pass over the pinned tracks
type Recommender interface {
	Run(ctx context.Context, pl *playlist.Playlist, pinned *recommend.PinnedSet, k int) (*recommend.Result, error)
}

// PlaylistSource delivers reloaded playlists; Next blocks until one is available
type PlaylistSource interface {
	Next(ctx context.Context) (*playlist.Playlist, error)
}

// PlaylistWriter saves tracks to disk as a playlist
type PlaylistWriter interface {
	Write(path string, tracks []*playlist.Track) error
}

// Logger provides debug logging capability
type Logger interface {
	Debugf(format string, args ...interface{})
}
