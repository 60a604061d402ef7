// ABOUTME: Watches a library file and reloads it in the background
// ABOUTME: Publishes fully built playlists atomically so readers never see a partial array

package playlist

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce gives editors time to finish atomic writes before reloading
const reloadDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned by Next after Close
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reloads a library when its file changes
type Watcher struct {
	path    string
	opts    LoadOptions
	watcher *fsnotify.Watcher
	current atomic.Pointer[Playlist]
	debugf  func(string, ...interface{})
}

// NewWatcher starts watching path. initial is published as the current playlist.
func NewWatcher(path string, opts LoadOptions, initial *Playlist, debugf func(string, ...interface{})) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fw.Add(path); err != nil {
		_ = fw.Close()

		return nil, fmt.Errorf("failed to watch library file: %w", err)
	}

	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	w := &Watcher{
		path:    path,
		opts:    opts,
		watcher: fw,
		debugf:  debugf,
	}
	w.current.Store(initial)

	return w, nil
}

// Current returns the most recently published playlist
func (w *Watcher) Current() *Playlist {
	return w.current.Load()
}

// Next blocks until the file is written, reloads it and publishes the result.
// Reload failures are returned without replacing the current playlist.
func (w *Watcher) Next(ctx context.Context) (*Playlist, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil, ErrWatcherClosed
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(reloadDebounce):
			}

			pl, err := Load(w.path, w.opts)
			if err != nil {
				w.debugf("[WATCHER] Reload of %s failed: %v", w.path, err)

				return nil, err
			}

			w.current.Store(pl)
			w.debugf("[WATCHER] Reloaded %s: %d tracks, %d genres", w.path, pl.Len(), len(pl.Genres()))

			return pl, nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil, ErrWatcherClosed
			}

			// Log error but continue watching
			w.debugf("[WATCHER] Error: %v", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
