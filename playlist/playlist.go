// ABOUTME: Playlist container owning the immutable track array and genre registry
// ABOUTME: Reads M3U8 playlists with tag metadata and writes track paths back to disk

// Package playlist owns the track collection that filters and recommendations refer to.
// Tracks are identified by their stable index; the array is never resized after Build.
package playlist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"playlist-explorer/bitset"
	"playlist-explorer/pool"
)

// ErrEmpty is returned when a source yields no usable tracks
var ErrEmpty = errors.New("playlist is empty")

// Playlist owns the track array. It is immutable once built and safe for concurrent reads.
type Playlist struct {
	source string
	tracks []Track
	genres []string
	byID   map[string]int
}

// BuildOptions controls how raw tracks are indexed
type BuildOptions struct {
	// ExpandGenreParents adds the ancestors of each genre to the track's genre mask
	ExpandGenreParents bool
}

// Build takes ownership of tracks, assigns stable indices and builds genre masks.
// Tracks sharing an ID keep the first occurrence for lookups.
func Build(source string, tracks []Track, opts BuildOptions) *Playlist {
	reg := newGenreRegistry()

	for i := range tracks {
		t := &tracks[i]
		t.Index = i

		var genres []string

		for _, g := range t.Genres {
			g = NormalizeGenre(g)
			if g == "" {
				continue
			}

			chain := []string{g}
			if opts.ExpandGenreParents {
				chain = getAncestorChain(g)
			}

			for _, name := range chain {
				if !containsString(genres, name) {
					genres = append(genres, name)
				}
				reg.add(name)
			}
		}

		t.Genres = genres
	}

	p := &Playlist{
		source: source,
		tracks: tracks,
		genres: reg.names,
		byID:   make(map[string]int, len(tracks)),
	}

	for i := range tracks {
		t := &tracks[i]

		t.GenreMask = bitset.New(len(reg.names))
		for _, g := range t.Genres {
			t.GenreMask.Set(reg.index[g])
		}

		t.lowerName = strings.ToLower(t.Name)
		t.lowerAlbum = strings.ToLower(t.Album)
		t.lowerArtists = make([]string, len(t.Artists))
		for j, a := range t.Artists {
			t.lowerArtists[j] = strings.ToLower(a)
		}

		if t.ID == "" {
			continue
		}

		if _, dup := p.byID[t.ID]; !dup {
			p.byID[t.ID] = i
		}
	}

	return p
}

// containsString checks if a string is in a slice
func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}

	return false
}

// Source returns the path the playlist was loaded from
func (p *Playlist) Source() string {
	return p.source
}

// Len returns the number of tracks
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// Track returns the track at index i. The pointer stays valid for the playlist's lifetime.
func (p *Playlist) Track(i int) *Track {
	return &p.tracks[i]
}

// Tracks returns the backing track array. Callers must not modify it.
func (p *Playlist) Tracks() []Track {
	return p.tracks
}

// Lookup resolves a provider track ID to its stable index
func (p *Playlist) Lookup(id string) (int, bool) {
	i, ok := p.byID[id]

	return i, ok
}

// Genres returns the distinct genre names in bit order
func (p *Playlist) Genres() []string {
	return p.genres
}

// GenreIndex returns the bit position of a genre name
func (p *Playlist) GenreIndex(name string) (int, bool) {
	name = NormalizeGenre(name)
	for i, g := range p.genres {
		if g == name {
			return i, true
		}
	}

	return 0, false
}

// ReadPlaylist reads an M3U8 playlist file and returns tracks with only Path set
func ReadPlaylist(path string) ([]Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlist: %w", err)
	}

	defer func() {
		_ = file.Close() // Explicitly ignore error for read-only file
	}()

	var tracks []Track

	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tracks = append(tracks, Track{Path: line, ID: line})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading playlist: %w", err)
	}

	return tracks, nil
}

// LoadPlaylistWithMetadata reads a playlist and fetches tag metadata for each track
// using a worker pool. Tracks that fail to load are skipped; the skip count is returned.
func LoadPlaylistWithMetadata(path string, verbose bool, workers int) ([]Track, int, error) {
	entries, err := ReadPlaylist(path)
	if err != nil {
		return nil, 0, err
	}

	if verbose {
		fmt.Printf("Loading metadata for %d tracks...\n", len(entries))
	}

	baseDir := filepath.Dir(path)
	results := make([]*Track, len(entries))
	errs := make([]error, len(entries))

	p := pool.NewWorkerPool(workers, len(entries))
	for i := range entries {
		p.Submit(func() {
			results[i], errs[i] = GetTrackMetadata(entries[i].Path, baseDir)
		})
	}

	p.Wait()
	p.Close()

	// Keep playlist order, filtering out failures
	validTracks := make([]Track, 0, len(entries))
	skippedCount := 0

	for i := range entries {
		if errs[i] != nil {
			if verbose {
				fmt.Printf("[!] Skipping track (could not load metadata): %s: %v\n", entries[i].Path, errs[i])
			}

			skippedCount++

			continue
		}

		validTracks = append(validTracks, *results[i])
	}

	return validTracks, skippedCount, nil
}

// WritePlaylist writes the given tracks' paths to an M3U8 playlist file
// Tracks without a path are written by ID. Creates a backup (.bak) of an existing file.
func WritePlaylist(path string, tracks []*Track) (err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		backupPath := path + ".bak"
		if err := os.Rename(path, backupPath); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close playlist file: %w", closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString("#EXTM3U\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, track := range tracks {
		line := track.Path
		if line == "" {
			line = track.ID
		}

		if _, err := fmt.Fprintf(writer, "#EXTINF:-1,%s - %s\n%s\n", track.Artist(), track.Name, line); err != nil {
			return fmt.Errorf("failed to write track: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	return nil
}
