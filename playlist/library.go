// ABOUTME: Loads track libraries from JSON exports or M3U8 playlists
// ABOUTME: Dispatches on file extension and builds the immutable Playlist

package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// LoadOptions controls library loading
type LoadOptions struct {
	BuildOptions

	Workers int  // Tag reader workers for M3U8 sources (0 = NumCPU)
	Verbose bool // Print progress to stdout
}

// libraryFile is the on-disk JSON library layout
type libraryFile struct {
	Tracks []libraryTrack `json:"tracks"`
}

type libraryTrack struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Artists  []string        `json:"artists"`
	Album    string          `json:"album"`
	Genres   []string        `json:"genres"`
	Path     string          `json:"path,omitempty"`
	Features libraryFeatures `json:"features"`
}

type libraryFeatures struct {
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Popularity       float64 `json:"popularity"`
}

func (f libraryFeatures) vector() Features {
	return Features{
		Acousticness:     f.Acousticness,
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Instrumentalness: f.Instrumentalness,
		Speechiness:      f.Speechiness,
		Liveness:         f.Liveness,
		Valence:          f.Valence,
		Tempo:            f.Tempo,
		Popularity:       f.Popularity,
	}
}

// Load reads a library from path. JSON files are decoded as library exports,
// .m3u/.m3u8 files are read with tag metadata.
func Load(path string, opts LoadOptions) (*Playlist, error) {
	var (
		tracks []Track
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		tracks, err = ReadLibrary(path)
	case ".m3u", ".m3u8":
		var skipped int

		tracks, skipped, err = LoadPlaylistWithMetadata(path, opts.Verbose, opts.Workers)
		if err == nil && skipped > 0 && opts.Verbose {
			fmt.Printf("Skipped %d tracks without readable metadata\n", skipped)
		}
	default:
		return nil, fmt.Errorf("unsupported library format %q", filepath.Ext(path))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	if len(tracks) == 0 {
		return nil, ErrEmpty
	}

	return Build(path, tracks, opts.BuildOptions), nil
}

// ReadLibrary decodes a JSON library export
func ReadLibrary(path string) ([]Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}

	var lib libraryFile
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse library: %w", err)
	}

	tracks := make([]Track, 0, len(lib.Tracks))
	for _, lt := range lib.Tracks {
		tracks = append(tracks, Track{
			ID:       lt.ID,
			Path:     lt.Path,
			Name:     lt.Name,
			Artists:  lt.Artists,
			Album:    lt.Album,
			Genres:   lt.Genres,
			Features: lt.Features.vector(),
		})
	}

	return tracks, nil
}
