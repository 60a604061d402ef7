// ABOUTME: Defines Track struct, the audio feature vector and metadata fetching from audio files
// ABOUTME: Reads file tags for name, artist, album, genre, tempo and custom feature tags

package playlist

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"playlist-explorer/bitset"
)

// Feature indexes the audio feature vector
type Feature int

// Audio features in vector order
const (
	Acousticness Feature = iota
	Danceability
	Energy
	Instrumentalness
	Speechiness
	Liveness
	Valence
	Tempo
	Popularity
	NumFeatures int = iota
)

var featureNames = [NumFeatures]string{
	"acousticness",
	"danceability",
	"energy",
	"instrumentalness",
	"speechiness",
	"liveness",
	"valence",
	"tempo",
	"popularity",
}

// Features is the fixed-length feature vector of a track
type Features [NumFeatures]float64

// String returns the lowercase feature name
func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return fmt.Sprintf("feature(%d)", int(f))
	}

	return featureNames[f]
}

// Bounds returns the natural value range of the feature
func (f Feature) Bounds() (float64, float64) {
	switch f {
	case Tempo:
		return 0, 250
	case Popularity:
		return 0, 100
	default:
		return 0, 1
	}
}

// ParseFeature resolves a feature by name (case-insensitive)
func ParseFeature(name string) (Feature, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, fn := range featureNames {
		if fn == n {
			return Feature(i), nil
		}
	}

	return 0, fmt.Errorf("unknown feature %q", name)
}

// Track represents one playlist entry. Index is its stable position in the owning Playlist.
type Track struct {
	Index     int            // Position in Playlist.Tracks, stable after load
	ID        string         // Provider identifier (path for file-backed tracks)
	Path      string         // Path in playlist file, empty for library tracks
	Name      string         // Track title
	Artists   []string       // Artist names
	Album     string         // Album name
	Genres    []string       // Normalized genre names
	Features  Features       // Audio feature vector
	GenreMask *bitset.BitSet // Genre membership, sized to the playlist's genre count

	// Lowercased copies for text search, filled by Build
	lowerName    string
	lowerArtists []string
	lowerAlbum   string
}

// Artist returns the artists joined for display
func (t *Track) Artist() string {
	return strings.Join(t.Artists, ", ")
}

// MatchesText reports whether query is a substring of the name, an artist or the album.
// The query must already be lowercased.
func (t *Track) MatchesText(query string) bool {
	if strings.Contains(t.lowerName, query) || strings.Contains(t.lowerAlbum, query) {
		return true
	}

	for _, a := range t.lowerArtists {
		if strings.Contains(a, query) {
			return true
		}
	}

	return false
}

// String returns a formatted string representation of the track
func (t *Track) String() string {
	return fmt.Sprintf("%-30s - %s (%s) Tempo: %.0f", t.Artist(), t.Name, t.Album, t.Features[Tempo])
}

// tempoTags are the raw tag names that may carry BPM across formats
var tempoTags = []string{"BPM", "TBPM", "bpm", "tempo"}

// GetTrackMetadata fetches metadata for a track by reading the file directly.
// The trackPath can be absolute or relative. Relative paths are resolved against
// the provided baseDir (typically the playlist's directory).
func GetTrackMetadata(trackPath string, baseDir string) (*Track, error) {
	fullPath := trackPath
	if !filepath.IsAbs(trackPath) && baseDir != "" {
		fullPath = filepath.Join(baseDir, trackPath)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	title := metadata.Title()
	if title == "" {
		title = filepath.Base(trackPath)
	}

	track := &Track{
		ID:      trackPath,
		Path:    trackPath,
		Name:    title,
		Artists: splitList(metadata.Artist(), ";"),
		Album:   metadata.Album(),
		Genres:  splitList(metadata.Genre(), ";,"),
	}

	raw := metadata.Raw()
	for _, key := range tempoTags {
		if v, ok := rawFloat(raw, key); ok && v > 0 {
			track.Features[Tempo] = v

			break
		}
	}

	// Remaining features come from custom tags named after the feature (e.g. ENERGY=0.7)
	for i, name := range featureNames {
		if Feature(i) == Tempo {
			continue
		}

		if v, ok := rawFloat(raw, name); ok {
			track.Features[i] = v
		}
	}

	return track, nil
}

// rawFloat looks up a numeric tag by name, ignoring case.
// ID3 user text frames (TXXX) are matched by their description.
func rawFloat(raw map[string]interface{}, name string) (float64, bool) {
	for key, val := range raw {
		var text string

		switch v := val.(type) {
		case string:
			if !strings.EqualFold(key, name) {
				continue
			}
			text = v
		case *tag.Comm:
			if !strings.EqualFold(v.Description, name) {
				continue
			}
			text = v.Text
		case int:
			if !strings.EqualFold(key, name) {
				continue
			}
			return float64(v), true
		case float64:
			if !strings.EqualFold(key, name) {
				continue
			}
			return v, finite(v)
		default:
			continue
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err == nil && finite(f) {
			return f, true
		}
	}

	return 0, false
}

// finite rejects NaN and infinities, which ParseFloat accepts
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// splitList splits s on any of seps, trimming and dropping empty parts
func splitList(s, seps string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
