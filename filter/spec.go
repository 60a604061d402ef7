// ABOUTME: Composite filter specification: feature ranges, genre mask and text query
// ABOUTME: Provides the mutation surface driven by UI events and a change counter

// Package filter narrows a playlist by feature ranges, genres and free text.
package filter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"playlist-explorer/bitset"
	"playlist-explorer/playlist"
)

// ErrFeatureIndex is returned for a feature index outside the feature vector
var ErrFeatureIndex = errors.New("feature index out of range")

// Range is an inclusive [Min, Max] interval. A range with Min > Max matches nothing.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the range
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Spec is the active combination of constraints.
// Every mutation bumps Version so views can tell when they are stale.
type Spec struct {
	ranges   [playlist.NumFeatures]Range
	defaults [playlist.NumFeatures]Range
	genres   *bitset.BitSet
	query    string
	version  uint64
}

// NewSpec creates an unconstrained spec for pl.
// Default ranges cover each feature's natural bounds widened to the playlist's observed finite values.
func NewSpec(pl *playlist.Playlist) *Spec {
	s := &Spec{genres: bitset.New(len(pl.Genres()))}

	for f := range playlist.NumFeatures {
		lo, hi := playlist.Feature(f).Bounds()
		s.defaults[f] = Range{Min: lo, Max: hi}
	}

	tracks := pl.Tracks()
	for i := range tracks {
		for f, v := range tracks[i].Features {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}

			s.defaults[f].Min = math.Min(s.defaults[f].Min, v)
			s.defaults[f].Max = math.Max(s.defaults[f].Max, v)
		}
	}

	s.ranges = s.defaults

	return s
}

// Version returns the mutation counter
func (s *Spec) Version() uint64 {
	return s.version
}

// Range returns the active range for feature f
func (s *Spec) Range(f playlist.Feature) Range {
	return s.ranges[f]
}

// DefaultRange returns the unconstrained range for feature f
func (s *Spec) DefaultRange(f playlist.Feature) Range {
	return s.defaults[f]
}

// Genres returns the genre requirement mask. An empty mask means no genre constraint.
func (s *Spec) Genres() *bitset.BitSet {
	return s.genres
}

// Query returns the lowercased text query
func (s *Spec) Query() string {
	return s.query
}

// SetFeatureRange sets the inclusive range for feature f.
// min > max is accepted and makes the spec match nothing.
func (s *Spec) SetFeatureRange(f playlist.Feature, minVal, maxVal float64) error {
	if f < 0 || int(f) >= playlist.NumFeatures {
		return fmt.Errorf("%w: %d", ErrFeatureIndex, int(f))
	}

	s.ranges[f] = Range{Min: minVal, Max: maxVal}
	s.version++

	return nil
}

// SetGenre enables or disables genre bit i, growing the mask when needed
func (s *Spec) SetGenre(i int, enabled bool) {
	if i >= s.genres.Size() {
		if !enabled {
			return
		}
		s.genres.Resize(i + 1)
	}

	if enabled {
		s.genres.Set(i)
	} else {
		s.genres.Clear(i)
	}

	s.version++
}

// ToggleGenre flips genre bit i
func (s *Spec) ToggleGenre(i int) {
	enabled := i >= s.genres.Size() || !s.genres.Get(i)
	s.SetGenre(i, enabled)
}

// SetQuery sets the case-insensitive text query
func (s *Spec) SetQuery(q string) {
	s.query = strings.ToLower(strings.TrimSpace(q))
	s.version++
}

// Reset restores default ranges and clears the genre mask and query
func (s *Spec) Reset() {
	s.ranges = s.defaults
	s.genres = bitset.New(s.genres.Size())
	s.query = ""
	s.version++
}

// Snapshot is a copyable value of a spec's constraints, used for undo
type Snapshot struct {
	Ranges [playlist.NumFeatures]Range
	Genres *bitset.BitSet
	Query  string
}

// Snapshot captures the current constraints
func (s *Spec) Snapshot() Snapshot {
	return Snapshot{Ranges: s.ranges, Genres: s.genres.Clone(), Query: s.query}
}

// Restore replaces the constraints with a snapshot
func (s *Spec) Restore(snap Snapshot) {
	s.ranges = snap.Ranges
	s.genres = snap.Genres.Clone()
	s.query = snap.Query
	s.version++
}
