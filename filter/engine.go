// ABOUTME: Predicate evaluation of a filter spec against tracks
// ABOUTME: Rebuilds the filtered index list with a full linear scan

package filter

import (
	"playlist-explorer/playlist"
)

// Evaluate reports whether t satisfies every constraint in s.
// Checks run ranges first, then genres, then text, stopping at the first failure.
func Evaluate(t *playlist.Track, s *Spec) bool {
	return inRanges(t, s) && hasGenre(t, s) && matchesQuery(t, s)
}

func inRanges(t *playlist.Track, s *Spec) bool {
	for f, v := range t.Features {
		if !s.ranges[f].Contains(v) {
			return false
		}
	}

	return true
}

func hasGenre(t *playlist.Track, s *Spec) bool {
	if !s.genres.Any() {
		return true
	}

	if t.GenreMask == nil {
		return false
	}

	return t.GenreMask.And(s.genres).Any()
}

func matchesQuery(t *playlist.Track, s *Spec) bool {
	return s.query == "" || t.MatchesText(s.query)
}

// Refresh returns the indices of all tracks in pl satisfying s, in playlist order
func Refresh(pl *playlist.Playlist, s *Spec) []int {
	out := make([]int, 0, pl.Len())
	for i := range pl.Len() {
		if Evaluate(pl.Track(i), s) {
			out = append(out, i)
		}
	}

	return out
}
