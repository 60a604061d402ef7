// ABOUTME: Filtered view of a playlist with an independently applied sort order
// ABOUTME: Tracks spec changes through its version counter and re-sorts after every rebuild

package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"playlist-explorer/playlist"
)

// Column identifies a sort key
type Column int

// Sort columns. Feature columns follow ColumnFeature in feature order.
const (
	ColumnPlaylist Column = iota // Original playlist order
	ColumnName
	ColumnArtist
	ColumnAlbum
	ColumnFeature
)

// FeatureColumn returns the sort column for feature f
func FeatureColumn(f playlist.Feature) Column {
	return ColumnFeature + Column(f)
}

// String returns the column name
func (c Column) String() string {
	switch {
	case c == ColumnPlaylist:
		return "index"
	case c == ColumnName:
		return "name"
	case c == ColumnArtist:
		return "artist"
	case c == ColumnAlbum:
		return "album"
	case c >= ColumnFeature && int(c-ColumnFeature) < playlist.NumFeatures:
		return playlist.Feature(c - ColumnFeature).String()
	default:
		return fmt.Sprintf("column(%d)", int(c))
	}
}

// ParseColumn resolves a column by name
func ParseColumn(name string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "index", "playlist":
		return ColumnPlaylist, nil
	case "name", "title":
		return ColumnName, nil
	case "artist":
		return ColumnArtist, nil
	case "album":
		return ColumnAlbum, nil
	}

	f, err := playlist.ParseFeature(name)
	if err != nil {
		return 0, fmt.Errorf("unknown sort column %q", name)
	}

	return FeatureColumn(f), nil
}

// Sort is a column plus direction
type Sort struct {
	Column     Column
	Descending bool
}

// View holds the tracks that currently satisfy a Spec.
// Callers must Refresh after mutating the spec before reading Indices.
type View struct {
	spec     *Spec
	pl       *playlist.Playlist
	version  uint64
	built    bool
	indices  []int
	sortSpec Sort
}

// NewView creates a view over spec; it is dirty until the first Refresh
func NewView(spec *Spec) *View {
	return &View{spec: spec}
}

// Spec returns the spec the view filters by
func (v *View) Spec() *Spec {
	return v.spec
}

// Dirty reports whether the spec changed since the last Refresh
func (v *View) Dirty() bool {
	return !v.built || v.spec.Version() != v.version
}

// Refresh recomputes the view from scratch and re-applies the current sort
func (v *View) Refresh(pl *playlist.Playlist) []int {
	v.pl = pl
	v.indices = Refresh(pl, v.spec)
	v.version = v.spec.Version()
	v.built = true
	v.applySort()

	return v.indices
}

// Sort returns the active sort
func (v *View) Sort() Sort {
	return v.sortSpec
}

// SetSort changes the sort order and re-sorts the current indices
func (v *View) SetSort(s Sort) {
	v.sortSpec = s
	v.applySort()
}

// Indices returns the filtered track indices in display order
func (v *View) Indices() []int {
	return v.indices
}

// Len returns the number of tracks in the view
func (v *View) Len() int {
	return len(v.indices)
}

// applySort orders indices by the active column; ties keep playlist order
func (v *View) applySort() {
	if v.pl == nil {
		return
	}

	key := v.sortSpec
	pl := v.pl

	slices.SortFunc(v.indices, func(a, b int) int {
		c := compareTracks(pl.Track(a), pl.Track(b), key.Column)
		if key.Descending {
			c = -c
		}

		if c != 0 {
			return c
		}

		return cmp.Compare(a, b)
	})
}

func compareTracks(a, b *playlist.Track, col Column) int {
	switch {
	case col == ColumnName:
		return compareFold(a.Name, b.Name)
	case col == ColumnArtist:
		return compareFold(a.Artist(), b.Artist())
	case col == ColumnAlbum:
		return compareFold(a.Album, b.Album)
	case col >= ColumnFeature && int(col-ColumnFeature) < playlist.NumFeatures:
		f := col - ColumnFeature
		return cmp.Compare(a.Features[f], b.Features[f])
	default:
		return cmp.Compare(a.Index, b.Index)
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
