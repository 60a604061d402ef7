// ABOUTME: Repeatable command-line flags and parsers for filter arguments
// ABOUTME: Turns -range, -genre, -query and -sort values into a filtered view

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"playlist-explorer/filter"
	"playlist-explorer/playlist"
)

var errRangeFormat = errors.New("range must look like name=min:max")

// stringList is a flag.Value collecting every occurrence of a repeatable flag
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)

	return nil
}

// featureRange is a parsed -range argument. An empty bound keeps the default.
type featureRange struct {
	Feature playlist.Feature
	Min     *float64
	Max     *float64
}

// parseRange parses "energy=0.2:0.8", "tempo=120:" or "valence=:0.5"
func parseRange(s string) (featureRange, error) {
	name, bounds, ok := strings.Cut(s, "=")
	if !ok {
		return featureRange{}, fmt.Errorf("%w: %q", errRangeFormat, s)
	}

	f, err := playlist.ParseFeature(name)
	if err != nil {
		return featureRange{}, err
	}

	lo, hi, ok := strings.Cut(bounds, ":")
	if !ok {
		return featureRange{}, fmt.Errorf("%w: %q", errRangeFormat, s)
	}

	r := featureRange{Feature: f}

	if r.Min, err = parseBound(lo); err != nil {
		return featureRange{}, fmt.Errorf("invalid minimum in %q: %w", s, err)
	}

	if r.Max, err = parseBound(hi); err != nil {
		return featureRange{}, fmt.Errorf("invalid maximum in %q: %w", s, err)
	}

	return r, nil
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil //nolint:nilnil // empty bound means unset
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// parseSort parses a column name; a leading "-" sorts descending
func parseSort(s string) (filter.Sort, error) {
	desc := strings.HasPrefix(s, "-")

	col, err := filter.ParseColumn(strings.TrimPrefix(s, "-"))
	if err != nil {
		return filter.Sort{}, err
	}

	return filter.Sort{Column: col, Descending: desc}, nil
}

// buildView applies the filter flags to a fresh spec over pl and returns the refreshed view
func buildView(pl *playlist.Playlist, opts RunOptions) (*filter.View, error) {
	spec := filter.NewSpec(pl)

	for _, arg := range opts.Ranges {
		fr, err := parseRange(arg)
		if err != nil {
			return nil, err
		}

		r := spec.Range(fr.Feature)
		if fr.Min != nil {
			r.Min = *fr.Min
		}

		if fr.Max != nil {
			r.Max = *fr.Max
		}

		if err := spec.SetFeatureRange(fr.Feature, r.Min, r.Max); err != nil {
			return nil, err
		}
	}

	for _, name := range opts.Genres {
		i, ok := pl.GenreIndex(name)
		if !ok {
			return nil, fmt.Errorf("unknown genre %q", name)
		}

		spec.SetGenre(i, true)
	}

	spec.SetQuery(opts.Query)

	view := filter.NewView(spec)
	view.Refresh(pl)

	if opts.Sort != "" {
		s, err := parseSort(opts.Sort)
		if err != nil {
			return nil, err
		}

		view.SetSort(s)
	}

	return view, nil
}
