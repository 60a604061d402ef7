// ABOUTME: Genre normalization, parent hierarchy and the per-playlist genre registry
// ABOUTME: Maps distinct genre names to bit positions used by track genre masks

package playlist

import (
	"slices"
	"strings"
)

// genreParents maps a genre to its parent genre.
// Used to optionally widen a track's genre mask with ancestor genres.
var genreParents = map[string]string{
	// Drum and bass
	"liquid funk":   "drum and bass",
	"neurofunk":     "drum and bass",
	"jump up":       "drum and bass",
	"jungle":        "drum and bass",
	"drum and bass": "electronic",

	// House
	"deep house":        "house",
	"progressive house": "house",
	"tech house":        "house",
	"electro house":     "house",
	"house":             "electronic",

	// Other electronic
	"techno":    "electronic",
	"trance":    "electronic",
	"dubstep":   "electronic",
	"downtempo": "electronic",
	"synthwave": "electronic",
	"breakbeat": "electronic",
	"edm":       "electronic",

	// Rock
	"indie rock":       "rock",
	"alternative rock": "rock",
	"hard rock":        "rock",
	"punk":             "rock",
	"metal":            "rock",
	"thrash metal":     "metal",

	// Hip hop
	"rap":         "hip hop",
	"trap":        "hip hop",
	"boom bap":    "hip hop",
	"lo-fi beats": "hip hop",

	// Pop
	"indie pop": "pop",
	"synthpop":  "pop",
	"dance pop": "pop",
	"k-pop":     "pop",

	// Jazz and soul
	"acid jazz": "jazz",
	"fusion":    "jazz",
	"neo soul":  "soul",
	"funk":      "soul",

	// Reggae
	"dub":          "reggae",
	"roots reggae": "reggae",
}

// aliases folds spelling variants onto one canonical genre name
var aliases = map[string]string{
	"dnb":         "drum and bass",
	"d&b":         "drum and bass",
	"drum & bass": "drum and bass",
	"hiphop":      "hip hop",
	"hip-hop":     "hip hop",
	"r'n'b":       "r&b",
	"rnb":         "r&b",
	"electronica": "electronic",
}

// NormalizeGenre lowercases, trims and resolves aliases
func NormalizeGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if canonical, ok := aliases[g]; ok {
		return canonical
	}

	return g
}

// getAncestorChain returns the full ancestry chain for a normalized genre
// Example: "neurofunk" -> ["neurofunk", "drum and bass", "electronic"]
func getAncestorChain(genre string) []string {
	chain := []string{genre}
	current := genre

	for {
		parent, exists := genreParents[current]
		if !exists || parent == "" || slices.Contains(chain, parent) {
			break
		}

		chain = append(chain, parent)
		current = parent
	}

	return chain
}

// genreRegistry assigns each distinct genre a bit position in first-seen order
type genreRegistry struct {
	names []string
	index map[string]int
}

func newGenreRegistry() *genreRegistry {
	return &genreRegistry{index: make(map[string]int)}
}

// add registers genre if unseen and returns its bit position
func (r *genreRegistry) add(genre string) int {
	if i, ok := r.index[genre]; ok {
		return i
	}

	r.index[genre] = len(r.names)
	r.names = append(r.names, genre)

	return len(r.names) - 1
}
