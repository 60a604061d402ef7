// ABOUTME: Tests for playlist building and M3U8 reading and writing
// ABOUTME: Verifies stable indices, genre masks, file I/O and comment handling

package playlist

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// TestReadPlaylist verifies M3U8 parsing
func TestReadPlaylist(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectCount int
		expectError bool
	}{
		{
			name: "simple playlist",
			content: `Artist/Album/01 Track.mp3
Artist/Album/02 Track.mp3
Artist/Album/03 Track.mp3`,
			expectCount: 3,
			expectError: false,
		},
		{
			name: "with comments",
			content: `#EXTM3U
# This is a comment
Artist/Album/01 Track.mp3
# Another comment
Artist/Album/02 Track.mp3`,
			expectCount: 2,
			expectError: false,
		},
		{
			name: "with empty lines",
			content: `Artist/Album/01 Track.mp3

Artist/Album/02 Track.mp3

`,
			expectCount: 2,
			expectError: false,
		},
		{
			name:        "empty file",
			content:     "",
			expectCount: 0,
			expectError: false,
		},
		{
			name: "only comments",
			content: `#EXTM3U
# Just comments
# No tracks`,
			expectCount: 0,
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temp file
			tmpDir := t.TempDir()
			tmpFile := filepath.Join(tmpDir, "test.m3u8")

			if err := os.WriteFile(tmpFile, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			// Test ReadPlaylist
			tracks, err := ReadPlaylist(tmpFile)

			if tt.expectError && err == nil {
				t.Error("Expected error, got none")
			}

			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if len(tracks) != tt.expectCount {
				t.Errorf("Expected %d tracks, got %d", tt.expectCount, len(tracks))
			}

			// Verify track paths are set
			for i, track := range tracks {
				if track.Path == "" {
					t.Errorf("Track %d has empty path", i)
				}
			}
		})
	}
}

// TestReadPlaylistNonExistent verifies error handling for missing files
func TestReadPlaylistNonExistent(t *testing.T) {
	tracks, err := ReadPlaylist("/nonexistent/path/to/playlist.m3u8")

	if err == nil {
		t.Error("Expected error for nonexistent file, got none")
	}

	if len(tracks) != 0 {
		t.Errorf("Expected 0 tracks for failed read, got %d", len(tracks))
	}
}

// pointers returns pointers into tracks for WritePlaylist
func pointers(tracks []Track) []*Track {
	out := make([]*Track, len(tracks))
	for i := range tracks {
		out[i] = &tracks[i]
	}

	return out
}

// TestWritePlaylist verifies M3U8 writing
func TestWritePlaylist(t *testing.T) {
	tests := []struct {
		name   string
		tracks []Track
	}{
		{
			name: "simple tracks",
			tracks: []Track{
				{Path: "Artist/Album/01 Track.mp3"},
				{Path: "Artist/Album/02 Track.mp3"},
				{Path: "Artist/Album/03 Track.mp3"},
			},
		},
		{
			name:   "empty tracks",
			tracks: []Track{},
		},
		{
			name: "library tracks fall back to ID",
			tracks: []Track{
				{ID: "spotify:track:1", Name: "One"},
				{Path: "Artist/Album/02 Track.mp3"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "test.m3u8")

			if err := WritePlaylist(tmpFile, pointers(tt.tracks)); err != nil {
				t.Fatalf("Failed to write playlist: %v", err)
			}

			readTracks, err := ReadPlaylist(tmpFile)
			if err != nil {
				t.Fatalf("Failed to read playlist: %v", err)
			}

			if len(readTracks) != len(tt.tracks) {
				t.Fatalf("Expected %d tracks after write/read, got %d", len(tt.tracks), len(readTracks))
			}

			for i, want := range tt.tracks {
				line := want.Path
				if line == "" {
					line = want.ID
				}

				if readTracks[i].Path != line {
					t.Errorf("Track %d: expected path %s, got %s", i, line, readTracks[i].Path)
				}
			}
		})
	}
}

// TestWritePlaylistBackup verifies an existing file is kept as .bak
func TestWritePlaylistBackup(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "pinned.m3u8")
	if err := os.WriteFile(tmpFile, []byte("old.mp3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WritePlaylist(tmpFile, pointers([]Track{{Path: "new.mp3"}})); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	backup, err := ReadPlaylist(tmpFile + ".bak")
	if err != nil {
		t.Fatalf("Expected backup file: %v", err)
	}

	if len(backup) != 1 || backup[0].Path != "old.mp3" {
		t.Errorf("Unexpected backup contents: %+v", backup)
	}
}

// TestWritePlaylistInvalidPath verifies error handling for invalid paths
func TestWritePlaylistInvalidPath(t *testing.T) {
	err := WritePlaylist("/nonexistent/directory/playlist.m3u8", pointers([]Track{{Path: "a.mp3"}}))
	if err == nil {
		t.Error("Expected error for invalid path, got none")
	}
}

func TestBuildAssignsIndicesAndGenreMasks(t *testing.T) {
	tracks := []Track{
		{ID: "a", Name: "A", Genres: []string{"House", "Techno"}},
		{ID: "b", Name: "B", Genres: []string{"techno"}},
		{ID: "c", Name: "C"},
		{ID: "a", Name: "Duplicate of A", Genres: []string{"DnB"}},
	}

	pl := Build("test.json", tracks, BuildOptions{})

	if pl.Len() != 4 {
		t.Fatalf("Expected 4 tracks, got %d", pl.Len())
	}

	wantGenres := []string{"house", "techno", "drum and bass"}
	if !slices.Equal(pl.Genres(), wantGenres) {
		t.Errorf("Expected genres %v, got %v", wantGenres, pl.Genres())
	}

	for i := range pl.Len() {
		tr := pl.Track(i)
		if tr.Index != i {
			t.Errorf("Track %d has index %d", i, tr.Index)
		}

		if tr.GenreMask.Size() != len(wantGenres) {
			t.Errorf("Track %d mask size %d, want %d", i, tr.GenreMask.Size(), len(wantGenres))
		}
	}

	if got := pl.Track(0).GenreMask.String(); got != "110" {
		t.Errorf("Track 0 mask %s, want 110", got)
	}

	if got := pl.Track(1).GenreMask.String(); got != "010" {
		t.Errorf("Track 1 mask %s, want 010", got)
	}

	if pl.Track(2).GenreMask.Any() {
		t.Error("Track without genres should have an empty mask")
	}

	if i, ok := pl.Lookup("a"); !ok || i != 0 {
		t.Errorf("Lookup(a) = %d, %v; want first occurrence 0", i, ok)
	}

	if _, ok := pl.Lookup("missing"); ok {
		t.Error("Lookup of unknown ID should fail")
	}

	if i, ok := pl.GenreIndex("DNB"); !ok || i != 2 {
		t.Errorf("GenreIndex(DNB) = %d, %v; want 2", i, ok)
	}
}

func TestBuildExpandGenreParents(t *testing.T) {
	tracks := []Track{
		{ID: "a", Genres: []string{"neurofunk"}},
		{ID: "b", Genres: []string{"deep house"}},
	}

	pl := Build("test.json", tracks, BuildOptions{ExpandGenreParents: true})

	electronic, ok := pl.GenreIndex("electronic")
	if !ok {
		t.Fatal("Expected parent genre electronic to be registered")
	}

	for i := range pl.Len() {
		if !pl.Track(i).GenreMask.Get(electronic) {
			t.Errorf("Track %d should include ancestor genre electronic", i)
		}
	}
}

func TestMatchesText(t *testing.T) {
	pl := Build("test.json", []Track{
		{ID: "a", Name: "Running", Artists: []string{"Calibre", "DRS"}, Album: "Spill"},
	}, BuildOptions{})
	tr := pl.Track(0)

	for _, q := range []string{"run", "drs", "spill", "calibre"} {
		if !tr.MatchesText(q) {
			t.Errorf("Expected %q to match", q)
		}
	}

	if tr.MatchesText("oxygen") {
		t.Error("Expected oxygen not to match")
	}
}

func TestLoadJSONLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	content := `{"tracks":[
		{"id":"t1","name":"One","artists":["X"],"album":"Al","genres":["rock"],
		 "features":{"energy":0.8,"tempo":128,"popularity":55}},
		{"id":"t2","name":"Two","artists":["Y"],"album":"Al","genres":[]}
	]}`

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	pl, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if pl.Len() != 2 {
		t.Fatalf("Expected 2 tracks, got %d", pl.Len())
	}

	f := pl.Track(0).Features
	if f[Energy] != 0.8 || f[Tempo] != 128 || f[Popularity] != 55 {
		t.Errorf("Unexpected features %v", f)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"tracks":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(empty, LoadOptions{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "library.csv"), LoadOptions{}); err == nil {
		t.Error("Expected error for unsupported format")
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`{"tracks":`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(broken, LoadOptions{}); err == nil {
		t.Error("Expected parse error")
	}
}

func TestLoadM3USkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.m3u8")

	if err := os.WriteFile(path, []byte("missing1.mp3\nmissing2.mp3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tracks, skipped, err := LoadPlaylistWithMetadata(path, false, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(tracks) != 0 || skipped != 2 {
		t.Errorf("Expected 0 tracks and 2 skipped, got %d and %d", len(tracks), skipped)
	}

	if _, err := Load(path, LoadOptions{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
}

func TestParseFeature(t *testing.T) {
	f, err := ParseFeature(" Tempo ")
	if err != nil || f != Tempo {
		t.Errorf("ParseFeature(Tempo) = %v, %v", f, err)
	}

	if _, err := ParseFeature("loudness"); err == nil {
		t.Error("Expected error for unknown feature")
	}

	if lo, hi := Popularity.Bounds(); lo != 0 || hi != 100 {
		t.Errorf("Popularity bounds %v..%v", lo, hi)
	}
}

func TestRawFloatRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]interface{}
		want   float64
		wantOK bool
	}{
		{"numeric text", map[string]interface{}{"energy": " 0.75 "}, 0.75, true},
		{"case insensitive key", map[string]interface{}{"ENERGY": "0.5"}, 0.5, true},
		{"integer", map[string]interface{}{"energy": 1}, 1, true},
		{"nan text", map[string]interface{}{"energy": "NaN"}, 0, false},
		{"inf text", map[string]interface{}{"energy": "+Inf"}, 0, false},
		{"nan float", map[string]interface{}{"energy": math.NaN()}, 0, false},
		{"garbage", map[string]interface{}{"energy": "loud"}, 0, false},
		{"missing", map[string]interface{}{"tempo": "120"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rawFloat(tt.raw, "Energy")
			if ok != tt.wantOK {
				t.Fatalf("rawFloat ok = %v, want %v", ok, tt.wantOK)
			}

			if ok && got != tt.want {
				t.Errorf("rawFloat = %v, want %v", got, tt.want)
			}
		})
	}
}
