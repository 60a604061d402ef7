// ABOUTME: Tests for configuration load/save functionality
// ABOUTME: Validates TOML parsing, default fallback and field validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Recommend.Accuracy != 3 {
		t.Errorf("Expected Accuracy 3, got %d", cfg.Recommend.Accuracy)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "playlist-explorer.toml")

	cfg := DefaultConfig()
	cfg.Recommend.Accuracy = 5
	cfg.Recommend.ProviderTimeout = Duration{1500 * time.Millisecond}
	cfg.Library.ExpandGenreParents = true
	cfg.Log.Format = "json"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded != cfg {
		t.Errorf("Round trip mismatch:\n got  %+v\n want %+v", loaded, cfg)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}

	if cfg != DefaultConfig() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[recommend]
accuracy = 2
provider_timeout = "250ms"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Recommend.Accuracy != 2 {
		t.Errorf("Accuracy = %d, want 2", cfg.Recommend.Accuracy)
	}

	if cfg.Recommend.ProviderTimeout.Duration != 250*time.Millisecond {
		t.Errorf("ProviderTimeout = %v, want 250ms", cfg.Recommend.ProviderTimeout)
	}

	defaults := DefaultConfig()
	if cfg.Recommend.Concurrency != defaults.Recommend.Concurrency || cfg.Log != defaults.Log {
		t.Errorf("Unset keys should keep defaults, got %+v", cfg)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad toml", "[recommend\n", "parse"},
		{"accuracy too high", "[recommend]\naccuracy = 9\n", "Accuracy"},
		{"bad url", "[recommend]\nprovider_url = \"not a url\"\n", "ProviderURL"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "Level"},
		{"bad duration", "[recommend]\nprovider_timeout = \"soon\"\n", "parse"},
		{"negative timeout", "[recommend]\nprovider_timeout = \"-1s\"\n", "ProviderTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadConfig(path)
			if err == nil {
				t.Fatal("Expected error")
			}

			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error %q should mention %q", err, tt.want)
			}

			if cfg != DefaultConfig() {
				t.Error("Failed load should return defaults")
			}
		})
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Recommend.Concurrency = 0

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveConfig(path, cfg); err == nil {
		t.Fatal("Expected validation error")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Invalid config should not be written")
	}
}

func TestSharedConfig(t *testing.T) {
	shared := NewSharedConfig(DefaultConfig())

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			cfg := shared.Get()
			cfg.Recommend.Accuracy = i%5 + 1
			shared.Update(cfg)
		}()

		go func() {
			defer wg.Done()
			_ = shared.Get()
		}()
	}

	wg.Wait()

	if acc := shared.Get().Recommend.Accuracy; acc < 1 || acc > 5 {
		t.Errorf("Accuracy out of range after concurrent updates: %d", acc)
	}
}
