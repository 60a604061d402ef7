// ABOUTME: Configuration management for the recommendation, library and logging settings
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults and validation

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Duration is a time.Duration stored as a string ("5s") in TOML
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = v

	return nil
}

// RecommendConfig holds the [recommend] section
type RecommendConfig struct {
	Accuracy          int      `toml:"accuracy" validate:"min=1,max=5"`
	ProviderURL       string   `toml:"provider_url" validate:"omitempty,url"`
	ProviderTimeout   Duration `toml:"provider_timeout"`
	Concurrency       int      `toml:"concurrency" validate:"min=1,max=32"`
	RequestsPerSecond float64  `toml:"requests_per_second" validate:"gte=0"`
	BreakerFailures   uint32   `toml:"breaker_failures" validate:"lte=100"`
	BreakerCooldown   Duration `toml:"breaker_cooldown"`
	ResultsPerSeed    int      `toml:"results_per_seed" validate:"gte=0,lte=100"`
}

// LibraryConfig holds the [library] section
type LibraryConfig struct {
	ExpandGenreParents bool `toml:"expand_genre_parents"`
	Workers            int  `toml:"workers" validate:"gte=0,lte=256"` // 0 uses one worker per CPU
}

// LogConfig holds the [log] section
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// Config is the complete application configuration
type Config struct {
	Recommend RecommendConfig `toml:"recommend"`
	Library   LibraryConfig   `toml:"library"`
	Log       LogConfig       `toml:"log"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// Validate checks field ranges and reports every violation in one error
func (c Config) Validate() error {
	var msgs []string

	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}

		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fieldRule(fe), fe.Value()))
		}
	}

	if c.Recommend.ProviderTimeout.Duration < 0 {
		msgs = append(msgs, "Config.Recommend.ProviderTimeout: must not be negative")
	}

	if c.Recommend.BreakerCooldown.Duration < 0 {
		msgs = append(msgs, "Config.Recommend.BreakerCooldown: must not be negative")
	}

	if len(msgs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	return nil
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}

	return fe.Tag() + "=" + fe.Param()
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/playlist-explorer/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./playlist-explorer.toml"); err == nil {
		return "./playlist-explorer.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./playlist-explorer.toml"
	}

	return filepath.Join(home, ".config", "playlist-explorer", "config.toml")
}

// LoadConfig loads configuration from a TOML file.
// Keys missing from the file keep their default values. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return cfg, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Round to the precision the UI edits at
	cfg.Recommend.RequestsPerSecond = float64(int(cfg.Recommend.RequestsPerSecond*100+0.5)) / 100

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Recommend: RecommendConfig{
			Accuracy:          3,
			ProviderURL:       "http://localhost:8080",
			ProviderTimeout:   Duration{10 * time.Second},
			Concurrency:       1,
			RequestsPerSecond: 5,
			BreakerFailures:   5,
			BreakerCooldown:   Duration{30 * time.Second},
			ResultsPerSeed:    20,
		},
		Library: LibraryConfig{
			ExpandGenreParents: false,
			Workers:            0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SharedConfig is a Config guarded for concurrent readers and a single writer
type SharedConfig struct {
	mu  sync.RWMutex
	cfg Config
}

// NewSharedConfig wraps cfg
func NewSharedConfig(cfg Config) *SharedConfig {
	return &SharedConfig{cfg: cfg}
}

// Get returns a copy of the current config
func (s *SharedConfig) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cfg
}

// Update replaces the current config
func (s *SharedConfig) Update(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
}
