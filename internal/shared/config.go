package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every field can be overridden from the environment (SHELF_ prefix), which is applied after the file is parsed.
type Config struct {
	API      APIConfig      `toml:"api" envPrefix:"API_"`
	Database DatabaseConfig `toml:"database" envPrefix:"DB_"`
	Session  SessionConfig  `toml:"session" envPrefix:"SESSION_"`
	Listing  ListingConfig  `toml:"listing" envPrefix:"LISTING_"`
	UI       UIConfig       `toml:"ui" envPrefix:"UI_"`
}

// APIConfig contains settings for the library backend.
type APIConfig struct {
	BaseURL        string  `toml:"base_url" env:"URL"`
	TimeoutSeconds int     `toml:"timeout_seconds" env:"TIMEOUT_SECONDS"`
	RateLimit      float64 `toml:"rate_limit" env:"RATE_LIMIT"` // requests per second, 0 disables pacing
}

// Timeout returns the request timeout as a [time.Duration].
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains local database settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// SessionConfig names the routes used by the session monitor and route guards.
type SessionConfig struct {
	LandingPath string   `toml:"landing_path" env:"LANDING_PATH"`
	LoginPath   string   `toml:"login_path" env:"LOGIN_PATH"`
	HomePath    string   `toml:"home_path" env:"HOME_PATH"`
	PublicPaths []string `toml:"public_paths" env:"PUBLIC_PATHS" envSeparator:","`
}

// ListingConfig contains list view tuning.
type ListingConfig struct {
	DebounceMS      int `toml:"debounce_ms" env:"DEBOUNCE_MS"`
	PageSize        int `toml:"page_size" env:"PAGE_SIZE"`
	ExplorePageSize int `toml:"explore_page_size" env:"EXPLORE_PAGE_SIZE"`
}

// Debounce returns the search quiet period.
func (c ListingConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// UIConfig contains TUI settings.
type UIConfig struct {
	LogFile string `toml:"log_file" env:"LOG_FILE"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Fields missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv loads envFile (if it exists) into the process environment and overlays SHELF_* variables onto c.
func ApplyEnv(c *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, envFile, err)
		}
	}

	if err := env.ParseWithOptions(c, env.Options{Prefix: "SHELF_"}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Resolve loads the config at path when present, falling back to defaults, then applies environment overrides.
func Resolve(path, envFile string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := ApplyEnv(config, envFile); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes c to path as TOML.
func SaveConfig(path string, c *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
