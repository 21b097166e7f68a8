// Package config loads webclipper settings.
//
// Values come from three layers, later ones winning:
//
//	built-in defaults → config.yaml ($XDG_CONFIG_HOME/webclipper) → WEBCLIPPER_* env vars
//
// The same file also holds the remembered clip destination, read and written
// through Preferences.
package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Fetch   FetchConfig
	Storage StorageConfig
	Log     LogConfig
	Clipper ClipperConfig
}

type FetchConfig struct {
	Timeout  time.Duration
	MaxBytes int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level  string
	Format string
}

type ClipperConfig struct {
	DefaultDestination string
}

func defaults() Config {
	return Config{
		Fetch: FetchConfig{
			Timeout:  30 * time.Second,
			MaxBytes: 5 << 20,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the default config file and the environment.
func Load() (Config, *FileBackend, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (Config, *FileBackend, error) {
	b := NewFileBackend(path)
	cfg, err := loadWith(b)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, b, nil
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges that the key table cannot express.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.Fetch,
		validation.Field(&c.Fetch.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Fetch.MaxBytes, validation.Required, validation.Min(1024)),
	); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("trace", "debug", "info", "warn", "warning", "error")),
		validation.Field(&c.Log.Format, validation.In("text", "json")),
	); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return validation.Validate(c.Storage.DataDir, validation.Required.Error("storage.data_dir must be set"))
}
