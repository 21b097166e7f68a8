package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

// ShowAll returns all config key/value pairs from the current config.
func ShowAll(cfg Config) []KeyInfo {
	var result []KeyInfo
	for _, s := range specs {
		result = append(result, KeyInfo{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprintf("%v", s.extract(cfg)),
		})
	}
	return result
}

// SetKey validates value against the key's type and writes it to b.
func SetKey(b ConfigBackend, key, value string) error {
	s, ok := lookupSpec(key)
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}
	switch s.typ {
	case kInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", key, err)
		}
		return b.SetInt(key, i)
	case kDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration value for %s: %w", key, err)
		}
	}
	return b.SetString(key, value)
}

// ValidKeys returns the list of config key names.
func ValidKeys() []string {
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		keys = append(keys, s.key)
	}
	return keys
}

// Preferences exposes a backend as plain string key/value storage for the
// clip dialog.
type Preferences struct {
	backend ConfigBackend
}

// NewPreferences wraps b.
func NewPreferences(b ConfigBackend) *Preferences {
	return &Preferences{backend: b}
}

// Get returns the value for key. A stored value wins over the
// WEBCLIPPER_* variable for a known key, which only fills in
// when nothing is stored. Read errors count as missing.
func (p *Preferences) Get(key string) (string, bool) {
	if v, ok, err := p.backend.GetString(key); err == nil && ok && v != "" {
		return v, true
	}
	if s, ok := lookupSpec(key); ok {
		if v := os.Getenv(s.env); v != "" {
			return v, true
		}
	}
	return "", false
}

// Set stores value under key.
func (p *Preferences) Set(key, value string) error {
	if err := p.backend.SetString(key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
