// Package config loads lsport settings from a JSON or plist file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"howett.net/plist"
)

const (
	configDir  = "lsport"
	configFile = "config.json"
)

// Config holds every setting that can also be given on the command line.
// Zero values mean "use the default".
type Config struct {
	Format       string   `json:"format,omitempty" plist:"format,omitempty"`
	Output       string   `json:"output,omitempty" plist:"output,omitempty"`
	Sort         string   `json:"sort,omitempty" plist:"sort,omitempty"`
	Method       string   `json:"method,omitempty" plist:"method,omitempty"`
	Snapshot     string   `json:"snapshot,omitempty" plist:"snapshot,omitempty"`
	ProcRoot     string   `json:"proc_root,omitempty" plist:"proc_root,omitempty"`
	Interval     Duration `json:"interval,omitempty" plist:"interval,omitempty"`
	Favorites    []int    `json:"favorites" plist:"favorites"`
	ServicesFile string   `json:"services_file,omitempty" plist:"services_file,omitempty"`
	LogLevel     string   `json:"log_level,omitempty" plist:"log_level,omitempty"`
}

// Duration is a time.Duration stored as text ("2s", "500ms").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

const DefaultInterval = 2 * time.Second

func Defaults() *Config {
	return &Config{
		Sort:      "none",
		Method:    "local",
		Interval:  Duration(DefaultInterval),
		Favorites: []int{},
		LogLevel:  "warn",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/lsport/config.json, falling back to
// ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDir, configFile)
}

// Load reads path over Defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isPlist(path) {
		_, err = plist.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Favorites == nil {
		cfg.Favorites = []int{}
	}
	return cfg, nil
}

// Save writes cfg to path in the format its extension selects.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isPlist(path) {
		data, err = plist.MarshalIndent(cfg, plist.XMLFormat, "  ")
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isPlist(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".plist")
}

// IsFavorite checks if a port is in favorites
func (c *Config) IsFavorite(port int) bool {
	for _, p := range c.Favorites {
		if p == port {
			return true
		}
	}
	return false
}

// ToggleFavorite adds port to favorites or removes it, and reports whether
// it is a favorite afterwards.
func (c *Config) ToggleFavorite(port int) bool {
	if !c.IsFavorite(port) {
		c.Favorites = append(c.Favorites, port)
		return true
	}
	filtered := []int{}
	for _, p := range c.Favorites {
		if p != port {
			filtered = append(filtered, p)
		}
	}
	c.Favorites = filtered
	return false
}
