// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	DefaultAuthor   = "Unknown"
	DefaultLogLevel = "warn"
)

// Config holds per-user settings for the vcs command line.
type Config struct {
	Author   string `json:"author"`
	LogLevel string `json:"log_level"` // debug, info, warn, error
	Color    *bool  `json:"color,omitempty"`
}

func Default() *Config {
	return &Config{
		Author:   DefaultAuthor,
		LogLevel: DefaultLogLevel,
	}
}

// UseColor reports whether coloured output is enabled (default true).
func (c *Config) UseColor() bool {
	return c.Color == nil || *c.Color
}

// DefaultPath returns $VCS_CONFIG if set, else $XDG_CONFIG_HOME/vcs/config.json.
func DefaultPath() string {
	if p := os.Getenv("VCS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "vcs", "config.json")
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config.applyEnv(), nil
		}
		return nil, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if config.Author == "" {
		config.Author = DefaultAuthor
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}

	return config.applyEnv(), nil
}

func LoadDefault() (*Config, error) {
	return Load(DefaultPath())
}

func (c *Config) applyEnv() *Config {
	if author := os.Getenv("VCS_AUTHOR"); author != "" {
		c.Author = author
	}
	return c
}
