// Package config loads the lab configuration file. Values mirror the
// sidebar controls of the task: payoff per safe box, total boxes, and the
// cosmetic grid width, plus where the API listens and where the session
// archive lives.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"bret/internal/trial"
)

// Config holds all bret configuration.
type Config struct {
	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`

	// Database is the session archive.
	Database DatabaseConfig `yaml:"database"`

	// Trial holds the default task parameters for new games.
	Trial TrialSettings `yaml:"trial"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig configures the sqlite session archive.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TrialSettings are the sidebar defaults, clamped into task range on load.
type TrialSettings struct {
	PayoffPerBox float64 `yaml:"payoff_per_box"`
	BoxCount     int     `yaml:"box_count"`
	GridColumns  int     `yaml:"grid_columns"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{ListenAddr: "127.0.0.1:8747"},
		Database: DatabaseConfig{Path: "bret.db"},
		Trial: TrialSettings{
			PayoffPerBox: 10,
			BoxCount:     trial.DefaultBoxCount,
			GridColumns:  trial.DefaultGridColumns,
		},
	}
}

// Load reads the config file at path, falling back to defaults when path
// is empty or the file does not exist. Out-of-range trial settings are
// clamped to the control bounds, the way the sidebar inputs clamp typed
// values; the engine still rejects anything structurally invalid.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	if c.Trial.PayoffPerBox < 1 {
		c.Trial.PayoffPerBox = 1
	}
	c.Trial.BoxCount = clampInt(c.Trial.BoxCount, trial.MinBoxCount, trial.MaxBoxCount)
	c.Trial.GridColumns = clampInt(c.Trial.GridColumns, trial.MinGridColumns, trial.MaxGridColumns)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TrialConfig converts the settings into the engine's config type.
func (c Config) TrialConfig() trial.Config {
	return trial.Config{
		BoxCount:     c.Trial.BoxCount,
		GridColumns:  c.Trial.GridColumns,
		PayoffPerBox: decimal.NewFromFloat(c.Trial.PayoffPerBox),
	}
}
