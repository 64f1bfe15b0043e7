// Package config holds the engine settings file. Everything has a
// default; a missing file is not an error so the demo runs without
// any setup.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Levels     LevelsConfig     `toml:"levels"`
	Transition TransitionConfig `toml:"transition"`
	Culling    CullingConfig    `toml:"culling"`
	Logging    LoggingConfig    `toml:"logging"`
}

type LevelsConfig struct {
	// Dir overrides the embedded level documents with a directory on
	// disk. Empty means use the embedded set.
	Dir string `toml:"dir"`
	// Watch enables hot reload of the active level when its document
	// changes. Only meaningful with Dir set.
	Watch bool `toml:"watch"`
	// Start is the level loaded at boot.
	Start string `toml:"start"`
}

type TransitionConfig struct {
	FadeDuration time.Duration `toml:"fade_duration"`
	InitTimeout  time.Duration `toml:"init_timeout"`
	HistoryLimit int           `toml:"history_limit"`
}

type CullingConfig struct {
	RenderDistance float32 `toml:"render_distance"`
	FadeDistance   float32 `toml:"fade_distance"`
	UnloadDistance float32 `toml:"unload_distance"`
	ScanInterval   int     `toml:"scan_interval"` // frames between scans
	FadeRate       float64 `toml:"fade_rate"`     // per second
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the settings at path on top of the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Levels: LevelsConfig{
			Start: "observatory",
		},
		Transition: TransitionConfig{
			FadeDuration: 500 * time.Millisecond,
			InitTimeout:  30 * time.Second,
			HistoryLimit: 16,
		},
		Culling: CullingConfig{
			RenderDistance: 150,
			FadeDistance:   180,
			UnloadDistance: 260,
			ScanInterval:   10,
			FadeRate:       5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
