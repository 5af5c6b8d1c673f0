package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Run      RunConfig      `toml:"run"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Profile  ProfileConfig  `toml:"profile"`
	Logging  LoggingConfig  `toml:"logging"`
}

type EngineConfig struct {
	InitialCapacity int `toml:"initial_capacity"`
	MaxCapacity     int `toml:"max_capacity"` // 0 = library default
}

type RunConfig struct {
	Entities int           `toml:"entities"`
	Duration time.Duration `toml:"duration"`
	TickRate time.Duration `toml:"tick_rate"` // 0 = as fast as possible
	Scene    string        `toml:"scene"`
	Scripts  []string      `toml:"scripts"`
}

type SnapshotConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu" or "mem"
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	switch {
	case c.Engine.InitialCapacity < 0:
		return fmt.Errorf("engine.initial_capacity must not be negative, got %d", c.Engine.InitialCapacity)
	case c.Engine.MaxCapacity < 0:
		return fmt.Errorf("engine.max_capacity must not be negative, got %d", c.Engine.MaxCapacity)
	case c.Run.Entities < 0:
		return fmt.Errorf("run.entities must not be negative, got %d", c.Run.Entities)
	case c.Run.Duration <= 0:
		return fmt.Errorf("run.duration must be positive, got %s", c.Run.Duration)
	case c.Run.TickRate < 0:
		return fmt.Errorf("run.tick_rate must not be negative, got %s", c.Run.TickRate)
	}

	switch c.Profile.Mode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profile.mode must be cpu or mem, got %q", c.Profile.Mode)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			InitialCapacity: 100,
		},
		Run: RunConfig{
			Entities: 10000,
			Duration: 10 * time.Second,
		},
		Snapshot: SnapshotConfig{
			Path: "engine-stress.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
