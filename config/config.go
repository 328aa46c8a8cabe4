// Package config handles configuration loading from TOML files and
// environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Engine     EngineConfig     `toml:"engine"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen        string `toml:"listen"`
	MoveTimeoutMs int    `toml:"move_timeout_ms"`
}

// AppearanceConfig holds the customization reported on the index endpoint.
type AppearanceConfig struct {
	Color string `toml:"color"`
	Head  string `toml:"head"`
	Tail  string `toml:"tail"`
}

// EngineConfig holds decision engine tuning.
type EngineConfig struct {
	NearDepth     int `toml:"near_depth"`
	ExtendedDepth int `toml:"extended_depth"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:        ":8080",
			MoveTimeoutMs: 500,
		},
		Appearance: AppearanceConfig{
			Color: "#2e8b57",
			Head:  "smart-caterpillar",
			Tail:  "round-bum",
		},
		Engine: EngineConfig{
			NearDepth:     3,
			ExtendedDepth: 7,
		},
	}
}

// Load reads configuration from a TOML file and applies environment
// variable overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERPENT_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}

	if v := os.Getenv("SERPENT_MOVE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MoveTimeoutMs = n
		}
	}

	if v := os.Getenv("SERPENT_COLOR"); v != "" {
		cfg.Appearance.Color = v
	}

	if v := os.Getenv("SERPENT_NEAR_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.NearDepth = n
		}
	}

	if v := os.Getenv("SERPENT_EXTENDED_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.ExtendedDepth = n
		}
	}
}
