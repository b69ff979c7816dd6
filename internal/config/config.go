package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type QuantifyConfig struct {
	SampleSize            int     `toml:"sample_size"`
	Confidence            float64 `toml:"confidence"`
	MaxParents            int     `toml:"max_parents"`
	Workers               int     `toml:"workers"`
	SubstituteZeroWeights bool    `toml:"substitute_zero_weights"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Memgraph MemgraphConfig `toml:"memgraph"`
	Quantify QuantifyConfig `toml:"quantify"`
	Server   ServerConfig   `toml:"server"`
}

// Default returns the configuration used when no config file exists.
// Quantify fields left zero fall back to the engine defaults.
func Default() *Config {
	return &Config{
		Memgraph: MemgraphConfig{URI: "bolt://localhost:7687"},
		Server:   ServerConfig{Port: "8080"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}
