package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agenthands/causet/internal/config"
	"github.com/agenthands/causet/internal/core"
	"github.com/agenthands/causet/internal/core/export"
	"github.com/agenthands/causet/internal/driver"
)

func loadConfig() *config.Config {
	path := rootFlags.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.toml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	return cfg
}

// openModel returns the working model: either the YAML file named by
// --file loaded purely in memory, or the store-backed graph. The
// returned closer disconnects the store when one was opened.
func openModel(ctx context.Context) (*core.Causet, func(), error) {
	if rootFlags.modelFile != "" {
		f, err := os.Open(rootFlags.modelFile)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()

		mf, err := export.ReadModelYAML(f)
		if err != nil {
			return nil, nil, err
		}

		c := core.New(nil)
		if err := export.Apply(ctx, c, mf); err != nil {
			return nil, nil, fmt.Errorf("invalid model file %s: %w", rootFlags.modelFile, err)
		}
		return c, func() {}, nil
	}

	cfg := loadConfig()
	d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Memgraph at %s: %w", cfg.Memgraph.URI, err)
	}

	c := core.New(d)
	if err := c.Load(ctx); err != nil {
		d.Close(ctx)
		return nil, nil, err
	}
	return c, func() { d.Close(context.Background()) }, nil
}
