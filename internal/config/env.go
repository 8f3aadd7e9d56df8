package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// envOverrides lists the environment variables that take precedence over the
// config file.
type envOverrides struct {
	CacheDir  string `env:"WASMKIT_CACHE_DIR"`
	NoInstall bool   `env:"WASMKIT_NO_INSTALL"`
	LogLevel  string `env:"WASMKIT_LOG_LEVEL"`
}

// ApplyEnv overlays WASMKIT_* environment variables onto c.
func (c *Config) ApplyEnv(ctx context.Context) error {
	var env envOverrides
	if err := envconfig.Process(ctx, &env); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	if env.CacheDir != "" {
		c.CacheDir = env.CacheDir
	}
	if env.NoInstall {
		c.Install = boolPtr(false)
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	return nil
}
