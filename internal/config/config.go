package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up in the project root.
const FileName = "wasmkit.yaml"

// Config captures tool policy and per-tool arguments for a project.
type Config struct {
	Version      int                `yaml:"version"`
	Install      *bool              `yaml:"install,omitempty"`
	CacheDir     string             `yaml:"cache_dir,omitempty"`
	LogLevel     string             `yaml:"log_level"`
	OutDir       string             `yaml:"out_dir"`
	Optimizer    OptimizerConfig    `yaml:"optimizer"`
	Disassembler DisassemblerConfig `yaml:"disassembler"`
	Generator    GeneratorConfig    `yaml:"generator"`
}

// OptimizerConfig controls the wasm-opt pass.
type OptimizerConfig struct {
	Enabled *bool    `yaml:"enabled,omitempty"`
	Args    []string `yaml:"args"`
}

// DisassemblerConfig holds extra wasm-dis arguments.
type DisassemblerConfig struct {
	Args []string `yaml:"args"`
}

// GeneratorConfig holds the default project template.
type GeneratorConfig struct {
	Template string `yaml:"template"`
}

// InstallPermitted reports whether missing tools may be downloaded.
func (c Config) InstallPermitted() bool {
	if c.Install == nil {
		return true
	}
	return *c.Install
}

// OptimizerEnabled reports whether wasm-opt should run.
func (c Config) OptimizerEnabled() bool {
	if c.Optimizer.Enabled == nil {
		return true
	}
	return *c.Optimizer.Enabled
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:  1,
		Install:  boolPtr(true),
		LogLevel: "info",
		OutDir:   "pkg",
		Optimizer: OptimizerConfig{
			Enabled: boolPtr(true),
			Args:    []string{"-O"},
		},
		Generator: GeneratorConfig{
			Template: "https://github.com/rustwasm/wasm-pack-template",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the YAML left empty. An explicitly empty args
// list is kept as-is.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Install == nil {
		c.Install = boolPtr(true)
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.OutDir == "" {
		c.OutDir = defaults.OutDir
	}
	if c.Optimizer.Enabled == nil {
		c.Optimizer.Enabled = boolPtr(true)
	}
	if c.Optimizer.Args == nil {
		c.Optimizer.Args = defaults.Optimizer.Args
	}
	if c.Generator.Template == "" {
		c.Generator.Template = defaults.Generator.Template
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}
