// Package config provides configuration for linescout.
//
// Defaults can be overridden by a .linescout.yaml file in the working
// directory, which in turn is overridden by CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/linescout/linescout/internal/errors"
)

// ConfigFileName is the per-directory configuration file.
const ConfigFileName = ".linescout.yaml"

const (
	// DefaultChunkSize is the number of lines per batch handed to workers.
	DefaultChunkSize = 1000
	// DefaultWorkers runs the search on the sequential path.
	DefaultWorkers = 1
)

// Action selects what the CLI prints for a completed search.
type Action string

const (
	// ActionPrint prints every matching line.
	ActionPrint Action = "print"
	// ActionFileName prints the searched path when it contains a match.
	ActionFileName Action = "file"
	// ActionBoolean prints nothing; the exit status reports whether a
	// match exists (grep -q style).
	ActionBoolean Action = "boolean"
)

// ParseAction converts a user-supplied action string.
// Unknown values yield an initialization error before any search starts.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionPrint, ActionFileName, ActionBoolean:
		return Action(s), nil
	default:
		return "", errors.InitializationError(fmt.Sprintf("action %q is invalid (want print, file, or boolean)", s))
	}
}

// Config represents the complete linescout configuration.
type Config struct {
	// IgnoreCase enables case-insensitive matching.
	IgnoreCase bool `yaml:"ignore_case"`

	// Action is the output action: print, file, or boolean.
	Action string `yaml:"action"`

	// ChunkSize is the number of lines per batch (default: 1000).
	ChunkSize int `yaml:"chunk_size"`

	// Workers is the worker count; 0 or 1 selects the sequential path.
	Workers int `yaml:"workers"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		IgnoreCase: false,
		Action:     string(ActionPrint),
		ChunkSize:  DefaultChunkSize,
		Workers:    DefaultWorkers,
		LogLevel:   "warn",
	}
}

// Load reads a YAML configuration file and fills unset fields with
// defaults. A missing file is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.ReadError(fmt.Sprintf("cannot read config file %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.InitializationError(fmt.Sprintf("invalid config file %s: %v", path, err))
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadFromDir loads ConfigFileName from dir, falling back to defaults.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the named configuration file. Unlike Load, a missing
// file is an error: the caller named this file explicitly, so silently
// falling back to defaults would hide a typo.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InitializationError(fmt.Sprintf("config file %s does not exist", path))
		}
		return nil, errors.ReadError(fmt.Sprintf("cannot stat config file %s", path), err)
	}
	return Load(path)
}

// applyDefaults fills zero values left by a partial YAML file.
func (c *Config) applyDefaults() {
	if c.Action == "" {
		c.Action = string(ActionPrint)
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks the configuration and returns an initialization error
// describing the first problem found.
func (c *Config) Validate() error {
	if _, err := ParseAction(c.Action); err != nil {
		return err
	}
	if c.ChunkSize < 1 {
		return errors.InitializationError(fmt.Sprintf("chunk_size must be positive, got %d", c.ChunkSize))
	}
	if c.Workers < 0 {
		return errors.InitializationError(fmt.Sprintf("workers must not be negative, got %d", c.Workers))
	}
	return nil
}

// ClampWorkers caps the worker count at max. The engine treats the count
// as opaque; clamping to hardware parallelism is the CLI's job.
func (c *Config) ClampWorkers(max int) {
	if max > 0 && c.Workers > max {
		c.Workers = max
	}
}
