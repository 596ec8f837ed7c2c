package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	MachinePath string // definition file (.hcl, .yaml, .yml)
	ScriptPath  string // driver script; empty means read commands from stdin

	Format            string // "auto", "hcl", or "yaml"
	LogFormat         string
	LogLevel          string
	HaltOnActionError bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.MachinePath == "" {
		return nil, errors.New("MachinePath is a required configuration field and cannot be empty")
	}
	switch cfg.Format {
	case "", "auto", "hcl", "yaml":
	default:
		return nil, fmt.Errorf("unknown definition format %q", cfg.Format)
	}
	if cfg.Format == "" {
		cfg.Format = "auto"
	}
	return &cfg, nil
}
