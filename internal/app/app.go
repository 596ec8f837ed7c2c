package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vk/fsmrig/internal/config"
	"github.com/vk/fsmrig/internal/hcldef"
	"github.com/vk/fsmrig/internal/yamldef"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader
}

// NewApp constructs the application with its own isolated logger and the
// definition loader matching the configured (or inferred) format.
func NewApp(outW, errW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	loader, err := loaderFor(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		config: cfg,
		loader: loader,
	}, nil
}

// loaderFor picks the definition loader from the explicit format, or from
// the file extension when the format is "auto".
func loaderFor(cfg *Config) (config.Loader, error) {
	format := cfg.Format
	if format == "auto" || format == "" {
		switch strings.ToLower(filepath.Ext(cfg.MachinePath)) {
		case ".hcl":
			format = "hcl"
		case ".yaml", ".yml":
			format = "yaml"
		default:
			return nil, fmt.Errorf("cannot infer definition format from %q; use -format", cfg.MachinePath)
		}
	}

	switch format {
	case "hcl":
		return hcldef.NewLoader(), nil
	case "yaml":
		return yamldef.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unknown definition format %q", format)
	}
}
