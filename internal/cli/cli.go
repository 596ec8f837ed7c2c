// Package cli parses command-line arguments into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/fsmrig/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("fsmrig", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
fsmrig - a hierarchical state machine simulator.

Usage:
  fsmrig [options] MACHINE_PATH

Arguments:
  MACHINE_PATH
    Path to a machine definition file (.hcl, .yaml, or .yml).

Options:
`)
		flagSet.PrintDefaults()
	}

	machineFlag := flagSet.String("machine", "", "Path to the machine definition file.")
	mFlag := flagSet.String("m", "", "Path to the machine definition file (shorthand).")
	scriptFlag := flagSet.String("script", "", "Driver script path. Empty reads commands from stdin.")
	formatFlag := flagSet.String("format", "auto", "Definition format. Options: 'auto', 'hcl', or 'yaml'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	haltFlag := flagSet.Bool("halt-on-action-error", false, "Treat the first action error as fatal to the simulation.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *machineFlag != "" {
		path = *machineFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Machine path determined.", "path", path)

	if path == "" {
		slog.Debug("No machine path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		MachinePath:       path,
		ScriptPath:        *scriptFlag,
		Format:            strings.ToLower(*formatFlag),
		LogFormat:         logFormat,
		LogLevel:          logLevel,
		HaltOnActionError: *haltFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
