// Package cli parses capgen's command line into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/componentry/capgen/internal/app"
)

// ExitError is an error carrying a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating the program should exit cleanly (help shown), or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("capgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
capgen - deterministic capability/badge allocation for component compositions.

Usage:
  capgen [options] [ADL_PATH]

Arguments:
  ADL_PATH
    Path to a single .hcl composition file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	adlFlag := flagSet.String("adl", "", "Path to the composition file or directory.")
	archFlag := flagSet.String("arch", "aarch64", "Target architecture tag (aarch32, aarch64, ia32, x86_64, riscv32, riscv64).")
	overlayFlag := flagSet.String("settings", "", "Optional YAML settings overlay merged over the declared settings.")
	outFlag := flagSet.String("out", "", "Report output file. Empty writes to stdout.")
	stackFlag := flagSet.Int64("default-stack-size", 16384, "Default per-thread stack size in bytes.")
	faultFlag := flagSet.Bool("debug-fault-handlers", false, "Add a fault handler thread per instance.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *adlFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
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
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg, err := app.NewConfig(app.Config{
		ADLPath:            path,
		OverlayPath:        *overlayFlag,
		Arch:               strings.ToLower(*archFlag),
		OutPath:            *outFlag,
		LogFormat:          logFormat,
		LogLevel:           logLevel,
		DefaultStackSize:   *stackFlag,
		DebugFaultHandlers: *faultFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, false, nil
}
