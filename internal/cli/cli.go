package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/blockgridgo/internal/app"
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

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("blockgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
BlockGrid - Build block programs that steer an agent across a grid.

Usage:
  blockgrid [options] SCRIPT_PATH

Arguments:
  SCRIPT_PATH
    Path to a .hcl, .yaml or .yml script, or a directory of them.

Options:
`)
		flagSet.PrintDefaults()
	}

	scriptFlag := flagSet.String("script", "", "Path to the script file or directory.")
	sFlag := flagSet.String("s", "", "Path to the script file or directory (shorthand).")
	seedFlag := flagSet.String("seed", "", "Generate the puzzle from this seed instead of the script's puzzle.")
	delayFlag := flagSet.String("step-delay", "", "Pause between program steps, e.g. '0s' or '250ms'. Empty keeps the script value.")
	privilegedFlag := flagSet.Bool("privileged", false, "Play as a privileged user: any mode, unlimited attempts.")
	traceFlag := flagSet.Bool("trace", false, "Draw the board after every step, not only at the end of a run.")
	colorFlag := flagSet.Bool("color", true, "Colorize the board output.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	relayURLFlag := flagSet.String("relay-url", "", "socket.io server to relay game events to, e.g. 'http://localhost:3000/socket.io/'.")
	relayNSFlag := flagSet.String("relay-namespace", "/", "socket.io namespace for the event relay.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *scriptFlag != "" {
		path = *scriptFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Script path determined.", "path", path)

	if path == "" {
		slog.Debug("No script path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	var seed *uint64
	if *seedFlag != "" {
		v, err := strconv.ParseUint(*seedFlag, 10, 64)
		if err != nil {
			return nil, false, usageError("invalid seed %q: must be a non-negative integer", *seedFlag)
		}
		seed = &v
	}

	var delay *time.Duration
	if *delayFlag != "" {
		d, err := time.ParseDuration(*delayFlag)
		if err != nil {
			return nil, false, usageError("invalid step-delay %q: %v", *delayFlag, err)
		}
		delay = &d
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ScriptPath:      path,
		Seed:            seed,
		StepDelay:       delay,
		Privileged:      *privilegedFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		RelayURL:        *relayURLFlag,
		RelayNamespace:  *relayNSFlag,
		Color:           *colorFlag,
		Trace:           *traceFlag,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
