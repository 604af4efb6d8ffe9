package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/blockgridgo/internal/app"
	"github.com/specialistvlad/blockgridgo/internal/cli"
	"github.com/specialistvlad/blockgridgo/internal/hcl"
	"github.com/specialistvlad/blockgridgo/internal/yamlconfig"
)

// main is the entrypoint for the blockgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	blockgrid, err := app.NewApp(outW, appConfig, hcl.NewLoader(), yamlconfig.NewLoader())
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	return blockgrid.Run(ctx)
}
