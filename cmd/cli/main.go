package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/radbridge/radbridge/internal/app"
	"github.com/radbridge/radbridge/internal/cli"
)

// main is the entrypoint for the radbridge command.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	bridgeApp, err := app.NewApp(outW, os.Stderr, appConfig)
	if err != nil {
		return err
	}
	return bridgeApp.Run(context.Background(), appConfig)
}
