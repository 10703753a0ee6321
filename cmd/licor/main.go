package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/licor/internal/cli"
	"github.com/JonMunkholm/licor/internal/config"
	"github.com/JonMunkholm/licor/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	// Use a minimal logger until the configured one is set up.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// run loads configuration and hands the arguments to the CLI.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	// A .env file is optional; values already in the environment win.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return &cli.ExitError{Code: cli.ExitUsage, Message: err.Error()}
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)
	slog.Debug("configuration loaded", "config", cfg.String())

	app := &cli.App{Stdout: stdout, Stderr: stderr, Config: cfg}
	return app.Run(ctx, args)
}
