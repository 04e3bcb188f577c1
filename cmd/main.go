package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/songpush/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	initColors()
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		runner.Close()
		if errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrMissingArgument) {
			logger.Error(err)
			os.Exit(2)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "songpush",
		Usage:   "Download a song as audio and push it to an Android device",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Action:   r.TUI,
		Commands: r.register(),
	}
}
