package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songpush/internal/shared"
	"github.com/desertthunder/songpush/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive download form.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	opts := ui.Options{Worker: r.pipeline(), Logger: r.logger}
	if r.downloads != nil {
		opts.History = r.downloads
	}

	model := ui.NewModel(ctx, r.config, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
