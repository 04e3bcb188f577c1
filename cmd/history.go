package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songpush/internal/formatter"
	"github.com/desertthunder/songpush/internal/models"
	"github.com/desertthunder/songpush/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints previous downloads in the requested format, or writes them to --output.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.history()
	if err != nil {
		return err
	}

	status := cmd.String("status")
	if status != "" && !models.DownloadStatus(status).Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}

	downloads, err := repo.List(map[string]any{
		"status": status,
		"query":  cmd.String("query"),
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(downloads, format, path); err != nil {
			return err
		}
		r.logger.Info("history exported", "path", path, "count", len(downloads))
		return r.writePlain("%s Exported %d downloads to %s\n", colorSuccess.Sprint("✓"), len(downloads), path)
	}

	data, err := formatter.Export(downloads, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if format == formatter.FormatText || format == "txt" {
		completed, failed, err := repo.Counts()
		if err != nil {
			return err
		}
		r.writePlain("\n%d completed, %d failed\n", completed, failed)
	}
	return nil
}

// HistoryRemove soft-deletes one download by id.
func (r *Runner) HistoryRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	repo, err := r.history()
	if err != nil {
		return err
	}
	if err := repo.Delete(id); err != nil {
		return err
	}
	return r.writePlain("%s Removed %s\n", colorSuccess.Sprint("✓"), id)
}
