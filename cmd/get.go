package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/songpush/internal/models"
	"github.com/desertthunder/songpush/internal/shared"
	"github.com/desertthunder/songpush/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Get runs the pipeline for one song and prints progress as the queue is pumped.
func (r *Runner) Get(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: song name", shared.ErrMissingArgument)
	}

	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = r.config.Output.LocalDir
	}
	if outputDir == "" {
		outputDir = "."
	}
	deviceDir := cmd.String("device-dir")
	if deviceDir == "" {
		deviceDir = r.config.Output.DeviceDir
	}
	if deviceDir == "" {
		deviceDir = models.DefaultDeviceDir
	}

	req := models.NewRequest(query, outputDir, deviceDir)
	if err := req.Validate(); err != nil {
		return err
	}

	r.logger.Info("starting download", "query", req.Query, "output", req.OutputDir, "device", req.DeviceDir)

	result, err := r.pump(ctx, r.pipeline(), req)
	if err != nil {
		if tasks.IsDeviceError(err) {
			r.logger.Warn("the file was kept locally; check the device with 'songpush device status'")
		}
		return err
	}

	if cmd.Bool("open") {
		if err := shared.OpenPath(filepath.Dir(result.LocalPath)); err != nil {
			r.logger.Warn("failed to open output folder", "error", err)
		}
	}
	return nil
}

type runOutcome struct {
	result *tasks.Result
	err    error
}

// pump starts the worker and drains its queue on a ticker until the worker returns.
func (r *Runner) pump(ctx context.Context, worker *tasks.Pipeline, req models.Request) (*tasks.Result, error) {
	queue := tasks.NewQueue()
	done := make(chan runOutcome, 1)
	out := newConsole(r.output, r.output == os.Stdout && isTTY())

	go func() {
		result, err := worker.Run(ctx, req, queue)
		done <- runOutcome{result, err}
	}()

	ticker := time.NewTicker(r.config.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			drainTo(queue, out)
		case res := <-done:
			drainTo(queue, out)
			out.finish()
			return res.result, res.err
		}
	}
}

func drainTo(queue *tasks.Queue, out *console) {
	for {
		update, ok := queue.TryGet()
		if !ok {
			return
		}
		out.apply(update)
	}
}
