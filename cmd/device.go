package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/songpush/internal/shared"
	"github.com/urfave/cli/v3"
)

// DeviceStatus lists attached devices and reports which one a transfer would use.
func (r *Runner) DeviceStatus(ctx context.Context, cmd *cli.Command) error {
	adb := r.transferer()

	devices, err := adb.Devices(ctx)
	if err != nil {
		return err
	}

	selected, probeErr := adb.Probe(ctx)
	if probeErr != nil && !errors.Is(probeErr, shared.ErrDeviceUnavailable) {
		return probeErr
	}

	if cmd.Bool("json") {
		out := map[string]any{"devices": devices, "ready": probeErr == nil}
		if probeErr == nil {
			out["selected"] = selected.Serial
		} else {
			out["error"] = probeErr.Error()
		}
		return r.writeJSON(out, true)
	}

	if len(devices) == 0 {
		r.writePlain("No devices attached\n")
	}
	for _, d := range devices {
		marker := " "
		if probeErr == nil && d.Serial == selected.Serial {
			marker = "*"
		}
		r.writePlain("%s %-24s %s\n", marker, d.Serial, d.State)
	}

	if probeErr != nil {
		return r.writePlain("\n%s %v\n", colorError.Sprint("✗"), probeErr)
	}
	return r.writePlain("\n%s Ready: %s\n", colorSuccess.Sprint("✓"), selected.Serial)
}

// DevicePush copies a local file to the device and triggers a media rescan.
func (r *Runner) DevicePush(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")
	if file == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, file)
	}

	deviceDir := cmd.String("device-dir")
	if deviceDir == "" {
		deviceDir = r.config.Output.DeviceDir
	}

	r.logger.Info("pushing file", "file", file, "device_dir", deviceDir)

	devicePath, err := r.transferer().Transfer(ctx, file, deviceDir)
	if err != nil {
		return err
	}
	return r.writePlain("%s Pushed to %s\n", colorSuccess.Sprint("✓"), devicePath)
}
