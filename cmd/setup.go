package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/songpush/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func okMark() string   { return colorSuccess.Sprint("✓") }
func warnMark() string { return colorWarning.Sprint("✗") }

// Setup writes config.toml from the embedded template when missing, migrates the database and checks
// that yt-dlp and adb can be run.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := config.ApplyEnv(); err != nil {
			r.logger.Warn("failed to apply environment", "error", err)
		}
		r.Configure(config)
		r.writePlain("%s Config written to %s\n", okMark(), configPath)
	} else {
		r.writePlain("%s Using config %s\n", okMark(), configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if _, err := r.history(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	version, err := shared.CurrentVersion(r.db)
	if err != nil {
		return err
	}
	r.writePlain("%s Database %s at schema version %d\n", okMark(), r.config.Database.Path, version)

	for _, line := range r.checkTools(ctx) {
		r.writePlain("%s\n", line)
	}
	return nil
}

// checkTools probes yt-dlp and adb concurrently. A missing tool is reported, not returned.
func (r *Runner) checkTools(ctx context.Context) []string {
	ytdlp, adb := r.downloader(), r.transferer()
	lines := make([]string, 2)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := ytdlp.Version(gctx)
		if err != nil {
			r.logger.Warn("yt-dlp check failed", "error", err)
			lines[0] = fmt.Sprintf("%s yt-dlp not usable: %v", warnMark(), err)
			return nil
		}
		lines[0] = fmt.Sprintf("%s yt-dlp %s", okMark(), v)
		return nil
	})
	g.Go(func() error {
		if _, err := adb.Devices(gctx); err != nil {
			r.logger.Warn("adb check failed", "error", err)
			lines[1] = fmt.Sprintf("%s adb not usable: %v", warnMark(), err)
			return nil
		}
		lines[1] = fmt.Sprintf("%s adb available", okMark())
		return nil
	})
	_ = g.Wait()

	return lines
}
