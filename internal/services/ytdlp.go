// yt-dlp download and search client
package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songpush/internal/shared"
)

// YtDlp runs the yt-dlp binary to search for and download audio.
type YtDlp struct {
	// BinaryPath is the path to the yt-dlp executable. Defaults to "yt-dlp".
	BinaryPath    string
	AudioFormat   string
	AudioQuality  string
	MaxNameLength int
	UniqueNames   bool

	logger *log.Logger
	now    func() time.Time
}

// NewYtDlp creates a client from the tools and output sections of cfg.
func NewYtDlp(cfg *shared.Config, logger *log.Logger) *YtDlp {
	return &YtDlp{
		BinaryPath:    cfg.Tools.YtDlpPath,
		AudioFormat:   cfg.Output.AudioFormat,
		AudioQuality:  cfg.Output.AudioQuality,
		MaxNameLength: cfg.Output.MaxNameLength,
		UniqueNames:   cfg.Output.UniqueNames,
		logger:        logger,
		now:           time.Now,
	}
}

func (y *YtDlp) bin() string {
	if y.BinaryPath == "" {
		return "yt-dlp"
	}
	return y.BinaryPath
}

func (y *YtDlp) downloadArgs(query, dir string) []string {
	format := y.AudioFormat
	if format == "" {
		format = "mp3"
	}
	quality := y.AudioQuality
	if quality == "" {
		quality = "192K"
	}
	return []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", format,
		"--audio-quality", quality,
		"--no-playlist",
		"--default-search", "ytsearch",
		"--no-simulate",
		"--no-warnings",
		"--print", "after_move:title",
		"--print", "after_move:filepath",
		"-o", filepath.Join(dir, "%(title)s.%(ext)s"),
		query,
	}
}

// Download fetches the best audio match for query into dir, renames it to the sanitized title and
// returns the absolute path of the result.
//
// A file reported by yt-dlp but missing afterwards is [shared.ErrNotFound].
func (y *YtDlp) Download(ctx context.Context, query, dir string) (string, error) {
	out, err := runCommand(ctx, y.bin(), y.downloadArgs(query, dir)...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrToolFailed, err)
	}

	lines := nonEmptyLines(out.Stdout)
	if len(lines) < 2 {
		return "", fmt.Errorf("%w: yt-dlp reported no file for %q", shared.ErrNotFound, query)
	}
	title, path := lines[len(lines)-2], lines[len(lines)-1]

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", shared.ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to check downloaded file: %w", err)
	}

	final, err := y.rename(path, title)
	if err != nil {
		return "", err
	}
	if y.logger != nil {
		y.logger.Debug("downloaded", "query", query, "title", title, "path", final)
	}
	return filepath.Abs(final)
}

// rename moves path to <dir>/<sanitized title><ext>.
func (y *YtDlp) rename(path, title string) (string, error) {
	stem := shared.SanitizeFilename(title, y.MaxNameLength)
	if y.UniqueNames {
		stem = shared.UniqueFilename(stem, y.now())
	}

	target := filepath.Join(filepath.Dir(path), stem+filepath.Ext(path))
	if target == path {
		return path, nil
	}
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return target, nil
}

// Search returns the titles of the top n results for query without downloading anything.
func (y *YtDlp) Search(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = 1
	}
	args := []string{
		"--flat-playlist",
		"--no-warnings",
		"--print", "title",
		fmt.Sprintf("ytsearch%d:%s", n, strings.TrimSpace(query)),
	}

	out, err := runCommand(ctx, y.bin(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrToolFailed, err)
	}
	return nonEmptyLines(out.Stdout), nil
}

// Version returns the yt-dlp version string.
func (y *YtDlp) Version(ctx context.Context) (string, error) {
	out, err := runCommand(ctx, y.bin(), "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrToolFailed, err)
	}
	return strings.TrimSpace(out.Stdout), nil
}
