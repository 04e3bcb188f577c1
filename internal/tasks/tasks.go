// package tasks implements the download-and-transfer pipeline.
//
// The core abstraction is Pipeline, which runs the three collaborator stages in order and emits progress updates
// into a [Sink] (usually a [Queue] drained by the UI pump).
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songpush/internal/models"
	"github.com/desertthunder/songpush/internal/shared"
)

// Suggester returns up to n songs similar to query.
type Suggester interface {
	Similar(ctx context.Context, query string, n int) ([]string, error)
}

// Downloader fetches the best audio match for query into dir and returns the absolute path of the written file.
type Downloader interface {
	Download(ctx context.Context, query, dir string) (string, error)
}

// Transferer copies a local file into deviceDir on the connected device and returns the device-side path.
type Transferer interface {
	Transfer(ctx context.Context, localPath, deviceDir string) (string, error)
}

// HistoryRecorder persists the outcome of a run.
type HistoryRecorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// Outcome is what a finished run hands to the [HistoryRecorder].
type Outcome struct {
	Request     models.Request
	Suggestions []string
	Title       string
	LocalPath   string
	DevicePath  string
	Err         error
}

// Result contains the data produced by a successful run.
type Result struct {
	Suggestions []string
	LocalPath   string
	DevicePath  string
}

// Options tune a [Pipeline]. Zero durations mean no timeout.
type Options struct {
	SuggestCount    int
	SuggestTimeout  time.Duration
	DownloadTimeout time.Duration
	TransferTimeout time.Duration
}

// Pipeline runs suggest, download and transfer for one request at a time.
type Pipeline struct {
	suggester  Suggester
	downloader Downloader
	transferer Transferer
	history    HistoryRecorder
	logger     *log.Logger
	opts       Options
}

// NewPipeline creates a Pipeline with the provided collaborators.
func NewPipeline(suggester Suggester, downloader Downloader, transferer Transferer, opts Options) *Pipeline {
	if opts.SuggestCount <= 0 || opts.SuggestCount > SuggestionSlots {
		opts.SuggestCount = SuggestionSlots
	}
	return &Pipeline{
		suggester:  suggester,
		downloader: downloader,
		transferer: transferer,
		logger:     log.New(io.Discard),
		opts:       opts,
	}
}

// WithHistory sets the recorder every finished run is reported to.
func (p *Pipeline) WithHistory(h HistoryRecorder) *Pipeline {
	p.history = h
	return p
}

// WithLogger sets the logger used for diagnostics.
func (p *Pipeline) WithLogger(l *log.Logger) *Pipeline {
	if l != nil {
		p.logger = l
	}
	return p
}

// Run executes the pipeline for req, emitting updates into sink in order.
//
// An invalid request returns [shared.ErrValidation] without emitting anything. Otherwise the run always ends
// with exactly one success or error update followed by an enable_button update, even if a collaborator panics.
func (p *Pipeline) Run(ctx context.Context, req models.Request, sink Sink) (result *Result, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if p.downloader == nil || p.transferer == nil {
		return nil, fmt.Errorf("%w: downloader and transferer are required", shared.ErrServiceUnavailable)
	}

	phase := Search
	outcome := Outcome{Request: req}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s stage panicked: %v", phase, r)
			result = nil
			p.logger.Error("pipeline panic", "phase", phase, "panic", r)
			sink.Put(errorUpdate(phase, err))
			outcome.Err = err
			p.record(ctx, outcome)
		}
		sink.Put(enableButtonUpdate())
	}()

	sink.Put(searchingUpdate())
	suggestions := p.suggest(ctx, req.Query)
	outcome.Suggestions = suggestions
	sink.Put(similarUpdate(suggestions))

	phase = Download
	sink.Put(downloadingUpdate())
	localPath, err := p.download(ctx, req)
	if err != nil {
		return p.fail(ctx, sink, phase, outcome, err)
	}
	outcome.LocalPath = localPath
	outcome.Title = strings.TrimSuffix(filepath.Base(localPath), filepath.Ext(localPath))

	phase = Transfer
	sink.Put(transferringUpdate(localPath))
	devicePath, err := p.transfer(ctx, localPath, req.DeviceDir)
	if err != nil {
		return p.fail(ctx, sink, phase, outcome, err)
	}
	outcome.DevicePath = devicePath

	p.logger.Info("pipeline finished", "query", req.Query, "local", localPath, "device", devicePath)
	sink.Put(successUpdate(req.Query, localPath))
	p.record(ctx, outcome)

	return &Result{Suggestions: suggestions, LocalPath: localPath, DevicePath: devicePath}, nil
}

func (p *Pipeline) fail(ctx context.Context, sink Sink, phase Phase, outcome Outcome, err error) (*Result, error) {
	p.logger.Error("pipeline failed", "phase", phase, "query", outcome.Request.Query, "error", err)
	sink.Put(errorUpdate(phase, err))
	outcome.Err = err
	p.record(ctx, outcome)
	return nil, err
}

// suggest never fails; any error or empty answer becomes the sentinel pair.
func (p *Pipeline) suggest(ctx context.Context, query string) []string {
	if p.suggester == nil {
		return sentinelSuggestions()
	}

	ctx, cancel := withTimeout(ctx, p.opts.SuggestTimeout)
	defer cancel()

	suggestions, err := p.similar(ctx, query)
	if err != nil {
		p.logger.Warn("similar songs unavailable", "query", query, "error", err)
		return sentinelSuggestions()
	}

	out := make([]string, 0, SuggestionSlots)
	for _, s := range suggestions {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		if len(out) == SuggestionSlots {
			break
		}
	}
	if len(out) == 0 {
		p.logger.Debug("no similar songs", "query", query)
		return sentinelSuggestions()
	}
	return out
}

func (p *Pipeline) similar(ctx context.Context, query string) (suggestions []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", shared.ErrSuggestionUnavailable, r)
		}
	}()
	return p.suggester.Similar(ctx, query, p.opts.SuggestCount)
}

func (p *Pipeline) download(ctx context.Context, req models.Request) (string, error) {
	ctx, cancel := withTimeout(ctx, p.opts.DownloadTimeout)
	defer cancel()

	path, err := p.downloader.Download(ctx, req.Query, req.OutputDir)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("%w: no file for %q", shared.ErrNotFound, req.Query)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", shared.ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to check downloaded file: %w", err)
	}
	return path, nil
}

func (p *Pipeline) transfer(ctx context.Context, localPath, deviceDir string) (string, error) {
	ctx, cancel := withTimeout(ctx, p.opts.TransferTimeout)
	defer cancel()
	return p.transferer.Transfer(ctx, localPath, deviceDir)
}

// record hands the outcome to the history recorder, logging and discarding any failure.
func (p *Pipeline) record(ctx context.Context, outcome Outcome) {
	if p.history == nil {
		return
	}
	if err := p.history.Record(context.WithoutCancel(ctx), outcome); err != nil {
		p.logger.Warn("failed to record download", "query", outcome.Request.Query, "error", err)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// IsDeviceError reports whether err came from the transfer stage's device handling.
func IsDeviceError(err error) bool {
	return errors.Is(err, shared.ErrDeviceUnavailable) || errors.Is(err, shared.ErrTransferFailed)
}
