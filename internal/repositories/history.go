package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/songpush/internal/models"
	"github.com/desertthunder/songpush/internal/tasks"
)

// HistoryAdapter implements tasks.HistoryRecorder using DownloadRepository.
//
// The sentinel "no suggestions" pair is not stored.
type HistoryAdapter struct {
	repo *DownloadRepository
}

// NewHistoryAdapter creates a new HistoryAdapter with the given repository
func NewHistoryAdapter(repo *DownloadRepository) *HistoryAdapter {
	return &HistoryAdapter{repo: repo}
}

// Record stores one finished pipeline run.
func (a *HistoryAdapter) Record(ctx context.Context, outcome tasks.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	status := models.StatusCompleted
	if outcome.Err != nil {
		status = models.StatusFailed
	}

	d := models.NewDownload(outcome.Request.Query, status)
	d.SetTitle(outcome.Title)
	d.SetLocalPath(outcome.LocalPath)
	d.SetDevicePath(outcome.DevicePath)
	if outcome.Err != nil {
		d.SetErrorMessage(outcome.Err.Error())
	}

	var suggestions []string
	for _, s := range outcome.Suggestions {
		if s != tasks.NoSuggestions {
			suggestions = append(suggestions, s)
		}
	}
	d.SetSuggestions(suggestions)

	if err := a.repo.Create(d); err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}
