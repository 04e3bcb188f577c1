package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songpush/internal/shared"
)

// DownloadStatus is the terminal outcome of a pipeline run.
type DownloadStatus string

const (
	StatusCompleted DownloadStatus = "completed"
	StatusFailed    DownloadStatus = "failed"
)

func (s DownloadStatus) Valid() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Download is a persisted record of one pipeline run.
type Download struct {
	id           string
	sequence     int
	query        string
	title        string
	localPath    string
	devicePath   string
	status       DownloadStatus
	errorMessage string
	suggestions  []string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewDownload creates a record for query with the given outcome.
func NewDownload(query string, status DownloadStatus) *Download {
	now := time.Now()
	return &Download{
		query:     query,
		status:    status,
		createdAt: now,
		updatedAt: now,
	}
}

func (d *Download) ID() string             { return d.id }
func (d *Download) Sequence() int          { return d.sequence }
func (d *Download) Query() string          { return d.query }
func (d *Download) Title() string          { return d.title }
func (d *Download) LocalPath() string      { return d.localPath }
func (d *Download) DevicePath() string     { return d.devicePath }
func (d *Download) Status() DownloadStatus { return d.status }
func (d *Download) ErrorMessage() string   { return d.errorMessage }
func (d *Download) Suggestions() []string  { return d.suggestions }
func (d *Download) CreatedAt() time.Time   { return d.createdAt }
func (d *Download) UpdatedAt() time.Time   { return d.updatedAt }
func (d *Download) DeletedAt() *time.Time  { return d.deletedAt }
func (d *Download) IsDeleted() bool        { return d.deletedAt != nil }

func (d *Download) SetID(id string)            { d.id = id }
func (d *Download) SetSequence(seq int)        { d.sequence = seq }
func (d *Download) SetTitle(title string)      { d.title = title }
func (d *Download) SetLocalPath(p string)      { d.localPath = p }
func (d *Download) SetDevicePath(p string)     { d.devicePath = p }
func (d *Download) SetStatus(s DownloadStatus) { d.status = s }
func (d *Download) SetErrorMessage(msg string) { d.errorMessage = msg }
func (d *Download) SetSuggestions(s []string)  { d.suggestions = s }
func (d *Download) SetCreatedAt(t time.Time)   { d.createdAt = t }
func (d *Download) SetUpdatedAt(t time.Time)   { d.updatedAt = t }
func (d *Download) SetDeletedAt(t *time.Time)  { d.deletedAt = t }

// Validate checks the query is present and the status is a known outcome.
func (d *Download) Validate() error {
	if strings.TrimSpace(d.query) == "" {
		return fmt.Errorf("%w: query is required", shared.ErrValidation)
	}
	if !d.status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, d.status)
	}
	if d.status == StatusFailed && d.errorMessage == "" {
		return fmt.Errorf("%w: failed download needs an error message", shared.ErrValidation)
	}
	return nil
}
