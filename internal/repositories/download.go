package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songpush/internal/models"
	"github.com/desertthunder/songpush/internal/shared"
)

const downloadColumns = `id, sequence, query, title, local_path, device_path, status, error_message, created_at, updated_at, deleted_at`

// DownloadRepository implements models.Repository[*models.Download] for the download history.
//
// Suggestions shown for a run are stored alongside it and loaded with every read.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a new [models.Download] and its suggestions with generated ID and sequence
func (r *DownloadRepository) Create(d *models.Download) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(tx)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO downloads (id, sequence, query, title, local_path, device_path, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		d.Query(),
		d.Title(),
		d.LocalPath(),
		d.DevicePath(),
		string(d.Status()),
		nullString(d.ErrorMessage()),
		d.CreatedAt(),
		d.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	if err := insertSuggestions(tx, id, d.Suggestions()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit download: %w", err)
	}

	d.SetID(id)
	d.SetSequence(sequence)
	return nil
}

// Get retrieves a download by ID, excluding soft-deleted downloads
func (r *DownloadRepository) Get(id string) (*models.Download, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE id = ? AND deleted_at IS NULL`

	d, err := scanDownload(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadSuggestions(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update modifies an existing download in the database
func (r *DownloadRepository) Update(d *models.Download) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	d.SetUpdatedAt(now)

	query := `
		UPDATE downloads
		SET title = ?, local_path = ?, device_path = ?, status = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		d.Title(),
		d.LocalPath(),
		d.DevicePath(),
		string(d.Status()),
		nullString(d.ErrorMessage()),
		now,
		d.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	return requireRow(result, d.ID())
}

// Delete soft-deletes a download by ID
func (r *DownloadRepository) Delete(id string) error {
	query := `UPDATE downloads SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}

	return requireRow(result, id)
}

// List retrieves downloads matching the given criteria, newest first, excluding soft-deleted downloads.
//
// Supported criteria: "status" (string), "query" (substring, string), "limit" (int).
func (r *DownloadRepository) List(criteria map[string]any) ([]*models.Download, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE deleted_at IS NULL`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if q, ok := criteria["query"].(string); ok && q != "" {
		query += " AND query LIKE ?"
		args = append(args, "%"+q+"%")
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.Download
	for rows.Next() {
		d, err := scanDownload(rows)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, d := range downloads {
		if err := r.loadSuggestions(d); err != nil {
			return nil, err
		}
	}

	return downloads, nil
}

// Counts returns the number of completed and failed downloads.
func (r *DownloadRepository) Counts() (completed, failed int, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM downloads
		WHERE deleted_at IS NULL
	`
	if err := r.db.QueryRow(query, string(models.StatusCompleted), string(models.StatusFailed)).Scan(&completed, &failed); err != nil {
		return 0, 0, fmt.Errorf("failed to count downloads: %w", err)
	}
	return completed, failed, nil
}

func (r *DownloadRepository) loadSuggestions(d *models.Download) error {
	rows, err := r.db.Query(`SELECT text FROM suggestions WHERE download_id = ? ORDER BY position ASC`, d.ID())
	if err != nil {
		return fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, text)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	d.SetSuggestions(suggestions)
	return nil
}

// nextSequence increments and returns the downloads counter within tx.
func nextSequence(tx *sql.Tx) (int, error) {
	if _, err := tx.Exec(`UPDATE downloads_sequence SET value = value + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow(`SELECT value FROM downloads_sequence WHERE id = 1`).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}
	return sequence, nil
}

func insertSuggestions(tx *sql.Tx, downloadID string, suggestions []string) error {
	for i, text := range suggestions {
		_, err := tx.Exec(`INSERT INTO suggestions (download_id, position, text) VALUES (?, ?, ?)`, downloadID, i, text)
		if err != nil {
			return fmt.Errorf("failed to insert suggestion: %w", err)
		}
	}
	return nil
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDownload scans a single row into a [models.Download]
func scanDownload(row rowScanner) (*models.Download, error) {
	var (
		id           string
		sequence     int
		query        string
		title        string
		localPath    string
		devicePath   string
		status       string
		errorMessage sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &query, &title, &localPath, &devicePath, &status, &errorMessage, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: download", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	d := models.NewDownload(query, models.DownloadStatus(status))
	d.SetID(id)
	d.SetSequence(sequence)
	d.SetTitle(title)
	d.SetLocalPath(localPath)
	d.SetDevicePath(devicePath)
	d.SetErrorMessage(errorMessage.String)
	d.SetCreatedAt(createdAt)
	d.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		d.SetDeletedAt(&deletedAt.Time)
	}

	return d, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: download %s not found or already deleted", shared.ErrRecordNotFound, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
