// package formatter renders the download history in various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/songpush/internal/models"
	"github.com/desertthunder/songpush/internal/shared"
	"github.com/dustin/go-humanize"
)

// Supported export formats.
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// DownloadJSON is the serialized form of a [models.Download].
type DownloadJSON struct {
	ID          string    `json:"id"`
	Sequence    int       `json:"sequence"`
	Query       string    `json:"query"`
	Title       string    `json:"title,omitempty"`
	LocalPath   string    `json:"local_path,omitempty"`
	DevicePath  string    `json:"device_path,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Export renders downloads in the named format.
func Export(downloads []*models.Download, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText, "txt":
		return ExportToText(downloads)
	case FormatCSV:
		return ExportToCSV(downloads)
	case FormatMarkdown, "md":
		return ExportToMarkdown(downloads)
	case FormatJSON:
		return ExportToJSON(downloads)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts downloads to CSV with columns: Sequence, Query, Title, Status, Local Path, Device Path, Error, Suggestions, Created
func ExportToCSV(downloads []*models.Download) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "Query", "Title", "Status", "Local Path", "Device Path", "Error", "Suggestions", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, d := range downloads {
		record := []string{
			strconv.Itoa(d.Sequence()),
			d.Query(),
			d.Title(),
			string(d.Status()),
			d.LocalPath(),
			d.DevicePath(),
			d.ErrorMessage(),
			strings.Join(d.Suggestions(), "; "),
			d.CreatedAt().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts downloads to a Markdown table followed by suggestion notes
func ExportToMarkdown(downloads []*models.Download) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Download History\n\n")
	buf.WriteString(fmt.Sprintf("**Downloads**: %d\n\n", len(downloads)))

	if len(downloads) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Query | Title | Status | Device Path | When |\n")
	buf.WriteString("|---|-------|-------|--------|-------------|------|\n")
	for _, d := range downloads {
		status := string(d.Status())
		if d.ErrorMessage() != "" {
			status += ": " + d.ErrorMessage()
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			d.Sequence(),
			escapeCell(d.Query()),
			escapeCell(d.Title()),
			escapeCell(status),
			escapeCell(d.DevicePath()),
			d.CreatedAt().Format("2006-01-02 15:04"),
		))
	}

	var notes []*models.Download
	for _, d := range downloads {
		if len(d.Suggestions()) > 0 {
			notes = append(notes, d)
		}
	}
	if len(notes) > 0 {
		buf.WriteString("\n## Suggestions\n\n")
		for _, d := range notes {
			buf.WriteString(fmt.Sprintf("- **%s**: %s\n", d.Query(), strings.Join(d.Suggestions(), ", ")))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts downloads to plain text, one entry per block
func ExportToText(downloads []*models.Download) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Downloads: %d\n", len(downloads)))

	for _, d := range downloads {
		buf.WriteString(fmt.Sprintf("\n#%d %s [%s] %s\n", d.Sequence(), d.Query(), d.Status(), humanize.Time(d.CreatedAt())))
		if d.Title() != "" {
			buf.WriteString(fmt.Sprintf("  Title: %s\n", d.Title()))
		}
		if d.LocalPath() != "" {
			buf.WriteString(fmt.Sprintf("  File: %s%s\n", d.LocalPath(), fileSize(d.LocalPath())))
		}
		if d.DevicePath() != "" {
			buf.WriteString(fmt.Sprintf("  Device: %s\n", d.DevicePath()))
		}
		if d.ErrorMessage() != "" {
			buf.WriteString(fmt.Sprintf("  Error: %s\n", d.ErrorMessage()))
		}
		if len(d.Suggestions()) > 0 {
			buf.WriteString(fmt.Sprintf("  Similar: %s\n", strings.Join(d.Suggestions(), ", ")))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts downloads to an indented JSON array
func ExportToJSON(downloads []*models.Download) ([]byte, error) {
	out := make([]DownloadJSON, 0, len(downloads))
	for _, d := range downloads {
		out = append(out, ToJSON(d))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

// ToJSON maps a download to its serialized form.
func ToJSON(d *models.Download) DownloadJSON {
	return DownloadJSON{
		ID:          d.ID(),
		Sequence:    d.Sequence(),
		Query:       d.Query(),
		Title:       d.Title(),
		LocalPath:   d.LocalPath(),
		DevicePath:  d.DevicePath(),
		Status:      string(d.Status()),
		Error:       d.ErrorMessage(),
		Suggestions: d.Suggestions(),
		CreatedAt:   d.CreatedAt(),
	}
}

// WriteExport renders downloads in format and writes them to path.
func WriteExport(downloads []*models.Download, format, path string) error {
	data, err := Export(downloads, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// fileSize returns " (3.1 MB)" for an existing file and "" otherwise.
func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return fmt.Sprintf(" (%s)", humanize.Bytes(uint64(info.Size())))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
