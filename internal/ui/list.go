package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songpush/internal/models"
)

var (
	_ list.Item = downloadItem{}
)

// downloadItem wraps [models.Download] to implement [list.Item].
type downloadItem struct {
	download *models.Download
}

func (i downloadItem) FilterValue() string { return i.download.Query() }

func (i downloadItem) Title() string {
	if t := i.download.Title(); t != "" {
		return t
	}
	return i.download.Query()
}

func (i downloadItem) Description() string {
	when := i.download.CreatedAt().Format("2006-01-02 15:04")
	if i.download.Status() == models.StatusFailed {
		return fmt.Sprintf("%s • failed: %s", when, i.download.ErrorMessage())
	}
	return fmt.Sprintf("%s • %s", when, i.download.DevicePath())
}

func downloadItems(downloads []*models.Download) []list.Item {
	items := make([]list.Item, len(downloads))
	for i, d := range downloads {
		items[i] = downloadItem{download: d}
	}
	return items
}
