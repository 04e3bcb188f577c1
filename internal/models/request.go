package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/songpush/internal/shared"
)

// DefaultDeviceDir is where pushed files land on the device when no folder is given.
const DefaultDeviceDir = "/sdcard/Music"

// Request is one submission of the form.
type Request struct {
	Query     string // Song name typed by the user
	OutputDir string // Local folder the download is written to
	DeviceDir string // Folder on the device the file is pushed to
}

// NewRequest trims every field.
func NewRequest(query, outputDir, deviceDir string) Request {
	return Request{
		Query:     strings.TrimSpace(query),
		OutputDir: strings.TrimSpace(outputDir),
		DeviceDir: strings.TrimSpace(deviceDir),
	}
}

// Validate reports the first empty required field wrapped in [shared.ErrValidation].
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Query) == "":
		return fmt.Errorf("%w: song name is required", shared.ErrValidation)
	case strings.TrimSpace(r.OutputDir) == "":
		return fmt.Errorf("%w: output folder is required", shared.ErrValidation)
	case strings.TrimSpace(r.DeviceDir) == "":
		return fmt.Errorf("%w: device folder is required", shared.ErrValidation)
	}
	return nil
}
