// adb device transfer client
package services

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songpush/internal/shared"
)

const mediaScanAction = "android.intent.action.MEDIA_SCANNER_SCAN_FILE"

// Device is one line of `adb devices` output.
type Device struct {
	Serial string
	State  string // "device", "offline", "unauthorized", ...
}

// Ready reports whether the device accepts commands.
func (d Device) Ready() bool { return d.State == "device" }

// ADB pushes files to an Android device with the adb binary.
type ADB struct {
	// BinaryPath is the path to the adb executable. Defaults to "adb".
	BinaryPath string
	// Serial selects a device when more than one is attached.
	Serial string

	logger *log.Logger
}

// NewADB creates a client from the tools section of cfg.
func NewADB(cfg *shared.Config, logger *log.Logger) *ADB {
	return &ADB{BinaryPath: cfg.Tools.ADBPath, Serial: cfg.Tools.ADBSerial, logger: logger}
}

func (a *ADB) bin() string {
	if a.BinaryPath == "" {
		return "adb"
	}
	return a.BinaryPath
}

func (a *ADB) args(args ...string) []string {
	if a.Serial == "" {
		return args
	}
	return append([]string{"-s", a.Serial}, args...)
}

// Devices lists attached devices in any state.
func (a *ADB) Devices(ctx context.Context) ([]Device, error) {
	out, err := runCommand(ctx, a.bin(), "devices")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrDeviceUnavailable, err)
	}
	return ParseDevices(out.Stdout), nil
}

// Probe returns the device commands will go to.
//
// It fails with [shared.ErrDeviceUnavailable] when adb cannot run, when no device is in the "device"
// state, or when the configured serial is not ready.
func (a *ADB) Probe(ctx context.Context) (Device, error) {
	devices, err := a.Devices(ctx)
	if err != nil {
		return Device{}, err
	}

	var ready []Device
	for _, d := range devices {
		if d.Ready() {
			ready = append(ready, d)
		}
	}

	if a.Serial != "" {
		for _, d := range ready {
			if d.Serial == a.Serial {
				return d, nil
			}
		}
		return Device{}, fmt.Errorf("%w: device %s is not connected", shared.ErrDeviceUnavailable, a.Serial)
	}

	switch len(ready) {
	case 0:
		return Device{}, fmt.Errorf("%w: ADB is not running or no device is connected", shared.ErrDeviceUnavailable)
	case 1:
		return ready[0], nil
	default:
		return Device{}, fmt.Errorf("%w: %d devices connected, set tools.adb_serial", shared.ErrDeviceUnavailable, len(ready))
	}
}

// Push copies localPath into deviceDir and returns the device-side path.
func (a *ADB) Push(ctx context.Context, localPath, deviceDir string) (string, error) {
	dir := strings.TrimSuffix(deviceDir, "/")
	if _, err := runCommand(ctx, a.bin(), a.args("push", localPath, dir+"/")...); err != nil {
		return "", fmt.Errorf("%w: push: %w", shared.ErrTransferFailed, err)
	}
	return path.Join(dir, filepath.Base(localPath)), nil
}

// Rescan asks the device media scanner to index devicePath.
func (a *ADB) Rescan(ctx context.Context, devicePath string) error {
	uri := shellQuote("file://" + devicePath)
	args := a.args("shell", "am", "broadcast", "-a", mediaScanAction, "-d", uri)
	if _, err := runCommand(ctx, a.bin(), args...); err != nil {
		return fmt.Errorf("%w: rescan: %w", shared.ErrTransferFailed, err)
	}
	return nil
}

// Transfer probes for a device, pushes the file and triggers a media rescan.
func (a *ADB) Transfer(ctx context.Context, localPath, deviceDir string) (string, error) {
	device, err := a.Probe(ctx)
	if err != nil {
		return "", err
	}

	devicePath, err := a.Push(ctx, localPath, deviceDir)
	if err != nil {
		return "", err
	}
	if err := a.Rescan(ctx, devicePath); err != nil {
		return "", err
	}

	if a.logger != nil {
		a.logger.Debug("transferred", "device", device.Serial, "path", devicePath)
	}
	return devicePath, nil
}

// ParseDevices reads the output of `adb devices`.
func ParseDevices(output string) []Device {
	var devices []Device
	for _, line := range nonEmptyLines(output) {
		if strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, Device{Serial: fields[0], State: fields[1]})
	}
	return devices
}

// shellQuote wraps s for the device shell, which re-parses `adb shell` arguments.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
