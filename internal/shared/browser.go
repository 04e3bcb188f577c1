package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openerCommand returns the platform command that reveals target in the desktop shell.
func openerCommand(target string) (*exec.Cmd, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", target), nil
	default:
		return nil, fmt.Errorf("%w: opening folders on %s", ErrNotImplemented, rt)
	}
}

// OpenPath opens a local folder (or file) with the system file manager.
//
// Supports macOS, Linux/BSD, and Windows platforms.
func OpenPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s does not exist", ErrInvalidArgument, path)
	}

	cmd, err := openerCommand(path)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	return nil
}
