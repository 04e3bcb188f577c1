package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandOutput holds what a finished external command printed.
type commandOutput struct {
	Stdout string
	Stderr string
}

// runCommand runs bin with args and captures both streams.
// A non-zero exit is returned as an error carrying the trimmed stderr.
func runCommand(ctx context.Context, bin string, args ...string) (commandOutput, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := commandOutput{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("%s: %w", bin, ctxErr)
		}
		if msg := strings.TrimSpace(out.Stderr); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", bin, err, msg)
		}
		return out, fmt.Errorf("%s: %w", bin, err)
	}
	return out, nil
}

// nonEmptyLines splits s into trimmed, non-blank lines.
func nonEmptyLines(s string) []string {
	var lines []string
	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
