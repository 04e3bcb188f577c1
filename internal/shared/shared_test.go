package shared

import (
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeKey(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  string
	}{
		{name: "basic normalization", input: "Song Title", want: "song title"},
		{name: "extra whitespace", input: "  Song   Title  ", want: "song title"},
		{name: "mixed case", input: "SoNg TiTlE", want: "song title"},
		{name: "tabs and newlines", input: "Song\tTitle\n", want: "song title"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.input); got != tt.want {
				t.Errorf("NormalizeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "songpush.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("hello", "key", "value")
	})

	t.Run("SetLogLevelString", func(t *testing.T) {
		logger := NewLogger(nil)
		if err := SetLogLevelString(logger, "debug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}
		if err := SetLogLevelString(logger, "loud"); err == nil {
			t.Error("expected error for unknown level")
		}
		if err := SetLogLevelString(logger, ""); err != nil {
			t.Errorf("empty level should be a no-op, got %v", err)
		}
	})
}
