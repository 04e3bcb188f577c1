package shared

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenerCommand(t *testing.T) {
	orig := getRuntime
	defer func() { getRuntime = orig }()

	tt := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "cmd"},
		{goos: "plan9", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.goos, func(t *testing.T) {
			getRuntime = func() string { return tc.goos }

			cmd, err := openerCommand("/music")
			if (err != nil) != tc.wantErr {
				t.Fatalf("openerCommand() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				if !errors.Is(err, ErrNotImplemented) {
					t.Errorf("expected ErrNotImplemented, got %v", err)
				}
				return
			}
			if filepath.Base(cmd.Args[0]) != tc.want {
				t.Errorf("expected %s, got %s", tc.want, cmd.Args[0])
			}
			if cmd.Args[len(cmd.Args)-1] != "/music" {
				t.Errorf("expected target as last argument, got %v", cmd.Args)
			}
		})
	}
}

func TestOpenPathMissing(t *testing.T) {
	err := OpenPath(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
