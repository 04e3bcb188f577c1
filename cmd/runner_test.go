package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/songpush/internal/shared"
	"github.com/desertthunder/songpush/internal/tasks"
	tu "github.com/desertthunder/songpush/internal/testing"
)

const readyDevices = "List of devices attached\nemulator-5554\tdevice\n\n"

// fakeTools writes yt-dlp and adb stand-ins. yt-dlp creates raw.mp3 next to the -o template and prints
// title then path; adb lists devices and exits with pushExit for push.
func fakeTools(t *testing.T, devices string, pushExit int) (ytdlp, adb string) {
	t.Helper()
	dir := t.TempDir()

	ytdlp = tu.WriteScript(t, dir, "yt-dlp", `if [ "$1" = "--version" ]; then echo "2025.01.01"; exit 0; fi
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
f="$(dirname "$out")/raw.mp3"
printf 'ID3' > "$f"
echo "Imagine"
echo "$f"`)

	adb = tu.WriteScript(t, dir, "adb", fmt.Sprintf(`if [ "$1" = "-s" ]; then shift; shift; fi
case "$1" in
  devices) printf %q ;;
  push) exit %d ;;
  shell) exit 0 ;;
esac`, devices, pushExit))
	return ytdlp, adb
}

func writeConfig(t *testing.T, ytdlp, adb string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(`[suggest]
provider = "none"

[tools]
ytdlp_path = %q
adb_path = %q

[database]
path = %q

[log]
level = "error"
file = %q
`, ytdlp, adb, filepath.Join(dir, "songpush.db"), filepath.Join(dir, "songpush.log"))

	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func run(t *testing.T, opts RunnerOpts, args ...string) (string, error) {
	t.Helper()
	t.Setenv(shared.EnvADBSerial, "")
	output := &bytes.Buffer{}
	opts.Output = output
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	runner := NewRunner(opts)
	err := newApp(runner).Run(context.Background(), append([]string{"songpush"}, args...))
	return output.String(), err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			suggester := &tu.MockSuggester{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				Suggester:  suggester,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.similar() != suggester {
				t.Error("expected injected suggester to be used")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("falls back when the provider has no credentials", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Suggest.Provider = "openai"
			config.Credentials.OpenAI.APIKey = ""
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

			if name := runner.similar().Name(); name != "none" {
				t.Errorf("expected none provider, got %s", name)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}

		failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := failing.writePlain("test"); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestBefore(t *testing.T) {
	t.Run("loads the config file", func(t *testing.T) {
		ytdlp, adb := fakeTools(t, readyDevices, 0)
		path := writeConfig(t, ytdlp, adb)
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

		app := newApp(runner)
		if err := app.Run(context.Background(), []string{"songpush", "-c", path, "similar", "x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if runner.configPath != path {
			t.Errorf("expected config path %s, got %s", path, runner.configPath)
		}
		if runner.config.Tools.YtDlpPath != ytdlp {
			t.Errorf("expected ytdlp path from file, got %s", runner.config.Tools.YtDlpPath)
		}
		if runner.config.UI.PollIntervalMS != 100 {
			t.Errorf("expected default poll interval kept, got %d", runner.config.UI.PollIntervalMS)
		}
	})

	t.Run("rejects an invalid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[suggest]\nprovider = \"bing\"\n"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := run(t, RunnerOpts{}, "-c", path, "similar", "x")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestGet(t *testing.T) {
	t.Run("downloads, pushes and records history", func(t *testing.T) {
		ytdlp, adb := fakeTools(t, readyDevices, 0)
		path := writeConfig(t, ytdlp, adb)
		outDir := t.TempDir()

		out, err := run(t, RunnerOpts{}, "-c", path, "get", "-o", outDir, "Imagine")
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, out)
		}

		for _, want := range []string{
			"[1/3] Searching for similar songs...",
			"Similar 1: No similar songs found",
			"[2/3] Downloading the song...",
			"[3/3] Transferring to Android device...",
			"✓ Song 'Imagine' successfully downloaded and transferred!",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		tu.AssertFileExists(t, filepath.Join(outDir, "Imagine.mp3"))

		history, err := run(t, RunnerOpts{}, "-c", path, "history")
		if err != nil {
			t.Fatalf("unexpected history error: %v", err)
		}
		if !strings.Contains(history, "Imagine [completed]") || !strings.Contains(history, "1 completed, 0 failed") {
			t.Errorf("unexpected history output:\n%s", history)
		}
	})

	t.Run("reports a missing device", func(t *testing.T) {
		ytdlp, adb := fakeTools(t, "List of devices attached\n\n", 0)
		path := writeConfig(t, ytdlp, adb)

		logs := &bytes.Buffer{}
		out, err := run(t, RunnerOpts{Logger: shared.NewLogger(logs)}, "-c", path, "--debug", "get", "-o", t.TempDir(), "Imagine")
		if !errors.Is(err, shared.ErrDeviceUnavailable) {
			t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
		}
		if !strings.Contains(out, "✗ An error occurred:") {
			t.Errorf("expected error line, got:\n%s", out)
		}
		if !strings.Contains(logs.String(), "songpush device status") {
			t.Errorf("expected device hint in logs, got:\n%s", logs.String())
		}

		history, err := run(t, RunnerOpts{}, "-c", path, "history", "--format", "csv")
		if err != nil {
			t.Fatalf("unexpected history error: %v", err)
		}
		if !strings.Contains(history, "failed") {
			t.Errorf("expected failed download in history, got:\n%s", history)
		}
	})

	t.Run("requires a song name", func(t *testing.T) {
		ytdlp, adb := fakeTools(t, readyDevices, 0)
		path := writeConfig(t, ytdlp, adb)

		_, err := run(t, RunnerOpts{}, "-c", path, "get")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSimilar(t *testing.T) {
	ytdlp, adb := fakeTools(t, readyDevices, 0)
	path := writeConfig(t, ytdlp, adb)

	t.Run("prints numbered suggestions", func(t *testing.T) {
		suggester := &tu.MockSuggester{Results: []string{"Jealous Guy", "Woman", "Mind Games"}}

		out, err := run(t, RunnerOpts{Suggester: suggester}, "-c", path, "similar", "-n", "3", "Imagine")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "1. Jealous Guy\n2. Woman\n3. Mind Games\n" {
			t.Errorf("unexpected output %q", out)
		}
		if suggester.Count != 3 {
			t.Errorf("expected count 3 passed through, got %d", suggester.Count)
		}
	})

	t.Run("prints the sentinel when empty", func(t *testing.T) {
		out, err := run(t, RunnerOpts{}, "-c", path, "similar", "Imagine")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "No similar songs found\n" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("rejects an unknown provider", func(t *testing.T) {
		_, err := run(t, RunnerOpts{}, "-c", path, "similar", "--provider", "bing", "Imagine")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestDevice(t *testing.T) {
	t.Run("status marks the selected device", func(t *testing.T) {
		ytdlp, adb := fakeTools(t, readyDevices, 0)
		path := writeConfig(t, ytdlp, adb)

		out, err := run(t, RunnerOpts{}, "-c", path, "device", "status")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "* emulator-5554") || !strings.Contains(out, "✓ Ready: emulator-5554") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("push fails on non-zero exit", func(t *testing.T) {
		ytdlp, adb := fakeTools(t, readyDevices, 1)
		path := writeConfig(t, ytdlp, adb)
		file := filepath.Join(t.TempDir(), "song.mp3")
		if err := os.WriteFile(file, []byte("ID3"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := run(t, RunnerOpts{}, "-c", path, "device", "push", file)
		if !errors.Is(err, shared.ErrTransferFailed) {
			t.Errorf("expected ErrTransferFailed, got %v", err)
		}
	})

	t.Run("push requires an existing file", func(t *testing.T) {
		ytdlp, adb := fakeTools(t, readyDevices, 0)
		path := writeConfig(t, ytdlp, adb)

		_, err := run(t, RunnerOpts{}, "-c", path, "device", "push", filepath.Join(t.TempDir(), "missing.mp3"))
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	ytdlp, adb := fakeTools(t, readyDevices, 0)
	path := writeConfig(t, ytdlp, adb)

	out, err := run(t, RunnerOpts{}, "-c", path, "setup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"✓ Using config", "schema version", "✓ yt-dlp 2025.01.01", "✓ adb available"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestConsole(t *testing.T) {
	updates := []tasks.ProgressUpdate{
		{Kind: tasks.KindStatus, Step: 1, Total: 3, Message: tasks.SearchingMessage},
		{Kind: tasks.KindSimilar, Suggestions: []string{"Jealous Guy"}},
		{Kind: tasks.KindError, Message: "device unavailable"},
		{Kind: tasks.KindEnableButton},
	}

	t.Run("plain output prints as it goes", func(t *testing.T) {
		output := &bytes.Buffer{}
		c := newConsole(output, false)
		for _, u := range updates {
			c.apply(u)
		}

		want := "[1/3] Searching for similar songs...\n" +
			"      Similar 1: Jealous Guy\n" +
			"      Similar 2: None\n" +
			"✗ An error occurred: device unavailable\n"
		if output.String() != want {
			t.Errorf("expected %q, got %q", want, output.String())
		}
	})

	t.Run("progress bar holds lines until finished", func(t *testing.T) {
		output := &bytes.Buffer{}
		c := newConsole(output, true)
		for _, u := range updates[:3] {
			c.apply(u)
		}
		if output.Len() != 0 {
			t.Fatalf("expected nothing written while the bar runs, got %q", output.String())
		}

		c.apply(updates[3])
		if !strings.Contains(output.String(), "Similar 1: Jealous Guy") || !strings.Contains(output.String(), "An error occurred") {
			t.Errorf("expected held lines flushed, got %q", output.String())
		}
	})
}
