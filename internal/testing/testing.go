// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

// MockSuggester is a test double for a similar-songs provider.
type MockSuggester struct {
	Results []string
	Err     error
	Panic   any
	Calls   int
	Count   int // n passed on the last call
}

func (m *MockSuggester) Name() string { return "mock" }

func (m *MockSuggester) Similar(ctx context.Context, query string, n int) ([]string, error) {
	m.Calls++
	m.Count = n
	if m.Panic != nil {
		panic(m.Panic)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}

// MockDownloader writes a small file named after the query unless Err is set.
//
// RemoveAfter deletes the file before returning, simulating a download that vanished.
type MockDownloader struct {
	Err         error
	RemoveAfter bool
	Block       chan struct{} // when set, Download waits for it to close
	Calls       int
}

func (m *MockDownloader) Download(ctx context.Context, query, dir string) (string, error) {
	m.Calls++
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.Err != nil {
		return "", m.Err
	}
	path := filepath.Join(dir, query+".mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0644); err != nil {
		return "", err
	}
	if m.RemoveAfter {
		if err := os.Remove(path); err != nil {
			return "", err
		}
	}
	return path, nil
}

// MockTransferer records pushed files.
type MockTransferer struct {
	Err    error
	mu     sync.Mutex
	Pushed []string
}

func (m *MockTransferer) Transfer(ctx context.Context, localPath, deviceDir string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pushed = append(m.Pushed, localPath)
	return deviceDir + "/" + filepath.Base(localPath), nil
}

// WriteScript writes an executable shell script into dir and returns its path.
// Tests calling it are skipped on Windows.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write script %s: %v", name, err)
	}
	return path
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
