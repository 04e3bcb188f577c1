package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songpush/internal/models"
	"github.com/desertthunder/songpush/internal/shared"
	"github.com/desertthunder/songpush/internal/tasks"
	tu "github.com/desertthunder/songpush/internal/testing"
)

type fakeWorker struct {
	calls int
	err   error
}

func (w *fakeWorker) Run(ctx context.Context, req models.Request, sink tasks.Sink) (*tasks.Result, error) {
	w.calls++
	if w.err != nil {
		return nil, w.err
	}
	sink.Put(tasks.ProgressUpdate{Kind: tasks.KindStatus, Message: tasks.SearchingMessage})
	sink.Put(tasks.ProgressUpdate{Kind: tasks.KindEnableButton})
	return &tasks.Result{}, nil
}

type fakeHistory struct {
	downloads []*models.Download
	err       error
}

func (h *fakeHistory) List(criteria map[string]any) ([]*models.Download, error) {
	return h.downloads, h.err
}

func newTestModel(t *testing.T, opts Options) *Model {
	t.Helper()
	cfg := shared.DefaultConfig()
	cfg.Output.LocalDir = t.TempDir()
	if opts.Worker == nil {
		opts.Worker = &fakeWorker{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = func(string) error { return nil }
	}
	if opts.Open == nil {
		opts.Open = func(string) error { return nil }
	}
	return NewModel(context.Background(), cfg, opts)
}

func update(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func tick(m *Model) tea.Cmd {
	return update(m, pollTickMsg())
}

func enter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

// collect runs cmd and every command it batches, returning the application messages produced.
func collect(cmd tea.Cmd) []Msg {
	if cmd == nil {
		return nil
	}
	var out []Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
	case Msg:
		out = append(out, msg)
	}
	return out
}

func TestModel_Pump(t *testing.T) {
	t.Run("applies updates in FIFO order", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m.running = true
		q := m.Queue()
		q.Put(tasks.ProgressUpdate{Kind: tasks.KindStatus, Message: tasks.SearchingMessage})
		q.Put(tasks.ProgressUpdate{Kind: tasks.KindError, Message: "first"})
		q.Put(tasks.ProgressUpdate{Kind: tasks.KindSuccess, Message: "second"})
		q.Put(tasks.ProgressUpdate{Kind: tasks.KindStatus, Message: tasks.DownloadingMessage})

		tick(m)

		if q.Len() != 0 {
			t.Fatalf("expected queue drained, %d left", q.Len())
		}
		if m.status != tasks.DownloadingMessage {
			t.Errorf("expected last status to win, got %q", m.status)
		}
		if len(m.dialogs) != 2 {
			t.Fatalf("expected 2 dialogs, got %d", len(m.dialogs))
		}
		if m.dialogs[0].body != "An error occurred: first" || m.dialogs[1].body != "second" {
			t.Errorf("dialogs out of order: %+v", m.dialogs)
		}
		if !m.running {
			t.Error("expected submit to stay disabled until enable_button")
		}
	})

	t.Run("always reschedules", func(t *testing.T) {
		m := newTestModel(t, Options{})
		if cmd := tick(m); cmd == nil {
			t.Fatal("expected next poll on an empty queue")
		}
	})

	t.Run("reschedules after a panicking update", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m.seen = nil
		m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindSimilar, Suggestions: []string{"Jealous Guy"}})
		m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindStatus, Message: tasks.TransferringMessage})

		if cmd := tick(m); cmd == nil {
			t.Fatal("expected next poll after panic")
		}
		if m.status != tasks.TransferringMessage {
			t.Errorf("expected updates after the panic to apply, got status %q", m.status)
		}
	})

	t.Run("success clears status and records the path", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m.status = tasks.TransferringMessage
		m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindSuccess, Message: "done", Data: "/tmp/out/Imagine.mp3"})

		tick(m)

		if m.status != "" {
			t.Errorf("expected cleared status, got %q", m.status)
		}
		if m.lastPath != "/tmp/out/Imagine.mp3" {
			t.Errorf("expected last path recorded, got %q", m.lastPath)
		}
	})
}

func TestModel_Suggestions(t *testing.T) {
	t.Run("filters previously seen values", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m.seen.Add("imagine")

		m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindSimilar, Suggestions: []string{"IMAGINE", "Jealous Guy", "Woman"}})
		tick(m)

		if m.suggestions[0] != "Jealous Guy" || m.suggestions[1] != "Woman" {
			t.Fatalf("unexpected suggestions %v", m.suggestions)
		}

		m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindSimilar, Suggestions: []string{"jealous guy", "Mind Games"}})
		tick(m)

		if m.suggestions[0] != "Mind Games" || m.suggestions[1] != "" {
			t.Fatalf("unexpected suggestions %v", m.suggestions)
		}
		if view := m.View(); !strings.Contains(view, "Similar 2: None") {
			t.Errorf("expected empty slot labelled None, got:\n%s", view)
		}
	})

	t.Run("shows the sentinel pair without remembering it", func(t *testing.T) {
		m := newTestModel(t, Options{})
		sentinel := []string{tasks.NoSuggestions, tasks.NoSuggestions}

		for range 2 {
			m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindSimilar, Suggestions: sentinel})
			tick(m)
			if m.suggestions[0] != tasks.NoSuggestions || m.suggestions[1] != tasks.NoSuggestions {
				t.Fatalf("expected sentinel in both slots, got %v", m.suggestions)
			}
		}
		if m.seen.Contains(tasks.NoSuggestions) {
			t.Error("sentinel should not enter the seen set")
		}
	})

	t.Run("copies a suggestion", func(t *testing.T) {
		var copied string
		m := newTestModel(t, Options{Clipboard: func(s string) error { copied = s; return nil }})
		m.suggestions[1] = "Mind Games"

		cmd := update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}, Alt: true})
		for _, msg := range collect(cmd) {
			update(m, msg)
		}

		if copied != "Mind Games" {
			t.Fatalf("expected clipboard write, got %q", copied)
		}
		if len(m.dialogs) != 1 || m.dialogs[0].body != "'Mind Games' copied to clipboard!" {
			t.Errorf("unexpected dialogs %+v", m.dialogs)
		}
	})

	t.Run("ignores empty slots", func(t *testing.T) {
		m := newTestModel(t, Options{Clipboard: func(string) error { t.Fatal("clipboard should not be used"); return nil }})
		if cmd := update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}, Alt: true}); cmd != nil {
			t.Error("expected no command for an empty slot")
		}
	})
}

func TestModel_Submit(t *testing.T) {
	t.Run("validation fails without starting a worker", func(t *testing.T) {
		worker := &fakeWorker{}
		m := newTestModel(t, Options{Worker: worker})

		cmd := update(m, enter())

		if cmd != nil {
			t.Error("expected no command")
		}
		if m.running || m.Queue().Len() != 0 || worker.calls != 0 {
			t.Errorf("expected no run, running=%v queued=%d calls=%d", m.running, m.Queue().Len(), worker.calls)
		}
		if len(m.dialogs) != 1 || !m.dialogs[0].failed || !strings.Contains(m.dialogs[0].body, "song name is required") {
			t.Errorf("unexpected dialogs %+v", m.dialogs)
		}
	})

	t.Run("disables resubmission until enable_button", func(t *testing.T) {
		worker := &fakeWorker{}
		m := newTestModel(t, Options{Worker: worker})
		m.inputs[songField].SetValue("Imagine")

		if cmd := update(m, enter()); cmd == nil {
			t.Fatal("expected worker command")
		}
		if !m.running {
			t.Fatal("expected running after submit")
		}
		if !m.seen.Contains("imagine") {
			t.Error("expected query added to the seen set")
		}

		if cmd := update(m, enter()); cmd != nil {
			t.Fatal("expected second submit to be ignored")
		}

		m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindEnableButton})
		tick(m)

		if m.running {
			t.Fatal("expected submit re-enabled")
		}
		if cmd := update(m, enter()); cmd == nil {
			t.Error("expected a new run after enable_button")
		}
	})

	t.Run("late completion of an earlier run keeps the current run active", func(t *testing.T) {
		worker := &fakeWorker{}
		m := newTestModel(t, Options{Worker: worker})
		m.inputs[songField].SetValue("Imagine")

		if cmd := update(m, enter()); cmd == nil {
			t.Fatal("expected first run")
		}
		first := m.run
		m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindEnableButton})
		tick(m)

		if cmd := update(m, enter()); cmd == nil {
			t.Fatal("expected second run")
		}
		update(m, workerDoneMsg(first, nil))

		if !m.running {
			t.Fatal("expected second run to stay outstanding")
		}
		if cmd := update(m, enter()); cmd != nil {
			t.Error("expected third submit to be ignored")
		}

		update(m, workerDoneMsg(m.run, nil))
		if m.running {
			t.Error("expected current run completion to re-enable submit")
		}
	})

	t.Run("empty device folder fails validation", func(t *testing.T) {
		worker := &fakeWorker{}
		m := newTestModel(t, Options{Worker: worker})
		m.inputs[songField].SetValue("Imagine")
		m.inputs[deviceField].SetValue("")

		if cmd := update(m, enter()); cmd != nil {
			t.Error("expected no command")
		}
		if m.running || worker.calls != 0 {
			t.Errorf("expected no run, running=%v calls=%d", m.running, worker.calls)
		}
		if len(m.dialogs) != 1 || !m.dialogs[0].failed || !strings.Contains(m.dialogs[0].body, "device folder is required") {
			t.Errorf("unexpected dialogs %+v", m.dialogs)
		}
	})

	t.Run("worker output reaches the form", func(t *testing.T) {
		worker := &fakeWorker{}
		m := newTestModel(t, Options{Worker: worker})
		m.inputs[songField].SetValue("Imagine")

		for _, msg := range collect(update(m, enter())) {
			update(m, msg)
		}

		if worker.calls != 1 {
			t.Fatalf("expected one run, got %d", worker.calls)
		}
		if m.running {
			t.Error("expected enable_button applied once the worker finished")
		}
		if m.status != tasks.SearchingMessage {
			t.Errorf("unexpected status %q", m.status)
		}
	})

	t.Run("worker that emits nothing still re-enables", func(t *testing.T) {
		worker := &fakeWorker{err: shared.ErrServiceUnavailable}
		m := newTestModel(t, Options{Worker: worker})
		m.inputs[songField].SetValue("Imagine")

		for _, msg := range collect(update(m, enter())) {
			update(m, msg)
		}

		if m.running {
			t.Error("expected submit re-enabled")
		}
		if len(m.dialogs) != 1 || !m.dialogs[0].failed {
			t.Errorf("expected an error dialog, got %+v", m.dialogs)
		}
	})

	t.Run("full pipeline run", func(t *testing.T) {
		transferer := &tu.MockTransferer{}
		pipeline := tasks.NewPipeline(
			&tu.MockSuggester{Results: []string{"Jealous Guy", "Woman"}},
			&tu.MockDownloader{},
			transferer,
			tasks.Options{SuggestCount: 2},
		)
		m := newTestModel(t, Options{Worker: pipeline})
		m.inputs[songField].SetValue("Imagine")

		for _, msg := range collect(update(m, enter())) {
			update(m, msg)
		}

		if m.running {
			t.Error("expected submit re-enabled")
		}
		if m.suggestions[0] != "Jealous Guy" || m.suggestions[1] != "Woman" {
			t.Errorf("unexpected suggestions %v", m.suggestions)
		}
		if len(m.dialogs) != 1 || m.dialogs[0].body != "Song 'Imagine' successfully downloaded and transferred!" {
			t.Fatalf("unexpected dialogs %+v", m.dialogs)
		}
		tu.AssertFileExists(t, m.lastPath)
	})
}

func TestModel_Dialogs(t *testing.T) {
	m := newTestModel(t, Options{})
	m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindError, Message: "device unavailable"})
	m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindEnableButton})
	tick(m)

	if !strings.Contains(m.View(), "An error occurred: device unavailable") {
		t.Fatalf("expected dialog in view:\n%s", m.View())
	}

	m.inputs[songField].SetValue("Imagine")
	if cmd := update(m, enter()); cmd != nil {
		t.Fatal("enter should dismiss the dialog, not submit")
	}
	if len(m.dialogs) != 0 {
		t.Fatalf("expected dialog dismissed, %d left", len(m.dialogs))
	}
}

func TestModel_Notify(t *testing.T) {
	var titles []string
	m := newTestModel(t, Options{Notify: func(title, message string) error {
		titles = append(titles, title)
		return errors.New("no notification daemon")
	}})
	m.cfg.UI.Notify = true

	m.Queue().Put(tasks.ProgressUpdate{Kind: tasks.KindSuccess, Message: "done"})
	m.drain()[0]()

	if len(titles) != 1 || titles[0] != "songpush: Download complete" {
		t.Errorf("unexpected notifications %v", titles)
	}
}

func TestModel_History(t *testing.T) {
	d := models.NewDownload("Imagine", models.StatusCompleted)
	d.SetDevicePath("/sdcard/Music/Imagine.mp3")
	m := newTestModel(t, Options{History: &fakeHistory{downloads: []*models.Download{d}}})

	for _, msg := range collect(update(m, tea.KeyMsg{Type: tea.KeyCtrlR})) {
		update(m, msg)
	}

	if m.view != HistoryView {
		t.Fatalf("expected history view, got %v", m.view)
	}
	if got := len(m.history.Items()); got != 1 {
		t.Fatalf("expected 1 item, got %d", got)
	}

	update(m, enter())

	if m.view != FormView || m.inputs[songField].Value() != "Imagine" {
		t.Errorf("expected query reused, view=%v song=%q", m.view, m.inputs[songField].Value())
	}
}
