package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/songpush/internal/models"
	"github.com/desertthunder/songpush/internal/shared"
	"github.com/desertthunder/songpush/internal/tasks"
	"github.com/gen2brain/beeep"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	PickerView
	HistoryView
)

const (
	songField = iota
	outputField
	deviceField
	fieldCount
)

const appName = "songpush"

var fieldLabels = [fieldCount]string{"Song name", "Output folder", "Device folder"}

// Worker runs one submission, writing its progress into sink.
type Worker interface {
	Run(ctx context.Context, req models.Request, sink tasks.Sink) (*tasks.Result, error)
}

// HistorySource lists previous downloads.
type HistorySource interface {
	List(criteria map[string]any) ([]*models.Download, error)
}

// Options carries the collaborators of a [Model]. Nil fields get working defaults.
type Options struct {
	Worker    Worker
	Queue     *tasks.Queue
	Seen      *models.SeenSet
	History   HistorySource
	Logger    *log.Logger
	Clipboard func(text string) error
	Notify    func(title, message string) error
	Open      func(path string) error
}

type dialog struct {
	title  string
	body   string
	failed bool
}

// Model is the single-window download form.
type Model struct {
	ctx       context.Context
	cfg       *shared.Config
	view      ViewState
	worker    Worker
	queue     *tasks.Queue
	seen      *models.SeenSet
	historyDB HistorySource
	logger    *log.Logger
	clipboard func(string) error
	notify    func(string, string) error
	open      func(string) error

	inputs      [fieldCount]textinput.Model
	focus       int
	picker      filepicker.Model
	history     list.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	interval    time.Duration
	running     bool
	run         int
	status      string
	suggestions [tasks.SuggestionSlots]string
	dialogs     []dialog
	lastPath    string
}

// NewModel creates the form, prefilled from cfg.
func NewModel(ctx context.Context, cfg *shared.Config, opts Options) *Model {
	if cfg == nil {
		cfg = shared.DefaultConfig()
	}

	m := &Model{
		ctx:       ctx,
		cfg:       cfg,
		view:      FormView,
		worker:    opts.Worker,
		queue:     opts.Queue,
		seen:      opts.Seen,
		historyDB: opts.History,
		logger:    opts.Logger,
		clipboard: opts.Clipboard,
		notify:    opts.Notify,
		open:      opts.Open,
		help:      help.New(),
		keys:      newKeyMap(),
		interval:  cfg.PollInterval(),
	}

	if m.queue == nil {
		m.queue = tasks.NewQueue()
	}
	if m.seen == nil {
		m.seen = models.NewSeenSet()
	}
	if m.logger == nil {
		m.logger = shared.NewLogger(io.Discard)
	}
	if m.clipboard == nil {
		m.clipboard = clipboard.WriteAll
	}
	if m.notify == nil {
		m.notify = func(title, message string) error { return beeep.Notify(title, message, "") }
	}
	if m.open == nil {
		m.open = shared.OpenPath
	}
	if m.interval <= 0 {
		m.interval = 100 * time.Millisecond
	}

	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Width = 48
		m.inputs[i] = in
	}
	m.inputs[songField].Placeholder = "Artist - Title"
	m.inputs[outputField].Placeholder = "~/Music"
	m.inputs[outputField].SetValue(cfg.Output.LocalDir)
	m.inputs[deviceField].Placeholder = models.DefaultDeviceDir
	deviceDir := cfg.Output.DeviceDir
	if deviceDir == "" {
		deviceDir = models.DefaultDeviceDir
	}
	m.inputs[deviceField].SetValue(deviceDir)
	m.inputs[songField].Focus()

	m.picker = filepicker.New()
	m.picker.DirAllowed = true
	m.picker.FileAllowed = false

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok))
	m.history = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.history.Title = "Recent downloads"
	return m
}

// Queue returns the queue the worker writes to and the pump drains.
func (m *Model) Queue() *tasks.Queue { return m.queue }

// Init starts the cursor blink and the queue pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.poll())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.SetSize(msg.Width-4, msg.Height-6)
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if len(m.dialogs) > 0 {
			return m.handleDialogKeys(msg)
		}
		switch m.view {
		case PickerView:
			return m.handlePicker(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		default:
			return m.handleFormKeys(msg)
		}
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPollTick:
		cmds := m.drain()
		return m, tea.Batch(append(cmds, m.poll())...)

	case MsgWorkerDone:
		cmds := m.drain()
		res := msg.data.(doneResult)
		err := res.err
		if res.run != m.run {
			m.logger.Debug("ignoring stale worker", "run", res.run, "current", m.run)
			return m, tea.Batch(cmds...)
		}
		if m.running {
			m.running = false
			if err != nil {
				m.pushDialog(errorDialog(err.Error()))
			}
		}
		if err != nil {
			m.logger.Debug("worker finished", "error", err)
		}
		return m, tea.Batch(cmds...)

	case MsgCopied:
		res := msg.data.(copyResult)
		if res.err != nil {
			m.pushDialog(errorDialog(res.err.Error()))
		} else {
			m.pushDialog(dialog{title: "Copied", body: fmt.Sprintf("'%s' copied to clipboard!", res.text)})
		}

	case MsgOpened:
		if err := errorData(msg); err != nil {
			m.pushDialog(errorDialog(err.Error()))
		}

	case MsgHistoryLoaded:
		res := msg.data.(historyResult)
		if res.err != nil {
			m.view = FormView
			m.pushDialog(errorDialog(res.err.Error()))
			return m, nil
		}
		return m, m.history.SetItems(downloadItems(res.downloads))
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case PickerView:
		body = m.renderPicker()
	case HistoryView:
		body = m.renderHistory()
	default:
		body = m.renderForm()
	}

	if len(m.dialogs) > 0 {
		body += "\n" + m.renderDialog(m.dialogs[0])
	}
	return body
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		return m, m.focusField((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.prev):
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case key.Matches(msg, m.keys.submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.browse):
		return m, m.browse()
	case key.Matches(msg, m.keys.copy1):
		return m, m.copySuggestion(0)
	case key.Matches(msg, m.keys.copy2):
		return m, m.copySuggestion(1)
	case key.Matches(msg, m.keys.open):
		return m, m.openFolder()
	case key.Matches(msg, m.keys.history):
		return m, m.loadHistory()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleDialogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.dismiss) {
		m.dialogs = m.dialogs[1:]
	}
	return m, nil
}

func (m *Model) handlePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.back) {
		m.view = FormView
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.inputs[outputField].SetValue(path)
		m.view = FormView
	}
	return m, cmd
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.history.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc":
			m.view = FormView
			return m, nil
		case "enter":
			if item, ok := m.history.SelectedItem().(downloadItem); ok {
				m.inputs[songField].SetValue(item.download.Query())
				m.view = FormView
				return m, m.focusField(songField)
			}
		}
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PickerView:
		return m.handlePicker(msg)
	case HistoryView:
		m.history, cmd = m.history.Update(msg)
	default:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return m, cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// submit validates the form and starts the worker. It does nothing while a run is outstanding.
func (m *Model) submit() tea.Cmd {
	if m.running {
		return nil
	}

	req := models.NewRequest(
		m.inputs[songField].Value(),
		m.inputs[outputField].Value(),
		m.inputs[deviceField].Value(),
	)
	if err := req.Validate(); err != nil {
		m.pushDialog(dialog{title: "Missing input", body: err.Error(), failed: true})
		return nil
	}
	if m.worker == nil {
		m.pushDialog(errorDialog("no download pipeline configured"))
		return nil
	}

	m.running = true
	m.run++
	m.seen.Add(req.Query)
	m.logger.Info("submitting", "query", req.Query, "output", req.OutputDir, "device", req.DeviceDir)

	worker, ctx, queue, id := m.worker, m.ctx, m.queue, m.run
	run := func() tea.Msg {
		_, err := worker.Run(ctx, req, queue)
		return workerDoneMsg(id, err)
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) poll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return pollTickMsg() })
}

// drain applies every queued update in FIFO order and returns follow-up commands.
func (m *Model) drain() []tea.Cmd {
	var cmds []tea.Cmd
	for {
		update, ok := m.queue.TryGet()
		if !ok {
			return cmds
		}
		if cmd := m.apply(update); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
}

func (m *Model) apply(update tasks.ProgressUpdate) (cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("failed to apply update", "kind", update.Kind, "panic", r)
			cmd = nil
		}
	}()

	switch update.Kind {
	case tasks.KindStatus:
		m.status = update.Message
	case tasks.KindSimilar:
		m.showSuggestions(update.Suggestions)
	case tasks.KindSuccess:
		m.status = ""
		if path, ok := update.Data.(string); ok {
			m.lastPath = path
		}
		m.pushDialog(dialog{title: "Success", body: update.Message})
		return m.notifyCmd("Download complete", update.Message)
	case tasks.KindError:
		m.status = ""
		d := errorDialog(update.Message)
		m.pushDialog(d)
		return m.notifyCmd("Download failed", d.body)
	case tasks.KindEnableButton:
		m.running = false
	}
	return nil
}

// showSuggestions fills the suggestion slots with values the user has not seen yet.
func (m *Model) showSuggestions(values []string) {
	shown := values
	if !isSentinel(values) {
		shown = m.seen.Filter(values, tasks.SuggestionSlots)
		m.seen.Add(shown...)
	}
	for i := range m.suggestions {
		m.suggestions[i] = ""
		if i < len(shown) {
			m.suggestions[i] = shown[i]
		}
	}
}

func isSentinel(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v != tasks.NoSuggestions {
			return false
		}
	}
	return true
}

func (m *Model) pushDialog(d dialog) {
	m.dialogs = append(m.dialogs, d)
}

func errorDialog(message string) dialog {
	return dialog{title: "Error", body: fmt.Sprintf("An error occurred: %s", message), failed: true}
}

func (m *Model) notifyCmd(title, message string) tea.Cmd {
	if !m.cfg.UI.Notify {
		return nil
	}
	notify, logger := m.notify, m.logger
	return func() tea.Msg {
		if err := notify(fmt.Sprintf("%s: %s", appName, title), message); err != nil {
			logger.Warn("desktop notification failed", "error", err)
		}
		return nil
	}
}

func (m *Model) copySuggestion(slot int) tea.Cmd {
	text := m.suggestions[slot]
	if text == "" || text == tasks.NoSuggestions {
		return nil
	}
	write := m.clipboard
	return func() tea.Msg {
		return copiedMsg(text, write(text))
	}
}

func (m *Model) openFolder() tea.Cmd {
	target := strings.TrimSpace(m.inputs[outputField].Value())
	if m.lastPath != "" {
		target = filepath.Dir(m.lastPath)
	}
	if target == "" {
		m.pushDialog(errorDialog("choose an output folder first"))
		return nil
	}
	open := m.open
	return func() tea.Msg {
		return openedMsg(open(target))
	}
}

func (m *Model) browse() tea.Cmd {
	dir := strings.TrimSpace(m.inputs[outputField].Value())
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	m.picker.CurrentDirectory = dir
	m.view = PickerView
	return m.picker.Init()
}

func (m *Model) loadHistory() tea.Cmd {
	if m.historyDB == nil {
		m.pushDialog(errorDialog("download history is not available"))
		return nil
	}
	m.view = HistoryView
	src := m.historyDB
	return func() tea.Msg {
		downloads, err := src.List(map[string]any{"limit": 50})
		return historyLoadedMsg(downloads, err)
	}
}

func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("songpush"))
	b.WriteString("\n")

	for i := range m.inputs {
		label := styles.label.Render(fieldLabels[i])
		if i == m.focus {
			label = styles.focused.Render(fieldLabels[i])
		}
		fmt.Fprintf(&b, "%s %s\n", label, m.inputs[i].View())
	}

	b.WriteString("\n")
	for i, s := range m.suggestions {
		if s == "" {
			s = "None"
		}
		fmt.Fprintf(&b, "Similar %d: %s\n", i+1, s)
	}

	b.WriteString("\n")
	switch {
	case m.running && m.status != "":
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.status)
	case m.running:
		fmt.Fprintf(&b, "%s\n", m.spinner.View())
	case m.status != "":
		fmt.Fprintf(&b, "%s\n", m.status)
	default:
		b.WriteString(styles.help.Render("Ready") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPicker() string {
	title := styles.title.Render("Choose an output folder")
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		m.keys.back,
	})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, m.picker.CurrentDirectory, m.picker.View(), helpView)
}

func (m *Model) renderHistory() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "reuse query")),
		m.keys.back,
	})
	return fmt.Sprintf("%s\n\n%s", m.history.View(), helpView)
}

func (m *Model) renderDialog(d dialog) string {
	title := styles.ok.Render(d.title)
	if d.failed {
		title = styles.err.Render(d.title)
	}
	footer := styles.help.Render("enter to dismiss")
	if n := len(m.dialogs) - 1; n > 0 {
		footer = styles.help.Render(fmt.Sprintf("enter to dismiss (%d more)", n))
	}
	return styles.dialog.Render(fmt.Sprintf("%s\n\n%s\n\n%s", title, d.body, footer))
}
