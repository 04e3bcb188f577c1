package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songpush/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all application messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPollTick MsgKind = iota
	MsgWorkerDone
	MsgCopied
	MsgOpened
	MsgHistoryLoaded
)

// pollTickMsg is the constructor for [MsgPollTick]
func pollTickMsg() Msg {
	return Msg{kind: MsgPollTick}
}

type doneResult struct {
	run int
	err error
}

// workerDoneMsg is the constructor for [MsgWorkerDone]
func workerDoneMsg(run int, err error) Msg {
	return Msg{kind: MsgWorkerDone, data: doneResult{run, err}}
}

type copyResult struct {
	text string
	err  error
}

// copiedMsg is the constructor for [MsgCopied]
func copiedMsg(text string, err error) Msg {
	return Msg{kind: MsgCopied, data: copyResult{text, err}}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(err error) Msg {
	return Msg{kind: MsgOpened, data: err}
}

type historyResult struct {
	downloads []*models.Download
	err       error
}

// historyLoadedMsg is the constructor for [MsgHistoryLoaded]
func historyLoadedMsg(downloads []*models.Download, err error) Msg {
	return Msg{kind: MsgHistoryLoaded, data: historyResult{downloads, err}}
}

func errorData(msg Msg) error {
	if err, ok := msg.data.(error); ok {
		return err
	}
	return nil
}
