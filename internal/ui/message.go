package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/marquee/internal/store"
	"github.com/desertthunder/marquee/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStateChanged MsgKind = iota
	MsgProgressUpdate
	MsgPrefetchComplete
	MsgRequestDone
)

type prefetchOutcome struct {
	result *tasks.PrefetchResult
	err    error
}

type requestOutcome struct {
	op  string
	err error
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg(st store.State) Msg {
	return Msg{kind: MsgStateChanged, data: st}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// prefetchCompleteMsg is the constructor for [MsgPrefetchComplete]
func prefetchCompleteMsg(result *tasks.PrefetchResult, err error) Msg {
	return Msg{kind: MsgPrefetchComplete, data: prefetchOutcome{result, err}}
}

// requestDoneMsg is the constructor for [MsgRequestDone]
func requestDoneMsg(op string, err error) Msg {
	return Msg{kind: MsgRequestDone, data: requestOutcome{op, err}}
}
