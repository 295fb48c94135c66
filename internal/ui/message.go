package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/listing"
	"github.com/desertthunder/shelf/internal/session"
)

// MsgKind enumerates the application-level messages.
type MsgKind int

// Msg represents application-level messages in the TUI (Elm-style message union). Screen-specific results travel
// as [scopedMsg] instead.
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLocationChanged MsgKind = iota
	MsgNotice
	MsgSessionEvent
	MsgConfirm
)

// NoticeKind selects the style of a notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

type notice struct {
	kind  NoticeKind
	title string
	text  string
}

type confirmation struct {
	prompt string
	onYes  tea.Cmd
}

// locationChangedMsg is the constructor for [MsgLocationChanged]
func locationChangedMsg() Msg { return Msg{kind: MsgLocationChanged} }

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(kind NoticeKind, title, text string) Msg {
	return Msg{kind: MsgNotice, data: notice{kind: kind, title: title, text: text}}
}

// sessionEventMsg is the constructor for [MsgSessionEvent]
func sessionEventMsg(ev session.Event) Msg { return Msg{kind: MsgSessionEvent, data: ev} }

// confirmMsg is the constructor for [MsgConfirm]
func confirmMsg(prompt string, onYes tea.Cmd) Msg {
	return Msg{kind: MsgConfirm, data: confirmation{prompt: prompt, onYes: onYes}}
}

func notify(kind NoticeKind, title, text string) tea.Cmd {
	return func() tea.Msg { return noticeMsg(kind, title, text) }
}

func succeeded(text string) tea.Cmd { return notify(NoticeSuccess, "Success", text) }

func failed(text string, err error) tea.Cmd {
	return notify(NoticeError, text, err.Error())
}

func confirm(prompt string, onYes tea.Cmd) tea.Cmd {
	return func() tea.Msg { return confirmMsg(prompt, onYes) }
}

// queuedMsg is a [Msg] posted from a background goroutine through the model's event queue.
type queuedMsg struct{ Msg }

// scopedMsg carries a screen's async result. It is dropped if the screen has been replaced.
type scopedMsg struct {
	scope uint64
	msg   tea.Msg
}

// scope tags commands issued by one screen instance.
type scope uint64

func (s scope) do(fn func() tea.Msg) tea.Cmd {
	return func() tea.Msg { return scopedMsg{scope: uint64(s), msg: fn()} }
}

// snapshotMsg delivers a synchronizer update to the screen that owns it.
type snapshotMsg[R any] struct {
	snap listing.Snapshot[R]
}

// loadedMsg is the result of a one-shot fetch.
type loadedMsg[T any] struct {
	data T
	err  error
}

// doneMsg reports a completed mutation. Screens reload on it.
type doneMsg struct {
	action string
	err    error
}
