package ui

import (
	tea "github.com/charmbracelet/bubbletea"
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
	MsgSearchChanged MsgKind = iota
	MsgSessionChanged
	MsgLoginResult
	MsgInitialized
)

// searchChangedMsg is the constructor for [MsgSearchChanged]
func searchChangedMsg() Msg {
	return Msg{kind: MsgSearchChanged}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]. expired is set when the change was a
// session expiry that has not been handled yet.
func sessionChangedMsg(expired bool) Msg {
	return Msg{kind: MsgSessionChanged, data: expired}
}

// loginResultMsg is the constructor for [MsgLoginResult]
func loginResultMsg(err error) Msg {
	return Msg{kind: MsgLoginResult, data: err}
}

// initializedMsg is the constructor for [MsgInitialized]
func initializedMsg(err error) Msg {
	return Msg{kind: MsgInitialized, data: err}
}

func (m Msg) err() error {
	err, _ := m.data.(error)
	return err
}
