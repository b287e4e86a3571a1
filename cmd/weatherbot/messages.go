package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/weatherbot-go/weatherbot/pkg/core/agent"
	"github.com/weatherbot-go/weatherbot/pkg/core/dialog"
)

// updatesMsg carries one batch of transcript updates from the session.
type updatesMsg []dialog.DialogUpdate

// failureMsg carries a turn failure from the session.
type failureMsg struct {
	Failure *agent.Failure
}

// activityMsg reports whether the session is resolving an answer.
type activityMsg bool

// sessionClosedMsg is sent when a session channel closes.
type sessionClosedMsg struct{}

func waitForUpdates(ch <-chan []dialog.DialogUpdate) tea.Cmd {
	return func() tea.Msg {
		batch, ok := <-ch
		if !ok {
			return sessionClosedMsg{}
		}
		return updatesMsg(batch)
	}
}

func waitForFailure(ch <-chan *agent.Failure) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return sessionClosedMsg{}
		}
		return failureMsg{Failure: f}
	}
}

func waitForActivity(ch <-chan bool) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return sessionClosedMsg{}
		}
		return activityMsg(v)
	}
}
