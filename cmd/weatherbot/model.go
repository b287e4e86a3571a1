package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/weatherbot-go/weatherbot/pkg/core/agent"
	"github.com/weatherbot-go/weatherbot/pkg/core/dialog"
)

// model renders the two-slot transcript and the session state.
type model struct {
	session *dialog.Session

	listening bool
	busy      bool

	hasQuestion bool
	question    string
	hasAnswer   bool
	answer      agent.SpokenAnswer

	failureText string

	width  int
	height int
}

func newModel(session *dialog.Session) model {
	return model{session: session}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdates(m.session.Updates()),
		waitForFailure(m.session.Failures()),
		waitForActivity(m.session.Activity()),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.session.Close()
			return m, tea.Quit
		case " ":
			if m.listening {
				m.session.StopListening()
				m.listening = false
			} else {
				m.session.StartListening()
				m.listening = true
				m.failureText = ""
			}
			return m, nil
		case "s":
			m.session.StopListening()
			m.listening = false
			return m, nil
		}
		return m, nil

	case updatesMsg:
		// The batch tells us which slots changed; the session holds the
		// current values.
		m.question, m.hasQuestion = m.session.Question()
		m.answer, m.hasAnswer = m.session.Answer()
		return m, waitForUpdates(m.session.Updates())

	case failureMsg:
		m.failureText = msg.Failure.Message
		m.listening = false
		return m, waitForFailure(m.session.Failures())

	case activityMsg:
		m.busy = bool(msg)
		if m.busy {
			// Recognition is over once resolution starts.
			m.listening = false
		}
		return m, waitForActivity(m.session.Activity())

	case sessionClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("WeatherBot"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if m.hasQuestion {
		b.WriteString(questionStyle.Render("You: " + m.question))
		b.WriteString("\n")
	}
	if m.hasAnswer {
		b.WriteString(m.renderAnswer())
		b.WriteString("\n")
	}
	if m.failureText != "" {
		b.WriteString(failureStyle.Render(m.failureText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space: listen/stop  s: stop  q: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m model) statusLine() string {
	switch {
	case m.listening:
		return listeningDotStyle.Render("● listening")
	case m.busy:
		return busyStyle.Render("… thinking")
	default:
		return idleDotStyle.Render("○ idle")
	}
}

// renderAnswer highlights the part of the answer currently being spoken.
func (m model) renderAnswer() string {
	summary := m.answer.Answer.Summary
	spoken := summary.SpokenText()
	r := m.answer.Range

	var text string
	if r.Start >= 0 && r.Start+r.Length <= len(spoken) && r.Length > 0 {
		text = answerStyle.Render(spoken[:r.Start]) +
			spokenStyle.Render(spoken[r.Start:r.Start+r.Length]) +
			answerStyle.Render(spoken[r.Start+r.Length:])
	} else {
		text = answerStyle.Render(spoken)
	}

	header := "Bot"
	if icon := m.answer.Answer.Icon; icon != "" {
		header = fmt.Sprintf("Bot [%s]", icon)
	}
	return answerTitleStyle.Render(header+": ") + text
}
