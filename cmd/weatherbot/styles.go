package main

import "github.com/charmbracelet/lipgloss"

var (
	colorRed    = lipgloss.Color("#FF5555")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorGray   = lipgloss.Color("#666666")
	colorWhite  = lipgloss.Color("#F8F8F2")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	listeningDotStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	idleDotStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	busyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	questionStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	answerTitleStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	spokenStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true).
			Underline(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)
