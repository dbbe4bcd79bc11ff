package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/marcin-skalski/pomo/internal/timer"
)

var (
	colorWork       = lipgloss.Color("203") // tomato
	colorShortBreak = lipgloss.Color("42")  // green
	colorLongBreak  = lipgloss.Color("33")  // blue
	colorMuted      = lipgloss.Color("240") // gray
	colorError      = lipgloss.Color("196") // red

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			PaddingLeft(1).
			PaddingRight(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginTop(1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder())

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Width(18)

	focusedLabelStyle = labelStyle.
				Bold(true).
				Foreground(lipgloss.Color("39"))

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 2).
			MarginTop(1)

	disabledButtonStyle = buttonStyle.
				Background(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			MarginTop(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

func phaseColor(p timer.Phase) lipgloss.Color {
	switch p {
	case timer.PhaseShortBreak:
		return colorShortBreak
	case timer.PhaseLongBreak:
		return colorLongBreak
	default:
		return colorWork
	}
}

func phaseIcon(p timer.Phase) string {
	switch p {
	case timer.PhaseWork:
		return "🍅"
	case timer.PhaseShortBreak:
		return "☕"
	case timer.PhaseLongBreak:
		return "🌴"
	default:
		return "❓"
	}
}
