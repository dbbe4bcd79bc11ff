package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcin-skalski/pomo/internal/auth"
	"github.com/marcin-skalski/pomo/internal/timer"
	"github.com/mattn/go-runewidth"
)

const maxHistoryRows = 10

func renderTimer(snap Snapshot, notice string, width int) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("pomo │ %d today │ %d this run",
		countToday(snap), snap.CompletedCycles)))
	b.WriteString("\n\n")

	b.WriteString(renderTabs(snap.Phase))
	b.WriteString("\n")

	color := phaseColor(snap.Phase)
	clock := clockStyle.BorderForeground(color).Foreground(color).
		Render(FormatClock(snap.SecondsRemaining))
	b.WriteString(clock)
	b.WriteString("\n")

	status := "⏸  paused"
	if snap.Running {
		status = "▶  running"
	}
	b.WriteString(fmt.Sprintf("%s │ Cycle: %d / %d", status, snap.CycleInRound, snap.CyclesPerRound))
	if snap.TaskID != nil {
		b.WriteString(fmt.Sprintf(" │ Task #%d", *snap.TaskID))
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render(fmt.Sprintf("📋 Your sessions (%d)", len(snap.History))))
	b.WriteString("\n")
	b.WriteString(renderHistory(snap, width))

	if msg := firstNonEmpty(snap.LastError, notice); msg != "" {
		b.WriteString(errorStyle.Render("⚠ " + msg))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render("space/s: start-pause │ r: reset │ 1/2/3: switch phase │ L: log out │ q: quit"))
	return b.String()
}

func renderTabs(active timer.Phase) string {
	tabs := make([]string, 0, len(timer.Phases))
	for i, p := range timer.Phases {
		label := fmt.Sprintf("%d %s %s", i+1, phaseIcon(p), p.Label())
		style := tabStyle
		if p == active {
			style = style.Bold(true).Foreground(lipgloss.Color("230")).Background(phaseColor(p))
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderHistory(snap Snapshot, width int) string {
	if !snap.HistoryLoaded && len(snap.History) == 0 {
		return emptyStyle.Render("  (loading...)") + "\n"
	}
	if len(snap.History) == 0 {
		return emptyStyle.Render("  (no sessions yet)") + "\n"
	}

	limit := width - 4
	if limit < 20 {
		limit = 60
	}

	var b strings.Builder
	for i, s := range snap.History {
		if i == maxHistoryRows {
			b.WriteString(emptyStyle.Render(fmt.Sprintf("  … %d more", len(snap.History)-maxHistoryRows)))
			b.WriteString("\n")
			break
		}
		line := fmt.Sprintf("• %s — %d min", s.Start.Local().Format("2006-01-02 15:04"), s.Duration)
		if runewidth.StringWidth(line) > limit {
			line = runewidth.Truncate(line, limit, "…")
		}
		b.WriteString(historyStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func renderForm(f form, help string) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("pomo │ " + f.title()))
	b.WriteString("\n\n")

	for i, in := range f.inputs {
		label := labelStyle
		if i == f.focus {
			label = focusedLabelStyle
		}
		b.WriteString(label.Render(f.labels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	switch {
	case f.busy && f.kind == auth.FormRegister:
		b.WriteString(disabledButtonStyle.Render("Registering..."))
	case f.busy:
		b.WriteString(disabledButtonStyle.Render("Signing in..."))
	default:
		b.WriteString(buttonStyle.Render(f.title()))
	}
	b.WriteString("\n")

	if f.err != "" {
		b.WriteString(errorStyle.Render("⚠ " + f.err))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(help))
	return b.String()
}

// FormatClock renders seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func countToday(snap Snapshot) int {
	y, m, d := snap.Timestamp.Local().Date()
	n := 0
	for _, s := range snap.History {
		sy, sm, sd := s.Start.Local().Date()
		if sy == y && sm == m && sd == d {
			n++
		}
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
