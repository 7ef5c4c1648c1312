package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// chromeLines is everything around the record rows: outer border (2),
// title, blank line, column header, footer border, status and one help line.
const chromeLines = 8

func (m MainModel) visibleRows() int {
	chrome := chromeLines
	if m.help.ShowAll {
		chrome += len(m.keys.FullHelp()[0]) - 1
	}
	return max(1, m.height-chrome)
}

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(max(0, m.width-2)).
		Height(max(0, m.height-2)).
		Padding(0, 1)
	contentWidth := max(0, m.width-4)

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("lsport"),
		countStyle.Render(fmt.Sprintf("%d/%d", len(m.filtered), len(m.ports))),
		sortStyle.Render("sort: "+string(m.sortKey)),
	)
	if m.scanning {
		header += " scanning..."
	}

	var body string
	if m.state == stateDetail {
		body = m.viewport.View()
	} else {
		body = m.listView(contentWidth)
	}

	footer := footerStyle.Width(contentWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, m.statusLine(), m.help.View(m.keys)),
	)

	return outerStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(1).Render(""),
			body,
			footer,
		),
	)
}

func (m MainModel) listView(width int) string {
	visible := m.visibleRows()
	lines := make([]string, 0, visible+1)
	lines = append(lines, tableHeaderStyle.Render(hscroll(headerLine(), m.xOffset, width)))

	end := min(len(m.filtered), m.scroll.offset+visible)
	for i := m.scroll.offset; i < end; i++ {
		p := m.filtered[i]
		line := hscroll(m.rowLine(p), m.xOffset, width)
		switch {
		case i == m.scroll.cursor:
			line = selectedStyle.Render(line + strings.Repeat(" ", max(0, width-lipgloss.Width(line))))
		case m.favorites[p.Port]:
			line = favoriteStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(m.filtered) == 0 {
		lines = append(lines, "No listening ports.")
	}

	return lipgloss.NewStyle().Height(visible + 1).Render(strings.Join(lines, "\n"))
}

func (m MainModel) statusLine() string {
	switch {
	case m.pendingAction == actionTerm:
		return confirmStyle.Render(fmt.Sprintf("Terminate %s (PID %d) on port %d? [y]es / [n]o",
			dash(m.pendingTarget.Process), m.pendingTarget.PID, m.pendingTarget.Port))
	case m.pendingAction == actionKill:
		return confirmStyle.Render(fmt.Sprintf("Kill %s (PID %d) on port %d? [y]es / [n]o",
			dash(m.pendingTarget.Process), m.pendingTarget.PID, m.pendingTarget.Port))
	case m.input.Focused():
		return m.input.View()
	case m.statusMsg != "":
		return errorStyle.Render(m.statusMsg)
	case m.input.Value() != "":
		return m.input.View()
	case m.state == stateDetail:
		return "Detail: Esc/q back | x/X signal | f favorite"
	}

	status := "Mode: Navigation (Press / to filter)"
	if m.version != "" {
		gap := m.width - 6 - lipgloss.Width(status) - lipgloss.Width(m.version)
		if gap > 0 {
			status += strings.Repeat(" ", gap) + m.version
		}
	}
	return status
}
