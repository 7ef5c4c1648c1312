package tui

import tea "github.com/charmbracelet/bubbletea"

// listTop is the screen row of the first record: border, title, blank
// line and column header come before it.
const listTop = 4

// rowAtY returns the index into filtered under screen row y, or -1.
func (m MainModel) rowAtY(y int) int {
	i := m.scroll.offset + y - listTop
	if y < listTop || i >= len(m.filtered) || i >= m.scroll.offset+m.visibleRows() {
		return -1
	}
	return i
}

func (m MainModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.state != stateList || m.pendingAction != actionNone {
		return m, nil
	}
	n, visible := len(m.filtered), m.visibleRows()

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll.move(-1, n, visible)
	case tea.MouseButtonWheelDown:
		m.scroll.move(1, n, visible)
	case tea.MouseButtonWheelLeft:
		m.xOffset = max(0, m.xOffset-4)
	case tea.MouseButtonWheelRight:
		m.xOffset += 4
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		if msg.Y == listTop-1 {
			m.sortKey = m.sortKey.Next()
			m.applyFilter()
			return m, nil
		}
		if i := m.rowAtY(msg.Y); i >= 0 {
			m.scroll.cursor = i
			m.scroll.clamp(n, visible)
		}
	}
	return m, nil
}
