package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time

func waitTick(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// startScan returns the scan command, or nil when one is already running.
func (m *MainModel) startScan() tea.Cmd {
	if m.scanning || m.scan == nil {
		return nil
	}
	m.scanning = true
	return m.refreshPorts()
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		var cmd tea.Cmd
		if m.state == stateList && !m.quitting && m.pendingAction == actionNone {
			cmd = m.startScan()
		}
		return m, tea.Batch(cmd, waitTick(m.interval))

	case scanMsg:
		m.scanning = false
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("refresh failed")
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.ports = msg.ports
		m.applyFilter()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 4
		m.viewport.Width = max(0, msg.Width-6)
		m.viewport.Height = m.visibleRows() + 1
		m.scroll.clamp(len(m.filtered), m.visibleRows())
		if m.state == stateDetail {
			m.updateDetailViewport()
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch {
		case m.input.Focused():
			return m.updateFilter(msg)
		case m.pendingAction != actionNone:
			return m.updateConfirm(msg)
		case m.state == stateDetail:
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m MainModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = "" // clear any transient error on interaction
	n, visible := len(m.filtered), m.visibleRows()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.scroll.move(-1, n, visible)
	case key.Matches(msg, m.keys.Down):
		m.scroll.move(1, n, visible)
	case key.Matches(msg, m.keys.PageUp):
		m.scroll.move(-visible, n, visible)
	case key.Matches(msg, m.keys.PageDown):
		m.scroll.move(visible, n, visible)
	case key.Matches(msg, m.keys.Home):
		m.scroll.top(n, visible)
	case key.Matches(msg, m.keys.End):
		m.scroll.bottom(n, visible)
	case key.Matches(msg, m.keys.Left):
		m.xOffset = max(0, m.xOffset-4)
	case key.Matches(msg, m.keys.Right):
		m.xOffset += 4
	case key.Matches(msg, m.keys.Filter):
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Sort):
		m.sortKey = m.sortKey.Next()
		m.applyFilter()
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.startScan()
		if cmd == nil {
			m.statusMsg = "Scan already in progress"
		}
		return m, cmd
	case key.Matches(msg, m.keys.Term), key.Matches(msg, m.keys.Kill):
		if p, ok := m.selected(); ok {
			m.pendingAction = actionTerm
			if key.Matches(msg, m.keys.Kill) {
				m.pendingAction = actionKill
			}
			m.pendingTarget = p
		}
	case key.Matches(msg, m.keys.Favorite):
		m.toggleSelectedFavorite()
	case key.Matches(msg, m.keys.Detail):
		if _, ok := m.selected(); ok {
			m.state = stateDetail
			m.updateDetailViewport()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.scroll.clamp(n, m.visibleRows())
	}
	return m, nil
}

func (m MainModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.SetValue("")
		m.input.Blur()
		m.applyFilter()
		return m, nil
	case "enter":
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.applyFilter()
	return m, tea.Batch(cmd, textinput.Blink)
}

func (m MainModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action, target := m.pendingAction, m.pendingTarget
		m.pendingAction = actionNone
		if err := m.signal(target.PID, action); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
			return m, nil
		}
		m.log.WithField("pid", target.PID).WithField("port", target.Port).Info("signal sent")
		m.statusMsg = fmt.Sprintf("Signal sent to PID %d", target.PID)
		return m, m.startScan()
	case "n", "N", "esc", "q":
		m.pendingAction = actionNone
	}
	return m, nil
}

func (m MainModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), msg.String() == "backspace":
		m.state = stateList
		return m, nil
	case key.Matches(msg, m.keys.Term), key.Matches(msg, m.keys.Kill):
		if p, ok := m.selected(); ok {
			m.pendingAction = actionTerm
			if key.Matches(msg, m.keys.Kill) {
				m.pendingAction = actionKill
			}
			m.pendingTarget = p
			m.state = stateList
		}
		return m, nil
	case key.Matches(msg, m.keys.Favorite):
		m.toggleSelectedFavorite()
		m.updateDetailViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *MainModel) toggleSelectedFavorite() {
	p, ok := m.selected()
	if !ok {
		return
	}
	on := !m.favorites[p.Port]
	if m.toggleFavorite != nil {
		var err error
		if on, err = m.toggleFavorite(int(p.Port)); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
			return
		}
	}
	if on {
		m.favorites[p.Port] = true
		m.statusMsg = fmt.Sprintf("Port %d added to favorites", p.Port)
	} else {
		delete(m.favorites, p.Port)
		m.statusMsg = fmt.Sprintf("Port %d removed from favorites", p.Port)
	}
}
