package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
	"github.com/pranshuparmar/lsport/internal/output"
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/sahilm/fuzzy"
)

type scanMsg struct {
	ports []model.PortInfo
	err   error
}

func (m MainModel) refreshPorts() tea.Cmd {
	scan := m.scan
	return func() tea.Msg {
		if scan == nil {
			return scanMsg{}
		}
		ports, err := scan()
		return scanMsg{ports: ports, err: err}
	}
}

// searchSource exposes records to fuzzy matching.
type searchSource []model.PortInfo

func (s searchSource) String(i int) string {
	p := s[i]
	return fmt.Sprintf("%d %d %s %s %s %s", p.Port, p.PID, p.User, p.Process, p.Service, p.Command)
}

func (s searchSource) Len() int { return len(s) }

// applyFilter rebuilds the visible list from the last scan, keeping the
// selected record selected when it survives.
func (m *MainModel) applyFilter() {
	var selected *model.PortKey
	if len(m.filtered) > 0 && m.scroll.cursor < len(m.filtered) {
		k := m.filtered[m.scroll.cursor].Key()
		selected = &k
	}

	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.filtered = append([]model.PortInfo(nil), m.ports...)
	} else {
		matches := fuzzy.FindFrom(query, searchSource(m.ports))
		idx := make([]int, len(matches))
		for i, match := range matches {
			idx[i] = match.Index
		}
		// keep scan order; ranking would reshuffle rows on every refresh
		sort.Ints(idx)
		m.filtered = make([]model.PortInfo, len(idx))
		for i, j := range idx {
			m.filtered[i] = m.ports[j]
		}
	}
	output.Sort(m.filtered, m.sortKey)

	if selected != nil {
		for i, p := range m.filtered {
			if p.Key() == *selected {
				m.scroll.cursor = i
				break
			}
		}
	}
	m.scroll.clamp(len(m.filtered), m.visibleRows())
}

func (m MainModel) selected() (model.PortInfo, bool) {
	if len(m.filtered) == 0 {
		return model.PortInfo{}, false
	}
	return m.filtered[m.scroll.cursor], true
}

type column struct {
	title string
	width int
}

var listColumns = []column{
	{"", 1},
	{"PORT", 6},
	{"PID", 8},
	{"USER", 10},
	{"PROCESS", 16},
	{"SERVICE", 12},
	{"HOST", 16},
	{"CWD", 24},
	{"COMMAND", 0},
}

func formatRow(cells []string) string {
	var b strings.Builder
	for i, c := range listColumns {
		if i > 0 {
			b.WriteString(" ")
		}
		if c.width == 0 {
			b.WriteString(cells[i])
			continue
		}
		cell := truncate.StringWithTail(cells[i], uint(c.width), "…")
		b.WriteString(cell)
		if pad := c.width - lipgloss.Width(cell); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	return b.String()
}

func headerLine() string {
	cells := make([]string, len(listColumns))
	for i, c := range listColumns {
		cells[i] = c.title
	}
	return formatRow(cells)
}

func (m MainModel) rowLine(p model.PortInfo) string {
	mark := " "
	if m.favorites[p.Port] {
		mark = "★"
	}
	host := p.Host
	if p.IPv6 {
		host = "[" + host + "]"
	}
	return formatRow([]string{
		mark,
		strconv.Itoa(int(p.Port)),
		strconv.Itoa(p.PID),
		dash(p.User),
		dash(p.Process),
		dash(p.Service),
		host,
		dash(p.Cwd),
		dash(p.Command),
	})
}

// hscroll drops the first offset cells of line and bounds it to width.
func hscroll(line string, offset, width int) string {
	r := []rune(line)
	if offset >= len(r) {
		return ""
	}
	return truncate.String(string(r[offset:]), uint(max(0, width)))
}

// dash renders a free-form field on a single line, "-" when empty.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return output.Printable(s)
}

func (m *MainModel) updateDetailViewport() {
	p, ok := m.selected()
	if !ok {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	field := func(name, value string) {
		fmt.Fprintf(&b, "%s %s\n", tableHeaderStyle.Render(fmt.Sprintf("%-12s", name)), value)
	}
	field("Port", strconv.Itoa(int(p.Port)))
	field("Address", p.Host)
	field("IPv6", strconv.FormatBool(p.IPv6))
	field("Privileged", strconv.FormatBool(p.Privileged))
	field("Service", dash(p.Service))
	field("Inode", strconv.FormatUint(p.Inode, 10))
	field("PID", strconv.Itoa(p.PID))
	field("Process", dash(p.Process))
	field("User", dash(p.User))
	field("Cwd", dash(p.Cwd))
	field("Favorite", strconv.FormatBool(m.favorites[p.Port]))
	b.WriteString("\n")
	b.WriteString(tableHeaderStyle.Render("Command") + "\n")
	b.WriteString(wrap.String(dash(p.Command), max(10, m.viewport.Width-2)))

	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}
