package tui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pranshuparmar/lsport/internal/output"
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/sirupsen/logrus"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#767676")). // Dimmed Gray
			Padding(0, 1)

	sortStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
			Background(lipgloss.Color("#5f00d7"))  // Purple

	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffdf87")). // Amber
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf5f")). // Orange-amber
			Bold(true)
)

type modelState int

const (
	stateList modelState = iota
	stateDetail
)

type actionKind int

const (
	actionNone actionKind = iota
	actionTerm            // SIGTERM
	actionKill            // SIGKILL
)

// ScanFunc runs one full scan.
type ScanFunc func() ([]model.PortInfo, error)

// Options configures the interactive view.
type Options struct {
	Version  string
	Scan     ScanFunc
	Interval time.Duration
	Sort     output.SortKey

	Favorites []int
	// ToggleFavorite persists a favorite change. Nil keeps favorites in
	// memory only.
	ToggleFavorite func(port int) (bool, error)

	Log logrus.FieldLogger
}

type MainModel struct {
	state    modelState
	keys     keyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model

	ports    []model.PortInfo // last successful scan, scan order
	filtered []model.PortInfo // ports after filter and sort
	scroll   scroller
	xOffset  int

	sortKey   output.SortKey
	favorites map[uint16]bool
	scanning  bool

	pendingAction actionKind
	pendingTarget model.PortInfo

	statusMsg string // transient status/error message shown in status line
	width     int
	height    int
	quitting  bool

	scan           ScanFunc
	interval       time.Duration
	toggleFavorite func(port int) (bool, error)
	signal         func(pid int, action actionKind) error
	version        string
	log            logrus.FieldLogger
}

// InitialModel builds the view around the result of a scan that already
// succeeded.
func InitialModel(opts Options, initial []model.PortInfo) MainModel {
	ti := textinput.New()
	ti.Placeholder = "Filter port, PID, user, process, service, command..."
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "/ "
	ti.PromptStyle = promptStyle
	ti.Blur()

	vp := viewport.New(0, 0)
	vp.YPosition = 0

	favorites := make(map[uint16]bool, len(opts.Favorites))
	for _, p := range opts.Favorites {
		if p >= 0 && p <= 65535 {
			favorites[uint16(p)] = true
		}
	}

	sortKey := opts.Sort
	if sortKey == "" {
		sortKey = output.SortNone
	}

	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	m := MainModel{
		state:          stateList,
		keys:           defaultKeyMap(),
		help:           help.New(),
		input:          ti,
		viewport:       vp,
		ports:          initial,
		sortKey:        sortKey,
		favorites:      favorites,
		scan:           opts.Scan,
		interval:       opts.Interval,
		toggleFavorite: opts.ToggleFavorite,
		signal:         signalProcess,
		version:        opts.Version,
		log:            log,
	}
	m.applyFilter()
	return m
}

// Start runs the interactive view until the user quits.
func Start(opts Options, initial []model.PortInfo) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	p := tea.NewProgram(InitialModel(opts, initial), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return waitTick(m.interval)
}
