package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase names the engine operation an Update belongs to.
type Phase string

const (
	PhaseDiscover Phase = "discover"
	PhaseConvert  Phase = "convert"
)

// Update is one progress report forwarded from the engine.
type Update struct {
	Phase   Phase
	Matches int
	Scanned int
	Current string
	Handled int
	Total   int
}

// Model renders discovery and conversion progress until the update channel closes.
// ctrl+c, esc and q call cancel once; the engine then winds down and closes the channel.
type Model struct {
	updates   <-chan Update
	cancel    func()
	started   time.Time
	width     int
	last      Update
	canceling bool
	quitting  bool
}

type doneMsg struct{}

type updateMsg Update

func NewModel(updates <-chan Update, cancel func()) Model {
	return Model{updates: updates, cancel: cancel, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.last = Update(msg)
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if !m.canceling && m.cancel != nil {
				m.cancel()
			}
			m.canceling = true
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)
	lines := []string{titleStyle.Render("image-converter")}

	switch m.last.Phase {
	case PhaseConvert:
		ratio := 0.0
		if m.last.Total > 0 {
			ratio = math.Min(1, float64(m.last.Handled)/float64(m.last.Total))
		}
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("Images: %d/%d", m.last.Handled, m.last.Total)),
			dimStyle.Render("Current: "+filepath.Base(m.last.Current)),
			barStyle.Render(renderBar(m.barWidth(), ratio)),
		)
	default:
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("Searching... %d images found", m.last.Matches)),
			dimStyle.Render(fmt.Sprintf("Files scanned: %d", m.last.Scanned)),
		)
	}

	lines = append(lines, dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)))
	if m.canceling {
		lines = append(lines, warnStyle.Render("Canceling..."))
	} else {
		lines = append(lines, dimStyle.Render("Press q to cancel"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) barWidth() int {
	if m.width <= 0 {
		return 40
	}
	width := int(math.Min(60, float64(m.width-10)))
	if width < 20 {
		width = 20
	}
	return width
}

func listenForUpdates(updates <-chan Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
)
