// ABOUTME: Bubbletea model for live run progress
// ABOUTME: Tracks per-session sample counts while the orchestrator runs
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressMsg reports one accepted sample.
type ProgressMsg struct {
	Session   int
	Collected int
}

// DoneMsg tells the TUI the run reached a terminal state.
type DoneMsg struct {
	Err error
}

// Model is the TUI state for a run in flight.
type Model struct {
	endpoint string
	region   string
	clients  int
	target   int

	collected map[int]int
	done      bool
	runErr    error
	quitting  bool

	width  int
	height int
}

// NewModel creates the progress model for a run.
func NewModel(endpoint, region string, clients, target int) Model {
	return Model{
		endpoint:  endpoint,
		region:    region,
		clients:   clients,
		target:    target,
		collected: make(map[int]int),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case ProgressMsg:
		m.collected[msg.Session] = msg.Collected
	case DoneMsg:
		m.done = true
		m.runErr = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	barDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// View renders the progress display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("echolat"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("endpoint: "))
	b.WriteString(m.endpoint)
	if m.region != "" {
		b.WriteString(labelStyle.Render("  region: "))
		b.WriteString(m.region)
	}
	b.WriteString("\n\n")

	for session := 1; session <= m.clients; session++ {
		count := m.collected[session]
		b.WriteString(fmt.Sprintf("session %2d  %s %d/%d\n",
			session, progressBar(count, m.target), count, m.target))
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("press q to abort"))
	b.WriteString("\n")

	return b.String()
}

// progressBar renders a fixed-width textual bar.
func progressBar(count, target int) string {
	const width = 20
	if target <= 0 {
		target = 1
	}
	filled := count * width / target
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if count >= target {
		return barDoneStyle.Render(bar)
	}
	return bar
}
