package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the Bubble Tea model for the race spectator view: a scrolling
// event log on the left, a standings sidebar on the right, minus any
// action input pane — the engine's agents decide for themselves, so
// there is no human prompt to render.
type Model struct {
	feed <-chan Frame

	logViewport viewport.Model
	gameLog     []string
	latest      Frame

	width, height int
	quitting      bool
	done          bool
}

// frameMsg wraps a Frame delivered over the feed channel.
type frameMsg Frame

// feedClosedMsg signals the feed channel was closed (race ended).
type feedClosedMsg struct{}

// NewModel creates a spectator Model reading frames from feed.
func NewModel(feed <-chan Frame) *Model {
	vp := viewport.New(10, 5)
	return &Model{feed: feed, logViewport: vp}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForFrame()
}

func (m *Model) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-m.feed
		if !ok {
			return feedClosedMsg{}
		}
		return frameMsg(frame)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "up", "k":
			m.logViewport.ScrollUp(1)
		case "down", "j":
			m.logViewport.ScrollDown(1)
		case "pgup", "b":
			m.logViewport.HalfPageUp()
		case "pgdown", "f":
			m.logViewport.HalfPageDown()
		}
		return m, nil
	case frameMsg:
		m.latest = Frame(msg)
		m.gameLog = append(m.gameLog, m.latest.Line)
		m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
		m.logViewport.GotoBottom()
		return m, m.waitForFrame()
	case feedClosedMsg:
		m.done = true
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	sidebar := m.renderSidebar()
	sidebarWidth := lipgloss.Width(sidebar) + 2
	if sidebarWidth < 27 {
		sidebarWidth = 27
	}
	logWidth := m.width - sidebarWidth - 4
	paneHeight := m.height - 4

	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight)

	logPane := logStyle.Render(m.logViewport.View())
	sidebarPane := sidebarStyle.Render(sidebar)

	body := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	footer := InfoStyle.Render("↑↓ scroll · q to quit")
	if m.done {
		footer = FinishedStyle.Render("race over · q to quit")
	}
	return lipgloss.JoinVertical(lipgloss.Top, body, footer)
}

// renderSidebar renders the standings sidebar content, racers sorted by
// finish rank (ranked first) then by track position descending.
func (m *Model) renderSidebar() string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render(fmt.Sprintf(" track: %d tiles ", m.latest.BoardLen)))
	content.WriteString("\n\n")

	racers := append([]RacerSnapshot(nil), m.latest.Racers...)
	sort.SliceStable(racers, func(i, j int) bool {
		ri, rj := racers[i], racers[j]
		if ri.Rank != 0 || rj.Rank != 0 {
			if ri.Rank == 0 {
				return false
			}
			if rj.Rank == 0 {
				return true
			}
			return ri.Rank < rj.Rank
		}
		return ri.Position > rj.Position
	})

	for _, r := range racers {
		var style lipgloss.Style
		var tag string
		switch {
		case r.Finished:
			style = FinishedStyle
			tag = fmt.Sprintf("[rank %d]", r.Rank)
		case r.Eliminated:
			style = EliminatedStyle
			tag = "[out]"
		case r.Tripped:
			style = TrippedStyle
			tag = "[tripped]"
		default:
			style = RacerInfoStyle
		}
		line := fmt.Sprintf("%-12s tile %-3d vp %-2d %s", r.Name, r.Position, r.VP, tag)
		content.WriteString(style.Render(line))
		content.WriteString("\n")
	}

	return content.String()
}
