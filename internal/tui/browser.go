// Package tui is an interactive terminal browser for a laid-out timeline.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/giants/internal/model"
	"github.com/ppiankov/giants/internal/pipeline"
)

var (
	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
	nameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	dim       = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	linkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Underline(true)
	keyHint   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Opener opens an external link
type Opener func(url string) error

type openedMsg struct {
	url string
	err error
}

// Model is the bubbletea model of the browser. The selection is its only
// mutable state.
type Model struct {
	timeline *model.Timeline
	open     Opener

	lane  int
	index int

	width  int
	status string
}

// New creates a browser with the first entry of the first lane selected
func New(tl *model.Timeline, open Opener) Model {
	if open == nil {
		open = OpenURL
	}
	return Model{timeline: tl, open: open, width: 100}
}

// Selected returns the entry under the cursor
func (m Model) Selected() (model.Entry, bool) {
	if m.lane >= len(m.timeline.Lanes) {
		return model.Entry{}, false
	}
	entries := m.timeline.Lanes[m.lane].Entries
	if m.index >= len(entries) {
		return model.Entry{}, false
	}
	return entries[m.index], true
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not open %s: %v", msg.url, msg.err)
		} else {
			m.status = "opened " + msg.url
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.index > 0 {
				m.index--
			}
		case "right", "l":
			if m.lane < len(m.timeline.Lanes) && m.index < len(m.timeline.Lanes[m.lane].Entries)-1 {
				m.index++
			}
		case "up", "k":
			if m.lane > 0 {
				m = m.moveLane(m.lane - 1)
			}
		case "down", "j":
			if m.lane < len(m.timeline.Lanes)-1 {
				m = m.moveLane(m.lane + 1)
			}
		case "o", "enter":
			if e, ok := m.Selected(); ok {
				return m, m.openCmd(e.ArticleURL)
			}
		}
		m.status = ""
	}
	return m, nil
}

// moveLane keeps the cursor near the same point in time
func (m Model) moveLane(lane int) Model {
	current, ok := m.Selected()
	m.lane = lane
	m.index = 0
	if !ok {
		return m
	}

	best := math.Inf(1)
	for i, e := range m.timeline.Lanes[lane].Entries {
		if d := math.Abs(e.Start - current.Start); d < best {
			best = d
			m.index = i
		}
	}
	return m
}

func (m Model) openCmd(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return openedMsg{url: url, err: open(url)}
	}
}

func (m Model) View() string {
	var b strings.Builder

	e, ok := m.Selected()
	b.WriteString(pipeline.Terminal(m.timeline, m.width, e.Name))
	b.WriteByte('\n')

	if ok {
		b.WriteString(panel.Width(min(m.width-2, 72)).Render(Detail(e)))
		b.WriteByte('\n')
	}

	if m.status != "" {
		style := dim
		if strings.HasPrefix(m.status, "could not") {
			style = errStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteByte('\n')
	}

	b.WriteString(keyHint.Render("←/→ figure  ↑/↓ lane  o open article  q quit"))
	b.WriteByte('\n')
	return b.String()
}

// Detail renders the panel text for one entry
func Detail(e model.Entry) string {
	lines := []string{
		nameStyle.Render(e.Name),
		dim.Render(e.YearsLabel()),
		strings.Join(e.Fields, ", "),
	}

	if len(e.Contributions) > 0 {
		lines = append(lines, "", "Key contributions:")
		for i, c := range e.Contributions {
			if i == 2 {
				break
			}
			lines = append(lines, "  • "+c)
		}
	}
	if len(e.Works) > 0 {
		lines = append(lines, "", "Notable work: "+e.Works[0])
	}
	if e.Summary != "" {
		lines = append(lines, "", e.Summary)
	}
	if e.HasPortrait() {
		lines = append(lines, "", dim.Render("Portrait: "+e.PortraitURL))
	}
	lines = append(lines, linkStyle.Render(e.ArticleURL))

	return strings.Join(lines, "\n")
}

// Run starts the browser full screen and blocks until it quits
func Run(tl *model.Timeline, width int) error {
	m := New(tl, OpenURL)
	if width > 0 {
		m.width = width
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
