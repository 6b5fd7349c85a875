package pipeline

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/giants/internal/model"
)

var (
	laneLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	highlightStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#ffd700"))
	axisStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
)

type cell struct {
	r         rune
	color     string
	highlight bool
}

// Terminal draws one text row per lane plus an axis and a legend, width
// columns wide. The entry named highlight is emphasised.
func Terminal(tl *model.Timeline, width int, highlight string) string {
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(tl.Title))
	b.WriteString("\n\n")

	for _, lane := range tl.Lanes {
		b.WriteString(laneRow(lane, width, highlight))
		b.WriteByte('\n')
	}

	b.WriteString(axisStyle.Render(strings.Repeat("─", width)))
	b.WriteByte('\n')
	b.WriteString(axisStyle.Render(axisLabels(tl.Ticks, width)))
	b.WriteByte('\n')

	if len(tl.Legend) > 0 {
		b.WriteByte('\n')
		for _, entry := range tl.Legend {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(entry.Color)).Render("■")
			b.WriteString(swatch + " " + strings.Join(entry.Fields, ", ") + "\n")
		}
	}

	return b.String()
}

// Column maps an axis percentage onto a column in [0, width)
func Column(pos float64, width int) int {
	c := int(math.Round(pos / 100 * float64(width-1)))
	if c < 0 {
		return 0
	}
	if c >= width {
		return width - 1
	}
	return c
}

func laneRow(lane model.Lane, width int, highlight string) string {
	cells := make([]cell, width)
	for i := range cells {
		cells[i].r = ' '
	}

	for _, e := range lane.Entries {
		from, to := Column(e.Start, width), Column(e.End(), width)
		span := to - from + 1
		colors := e.Colors
		if len(colors) == 0 {
			colors = []string{e.Paint}
		}

		for k := 0; k < span; k++ {
			cells[from+k] = cell{
				r:         ' ',
				color:     colors[k*len(colors)/span],
				highlight: e.Name == highlight,
			}
		}

		name := []rune(e.Name)
		if len(name) > span {
			if span < 4 {
				continue
			}
			name = append(name[:span-1], '…')
		}
		for k, r := range name {
			cells[from+k].r = r
		}
	}

	var b strings.Builder
	var run []rune
	runStart := cells[0]
	flush := func() {
		if len(run) == 0 {
			return
		}
		text := string(run)
		switch {
		case runStart.color == "":
			b.WriteString(text)
		case runStart.highlight:
			b.WriteString(highlightStyle.Background(lipgloss.Color(runStart.color)).Render(text))
		default:
			b.WriteString(laneLabelStyle.Background(lipgloss.Color(runStart.color)).Render(text))
		}
		run = run[:0]
	}

	for _, c := range cells {
		if c.color != runStart.color || c.highlight != runStart.highlight {
			flush()
			runStart = c
		}
		run = append(run, c.r)
	}
	flush()

	return b.String()
}

// axisLabels writes tick years under their columns, skipping labels that
// would collide with the previous one.
func axisLabels(ticks []model.Tick, width int) string {
	row := []rune(strings.Repeat(" ", width))
	next := 0
	for _, t := range ticks {
		label := []rune(model.FormatYear(t.Year))
		col := Column(t.Position, width)
		if col+len(label) > width {
			col = width - len(label)
		}
		if col < next || col < 0 {
			continue
		}
		copy(row[col:], label)
		next = col + len(label) + 1
	}
	return strings.TrimRight(string(row), " ")
}
