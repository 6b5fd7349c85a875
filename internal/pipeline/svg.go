package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/giants/internal/model"
)

const (
	svgMarginX     = 40
	svgTitleHeight = 48
	svgAxisHeight  = 36
	svgLegendRow   = 22
	svgFont        = "Helvetica, Arial, sans-serif"
)

// SVG draws lanes as rows of bars, each linking to the figure's article.
// Multi-field figures get a horizontal gradient. Bars of figures with a
// portrait start with a round avatar when they are wide enough for one.
func (r *Renderer) SVG(tl *model.Timeline) string {
	plotWidth := float64(r.svgWidth - 2*svgMarginX)
	lanesHeight := len(tl.Lanes) * r.laneHeight
	axisY := svgTitleHeight + lanesHeight
	height := axisY + svgAxisHeight + len(tl.Legend)*svgLegendRow + 16

	x := func(pos float64) float64 {
		return svgMarginX + pos/100*plotWidth
	}

	var svg strings.Builder
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, r.svgWidth, height)
	fmt.Fprintf(&svg, `<text x="%d" y="30" font-family="%s" font-size="20" font-weight="bold" fill="#1a1a1a">%s</text>
`, svgMarginX, svgFont, escapeXML(tl.Title))

	gradients := make(map[string]string)
	var defs strings.Builder
	for _, e := range tl.Entries() {
		if len(e.Colors) < 2 {
			continue
		}
		if _, ok := gradients[e.Paint]; ok {
			continue
		}
		id := fmt.Sprintf("g%d", len(gradients))
		gradients[e.Paint] = id
		fmt.Fprintf(&defs, `<linearGradient id="%s" x1="0%%" y1="0%%" x2="100%%" y2="0%%">`, id)
		for i, c := range e.Colors {
			fmt.Fprintf(&defs, `<stop offset="%.1f%%" stop-color="%s"/>`, float64(i)/float64(len(e.Colors)-1)*100, escapeXML(c))
		}
		defs.WriteString("</linearGradient>\n")
	}
	if defs.Len() > 0 {
		svg.WriteString("<defs>\n")
		svg.WriteString(defs.String())
		svg.WriteString("</defs>\n")
	}

	for _, tick := range tl.Ticks {
		tx := x(tick.Position)
		stroke := "#e0e0e0"
		if tick.Important {
			stroke = "#b0b0b0"
		}
		fmt.Fprintf(&svg, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="%s" stroke-width="1"/>
`, tx, svgTitleHeight, tx, axisY, stroke)
		fmt.Fprintf(&svg, `<text x="%.1f" y="%d" text-anchor="middle" font-family="%s" font-size="11" fill="#555555">%s</text>
`, tx, axisY+16, svgFont, escapeXML(model.FormatYear(tick.Year)))
	}

	barHeight := r.laneHeight - 6
	avatars := 0
	for _, lane := range tl.Lanes {
		y := svgTitleHeight + lane.Index*r.laneHeight + 3
		for _, e := range lane.Entries {
			fill := e.Paint
			if id, ok := gradients[e.Paint]; ok {
				fill = "url(#" + id + ")"
			}
			width := e.Width / 100 * plotWidth
			if width < 2 {
				width = 2
			}

			fmt.Fprintf(&svg, `<a xlink:href="%s" target="_blank">
`, escapeXML(e.ArticleURL))
			fmt.Fprintf(&svg, `<rect x="%.1f" y="%d" width="%.1f" height="%d" rx="4" fill="%s"><title>%s</title></rect>
`, x(e.Start), y, width, barHeight, escapeXML(fill), escapeXML(tooltip(e)))

			labelX, labelWidth := x(e.Start)+6, width
			if e.HasPortrait() && width >= float64(2*barHeight) {
				id := fmt.Sprintf("p%d", avatars)
				avatars++
				size := barHeight - 4
				ax, ay := x(e.Start)+2, y+2
				fmt.Fprintf(&svg, `<clipPath id="%s"><circle cx="%.1f" cy="%.1f" r="%.1f"/></clipPath>
`, id, ax+float64(size)/2, float64(ay)+float64(size)/2, float64(size)/2)
				fmt.Fprintf(&svg, `<image x="%.1f" y="%d" width="%d" height="%d" href="%s" xlink:href="%s" preserveAspectRatio="xMidYMid slice" clip-path="url(#%s)"/>
`, ax, ay, size, size, escapeXML(e.PortraitURL), escapeXML(e.PortraitURL), id)
				labelX += float64(size)
				labelWidth -= float64(size)
			}
			if label := fitLabel(e.Name, labelWidth, 7); label != "" {
				fmt.Fprintf(&svg, `<text x="%.1f" y="%d" font-family="%s" font-size="12" fill="#ffffff">%s</text>
`, labelX, y+barHeight/2+4, svgFont, escapeXML(label))
			}
			svg.WriteString("</a>\n")
		}
	}

	fmt.Fprintf(&svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#1a1a1a" stroke-width="1"/>
`, svgMarginX, axisY, r.svgWidth-svgMarginX, axisY)

	legendY := axisY + svgAxisHeight
	for i, entry := range tl.Legend {
		ly := legendY + i*svgLegendRow
		fmt.Fprintf(&svg, `<rect x="%d" y="%d" width="14" height="14" fill="%s"/>
`, svgMarginX, ly, escapeXML(entry.Color))
		fmt.Fprintf(&svg, `<text x="%d" y="%d" font-family="%s" font-size="12" fill="#333333">%s</text>
`, svgMarginX+22, ly+11, svgFont, escapeXML(strings.Join(entry.Fields, ", ")))
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

// tooltip is the hover text of an entry
func tooltip(e model.Entry) string {
	lines := []string{e.Name, e.YearsLabel(), strings.Join(e.Fields, ", ")}
	lines = append(lines, highlights(e.Figure)...)
	return strings.Join(lines, "\n")
}

// highlights lists up to two contributions and the first work
func highlights(f model.Figure) []string {
	var out []string
	for i, c := range f.Contributions {
		if i == 2 {
			break
		}
		out = append(out, "• "+c)
	}
	if len(f.Works) > 0 {
		out = append(out, "Work: "+f.Works[0])
	}
	return out
}

// fitLabel returns name if it fits in width pixels at charWidth per rune
func fitLabel(name string, width float64, charWidth int) string {
	if float64((len([]rune(name))+2)*charWidth) > width {
		return ""
	}
	return name
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
