// Package palette derives display colors for figures from their field tags.
package palette

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/giants/internal/model"
)

// DefaultFallback is used for fields missing from the table
const DefaultFallback = "#808080"

// Palette maps lowercase field tags to colors
type Palette struct {
	colors   map[string]string
	fallback string
}

// New creates a palette. Keys are matched case-insensitively.
func New(colors map[string]string, fallback string) *Palette {
	if fallback == "" {
		fallback = DefaultFallback
	}

	p := &Palette{
		colors:   make(map[string]string, len(colors)),
		fallback: fallback,
	}
	for field, color := range colors {
		p.colors[normalize(field)] = color
	}
	return p
}

// FromConfig builds a palette from the palette section of the config
func FromConfig(cfg model.PaletteConfig) *Palette {
	return New(cfg.Colors, cfg.Fallback)
}

// Color returns the color for a single field
func (p *Palette) Color(field string) string {
	if c, ok := p.colors[normalize(field)]; ok {
		return c
	}
	return p.fallback
}

// Derive returns a flat color when all fields share one color and a
// left-to-right gradient over the distinct colors, in tag order, otherwise.
func (p *Palette) Derive(fields []string) Paint {
	var colors []string
	seen := make(map[string]bool)

	for _, f := range fields {
		c := p.Color(f)
		if seen[c] {
			continue
		}
		seen[c] = true
		colors = append(colors, c)
	}

	if len(colors) == 0 {
		colors = []string{p.fallback}
	}
	return Paint{colors: colors}
}

// Legend groups the configured fields by color. Groups are ordered by their
// alphabetically first field.
func (p *Palette) Legend() []model.LegendEntry {
	fields := make([]string, 0, len(p.colors))
	for f := range p.colors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	index := make(map[string]int)
	var legend []model.LegendEntry
	for _, f := range fields {
		c := p.colors[f]
		i, ok := index[c]
		if !ok {
			i = len(legend)
			index[c] = i
			legend = append(legend, model.LegendEntry{Color: c})
		}
		legend[i].Fields = append(legend[i].Fields, f)
	}
	return legend
}

// Paint is the derived fill of a timeline entry
type Paint struct {
	colors []string
}

// Colors returns the distinct colors in tag order
func (p Paint) Colors() []string {
	out := make([]string, len(p.colors))
	copy(out, p.colors)
	return out
}

// IsGradient reports whether more than one color is involved
func (p Paint) IsGradient() bool {
	return len(p.colors) > 1
}

// Primary returns the first color
func (p Paint) Primary() string {
	if len(p.colors) == 0 {
		return DefaultFallback
	}
	return p.colors[0]
}

// CSS renders the paint as a CSS color or linear-gradient
func (p Paint) CSS() string {
	if !p.IsGradient() {
		return p.Primary()
	}
	return fmt.Sprintf("linear-gradient(90deg, %s)", strings.Join(p.colors, ", "))
}

func normalize(field string) string {
	return strings.ToLower(strings.TrimSpace(field))
}
