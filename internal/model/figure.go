package model

import (
	"fmt"
	"net/url"
	"strings"
)

// Figure is a historical person as read from the content file
type Figure struct {
	Name          string   `json:"name"`
	BirthYear     int      `json:"birth_year"`           // Negative for BCE
	DeathYear     *int     `json:"death_year,omitempty"` // nil while living
	Fields        []string `json:"fields"`               // Ordered subject tags, lowercase, unique
	Contributions []string `json:"contributions"`
	Works         []string `json:"works"`
	Wikipedia     string   `json:"wikipedia"` // Article identifier, e.g. "Emmy_Noether"
}

// Living reports whether the figure has no recorded death year
func (f Figure) Living() bool {
	return f.DeathYear == nil
}

// End returns the death year, or now for the living
func (f Figure) End(now int) int {
	if f.DeathYear != nil {
		return *f.DeathYear
	}
	return now
}

// Interval returns the closed lifespan [birth, death or now].
// The end never precedes the start, even if now is earlier than the birth year.
func (f Figure) Interval(now int) Interval {
	end := f.End(now)
	if end < f.BirthYear {
		end = f.BirthYear
	}
	return Interval{Start: f.BirthYear, End: end}
}

// YearsLabel renders the lifespan the way the detail panel shows it
func (f Figure) YearsLabel() string {
	if f.DeathYear == nil {
		return fmt.Sprintf("%s - Present", FormatYear(f.BirthYear))
	}
	return fmt.Sprintf("%s - %s", FormatYear(f.BirthYear), FormatYear(*f.DeathYear))
}

// ArticleURL builds the external encyclopedia link for the figure
func (f Figure) ArticleURL(base string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(f.Wikipedia)
}

// FormatYear prints BCE years as "384 BCE"
func FormatYear(year int) string {
	if year < 0 {
		return fmt.Sprintf("%d BCE", -year)
	}
	return fmt.Sprintf("%d", year)
}

// Interval is a closed range of calendar years
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two closed intervals share at least one year.
// Intervals that merely touch (a.End == b.Start) overlap.
func (i Interval) Overlaps(other Interval) bool {
	return !(i.End < other.Start || other.End < i.Start)
}

// Contains reports whether year lies inside the interval
func (i Interval) Contains(year int) bool {
	return year >= i.Start && year <= i.End
}

// EnrichedFigure is a figure plus the optional data fetched for it
type EnrichedFigure struct {
	Figure
	PortraitURL string `json:"portrait_url,omitempty"` // Empty when no image could be fetched
	Summary     string `json:"summary,omitempty"`      // Plain-text article extract
}

// HasPortrait reports whether a portrait URL was attached
func (e EnrichedFigure) HasPortrait() bool {
	return e.PortraitURL != ""
}

// Plain wraps figures without any enrichment
func Plain(figures []Figure) []EnrichedFigure {
	out := make([]EnrichedFigure, len(figures))
	for i, f := range figures {
		out[i] = EnrichedFigure{Figure: f}
	}
	return out
}
