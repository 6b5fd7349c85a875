package model

import "time"

// Timeline is the laid-out document every renderer consumes
type Timeline struct {
	Title       string        `json:"title"`
	GeneratedAt time.Time     `json:"generated_at"`
	MinYear     int           `json:"min_year"` // Earliest birth year
	MaxYear     int           `json:"max_year"` // "Now" used for living figures
	Axis        string        `json:"axis"`     // linear or era
	Lanes       []Lane        `json:"lanes"`
	Ticks       []Tick        `json:"ticks"`
	Legend      []LegendEntry `json:"legend"`
	Stats       Stats         `json:"stats"`
}

// Lane is one horizontal track of non-overlapping entries
type Lane struct {
	Index   int     `json:"index"`
	Entries []Entry `json:"entries"` // Ascending birth year
}

// Entry is a figure placed on the axis
type Entry struct {
	EnrichedFigure
	Lane       int      `json:"lane"`
	Start      float64  `json:"start"` // Axis percentage of the birth year
	Width      float64  `json:"width"` // Axis percentage spanned by the lifespan
	Paint      string   `json:"paint"` // CSS color or gradient
	Colors     []string `json:"colors"`
	ArticleURL string   `json:"article_url"`
}

// End returns the axis percentage where the entry stops
func (e Entry) End() float64 {
	return e.Start + e.Width
}

// Tick is an axis label
type Tick struct {
	Year      int     `json:"year"`
	Position  float64 `json:"position"`
	Important bool    `json:"important,omitempty"` // Era boundary or "now"
}

// LegendEntry groups the fields drawn with one color
type LegendEntry struct {
	Color  string   `json:"color"`
	Fields []string `json:"fields"`
}

// Stats summarises the layout
type Stats struct {
	Figures    int `json:"figures"`
	Lanes      int `json:"lanes"`
	MaxOverlap int `json:"max_overlap"` // Most figures alive in any single year
	Portraits  int `json:"portraits"`
}

// Entries flattens all lanes in lane order
func (t *Timeline) Entries() []Entry {
	var out []Entry
	for _, lane := range t.Lanes {
		out = append(out, lane.Entries...)
	}
	return out
}

// Find returns the entry with the given name
func (t *Timeline) Find(name string) (Entry, bool) {
	for _, lane := range t.Lanes {
		for _, e := range lane.Entries {
			if e.Name == name {
				return e, true
			}
		}
	}
	return Entry{}, false
}
