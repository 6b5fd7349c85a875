package model

import "time"

// Config holds the full giants configuration
type Config struct {
	Content ContentConfig `yaml:"content" mapstructure:"content"`
	Axis    AxisConfig    `yaml:"axis" mapstructure:"axis"`
	Palette PaletteConfig `yaml:"palette" mapstructure:"palette"`
	Enrich  EnrichConfig  `yaml:"enrich" mapstructure:"enrich"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
}

// ContentConfig locates the static content file
type ContentConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`                 // File path or http(s) URL
	ArticleBase string `yaml:"article_base" mapstructure:"article_base"` // Prefix for outbound article links
	Title       string `yaml:"title" mapstructure:"title"`
}

// AxisConfig selects how years map onto the display axis
type AxisConfig struct {
	Mode       string      `yaml:"mode" mapstructure:"mode"` // linear or era
	Eras       []EraConfig `yaml:"eras" mapstructure:"eras"`
	Ticks      []int       `yaml:"ticks,omitempty" mapstructure:"ticks"` // Candidate tick years; empty = every 50 years
	MinTickGap int         `yaml:"min_tick_gap" mapstructure:"min_tick_gap"`
}

// EraConfig is one row of the era table. End may be omitted on the last era
// to run until the current year.
type EraConfig struct {
	Name  string  `yaml:"name" mapstructure:"name"`
	Start int     `yaml:"start" mapstructure:"start"`
	End   *int    `yaml:"end,omitempty" mapstructure:"end"`
	Share float64 `yaml:"share" mapstructure:"share"` // Percentage of the axis
}

// PaletteConfig maps field tags to colors
type PaletteConfig struct {
	Colors   map[string]string `yaml:"colors" mapstructure:"colors"`
	Fallback string            `yaml:"fallback" mapstructure:"fallback"`
}

// EnrichConfig controls portrait lookups against the summary endpoint
type EnrichConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint          string        `yaml:"endpoint" mapstructure:"endpoint"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Workers           int           `yaml:"workers" mapstructure:"workers"`                         // 0 = one per figure
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 = unlimited
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the portrait cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"` // Empty = memory only
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls renderers
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	TerminalWidth int  `yaml:"terminal_width" mapstructure:"terminal_width"`
	SVGWidth      int  `yaml:"svg_width" mapstructure:"svg_width"`
	LaneHeight    int  `yaml:"lane_height" mapstructure:"lane_height"`
}

const (
	AxisLinear = "linear"
	AxisEra    = "era"
)

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			Path:        "SoG.json",
			ArticleBase: "https://en.wikipedia.org/wiki/",
			Title:       "Standing on the Shoulders of Giants",
		},
		Axis: AxisConfig{
			Mode:       AxisLinear,
			Eras:       DefaultEras(),
			MinTickGap: 20,
		},
		Palette: PaletteConfig{
			Colors: map[string]string{
				"physics":          "#3c6e71",
				"mathematics":      "#284b63",
				"computer science": "#353535",
				"philosophy":       "#3c6e71",
				"psychology":       "#284b63",
				"psychiatry":       "#284b63",
				"literature":       "#353535",
			},
			Fallback: "#808080",
		},
		Enrich: EnrichConfig{
			Enabled:      true,
			Endpoint:     "https://en.wikipedia.org/api/rest_v1/page/summary",
			UserAgent:    "Giants/0.1 (+https://github.com/ppiankov/giants)",
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1_000_000,
			BurstSize:    5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			TerminalWidth: 120,
			SVGWidth:      1200,
			LaneHeight:    32,
		},
	}
}

// DefaultEras is the hand-tuned era table shipped with giants.
// Later eras get more axis per year because they hold more figures.
func DefaultEras() []EraConfig {
	year := func(y int) *int { return &y }
	return []EraConfig{
		{Name: "Antiquity", Start: -600, End: year(500), Share: 15},
		{Name: "Middle Ages", Start: 500, End: year(1300), Share: 10},
		{Name: "Renaissance", Start: 1300, End: year(1600), Share: 15},
		{Name: "Enlightenment", Start: 1600, End: year(1800), Share: 20},
		{Name: "Industrial", Start: 1800, End: year(1900), Share: 20},
		{Name: "Modern", Start: 1900, Share: 20},
	}
}
