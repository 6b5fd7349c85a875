package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/giants/internal/model"
)

var fixedNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func year(y int) *int { return &y }

func sampleFigures() []model.Figure {
	return []model.Figure{
		{Name: "Ada Lovelace", BirthYear: 1815, DeathYear: year(1852), Fields: []string{"mathematics", "computer science"}, Wikipedia: "Ada_Lovelace"},
		{Name: "Isaac Newton", BirthYear: 1643, DeathYear: year(1727), Fields: []string{"physics", "mathematics"},
			Contributions: []string{"Laws of motion", "Universal gravitation", "Calculus"}, Works: []string{"Principia"}, Wikipedia: "Isaac_Newton"},
		{Name: "Leonhard Euler", BirthYear: 1707, DeathYear: year(1783), Fields: []string{"mathematics"}, Wikipedia: "Leonhard_Euler"},
		{Name: "Noam Chomsky", BirthYear: 1928, Fields: []string{"philosophy", "psychology"}, Wikipedia: "Noam_Chomsky"},
		{Name: "Gottfried Leibniz", BirthYear: 1646, DeathYear: year(1716), Fields: []string{"mathematics", "philosophy"}, Wikipedia: "Gottfried_Wilhelm_Leibniz"},
	}
}

func newTestPipeline(t *testing.T, mutate func(*model.Config)) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Enrich.Enabled = false
	cfg.Cache.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	p, err := NewPipeline(cfg, nil)
	require.NoError(t, err)
	p.Now = func() time.Time { return fixedNow }
	return p
}

func laneNames(tl *model.Timeline) [][]string {
	var out [][]string
	for _, lane := range tl.Lanes {
		var names []string
		for _, e := range lane.Entries {
			names = append(names, e.Name)
		}
		out = append(out, names)
	}
	return out
}

func TestLayout_Lanes(t *testing.T) {
	p := newTestPipeline(t, nil)
	tl, err := p.Layout(model.Plain(sampleFigures()))
	require.NoError(t, err)

	want := [][]string{
		{"Isaac Newton", "Ada Lovelace", "Noam Chomsky"},
		{"Gottfried Leibniz"},
		{"Leonhard Euler"},
	}
	if diff := cmp.Diff(want, laneNames(tl)); diff != "" {
		t.Errorf("lanes mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1643, tl.MinYear)
	assert.Equal(t, 2026, tl.MaxYear)
	assert.Equal(t, model.AxisLinear, tl.Axis)
	assert.Equal(t, model.Stats{Figures: 5, Lanes: 3, MaxOverlap: 3}, tl.Stats)

	for _, lane := range tl.Lanes {
		for _, e := range lane.Entries {
			assert.Equal(t, lane.Index, e.Lane)
		}
	}
}

func TestLayout_EntryGeometryAndPaint(t *testing.T) {
	p := newTestPipeline(t, nil)
	tl, err := p.Layout(model.Plain(sampleFigures()))
	require.NoError(t, err)

	newton, ok := tl.Find("Isaac Newton")
	require.True(t, ok)
	assert.InDelta(t, 0, newton.Start, 1e-9)
	assert.InDelta(t, float64(1727-1643)/float64(2026-1643)*100, newton.Width, 1e-9)
	assert.Equal(t, "linear-gradient(90deg, #3c6e71, #284b63)", newton.Paint)
	assert.Equal(t, []string{"#3c6e71", "#284b63"}, newton.Colors)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Isaac_Newton", newton.ArticleURL)

	euler, _ := tl.Find("Leonhard Euler")
	assert.Equal(t, "#284b63", euler.Paint)

	chomsky, _ := tl.Find("Noam Chomsky")
	assert.InDelta(t, 100, chomsky.End(), 1e-9, "living figures run to now")
}

func TestLayout_Ticks(t *testing.T) {
	p := newTestPipeline(t, nil)
	tl, err := p.Layout(model.Plain(sampleFigures()))
	require.NoError(t, err)

	var years []int
	for _, tk := range tl.Ticks {
		years = append(years, tk.Year)
	}
	assert.Equal(t, []int{1650, 1700, 1750, 1800, 1850, 1900, 1950, 2000, 2026}, years)
	assert.True(t, tl.Ticks[len(tl.Ticks)-1].Important)
	assert.InDelta(t, 100, tl.Ticks[len(tl.Ticks)-1].Position, 1e-9)
}

func TestLayout_ConfiguredTicks(t *testing.T) {
	p := newTestPipeline(t, func(c *model.Config) {
		c.Axis.Ticks = []int{1000, 1700, 1900, 2020, 3000}
	})
	tl, err := p.Layout(model.Plain(sampleFigures()))
	require.NoError(t, err)

	var years []int
	for _, tk := range tl.Ticks {
		years = append(years, tk.Year)
	}
	// 2020 loses to "now", out-of-range years are dropped
	assert.Equal(t, []int{1700, 1900, 2026}, years)
}

func TestLayout_EraAxis(t *testing.T) {
	p := newTestPipeline(t, func(c *model.Config) { c.Axis.Mode = model.AxisEra })
	tl, err := p.Layout(model.Plain(sampleFigures()))
	require.NoError(t, err)

	assert.Equal(t, model.AxisEra, tl.Axis)

	important := map[int]bool{}
	for _, tk := range tl.Ticks {
		if tk.Important {
			important[tk.Year] = true
		}
	}
	assert.Equal(t, map[int]bool{1800: true, 1900: true, 2026: true}, important)

	// Enlightenment covers 40-60% of the axis
	newton, _ := tl.Find("Isaac Newton")
	assert.InDelta(t, 40+float64(43)/200*20, newton.Start, 1e-9)
}

func TestLayout_BadEraTable(t *testing.T) {
	p := newTestPipeline(t, func(c *model.Config) {
		c.Axis.Mode = model.AxisEra
		c.Axis.Eras = []model.EraConfig{{Name: "Open", Start: 0, Share: 50}, {Name: "After", Start: 10, End: year(20), Share: 50}}
	})
	_, err := p.Layout(model.Plain(sampleFigures()))
	assert.ErrorContains(t, err, "build axis")
}

func TestLayout_Empty(t *testing.T) {
	p := newTestPipeline(t, nil)
	tl, err := p.Layout(nil)
	require.NoError(t, err)

	assert.Empty(t, tl.Lanes)
	assert.Equal(t, 2026, tl.MinYear)
	assert.Equal(t, model.Stats{}, tl.Stats)
	require.Len(t, tl.Ticks, 1)
	assert.Equal(t, 2026, tl.Ticks[0].Year)
}

func TestBuild_WithEnrichment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/summary/")
		if id == "Leonhard_Euler" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprintf(w, `{"extract":"About %s","thumbnail":{"source":"https://img.test/%s.jpg"}}`, id, id)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "SoG.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name":"Leonhard Euler","birth_year":1707,"death_year":1783,"fields":["Mathematics"]},
		{"name":"Emmy Noether","birth_year":1882,"death_year":1935,"fields":["mathematics","physics"]}
	]`), 0o644))

	p := newTestPipeline(t, func(c *model.Config) {
		c.Content.Path = path
		c.Enrich.Enabled = true
		c.Enrich.Endpoint = srv.URL + "/summary"
	})

	tl, err := p.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, tl.Stats.Figures)
	assert.Equal(t, 1, tl.Stats.Portraits)

	noether, ok := tl.Find("Emmy Noether")
	require.True(t, ok)
	assert.Equal(t, "https://img.test/Emmy_Noether.jpg", noether.PortraitURL)
	assert.Equal(t, "About Emmy_Noether", noether.Summary)

	euler, _ := tl.Find("Leonhard Euler")
	assert.False(t, euler.HasPortrait())
}

func TestBuild_InvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"X","birth_year":1900,"fields":[]}]`), 0o644))

	p := newTestPipeline(t, func(c *model.Config) { c.Content.Path = path })
	_, err := p.Build(context.Background())
	assert.ErrorContains(t, err, "load content")
	assert.ErrorContains(t, err, "fields is empty")
}
