// Package pipeline turns the content file into a laid-out timeline and
// renders it.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/giants/internal/cache"
	"github.com/ppiankov/giants/internal/content"
	"github.com/ppiankov/giants/internal/enrich"
	"github.com/ppiankov/giants/internal/layout"
	"github.com/ppiankov/giants/internal/model"
	"github.com/ppiankov/giants/internal/palette"
)

// Pipeline loads, enriches and lays out figures
type Pipeline struct {
	config   *model.Config
	logger   *zap.Logger
	enricher *enrich.Enricher // nil when enrichment is disabled
	palette  *palette.Palette
	renderer *Renderer

	// Now supplies the current date; the year bounds living figures and the axis
	Now func() time.Time
}

// NewPipeline creates a pipeline for cfg
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var enricher *enrich.Enricher
	if cfg.Enrich.Enabled {
		e, err := enrich.FromConfig(cfg.Enrich, cache.FromConfig(cfg.Cache), 0, logger.Named("enrich"))
		if err != nil {
			return nil, fmt.Errorf("configure enrichment: %w", err)
		}
		enricher = e
	}

	return &Pipeline{
		config:   cfg,
		logger:   logger,
		enricher: enricher,
		palette:  palette.FromConfig(cfg.Palette),
		renderer: NewRenderer(cfg.Output),
		Now:      time.Now,
	}, nil
}

// Renderer returns the renderer configured for this pipeline
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Build runs the whole pipeline: load content, enrich, lay out
func (p *Pipeline) Build(ctx context.Context) (*model.Timeline, error) {
	figures, err := content.ReadSource(ctx, p.config.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	p.logger.Debug("content loaded",
		zap.String("source", p.config.Content.Path),
		zap.Int("figures", len(figures)))

	return p.Layout(p.Enrich(ctx, figures))
}

// Enrich attaches portraits when enrichment is enabled
func (p *Pipeline) Enrich(ctx context.Context, figures []model.Figure) []model.EnrichedFigure {
	if p.enricher == nil {
		return model.Plain(figures)
	}
	return p.enricher.EnrichAll(ctx, figures)
}

// Layout places figures on lanes and the axis. It performs no I/O.
func (p *Pipeline) Layout(figures []model.EnrichedFigure) (*model.Timeline, error) {
	generated := p.Now()
	now := generated.Year()

	minYear := now
	for _, f := range figures {
		if f.BirthYear < minYear {
			minYear = f.BirthYear
		}
	}

	axis, err := layout.NewAxis(p.config.Axis, minYear, now)
	if err != nil {
		return nil, fmt.Errorf("build axis: %w", err)
	}

	tl := &model.Timeline{
		Title:       p.config.Content.Title,
		GeneratedAt: generated.UTC(),
		MinYear:     minYear,
		MaxYear:     now,
		Axis:        axisName(p.config.Axis.Mode),
		Legend:      p.palette.Legend(),
	}

	for i, members := range layout.Pack(figures, now) {
		lane := model.Lane{Index: i}
		for _, f := range members {
			lane.Entries = append(lane.Entries, p.place(axis, f, i, now))
			tl.Stats.Figures++
			if f.HasPortrait() {
				tl.Stats.Portraits++
			}
		}
		tl.Lanes = append(tl.Lanes, lane)
	}

	tl.Stats.Lanes = len(tl.Lanes)
	tl.Stats.MaxOverlap = layout.MaxOverlap(figures, now)
	tl.Ticks = layout.Ticks(axis, p.tickCandidates(minYear, now), importantYears(axis, minYear, now), p.config.Axis.MinTickGap)

	return tl, nil
}

func (p *Pipeline) place(axis layout.Axis, f model.EnrichedFigure, lane, now int) model.Entry {
	iv := f.Interval(now)
	start := axis.Position(iv.Start)
	paint := p.palette.Derive(f.Fields)

	return model.Entry{
		EnrichedFigure: f,
		Lane:           lane,
		Start:          start,
		Width:          axis.Position(iv.End) - start,
		Paint:          paint.CSS(),
		Colors:         paint.Colors(),
		ArticleURL:     f.ArticleURL(p.config.Content.ArticleBase),
	}
}

func (p *Pipeline) tickCandidates(minYear, now int) []int {
	if len(p.config.Axis.Ticks) == 0 {
		return layout.TickCandidates(minYear, now, layout.DefaultTickStep)
	}

	var years []int
	for _, y := range p.config.Axis.Ticks {
		if y >= minYear && y <= now {
			years = append(years, y)
		}
	}
	return append(years, now)
}

// importantYears are "now" and, on an era axis, every era boundary in range
func importantYears(axis layout.Axis, minYear, now int) []int {
	years := []int{now}
	if era, ok := axis.(*layout.EraAxis); ok {
		for _, b := range era.Boundaries() {
			if b >= minYear && b < now {
				years = append(years, b)
			}
		}
	}
	sort.Ints(years)
	return years
}

func axisName(mode string) string {
	if mode == "" {
		return model.AxisLinear
	}
	return strings.ToLower(mode)
}
