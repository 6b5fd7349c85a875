package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/giants/internal/model"
)

// Renderer writes a timeline in the supported output formats
type Renderer struct {
	svgWidth   int
	laneHeight int
}

// NewRenderer creates a renderer using the output section of the config
func NewRenderer(cfg model.OutputConfig) *Renderer {
	r := &Renderer{svgWidth: cfg.SVGWidth, laneHeight: cfg.LaneHeight}
	if r.svgWidth <= 0 {
		r.svgWidth = 1200
	}
	if r.laneHeight <= 0 {
		r.laneHeight = 32
	}
	return r
}

// Outputs names the files RenderAll writes. Empty paths are skipped.
type Outputs struct {
	JSON string
	SVG  string
}

// RenderAll writes every requested output concurrently
func (r *Renderer) RenderAll(ctx context.Context, tl *model.Timeline, out Outputs) error {
	g, _ := errgroup.WithContext(ctx)

	if out.JSON != "" {
		g.Go(func() error {
			if err := r.RenderJSON(tl, out.JSON); err != nil {
				return fmt.Errorf("render JSON: %w", err)
			}
			return nil
		})
	}
	if out.SVG != "" {
		g.Go(func() error {
			if err := r.RenderSVG(tl, out.SVG); err != nil {
				return fmt.Errorf("render SVG: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// RenderJSON writes the layout document
func (r *Renderer) RenderJSON(tl *model.Timeline, path string) error {
	data, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderSVG writes the timeline as a standalone SVG image
func (r *Renderer) RenderSVG(tl *model.Timeline, path string) error {
	return writeFile(path, []byte(r.SVG(tl)))
}

// RenderSummary prints the headline numbers of a timeline
func (r *Renderer) RenderSummary(w io.Writer, tl *model.Timeline) {
	fmt.Fprintf(w, "%s\n", tl.Title)
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", len([]rune(tl.Title))))
	fmt.Fprintf(w, "Span:        %s - %d (%s axis)\n", model.FormatYear(tl.MinYear), tl.MaxYear, tl.Axis)
	fmt.Fprintf(w, "Figures:     %d\n", tl.Stats.Figures)
	fmt.Fprintf(w, "Lanes:       %d\n", tl.Stats.Lanes)
	fmt.Fprintf(w, "Max overlap: %d\n", tl.Stats.MaxOverlap)
	fmt.Fprintf(w, "Portraits:   %d/%d\n", tl.Stats.Portraits, tl.Stats.Figures)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
