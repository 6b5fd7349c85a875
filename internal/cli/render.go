package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/giants/internal/pipeline"
)

var (
	renderFlags   sourceFlags
	renderJSON    string
	renderSVG     string
	renderPreview bool
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Lay out the timeline and write JSON and SVG outputs",
	Long: `Render loads the content file, fetches portraits, packs figures into
lanes and writes the layout as JSON and/or SVG.

Example:
  giants render --json timeline.json --svg timeline.svg
  giants render --axis era --svg timeline.svg --enrich=false
  giants render --content https://example.com/SoG.json --preview`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags.register(renderCmd, true)
	renderCmd.Flags().StringVar(&renderJSON, "json", "timeline.json", "output JSON path (empty to skip)")
	renderCmd.Flags().StringVar(&renderSVG, "svg", "", "output SVG path (optional)")
	renderCmd.Flags().BoolVar(&renderPreview, "preview", false, "also draw the lanes in the terminal")
}

func runRender(cmd *cobra.Command, args []string) error {
	tl, p, cfg, err := buildTimeline(cmd, &renderFlags)
	if err != nil {
		return err
	}

	out := pipeline.Outputs{JSON: renderJSON, SVG: renderSVG}
	if err := p.Renderer().RenderAll(context.Background(), tl, out); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if renderPreview {
		fmt.Fprintln(w, pipeline.Terminal(tl, cfg.Output.TerminalWidth, ""))
	}
	p.Renderer().RenderSummary(w, tl)

	if out.JSON != "" {
		fmt.Fprintf(w, "✓ Wrote JSON: %s\n", out.JSON)
	}
	if out.SVG != "" {
		fmt.Fprintf(w, "✓ Wrote SVG: %s\n", out.SVG)
	}
	return nil
}
