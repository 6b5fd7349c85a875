package cli

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/ppiankov/giants/internal/layout"
	"github.com/ppiankov/giants/internal/model"
)

var (
	densityFlags  sourceFlags
	densityStep   int
	densityHeight int
)

// densityCmd represents the density command
var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Plot how many figures were alive over time",
	Long: `Density counts the figures alive in consecutive year buckets and plots
the counts. The peak of the plot is the number of lanes the layout needs.

Example:
  giants density
  giants density --step 10 --height 15`,
	Args: cobra.NoArgs,
	RunE: runDensity,
}

func init() {
	rootCmd.AddCommand(densityCmd)

	densityFlags.register(densityCmd, false)
	densityCmd.Flags().IntVar(&densityStep, "step", 25, "bucket size in years")
	densityCmd.Flags().IntVar(&densityHeight, "height", 12, "plot height in rows")
}

func runDensity(cmd *cobra.Command, args []string) error {
	if densityStep <= 0 {
		return fmt.Errorf("--step must be positive, got %d", densityStep)
	}

	tl, _, cfg, err := buildTimeline(cmd, &densityFlags)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if tl.Stats.Figures == 0 {
		fmt.Fprintln(w, "No figures.")
		return nil
	}

	data, caption := densitySeries(tl, densityStep)
	width := cfg.Output.TerminalWidth - 10
	if width < 20 {
		width = 20
	}

	fmt.Fprintln(w, asciigraph.Plot(data,
		asciigraph.Height(densityHeight),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	))
	fmt.Fprintf(w, "\nMax overlap: %d (lanes: %d)\n", tl.Stats.MaxOverlap, tl.Stats.Lanes)
	return nil
}

// densitySeries returns per-bucket alive counts and the plot caption
func densitySeries(tl *model.Timeline, step int) ([]float64, string) {
	figures := make([]model.EnrichedFigure, 0, tl.Stats.Figures)
	for _, e := range tl.Entries() {
		figures = append(figures, e.EnrichedFigure)
	}

	buckets := layout.Occupancy(figures, tl.MaxYear, tl.MinYear, tl.MaxYear, step)
	data := make([]float64, len(buckets))
	for i, b := range buckets {
		data[i] = float64(b.Count)
	}

	caption := fmt.Sprintf("figures alive per %d years, %s - %d",
		step, model.FormatYear(tl.MinYear), tl.MaxYear)
	return data, caption
}
