package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/giants/internal/pipeline"
)

var (
	lanesFlags     sourceFlags
	lanesHighlight string
)

// lanesCmd represents the lanes command
var lanesCmd = &cobra.Command{
	Use:   "lanes",
	Short: "Draw the lane layout in the terminal",
	Long: `Lanes draws one row per lane, each figure as a bar in its field colors.
No network access is made unless --enrich is given.

Example:
  giants lanes
  giants lanes --axis era --highlight "Isaac Newton"`,
	Args: cobra.NoArgs,
	RunE: runLanes,
}

func init() {
	rootCmd.AddCommand(lanesCmd)

	lanesFlags.register(lanesCmd, false)
	lanesCmd.Flags().StringVar(&lanesHighlight, "highlight", "", "name of a figure to emphasise")
}

func runLanes(cmd *cobra.Command, args []string) error {
	tl, _, cfg, err := buildTimeline(cmd, &lanesFlags)
	if err != nil {
		return err
	}

	if lanesHighlight != "" {
		if _, ok := tl.Find(lanesHighlight); !ok {
			return fmt.Errorf("no figure named %q", lanesHighlight)
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), pipeline.Terminal(tl, cfg.Output.TerminalWidth, lanesHighlight))
	return nil
}
