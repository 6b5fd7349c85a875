package cli

import (
	"github.com/spf13/cobra"

	"github.com/ppiankov/giants/internal/tui"
)

var browseFlags sourceFlags

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Explore the timeline interactively",
	Long: `Browse opens a full-screen view of the lanes with a detail panel for the
selected figure. Arrow keys (or hjkl) move the selection, o opens the
Wikipedia article and q quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tl, _, cfg, err := buildTimeline(cmd, &browseFlags)
		if err != nil {
			return err
		}
		return tui.Run(tl, cfg.Output.TerminalWidth)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseFlags.register(browseCmd, true)
}
