package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/giants/internal/content"
	"github.com/ppiankov/giants/internal/layout"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [content]",
	Short: "Check a content file against the figure schema",
	Long: `Validate parses a content file (path or URL) and reports every invalid
record: empty or duplicate names, missing fields, death before birth.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src := cfg.Content.Path
	if len(args) == 1 {
		src = args[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	figures, err := content.ReadSource(ctx, src)
	if err != nil {
		return fmt.Errorf("validate %s: %w", src, err)
	}

	now := time.Now().Year()
	living := 0
	for _, f := range figures {
		if f.Living() {
			living++
		}
	}
	_, lanes := layout.Assign(figures, now)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s: %d figures (%d living), %d lanes\n", src, len(figures), living, lanes)
	return nil
}
