package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/giants/internal/model"
	"github.com/ppiankov/giants/internal/pipeline"
)

// sourceFlags are shared by every command that builds a timeline
type sourceFlags struct {
	content string
	axis    string
	enrich  bool
	timeout time.Duration
	width   int
}

func (f *sourceFlags) register(cmd *cobra.Command, enrichDefault bool) {
	cmd.Flags().StringVar(&f.content, "content", "", "content file path or URL (default from config: SoG.json)")
	cmd.Flags().StringVar(&f.axis, "axis", "", "axis mode: linear or era")
	cmd.Flags().BoolVar(&f.enrich, "enrich", enrichDefault, "fetch portraits from Wikipedia")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 2*time.Minute, "overall timeout for loading and enrichment")
	cmd.Flags().IntVar(&f.width, "width", 0, "terminal width in columns (default from config)")
}

// apply overrides the config with flags the user set explicitly. The enrich
// flag always applies because its default differs per command.
func (f *sourceFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("content") {
		cfg.Content.Path = f.content
	}
	if cmd.Flags().Changed("axis") {
		cfg.Axis.Mode = f.axis
	}
	if cmd.Flags().Changed("width") {
		cfg.Output.TerminalWidth = f.width
	}
	cfg.Enrich.Enabled = cfg.Enrich.Enabled && f.enrich
}

// buildTimeline loads the config, applies flags and runs the pipeline
func buildTimeline(cmd *cobra.Command, flags *sourceFlags) (*model.Timeline, *pipeline.Pipeline, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	flags.apply(cmd, cfg)

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, flags.timeout)
	defer cancel()

	logger.Debug("building timeline",
		zap.String("content", cfg.Content.Path),
		zap.String("axis", cfg.Axis.Mode),
		zap.Bool("enrich", cfg.Enrich.Enabled))

	tl, err := p.Build(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build timeline: %w", err)
	}

	logger.Debug("timeline built",
		zap.Int("figures", tl.Stats.Figures),
		zap.Int("lanes", tl.Stats.Lanes),
		zap.Int("portraits", tl.Stats.Portraits))

	return tl, p, cfg, nil
}
