package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/phases"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/workspace"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which phases of a weekly run are checkpointed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			date, err := parseRunDate(dateFlag, time.Now())
			if err != nil {
				return err
			}
			ws, err := workspace.New(cfg.Paths.OutputDir, date, logging.NewNop())
			if err != nil {
				return err
			}
			env := &phases.Env{Config: cfg, Workspace: ws, Date: date}
			plan := pipeline.New(ws, phases.All(env)).Plan()

			done := 0
			for _, res := range plan {
				if res.State == pipeline.Skipped {
					done++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workspace: %s\n", ws.Dir())
			fmt.Fprintln(out, renderResults(plan))
			fmt.Fprintf(out, "%d of %d phases checkpointed\n", done, len(plan))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Run date (YYYY-MM-DD, default today)")
	return cmd
}
