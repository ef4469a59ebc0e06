package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lizzypokerface/news-hub-aggregator/internal/etl"
	"github.com/lizzypokerface/news-hub-aggregator/internal/extract"
	"github.com/lizzypokerface/news-hub-aggregator/internal/generation"
	"github.com/lizzypokerface/news-hub-aggregator/internal/headlines"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/metrics"
	"github.com/lizzypokerface/news-hub-aggregator/internal/phases"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/summarystore"
	"github.com/lizzypokerface/news-hub-aggregator/internal/workspace"
)

const (
	runLogFile  = "newshub.log"
	metricsFile = "metrics.prom"
)

type runOptions struct {
	date       time.Time
	accessible bool
	out        io.Writer
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dateFlag string
	var accessible bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the weekly digest, resuming from existing checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseRunDate(dateFlag, time.Now())
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDigest(runCtx, ctx, runOptions{
				date:       date,
				accessible: accessible,
				out:        cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Run date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use plain-text prompts instead of interactive forms")
	return cmd
}

func runDigest(ctx context.Context, cc *commandContext, opts runOptions) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	sources, err := cc.ensureSources()
	if err != nil {
		return err
	}
	base, err := cc.ensureLogger()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	ws, err := workspace.New(cfg.Paths.OutputDir, opts.date, base)
	if err != nil {
		return err
	}
	release, err := ws.Lock()
	if err != nil {
		return err
	}
	defer release()

	logger, closer, err := logging.RunLogger(base, ws.Path(runLogFile), cc.logLevel())
	if err != nil {
		return err
	}
	defer closer.Close()
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	for _, missing := range cfg.MissingCredentials() {
		logging.WarnWithContext(logger, "credential not configured", "credential_missing",
			logging.String("credential", missing),
			logging.String(logging.FieldImpact, "steps using it will fail or degrade"),
			logging.String(logging.FieldErrorHint, "set it in the config file or the environment"),
		)
	}

	rec := metrics.New()
	gen := generation.NewFromConfig(cfg.Generation,
		generation.WithLogger(logger),
		generation.WithMetrics(rec),
	)
	extractor := extract.NewFromConfig(cfg,
		extract.WithLogger(logger),
		extract.WithMetrics(rec),
	)

	var channels headlines.ChannelLister
	if cfg.APIKeys.YouTube != "" {
		lister, err := headlines.NewYouTubeLister(ctx, cfg.APIKeys.YouTube)
		if err != nil {
			return err
		}
		channels = lister
	}

	store, err := summarystore.Open(ws.Path(summarystore.FileName))
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Debug("summary cache opened", logging.String("path", store.Path()))

	articleETL := etl.New(ws, etl.SettingsFromConfig(cfg, sources), gen,
		etl.ConsolePrompter{Accessible: opts.accessible},
		etl.WithLogger(logger),
		etl.WithOutput(opts.out),
	)

	env := &phases.Env{
		Config:    cfg,
		Sources:   sources,
		Workspace: ws,
		Extractor: extractor,
		Generator: gen,
		Channels:  channels,
		ETL:       articleETL,
		Summaries: store,
		Metrics:   rec,
		Logger:    logger,
		RunID:     runID,
		Date:      opts.date,
		Now:       time.Now,
	}

	logger.Info("run starting",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("workspace", ws.Dir()),
		logging.String("date", opts.date.Format(dateLayout)),
		logging.Int("sources", len(sources)),
	)

	summary, runErr := pipeline.New(ws, phases.All(env),
		pipeline.WithRunID(runID),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(rec),
	).Run(ctx)

	if err := rec.WriteFile(ws.Path(metricsFile)); err != nil {
		logging.WarnWithContext(logger, "metrics not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run metrics unavailable for this run"),
		)
	}

	fmt.Fprintln(opts.out, renderResults(summary.Results))
	if runErr != nil {
		return runErr
	}
	fmt.Fprintf(opts.out, "Weekly post written to %s\n", ws.Dir())
	return nil
}
