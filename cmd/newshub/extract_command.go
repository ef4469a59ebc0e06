package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lizzypokerface/news-hub-aggregator/internal/extract"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
)

const extractPreviewRunes = 600

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Run the tiered extractor against one URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			url := strings.TrimSpace(args[0])
			out := cmd.OutOrStdout()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			extractor := extract.NewFromConfig(cfg,
				extract.WithLogger(logger),
				extract.WithObserver(func(a extract.Attempt) {
					line := fmt.Sprintf("%-22s attempt %d: %s", a.Tier, a.Attempt, a.Outcome)
					if a.Length > 0 {
						line += fmt.Sprintf(" (%d chars)", a.Length)
					}
					if a.Err != nil {
						line += ": " + a.Err.Error()
					}
					fmt.Fprintln(out, line)
				}),
			)

			fmt.Fprintf(out, "Extracting %s (%s)\n", url, extract.FamilyOf(url))
			text := extractor.Text(runCtx, url)
			if err := runCtx.Err(); err != nil {
				return err
			}
			if text == "" {
				return errors.New("no tier produced usable content")
			}
			fmt.Fprintf(out, "Extracted %d characters\n\n", len([]rune(text)))
			fmt.Fprintln(out, preview(text, full))
			logging.NewComponentLogger(logger, "cli").Debug("extraction complete", logging.String(logging.FieldItemURL, url))
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print the whole text instead of a preview")
	return cmd
}

func preview(text string, full bool) string {
	runes := []rune(text)
	if full || len(runes) <= extractPreviewRunes {
		return text
	}
	return string(runes[:extractPreviewRunes]) + "…"
}
