package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var sourcesPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration and sources file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(targetPath, config.DefaultConfigPath)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			sources, err := resolveTarget(sourcesPath, func() (string, error) {
				return filepath.Join(filepath.Dir(target), "sources.yaml"), nil
			})
			if err != nil {
				return fmt.Errorf("resolve sources path: %w", err)
			}

			for _, path := range []string{target, sources} {
				if err := checkWritable(path, overwrite); err != nil {
					return err
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			if err := config.CreateSampleSources(sources); err != nil {
				return fmt.Errorf("create sample sources: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(out, "Wrote sample sources to %s\n", sources)
			fmt.Fprintln(out, "Set paths.sources_file if the sources file lives elsewhere, and export POE_API_KEY and YOUTUBE_API_KEY before running newshub.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&sourcesPath, "sources", "", "Destination for the sources file (default next to the config)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files if present")
	return cmd
}

func resolveTarget(flagValue string, fallback func() (string, error)) (string, error) {
	target := strings.TrimSpace(flagValue)
	if target == "" {
		return fallback()
	}
	return config.ExpandPath(target)
}

func checkWritable(path string, overwrite bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	if overwrite {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists at %s (use --overwrite to replace it)", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("check path %s: %w", path, err)
	}
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and sources files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)

			sources, err := ctx.ensureSources()
			if err != nil {
				return err
			}
			analysis := len(config.FilterSources(sources, config.SourceAnalysis))
			fmt.Fprintf(out, "Sources: %d (%d analysis, %d datapoint)\n", len(sources), analysis, len(sources)-analysis)

			for _, missing := range cfg.MissingCredentials() {
				fmt.Fprintf(out, "Missing credential: %s\n", missing)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
