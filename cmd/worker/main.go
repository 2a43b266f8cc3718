// Package main provides the recipe pipeline worker: it loads the document-store
// export, normalizes and validates it, and writes the insight reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"recipepipe/internal/config"
	"recipepipe/internal/logger"
	"recipepipe/internal/pipeline"
	"recipepipe/internal/report"
	"recipepipe/pkg/metadata"
)

// Version is set at build time.
var Version = "dev"

const appName = "recipepipe-worker"

type options struct {
	configPath string
	logLevel   string
	outputDir  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "worker",
		Short:         "Recipe normalize/validate/aggregate pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory")

	cmd.AddCommand(
		runCmd(opts),
		normalizeCmd(opts),
		validateCmd(opts),
		insightsCmd(opts),
		verifyCmd(opts),
		formatCmd(opts),
		configCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

// load reads the configuration and applies flag overrides.
func (o *options) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	if o.outputDir != "" {
		cfg.Output.Dir = o.outputDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Mode)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

func (o *options) pipeline(ctx context.Context) (*pipeline.Pipeline, *logger.Logger, error) {
	cfg, log, err := o.load()
	if err != nil {
		return nil, nil, err
	}

	p, err := pipeline.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	return p, log, nil
}

func runCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every stage and write all reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, log, err := opts.pipeline(cmd.Context())
			if err != nil {
				return err
			}

			defer log.Sync()

			res, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recipes=%d interactions=%d valid=%t\n",
				len(res.Normalized.Dataset.Recipes), len(res.Normalized.Dataset.Interactions), res.Validation.IsValid())

			return nil
		},
	}
}

func normalizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Normalize the export and persist the relations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, log, err := opts.pipeline(cmd.Context())
			if err != nil {
				return err
			}

			defer log.Sync()

			raw, err := p.Load(cmd.Context())
			if err != nil {
				return err
			}

			norm, checks := p.Normalize(raw)

			if err := p.Persist(cmd.Context(), norm.Dataset); err != nil {
				return err
			}

			return p.Emit(&pipeline.Result{Raw: raw, Normalized: norm, Checks: &checks})
		},
	}
}

func validateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the export and write the validation report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, log, err := opts.pipeline(cmd.Context())
			if err != nil {
				return err
			}

			defer log.Sync()

			raw, err := p.Load(cmd.Context())
			if err != nil {
				return err
			}

			norm, _ := p.Normalize(raw)

			rep, err := p.Validate(raw, norm.Dataset)
			if err != nil {
				return err
			}

			if err := p.Emit(&pipeline.Result{Raw: raw, Validation: rep}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recipes invalid=%d interactions invalid=%d users invalid=%d\n",
				rep.Recipes.Invalid, rep.Interactions.Invalid, rep.Users.Invalid)

			return nil
		},
	}
}

func insightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Compute insights from the relations persisted by normalize or run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, log, err := opts.pipeline(cmd.Context())
			if err != nil {
				return err
			}

			defer log.Sync()

			_, err = p.Insights(cmd.Context())

			return err
		},
	}
}

func configCmd(opts *options) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration or save it as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}

			if save == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.String())

				return nil
			}

			if err := cfg.SaveConfig(save); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", save)

			return nil
		},
	}

	cmd.Flags().StringVar(&save, "save", "", "Write the effective configuration to this path")

	return cmd
}

func verifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [report.md]",
		Short: "Verify the signature of a markdown report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""

			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, _, err := opts.load()
				if err != nil {
					return err
				}

				path = cfg.GetOutputPath(report.SummaryMarkdown)
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}

			meta, err := metadata.Verify(string(content))
			if err != nil {
				if errors.Is(err, metadata.ErrNoMetadataBlock) {
					return fmt.Errorf("%s is not signed: %w", path, err)
				}

				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (validated=%t dataset=%s)\n", path, meta.Validation, meta.Dataset)

			return nil
		},
	}
}
