package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yurifrl/cardcsv/pkg/config"
	"github.com/yurifrl/cardcsv/pkg/executors"
	"github.com/yurifrl/cardcsv/pkg/models"
	"github.com/yurifrl/cardcsv/pkg/parser"
	"github.com/yurifrl/cardcsv/pkg/plan"
	"github.com/yurifrl/cardcsv/pkg/service"
)

var (
	cliFilters filters
	cfgFile    string
)

func newLogger(cfg *config.Config) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "cardcsv",
		Level:           cfg.Level(),
	})
}

// setup loads the configuration and builds the default job for commands
// that convert cards.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, service.Job, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, service.Job{}, err
	}
	logger := newLogger(cfg)

	profile, err := cfg.ResolveProfile()
	if err != nil {
		return nil, nil, service.Job{}, err
	}
	job := service.Job{
		Profile: profile,
		Options: cfg.Options(),
		Filters: cliFilters.toFilterFuncs(),
	}
	return cfg, logger, job, nil
}

var rootCmd = &cobra.Command{
	Use:   "cardcsv [flags] [infile]",
	Short: "Convert a JSON list of card records into a flat CSV file",
	Long: `cardcsv reads one JSON array of card objects from infile (or standard input
when omitted or "-") and prints a header line followed by one CSV line per card.

Inputs may be local files, http(s) URLs, or .gz/.xz/.bz2 compressed files;
.ndjson and .jsonl files hold one card object per line.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, job, err := setup(cmd)
		if err != nil {
			return err
		}

		input := parser.Stdin
		if len(args) == 1 {
			input = args[0]
		}

		processor := service.NewProcessor(cfg, logger)
		res, err := processor.Convert(cmd.Context(), input, os.Stdout, job)
		if err != nil {
			return err
		}
		logger.Debug("conversion finished", "input", input, "records", res.Records, "rows", res.Rows)
		return nil
	},
}

var dirCmd = &cobra.Command{
	Use:   "dir <input_dir>",
	Short: "Convert every card dump in a directory to <name>.csv",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, job, err := setup(cmd)
		if err != nil {
			return err
		}

		processor := service.NewProcessor(cfg, logger)
		results, err := processor.ProcessDirectory(cmd.Context(), args[0], cfg.GetOutputPath(), job)
		if err != nil {
			return err
		}
		logger.Info("directory processed", "dir", args[0], "files", len(results))
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <plan_file>",
	Short: "Preview a YAML plan of conversions (dry-run)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Plan preview for %s\n", args[0])
		p.Print()
		fmt.Println()

		_, err = executors.New(logger, cfg).Plan(cmd.Context(), p, os.Stdout)
		return err
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan_file>",
	Short: "Run every conversion of a YAML plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}

		results, err := executors.New(logger, cfg).Apply(cmd.Context(), p)
		if err != nil {
			return err
		}
		fmt.Printf("Applied %d job(s)\n", len(results))
		return nil
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in column profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range models.ProfileNames() {
			p, err := models.LookupProfile(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-12s %s\n", name, strings.Join(p.Header(), p.Separator))
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is ./cardcsv.yaml)")
	rootCmd.PersistentFlags().String("profile", models.DefaultProfile, "Column profile (see 'cardcsv profiles')")
	rootCmd.PersistentFlags().Bool("clean-reminder-text", false, "Remove parenthesized reminder text")
	rootCmd.PersistentFlags().Bool("keywords-only", false, "Reduce the text column to known ability keywords")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.name, "name", "", "Only cards whose name contains this (case insensitive)")
	rootCmd.PersistentFlags().StringSliceVar(&cliFilters.types, "type", nil, "Only cards with one of these types")
	rootCmd.PersistentFlags().StringSliceVar(&cliFilters.colors, "color", nil, "Only cards with one of these colors")

	// Flags specific to the dir subcommand
	dirCmd.Flags().StringP("output", "o", "", "Output directory (default: next to each input)")

	rootCmd.AddCommand(dirCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(profilesCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
