package main

import (
	"fmt"

	"github.com/Flubio/giftshop/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	quiet      bool
	configPath string

	// logger is replaced in PersistentPreRunE; commands run directly in
	// tests keep the no-op logger.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "giftshop",
	Short: "Giftshop - find invalid product IDs",
	Long: `Giftshop scans ranges of product IDs for invalid ones: IDs whose digits
are a shorter sequence repeated, such as 6464 or 123123123.

Run without a subcommand to solve input/input.txt and print both parts.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runSolve,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default "+config.DefaultPath+" if present)")

	addSolveFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup initializes logging and applies the config file to flags the user
// did not set explicitly.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	logger, err = newLogger(verbose, quiet)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return applyConfig(cmd, cfg)
}

func newLogger(verbose, quiet bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch {
	case quiet:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return cfg.Build()
}

// applyConfig copies config values onto the command's flags unless the flag
// was given on the command line. Flags the command lacks are skipped.
func applyConfig(cmd *cobra.Command, cfg config.Config) error {
	values := map[string]string{
		"input":         cfg.Input,
		"workers":       fmt.Sprint(cfg.Workers),
		"store":         cfg.Store,
		"format":        cfg.Format,
		"color":         cfg.Color,
		"rules":         cfg.RulesPath,
		"rules-include": cfg.RulesInclude,
		"rules-exclude": cfg.RulesExclude,
	}
	for name, value := range values {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || flag.Changed || value == "" {
			continue
		}
		// Only solving commands share the config's --format choices.
		if name == "format" && cmd.Flags().Lookup("part") == nil {
			continue
		}
		if err := flag.Value.Set(value); err != nil {
			return fmt.Errorf("applying config %s=%q: %w", name, value, err)
		}
	}
	return nil
}
