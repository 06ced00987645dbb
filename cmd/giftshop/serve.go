package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Flubio/giftshop"
	"github.com/Flubio/giftshop/pkg/serve"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveWorkers      int
	serveRulesPath    string
	serveRulesInclude string
	serveRulesExclude string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer solve requests over stdin/stdout",
	Long: `Run giftshop as a long-lived process that reads newline-delimited JSON
requests on stdin and writes one JSON response per request on stdout.

Request types:
  {"type":"solve","payload":{"input":"11-22,95-115"}}
  {"type":"scan","payload":{"input":"95-115","part":2,"list":true}}
  {"type":"scan_batch","payload":{"items":[{"input":"11-22","part":1}]}}
  {"type":"rules"}
  {"type":"close"}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 1, "Number of ranges scanned concurrently")
	serveCmd.Flags().StringVar(&serveRulesPath, "rules", "", "Path to custom rules file (default: builtin rules)")
	serveCmd.Flags().StringVar(&serveRulesInclude, "rules-include", "", "Include rules matching patterns (comma-separated regex)")
	serveCmd.Flags().StringVar(&serveRulesExclude, "rules-exclude", "", "Exclude rules matching patterns (comma-separated regex)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(serveRulesPath, serveRulesInclude, serveRulesExclude)
	if err != nil {
		return err
	}

	solver, err := giftshop.NewSolver(
		giftshop.WithRules(rules),
		giftshop.WithWorkers(serveWorkers),
		giftshop.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("serving", zap.Int("rules", len(rules)))
	srv := serve.NewServer(solver, cmd.InOrStdin(), cmd.OutOrStdout())
	srv.SetLogger(logger)
	return srv.Run(ctx)
}
