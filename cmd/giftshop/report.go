package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Flubio/giftshop/pkg/store"
	"github.com/Flubio/giftshop/pkg/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var (
	reportStore  string
	reportFormat string
	reportColor  string
	reportLimit  int
)

// styles holds the color formatters for human output.
type styles struct {
	heading  *color.Color
	id       *color.Color
	ruleName *color.Color
	total    *color.Color
	match    *color.Color
	metadata *color.Color
}

// newStyles creates color formatters. enabled=false disables them regardless
// of the global color setting.
func newStyles(enabled bool) *styles {
	s := &styles{
		heading:  color.New(color.Bold, color.FgHiWhite),
		id:       color.New(color.FgHiGreen),
		ruleName: color.New(color.Bold, color.FgHiBlue),
		total:    color.New(color.Bold, color.FgHiGreen),
		match:    color.New(color.FgYellow),
		metadata: color.New(color.FgHiBlue),
	}

	if !enabled {
		for _, c := range []*color.Color{s.heading, s.id, s.ruleName, s.total, s.match, s.metadata} {
			c.DisableColor()
		}
	}
	return s
}

// configureColor applies a --color mode to the global color setting. auto
// colors only a terminal stdout with NO_COLOR unset.
func configureColor(mode string) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != ""
	default:
		return fmt.Errorf("unknown color mode: %s (supported: auto, always, never)", mode)
	}
	return nil
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report stored runs",
	Long:  "Read runs and their invalid IDs from a store and print a summary",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportStore, "store", "giftshop.db", "SQLite file or postgres:// DSN to read")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, yaml")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "Invalid IDs shown per run in human format (0 for all)")
}

// reportRun is one stored run with its invalid IDs.
type reportRun struct {
	Run        *types.Run         `json:"run" yaml:"run"`
	InvalidIDs []*types.InvalidID `json:"invalid_ids" yaml:"invalid_ids"`
}

func runReport(cmd *cobra.Command, args []string) error {
	switch reportFormat {
	case "human", "json", "yaml":
	default:
		return fmt.Errorf("unknown format: %s (supported: human, json, yaml)", reportFormat)
	}

	if !store.IsPostgresDSN(reportStore) && reportStore != ":memory:" {
		if _, err := os.Stat(reportStore); err != nil {
			return fmt.Errorf("store not found: %s", reportStore)
		}
	}

	st, err := store.New(store.Config{Path: reportStore})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	runs, err := st.GetRuns()
	if err != nil {
		return fmt.Errorf("loading runs: %w", err)
	}

	report := make([]reportRun, 0, len(runs))
	for _, run := range runs {
		ids, err := st.GetInvalidIDs(run.ID)
		if err != nil {
			return fmt.Errorf("loading invalid IDs for run %s: %w", run.ID, err)
		}
		report = append(report, reportRun{Run: run, InvalidIDs: ids})
	}

	out := cmd.OutOrStdout()
	switch reportFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		if err := configureColor(reportColor); err != nil {
			return err
		}
		writeReportHuman(out, report, newStyles(true))
		return nil
	}
}

func writeReportHuman(out io.Writer, report []reportRun, s *styles) {
	if len(report) == 0 {
		fmt.Fprintln(out, "No runs stored.")
		return
	}

	for i, entry := range report {
		r := entry.Run
		label := r.RuleID
		if r.Part > 0 {
			label = fmt.Sprintf("Part %d", r.Part)
		}
		fmt.Fprintf(out, "%s (%s %s)\n",
			s.heading.Sprintf("Run %d/%d", i+1, len(report)),
			s.id.Sprint(r.ID),
			s.ruleName.Sprint(label))
		fmt.Fprintf(out, "%s %s\n", s.metadata.Sprint("Rule:"), r.RuleID)
		fmt.Fprintf(out, "%s %s\n", s.metadata.Sprint("Input:"), r.InputID.Hex())
		fmt.Fprintf(out, "%s %s\n", s.metadata.Sprint("Total:"), s.total.Sprint(r.Total))
		fmt.Fprintf(out, "%s %d of %d IDs in %d ranges\n",
			s.metadata.Sprint("Invalid:"), r.Count, r.Scanned, r.Ranges)
		fmt.Fprintf(out, "%s %s (%s)\n",
			s.metadata.Sprint("Scanned:"), r.CreatedAt.Format("2006-01-02 15:04:05 MST"), r.Duration)

		shown := entry.InvalidIDs
		if reportLimit > 0 && len(shown) > reportLimit {
			shown = shown[:reportLimit]
			fmt.Fprintf(out, "Showing %d/%d invalid IDs:\n", len(shown), len(entry.InvalidIDs))
		}
		for _, v := range shown {
			writeInvalidHuman(out, v, s)
		}
		fmt.Fprintln(out)
	}
}
