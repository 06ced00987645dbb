package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Flubio/giftshop"
	"github.com/Flubio/giftshop/pkg/ranges"
	"github.com/Flubio/giftshop/pkg/rule"
	"github.com/Flubio/giftshop/pkg/store"
	"github.com/Flubio/giftshop/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	solveInput        string
	solvePart         int
	solveFormat       string
	solveColor        string
	solveWorkers      int
	solveStore        string
	solveIncremental  bool
	solveList         bool
	solveRulesPath    string
	solveRulesInclude string
	solveRulesExclude string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Sum the invalid IDs in the input ranges",
	Long: `Read a comma-separated list of ID ranges (lower-upper) and print the sum
of invalid IDs for each puzzle part:

  Part 1: IDs made of a digit sequence repeated exactly twice (6464)
  Part 2: IDs made of a digit sequence repeated two or more times (123123123)`,
	Args: cobra.NoArgs,
	RunE: runSolve,
}

func init() {
	addSolveFlags(solveCmd)
}

// addSolveFlags registers the solve flags on cmd. The root command and the
// solve subcommand share them.
func addSolveFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&solveInput, "input", "i", ranges.DefaultInputPath, "Path to the puzzle input")
	f.IntVarP(&solvePart, "part", "p", 0, "Solve only this part (1 or 2); 0 solves all")
	f.StringVar(&solveFormat, "format", "plain", "Output format: plain, human, json, yaml")
	f.StringVar(&solveColor, "color", "auto", "Color output for human format: auto, always, never")
	f.IntVarP(&solveWorkers, "workers", "w", 1, "Number of ranges scanned concurrently")
	f.StringVar(&solveStore, "store", "", "Persist runs to a SQLite file, postgres:// DSN, or :memory:")
	f.BoolVar(&solveIncremental, "incremental", false, "Reuse runs already in --store instead of rescanning")
	f.BoolVar(&solveList, "list", false, "List every invalid ID found")
	f.StringVar(&solveRulesPath, "rules", "", "Path to custom rules file (default: builtin rules)")
	f.StringVar(&solveRulesInclude, "rules-include", "", "Include rules matching patterns (comma-separated regex)")
	f.StringVar(&solveRulesExclude, "rules-exclude", "", "Exclude rules matching patterns (comma-separated regex)")
}

// solveResult is one rule's outcome, as printed by every format.
type solveResult struct {
	Label      string             `json:"label" yaml:"label"`
	Rule       string             `json:"rule" yaml:"rule"`
	Run        *types.Run         `json:"run" yaml:"run"`
	Cached     bool               `json:"cached,omitempty" yaml:"cached,omitempty"`
	InvalidIDs []*types.InvalidID `json:"invalid_ids,omitempty" yaml:"invalid_ids,omitempty"`
}

func runSolve(cmd *cobra.Command, args []string) error {
	switch solveFormat {
	case "plain", "human", "json", "yaml":
	default:
		return fmt.Errorf("unknown format: %s (supported: plain, human, json, yaml)", solveFormat)
	}
	if solveIncremental && solveStore == "" {
		return fmt.Errorf("--incremental requires --store")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rules, err := loadRules(solveRulesPath, solveRulesInclude, solveRulesExclude)
	if err != nil {
		return err
	}
	if solvePart != 0 {
		r, err := rule.ForPart(rules, solvePart)
		if err != nil {
			return err
		}
		rules = []*types.Rule{r}
	}

	input, err := ranges.ReadInput(solveInput)
	if err != nil {
		return err
	}
	rs, err := ranges.Parse(input)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", solveInput, err)
	}
	inputID := types.ComputeInputID([]byte(input))
	logger.Debug("input loaded",
		zap.String("path", solveInput),
		zap.String("input_id", inputID.Hex()),
		zap.Int("ranges", len(rs)))

	solver, err := giftshop.NewSolver(
		giftshop.WithRules(rules),
		giftshop.WithWorkers(solveWorkers),
		giftshop.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var st store.Store
	if solveStore != "" {
		st, err = store.New(store.Config{Path: solveStore})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		if err := st.AddInput(store.InputRecord{ID: inputID, Size: int64(len(input)), Ranges: len(rs)}); err != nil {
			return fmt.Errorf("storing input: %w", err)
		}
	}

	results := make([]solveResult, 0, len(rules))
	for _, r := range rules {
		res, err := solveRule(ctx, solver, st, r, input, inputID)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	return writeSolveResults(cmd.OutOrStdout(), results)
}

// solveRule scans input with r, or loads the stored run when --incremental
// finds one.
func solveRule(ctx context.Context, solver *giftshop.Solver, st store.Store, r *types.Rule, input string, inputID types.InputID) (solveResult, error) {
	res := solveResult{Label: resultLabel(r), Rule: r.ID}

	runID := types.ComputeRunID(r.StructuralID, inputID)
	if st != nil && solveIncremental {
		run, invalid, err := loadStoredRun(st, runID)
		if err != nil {
			return res, err
		}
		if run != nil {
			logger.Info("reusing stored run", zap.String("rule", r.ID), zap.String("run_id", runID))
			res.Cached = true
			res.Run = run
			if solveList {
				res.InvalidIDs = invalid
			}
			return res, nil
		}
	}

	var found []*types.InvalidID
	var collect func(types.InvalidID) error
	if solveList || st != nil {
		collect = func(v types.InvalidID) error {
			found = append(found, &v)
			return nil
		}
	}

	run, err := solver.ScanRule(ctx, r, input, collect)
	if err != nil {
		return res, fmt.Errorf("scanning with %s: %w", r.ID, err)
	}
	res.Run = run
	if solveList {
		res.InvalidIDs = found
	}

	if st != nil {
		if err := saveRun(st, r, run, found); err != nil {
			return res, err
		}
	}
	return res, nil
}

// loadStoredRun returns a stored run and its invalid IDs, or a nil run when
// none is stored or the stored invalid IDs do not add up to its count.
func loadStoredRun(st store.Store, runID string) (*types.Run, []*types.InvalidID, error) {
	exists, err := st.RunExists(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("checking stored run: %w", err)
	}
	if !exists {
		return nil, nil, nil
	}

	run, err := st.GetRun(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading run %s: %w", runID, err)
	}
	invalid, err := st.GetInvalidIDs(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading invalid IDs: %w", err)
	}

	var total int64
	for _, v := range invalid {
		total += v.Value
	}
	if int64(len(invalid)) != run.Count || total != run.Total {
		logger.Warn("stored run is incomplete, rescanning",
			zap.String("run_id", runID),
			zap.Int64("count", run.Count),
			zap.Int("stored", len(invalid)))
		return nil, nil, nil
	}
	return run, invalid, nil
}

// saveRun persists a run together with its rule and invalid IDs.
func saveRun(st store.Store, r *types.Rule, run *types.Run, found []*types.InvalidID) error {
	if err := st.SaveRun(r, run, found); err != nil {
		return fmt.Errorf("storing run %s: %w", run.ID, err)
	}
	logger.Debug("run stored", zap.String("run_id", run.ID), zap.Int("invalid_ids", len(found)))
	return nil
}

// loadRules loads builtin or custom rules, applies include/exclude filters
// and validates the result.
func loadRules(path, include, exclude string) ([]*types.Rule, error) {
	loader := rule.NewLoader()

	var rules []*types.Rule
	var err error
	if path != "" {
		rules, err = loader.LoadRuleFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading rules from %s: %w", path, err)
		}
		rule.Sort(rules)
	} else {
		rules, err = loader.LoadBuiltinRules()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
	}

	if include != "" || exclude != "" {
		rules, err = rule.Filter(rules, rule.FilterConfig{
			Include: rule.ParsePatterns(include),
			Exclude: rule.ParsePatterns(exclude),
		})
		if err != nil {
			return nil, fmt.Errorf("filtering rules: %w", err)
		}
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules selected")
	}

	if err := rule.ValidateRules(rules); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}

func resultLabel(r *types.Rule) string {
	if r.Part > 0 {
		return fmt.Sprintf("Part %d", r.Part)
	}
	return r.ID
}

func writeSolveResults(out io.Writer, results []solveResult) error {
	switch solveFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	case "human":
		if err := configureColor(solveColor); err != nil {
			return err
		}
		writeSolveHuman(out, results, newStyles(true))
		return nil
	default:
		writeSolvePlain(out, results)
		return nil
	}
}

func writeSolvePlain(out io.Writer, results []solveResult) {
	for _, res := range results {
		fmt.Fprintf(out, "%s: %d\n", res.Label, res.Run.Total)
		for _, v := range res.InvalidIDs {
			fmt.Fprintf(out, "  %d\n", v.Value)
		}
	}
}

func writeSolveHuman(out io.Writer, results []solveResult, s *styles) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%s)\n", s.heading.Sprint(res.Label), s.ruleName.Sprint(res.Rule))
		fmt.Fprintf(out, "  %s %s\n", s.metadata.Sprint("Total:   "), s.total.Sprint(res.Run.Total))
		fmt.Fprintf(out, "  %s %d of %d IDs in %d ranges\n",
			s.metadata.Sprint("Invalid: "), res.Run.Count, res.Run.Scanned, res.Run.Ranges)
		run := res.Run.ID
		if res.Cached {
			run += " (stored)"
		}
		fmt.Fprintf(out, "  %s %s\n", s.metadata.Sprint("Run:     "), s.id.Sprint(run))
		fmt.Fprintf(out, "  %s %s\n", s.metadata.Sprint("Duration:"), res.Run.Duration)
		for _, v := range res.InvalidIDs {
			writeInvalidHuman(out, v, s)
		}
	}
}

// writeInvalidHuman prints one ID with its repeated unit highlighted.
func writeInvalidHuman(out io.Writer, v *types.InvalidID, s *styles) {
	fmt.Fprintf(out, "    %s  %s x%d\n", s.heading.Sprint(v.Value), s.match.Sprint(v.Unit), v.Repeats)
}
