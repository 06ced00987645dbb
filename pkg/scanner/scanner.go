// Package scanner walks ID ranges and flags IDs made of a repeated digit
// sequence.
//
// Every ID of every range is visited; there is no arithmetic shortcut. The
// totals this produces are the puzzle answers, so the walk itself is the
// definition of the result.
package scanner

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Flubio/giftshop/pkg/ranges"
	"github.com/Flubio/giftshop/pkg/repeat"
	"github.com/Flubio/giftshop/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cancelCheckMask controls how often a long range checks for cancellation.
const cancelCheckMask = 1<<16 - 1

// InvalidFunc receives each invalid ID as it is found.
type InvalidFunc func(v types.InvalidID) error

// Config configures a Scanner.
type Config struct {
	// Rule decides which IDs are invalid. Required.
	Rule *types.Rule
	// Workers is the number of ranges scanned concurrently. Values below 2
	// scan sequentially.
	Workers int
	// Logger receives debug output. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Scanner applies one rule to lists of ranges.
type Scanner struct {
	rule    *types.Rule
	workers int
	logger  *zap.Logger
}

// rangeResult is what one range contributes to a run.
type rangeResult struct {
	scanned int64
	count   int64
	total   int64
	invalid []types.InvalidID
}

// New creates a Scanner.
func New(cfg Config) (*Scanner, error) {
	if cfg.Rule == nil {
		return nil, fmt.Errorf("rule is required")
	}
	if cfg.Rule.MinRepeats < 2 {
		return nil, fmt.Errorf("rule %s: min_repeats must be at least 2", cfg.Rule.ID)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		rule:    cfg.Rule,
		workers: workers,
		logger:  logger.With(zap.String("rule", cfg.Rule.ID)),
	}, nil
}

// Rule returns the rule the scanner applies.
func (s *Scanner) Rule() *types.Rule {
	return s.rule
}

// Scan visits every ID of every range and calls fn for each invalid one, in
// range order and then ascending ID order regardless of Workers. fn may be
// nil. The returned run has no ID or input; see ScanInput.
func (s *Scanner) Scan(ctx context.Context, rs []types.Range, fn InvalidFunc) (*types.Run, error) {
	start := time.Now()
	run := &types.Run{
		RuleID:    s.rule.ID,
		Part:      s.rule.Part,
		Ranges:    len(rs),
		CreatedAt: start.UTC(),
	}

	var err error
	if s.workers > 1 && len(rs) > 1 {
		err = s.scanParallel(ctx, rs, run, fn)
	} else {
		err = s.scanSequential(ctx, rs, run, fn)
	}
	if err != nil {
		return nil, err
	}

	run.Duration = time.Since(start)
	s.logger.Debug("scan complete",
		zap.Int("ranges", run.Ranges),
		zap.Int64("scanned", run.Scanned),
		zap.Int64("count", run.Count),
		zap.Int64("total", run.Total),
		zap.Duration("duration", run.Duration))
	return run, nil
}

// ScanInput parses raw puzzle input and scans it. The run and every invalid
// ID passed to fn carry content-based IDs derived from the input and rule.
func (s *Scanner) ScanInput(ctx context.Context, input string, fn InvalidFunc) (*types.Run, error) {
	rs, err := ranges.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}

	inputID := types.ComputeInputID([]byte(input))
	runID := types.ComputeRunID(s.rule.StructuralID, inputID)

	var tagged InvalidFunc
	if fn != nil {
		tagged = func(v types.InvalidID) error {
			v.RunID = runID
			v.StructuralID = v.ComputeStructuralID(runID)
			return fn(v)
		}
	}

	run, err := s.Scan(ctx, rs, tagged)
	if err != nil {
		return nil, err
	}
	run.ID = runID
	run.InputID = inputID
	return run, nil
}

// Sum returns the sum of all invalid IDs in rs.
func (s *Scanner) Sum(ctx context.Context, rs []types.Range) (int64, error) {
	run, err := s.Scan(ctx, rs, nil)
	if err != nil {
		return 0, err
	}
	return run.Total, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Scanner) scanSequential(ctx context.Context, rs []types.Range, run *types.Run, fn InvalidFunc) error {
	for i, r := range rs {
		res, err := s.scanRange(ctx, i, r, fn)
		if err != nil {
			return err
		}
		addResult(run, res)
	}
	return nil
}

func (s *Scanner) scanParallel(ctx context.Context, rs []types.Range, run *types.Run, fn InvalidFunc) error {
	results := make([]rangeResult, len(rs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, r := range rs {
		g.Go(func() error {
			var found []types.InvalidID
			var collect InvalidFunc
			if fn != nil {
				collect = func(v types.InvalidID) error {
					found = append(found, v)
					return nil
				}
			}
			res, err := s.scanRange(gctx, i, r, collect)
			if err != nil {
				return err
			}
			res.invalid = found
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Re-emit in range order so output matches a sequential scan.
	for _, res := range results {
		if fn != nil {
			for _, v := range res.invalid {
				if err := fn(v); err != nil {
					return err
				}
			}
		}
		addResult(run, res)
	}
	return nil
}

func (s *Scanner) scanRange(ctx context.Context, index int, r types.Range, fn InvalidFunc) (rangeResult, error) {
	var res rangeResult
	if err := ctx.Err(); err != nil {
		return res, err
	}

	s.logger.Debug("scanning range", zap.Int("index", index), zap.Stringer("range", r))

	var err error
	eachID(r, func(id int64) bool {
		res.scanned++
		if res.scanned&cancelCheckMask == 0 {
			if err = ctx.Err(); err != nil {
				return false
			}
		}

		unit, repeats, ok := repeat.Match(strconv.FormatInt(id, 10), s.rule.MinRepeats, s.rule.MaxRepeats)
		if !ok {
			return true
		}
		res.count++
		res.total += id
		if fn != nil {
			err = fn(types.InvalidID{
				RuleID:     s.rule.ID,
				Value:      id,
				Unit:       unit,
				Repeats:    repeats,
				RangeIndex: index,
			})
			return err == nil
		}
		return true
	})
	return res, err
}

func addResult(run *types.Run, res rangeResult) {
	run.Scanned += res.scanned
	run.Count += res.count
	run.Total += res.total
}
