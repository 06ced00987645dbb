// Package giftshop finds invalid product IDs in the gift shop database.
//
// An ID is invalid when its decimal digits are one shorter sequence repeated:
// exactly twice for part one ("6464"), at least twice for part two
// ("123123123"). Input is a single line of inclusive ranges:
//
//	11-22,95-115,998-1012
//
// # Basic Usage
//
//	answer, err := giftshop.SolveFile("input/input.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Part 1: %d\nPart 2: %d\n", answer.PartOne, answer.PartTwo)
//
// # Inspecting Invalid IDs
//
//	solver, err := giftshop.NewSolver(giftshop.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	run, err := solver.Scan(ctx, 2, input, func(v giftshop.InvalidID) error {
//	    fmt.Printf("%d = %q x%d\n", v.Value, v.Unit, v.Repeats)
//	    return nil
//	})
package giftshop

import (
	"context"
	"fmt"

	"github.com/Flubio/giftshop/pkg/ranges"
	"github.com/Flubio/giftshop/pkg/rule"
	"github.com/Flubio/giftshop/pkg/scanner"
	"github.com/Flubio/giftshop/pkg/types"
	"go.uber.org/zap"
)

// Re-export commonly used types for convenience.
type (
	// Range is an inclusive span of IDs.
	Range = types.Range

	// Rule decides which repetitions make an ID invalid.
	Rule = types.Rule

	// InvalidID is a single flagged ID.
	InvalidID = types.InvalidID

	// Run summarizes one scan of an input under one rule.
	Run = types.Run
)

// Answer holds both puzzle answers for one input.
type Answer struct {
	PartOne int64 `json:"part_one" yaml:"part_one"`
	PartTwo int64 `json:"part_two" yaml:"part_two"`
}

// Solve parses input once and returns both answers.
func Solve(input string) (*Answer, error) {
	rs, err := ranges.Parse(input)
	if err != nil {
		return nil, err
	}
	return &Answer{
		PartOne: scanner.PartOne(rs),
		PartTwo: scanner.PartTwo(rs),
	}, nil
}

// SolveFile reads the input file and solves it.
func SolveFile(path string) (*Answer, error) {
	input, err := ranges.ReadInput(path)
	if err != nil {
		return nil, err
	}
	return Solve(input)
}

// Solver scans inputs with a fixed set of rules.
type Solver struct {
	config *solverConfig
}

// solverConfig holds solver configuration.
type solverConfig struct {
	rules   []*types.Rule
	workers int
	logger  *zap.Logger
}

// Option configures a Solver.
type Option func(*solverConfig)

// WithRules uses custom rules instead of the builtin part one and part two rules.
func WithRules(rules []*Rule) Option {
	return func(c *solverConfig) {
		c.rules = rules
	}
}

// WithWorkers scans up to n ranges concurrently. Results do not depend on n.
func WithWorkers(n int) Option {
	return func(c *solverConfig) {
		c.workers = n
	}
}

// WithLogger sets the logger passed to scanners.
func WithLogger(logger *zap.Logger) Option {
	return func(c *solverConfig) {
		c.logger = logger
	}
}

// NewSolver creates a Solver. By default it uses the builtin rules, scans
// sequentially and does not log.
func NewSolver(opts ...Option) (*Solver, error) {
	config := &solverConfig{workers: 1}
	for _, opt := range opts {
		opt(config)
	}

	if config.rules == nil {
		rules, err := rule.NewLoader().LoadBuiltinRules()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
		config.rules = rules
	}
	if err := rule.ValidateRules(config.rules); err != nil {
		return nil, fmt.Errorf("validating rules: %w", err)
	}
	if config.logger == nil {
		config.logger = zap.NewNop()
	}

	return &Solver{config: config}, nil
}

// Rules returns the solver's rules.
func (s *Solver) Rules() []*Rule {
	return s.config.rules
}

// Scan runs the rule answering part over input, calling fn for each invalid ID.
func (s *Solver) Scan(ctx context.Context, part int, input string, fn func(InvalidID) error) (*Run, error) {
	r, err := rule.ForPart(s.config.rules, part)
	if err != nil {
		return nil, err
	}
	return s.ScanRule(ctx, r, input, fn)
}

// ScanRule runs r over input, calling fn for each invalid ID.
func (s *Solver) ScanRule(ctx context.Context, r *Rule, input string, fn func(InvalidID) error) (*Run, error) {
	sc, err := scanner.New(scanner.Config{
		Rule:    r,
		Workers: s.config.workers,
		Logger:  s.config.logger,
	})
	if err != nil {
		return nil, err
	}
	return sc.ScanInput(ctx, input, fn)
}

// Solve returns both answers using the solver's rules.
func (s *Solver) Solve(ctx context.Context, input string) (*Answer, error) {
	one, err := s.Scan(ctx, 1, input, nil)
	if err != nil {
		return nil, err
	}
	two, err := s.Scan(ctx, 2, input, nil)
	if err != nil {
		return nil, err
	}
	return &Answer{PartOne: one.Total, PartTwo: two.Total}, nil
}
