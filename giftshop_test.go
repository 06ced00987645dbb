package giftshop

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Flubio/giftshop/pkg/ranges"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	exampleInput = "11-22,95-115,998-1012,1188511880-1188511890,222220-222224," +
		"1698522-1698528,446443-446449,38593856-38593862"
	extendedInput = exampleInput + ",565653-565659,824824821-824824827,2121212118-2121212124"
)

func TestSolve_Example(t *testing.T) {
	answer, err := Solve(exampleInput)
	require.NoError(t, err)
	assert.Equal(t, int64(1227775554), answer.PartOne)

	answer, err = Solve(extendedInput)
	require.NoError(t, err)
	assert.Equal(t, int64(1227775554), answer.PartOne)
	assert.Equal(t, int64(4174379265), answer.PartTwo)
}

func TestSolve_SingleRange(t *testing.T) {
	answer, err := Solve("95-115")
	require.NoError(t, err)
	assert.Equal(t, &Answer{PartOne: 99, PartTwo: 210}, answer)
}

func TestSolve_Malformed(t *testing.T) {
	_, err := Solve("10")
	require.Error(t, err)
	assert.ErrorIs(t, err, ranges.ErrMalformedRange)
}

func TestSolveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(extendedInput+"\n"), 0644))

	answer, err := SolveFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4174379265), answer.PartTwo)

	_, err = SolveFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestSolver_MatchesSolve(t *testing.T) {
	solver, err := NewSolver(WithWorkers(3))
	require.NoError(t, err)
	assert.Len(t, solver.Rules(), 2)

	got, err := solver.Solve(context.Background(), extendedInput)
	require.NoError(t, err)

	want, err := Solve(extendedInput)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSolver_Scan(t *testing.T) {
	solver, err := NewSolver()
	require.NoError(t, err)

	var values []int64
	run, err := solver.Scan(context.Background(), 2, "95-115", func(v InvalidID) error {
		values = append(values, v.Value)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{99, 111}, values)
	assert.Equal(t, int64(210), run.Total)
	assert.NotEmpty(t, run.ID)

	_, err = solver.Scan(context.Background(), 3, "95-115", nil)
	assert.Error(t, err)
}

func TestSolver_CustomRules(t *testing.T) {
	thrice := &Rule{ID: "custom.thrice", Name: "Thrice", MinRepeats: 3, MaxRepeats: 3}
	thrice.StructuralID = thrice.ComputeStructuralID()

	solver, err := NewSolver(WithRules([]*Rule{thrice}))
	require.NoError(t, err)

	run, err := solver.ScanRule(context.Background(), thrice, "100-1000", nil)
	require.NoError(t, err)
	// 111, 222, ..., 999
	assert.Equal(t, int64(4995), run.Total)
	assert.Equal(t, int64(9), run.Count)

	_, err = NewSolver(WithRules([]*Rule{{ID: "bad", Name: "Bad", MinRepeats: 1}}))
	assert.Error(t, err)
}
