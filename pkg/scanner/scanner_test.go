package scanner

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/Flubio/giftshop/pkg/ranges"
	"github.com/Flubio/giftshop/pkg/repeat"
	"github.com/Flubio/giftshop/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	exampleInput = "11-22,95-115,998-1012,1188511880-1188511890,222220-222224," +
		"1698522-1698528,446443-446449,38593856-38593862"
	extendedInput = exampleInput + ",565653-565659,824824821-824824827,2121212118-2121212124"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func twiceRule() *types.Rule {
	r := &types.Rule{ID: "giftshop.repeat.twice", Name: "Twice", Part: 1, MinRepeats: 2, MaxRepeats: 2}
	r.StructuralID = r.ComputeStructuralID()
	return r
}

func atLeastTwiceRule() *types.Rule {
	r := &types.Rule{ID: "giftshop.repeat.at-least-twice", Name: "At Least Twice", Part: 2, MinRepeats: 2}
	r.StructuralID = r.ComputeStructuralID()
	return r
}

func mustParse(t *testing.T, input string) []types.Range {
	t.Helper()
	rs, err := ranges.Parse(input)
	require.NoError(t, err)
	return rs
}

func collect(t *testing.T, s *Scanner, rs []types.Range) ([]types.InvalidID, *types.Run) {
	t.Helper()
	var found []types.InvalidID
	run, err := s.Scan(context.Background(), rs, func(v types.InvalidID) error {
		found = append(found, v)
		return nil
	})
	require.NoError(t, err)
	return found, run
}

func values(found []types.InvalidID) []int64 {
	out := make([]int64, 0, len(found))
	for _, v := range found {
		out = append(out, v.Value)
	}
	return out
}

func TestPartOne_Example(t *testing.T) {
	assert.Equal(t, int64(1227775554), PartOne(mustParse(t, exampleInput)))
}

func TestPartTwo_Example(t *testing.T) {
	assert.Equal(t, int64(4174379265), PartTwo(mustParse(t, extendedInput)))
}

func TestParts_SingleRange(t *testing.T) {
	rs := mustParse(t, "95-115")
	assert.Equal(t, int64(99), PartOne(rs))
	assert.Equal(t, int64(210), PartTwo(rs))
}

func TestParts_BackwardsRangeScansNothing(t *testing.T) {
	rs := []types.Range{{Lower: 22, Upper: 11}}
	assert.Equal(t, int64(0), PartOne(rs))
	assert.Equal(t, int64(0), PartTwo(rs))
}

func TestScan_PerRangeFindings(t *testing.T) {
	tests := []struct {
		input   string
		partOne []int64
		partTwo []int64
	}{
		{"11-22", []int64{11, 22}, []int64{11, 22}},
		{"95-115", []int64{99}, []int64{99, 111}},
		{"998-1012", []int64{1010}, []int64{999, 1010}},
		{"1188511880-1188511890", []int64{1188511885}, []int64{1188511885}},
		{"222220-222224", []int64{222222}, []int64{222222}},
		{"1698522-1698528", []int64{}, []int64{}},
		{"446443-446449", []int64{446446}, []int64{446446}},
		{"38593856-38593862", []int64{38593859}, []int64{38593859}},
		{"565653-565659", []int64{}, []int64{565656}},
		{"824824821-824824827", []int64{}, []int64{824824824}},
		{"2121212118-2121212124", []int64{}, []int64{2121212121}},
	}

	one, err := New(Config{Rule: twiceRule()})
	require.NoError(t, err)
	two, err := New(Config{Rule: atLeastTwiceRule()})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rs := mustParse(t, tt.input)

			found, _ := collect(t, one, rs)
			assert.Equal(t, tt.partOne, values(found))

			found, _ = collect(t, two, rs)
			assert.Equal(t, tt.partTwo, values(found))
		})
	}
}

func TestScan_RunSummary(t *testing.T) {
	s, err := New(Config{Rule: twiceRule()})
	require.NoError(t, err)

	rs := mustParse(t, exampleInput)
	found, run := collect(t, s, rs)

	var scanned int64
	for _, r := range rs {
		scanned += r.Len()
	}

	assert.Equal(t, "giftshop.repeat.twice", run.RuleID)
	assert.Equal(t, 1, run.Part)
	assert.Equal(t, len(rs), run.Ranges)
	assert.Equal(t, scanned, run.Scanned)
	assert.Equal(t, int64(len(found)), run.Count)
	assert.Equal(t, int64(1227775554), run.Total)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Empty(t, run.ID)
}

func TestScan_FindingDetails(t *testing.T) {
	s, err := New(Config{Rule: atLeastTwiceRule()})
	require.NoError(t, err)

	found, _ := collect(t, s, mustParse(t, "11-22,998-1012"))
	require.Len(t, found, 4)

	assert.Equal(t, types.InvalidID{RuleID: "giftshop.repeat.at-least-twice", Value: 11, Unit: "1", Repeats: 2, RangeIndex: 0}, found[0])
	assert.Equal(t, types.InvalidID{RuleID: "giftshop.repeat.at-least-twice", Value: 999, Unit: "9", Repeats: 3, RangeIndex: 1}, found[2])
	assert.Equal(t, types.InvalidID{RuleID: "giftshop.repeat.at-least-twice", Value: 1010, Unit: "10", Repeats: 2, RangeIndex: 1}, found[3])
}

func TestScanInput_TagsRunAndFindings(t *testing.T) {
	rule := twiceRule()
	s, err := New(Config{Rule: rule})
	require.NoError(t, err)

	var found []types.InvalidID
	run, err := s.ScanInput(context.Background(), "95-115", func(v types.InvalidID) error {
		found = append(found, v)
		return nil
	})
	require.NoError(t, err)

	inputID := types.ComputeInputID([]byte("95-115"))
	assert.Equal(t, inputID, run.InputID)
	assert.Equal(t, types.ComputeRunID(rule.StructuralID, inputID), run.ID)
	assert.Equal(t, int64(99), run.Total)

	require.Len(t, found, 1)
	assert.Equal(t, run.ID, found[0].RunID)
	assert.Equal(t, found[0].ComputeStructuralID(run.ID), found[0].StructuralID)
}

func TestScanInput_Malformed(t *testing.T) {
	s, err := New(Config{Rule: twiceRule()})
	require.NoError(t, err)

	_, err = s.ScanInput(context.Background(), "10", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ranges.ErrMalformedRange)
}

func TestScan_ParallelMatchesSequential(t *testing.T) {
	rs := mustParse(t, extendedInput)

	for _, rule := range []*types.Rule{twiceRule(), atLeastTwiceRule()} {
		t.Run(rule.ID, func(t *testing.T) {
			seq, err := New(Config{Rule: rule, Workers: 1})
			require.NoError(t, err)
			par, err := New(Config{Rule: rule, Workers: 4})
			require.NoError(t, err)

			seqFound, seqRun := collect(t, seq, rs)
			parFound, parRun := collect(t, par, rs)

			assert.Equal(t, seqFound, parFound)
			assert.Equal(t, seqRun.Total, parRun.Total)
			assert.Equal(t, seqRun.Count, parRun.Count)
			assert.Equal(t, seqRun.Scanned, parRun.Scanned)
		})
	}
}

func TestScan_CallbackErrorStops(t *testing.T) {
	stop := errors.New("stop")

	for _, workers := range []int{1, 3} {
		t.Run(strconv.Itoa(workers), func(t *testing.T) {
			s, err := New(Config{Rule: twiceRule(), Workers: workers})
			require.NoError(t, err)

			calls := 0
			_, err = s.Scan(context.Background(), mustParse(t, exampleInput), func(v types.InvalidID) error {
				calls++
				return stop
			})
			assert.ErrorIs(t, err, stop)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		s, err := New(Config{Rule: twiceRule(), Workers: workers})
		require.NoError(t, err)

		_, err = s.Scan(ctx, mustParse(t, exampleInput), nil)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestSum(t *testing.T) {
	s, err := New(Config{Rule: atLeastTwiceRule(), Workers: 2})
	require.NoError(t, err)

	total, err := s.Sum(context.Background(), mustParse(t, extendedInput))
	require.NoError(t, err)
	assert.Equal(t, int64(4174379265), total)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Rule: &types.Rule{ID: "bad", MinRepeats: 1}})
	assert.Error(t, err)
}

func TestEachID_MaxInt64(t *testing.T) {
	const maxID = int64(^uint64(0) >> 1)
	var seen []int64
	eachID(types.Range{Lower: maxID - 2, Upper: maxID}, func(id int64) bool {
		seen = append(seen, id)
		return true
	})
	assert.Equal(t, []int64{maxID - 2, maxID - 1, maxID}, seen)
}

// Properties over a span of small IDs: part 1 flags only even-length
// doubled strings, part 2 flags only exact unit repetitions, and part 2's
// set contains part 1's.
func TestScan_Properties(t *testing.T) {
	rs := []types.Range{{Lower: 1, Upper: 150000}, {Lower: 999990, Upper: 1010110}}

	one, err := New(Config{Rule: twiceRule()})
	require.NoError(t, err)
	two, err := New(Config{Rule: atLeastTwiceRule()})
	require.NoError(t, err)

	oneFound, oneRun := collect(t, one, rs)
	twoFound, twoRun := collect(t, two, rs)

	flaggedTwo := make(map[int64]bool, len(twoFound))
	for _, v := range twoFound {
		s := strconv.FormatInt(v.Value, 10)
		assert.GreaterOrEqual(t, v.Repeats, 2)
		assert.Equal(t, 0, len(s)%len(v.Unit))
		assert.Equal(t, s, strings.Repeat(v.Unit, len(s)/len(v.Unit)))
		flaggedTwo[v.Value] = true
	}

	for _, v := range oneFound {
		s := strconv.FormatInt(v.Value, 10)
		assert.Equal(t, 0, len(s)%2, "part 1 flagged odd-length %s", s)
		assert.Equal(t, s[:len(s)/2], s[len(s)/2:])
		assert.True(t, repeat.IsDoubled(s))
		assert.True(t, flaggedTwo[v.Value], "part 1 flagged %d but part 2 did not", v.Value)
	}

	assert.Equal(t, PartOne(rs), oneRun.Total)
	assert.Equal(t, PartTwo(rs), twoRun.Total)
	assert.GreaterOrEqual(t, twoRun.Total, oneRun.Total)
}
