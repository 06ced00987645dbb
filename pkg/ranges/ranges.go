// Package ranges parses puzzle input into inclusive ID ranges.
//
// Input is a single line of comma-separated ranges, each written as two
// base-10 bounds joined by a dash:
//
//	11-22,95-115,998-1012
//
// Parsing is strict about shape and lenient about meaning: a token that does
// not split into exactly two integers is an error, but backwards ranges and
// leading zeros are accepted as written.
package ranges

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Flubio/giftshop/pkg/types"
)

// DefaultInputPath is where the puzzle input is read from when no path is given.
const DefaultInputPath = "input/input.txt"

var (
	// ErrMalformedRange is returned for a token that is not two dash-separated parts.
	ErrMalformedRange = errors.New("malformed range")
	// ErrInvalidBound is returned for a bound that is not a base-10 integer.
	ErrInvalidBound = errors.New("invalid bound")
)

// Parse splits input on commas and parses each token as a range.
// Ranges are returned in input order.
func Parse(input string) ([]types.Range, error) {
	tokens := strings.Split(input, ",")
	result := make([]types.Range, 0, len(tokens))
	for i, token := range tokens {
		r, err := ParseRange(token)
		if err != nil {
			return nil, fmt.Errorf("range %d %q: %w", i, token, err)
		}
		result = append(result, r)
	}
	return result, nil
}

// ParseRange parses a single "lower-upper" token.
func ParseRange(token string) (types.Range, error) {
	bounds := strings.Split(token, "-")
	if len(bounds) != 2 {
		return types.Range{}, fmt.Errorf("%w: expected 2 bounds, got %d", ErrMalformedRange, len(bounds))
	}

	lower, err := parseBound(bounds[0])
	if err != nil {
		return types.Range{}, fmt.Errorf("lower bound: %w", err)
	}
	upper, err := parseBound(bounds[1])
	if err != nil {
		return types.Range{}, fmt.Errorf("upper bound: %w", err)
	}

	return types.Range{Lower: lower, Upper: upper}, nil
}

// ReadInput reads the whole input file. One trailing line terminator is
// dropped; everything else reaches the parser unchanged.
func ReadInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	input := string(data)
	if strings.HasSuffix(input, "\r\n") {
		return strings.TrimSuffix(input, "\r\n"), nil
	}
	return strings.TrimSuffix(input, "\n"), nil
}

// Format renders ranges back into puzzle input form.
func Format(rs []types.Range) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// =============================================================================
// HELPERS
// =============================================================================

func parseBound(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidBound, s, err)
	}
	return n, nil
}
