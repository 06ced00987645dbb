package rule

import (
	"testing"

	"github.com/Flubio/giftshop/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string returns empty slice",
			input:    "",
			expected: []string{},
		},
		{
			name:     "single pattern",
			input:    "twice$",
			expected: []string{"twice$"},
		},
		{
			name:     "patterns with spaces are trimmed",
			input:    " twice$ , at-least.* ,, ",
			expected: []string{"twice$", "at-least.*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePatterns(tt.input))
		})
	}
}

func TestFilter(t *testing.T) {
	rules := []*types.Rule{
		{ID: "giftshop.repeat.twice"},
		{ID: "giftshop.repeat.at-least-twice"},
		{ID: "custom.repeat.thrice"},
	}

	tests := []struct {
		name     string
		config   FilterConfig
		expected []string
	}{
		{
			name:     "no patterns keeps everything",
			config:   FilterConfig{},
			expected: []string{"giftshop.repeat.twice", "giftshop.repeat.at-least-twice", "custom.repeat.thrice"},
		},
		{
			name:     "include only",
			config:   FilterConfig{Include: []string{"^giftshop\\."}},
			expected: []string{"giftshop.repeat.twice", "giftshop.repeat.at-least-twice"},
		},
		{
			name:     "exclude only",
			config:   FilterConfig{Exclude: []string{"at-least"}},
			expected: []string{"giftshop.repeat.twice", "custom.repeat.thrice"},
		},
		{
			name:     "include then exclude",
			config:   FilterConfig{Include: []string{"^giftshop\\."}, Exclude: []string{"at-least"}},
			expected: []string{"giftshop.repeat.twice"},
		},
		{
			name:     "nothing matches",
			config:   FilterConfig{Include: []string{"^nope$"}},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := Filter(rules, tt.config)
			require.NoError(t, err)

			ids := make([]string, 0, len(filtered))
			for _, r := range filtered {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := Filter([]*types.Rule{{ID: "x"}}, FilterConfig{Include: []string{"("}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid regex pattern")

	_, err = Filter([]*types.Rule{{ID: "x"}}, FilterConfig{Exclude: []string{"["}})
	require.Error(t, err)
}
