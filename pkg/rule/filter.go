package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Flubio/giftshop/pkg/types"
)

// FilterConfig selects rules by ID using regular expressions.
type FilterConfig struct {
	Include []string // only rules matching one of these are kept; empty keeps all
	Exclude []string // rules matching one of these are dropped
}

// ParsePatterns splits a comma-separated list of patterns, dropping blanks.
func ParsePatterns(patterns string) []string {
	result := []string{}
	for _, p := range strings.Split(patterns, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter keeps the rules whose IDs pass the include patterns and none of the
// exclude patterns. Input order is preserved.
func Filter(rules []*types.Rule, config FilterConfig) ([]*types.Rule, error) {
	include, err := compileAll(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(config.Exclude)
	if err != nil {
		return nil, err
	}

	filtered := make([]*types.Rule, 0, len(rules))
	for _, r := range rules {
		if len(include) > 0 && !matchesAny(r.ID, include) {
			continue
		}
		if matchesAny(r.ID, exclude) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	regexes := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

func matchesAny(ruleID string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(ruleID) {
			return true
		}
	}
	return false
}
