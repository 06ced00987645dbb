package rule

import (
	"fmt"
	"strconv"

	"github.com/Flubio/giftshop/pkg/repeat"
	"github.com/Flubio/giftshop/pkg/types"
)

// ValidateRule checks rule consistency and required fields, and that every
// example and negative example behaves as declared.
func ValidateRule(r *types.Rule) error {
	if r == nil {
		return fmt.Errorf("rule is nil")
	}

	if r.ID == "" {
		return fmt.Errorf("rule ID is required")
	}
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.MinRepeats < 2 {
		return fmt.Errorf("rule %s: min_repeats must be at least 2, got %d", r.ID, r.MinRepeats)
	}
	if r.MaxRepeats != 0 && r.MaxRepeats < r.MinRepeats {
		return fmt.Errorf("rule %s: max_repeats %d is below min_repeats %d", r.ID, r.MaxRepeats, r.MinRepeats)
	}
	if r.Part < 0 || r.Part > 2 {
		return fmt.Errorf("rule %s: part must be 1, 2 or unset, got %d", r.ID, r.Part)
	}

	expectedID := r.ComputeStructuralID()
	if r.StructuralID != "" && r.StructuralID != expectedID {
		return fmt.Errorf("rule %s has inconsistent StructuralID: got %s, expected %s",
			r.ID, r.StructuralID, expectedID)
	}

	for _, ex := range r.Examples {
		if err := validateExample(ex); err != nil {
			return fmt.Errorf("rule %s: example %w", r.ID, err)
		}
		if _, _, ok := repeat.Match(ex, r.MinRepeats, r.MaxRepeats); !ok {
			return fmt.Errorf("rule %s: example %q is not flagged", r.ID, ex)
		}
	}
	for _, ex := range r.NegativeExamples {
		if err := validateExample(ex); err != nil {
			return fmt.Errorf("rule %s: negative example %w", r.ID, err)
		}
		if _, _, ok := repeat.Match(ex, r.MinRepeats, r.MaxRepeats); ok {
			return fmt.Errorf("rule %s: negative example %q is flagged", r.ID, ex)
		}
	}

	return nil
}

// ValidateRules validates each rule and rejects duplicate IDs.
func ValidateRules(rules []*types.Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := ValidateRule(r); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule ID: %s", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// validateExample requires an ID as it appears in input: digits only, no
// leading zero.
func validateExample(ex string) error {
	if _, err := strconv.ParseUint(ex, 10, 64); err != nil {
		return fmt.Errorf("%q is not an ID", ex)
	}
	if len(ex) > 1 && ex[0] == '0' {
		return fmt.Errorf("%q has a leading zero", ex)
	}
	return nil
}
