package types

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Rule describes which digit repetitions make an ID invalid.
type Rule struct {
	ID               string   `json:"id" yaml:"id"`     // e.g., "giftshop.repeat.twice"
	Name             string   `json:"name" yaml:"name"` // human-readable name
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	MinRepeats       int      `json:"min_repeats" yaml:"min_repeats"`
	MaxRepeats       int      `json:"max_repeats" yaml:"max_repeats"`       // 0 means unbounded
	Part             int      `json:"part,omitempty" yaml:"part,omitempty"` // puzzle part answered by this rule, 0 if none
	StructuralID     string   `json:"structural_id" yaml:"structural_id"`   // SHA-1 of repeat bounds (computed)
	Examples         []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	NegativeExamples []string `json:"negative_examples,omitempty" yaml:"negative_examples,omitempty"`
	Categories       []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// ComputeStructuralID computes SHA-1 of the repeat bounds. Rules flagging
// the same IDs share a structural ID whatever they are called.
func (r *Rule) ComputeStructuralID() string {
	h := sha1.New()
	fmt.Fprintf(h, "%d:%d", r.MinRepeats, r.MaxRepeats)
	return hex.EncodeToString(h.Sum(nil))
}

// Bounds renders the accepted repeat counts, e.g. "2", "2-3" or "2+".
func (r *Rule) Bounds() string {
	switch {
	case r.MaxRepeats == 0:
		return fmt.Sprintf("%d+", r.MinRepeats)
	case r.MaxRepeats == r.MinRepeats:
		return fmt.Sprintf("%d", r.MinRepeats)
	default:
		return fmt.Sprintf("%d-%d", r.MinRepeats, r.MaxRepeats)
	}
}
