package types

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// InvalidID is a single ID flagged by a rule.
type InvalidID struct {
	StructuralID string `json:"structural_id" yaml:"structural_id"` // SHA-1(run_id + '\0' + value)
	RunID        string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	RuleID       string `json:"rule_id" yaml:"rule_id"`
	Value        int64  `json:"value" yaml:"value"`
	Unit         string `json:"unit" yaml:"unit"`       // repeated digit sequence, e.g. "64" for 6464
	Repeats      int    `json:"repeats" yaml:"repeats"` // how many times Unit repeats
	RangeIndex   int    `json:"range_index" yaml:"range_index"`
}

// ComputeStructuralID computes the content-based ID of the flagged value
// within a run.
// Format: SHA-1(run_id + '\0' + value)
func (v *InvalidID) ComputeStructuralID(runID string) string {
	h := sha1.New()
	h.Write([]byte(runID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(v.Value, 10)))
	return hex.EncodeToString(h.Sum(nil))
}
