package types

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// Run summarizes one scan of an input under one rule.
type Run struct {
	ID        string        `json:"id" yaml:"id"` // SHA-1(rule_structural_id + '\0' + input_id)
	RuleID    string        `json:"rule_id" yaml:"rule_id"`
	Part      int           `json:"part,omitempty" yaml:"part,omitempty"`
	InputID   InputID       `json:"input_id" yaml:"input_id"`
	Ranges    int           `json:"ranges" yaml:"ranges"`
	Scanned   int64         `json:"scanned" yaml:"scanned"` // IDs visited
	Count     int64         `json:"count" yaml:"count"`     // invalid IDs found
	Total     int64         `json:"total" yaml:"total"`     // sum of invalid IDs
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// ComputeRunID computes the content-based run ID.
// Format: SHA-1(rule_structural_id + '\0' + input_id)
func ComputeRunID(ruleStructuralID string, input InputID) string {
	h := sha1.New()
	h.Write([]byte(ruleStructuralID))
	h.Write([]byte{0})
	h.Write(input[:])
	return hex.EncodeToString(h.Sum(nil))
}
