package types

import "fmt"

// Range is an inclusive span of IDs.
// Lower <= Upper is assumed; a backwards range contains nothing.
type Range struct {
	Lower int64 `json:"lower" yaml:"lower"`
	Upper int64 `json:"upper" yaml:"upper"`
}

// Contains reports whether id lies within the range.
func (r Range) Contains(id int64) bool {
	return id >= r.Lower && id <= r.Upper
}

// Len returns the number of IDs in the range, or 0 for a backwards range.
func (r Range) Len() int64 {
	if r.Upper < r.Lower {
		return 0
	}
	return r.Upper - r.Lower + 1
}

// String renders the range the way it appears in puzzle input.
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Lower, r.Upper)
}
