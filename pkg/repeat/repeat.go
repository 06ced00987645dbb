// Package repeat detects digit strings built from a repeated unit.
package repeat

// IsDoubled reports whether s is some unit repeated exactly twice, i.e. its
// first half equals its second half. Odd-length strings are never doubled.
func IsDoubled(s string) bool {
	n := len(s)
	if n == 0 || n%2 != 0 {
		return false
	}
	return s[:n/2] == s[n/2:]
}

// Unit finds the shortest unit that s is made of when repeated at least
// twice. Candidate unit lengths run from 1 to len(s)/2 and must divide
// len(s); the first that reproduces s wins.
func Unit(s string) (unit string, repeats int, ok bool) {
	return Match(s, 2, 0)
}

// Match finds the shortest unit that s is made of when repeated k times with
// min <= k and, unless max is 0, k <= max.
func Match(s string, min, max int) (unit string, repeats int, ok bool) {
	n := len(s)
	for unitLen := 1; unitLen <= n/2; unitLen++ {
		if n%unitLen != 0 {
			continue
		}
		k := n / unitLen
		if k < min || (max > 0 && k > max) {
			continue
		}
		if isRepetition(s, unitLen) {
			return s[:unitLen], k, true
		}
	}
	return "", 0, false
}

// isRepetition reports whether s equals its unitLen-long prefix repeated
// len(s)/unitLen times. unitLen must divide len(s).
func isRepetition(s string, unitLen int) bool {
	unit := s[:unitLen]
	for i := unitLen; i < len(s); i += unitLen {
		if s[i:i+unitLen] != unit {
			return false
		}
	}
	return true
}
