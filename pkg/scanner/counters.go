package scanner

import (
	"strconv"

	"github.com/Flubio/giftshop/pkg/repeat"
	"github.com/Flubio/giftshop/pkg/types"
)

// PartOne sums every ID in rs whose digits are one unit repeated exactly
// twice.
func PartOne(rs []types.Range) int64 {
	return sumWhere(rs, repeat.IsDoubled)
}

// PartTwo sums every ID in rs whose digits are one unit repeated at least
// twice. An ID counts once however many units fit it.
func PartTwo(rs []types.Range) int64 {
	return sumWhere(rs, func(s string) bool {
		_, _, ok := repeat.Unit(s)
		return ok
	})
}

func sumWhere(rs []types.Range, invalid func(digits string) bool) int64 {
	var total int64
	for _, r := range rs {
		eachID(r, func(id int64) bool {
			if invalid(strconv.FormatInt(id, 10)) {
				total += id
			}
			return true
		})
	}
	return total
}

// eachID calls fn for every ID from r.Lower to r.Upper inclusive until fn
// returns false. Backwards ranges visit nothing. Safe at math.MaxInt64.
func eachID(r types.Range, fn func(id int64) bool) {
	if r.Upper < r.Lower {
		return
	}
	for id := r.Lower; ; id++ {
		if !fn(id) || id == r.Upper {
			return
		}
	}
}
