// Package interval provides half-open time interval arithmetic for
// schedule computations. All intervals are [start, end): the start is
// included, the end is not, so back-to-back appointments never count
// as overlapping.
package interval

import "time"

// Overlaps reports whether [startA, endA) and [startB, endB) share any
// instant. Intervals that merely touch at an endpoint do not overlap.
// The predicate is symmetric in its two intervals.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// Contains reports whether [innerStart, innerEnd) lies entirely within
// [outerStart, outerEnd).
func Contains(outerStart, outerEnd, innerStart, innerEnd time.Time) bool {
	return !innerStart.Before(outerStart) && !innerEnd.After(outerEnd)
}
