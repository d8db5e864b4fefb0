// Package window finds the minimum-sum contiguous run of hours over a price
// sequence, optionally one spliced across a day boundary.
package window

import (
	"fmt"

	"github.com/tkasuk/nordwatt/internal/domain/price"
)

// Result is the selected minimal-sum contiguous block.
type Result struct {
	Length int   `json:"length" msgpack:"length"`
	Hours  []int `json:"hours" msgpack:"hours"`
}

// Contains reports whether hour appears in the selected block. Hours from a
// spliced tomorrow segment are plain 0-23 values, so callers tracking
// calendar days must disambiguate themselves.
func (r Result) Contains(hour int) bool {
	for _, h := range r.Hours {
		if h == hour {
			return true
		}
	}
	return false
}

// IntersectsHours reports whether any selected hour appears in hours.
func (r Result) IntersectsHours(hours []int) bool {
	for _, h := range hours {
		if r.Contains(h) {
			return true
		}
	}
	return false
}

// Cheapest evaluates every contiguous run of exactly length points in seq and
// returns the one with the minimum price sum, tie-broken to the earliest
// starting index. seq may be a single day or today's tail spliced with
// tomorrow's head.
func Cheapest(length int, seq []price.Point) (Result, error) {
	if length <= 0 || length > len(seq) {
		return Result{}, fmt.Errorf("%w: length %d over %d points", ErrInvalidLength, length, len(seq))
	}

	// Prefix sums keep the scan linear; inputs are tiny (<=31 points) so the
	// win is clarity, not speed.
	prefix := make([]float64, len(seq)+1)
	for i, p := range seq {
		prefix[i+1] = prefix[i] + p.Price
	}

	best := 0
	bestSum := prefix[length] - prefix[0]
	for start := 1; start+length <= len(seq); start++ {
		sum := prefix[start+length] - prefix[start]
		if sum < bestSum {
			best = start
			bestSum = sum
		}
	}

	hours := make([]int, length)
	for i := range hours {
		hours[i] = seq[best+i].Hour
	}
	return Result{Length: length, Hours: hours}, nil
}
