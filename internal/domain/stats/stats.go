// Package stats classifies a day of hourly spot prices into rank buckets and
// computes the day's median price.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tkasuk/nordwatt/internal/domain/price"
)

// Bucket names a set of hours satisfying a price-rank threshold.
type Bucket string

// The full enumerated bucket set. Buckets are explicit constants rather than
// runtime name-pattern matching so membership stays typo-proof.
const (
	CheapestHour    Bucket = "cheapestHour"
	Cheapest4Hours  Bucket = "cheapest4Hours"
	Cheapest5Hours  Bucket = "cheapest5Hours"
	Cheapest6Hours  Bucket = "cheapest6Hours"
	Cheapest7Hours  Bucket = "cheapest7Hours"
	Cheapest8Hours  Bucket = "cheapest8Hours"
	Cheapest9Hours  Bucket = "cheapest9Hours"
	Cheapest10Hours Bucket = "cheapest10Hours"
	Cheapest11Hours Bucket = "cheapest11Hours"
	Cheapest12Hours Bucket = "cheapest12Hours"
	PriciestHour    Bucket = "priciestHour"
)

// cheapestRanks maps each cheapest-N bucket to its sorted-rank threshold.
var cheapestRanks = map[Bucket]int{
	CheapestHour:    1,
	Cheapest4Hours:  4,
	Cheapest5Hours:  5,
	Cheapest6Hours:  6,
	Cheapest7Hours:  7,
	Cheapest8Hours:  8,
	Cheapest9Hours:  9,
	Cheapest10Hours: 10,
	Cheapest11Hours: 11,
	Cheapest12Hours: 12,
}

// Buckets returns all bucket names in threshold order, priciest last.
func Buckets() []Bucket {
	return []Bucket{
		CheapestHour, Cheapest4Hours, Cheapest5Hours, Cheapest6Hours,
		Cheapest7Hours, Cheapest8Hours, Cheapest9Hours, Cheapest10Hours,
		Cheapest11Hours, Cheapest12Hours, PriciestHour,
	}
}

// Valid reports whether b is a known bucket.
func (b Bucket) Valid() bool {
	if b == PriciestHour {
		return true
	}
	_, ok := cheapestRanks[b]
	return ok
}

// Classification is the derived bucket-to-hours mapping plus the median for
// one day. It is rebuilt wholesale on every trigger and never patched
// incrementally, so hours from a previous day can never leak forward.
type Classification struct {
	Day     string
	Buckets map[Bucket][]int
	Median  float64
}

// Contains reports whether hour is a member of bucket b.
func (c Classification) Contains(b Bucket, hour int) bool {
	for _, h := range c.Buckets[b] {
		if h == hour {
			return true
		}
	}
	return false
}

// Empty reports whether no cheapest bucket holds any hour. This is the
// first-run-after-restart signal used by the scheduler.
func (c Classification) Empty() bool {
	for b := range cheapestRanks {
		if len(c.Buckets[b]) > 0 {
			return false
		}
	}
	return true
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPrecision sets the decimal precision used when rounding the median.
func WithPrecision(digits int) Option {
	return func(e *Engine) {
		if digits >= 0 {
			e.precision = digits
		}
	}
}

// WithExcessivePriceMargin sets the percent-of-median multiplier above which
// an hour counts as excessively priced.
func WithExcessivePriceMargin(percent float64) Option {
	return func(e *Engine) {
		if percent > 0 {
			e.excessiveMargin = percent
		}
	}
}

// WithMinPriciestMargin sets the absolute price floor below which an hour is
// never classified as priciest.
func WithMinPriciestMargin(margin float64) Option {
	return func(e *Engine) {
		e.minPriciest = margin
	}
}

// Engine computes classifications from a day's price series.
type Engine struct {
	precision       int
	excessiveMargin float64
	minPriciest     float64
}

// Default engine thresholds.
const (
	defaultPrecision       = 1
	defaultExcessiveMargin = 200
	priciestMaxShare       = 0.9
)

// NewEngine creates an Engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		precision:       defaultPrecision,
		excessiveMargin: defaultExcessiveMargin,
		minPriciest:     0,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classify builds a fresh Classification for series. The series must be a
// usable full day; otherwise ErrInsufficientData is returned and nothing is
// mutated.
func (e *Engine) Classify(ctx context.Context, series price.Series) (Classification, error) {
	if err := ctx.Err(); err != nil {
		return Classification{}, fmt.Errorf("classify cancelled: %w", err)
	}
	if !series.FullDay() {
		return Classification{}, fmt.Errorf("%w: series has %d points", ErrInsufficientData, len(series))
	}

	// Stable sort a copy by price ascending; the original hour order stays
	// untouched for the membership pass below.
	sorted := make(price.Series, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	n := len(sorted)
	// Median pairs sorted ranks floor(n/2)-1 and ceil(n/2). For even n this
	// leans toward the upper-middle pair instead of the textbook n/2-1,n/2
	// average; the behavior is preserved as observed upstream.
	lo := sorted[n/2-1].Price
	hi := sorted[int(math.Ceil(float64(n)/2))].Price
	median := roundTo((lo+hi)/2, e.precision)

	c := Classification{
		Day:     series.Day(),
		Buckets: make(map[Bucket][]int, len(cheapestRanks)+1),
		Median:  median,
	}
	for _, b := range Buckets() {
		c.Buckets[b] = []int{}
	}

	// Cheapest-N membership: an hour joins the k-bucket when its price does
	// not exceed the k-th ranked price, so boundary ties may overfill a
	// bucket.
	for _, p := range series {
		for b, k := range cheapestRanks {
			if k <= n && p.Price <= sorted[k-1].Price {
				c.Buckets[b] = append(c.Buckets[b], p.Hour)
			}
		}
	}
	for b := range cheapestRanks {
		sort.Ints(c.Buckets[b])
	}

	// Priciest pass runs after the cheapest buckets exist: an hour already in
	// the 12-cheapest set never qualifies, nor does one at or below the
	// absolute floor.
	maxPrice := sorted[n-1].Price
	for _, p := range series {
		excessive := p.Price >= maxPrice*priciestMaxShare ||
			p.Price >= median*e.excessiveMargin/100
		if excessive && !c.Contains(Cheapest12Hours, p.Hour) && p.Price > e.minPriciest {
			c.Buckets[PriciestHour] = append(c.Buckets[PriciestHour], p.Hour)
		}
	}
	sort.Ints(c.Buckets[PriciestHour])

	return c, nil
}

// roundTo rounds v half away from zero to the given number of decimals.
func roundTo(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}
