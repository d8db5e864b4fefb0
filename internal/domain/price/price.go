// Package price contains the validated in-memory representation of hourly
// electricity spot prices.
package price

import "time"

// Day key layout shared with the cache and the feed adapter.
const dayLayout = "2006-01-02"

// Hour counts considered a usable full day. Normal days carry 24 points;
// DST transition days carry 23 or 25.
const (
	minFullDay = 23
	maxFullDay = 25
)

// Point is one hour of one calendar day with its spot price in the
// configured minor-currency unit. Prices are immutable once produced by the
// feed adapter, except for the in-place solar override.
type Point struct {
	Day   string  `json:"day" msgpack:"day"`
	Hour  int     `json:"hour" msgpack:"hour"`
	Price float64 `json:"price" msgpack:"price"`
}

// Series is one calendar day of points ordered by hour ascending.
type Series []Point

// FullDay reports whether the series has a usable full-day length.
// Consumers that need a complete day must check this and skip computation
// instead of indexing out of bounds.
func (s Series) FullDay() bool {
	return len(s) >= minFullDay && len(s) <= maxFullDay
}

// Day returns the calendar day of the series, or "" when empty.
func (s Series) Day() string {
	if len(s) == 0 {
		return ""
	}
	return s[0].Day
}

// Prices returns the price column in hour order.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// DayKey formats t as a cache-friendly day key in t's location.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// TodayKey returns the day key for now in loc.
func TodayKey(now time.Time, loc *time.Location) string {
	return DayKey(now.In(loc))
}

// TomorrowKey returns the day key for the calendar day after now in loc.
func TomorrowKey(now time.Time, loc *time.Location) string {
	return DayKey(now.In(loc).AddDate(0, 0, 1))
}

// CurrentHour returns the hour-of-day for now in loc.
func CurrentHour(now time.Time, loc *time.Location) int {
	return now.In(loc).Hour()
}
