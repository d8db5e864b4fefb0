// Package solar seasonally zeroes a daylight sub-window of a day's prices,
// modeling self-produced photovoltaic power as free energy.
package solar

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tkasuk/nordwatt/internal/domain/price"
	"github.com/tkasuk/nordwatt/pkg/logger"
	"github.com/tkasuk/nordwatt/pkg/metrics"
)

// Guard is the idempotency capability the transform needs; satisfied by the
// cache guard.
type Guard interface {
	HasRun(ctx context.Context, key string) bool
	MarkRun(ctx context.Context, key string, ttl time.Duration)
}

// Season bounds and offset model constants. The offset widens linearly with
// the day distance from the June 24 solstice anchor, steeper at higher
// latitudes.
const (
	seasonStartMonth = time.March
	seasonEndMonth   = time.September

	solsticeMonth = time.June
	solsticeDay   = 24

	baseMinutesPerDay     = 1.6
	latitudeMinutesPerDay = 0.04
	referenceLatitude     = 55

	flagPrefix = "solarOverrideApplied_"
	flagTTL    = 48 * time.Hour
)

// Option applies a configuration option to the Transform.
type Option func(*Transform)

// WithLatitude sets the site latitude used by the offset model.
func WithLatitude(lat float64) Option {
	return func(t *Transform) {
		if lat != 0 {
			t.latitude = lat
		}
	}
}

// WithWindow sets the configured June window: start hour inclusive, end hour
// exclusive.
func WithWindow(startHour, endHour int) Option {
	return func(t *Transform) {
		t.startHour = startHour
		t.endHour = endHour
	}
}

// WithClock overrides the wall clock, used by season tests.
func WithClock(now func() time.Time) Option {
	return func(t *Transform) {
		if now != nil {
			t.now = now
		}
	}
}

// Transform applies the seasonal override, at most once per calendar day.
type Transform struct {
	guard     Guard
	log       logger.Logger
	latitude  float64
	startHour int
	endHour   int
	now       func() time.Time
}

// Default June window, matching midday solar production.
const (
	defaultStartHour = 11
	defaultEndHour   = 17
)

// New creates a Transform guarded by guard.
func New(guard Guard, log logger.Logger, opts ...Option) *Transform {
	t := &Transform{
		guard:     guard,
		log:       log,
		latitude:  referenceLatitude,
		startHour: defaultStartHour,
		endHour:   defaultEndHour,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Apply zeroes today's prices inside the seasonally adjusted window, in
// place. Outside March-September it is a no-op. The per-day idempotency flag
// suppresses repeat applications unless force is set; the flag is set even
// when the adjusted window came out empty, so the day is not re-attempted.
func (t *Transform) Apply(ctx context.Context, today price.Series, force bool) error {
	day := today.Day()
	if day == "" {
		return fmt.Errorf("%w: empty series", ErrInsufficientData)
	}

	date, err := time.ParseInLocation("2006-01-02", day, t.now().Location())
	if err != nil {
		return fmt.Errorf("%w: bad day key %q", ErrInsufficientData, day)
	}
	if date.Month() < seasonStartMonth || date.Month() > seasonEndMonth {
		return nil
	}

	flag := flagPrefix + day
	if !force && t.guard.HasRun(ctx, flag) {
		t.log.Debug(ctx, "solar override already applied", logger.String("day", day))
		return nil
	}

	start, end := t.adjustedWindow(date)
	if start < end {
		for i := range today {
			if today[i].Hour >= start && today[i].Hour < end {
				today[i].Price = 0
			}
		}
		metrics.RecordSolarOverride()
		t.log.Info(ctx, "solar override applied",
			logger.String("day", day),
			logger.Int("startHour", start),
			logger.Int("endHour", end),
		)
	} else {
		// Narrow or inverted window near the season edges; nothing to zero.
		t.log.Debug(ctx, "solar override window empty",
			logger.String("day", day),
			logger.Int("startHour", start),
			logger.Int("endHour", end),
		)
	}

	t.guard.MarkRun(ctx, flag, flagTTL)
	return nil
}

// adjustedWindow narrows the configured June window by the date's distance
// from the solstice: start drifts later, end drifts earlier, both rounded to
// the nearest whole hour. The configured exclusive end gains one hour before
// adjustment.
func (t *Transform) adjustedWindow(date time.Time) (int, int) {
	solstice := time.Date(date.Year(), solsticeMonth, solsticeDay, 0, 0, 0, 0, date.Location())
	daysDiff := math.Abs(date.Sub(solstice).Hours() / 24)

	offsetMinutes := daysDiff * (baseMinutesPerDay + latitudeMinutesPerDay*(t.latitude-referenceLatitude))

	start := int(math.Round(float64(t.startHour) + offsetMinutes/60))
	end := int(math.Round(float64(t.endHour+1) - offsetMinutes/60))
	return start, end
}
