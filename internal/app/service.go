// Package app orchestrates the hourly recompute cycle: solar override,
// daily classification, and the consecutive-cheapest-window state machine.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tkasuk/nordwatt/internal/adapters/cache"
	"github.com/tkasuk/nordwatt/internal/domain/price"
	"github.com/tkasuk/nordwatt/internal/domain/solar"
	"github.com/tkasuk/nordwatt/internal/domain/stats"
	"github.com/tkasuk/nordwatt/internal/domain/window"
	"github.com/tkasuk/nordwatt/pkg/logger"
	"github.com/tkasuk/nordwatt/pkg/metrics"
)

// Memoization key for the consecutive-cheapest window; the entry expires at
// the next recheck boundary.
const windowMemoKey = "5consecutiveUpdated"

// Number of tomorrow's leading hours used by the two-day splice.
const spliceTomorrowHours = 7

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConsecutiveHours sets the cheapest contiguous block length.
func WithConsecutiveHours(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.consecutiveHours = n
		}
	}
}

// WithRecheckHour sets the local hour of the dynamic recheck and of the
// memoized window's expiry boundary.
func WithRecheckHour(hour int) Option {
	return func(s *Service) {
		if hour >= 0 && hour <= 23 {
			s.recheckHour = hour
		}
	}
}

// WithDynamicRecheck enables the two-day window recheck.
func WithDynamicRecheck(enabled bool) Option {
	return func(s *Service) {
		s.dynamicRecheck = enabled
	}
}

// WithSolarOverride enables the seasonal solar override stage.
func WithSolarOverride(enabled bool) Option {
	return func(s *Service) {
		s.solarEnabled = enabled
	}
}

// WithBucketFilter sets the per-bucket enable predicate applied on the read
// side. Classification always computes every bucket; disabled ones are just
// not exposed.
func WithBucketFilter(enabled func(name string) bool) Option {
	return func(s *Service) {
		if enabled != nil {
			s.bucketEnabled = enabled
		}
	}
}

// WithLocation sets the price-zone timezone used for TTL boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the wall clock, used by TTL tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithChart enables the ASCII price chart logged at day start.
func WithChart(enabled bool) Option {
	return func(s *Service) {
		s.plotChart = enabled
	}
}

// Service owns the current day's classification and window result. It is
// driven by strictly sequential hourly ticks; the mutex only shields the
// read-side API from a tick in progress.
type Service struct {
	mu sync.RWMutex

	engine *stats.Engine
	solar  *solar.Transform
	memo   *cache.Memo
	log    logger.Logger

	consecutiveHours int
	recheckHour      int
	dynamicRecheck   bool
	solarEnabled     bool
	plotChart        bool
	bucketEnabled    func(name string) bool
	loc              *time.Location
	now              func() time.Time

	today    price.Series
	tomorrow price.Series
	class    stats.Classification
	window   window.Result
	ticks    int64
}

// Default scheduling parameters.
const (
	defaultConsecutiveHours = 5
	defaultRecheckHour      = 7
)

// New constructs a Service around its collaborators.
func New(engine *stats.Engine, transform *solar.Transform, memo *cache.Memo, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		engine:           engine,
		solar:            transform,
		memo:             memo,
		log:              log,
		consecutiveHours: defaultConsecutiveHours,
		recheckHour:      defaultRecheckHour,
		bucketEnabled:    func(string) bool { return true },
		loc:              time.Local,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPrices hands in the adapter-validated series for today and, when
// available, tomorrow. An empty tomorrow is fine until mid-afternoon when
// the exchange publishes the next day.
func (s *Service) SetPrices(ctx context.Context, today, tomorrow price.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !today.FullDay() {
		s.log.Warn(ctx, "today's series is not a full day",
			logger.String("day", today.Day()),
			logger.Int("points", len(today)),
		)
	}
	s.today = today
	s.tomorrow = tomorrow
}

// Tick runs one hourly recompute cycle. Each stage recovers locally: bad or
// missing data skips that stage and leaves prior state untouched, so the
// next tick retries naturally.
func (s *Service) Tick(ctx context.Context, hour int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	metrics.RecordTick()
	s.ticks++
	defer func() {
		metrics.RecordTickDuration(float64(time.Since(started).Milliseconds()))
	}()

	if len(s.today) == 0 {
		s.log.Warn(ctx, "no price data for today; skipping tick", logger.Int("hour", hour))
		return
	}

	if s.solarEnabled {
		if err := s.solar.Apply(ctx, s.today, false); err != nil {
			s.log.Warn(ctx, "solar override skipped", logger.Error(err))
		}
	}

	if hour == 0 || s.class.Empty() {
		s.reclassify(ctx)
	}

	s.recomputeWindow(ctx, hour)

	if p, ok := priceAt(s.today, hour); ok {
		metrics.UpdateCurrentPrice(p)
	}
}

// reclassify rebuilds the classification wholesale. On failure the previous
// classification stays in place and the stage is retried next tick.
func (s *Service) reclassify(ctx context.Context) {
	c, err := s.engine.Classify(ctx, s.today)
	if err != nil {
		metrics.RecordClassificationError()
		s.log.Warn(ctx, "classification skipped", logger.Error(err))
		return
	}

	s.class = c
	metrics.RecordClassification()
	metrics.UpdateMedianPrice(c.Median)

	for _, b := range stats.Buckets() {
		if !s.bucketEnabled(string(b)) {
			continue
		}
		s.log.Info(ctx, "bucket classified",
			logger.String("bucket", string(b)),
			logger.Any("hours", c.Buckets[b]),
		)
	}
	s.log.Info(ctx, "median price", logger.Float64("median", c.Median), logger.String("day", c.Day))

	if s.plotChart {
		for _, line := range plotPrices(s.today.Prices(), chartHeight) {
			s.log.Info(ctx, line)
		}
	}
}

// recomputeWindow drives the consecutive-cheapest-window state machine. The
// memo entry is both the restart-surviving result and a best-effort
// single-flight gate; strictly sequential ticks make that sufficient.
func (s *Service) recomputeWindow(ctx context.Context, hour int) {
	var cached window.Result
	hit, err := s.memo.Get(ctx, windowMemoKey, &cached)
	if err != nil {
		// Corrupt entry was dropped; recompute below.
		s.log.Warn(ctx, "memoized window unreadable", logger.Error(err))
	}
	if hit {
		// Restore across restarts before deciding whether to recompute.
		s.window = cached
	}

	if hit && hour != 0 && !(s.dynamicRecheck && hour == s.recheckHour) {
		return
	}

	if !hit || hour == 0 {
		s.computeDayWindow(ctx)
		return
	}

	// Dynamic recheck: only worth splicing while the memoized block still
	// lies within today's remaining hours.
	remaining := hoursFrom(s.today, hour)
	if !cached.IntersectsHours(remaining) {
		if err := s.memo.Delete(ctx, windowMemoKey); err != nil {
			s.log.Warn(ctx, "failed to clear memoized window", logger.Error(err))
		}
		s.log.Debug(ctx, "memoized window already passed; deferring to day start",
			logger.Int("hour", hour))
		return
	}

	if len(s.tomorrow) < spliceTomorrowHours {
		s.log.Warn(ctx, "tomorrow's prices unavailable; keeping current window",
			logger.Int("points", len(s.tomorrow)))
		return
	}

	splice := make([]price.Point, 0, len(remaining)+spliceTomorrowHours)
	splice = append(splice, pointsFrom(s.today, hour)...)
	splice = append(splice, s.tomorrow[:spliceTomorrowHours]...)
	s.computeWindow(ctx, splice)
}

// computeDayWindow recomputes the window over the whole of today.
func (s *Service) computeDayWindow(ctx context.Context) {
	if !s.today.FullDay() {
		metrics.RecordWindowError()
		s.log.Warn(ctx, "cannot compute consecutive window on a partial day",
			logger.Int("points", len(s.today)))
		return
	}
	s.computeWindow(ctx, s.today)
}

// computeWindow runs the optimizer over seq and memoizes the result until
// the next recheck boundary.
func (s *Service) computeWindow(ctx context.Context, seq []price.Point) {
	started := s.now()
	res, err := window.Cheapest(s.consecutiveHours, seq)
	metrics.RecordWindowLatency(float64(time.Since(started).Milliseconds()))
	if err != nil {
		// Only reachable through configuration outside 1..24; fatal to the
		// call, never to the tick.
		metrics.RecordWindowError()
		s.log.Error(ctx, "consecutive window computation failed", logger.Error(err))
		return
	}

	s.window = res
	metrics.RecordWindowRecompute()
	s.log.Info(ctx, "consecutive cheapest hours",
		logger.Int("length", res.Length),
		logger.Any("hours", res.Hours),
	)

	if err := s.memo.Set(ctx, windowMemoKey, res, s.untilNextRecheck()); err != nil {
		s.log.Warn(ctx, "failed to memoize consecutive window", logger.Error(err))
	}
}

// untilNextRecheck returns the duration to the next recheck-hour boundary in
// the price-zone timezone.
func (s *Service) untilNextRecheck() time.Duration {
	now := s.now().In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.recheckHour, 0, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Classification returns the current day's buckets and median, filtered to
// enabled buckets.
func (s *Service) Classification(ctx context.Context) (string, map[string][]int, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make(map[string][]int, len(s.class.Buckets))
	for b, hours := range s.class.Buckets {
		if !s.bucketEnabled(string(b)) {
			continue
		}
		out := make([]int, len(hours))
		copy(out, hours)
		buckets[string(b)] = out
	}
	return s.class.Day, buckets, s.class.Median
}

// Window returns the current consecutive-cheapest window.
func (s *Service) Window(ctx context.Context) window.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := window.Result{Length: s.window.Length, Hours: make([]int, len(s.window.Hours))}
	copy(out.Hours, s.window.Hours)
	return out
}

// InBucket reports whether hour is currently in the named bucket. Unknown or
// disabled buckets answer false with an error.
func (s *Service) InBucket(ctx context.Context, name string, hour int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := stats.Bucket(name)
	if !b.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownBucket, name)
	}
	if !s.bucketEnabled(name) {
		return false, fmt.Errorf("%w: %q", ErrBucketDisabled, name)
	}
	return s.class.Contains(b, hour), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"ticks":            s.ticks,
		"day":              s.class.Day,
		"median":           s.class.Median,
		"windowHours":      len(s.window.Hours),
		"todayPoints":      len(s.today),
		"tomorrowPoints":   len(s.tomorrow),
		"consecutiveHours": s.consecutiveHours,
		"recheckHour":      s.recheckHour,
		"dynamicRecheck":   s.dynamicRecheck,
		"solarOverride":    s.solarEnabled,
	}
}

// priceAt returns the price at the given hour-of-day, if present.
func priceAt(s price.Series, hour int) (float64, bool) {
	for _, p := range s {
		if p.Hour == hour {
			return p.Price, true
		}
	}
	return 0, false
}

// hoursFrom lists today's hour labels from hour onward.
func hoursFrom(s price.Series, hour int) []int {
	var out []int
	for _, p := range s {
		if p.Hour >= hour {
			out = append(out, p.Hour)
		}
	}
	return out
}

// pointsFrom returns today's points from hour onward.
func pointsFrom(s price.Series, hour int) []price.Point {
	var out []price.Point
	for _, p := range s {
		if p.Hour >= hour {
			out = append(out, p)
		}
	}
	return out
}
