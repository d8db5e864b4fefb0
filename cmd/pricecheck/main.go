// pricecheck fetches today's and tomorrow's spot prices, classifies them and
// prints the result. A diagnostic companion to the service, sharing its
// domain packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/tkasuk/nordwatt/internal/adapters/feed"
	"github.com/tkasuk/nordwatt/internal/domain/stats"
	"github.com/tkasuk/nordwatt/internal/domain/window"
	"github.com/tkasuk/nordwatt/pkg/logger"
)

// Default configuration constants.
const (
	defaultArea        = "lt"
	defaultTimezone    = "Europe/Vilnius"
	defaultPrecision   = 1
	defaultWindowHours = 5
	defaultTimeout     = 30 * time.Second
)

func main() {
	var (
		area        = flag.String("area", defaultArea, "Nord Pool price area code")
		timezone    = flag.String("tz", defaultTimezone, "Price area timezone")
		precision   = flag.Int("precision", defaultPrecision, "Decimal precision for converted prices")
		windowHours = flag.Int("window", defaultWindowHours, "Consecutive cheapest block length")
	)
	flag.Parse()

	if err := run(*area, *timezone, *precision, *windowHours); err != nil {
		os.Stderr.WriteString("pricecheck failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(area, timezone string, precision, windowHours int) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client := feed.NewClient(log,
		feed.WithArea(area),
		feed.WithPrecision(precision),
		feed.WithLocation(loc),
	)

	today, tomorrow, err := client.Fetch(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("area %s, day %s, %d points (tomorrow: %d points)\n",
		area, today.Day(), len(today), len(tomorrow))
	for _, p := range today {
		fmt.Printf("  %02d:00  %8.2f\n", p.Hour, p.Price)
	}

	c, err := stats.NewEngine(stats.WithPrecision(precision)).Classify(ctx, today)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	fmt.Printf("\nmedian %.2f\n", c.Median)
	for _, b := range stats.Buckets() {
		hours := append([]int(nil), c.Buckets[b]...)
		sort.Ints(hours)
		fmt.Printf("  %-16s %v\n", b, hours)
	}

	res, err := window.Cheapest(windowHours, today)
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	fmt.Printf("\ncheapest %d consecutive hours: %v\n", res.Length, res.Hours)
	return nil
}
