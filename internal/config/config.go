// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Price zone timezone shared by all supported Nordpool areas (LT, LV, EE, FI).
const defaultAreaTimezone = "Europe/Vilnius"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite cache database. Empty selects the volatile
	// in-memory store (idempotency flags then do not survive restarts).
	DBPath string `koanf:"db_path"`

	// Area selects the Nordpool price zone, e.g. "lt", "lv", "ee", "fi".
	Area string `koanf:"area"`

	// Timezone is the IANA name of the price-zone timezone.
	Timezone string `koanf:"timezone"`

	// DecimalPrecision sets rounding for converted prices and the median.
	DecimalPrecision int `koanf:"decimal_precision"`

	// ExcessivePriceMargin is the percent-of-median multiplier above which an
	// hour is classified as priciest.
	ExcessivePriceMargin float64 `koanf:"excessive_price_margin"`

	// MinPriciestMargin is the absolute price floor for the priciest bucket.
	MinPriciestMargin float64 `koanf:"min_priciest_margin"`

	// Latitude feeds the solar override offset model.
	Latitude float64 `koanf:"latitude"`

	// SolarOverride enables the seasonal daylight price override.
	SolarOverride bool `koanf:"solar_override"`

	// SolarOverrideJuneHourStart and SolarOverrideJuneHourEnd bound the June
	// override window; start inclusive, end exclusive.
	SolarOverrideJuneHourStart int `koanf:"solar_override_june_hour_start"`
	SolarOverrideJuneHourEnd   int `koanf:"solar_override_june_hour_end"`

	// DynamicCheapestConsecutiveHours enables the two-day window recheck.
	DynamicCheapestConsecutiveHours bool `koanf:"dynamic_cheapest_consecutive_hours"`

	// ConsecutiveHours is the length of the cheapest contiguous block.
	ConsecutiveHours int `koanf:"consecutive_hours"`

	// RecheckHour is the local hour at which the dynamic recheck runs and at
	// which the memoized window expires.
	RecheckHour int `koanf:"recheck_hour"`

	// PlotTheChart logs an ASCII chart of today's prices at day start.
	PlotTheChart bool `koanf:"plot_the_chart"`

	// Buckets toggles individual classification buckets by name. Buckets not
	// listed stay enabled.
	Buckets map[string]bool `koanf:"buckets"`
}

// New creates a Config with defaults.
func New() *Config {
	c := &Config{
		LogLevel:                        "info",
		Addr:                            ":9080",
		DBPath:                          "",
		Area:                            "lt",
		Timezone:                        defaultAreaTimezone,
		DecimalPrecision:                1,
		ExcessivePriceMargin:            200,
		MinPriciestMargin:               0,
		Latitude:                        55,
		SolarOverride:                   false,
		SolarOverrideJuneHourStart:      11,
		SolarOverrideJuneHourEnd:        17,
		DynamicCheapestConsecutiveHours: false,
		ConsecutiveHours:                5,
		RecheckHour:                     7,
		PlotTheChart:                    false,
		Buckets:                         map[string]bool{},
	}
	return c
}

// BucketEnabled reports whether the named bucket is enabled. Unknown names
// default to enabled so new buckets need no config migration.
func (c *Config) BucketEnabled(name string) bool {
	enabled, ok := c.Buckets[name]
	if !ok {
		return true
	}
	return enabled
}
