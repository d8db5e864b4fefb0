package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/tkasuk/nordwatt/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Area, convey.ShouldEqual, "lt")
				convey.So(cfg.RecheckHour, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("NORDWATT_ADDR", ":8080")
			_ = os.Setenv("NORDWATT_AREA", "ee")
			_ = os.Setenv("NORDWATT_DECIMAL_PRECISION", "2")
			_ = os.Setenv("NORDWATT_DYNAMIC_CHEAPEST_CONSECUTIVE_HOURS", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Area, convey.ShouldEqual, "ee")
				convey.So(cfg.DecimalPrecision, convey.ShouldEqual, 2)
				convey.So(cfg.DynamicCheapestConsecutiveHours, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
area: "lv"
latitude: 56.9
excessive_price_margin: 150
buckets:
  cheapest12Hours: false
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("NORDWATT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Area, convey.ShouldEqual, "lv")
				convey.So(cfg.Latitude, convey.ShouldEqual, 56.9)
				convey.So(cfg.ExcessivePriceMargin, convey.ShouldEqual, 150)
				convey.So(cfg.BucketEnabled("cheapest12Hours"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
area: "lv"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("NORDWATT_CONFIG", tmpFile)
			_ = os.Setenv("NORDWATT_AREA", "fi")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars take precedence over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Area, convey.ShouldEqual, "fi")
			})
		})

		convey.Convey("When loading an invalid configuration", func() {
			clearConfigEnvVars()
			_ = os.Setenv("NORDWATT_RECHECK_HOUR", "31")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// clearConfigEnvVars removes every NORDWATT_ variable a test may have set.
func clearConfigEnvVars() {
	for _, key := range []string{
		"NORDWATT_CONFIG",
		"NORDWATT_ADDR",
		"NORDWATT_AREA",
		"NORDWATT_DECIMAL_PRECISION",
		"NORDWATT_DYNAMIC_CHEAPEST_CONSECUTIVE_HOURS",
		"NORDWATT_RECHECK_HOUR",
	} {
		_ = os.Unsetenv(key)
	}
}

// createTempConfigFile writes content to a temp YAML file and returns its path.
func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "nordwatt-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	_ = f.Close()
	return f.Name()
}
