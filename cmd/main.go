package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"github.com/tkasuk/nordwatt/internal/adapters/cache"
	"github.com/tkasuk/nordwatt/internal/adapters/feed"
	"github.com/tkasuk/nordwatt/internal/adapters/http/api"
	"github.com/tkasuk/nordwatt/internal/app"
	"github.com/tkasuk/nordwatt/internal/config"
	"github.com/tkasuk/nordwatt/internal/domain/price"
	"github.com/tkasuk/nordwatt/internal/domain/solar"
	"github.com/tkasuk/nordwatt/internal/domain/stats"
	"github.com/tkasuk/nordwatt/internal/ticker"
	"github.com/tkasuk/nordwatt/pkg/logger"
	"github.com/tkasuk/nordwatt/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

// Cron schedules, seconds field first. The tick fires at the top of every
// hour; the sweep clears expired cache rows nightly.
const (
	hourlySchedule = "0 0 * * * *"
	sweepSchedule  = "0 30 3 * * *"
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	loc, err := cfg.Location()
	if err != nil {
		os.Stderr.WriteString("failed to load timezone: " + err.Error() + "\n")
		return
	}

	// Cache store: durable SQLite when a path is configured, in-memory
	// otherwise. Everything above degrades gracefully either way.
	var store cache.Store
	var sqliteStore *cache.SQLiteStore
	if cfg.DBPath != "" {
		sqliteStore, err = cache.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			os.Stderr.WriteString("failed to open cache database: " + err.Error() + "\n")
			return
		}
		store = sqliteStore
		log.Info(ctx, "using sqlite cache", logger.String("path", cfg.DBPath))
	} else {
		store = cache.NewMemoryStore()
		log.Warn(ctx, "no db_path configured; cache will not survive restarts")
	}
	defer func() { _ = store.Close() }()

	guard := cache.NewGuard(store, log)
	memo := cache.NewMemo(store)

	engine := stats.NewEngine(
		stats.WithPrecision(cfg.DecimalPrecision),
		stats.WithExcessivePriceMargin(cfg.ExcessivePriceMargin),
		stats.WithMinPriciestMargin(cfg.MinPriciestMargin),
	)

	transform := solar.New(guard, log,
		solar.WithLatitude(cfg.Latitude),
		solar.WithWindow(cfg.SolarOverrideJuneHourStart, cfg.SolarOverrideJuneHourEnd),
	)

	svc := app.New(engine, transform, memo, log,
		app.WithConsecutiveHours(cfg.ConsecutiveHours),
		app.WithRecheckHour(cfg.RecheckHour),
		app.WithDynamicRecheck(cfg.DynamicCheapestConsecutiveHours),
		app.WithSolarOverride(cfg.SolarOverride),
		app.WithBucketFilter(cfg.BucketEnabled),
		app.WithLocation(loc),
		app.WithChart(cfg.PlotTheChart),
	)

	client := feed.NewClient(log,
		feed.WithArea(cfg.Area),
		feed.WithPrecision(cfg.DecimalPrecision),
		feed.WithLocation(loc),
	)
	client.CheckSystemTimezone(ctx)

	// Schedule the hourly tick in the price-area timezone so hour labels and
	// the recheck boundary line up with the exchange's day.
	tk := ticker.New(log, ticker.WithCronOptions(cron.WithLocation(loc)))

	tickJob := &recomputeJob{client: client, svc: svc, loc: loc}
	if err := tk.AddJob(hourlySchedule, tickJob); err != nil {
		os.Stderr.WriteString("failed to schedule hourly tick: " + err.Error() + "\n")
		return
	}
	if sqliteStore != nil {
		if err := tk.AddJob(sweepSchedule, &sweepJob{store: sqliteStore, log: log}); err != nil {
			os.Stderr.WriteString("failed to schedule cache sweep: " + err.Error() + "\n")
			return
		}
	}

	// Prime state immediately instead of waiting for the first boundary.
	if err := tk.RunNow(ctx, tickJob); err != nil {
		log.Warn(ctx, "initial recompute incomplete", logger.Error(err))
	}

	tk.Start()
	defer tk.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// recomputeJob fetches fresh prices and runs one recompute tick. A fetch
// failure still ticks on the prices already held, per the stage-local
// recovery model.
type recomputeJob struct {
	client *feed.Client
	svc    *app.Service
	loc    *time.Location
}

func (j *recomputeJob) Name() string { return "hourly-recompute" }

func (j *recomputeJob) Run(ctx context.Context) error {
	today, tomorrow, err := j.client.Fetch(ctx)
	if err == nil {
		j.svc.SetPrices(ctx, today, tomorrow)
	}

	j.svc.Tick(ctx, price.CurrentHour(time.Now(), j.loc))

	if err != nil {
		return fmt.Errorf("price fetch: %w", err)
	}
	return nil
}

// sweepJob removes expired rows from the durable cache.
type sweepJob struct {
	store *cache.SQLiteStore
	log   logger.Logger
}

func (j *sweepJob) Name() string { return "cache-sweep" }

func (j *sweepJob) Run(ctx context.Context) error {
	removed, err := j.store.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("cache sweep: %w", err)
	}
	j.log.Info(ctx, "cache sweep complete", logger.Int("removed", int(removed)))
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	t := time.NewTicker(systemMetricsInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
