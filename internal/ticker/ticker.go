// Package ticker runs registered jobs on cron schedules, in the price-area
// timezone.
package ticker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/tkasuk/nordwatt/pkg/logger"
)

// Job is a schedulable unit of work.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Option applies a configuration option to the Ticker.
type Option func(*options)

type options struct {
	cronOpts []cron.Option
}

// WithCronOptions forwards options to the underlying cron runner, e.g. a
// location or seconds-field parsing.
func WithCronOptions(opts ...cron.Option) Option {
	return func(o *options) {
		o.cronOpts = append(o.cronOpts, opts...)
	}
}

// Ticker manages background jobs.
type Ticker struct {
	cron *cron.Cron
	log  logger.Logger
}

// New creates a Ticker. Schedules include a seconds field.
func New(log logger.Logger, opts ...Option) *Ticker {
	o := options{cronOpts: []cron.Option{cron.WithSeconds()}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Ticker{
		cron: cron.New(o.cronOpts...),
		log:  log.Named("ticker"),
	}
}

// Start begins running registered jobs on their schedules.
func (t *Ticker) Start() {
	t.cron.Start()
	t.log.Info(context.Background(), "ticker started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (t *Ticker) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info(context.Background(), "ticker stopped")
}

// AddJob registers job on schedule. Job errors are logged, never propagated;
// the next scheduled run is the retry.
func (t *Ticker) AddJob(schedule string, job Job) error {
	_, err := t.cron.AddFunc(schedule, func() {
		ctx := context.Background()
		t.log.Debug(ctx, "running job", logger.String("job", job.Name()))

		if err := job.Run(ctx); err != nil {
			t.log.Error(ctx, "job failed",
				logger.Error(err),
				logger.String("job", job.Name()),
			)
			return
		}
		t.log.Debug(ctx, "job completed", logger.String("job", job.Name()))
	})
	if err != nil {
		return err
	}

	t.log.Info(context.Background(), "job registered",
		logger.String("schedule", schedule),
		logger.String("job", job.Name()),
	)
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (t *Ticker) RunNow(ctx context.Context, job Job) error {
	t.log.Info(ctx, "running job immediately", logger.String("job", job.Name()))
	return job.Run(ctx)
}
