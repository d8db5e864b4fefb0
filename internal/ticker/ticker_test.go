package ticker_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tkasuk/nordwatt/internal/ticker"
	"github.com/tkasuk/nordwatt/pkg/logger"
)

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func (j *countingJob) Name() string { return j.name }

func TestTicker(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	log := logger.Get()
	ctx := context.Background()

	Convey("Given a ticker", t, func() {
		tk := ticker.New(log)

		Convey("Then a valid six-field schedule registers", func() {
			So(tk.AddJob("0 0 * * * *", &countingJob{name: "hourly"}), ShouldBeNil)
		})

		Convey("Then a malformed schedule is rejected", func() {
			So(tk.AddJob("not a schedule", &countingJob{name: "bad"}), ShouldNotBeNil)
		})

		Convey("Then RunNow executes out of schedule and propagates errors", func() {
			job := &countingJob{name: "now"}
			So(tk.RunNow(ctx, job), ShouldBeNil)
			So(job.runs, ShouldEqual, 1)

			failing := &countingJob{name: "boom", err: errors.New("boom")}
			So(tk.RunNow(ctx, failing), ShouldNotBeNil)
		})
	})
}
