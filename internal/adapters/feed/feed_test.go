package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tkasuk/nordwatt/internal/adapters/feed"
	"github.com/tkasuk/nordwatt/pkg/logger"
)

type apiRow struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

type apiBody struct {
	Success bool                `json:"success"`
	Data    map[string][]apiRow `json:"data"`
}

func TestClientFetch(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	log := logger.Get()
	ctx := context.Background()

	vilnius, err := time.LoadLocation("Europe/Vilnius")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2024, time.June, 24, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	// Today's full local day plus tomorrow's first hours, EUR/MWh.
	rows := make([]apiRow, 0, 24+7)
	for h := 0; h < 24; h++ {
		rows = append(rows, apiRow{
			Timestamp: time.Date(2024, time.June, 24, h, 0, 0, 0, vilnius).Unix(),
			Price:     float64(100 + h),
		})
	}
	for h := 0; h < 7; h++ {
		rows = append(rows, apiRow{
			Timestamp: time.Date(2024, time.June, 25, h, 0, 0, 0, vilnius).Unix(),
			Price:     104.9,
		})
	}

	Convey("Given an API serving two days for the configured area", t, func() {
		var gotQuery struct{ start, end string }
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery.start = r.URL.Query().Get("start")
			gotQuery.end = r.URL.Query().Get("end")
			_ = json.NewEncoder(w).Encode(apiBody{
				Success: true,
				Data:    map[string][]apiRow{"lt": rows},
			})
		}))
		defer srv.Close()

		client := feed.NewClient(log,
			feed.WithBaseURL(srv.URL),
			feed.WithArea("lt"),
			feed.WithPrecision(1),
			feed.WithLocation(vilnius),
			feed.WithClock(clock),
		)

		Convey("When prices are fetched", func() {
			today, tomorrow, err := client.Fetch(ctx)
			So(err, ShouldBeNil)

			Convey("Then the request window starts four hours before the UTC day", func() {
				So(gotQuery.start, ShouldEqual, "2024-06-23T20:00:00Z")
				So(gotQuery.end, ShouldEqual, "2024-06-25T23:59:59Z")
			})

			Convey("Then today is a full local day with converted prices", func() {
				So(today.FullDay(), ShouldBeTrue)
				So(today.Day(), ShouldEqual, "2024-06-24")
				So(today[0].Hour, ShouldEqual, 0)
				So(today[0].Price, ShouldEqual, 10.0)
				So(today[23].Price, ShouldEqual, 12.3)
			})

			Convey("Then tomorrow carries the published head, rounded once", func() {
				So(len(tomorrow), ShouldEqual, 7)
				So(tomorrow.Day(), ShouldEqual, "2024-06-25")
				So(tomorrow[0].Price, ShouldEqual, 10.5)
			})
		})
	})

	Convey("Given an API response missing the configured area", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(apiBody{
				Success: true,
				Data:    map[string][]apiRow{"ee": rows},
			})
		}))
		defer srv.Close()

		client := feed.NewClient(log,
			feed.WithBaseURL(srv.URL),
			feed.WithArea("lt"),
			feed.WithClock(clock),
		)

		_, _, err := client.Fetch(ctx)
		So(err, ShouldWrap, feed.ErrBadPayload)
	})

	Convey("Given an API answering success=false", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(apiBody{Success: false})
		}))
		defer srv.Close()

		client := feed.NewClient(log, feed.WithBaseURL(srv.URL), feed.WithClock(clock))

		_, _, err := client.Fetch(ctx)
		So(err, ShouldWrap, feed.ErrBadPayload)
	})

	Convey("Given an API answering with a server error", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down for maintenance", http.StatusBadGateway)
		}))
		defer srv.Close()

		client := feed.NewClient(log, feed.WithBaseURL(srv.URL), feed.WithClock(clock))

		_, _, err := client.Fetch(ctx)
		So(err, ShouldWrap, feed.ErrFetchFailed)
	})
}
