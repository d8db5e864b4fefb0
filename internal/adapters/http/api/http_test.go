package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tkasuk/nordwatt/internal/adapters/http/api"
	"github.com/tkasuk/nordwatt/internal/app"
	"github.com/tkasuk/nordwatt/internal/domain/window"
)

// stubDeps is a canned Dependencies implementation for handler tests.
type stubDeps struct {
	day     string
	median  float64
	buckets map[string][]int
	window  window.Result
}

func (s *stubDeps) Classification(context.Context) (string, map[string][]int, float64) {
	return s.day, s.buckets, s.median
}

func (s *stubDeps) Window(context.Context) window.Result {
	return s.window
}

func (s *stubDeps) InBucket(_ context.Context, bucket string, hour int) (bool, error) {
	switch bucket {
	case "priciestHour":
		return false, app.ErrBucketDisabled
	case "cheapestHour", "cheapest5Hours":
		hours, ok := s.buckets[bucket]
		if !ok {
			return false, nil
		}
		for _, h := range hours {
			if h == hour {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, app.ErrUnknownBucket
	}
}

func (s *stubDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"day": s.day, "ticks": 3}
}

func newTestMux() (*http.ServeMux, *stubDeps) {
	deps := &stubDeps{
		day:    "2024-06-24",
		median: 12.5,
		buckets: map[string][]int{
			"cheapestHour":   {3},
			"cheapest5Hours": {1, 2, 3, 4, 5},
		},
		window: window.Result{Length: 5, Hours: []int{1, 2, 3, 4, 5}},
	}
	mux := http.NewServeMux()
	api.NewServer(deps, deps).Register(context.Background(), mux)
	return mux, deps
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestSignalsEndpoint(t *testing.T) {
	Convey("Given the signal API", t, func() {
		mux, deps := newTestMux()

		Convey("When GET /signals", func() {
			rec := get(mux, "/signals")

			Convey("Then the classification is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var body struct {
					Day     string           `json:"day"`
					Median  float64          `json:"median"`
					Buckets map[string][]int `json:"buckets"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Day, ShouldEqual, deps.day)
				So(body.Median, ShouldEqual, deps.median)
				So(body.Buckets["cheapestHour"], ShouldResemble, []int{3})
			})
		})

		Convey("When POST /signals", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signals", nil))

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestWindowEndpoint(t *testing.T) {
	Convey("Given the signal API", t, func() {
		mux, _ := newTestMux()

		Convey("When GET /window", func() {
			rec := get(mux, "/window")

			Convey("Then the current window is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var body window.Result
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Length, ShouldEqual, 5)
				So(body.Hours, ShouldResemble, []int{1, 2, 3, 4, 5})
			})
		})
	})
}

func TestActiveEndpoint(t *testing.T) {
	Convey("Given the signal API", t, func() {
		mux, _ := newTestMux()

		Convey("When querying a member hour", func() {
			rec := get(mux, "/active/cheapestHour?hour=3")

			So(rec.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Bucket string `json:"bucket"`
				Hour   int    `json:"hour"`
				Active bool   `json:"active"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.Bucket, ShouldEqual, "cheapestHour")
			So(body.Hour, ShouldEqual, 3)
			So(body.Active, ShouldBeTrue)
		})

		Convey("When querying a non-member hour", func() {
			rec := get(mux, "/active/cheapestHour?hour=7")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"active":false`)
		})

		Convey("When the hour parameter is missing or out of range", func() {
			So(get(mux, "/active/cheapestHour").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/active/cheapestHour?hour=24").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/active/cheapestHour?hour=x").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the bucket is unknown", func() {
			rec := get(mux, "/active/cheapest13Hours?hour=3")

			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(rec.Body.String(), ShouldContainSubstring, "unknown_bucket")
		})

		Convey("When the bucket is disabled", func() {
			rec := get(mux, "/active/priciestHour?hour=3")

			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(rec.Body.String(), ShouldContainSubstring, "bucket_disabled")
		})

		Convey("When the bucket path is empty", func() {
			So(get(mux, "/active/?hour=3").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the signal API", t, func() {
		mux, _ := newTestMux()

		Convey("When GET /stats", func() {
			rec := get(mux, "/stats")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"day":"2024-06-24"`)
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given the signal API", t, func() {
		mux, _ := newTestMux()

		Convey("When the client sends no request id", func() {
			rec := get(mux, "/window")

			Convey("Then one is generated and echoed", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
			})
		})

		Convey("When the client supplies a request id", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/window", nil)
			req.Header.Set("X-Request-Id", "abc-123")
			mux.ServeHTTP(rec, req)

			Convey("Then the same id is echoed", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldEqual, "abc-123")
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the signal API", t, func() {
		mux, _ := newTestMux()

		Convey("When GET /healthz", func() {
			rec := get(mux, "/healthz")

			Convey("Then the metrics registry is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
