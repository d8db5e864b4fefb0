package price_test

import (
	"testing"
	"time"

	"github.com/tkasuk/nordwatt/internal/domain/price"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeriesFullDay(t *testing.T) {
	Convey("Given price series of various lengths", t, func() {
		mk := func(n int) price.Series {
			s := make(price.Series, n)
			for i := range s {
				s[i] = price.Point{Day: "2024-06-01", Hour: i, Price: float64(i)}
			}
			return s
		}

		Convey("Then a 24-point day is a full day", func() {
			So(mk(24).FullDay(), ShouldBeTrue)
		})

		Convey("Then DST-adjusted 23 and 25 point days are full days", func() {
			So(mk(23).FullDay(), ShouldBeTrue)
			So(mk(25).FullDay(), ShouldBeTrue)
		})

		Convey("Then truncated or empty days are not", func() {
			So(mk(0).FullDay(), ShouldBeFalse)
			So(mk(12).FullDay(), ShouldBeFalse)
			So(mk(26).FullDay(), ShouldBeFalse)
		})
	})
}

func TestDayKeys(t *testing.T) {
	Convey("Given a fixed instant and the Vilnius timezone", t, func() {
		loc, err := time.LoadLocation("Europe/Vilnius")
		So(err, ShouldBeNil)

		// 23:30 UTC is already the next day in Vilnius (UTC+3 in summer).
		now := time.Date(2024, 6, 10, 23, 30, 0, 0, time.UTC)

		Convey("Then keys are formed in the area timezone", func() {
			So(price.TodayKey(now, loc), ShouldEqual, "2024-06-11")
			So(price.TomorrowKey(now, loc), ShouldEqual, "2024-06-12")
			So(price.CurrentHour(now, loc), ShouldEqual, 2)
		})
	})
}

func TestSeriesAccessors(t *testing.T) {
	Convey("Given a short series", t, func() {
		s := price.Series{
			{Day: "2024-06-01", Hour: 0, Price: 1.5},
			{Day: "2024-06-01", Hour: 1, Price: 2.5},
		}

		Convey("Then Day and Prices read through", func() {
			So(s.Day(), ShouldEqual, "2024-06-01")
			So(s.Prices(), ShouldResemble, []float64{1.5, 2.5})
		})

		Convey("Then an empty series has no day", func() {
			So(price.Series{}.Day(), ShouldEqual, "")
		})
	})
}
