package app

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPlotPrices(t *testing.T) {
	Convey("Given a day of prices", t, func() {
		prices := []float64{0, 10, 20, 40}

		Convey("When plotted", func() {
			lines := plotPrices(prices, 4)

			Convey("Then the chart has height rows plus an axis", func() {
				So(len(lines), ShouldEqual, 5)
			})

			Convey("Then the tallest bar fills the top row and zeros stay blank", func() {
				So(lines[0], ShouldEqual, "       #")
				So(lines[4], ShouldEqual, " 0 1 2 3")
			})
		})
	})

	Convey("Given no prices", t, func() {
		So(plotPrices(nil, 4), ShouldBeEmpty)
	})
}
