package app

import (
	"fmt"
	"strings"
)

const chartHeight = 8

// plotPrices renders a coarse ASCII bar chart of a day's prices, one column
// per hour, for the day-start log. Returned lines are emitted top row first.
func plotPrices(prices []float64, height int) []string {
	if len(prices) == 0 || height <= 0 {
		return nil
	}

	maxPrice := prices[0]
	for _, p := range prices {
		if p > maxPrice {
			maxPrice = p
		}
	}
	if maxPrice <= 0 {
		maxPrice = 1
	}

	// Column heights in rows, minimum one row for any positive price.
	bars := make([]int, len(prices))
	for i, p := range prices {
		if p <= 0 {
			continue
		}
		h := int(p / maxPrice * float64(height))
		if h < 1 {
			h = 1
		}
		bars[i] = h
	}

	lines := make([]string, 0, height+1)
	for row := height; row >= 1; row-- {
		var b strings.Builder
		for _, h := range bars {
			if h >= row {
				b.WriteString(" #")
			} else {
				b.WriteString("  ")
			}
		}
		lines = append(lines, b.String())
	}

	var axis strings.Builder
	for i := range bars {
		axis.WriteString(fmt.Sprintf("%2d", i%10))
	}
	lines = append(lines, axis.String())
	return lines
}
