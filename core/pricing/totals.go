// Package pricing aggregates service lines into hours and money.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"aurora-quote/core/quote"
)

// FallbackRatePerHour replaces a missing or corrupt hourly rate
const FallbackRatePerHour = 4950

// GroupTotal is the subtotal of one display group
type GroupTotal struct {
	Group string  `json:"group"`
	Hours float64 `json:"hours"`
	Price int64   `json:"price"`
}

// Totals is computed fresh for every request and never mutated
type Totals struct {
	TotalHours float64 `json:"total_hours"`
	TotalPrice int64   `json:"total_price"`

	// Rate is the hourly rate actually applied
	Rate float64 `json:"rate"`

	// RateFallback is set when the requested rate was unusable
	RateFallback bool `json:"rate_fallback,omitempty"`

	// Groups holds subtotals in first-seen line order
	Groups []GroupTotal `json:"groups"`

	// SkippedLines lists lines whose hours were invalid and counted as 0
	SkippedLines []string `json:"skipped_lines,omitempty"`
}

// EffectiveRate returns the rate to bill at and whether the fallback was used
func EffectiveRate(ratePerHour float64) (float64, bool) {
	if math.IsNaN(ratePerHour) || math.IsInf(ratePerHour, 0) || ratePerHour <= 0 {
		return FallbackRatePerHour, true
	}
	return ratePerHour, false
}

// Price converts hours to whole currency units, rounding half up
func Price(hours, rate float64) int64 {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return 0
	}
	return decimal.NewFromFloat(hours).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart()
}

// lineHours returns the hours a line contributes and false when the line
// had to be clamped to 0
func lineHours(line *quote.ServiceLine) (float64, bool) {
	if line.Quantity <= 0 {
		return 0, true
	}
	if math.IsNaN(line.UnitHours) || math.IsInf(line.UnitHours, 0) || line.UnitHours < 0 {
		return 0, false
	}
	hours := line.Hours()
	if math.IsInf(hours, 0) {
		return 0, false
	}
	return hours, true
}

// ComputeTotals sums quantity times unit hours over all lines and prices the
// result. A bad line counts as 0 hours instead of poisoning the total, and
// an unusable rate is replaced with FallbackRatePerHour.
func ComputeTotals(lines []*quote.ServiceLine, ratePerHour float64) Totals {
	rate, fallback := EffectiveRate(ratePerHour)
	totals := Totals{Rate: rate, RateFallback: fallback, Groups: []GroupTotal{}}

	groupIdx := make(map[string]int)
	for _, line := range lines {
		if line == nil {
			continue
		}
		hours, ok := lineHours(line)
		if !ok {
			totals.SkippedLines = append(totals.SkippedLines, line.ID)
		}

		idx, seen := groupIdx[line.Group]
		if !seen {
			idx = len(totals.Groups)
			groupIdx[line.Group] = idx
			totals.Groups = append(totals.Groups, GroupTotal{Group: line.Group})
		}
		totals.Groups[idx].Hours += hours
		totals.TotalHours += hours
	}

	if math.IsInf(totals.TotalHours, 0) {
		totals.TotalHours = 0
	}
	for i := range totals.Groups {
		totals.Groups[i].Price = Price(totals.Groups[i].Hours, rate)
	}
	totals.TotalPrice = Price(totals.TotalHours, rate)
	return totals
}
