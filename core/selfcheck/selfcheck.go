// Package selfcheck compares the catalog against golden package totals and
// validates every package preset. It never changes what a quote costs; a
// failing check only raises the catalog health flag.
package selfcheck

import (
	"fmt"
	"math"

	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/pricing"
	"aurora-quote/core/quote"
)

// HoursEpsilon is the tolerance used when comparing golden hours
const HoursEpsilon = 1e-9

// Expectation is the golden result for one package under its default
// equipment and the given rate
type Expectation struct {
	PackageID catalog.PackageID `json:"package_id"`
	Rate      float64           `json:"rate"`
	Hours     float64           `json:"hours"`
	Price     int64             `json:"price"`
}

// BuiltinExpectations returns the golden totals of the built-in catalog
func BuiltinExpectations() []Expectation {
	return []Expectation{
		{PackageID: catalog.RetailOnly, Rate: catalog.DefaultRatePerHour, Hours: 9, Price: 44550},
		{PackageID: catalog.WholesaleOnly, Rate: catalog.DefaultRatePerHour, Hours: 7, Price: 34650},
		{PackageID: catalog.ProducerOnly, Rate: catalog.DefaultRatePerHour, Hours: 12, Price: 59400},
		{PackageID: catalog.ProducerRetail, Rate: catalog.DefaultRatePerHour, Hours: 18, Price: 89100},
	}
}

// DefaultTotals resolves a package preset, applies the package's default
// equipment and prices the result
func DefaultTotals(c *catalog.Catalog, id catalog.PackageID, rate float64) (pricing.Totals, *diagnostics.Diagnostic) {
	lines, diag := quote.ResolvePreset(c, id)
	if pkg, ok := c.Package(id); ok {
		quote.ApplyEquipment(lines, quote.InputsFor(c, pkg, pkg.DefaultEquipment))
	}
	return pricing.ComputeTotals(lines, rate), diag
}

// RunSelfCheck recomputes every expectation from scratch. A mismatch, or a
// package that cannot be resolved, marks health broken. The returned
// diagnostics are empty when the catalog agrees with every expectation.
func RunSelfCheck(c *catalog.Catalog, expectations []Expectation, health *diagnostics.Health) []diagnostics.Diagnostic {
	result := []diagnostics.Diagnostic{}

	for _, exp := range expectations {
		totals, diag := DefaultTotals(c, exp.PackageID, exp.Rate)

		if matches(exp, totals) && diag == nil {
			continue
		}

		message := "golden totals differ"
		if diag != nil {
			message = diag.Message
		}
		if len(totals.SkippedLines) > 0 {
			message = fmt.Sprintf("%s; invalid hours on %v", message, totals.SkippedLines)
		}
		result = append(result, diagnostics.Diagnostic{
			Kind:          diagnostics.KindSelfCheckMismatch,
			PackageID:     exp.PackageID,
			ExpectedHours: exp.Hours,
			ActualHours:   totals.TotalHours,
			ExpectedPrice: exp.Price,
			ActualPrice:   totals.TotalPrice,
			Message:       message,
		})
	}

	if len(result) > 0 {
		health.MarkBroken()
	}
	return result
}

func matches(exp Expectation, totals pricing.Totals) bool {
	return math.Abs(totals.TotalHours-exp.Hours) <= HoursEpsilon && totals.TotalPrice == exp.Price
}

// ValidateAllPresets resolves every known package and reports those that are
// missing from the catalog or resolve to no lines. It has no side effects.
func ValidateAllPresets(c *catalog.Catalog) []diagnostics.Diagnostic {
	result := []diagnostics.Diagnostic{}
	for _, id := range catalog.KnownPackages {
		if _, diag := quote.ResolvePreset(c, id); diag != nil {
			result = append(result, *diag)
		}
	}
	return result
}
