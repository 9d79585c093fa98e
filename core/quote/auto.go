package quote

import (
	"math"

	"aurora-quote/core/catalog"
	"aurora-quote/core/equipment"
)

// Inputs is everything the auto-quantity rules read
type Inputs struct {
	Equipment        equipment.Snapshot
	IncludedKktUnits int
	Weights          equipment.Weights
}

// InputsFor prepares inputs for a package: the snapshot is normalized and
// restricted to the equipment kinds the package accepts.
func InputsFor(c *catalog.Catalog, pkg catalog.Package, snap equipment.Snapshot) Inputs {
	included := pkg.IncludedKktUnits
	if included < 0 {
		included = 0
	}
	return Inputs{
		Equipment:        snap.Normalize().Restrict(pkg.Accepts),
		IncludedKktUnits: included,
		Weights:          c.Weights(),
	}
}

func (in Inputs) workUnits() int {
	return in.Equipment.KktWorkUnits(in.Weights)
}

// basisRules holds one rule per auto basis. BasisNone has no rule.
var basisRules = map[catalog.AutoBasis]func(Inputs) int{
	catalog.BasisKktTotal:    func(in Inputs) int { return in.Equipment.KktTotal() },
	catalog.BasisKktStandard: func(in Inputs) int { return in.Equipment.Regular },
	catalog.BasisKktSmart:    func(in Inputs) int { return in.Equipment.Smart },
	catalog.BasisKktOther:    func(in Inputs) int { return in.Equipment.Other },
	catalog.BasisKktFirst: func(in Inputs) int {
		return min(in.workUnits(), in.IncludedKktUnits)
	},
	catalog.BasisKktExtra: func(in Inputs) int {
		return max(in.workUnits()-in.IncludedKktUnits, 0)
	},
	catalog.BasisScannerTotal: func(in Inputs) int { return in.Equipment.Scanners },
	catalog.BasisScannerFirst: func(in Inputs) int {
		if in.Equipment.Scanners > 0 {
			return 1
		}
		return 0
	},
	catalog.BasisScannerExtra: func(in Inputs) int { return max(in.Equipment.Scanners-1, 0) },
	catalog.BasisPrinterTotal: func(in Inputs) int { return in.Equipment.Printers },
}

// BasisValue returns the equipment count behind a basis. ok is false for
// BasisNone and for values outside the enum.
func BasisValue(b catalog.AutoBasis, in Inputs) (value int, ok bool) {
	rule, ok := basisRules[b]
	if !ok {
		return 0, false
	}
	return rule(in), true
}

// derive recomputes one auto line. Manual and overridden lines, and lines
// without a usable basis, keep their quantity.
func derive(line *ServiceLine, in Inputs) {
	if line == nil || line.Mode != ModeAuto || line.ManualOverride {
		return
	}
	value, ok := BasisValue(line.Basis, in)
	if !ok {
		return
	}
	multiplier := line.Multiplier
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		multiplier = 1
	}
	qty := math.Floor(float64(value) * multiplier)
	if qty < 0 {
		qty = 0
	}
	if qty > math.MaxInt32 {
		qty = math.MaxInt32
	}
	line.Quantity = int(qty)
}

// ApplyEquipment recomputes every auto line from the inputs, in place, and
// returns the same slice. Lines with a manual override are never touched.
// Applying the same inputs twice is a no-op.
func ApplyEquipment(lines []*ServiceLine, in Inputs) []*ServiceLine {
	for _, line := range lines {
		derive(line, in)
	}
	return lines
}

// ResetLineToPreset drops a manual override, restores the catalog preset and
// re-derives the line from the current inputs.
func ResetLineToPreset(line *ServiceLine, in Inputs) {
	if line == nil {
		return
	}
	line.ManualOverride = false
	line.Mode = line.PresetMode
	line.Quantity = line.PresetQuantity
	derive(line, in)
}
