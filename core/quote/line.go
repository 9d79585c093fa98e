// Package quote resolves package presets into service lines and keeps their
// quantities in step with the client's equipment.
package quote

import (
	"aurora-quote/core/catalog"
)

// Mode says who owns a line's quantity
type Mode string

const (
	// ModeAuto - quantity follows equipment
	ModeAuto Mode = "auto"
	// ModeManual - quantity is set by a person
	ModeManual Mode = "manual"
)

// ServiceLine is one billable row of a quote. Lines are owned by a single
// caller; nothing in this package shares them.
type ServiceLine struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Group     string  `json:"group"`
	UnitHours float64 `json:"unit_hours"`

	Basis      catalog.AutoBasis `json:"auto_basis"`
	Multiplier float64           `json:"multiplier"`

	// Quantity is the current billable count
	Quantity int `json:"quantity"`

	Mode Mode `json:"mode"`

	// ManualOverride pins Quantity until the line is reset to its preset
	ManualOverride bool `json:"manual_override"`

	PresetQuantity int  `json:"preset_quantity"`
	PresetMode     Mode `json:"preset_mode"`
}

// Hours is quantity times unit hours
func (l *ServiceLine) Hours() float64 {
	return float64(l.Quantity) * l.UnitHours
}

// Drifted reports whether the line no longer matches its preset
func (l *ServiceLine) Drifted() bool {
	return l.ManualOverride || l.Quantity != l.PresetQuantity || l.Mode != l.PresetMode
}

// Clone returns an independent copy of the lines
func Clone(lines []*ServiceLine) []*ServiceLine {
	result := make([]*ServiceLine, 0, len(lines))
	for _, line := range lines {
		if line == nil {
			continue
		}
		copied := *line
		result = append(result, &copied)
	}
	return result
}

// Find returns the line with the given id
func Find(lines []*ServiceLine, id string) (*ServiceLine, bool) {
	for _, line := range lines {
		if line != nil && line.ID == id {
			return line, true
		}
	}
	return nil, false
}

// SetManualQuantity records a quantity chosen by a person. Negative values
// clamp to 0. The line stops following equipment until it is reset.
func SetManualQuantity(line *ServiceLine, qty int) {
	if qty < 0 {
		qty = 0
	}
	line.Quantity = qty
	line.Mode = ModeManual
	line.ManualOverride = true
}
