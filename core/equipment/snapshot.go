// Package equipment describes the client's equipment counts that drive
// automatic service quantities.
package equipment

import "math"

// Snapshot is the current equipment for one quote.
type Snapshot struct {
	// Regular is the number of standard cash registers
	Regular int `json:"regular"`

	// Smart is the number of smart-terminal registers
	Smart int `json:"smart"`

	// Other is the number of registers of any other kind
	Other int `json:"other"`

	// Scanners is the number of barcode scanners
	Scanners int `json:"scanners"`

	// Printers is the number of label printers
	Printers int `json:"printers"`
}

// Weights converts registers to work units. Smart and other registers take
// more setup work than a regular one.
type Weights struct {
	Regular int `json:"regular"`
	Smart   int `json:"smart"`
	Other   int `json:"other"`
}

// DefaultWeights is used when a catalog does not declare its own.
var DefaultWeights = Weights{Regular: 1, Smart: 2, Other: 2}

// OrDefault returns DefaultWeights for the zero value and clamps negative
// weights to 0 otherwise.
func (w Weights) OrDefault() Weights {
	if w == (Weights{}) {
		return DefaultWeights
	}
	return Weights{
		Regular: clamp(w.Regular),
		Smart:   clamp(w.Smart),
		Other:   clamp(w.Other),
	}
}

// Kinds lists the equipment kinds a package accepts.
type Kinds struct {
	Kkt      bool `json:"kkt"`
	Scanners bool `json:"scanners"`
	Printers bool `json:"printers"`
}

// AllKinds accepts every kind of equipment.
var AllKinds = Kinds{Kkt: true, Scanners: true, Printers: true}

// FromCounts builds a snapshot from loosely typed counts, as decoded from a
// request. NaN, infinities and negatives become 0; fractions are truncated.
func FromCounts(regular, smart, other, scanners, printers float64) Snapshot {
	return Snapshot{
		Regular:  count(regular),
		Smart:    count(smart),
		Other:    count(other),
		Scanners: count(scanners),
		Printers: count(printers),
	}
}

// Normalize clamps counts to [0, math.MaxInt32].
func (s Snapshot) Normalize() Snapshot {
	return Snapshot{
		Regular:  clamp(s.Regular),
		Smart:    clamp(s.Smart),
		Other:    clamp(s.Other),
		Scanners: clamp(s.Scanners),
		Printers: clamp(s.Printers),
	}
}

// Restrict zeroes the kinds k does not accept.
func (s Snapshot) Restrict(k Kinds) Snapshot {
	if !k.Kkt {
		s.Regular, s.Smart, s.Other = 0, 0, 0
	}
	if !k.Scanners {
		s.Scanners = 0
	}
	if !k.Printers {
		s.Printers = 0
	}
	return s
}

// KktTotal is the number of registers of every kind, capped at
// math.MaxInt32.
func (s Snapshot) KktTotal() int {
	s = s.Normalize()
	return saturate(int64(s.Regular) + int64(s.Smart) + int64(s.Other))
}

// KktWorkUnits is the weighted register count, capped at math.MaxInt32.
func (s Snapshot) KktWorkUnits(w Weights) int {
	s, w = s.Normalize(), w.OrDefault()
	return saturate(
		int64(saturate(int64(s.Regular)*int64(w.Regular))) +
			int64(saturate(int64(s.Smart)*int64(w.Smart))) +
			int64(saturate(int64(s.Other)*int64(w.Other))))
}

// IsZero reports whether no equipment is present.
func (s Snapshot) IsZero() bool {
	return s.Normalize() == Snapshot{}
}

func clamp(v int) int {
	return saturate(int64(v))
}

func saturate(v int64) int {
	if v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func count(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
