package catalog

import "strings"

// AutoBasis names the equipment count that drives a service's quantity.
type AutoBasis int

const (
	// BasisNone - quantity is always set by hand
	BasisNone AutoBasis = iota
	// BasisKktTotal - all registers
	BasisKktTotal
	// BasisKktStandard - regular registers only
	BasisKktStandard
	// BasisKktSmart - smart-terminal registers only
	BasisKktSmart
	// BasisKktOther - other registers only
	BasisKktOther
	// BasisKktFirst - work units covered by the package price
	BasisKktFirst
	// BasisKktExtra - work units billed beyond the package allotment
	BasisKktExtra
	// BasisScannerTotal - all scanners
	BasisScannerTotal
	// BasisScannerFirst - 1 when any scanner is present
	BasisScannerFirst
	// BasisScannerExtra - scanners after the first
	BasisScannerExtra
	// BasisPrinterTotal - all label printers
	BasisPrinterTotal
)

var basisNames = map[AutoBasis]string{
	BasisNone:         "none",
	BasisKktTotal:     "kkt_total",
	BasisKktStandard:  "kkt_standard",
	BasisKktSmart:     "kkt_smart",
	BasisKktOther:     "kkt_other",
	BasisKktFirst:     "kkt_first",
	BasisKktExtra:     "kkt_extra",
	BasisScannerTotal: "scanner_total",
	BasisScannerFirst: "scanner_first",
	BasisScannerExtra: "scanner_extra",
	BasisPrinterTotal: "printer_total",
}

// legacy spellings still found in older matrices
var basisAliases = map[string]AutoBasis{
	"scanners_count": BasisScannerTotal,
	"scanners_total": BasisScannerTotal,
	"printers_count": BasisPrinterTotal,
}

// String returns string representation
func (b AutoBasis) String() string {
	if name, ok := basisNames[b]; ok {
		return name
	}
	return "none"
}

// IsAuto reports whether the basis derives a quantity from equipment.
func (b AutoBasis) IsAuto() bool {
	_, known := basisNames[b]
	return known && b != BasisNone
}

// ParseAutoBasis maps a matrix tag to a basis. The empty string is BasisNone;
// an unrecognised tag also yields BasisNone with ok=false so the caller can
// record the defect.
func ParseAutoBasis(tag string) (b AutoBasis, ok bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return BasisNone, true
	}
	if alias, found := basisAliases[tag]; found {
		return alias, true
	}
	for basis, name := range basisNames {
		if name == tag {
			return basis, true
		}
	}
	return BasisNone, false
}

// MarshalText implements encoding.TextMarshaler
func (b AutoBasis) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown tags decode to
// BasisNone rather than failing the whole document.
func (b *AutoBasis) UnmarshalText(text []byte) error {
	*b, _ = ParseAutoBasis(string(text))
	return nil
}
