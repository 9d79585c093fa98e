// Package diagnostics carries the operator-facing reports produced by the
// preset resolver, the totals aggregator, the self-check and the validator.
// Diagnostics are never part of the pricing contract.
package diagnostics

import (
	"fmt"
	"sync/atomic"

	"aurora-quote/core/catalog"
)

// Kind classifies a diagnostic
type Kind string

const (
	// KindSelfCheckMismatch - golden totals differ from computed totals
	KindSelfCheckMismatch Kind = "selfcheck_mismatch"

	// KindEmptyPreset - a known package resolves to no lines
	KindEmptyPreset Kind = "empty_preset"

	// KindUnknownPackage - a package id outside the catalog was requested
	KindUnknownPackage Kind = "unknown_package"

	// KindCatalogDefect - a catalog row was repaired while loading
	KindCatalogDefect Kind = "catalog_defect"

	// KindRateFallback - the hourly rate was missing or invalid
	KindRateFallback Kind = "rate_fallback"
)

// Diagnostic is one report record
type Diagnostic struct {
	Kind      Kind              `json:"kind"`
	PackageID catalog.PackageID `json:"package_id,omitempty"`
	ServiceID string            `json:"service_id,omitempty"`

	ExpectedHours float64 `json:"expected_hours,omitempty"`
	ActualHours   float64 `json:"actual_hours,omitempty"`
	ExpectedPrice int64   `json:"expected_price,omitempty"`
	ActualPrice   int64   `json:"actual_price,omitempty"`

	Message string `json:"message"`
}

// String renders the diagnostic for logs and terminals
func (d Diagnostic) String() string {
	switch d.Kind {
	case KindSelfCheckMismatch:
		return fmt.Sprintf("%s: package %s expected %.2fh/%d, got %.2fh/%d",
			d.Kind, d.PackageID, d.ExpectedHours, d.ExpectedPrice, d.ActualHours, d.ActualPrice)
	case KindCatalogDefect:
		if d.ServiceID != "" {
			return fmt.Sprintf("%s: service %s: %s", d.Kind, d.ServiceID, d.Message)
		}
	}
	if d.PackageID != "" {
		return fmt.Sprintf("%s: package %s: %s", d.Kind, d.PackageID, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// UnknownPackage reports a request for a package the catalog does not have
func UnknownPackage(id catalog.PackageID) *Diagnostic {
	return &Diagnostic{
		Kind:      KindUnknownPackage,
		PackageID: id,
		Message:   "package is not in the catalog",
	}
}

// EmptyPreset reports a package whose matrix has no services
func EmptyPreset(id catalog.PackageID) *Diagnostic {
	return &Diagnostic{
		Kind:      KindEmptyPreset,
		PackageID: id,
		Message:   "package preset resolves to no services; check the service matrix",
	}
}

// FromDefects converts catalog defects to diagnostics
func FromDefects(defects []catalog.Defect) []Diagnostic {
	result := make([]Diagnostic, 0, len(defects))
	for _, d := range defects {
		result = append(result, Diagnostic{
			Kind:      KindCatalogDefect,
			PackageID: d.PackageID,
			ServiceID: d.ServiceID,
			Message:   d.Message,
		})
	}
	return result
}

// Health is the advisory "catalog may be wrong" flag. It is owned by an
// engine, so two catalogs never share it. Safe for concurrent use.
type Health struct {
	broken atomic.Bool
}

// MarkBroken sets the flag
func (h *Health) MarkBroken() {
	if h != nil {
		h.broken.Store(true)
	}
}

// Broken reports whether the flag is set
func (h *Health) Broken() bool {
	return h != nil && h.broken.Load()
}

// Clear resets the flag, used before re-running the self-check
func (h *Health) Clear() {
	if h != nil {
		h.broken.Store(false)
	}
}
