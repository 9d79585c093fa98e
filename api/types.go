// Package api - API types for quotes
// These types define the contract for the /api endpoints.
// API is stateless, idempotent, and deterministic.
package api

import (
	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/equipment"
	"aurora-quote/core/pricing"
	"aurora-quote/core/quote"
)

// QuoteRequest is the input to POST /api/quote
type QuoteRequest struct {
	// Package to quote
	PackageID catalog.PackageID `json:"package_id"`

	// Equipment counts (optional). Counts left out keep the package default.
	Equipment *EquipmentCounts `json:"equipment,omitempty"`

	// Overrides pin service quantities by service id (optional)
	Overrides map[string]int `json:"overrides,omitempty"`
}

// EquipmentCounts are loosely typed counts as posted by a client. A nil
// field is not set; negatives and fractions are normalized before use.
type EquipmentCounts struct {
	Regular  *float64 `json:"regular,omitempty"`
	Smart    *float64 `json:"smart,omitempty"`
	Other    *float64 `json:"other,omitempty"`
	Scanners *float64 `json:"scanners,omitempty"`
	Printers *float64 `json:"printers,omitempty"`
}

// Overlay returns base with the counts that are set replaced
func (c EquipmentCounts) Overlay(base equipment.Snapshot) equipment.Snapshot {
	pick := func(v *float64, current int) float64 {
		if v == nil {
			return float64(current)
		}
		return *v
	}
	return equipment.FromCounts(
		pick(c.Regular, base.Regular),
		pick(c.Smart, base.Smart),
		pick(c.Other, base.Other),
		pick(c.Scanners, base.Scanners),
		pick(c.Printers, base.Printers),
	)
}

// QuoteResponse is the output of POST /api/quote
type QuoteResponse struct {
	SessionID string             `json:"session_id"`
	Package   catalog.PackageID  `json:"package"`
	Equipment equipment.Snapshot `json:"equipment"`

	Lines  []*quote.ServiceLine `json:"lines"`
	Totals pricing.Totals       `json:"totals"`

	// Currency is informational; prices are whole units of it
	Currency string `json:"currency"`

	// CatalogBroken warns that the service matrix failed its self-check
	CatalogBroken bool `json:"catalog_broken"`

	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`

	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// ResponseMetadata contains response metadata
type ResponseMetadata struct {
	InputHash     string `json:"input_hash"`
	EngineVersion string `json:"engine_version"`
	DurationMs    int64  `json:"duration_ms"`
}

// PackageSummary describes one package and its unedited quote
type PackageSummary struct {
	catalog.Package

	Services int     `json:"services"`
	Hours    float64 `json:"hours"`
	Price    int64   `json:"price"`

	Problem *diagnostics.Diagnostic `json:"problem,omitempty"`
}

// PackagesResponse is the output of GET /api/packages
type PackagesResponse struct {
	Packages []PackageSummary `json:"packages"`
	Rate     float64          `json:"rate"`
	Currency string           `json:"currency"`
}

// CatalogResponse is the output of GET /api/catalog
type CatalogResponse struct {
	RatePerHour float64                     `json:"rate_per_hour"`
	Services    []catalog.ServiceDefinition `json:"services"`
	Defects     []diagnostics.Diagnostic    `json:"defects"`
}

// HealthResponse is the output of GET /api/health
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	CatalogBroken bool   `json:"catalog_broken"`
	Time          string `json:"time"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the error payload
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
