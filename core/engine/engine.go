// Package engine provides the API-primary quote engine.
// CLI is a thin wrapper around this engine.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/equipment"
	"aurora-quote/core/pricing"
	"aurora-quote/core/quote"
	"aurora-quote/core/selfcheck"
	"aurora-quote/core/session"
)

// Engine is the primary API for building quotes.
// All other interfaces (CLI, tests) are thin wrappers.
//
// An engine is immutable after New apart from its health flag, so one engine
// can serve many sessions at once. Line lists are never stored here.
type Engine struct {
	catalog      *catalog.Catalog
	rate         float64
	expectations []selfcheck.Expectation
	logger       *zap.Logger

	health diagnostics.Health
}

// Option configures an engine
type Option func(*Engine)

// WithRate sets the hourly rate. Invalid rates are accepted here and replaced
// with the fallback rate when totals are computed.
func WithRate(ratePerHour float64) Option {
	return func(e *Engine) {
		e.rate = ratePerHour
	}
}

// WithExpectations replaces the golden table used by the self-check
func WithExpectations(exps []selfcheck.Expectation) Option {
	return func(e *Engine) {
		e.expectations = append([]selfcheck.Expectation(nil), exps...)
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine over a catalog. A nil catalog means the built-in one.
// The rate defaults to the catalog's own rate, then to the built-in rate.
func New(c *catalog.Catalog, opts ...Option) *Engine {
	if c == nil {
		c = catalog.Builtin()
	}

	rate := c.RatePerHour()
	if rate <= 0 {
		rate = catalog.DefaultRatePerHour
	}

	e := &Engine{
		catalog:      c,
		rate:         rate,
		expectations: selfcheck.BuiltinExpectations(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's catalog
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// GetCatalog returns the service definitions, read-only
func (e *Engine) GetCatalog() []catalog.ServiceDefinition {
	return e.catalog.Services()
}

// Rate returns the configured hourly rate, which may be invalid
func (e *Engine) Rate() float64 {
	return e.rate
}

// Expectations returns the golden table used by the self-check
func (e *Engine) Expectations() []selfcheck.Expectation {
	return append([]selfcheck.Expectation(nil), e.expectations...)
}

// ResolvePreset expands a package into fresh service lines
func (e *Engine) ResolvePreset(packageID string) ([]*quote.ServiceLine, *diagnostics.Diagnostic) {
	lines, diag := quote.ResolvePreset(e.catalog, catalog.PackageID(packageID))
	if diag != nil {
		e.logger.Warn("preset not resolved",
			zap.String("package", packageID),
			zap.String("kind", string(diag.Kind)))
	}
	return lines, diag
}

// ApplyEquipmentToServices re-derives the auto lines of a package from an
// equipment snapshot. The lines are changed in place and returned; a package
// the catalog does not know leaves them untouched.
func (e *Engine) ApplyEquipmentToServices(lines []*quote.ServiceLine, packageID string, snap equipment.Snapshot) []*quote.ServiceLine {
	in, ok := e.inputs(packageID, snap)
	if !ok {
		return lines
	}
	return quote.ApplyEquipment(lines, in)
}

// ResetLineToPreset restores one line to its preset and re-derives it
func (e *Engine) ResetLineToPreset(line *quote.ServiceLine, packageID string, snap equipment.Snapshot) {
	in, _ := e.inputs(packageID, snap)
	quote.ResetLineToPreset(line, in)
}

func (e *Engine) inputs(packageID string, snap equipment.Snapshot) (quote.Inputs, bool) {
	pkg, ok := e.catalog.Package(catalog.PackageID(packageID))
	return quote.InputsFor(e.catalog, pkg, snap), ok
}

// ComputeTotals prices lines at the engine's rate. The diagnostics report a
// rate fallback and lines whose hours had to be ignored; they never change
// the totals.
func (e *Engine) ComputeTotals(lines []*quote.ServiceLine) (pricing.Totals, []diagnostics.Diagnostic) {
	totals := pricing.ComputeTotals(lines, e.rate)
	diags := []diagnostics.Diagnostic{}

	if totals.RateFallback {
		e.logger.Warn("hourly rate unusable, using fallback",
			zap.Float64("configured", e.rate),
			zap.Float64("fallback", totals.Rate))
		diags = append(diags, diagnostics.Diagnostic{
			Kind:    diagnostics.KindRateFallback,
			Message: fmt.Sprintf("rate %v replaced with %v", e.rate, totals.Rate),
		})
	}
	for _, id := range totals.SkippedLines {
		diags = append(diags, diagnostics.Diagnostic{
			Kind:      diagnostics.KindCatalogDefect,
			ServiceID: id,
			Message:   "invalid unit hours counted as 0",
		})
	}
	return totals, diags
}

// RunSelfCheck compares the catalog against the golden table and updates the
// engine's health flag
func (e *Engine) RunSelfCheck() []diagnostics.Diagnostic {
	return selfcheck.RunSelfCheck(e.catalog, e.expectations, &e.health)
}

// ValidateAllPresets reports packages that resolve to no lines
func (e *Engine) ValidateAllPresets() []diagnostics.Diagnostic {
	return selfcheck.ValidateAllPresets(e.catalog)
}

// CatalogBroken reports whether the last self-check failed
func (e *Engine) CatalogBroken() bool {
	return e.health.Broken()
}

// NewSession starts an isolated quote session over the engine's catalog
func (e *Engine) NewSession() *session.Session {
	return session.New(e.catalog)
}

// StartupReport collects everything Startup found
type StartupReport struct {
	Defects    []diagnostics.Diagnostic `json:"defects"`
	Validation []diagnostics.Diagnostic `json:"validation"`
	SelfCheck  []diagnostics.Diagnostic `json:"self_check"`
	Broken     bool                     `json:"broken"`
}

// All returns every diagnostic in the report
func (r StartupReport) All() []diagnostics.Diagnostic {
	all := make([]diagnostics.Diagnostic, 0, len(r.Defects)+len(r.Validation)+len(r.SelfCheck))
	all = append(all, r.Defects...)
	all = append(all, r.Validation...)
	return append(all, r.SelfCheck...)
}

// Startup runs the validator and the self-check once and logs what they
// found. It never fails; a broken catalog only raises CatalogBroken.
func (e *Engine) Startup() StartupReport {
	e.health.Clear()

	report := StartupReport{
		Defects:    diagnostics.FromDefects(e.catalog.Defects()),
		Validation: e.ValidateAllPresets(),
		SelfCheck:  e.RunSelfCheck(),
	}
	report.Broken = e.CatalogBroken()

	for _, d := range report.Defects {
		e.logger.Warn("catalog defect", zap.String("diagnostic", d.String()))
	}
	for _, d := range report.Validation {
		e.logger.Warn("preset validation", zap.String("diagnostic", d.String()))
	}
	for _, d := range report.SelfCheck {
		e.logger.Error("self-check mismatch",
			zap.String("package", string(d.PackageID)),
			zap.Float64("expected_hours", d.ExpectedHours),
			zap.Float64("actual_hours", d.ActualHours),
			zap.Int64("expected_price", d.ExpectedPrice),
			zap.Int64("actual_price", d.ActualPrice))
	}

	stats := e.catalog.Stats()
	e.logger.Info("engine started",
		zap.Int("services", stats.Services),
		zap.Int("packages", stats.Packages),
		zap.Int("defects", stats.Defects),
		zap.Bool("catalog_broken", report.Broken))
	return report
}
