// Package catalog - Authoritative service matrix
// Defines the billable services, the packages they are offered in and the
// per-package preset quantities and unit hours. A Catalog is immutable once
// built; loading it from files lives in adapters/matrix.
package catalog

import (
	"fmt"
	"math"
	"strings"

	"aurora-quote/core/equipment"
)

// PackageID identifies a package
type PackageID string

const (
	RetailOnly     PackageID = "retail_only"
	WholesaleOnly  PackageID = "wholesale_only"
	ProducerOnly   PackageID = "producer_only"
	ProducerRetail PackageID = "producer_retail"
)

// KnownPackages is the closed set of package ids, in display order.
var KnownPackages = []PackageID{RetailOnly, WholesaleOnly, ProducerOnly, ProducerRetail}

// IsKnown reports whether id belongs to the closed package set.
func (id PackageID) IsKnown() bool {
	for _, known := range KnownPackages {
		if id == known {
			return true
		}
	}
	return false
}

// DefaultGroup is used for services without a group
const DefaultGroup = "Other"

// DefaultRatePerHour is the hourly rate the matrix is authored against.
const DefaultRatePerHour = 4950

// Package is one class of client engagement
type Package struct {
	ID    PackageID `json:"id"`
	Title string    `json:"title"`

	// IncludedKktUnits is how many register work units the package price
	// already covers before extra billing starts
	IncludedKktUnits int `json:"included_kkt_units"`

	// DefaultEquipment is loaded when the package is selected
	DefaultEquipment equipment.Snapshot `json:"default_equipment"`

	// Accepts lists the equipment kinds the package works with
	Accepts equipment.Kinds `json:"accepts"`
}

// ServiceDefinition is a catalog entry for one billable service
type ServiceDefinition struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Group string `json:"group"`

	// Preset holds the default quantity per package. A present key, even
	// with 0, means the service is offered in that package.
	Preset map[PackageID]int `json:"preset"`

	// UnitHours holds hours per unit per package
	UnitHours map[PackageID]float64 `json:"unit_hours"`

	Basis      AutoBasis `json:"auto_basis"`
	Multiplier float64   `json:"multiplier"`
}

// OfferedIn reports whether the service belongs to the package's matrix.
func (d ServiceDefinition) OfferedIn(id PackageID) bool {
	_, ok := d.Preset[id]
	return ok
}

// Defect is a catalog authoring problem found while building the catalog.
// Defects never stop the catalog from being built.
type Defect struct {
	ServiceID string
	PackageID PackageID
	Message   string
}

func (d Defect) String() string {
	parts := []string{}
	if d.ServiceID != "" {
		parts = append(parts, "service="+d.ServiceID)
	}
	if d.PackageID != "" {
		parts = append(parts, "package="+string(d.PackageID))
	}
	parts = append(parts, d.Message)
	return strings.Join(parts, " ")
}

// Contents is the raw material for a catalog, as loaded by a source.
type Contents struct {
	RatePerHour float64
	Weights     equipment.Weights
	Packages    []Package
	Services    []ServiceDefinition

	// Defects found by the source while decoding, carried into the catalog
	Defects []Defect
}

// Catalog is the immutable service matrix
type Catalog struct {
	ratePerHour float64
	weights     equipment.Weights
	packages    []Package
	packageIdx  map[PackageID]int
	services    []ServiceDefinition
	serviceIdx  map[string]int
	defects     []Defect
}

// New normalizes contents into a catalog. Bad rows degrade to safe values
// and are recorded as defects.
func New(contents Contents) *Catalog {
	c := &Catalog{
		ratePerHour: contents.RatePerHour,
		weights:     contents.Weights.OrDefault(),
		packageIdx:  make(map[PackageID]int),
		serviceIdx:  make(map[string]int),
		defects:     append([]Defect(nil), contents.Defects...),
	}

	for _, pkg := range contents.Packages {
		pkg.ID = PackageID(strings.TrimSpace(string(pkg.ID)))
		if pkg.ID == "" {
			c.defect("", "", "package without id dropped")
			continue
		}
		if _, dup := c.packageIdx[pkg.ID]; dup {
			c.defect("", pkg.ID, "duplicate package ignored")
			continue
		}
		if pkg.Title == "" {
			pkg.Title = string(pkg.ID)
		}
		if pkg.IncludedKktUnits < 0 {
			c.defect("", pkg.ID, fmt.Sprintf("negative included_kkt_units %d clamped to 0", pkg.IncludedKktUnits))
			pkg.IncludedKktUnits = 0
		}
		pkg.DefaultEquipment = pkg.DefaultEquipment.Normalize()
		c.packageIdx[pkg.ID] = len(c.packages)
		c.packages = append(c.packages, pkg)
	}

	for _, def := range contents.Services {
		if normalized, ok := c.normalizeService(def); ok {
			c.serviceIdx[normalized.ID] = len(c.services)
			c.services = append(c.services, normalized)
		}
	}

	return c
}

func (c *Catalog) normalizeService(def ServiceDefinition) (ServiceDefinition, bool) {
	def.ID = strings.TrimSpace(def.ID)
	if def.ID == "" {
		c.defect("", "", "service without id dropped")
		return def, false
	}
	if _, dup := c.serviceIdx[def.ID]; dup {
		c.defect(def.ID, "", "duplicate service id ignored")
		return def, false
	}
	if def.Title == "" {
		def.Title = def.ID
	}
	if strings.TrimSpace(def.Group) == "" {
		def.Group = DefaultGroup
	}
	if math.IsNaN(def.Multiplier) || math.IsInf(def.Multiplier, 0) || def.Multiplier < 0 {
		c.defect(def.ID, "", fmt.Sprintf("invalid multiplier %v replaced with 1", def.Multiplier))
		def.Multiplier = 1
	}
	if def.Multiplier == 0 {
		def.Multiplier = 1
	}
	if !def.Basis.IsAuto() && def.Basis != BasisNone {
		c.defect(def.ID, "", "unrecognised auto basis treated as none")
		def.Basis = BasisNone
	}

	preset := make(map[PackageID]int, len(def.Preset))
	for pkg, qty := range def.Preset {
		if _, ok := c.packageIdx[pkg]; !ok {
			c.defect(def.ID, pkg, "preset for unknown package dropped")
			continue
		}
		if qty < 0 {
			c.defect(def.ID, pkg, fmt.Sprintf("negative preset quantity %d clamped to 0", qty))
			qty = 0
		}
		preset[pkg] = qty
	}

	hours := make(map[PackageID]float64, len(def.UnitHours))
	for pkg, h := range def.UnitHours {
		if _, offered := preset[pkg]; !offered {
			continue
		}
		if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
			c.defect(def.ID, pkg, fmt.Sprintf("invalid unit hours %v treated as 0", h))
			h = 0
		}
		hours[pkg] = h
	}

	def.Preset = preset
	def.UnitHours = hours
	return def, true
}

func (c *Catalog) defect(serviceID string, pkg PackageID, msg string) {
	c.defects = append(c.defects, Defect{ServiceID: serviceID, PackageID: pkg, Message: msg})
}

// RatePerHour is the rate declared by the matrix, 0 when absent
func (c *Catalog) RatePerHour() float64 {
	return c.ratePerHour
}

// Weights returns the register work-unit weights
func (c *Catalog) Weights() equipment.Weights {
	return c.weights
}

// Package returns a package by id
func (c *Catalog) Package(id PackageID) (Package, bool) {
	idx, ok := c.packageIdx[id]
	if !ok {
		return Package{}, false
	}
	return c.packages[idx], true
}

// Packages returns all packages in catalog order
func (c *Catalog) Packages() []Package {
	return append([]Package(nil), c.packages...)
}

// Service returns a service by id
func (c *Catalog) Service(id string) (ServiceDefinition, bool) {
	idx, ok := c.serviceIdx[id]
	if !ok {
		return ServiceDefinition{}, false
	}
	return c.services[idx], true
}

// Services returns all services in catalog order. The maps inside each
// definition are shared with the catalog and must be treated as read-only.
func (c *Catalog) Services() []ServiceDefinition {
	return append([]ServiceDefinition(nil), c.services...)
}

// ServicesFor returns the services offered in a package, in catalog order
func (c *Catalog) ServicesFor(id PackageID) []ServiceDefinition {
	var result []ServiceDefinition
	for _, def := range c.services {
		if def.OfferedIn(id) {
			result = append(result, def)
		}
	}
	return result
}

// Defects returns the authoring problems found while building the catalog
func (c *Catalog) Defects() []Defect {
	return append([]Defect(nil), c.defects...)
}

// Stats returns catalog statistics
func (c *Catalog) Stats() Stats {
	stats := Stats{
		Services:  len(c.services),
		Packages:  len(c.packages),
		Defects:   len(c.defects),
		ByPackage: make(map[PackageID]PackageStats),
	}

	for _, def := range c.services {
		if def.Basis.IsAuto() {
			stats.AutoServices++
		}
		for pkg, qty := range def.Preset {
			ps := stats.ByPackage[pkg]
			ps.Offered++
			if qty > 0 {
				ps.Preselected++
			}
			stats.ByPackage[pkg] = ps
		}
	}

	return stats
}

// Stats holds catalog statistics
type Stats struct {
	Services     int
	AutoServices int
	Packages     int
	Defects      int
	ByPackage    map[PackageID]PackageStats
}

// PackageStats holds per-package statistics
type PackageStats struct {
	Offered     int
	Preselected int
}
