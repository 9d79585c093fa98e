// Package matrix loads and writes the service matrix in its file formats:
// the JSON matrix document, operator-authored HCL and XLSX spreadsheets.
// Every format folds into catalog.Contents; row problems become catalog
// defects instead of load failures.
package matrix

import (
	"fmt"
	"math"
	"strings"

	"aurora-quote/core/catalog"
	"aurora-quote/core/equipment"
)

// Document is the JSON matrix: one row per (service, package) pair
type Document struct {
	RatePerHour float64      `json:"rate_per_hour,omitempty"`
	WorkUnits   *WorkUnits   `json:"work_units,omitempty"`
	Packages    []PackageRow `json:"packages,omitempty"`
	Groups      []GroupRow   `json:"groups,omitempty"`
	Services    []ServiceRow `json:"services"`
}

// WorkUnits are the register weights
type WorkUnits struct {
	Regular int `json:"regular"`
	Smart   int `json:"smart"`
	Other   int `json:"other"`
}

// PackageRow describes a package. Omitted fields fall back to the built-in
// package with the same id.
type PackageRow struct {
	ID               string              `json:"id"`
	Title            string              `json:"title,omitempty"`
	IncludedKktUnits *int                `json:"included_kkt_units,omitempty"`
	DefaultEquipment *equipment.Snapshot `json:"default_equipment,omitempty"`
	Accepts          *equipment.Kinds    `json:"accepts,omitempty"`
}

// GroupRow maps a group id to its display title
type GroupRow struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ServiceRow is the matrix entry of one service in one package
type ServiceRow struct {
	ServiceID      string  `json:"service_id"`
	PackageID      string  `json:"package_id"`
	Title          string  `json:"title,omitempty"`
	GroupID        string  `json:"group_id,omitempty"`
	QtyDefault     float64 `json:"qty_default"`
	UnitHours      float64 `json:"unit_hours"`
	QtyMode        string  `json:"qty_mode,omitempty"`
	AutoFrom       string  `json:"auto_from,omitempty"`
	AutoMultiplier float64 `json:"auto_multiplier,omitempty"`

	// problems found while decoding the row, reported as defects
	problems []string
}

// package titles used by spreadsheets exported from the sales team
var packageAliases = map[string]catalog.PackageID{
	"только розница":                catalog.RetailOnly,
	"только опт":                    catalog.WholesaleOnly,
	"только производитель/импортер": catalog.ProducerOnly,
	"производитель розница":         catalog.ProducerRetail,
	"прозводитель розница":          catalog.ProducerRetail,
	"производитель + розница":       catalog.ProducerRetail,
	"retail":          catalog.RetailOnly,
	"wholesale":       catalog.WholesaleOnly,
	"producer":        catalog.ProducerOnly,
	"producer+retail": catalog.ProducerRetail,
}

// ResolvePackageID maps a package id or a known package title to an id.
// Anything else is returned trimmed and unchanged.
func ResolvePackageID(value string) catalog.PackageID {
	trimmed := strings.TrimSpace(value)
	if id, ok := packageAliases[strings.ToLower(trimmed)]; ok {
		return id
	}
	return catalog.PackageID(trimmed)
}

// builtinPackages indexes the built-in package table
func builtinPackages() map[catalog.PackageID]catalog.Package {
	result := make(map[catalog.PackageID]catalog.Package)
	for _, pkg := range catalog.BuiltinContents().Packages {
		result[pkg.ID] = pkg
	}
	return result
}

func (row PackageRow) toPackage(builtin map[catalog.PackageID]catalog.Package) catalog.Package {
	id := ResolvePackageID(row.ID)
	pkg, ok := builtin[id]
	if !ok {
		pkg = catalog.Package{ID: id}
	}
	if row.Title != "" {
		pkg.Title = row.Title
	}
	if row.IncludedKktUnits != nil {
		pkg.IncludedKktUnits = *row.IncludedKktUnits
	}
	if row.DefaultEquipment != nil {
		pkg.DefaultEquipment = *row.DefaultEquipment
	}
	if row.Accepts != nil {
		pkg.Accepts = *row.Accepts
	}
	return pkg
}

// folder merges matrix rows into one definition per service id
type folder struct {
	contents catalog.Contents
	index    map[string]int
	groups   map[string]string
}

func newFolder(groups map[string]string) *folder {
	return &folder{index: make(map[string]int), groups: groups}
}

func (f *folder) defect(serviceID string, pkg catalog.PackageID, format string, args ...interface{}) {
	f.contents.Defects = append(f.contents.Defects, catalog.Defect{
		ServiceID: serviceID,
		PackageID: pkg,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (f *folder) groupTitle(id string) string {
	id = strings.TrimSpace(id)
	if title, ok := f.groups[id]; ok && title != "" {
		return title
	}
	return id
}

// rowBasis works out the basis and multiplier a row asks for
func (f *folder) rowBasis(row ServiceRow, pkg catalog.PackageID) (catalog.AutoBasis, float64) {
	basis, ok := catalog.ParseAutoBasis(row.AutoFrom)
	if !ok {
		f.defect(row.ServiceID, pkg, "unrecognised auto basis %q treated as none", row.AutoFrom)
	}
	if strings.EqualFold(strings.TrimSpace(row.QtyMode), "manual") {
		basis = catalog.BasisNone
	}
	multiplier := row.AutoMultiplier
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		multiplier = 1
	}
	if !basis.IsAuto() {
		multiplier = 0
	}
	return basis, multiplier
}

func quantity(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Trunc(v))
}

func (f *folder) add(row ServiceRow) {
	row.ServiceID = strings.TrimSpace(row.ServiceID)
	pkg := ResolvePackageID(row.PackageID)

	for _, problem := range row.problems {
		f.defect(row.ServiceID, pkg, "%s", problem)
	}
	if row.ServiceID == "" {
		f.defect("", pkg, "row without service_id skipped")
		return
	}
	if pkg == "" {
		f.defect(row.ServiceID, "", "row without package_id skipped")
		return
	}

	basis, multiplier := f.rowBasis(row, pkg)

	idx, seen := f.index[row.ServiceID]
	if !seen {
		idx = len(f.contents.Services)
		f.index[row.ServiceID] = idx
		f.contents.Services = append(f.contents.Services, catalog.ServiceDefinition{
			ID:         row.ServiceID,
			Title:      strings.TrimSpace(row.Title),
			Group:      f.groupTitle(row.GroupID),
			Preset:     make(map[catalog.PackageID]int),
			UnitHours:  make(map[catalog.PackageID]float64),
			Basis:      basis,
			Multiplier: multiplier,
		})
	}
	def := &f.contents.Services[idx]

	if seen {
		if def.Basis != basis {
			f.defect(def.ID, pkg, "auto basis %s differs from %s declared earlier; keeping %s", basis, def.Basis, def.Basis)
		}
		if def.Title == "" {
			def.Title = strings.TrimSpace(row.Title)
		}
		if def.Group == "" {
			def.Group = f.groupTitle(row.GroupID)
		}
	}
	if _, dup := def.Preset[pkg]; dup {
		f.defect(def.ID, pkg, "duplicate row; later values win")
	}

	def.Preset[pkg] = quantity(row.QtyDefault)
	def.UnitHours[pkg] = row.UnitHours
}

// FromDocument folds a matrix document into catalog contents. A document
// without packages uses the built-in package table.
func FromDocument(doc Document) catalog.Contents {
	groups := make(map[string]string, len(doc.Groups))
	for _, g := range doc.Groups {
		id := strings.TrimSpace(g.ID)
		if id == "" {
			continue
		}
		title := strings.TrimSpace(g.Title)
		if title == "" {
			title = id
		}
		groups[id] = title
	}

	f := newFolder(groups)
	f.contents.RatePerHour = doc.RatePerHour
	if doc.WorkUnits != nil {
		f.contents.Weights = equipment.Weights{
			Regular: doc.WorkUnits.Regular,
			Smart:   doc.WorkUnits.Smart,
			Other:   doc.WorkUnits.Other,
		}
	}

	builtin := builtinPackages()
	if len(doc.Packages) == 0 {
		f.contents.Packages = catalog.BuiltinContents().Packages
	}
	for _, row := range doc.Packages {
		f.contents.Packages = append(f.contents.Packages, row.toPackage(builtin))
	}

	for _, row := range doc.Services {
		f.add(row)
	}
	return f.contents
}

// ToDocument flattens a catalog into a matrix document. Rows follow catalog
// service order, then package order.
func ToDocument(c *catalog.Catalog) Document {
	weights := c.Weights()
	doc := Document{
		RatePerHour: c.RatePerHour(),
		WorkUnits:   &WorkUnits{Regular: weights.Regular, Smart: weights.Smart, Other: weights.Other},
		Services:    []ServiceRow{},
	}

	for _, pkg := range c.Packages() {
		included := pkg.IncludedKktUnits
		snap := pkg.DefaultEquipment
		accepts := pkg.Accepts
		doc.Packages = append(doc.Packages, PackageRow{
			ID:               string(pkg.ID),
			Title:            pkg.Title,
			IncludedKktUnits: &included,
			DefaultEquipment: &snap,
			Accepts:          &accepts,
		})
	}

	seenGroups := make(map[string]bool)
	for _, def := range c.Services() {
		if !seenGroups[def.Group] {
			seenGroups[def.Group] = true
			doc.Groups = append(doc.Groups, GroupRow{ID: def.Group, Title: def.Group})
		}
		for _, pkg := range c.Packages() {
			if !def.OfferedIn(pkg.ID) {
				continue
			}
			row := ServiceRow{
				ServiceID:  def.ID,
				PackageID:  string(pkg.ID),
				Title:      def.Title,
				GroupID:    def.Group,
				QtyDefault: float64(def.Preset[pkg.ID]),
				UnitHours:  def.UnitHours[pkg.ID],
				QtyMode:    "manual",
			}
			if def.Basis.IsAuto() {
				row.QtyMode = "auto"
				row.AutoFrom = def.Basis.String()
				row.AutoMultiplier = def.Multiplier
			}
			doc.Services = append(doc.Services, row)
		}
	}
	return doc
}
