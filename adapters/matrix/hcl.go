package matrix

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"aurora-quote/core/catalog"
	"aurora-quote/core/equipment"
	"aurora-quote/internal/errors"
)

var fileSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "rate_per_hour"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "work_units"},
		{Type: "package", LabelNames: []string{"id"}},
		{Type: "service", LabelNames: []string{"id"}},
	},
}

var packageSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "title"},
		{Name: "included_kkt_units"},
		{Name: "accepts"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "default_equipment"},
	},
}

var serviceSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "title"},
		{Name: "group"},
		{Name: "preset", Required: true},
		{Name: "unit_hours"},
		{Name: "auto_from"},
		{Name: "multiplier"},
	},
}

var workUnitsSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "regular"},
		{Name: "smart"},
		{Name: "other"},
	},
}

var equipmentSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "regular"},
		{Name: "smart"},
		{Name: "other"},
		{Name: "scanners"},
		{Name: "printers"},
	},
}

// HCLParser reads operator-authored HCL matrices
type HCLParser struct {
	parser   *hclparse.Parser
	filename string
	contents catalog.Contents
}

// NewHCLParser creates a parser for one file
func NewHCLParser() *HCLParser {
	return &HCLParser{
		parser: hclparse.NewParser(),
	}
}

// DecodeHCL parses an HCL matrix. Syntax and schema errors fail the load;
// bad values inside a well-formed file become catalog defects.
func DecodeHCL(src []byte, filename string) (catalog.Contents, error) {
	return NewHCLParser().Parse(src, filename)
}

// Parse decodes src. filename is used in error messages only.
func (p *HCLParser) Parse(src []byte, filename string) (catalog.Contents, error) {
	p.filename = filename
	p.contents = catalog.Contents{}

	file, diags := p.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return catalog.Contents{}, errors.Parsing("invalid HCL matrix", diags)
	}

	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return catalog.Contents{}, errors.Parsing("invalid HCL matrix", diags)
	}

	if attr, ok := content.Attributes["rate_per_hour"]; ok {
		if rate, err := p.number(attr); err != nil {
			p.defect("", "", err.Error())
		} else {
			p.contents.RatePerHour = rate
		}
	}

	builtin := builtinPackages()
	for _, block := range content.Blocks {
		var err error
		switch block.Type {
		case "work_units":
			err = p.parseWorkUnits(block)
		case "package":
			err = p.parsePackage(block, builtin)
		case "service":
			err = p.parseService(block)
		}
		if err != nil {
			return catalog.Contents{}, err
		}
	}

	if len(p.contents.Packages) == 0 {
		p.contents.Packages = catalog.BuiltinContents().Packages
	}
	return p.contents, nil
}

func (p *HCLParser) defect(serviceID string, pkg catalog.PackageID, msg string) {
	p.contents.Defects = append(p.contents.Defects, catalog.Defect{
		ServiceID: serviceID,
		PackageID: pkg,
		Message:   msg,
	})
}

func (p *HCLParser) value(attr *hcl.Attribute) (ctyValue, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return ctyValue{}, fmt.Errorf("%s:%d: %s: %s", p.filename, attr.Range.Start.Line, attr.Name, diags.Error())
	}
	return ctyValue{val}, nil
}

func (p *HCLParser) number(attr *hcl.Attribute) (float64, error) {
	v, err := p.value(attr)
	if err != nil {
		return 0, err
	}
	f, err := v.number()
	if err != nil {
		return 0, fmt.Errorf("%s:%d: %s: %v", p.filename, attr.Range.Start.Line, attr.Name, err)
	}
	return f, nil
}

func (p *HCLParser) str(attr *hcl.Attribute) (string, error) {
	v, err := p.value(attr)
	if err != nil {
		return "", err
	}
	s, err := v.str()
	if err != nil {
		return "", fmt.Errorf("%s:%d: %s: %v", p.filename, attr.Range.Start.Line, attr.Name, err)
	}
	return s, nil
}

// numbers reads the named numeric attributes present in attrs
func (p *HCLParser) numbers(attrs hcl.Attributes, owner string) map[string]float64 {
	result := make(map[string]float64, len(attrs))
	for name, attr := range attrs {
		f, err := p.number(attr)
		if err != nil {
			p.defect(owner, "", err.Error())
			continue
		}
		result[name] = f
	}
	return result
}

func (p *HCLParser) parseWorkUnits(block *hcl.Block) error {
	content, diags := block.Body.Content(workUnitsSchema)
	if diags.HasErrors() {
		return errors.Parsing("invalid work_units block", diags)
	}
	values := p.numbers(content.Attributes, "")
	p.contents.Weights = equipment.Weights{
		Regular: quantity(values["regular"]),
		Smart:   quantity(values["smart"]),
		Other:   quantity(values["other"]),
	}
	return nil
}

func parseKinds(names []string) (equipment.Kinds, []string) {
	var kinds equipment.Kinds
	var unknown []string
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "kkt", "registers":
			kinds.Kkt = true
		case "scanners":
			kinds.Scanners = true
		case "printers":
			kinds.Printers = true
		default:
			unknown = append(unknown, name)
		}
	}
	return kinds, unknown
}

func (p *HCLParser) parsePackage(block *hcl.Block, builtin map[catalog.PackageID]catalog.Package) error {
	content, diags := block.Body.Content(packageSchema)
	if diags.HasErrors() {
		return errors.Parsing("invalid package block", diags)
	}

	row := PackageRow{ID: block.Labels[0]}
	id := ResolvePackageID(row.ID)

	if attr, ok := content.Attributes["title"]; ok {
		title, err := p.str(attr)
		if err != nil {
			p.defect("", id, err.Error())
		}
		row.Title = title
	}
	if attr, ok := content.Attributes["included_kkt_units"]; ok {
		if f, err := p.number(attr); err != nil {
			p.defect("", id, err.Error())
		} else {
			included := quantity(f)
			row.IncludedKktUnits = &included
		}
	}
	if attr, ok := content.Attributes["accepts"]; ok {
		v, err := p.value(attr)
		if err != nil {
			p.defect("", id, err.Error())
		} else if names, err := v.strings(); err != nil {
			p.defect("", id, fmt.Sprintf("accepts: %v", err))
		} else {
			kinds, unknown := parseKinds(names)
			for _, name := range unknown {
				p.defect("", id, fmt.Sprintf("unknown equipment kind %q ignored", name))
			}
			row.Accepts = &kinds
		}
	}
	for _, eq := range content.Blocks {
		eqContent, diags := eq.Body.Content(equipmentSchema)
		if diags.HasErrors() {
			return errors.Parsing("invalid default_equipment block", diags)
		}
		values := p.numbers(eqContent.Attributes, "")
		snap := equipment.FromCounts(values["regular"], values["smart"], values["other"], values["scanners"], values["printers"])
		row.DefaultEquipment = &snap
	}

	p.contents.Packages = append(p.contents.Packages, row.toPackage(builtin))
	return nil
}

func (p *HCLParser) parseService(block *hcl.Block) error {
	content, diags := block.Body.Content(serviceSchema)
	if diags.HasErrors() {
		return errors.Parsing("invalid service block", diags)
	}

	def := catalog.ServiceDefinition{
		ID:        block.Labels[0],
		Preset:    make(map[catalog.PackageID]int),
		UnitHours: make(map[catalog.PackageID]float64),
	}

	for name, target := range map[string]*string{"title": &def.Title, "group": &def.Group} {
		if attr, ok := content.Attributes[name]; ok {
			s, err := p.str(attr)
			if err != nil {
				p.defect(def.ID, "", err.Error())
			}
			*target = s
		}
	}

	if attr, ok := content.Attributes["auto_from"]; ok {
		tag, err := p.str(attr)
		if err != nil {
			p.defect(def.ID, "", err.Error())
		}
		basis, known := catalog.ParseAutoBasis(tag)
		if !known {
			p.defect(def.ID, "", fmt.Sprintf("unrecognised auto basis %q treated as none", tag))
		}
		def.Basis = basis
	}
	if attr, ok := content.Attributes["multiplier"]; ok {
		if f, err := p.number(attr); err != nil {
			p.defect(def.ID, "", err.Error())
		} else {
			def.Multiplier = f
		}
	}

	for name, apply := range map[string]func(catalog.PackageID, float64){
		"preset":     func(pkg catalog.PackageID, f float64) { def.Preset[pkg] = quantity(f) },
		"unit_hours": func(pkg catalog.PackageID, f float64) { def.UnitHours[pkg] = f },
	} {
		attr, ok := content.Attributes[name]
		if !ok {
			continue
		}
		v, err := p.value(attr)
		if err != nil {
			p.defect(def.ID, "", err.Error())
			continue
		}
		values, problems, err := v.numberMap()
		if err != nil {
			p.defect(def.ID, "", fmt.Sprintf("%s: %v", name, err))
			continue
		}
		for _, problem := range problems {
			p.defect(def.ID, "", fmt.Sprintf("%s: %s", name, problem))
		}
		for key, f := range values {
			apply(ResolvePackageID(key), f)
		}
	}

	p.contents.Services = append(p.contents.Services, def)
	return nil
}
