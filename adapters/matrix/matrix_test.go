package matrix

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/equipment"
	"aurora-quote/core/selfcheck"
	"aurora-quote/internal/errors"
)

const aliasMatrix = `{
  "rate_per_hour": 5000,
  "work_units": {"regular": 1, "smart": 3, "other": 2},
  "groups": [{"id": "reg", "title": "Registration"}],
  "services": [
    {"id": "reg_chz", "package_id": "retail_only", "group_id": "reg", "qty": 1, "hours_per_unit": 1.5},
    {"service_id": "kkt_registration", "package_id": "Только розница", "qty_default": 1, "unit_hours": 1, "auto_dep": "kkt_total"},
    {"service_id": "scanner_extra", "package_id": "retail_only", "unit_hours": 0.5, "auto_dep": {"source": "scanner_extra", "multiplier": 2}},
    {"service_id": "legacy", "package_id": "retail_only", "unit_hours": 1, "auto_from": "scanners_count", "auto_multiplier": 0.5},
    {"service_id": "mystery", "package_id": "retail_only", "unit_hours": 1, "auto_from": "moon_phase"},
    {"service_id": "pinned", "package_id": "retail_only", "unit_hours": 1, "auto_from": "kkt_total", "qty_mode": "manual", "qty": 2.7}
  ]
}`

const hclMatrix = `
rate_per_hour = 4950

work_units {
  regular = 1
  smart   = 2
  other   = 2
}

package "retail_only" {
  title              = "Retail"
  included_kkt_units = 1
  accepts            = ["kkt", "scanners"]

  default_equipment {
    regular  = 2
    scanners = 1
  }
}

package "wholesale_only" {}

service "reg_chz" {
  title      = "Registration"
  group      = "Registration"
  preset     = { retail_only = 1, wholesale_only = 1 }
  unit_hours = { retail_only = 1, wholesale_only = 2 }
}

service "kkt_registration" {
  group      = "Equipment"
  preset     = { retail_only = 1 }
  unit_hours = { retail_only = 1 }
  auto_from  = "kkt_total"
  multiplier = 1
}

service "odd" {
  preset    = { retail_only = 0, "Только опт" = 1 }
  auto_from = "moon_phase"
}
`

func mustService(t *testing.T, c *catalog.Catalog, id string) catalog.ServiceDefinition {
	t.Helper()
	def, ok := c.Service(id)
	require.True(t, ok, "service %s missing", id)
	return def
}

func TestJSONRoundTrip(t *testing.T) {
	original := catalog.Builtin()

	data, err := EncodeJSON(original)
	require.NoError(t, err)

	contents, err := DecodeJSON(data)
	require.NoError(t, err)
	decoded := catalog.New(contents)

	assert.Empty(t, decoded.Defects())
	assert.Equal(t, original.Services(), decoded.Services())
	assert.Equal(t, original.Packages(), decoded.Packages())
	assert.Equal(t, original.Weights(), decoded.Weights())
	assert.Equal(t, original.RatePerHour(), decoded.RatePerHour())
	assert.Empty(t, selfcheck.RunSelfCheck(decoded, selfcheck.BuiltinExpectations(), &diagnostics.Health{}))
}

func TestDecodeJSONAliases(t *testing.T) {
	contents, err := DecodeJSON([]byte(aliasMatrix))
	require.NoError(t, err)
	c := catalog.New(contents)

	assert.Equal(t, 5000.0, c.RatePerHour())
	assert.Equal(t, equipment.Weights{Regular: 1, Smart: 3, Other: 2}, c.Weights())
	assert.Len(t, c.Packages(), 4, "built-in packages are used when the document has none")

	reg := mustService(t, c, "reg_chz")
	assert.Equal(t, "Registration", reg.Group)
	assert.Equal(t, 1, reg.Preset[catalog.RetailOnly])
	assert.Equal(t, 1.5, reg.UnitHours[catalog.RetailOnly])
	assert.Equal(t, catalog.BasisNone, reg.Basis)

	kkt := mustService(t, c, "kkt_registration")
	assert.Equal(t, catalog.BasisKktTotal, kkt.Basis)
	assert.True(t, kkt.OfferedIn(catalog.RetailOnly), "package titles resolve to ids")
	assert.Equal(t, catalog.DefaultGroup, kkt.Group)

	extra := mustService(t, c, "scanner_extra")
	assert.Equal(t, catalog.BasisScannerExtra, extra.Basis)
	assert.Equal(t, 2.0, extra.Multiplier)

	legacy := mustService(t, c, "legacy")
	assert.Equal(t, catalog.BasisScannerTotal, legacy.Basis)
	assert.Equal(t, 0.5, legacy.Multiplier)

	assert.Equal(t, catalog.BasisNone, mustService(t, c, "mystery").Basis)

	pinned := mustService(t, c, "pinned")
	assert.Equal(t, catalog.BasisNone, pinned.Basis, "explicit manual mode wins over auto_from")
	assert.Equal(t, 2, pinned.Preset[catalog.RetailOnly])

	defects := c.Defects()
	require.Len(t, defects, 1)
	assert.Equal(t, "mystery", defects[0].ServiceID)
}

func TestDecodeJSONRowProblems(t *testing.T) {
	doc := `{"services": [
		{"service_id": "a", "package_id": "retail_only", "unit_hours": 1, "auto_dep": 7},
		{"package_id": "retail_only", "unit_hours": 1},
		{"service_id": "b", "unit_hours": 1},
		{"service_id": "a", "package_id": "retail_only", "unit_hours": 2}
	]}`

	contents, err := DecodeJSON([]byte(doc))
	require.NoError(t, err)
	c := catalog.New(contents)

	assert.Len(t, c.Services(), 1)
	assert.Equal(t, 2.0, mustService(t, c, "a").UnitHours[catalog.RetailOnly], "later rows win")
	assert.Len(t, c.Defects(), 4)
}

func TestDecodeJSONInvalid(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"services": [`))

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}

func TestDecodeHCL(t *testing.T) {
	contents, err := DecodeHCL([]byte(hclMatrix), "matrix.hcl")
	require.NoError(t, err)
	c := catalog.New(contents)

	packages := c.Packages()
	require.Len(t, packages, 2)
	retail := packages[0]
	assert.Equal(t, "Retail", retail.Title)
	assert.Equal(t, 1, retail.IncludedKktUnits)
	assert.Equal(t, equipment.Kinds{Kkt: true, Scanners: true}, retail.Accepts)
	assert.Equal(t, equipment.Snapshot{Regular: 2, Scanners: 1}, retail.DefaultEquipment)
	assert.Equal(t, "Wholesale only", packages[1].Title, "omitted fields come from the built-in package")

	assert.Len(t, c.Services(), 3)
	assert.Equal(t, 2.0, mustService(t, c, "reg_chz").UnitHours[catalog.WholesaleOnly])
	assert.Equal(t, catalog.BasisKktTotal, mustService(t, c, "kkt_registration").Basis)

	odd := mustService(t, c, "odd")
	assert.Equal(t, 1, odd.Preset[catalog.WholesaleOnly])
	assert.Equal(t, catalog.BasisNone, odd.Basis)

	require.Len(t, c.Defects(), 1)
	assert.Equal(t, "odd", c.Defects()[0].ServiceID)

	totals, diag := selfcheck.DefaultTotals(c, catalog.RetailOnly, 4950)
	require.Nil(t, diag)
	assert.InDelta(t, 3.0, totals.TotalHours, 1e-9)
}

func TestDecodeHCLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: `service "x" {`},
		{name: "unknown attribute", src: `currency = "RUB"`},
		{name: "missing preset", src: `service "x" { title = "X" }`},
		{name: "unknown block", src: `discount "x" {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeHCL([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeParsing))
		})
	}
}

func TestDecodeHCLBadValues(t *testing.T) {
	src := `
service "x" {
  preset     = { retail_only = "one" }
  unit_hours = { retail_only = 1 }
  multiplier = "two"
}
`
	contents, err := DecodeHCL([]byte(src), "values.hcl")
	require.NoError(t, err)

	assert.Len(t, contents.Packages, 4)
	assert.Len(t, contents.Defects, 2)
	assert.False(t, catalog.New(contents).Services()[0].OfferedIn(catalog.RetailOnly))
}

func TestXLSXRoundTrip(t *testing.T) {
	original := catalog.Builtin()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, original))

	contents, err := ReadXLSX(bytes.NewReader(buf.Bytes()), DefaultSheet)
	require.NoError(t, err)
	decoded := catalog.New(contents)

	assert.Empty(t, decoded.Defects())
	assert.Equal(t, original.Services(), decoded.Services())
	assert.Empty(t, selfcheck.RunSelfCheck(decoded, selfcheck.BuiltinExpectations(), &diagnostics.Health{}))
}

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "matrix.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestOpenXLSXHandwrittenSheet(t *testing.T) {
	path := writeWorkbook(t, "Лист1", [][]interface{}{
		{},
		{"Service", "Package", "Title", "Group", "Qty", "Hours", "Auto_From", "Multiplier"},
		{"reg_chz", "Только розница", "Registration", "Registration", 1, "1,5", "", ""},
		{"scanner_extra", "Производитель + розница", "Extra scanner", "Equipment", 0, 0.5, "scanner_extra", 1},
		{"", "", "", "", "", "", "", ""},
		{"training", "retail_only", "Training", "Training", 1, "lots", "", ""},
	})

	contents, err := OpenXLSX(path, "Лист1")
	require.NoError(t, err)
	c := catalog.New(contents)

	reg := mustService(t, c, "reg_chz")
	assert.Equal(t, 1.5, reg.UnitHours[catalog.RetailOnly])
	assert.Equal(t, 1, reg.Preset[catalog.RetailOnly])

	extra := mustService(t, c, "scanner_extra")
	assert.True(t, extra.OfferedIn(catalog.ProducerRetail))
	assert.Equal(t, catalog.BasisScannerExtra, extra.Basis)

	assert.Zero(t, mustService(t, c, "training").UnitHours[catalog.RetailOnly])
	require.Len(t, c.Defects(), 1)
	assert.Contains(t, c.Defects()[0].Message, "unit_hours")
}

func TestOpenXLSXErrors(t *testing.T) {
	path := writeWorkbook(t, "Matrix", [][]interface{}{{"title", "qty"}, {"x", 1}})

	_, err := OpenXLSX(path, "Missing")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	_, err = OpenXLSX(path, "")
	assert.True(t, errors.IsType(err, errors.TypeParsing), "service_id column is required")

	_, err = OpenXLSX(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}

func TestLoadAndSaveFile(t *testing.T) {
	dir := t.TempDir()
	builtin := catalog.Builtin()

	for _, name := range []string{"matrix.json", "nested/matrix.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveFile(path, builtin))

			loaded, err := LoadFile(path, "")
			require.NoError(t, err)
			assert.Equal(t, builtin.Services(), loaded.Services())
		})
	}

	hclPath := filepath.Join(dir, "matrix.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(hclMatrix), 0644))
	loaded, err := LoadFile(hclPath, "")
	require.NoError(t, err)
	assert.Len(t, loaded.Services(), 3)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "matrix.json"), "")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	_, err = LoadFile(filepath.Join(dir, "matrix.txt"), "")
	assert.True(t, errors.IsType(err, errors.TypeInput))

	err = SaveFile(filepath.Join(dir, "matrix.hcl"), catalog.Builtin())
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestResolvePackageID(t *testing.T) {
	tests := []struct {
		input    string
		expected catalog.PackageID
	}{
		{"retail_only", catalog.RetailOnly},
		{"  Только опт ", catalog.WholesaleOnly},
		{"Прозводитель розница", catalog.ProducerRetail},
		{"custom_pkg", "custom_pkg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ResolvePackageID(tt.input), tt.input)
	}
}
