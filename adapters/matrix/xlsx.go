package matrix

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"aurora-quote/core/catalog"
	"aurora-quote/internal/errors"
)

// DefaultSheet is the sheet written by WriteXLSX
const DefaultSheet = "Matrix"

// XLSXHeaders are the columns of a matrix sheet, in export order
var XLSXHeaders = []string{
	"service_id", "package_id", "title", "group",
	"qty_default", "unit_hours", "auto_from", "auto_multiplier",
}

// column spellings accepted on import
var headerAliases = map[string]string{
	"id":             "service_id",
	"service":        "service_id",
	"package":        "package_id",
	"segment":        "package_id",
	"group_id":       "group",
	"qty":            "qty_default",
	"hours_per_unit": "unit_hours",
	"hours":          "unit_hours",
	"auto_dep":       "auto_from",
	"multiplier":     "auto_multiplier",
}

func normalizeHeader(h string) string {
	key := strings.ToLower(strings.TrimSpace(h))
	key = strings.ReplaceAll(key, " ", "_")
	if alias, ok := headerAliases[key]; ok {
		return alias
	}
	return key
}

// parseCell reads a spreadsheet number; decimal commas are accepted
func parseCell(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// ReadXLSX imports service rows from one sheet. An empty sheet name means
// the first sheet. The first non-empty row is the header; service_id and
// package_id columns are required. Packages come from the built-in table.
func ReadXLSX(r io.Reader, sheet string) (catalog.Contents, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return catalog.Contents{}, errors.Parsing("failed to open spreadsheet", err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

// OpenXLSX imports service rows from a spreadsheet file
func OpenXLSX(path, sheet string) (catalog.Contents, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return catalog.Contents{}, errors.Parsing("failed to open spreadsheet", err).WithContext("path", path)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (catalog.Contents, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return catalog.Contents{}, errors.NotFound("sheet", sheet).WithContext("available", f.GetSheetList())
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return catalog.Contents{}, errors.Parsing(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	return rowsToContents(rows)
}

func rowsToContents(rows [][]string) (catalog.Contents, error) {
	headerIdx := -1
	for i, row := range rows {
		if strings.TrimSpace(strings.Join(row, "")) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return catalog.Contents{}, errors.Parsing("spreadsheet has no header row", nil)
	}

	columns := make(map[string]int)
	for i, h := range rows[headerIdx] {
		if key := normalizeHeader(h); key != "" {
			if _, dup := columns[key]; !dup {
				columns[key] = i
			}
		}
	}
	for _, required := range []string{"service_id", "package_id"} {
		if _, ok := columns[required]; !ok {
			return catalog.Contents{}, errors.Parsing(fmt.Sprintf("spreadsheet has no %s column", required), nil)
		}
	}

	doc := Document{}
	for i := headerIdx + 1; i < len(rows); i++ {
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(rows[i]) {
				return ""
			}
			return strings.TrimSpace(rows[i][idx])
		}
		if cell("service_id") == "" && cell("package_id") == "" {
			continue
		}

		row := ServiceRow{
			ServiceID: cell("service_id"),
			PackageID: cell("package_id"),
			Title:     cell("title"),
			GroupID:   cell("group"),
			AutoFrom:  cell("auto_from"),
			QtyMode:   cell("qty_mode"),
		}
		for name, target := range map[string]*float64{
			"qty_default":     &row.QtyDefault,
			"unit_hours":      &row.UnitHours,
			"auto_multiplier": &row.AutoMultiplier,
		} {
			f, ok, err := parseCell(cell(name))
			if err != nil {
				row.problems = append(row.problems, fmt.Sprintf("row %d: unreadable %s %q treated as 0", i+1, name, cell(name)))
				continue
			}
			if ok {
				*target = f
			}
		}
		doc.Services = append(doc.Services, row)
	}

	return FromDocument(doc), nil
}

// WriteXLSX exports the catalog as a single matrix sheet
func WriteXLSX(w io.Writer, c *catalog.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DefaultSheet); err != nil {
		return errors.Internal("failed to name sheet", err)
	}

	header := make([]interface{}, len(XLSXHeaders))
	for i, h := range XLSXHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return errors.Internal("failed to write header", err)
	}

	for i, row := range ToDocument(c).Services {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Internal("failed to convert coordinates", err)
		}
		values := []interface{}{
			row.ServiceID, row.PackageID, row.Title, row.GroupID,
			row.QtyDefault, row.UnitHours, row.AutoFrom, row.AutoMultiplier,
		}
		if row.AutoFrom == "" {
			values[7] = ""
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &values); err != nil {
			return errors.Internal(fmt.Sprintf("failed to write row %d", i+2), err)
		}
	}

	if err := f.SetPanes(DefaultSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.Internal("failed to freeze header", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(errors.TypeInput, "failed to write spreadsheet", err)
	}
	return nil
}
