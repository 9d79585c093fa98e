package matrix

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"aurora-quote/core/catalog"
	"aurora-quote/internal/errors"
)

// Format is a matrix file format
type Format string

const (
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the format from a file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", errors.Newf(errors.TypeInput, "unsupported matrix file %s: expected .json, .hcl or .xlsx", path)
}

// DecodeFile reads a matrix file into contents. sheet is used for
// spreadsheets only.
func DecodeFile(path, sheet string) (catalog.Contents, error) {
	format, err := FormatOf(path)
	if err != nil {
		return catalog.Contents{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return catalog.Contents{}, errors.NotFound("file", path)
		}
		return catalog.Contents{}, errors.Wrapf(errors.TypeInput, err, "failed to read %s", path)
	}

	switch format {
	case FormatHCL:
		return DecodeHCL(data, path)
	case FormatXLSX:
		return ReadXLSX(bytes.NewReader(data), sheet)
	default:
		return DecodeJSON(data)
	}
}

// LoadFile builds a catalog from a matrix file
func LoadFile(path, sheet string) (*catalog.Catalog, error) {
	contents, err := DecodeFile(path, sheet)
	if err != nil {
		return nil, err
	}
	return catalog.New(contents), nil
}

// SaveFile writes the catalog as JSON or XLSX, chosen by extension
func SaveFile(path string, c *catalog.Catalog) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		err = WriteJSON(&buf, c)
	case FormatXLSX:
		err = WriteXLSX(&buf, c)
	default:
		return errors.Newf(errors.TypeInput, "cannot write %s matrices", format)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(errors.TypeInput, err, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(errors.TypeInput, err, "failed to write %s", path)
	}
	return nil
}
