package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"aurora-quote/core/catalog"
	"aurora-quote/internal/errors"
)

// serviceRowWire accepts every spelling older matrices use for a row
type serviceRowWire struct {
	ServiceID string `json:"service_id"`
	ID        string `json:"id"`
	Key       string `json:"key"`

	PackageID string `json:"package_id"`

	Title   string `json:"title"`
	GroupID string `json:"group_id"`
	Group   string `json:"group"`

	QtyDefault *float64 `json:"qty_default"`
	Qty        *float64 `json:"qty"`

	UnitHours    *float64 `json:"unit_hours"`
	HoursPerUnit *float64 `json:"hours_per_unit"`

	QtyMode        string          `json:"qty_mode"`
	AutoDep        json.RawMessage `json:"auto_dep"`
	AutoFrom       string          `json:"auto_from"`
	AutoMultiplier *float64        `json:"auto_multiplier"`
}

type autoDep struct {
	Source     string   `json:"source"`
	Multiplier *float64 `json:"multiplier"`
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNumber(values ...*float64) (float64, bool) {
	for _, v := range values {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

// UnmarshalJSON decodes a row in any of its historical spellings. auto_dep
// may be a plain basis name or an object with source and multiplier; it
// takes precedence over auto_from and auto_multiplier.
func (r *ServiceRow) UnmarshalJSON(data []byte) error {
	var wire serviceRowWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = ServiceRow{
		ServiceID: firstString(wire.ServiceID, wire.ID, wire.Key),
		PackageID: wire.PackageID,
		Title:     wire.Title,
		GroupID:   firstString(wire.GroupID, wire.Group),
		QtyMode:   wire.QtyMode,
		AutoFrom:  wire.AutoFrom,
	}
	r.QtyDefault, _ = firstNumber(wire.QtyDefault, wire.Qty)
	r.UnitHours, _ = firstNumber(wire.UnitHours, wire.HoursPerUnit)

	var depMultiplier *float64
	dep := bytes.TrimSpace(wire.AutoDep)
	switch {
	case len(dep) == 0 || bytes.Equal(dep, []byte("null")):
	case dep[0] == '"':
		var source string
		if err := json.Unmarshal(dep, &source); err == nil {
			r.AutoFrom = firstString(source, r.AutoFrom)
		}
	case dep[0] == '{':
		var obj autoDep
		if err := json.Unmarshal(dep, &obj); err != nil {
			r.problems = append(r.problems, fmt.Sprintf("unreadable auto_dep: %v", err))
			break
		}
		r.AutoFrom = firstString(obj.Source, r.AutoFrom)
		depMultiplier = obj.Multiplier
	default:
		r.problems = append(r.problems, fmt.Sprintf("auto_dep %s ignored", dep))
	}
	r.AutoMultiplier, _ = firstNumber(depMultiplier, wire.AutoMultiplier)

	if r.QtyMode == "" && r.AutoFrom != "" {
		r.QtyMode = "auto"
	}
	return nil
}

// DecodeJSON parses a JSON matrix document
func DecodeJSON(data []byte) (catalog.Contents, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return catalog.Contents{}, errors.Parsing("invalid matrix JSON", err)
	}
	return FromDocument(doc), nil
}

// ReadJSON parses a JSON matrix document from r
func ReadJSON(r io.Reader) (catalog.Contents, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return catalog.Contents{}, errors.Wrap(errors.TypeInput, "failed to read matrix", err)
	}
	return DecodeJSON(data)
}

// EncodeJSON renders a catalog as an indented JSON matrix document
func EncodeJSON(c *catalog.Catalog) ([]byte, error) {
	data, err := json.MarshalIndent(ToDocument(c), "", "  ")
	if err != nil {
		return nil, errors.Internal("failed to encode matrix", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes the JSON matrix of c to w
func WriteJSON(w io.Writer, c *catalog.Catalog) error {
	data, err := EncodeJSON(c)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.TypeInput, "failed to write matrix", err)
	}
	return nil
}
