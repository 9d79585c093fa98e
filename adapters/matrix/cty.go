package matrix

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
)

// ctyValue is a cty.Value checked for the shapes an HCL matrix uses.
// Unknown and null values are never passed through as data.
type ctyValue struct {
	val cty.Value
}

func (v ctyValue) usable() bool {
	return v.val.IsKnown() && !v.val.IsNull()
}

func (v ctyValue) typeName() string {
	return v.val.Type().FriendlyName()
}

// number returns the value as a float64
func (v ctyValue) number() (float64, error) {
	if !v.usable() {
		return 0, fmt.Errorf("value is null or unknown")
	}
	if v.val.Type() != cty.Number {
		return 0, fmt.Errorf("expected number, got %s", v.typeName())
	}
	f, _ := v.val.AsBigFloat().Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("number %v is not finite", f)
	}
	return f, nil
}

// str returns the value as a string
func (v ctyValue) str() (string, error) {
	if !v.usable() {
		return "", fmt.Errorf("value is null or unknown")
	}
	if v.val.Type() != cty.String {
		return "", fmt.Errorf("expected string, got %s", v.typeName())
	}
	return v.val.AsString(), nil
}

// strings returns a list, set or tuple of strings
func (v ctyValue) strings() ([]string, error) {
	if !v.usable() {
		return nil, fmt.Errorf("value is null or unknown")
	}
	ty := v.val.Type()
	if !ty.IsListType() && !ty.IsSetType() && !ty.IsTupleType() {
		return nil, fmt.Errorf("expected list of strings, got %s", v.typeName())
	}

	result := make([]string, 0, v.val.LengthInt())
	iter := v.val.ElementIterator()
	for iter.Next() {
		_, elem := iter.Element()
		s, err := ctyValue{elem}.str()
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

// numberMap returns an object or map of numbers keyed by attribute name.
// Entries that are not numbers are reported and skipped.
func (v ctyValue) numberMap() (map[string]float64, []string, error) {
	if !v.usable() {
		return nil, nil, fmt.Errorf("value is null or unknown")
	}
	ty := v.val.Type()
	if !ty.IsMapType() && !ty.IsObjectType() {
		return nil, nil, fmt.Errorf("expected object, got %s", v.typeName())
	}

	result := make(map[string]float64)
	var problems []string
	iter := v.val.ElementIterator()
	for iter.Next() {
		k, elem := iter.Element()
		key := k.AsString()
		f, err := ctyValue{elem}.number()
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		result[key] = f
	}
	return result, problems, nil
}
