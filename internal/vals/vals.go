// Package vals provides typed accessors over the cty.Value property objects
// passed to component construction.
//
// Properties are JSON-like nested documents represented as cty object values.
// Accessors are lenient about representation (an HCL tuple, a JSON array and
// a cty list are interchangeable) but strict about presence: the non-Or
// variants fail with ErrInvalidArgument when a key is missing or has an
// incompatible type. Unknown keys are always ignored.
package vals

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrInvalidArgument reports a malformed or missing configuration field.
var ErrInvalidArgument = errors.New("invalid argument")

// FromJSON parses a JSON document into a cty value with an implied type.
func FromJSON(data []byte) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	v, err := ctyjson.Unmarshal(data, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return v, nil
}

// Empty returns an empty property object.
func Empty() cty.Value {
	return cty.EmptyObjectVal
}

// Object builds a property object from a Go map of cty values.
func Object(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// attr looks up a key in a property object, reporting absence for null
// values and non-object properties.
func attr(prop cty.Value, key string) (cty.Value, bool) {
	if prop.IsNull() || !prop.IsKnown() {
		return cty.NilVal, false
	}
	ty := prop.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return cty.NilVal, false
	}
	if ty.IsObjectType() && !ty.HasAttribute(key) {
		return cty.NilVal, false
	}
	m := prop.AsValueMap()
	v, ok := m[key]
	if !ok || v.IsNull() {
		return cty.NilVal, false
	}
	return v, true
}

// Has reports whether the property object carries a non-null value for key.
func Has(prop cty.Value, key string) bool {
	_, ok := attr(prop, key)
	return ok
}

// String returns the string value of a required key.
func String(prop cty.Value, key string) (string, error) {
	v, ok := attr(prop, key)
	if !ok {
		return "", fmt.Errorf("%w: missing key %q", ErrInvalidArgument, key)
	}
	cv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("%w: key %q: %v", ErrInvalidArgument, key, err)
	}
	return cv.AsString(), nil
}

// StringOr returns the string value of key, or def when absent.
func StringOr(prop cty.Value, key, def string) (string, error) {
	if !Has(prop, key) {
		return def, nil
	}
	return String(prop, key)
}

// Int returns the integer value of a required key.
func Int(prop cty.Value, key string) (int64, error) {
	v, ok := attr(prop, key)
	if !ok {
		return 0, fmt.Errorf("%w: missing key %q", ErrInvalidArgument, key)
	}
	cv, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("%w: key %q: %v", ErrInvalidArgument, key, err)
	}
	i, acc := cv.AsBigFloat().Int64()
	if acc != 0 {
		return 0, fmt.Errorf("%w: key %q is not an integer", ErrInvalidArgument, key)
	}
	return i, nil
}

// IntOr returns the integer value of key, or def when absent.
func IntOr(prop cty.Value, key string, def int64) (int64, error) {
	if !Has(prop, key) {
		return def, nil
	}
	return Int(prop, key)
}

// Float returns the floating-point value of a required key.
func Float(prop cty.Value, key string) (float64, error) {
	v, ok := attr(prop, key)
	if !ok {
		return 0, fmt.Errorf("%w: missing key %q", ErrInvalidArgument, key)
	}
	cv, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("%w: key %q: %v", ErrInvalidArgument, key, err)
	}
	f, _ := cv.AsBigFloat().Float64()
	return f, nil
}

// FloatOr returns the floating-point value of key, or def when absent.
func FloatOr(prop cty.Value, key string, def float64) (float64, error) {
	if !Has(prop, key) {
		return def, nil
	}
	return Float(prop, key)
}

// Bool returns the boolean value of a required key.
func Bool(prop cty.Value, key string) (bool, error) {
	v, ok := attr(prop, key)
	if !ok {
		return false, fmt.Errorf("%w: missing key %q", ErrInvalidArgument, key)
	}
	cv, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("%w: key %q: %v", ErrInvalidArgument, key, err)
	}
	return cv.True(), nil
}

// BoolOr returns the boolean value of key, or def when absent.
func BoolOr(prop cty.Value, key string, def bool) (bool, error) {
	if !Has(prop, key) {
		return def, nil
	}
	return Bool(prop, key)
}

// elements iterates a list, tuple or set value.
func elements(v cty.Value) ([]cty.Value, bool) {
	if !v.CanIterateElements() {
		return nil, false
	}
	var out []cty.Value
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		out = append(out, ev)
	}
	return out, true
}

// Strings returns the string-slice value of a required key.
func Strings(prop cty.Value, key string) ([]string, error) {
	v, ok := attr(prop, key)
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrInvalidArgument, key)
	}
	elems, ok := elements(v)
	if !ok {
		return nil, fmt.Errorf("%w: key %q is not a sequence", ErrInvalidArgument, key)
	}
	out := make([]string, 0, len(elems))
	for i, ev := range elems {
		cv, err := convert.Convert(ev, cty.String)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q[%d]: %v", ErrInvalidArgument, key, i, err)
		}
		out = append(out, cv.AsString())
	}
	return out, nil
}

// Floats returns the float-slice value of a required key.
func Floats(prop cty.Value, key string) ([]float64, error) {
	v, ok := attr(prop, key)
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrInvalidArgument, key)
	}
	elems, ok := elements(v)
	if !ok {
		return nil, fmt.Errorf("%w: key %q is not a sequence", ErrInvalidArgument, key)
	}
	out := make([]float64, 0, len(elems))
	for i, ev := range elems {
		cv, err := convert.Convert(ev, cty.Number)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q[%d]: %v", ErrInvalidArgument, key, i, err)
		}
		f, _ := cv.AsBigFloat().Float64()
		out = append(out, f)
	}
	return out, nil
}

// Vec3 returns a required key holding exactly three numbers.
func Vec3(prop cty.Value, key string) ([3]float64, error) {
	fs, err := Floats(prop, key)
	if err != nil {
		return [3]float64{}, err
	}
	if len(fs) != 3 {
		return [3]float64{}, fmt.Errorf("%w: key %q needs 3 elements, got %d", ErrInvalidArgument, key, len(fs))
	}
	return [3]float64{fs[0], fs[1], fs[2]}, nil
}

// Obj returns the nested object value of a required key.
func Obj(prop cty.Value, key string) (cty.Value, error) {
	v, ok := attr(prop, key)
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: missing key %q", ErrInvalidArgument, key)
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return cty.NilVal, fmt.Errorf("%w: key %q is not an object", ErrInvalidArgument, key)
	}
	return v, nil
}
