// Package ctystate provides helpers for treating a cty object value as the
// application's shared state: key reads, copy-on-write key updates, and
// conversion of decoded JSON payloads into cty values.
package ctystate

import (
	"math/big"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Get returns the attribute named key, if the state is an object that has it.
func Get(state cty.Value, key string) (cty.Value, bool) {
	if state.IsNull() || !state.IsKnown() || !state.Type().IsObjectType() {
		return cty.NilVal, false
	}
	if !state.Type().HasAttribute(key) {
		return cty.NilVal, false
	}
	return state.GetAttr(key), true
}

// With returns a new state object with key set to val. All other attributes
// are carried over; a state that is not an object is replaced by a fresh
// single-attribute object.
func With(state cty.Value, key string, val cty.Value) cty.Value {
	attrs := map[string]cty.Value{}
	if !state.IsNull() && state.IsKnown() && state.Type().IsObjectType() {
		for name := range state.Type().AttributeTypes() {
			attrs[name] = state.GetAttr(name)
		}
	}
	attrs[key] = val
	return cty.ObjectVal(attrs)
}

// Number returns the attribute named key as a float64. Missing, null, or
// non-numeric attributes report false.
func Number(state cty.Value, key string) (float64, bool) {
	v, ok := Get(state, key)
	if !ok || v.IsNull() || !v.Type().Equals(cty.Number) {
		return 0, false
	}
	f, _ := v.AsBigFloat().Float64()
	return f, true
}

// AddNumber returns a new state with delta added to the numeric attribute
// named key. A missing or non-numeric attribute is treated as zero.
func AddNumber(state cty.Value, key string, delta float64) cty.Value {
	cur, _ := Number(state, key)
	return With(state, key, cty.NumberFloatVal(cur+delta))
}

// FromGo converts a JSON-shaped Go value (as produced by encoding/json or a
// wire decoder) into a cty value. Maps become objects, slices become tuples,
// and nil becomes a null of the dynamic pseudo-type.
func FromGo(v any) cty.Value {
	switch v := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case bool:
		return cty.BoolVal(v)
	case string:
		return cty.StringVal(v)
	case int:
		return cty.NumberIntVal(int64(v))
	case int64:
		return cty.NumberIntVal(v)
	case float64:
		return cty.NumberFloatVal(v)
	case *big.Float:
		return cty.NumberVal(v)
	case map[string]any:
		attrs := make(map[string]cty.Value, len(v))
		for name, val := range v {
			attrs[name] = FromGo(val)
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal
		}
		return cty.ObjectVal(attrs)
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, len(v))
		for i, val := range v {
			vals[i] = FromGo(val)
		}
		return cty.TupleVal(vals)
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}

// Keys returns the attribute names of a state object in sorted order.
func Keys(state cty.Value) []string {
	if state.IsNull() || !state.IsKnown() || !state.Type().IsObjectType() {
		return nil
	}
	names := make([]string, 0, len(state.Type().AttributeTypes()))
	for name := range state.Type().AttributeTypes() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
