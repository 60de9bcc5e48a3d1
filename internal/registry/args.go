package registry

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Args carries the evaluated `arguments` block of a scenario runner as a map
// of cty values. Accessors are tolerant: a missing or mistyped attribute
// reports false and the runner falls back to its own default.
type Args map[string]cty.Value

// String returns the string attribute named key.
func (a Args) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v.IsNull() || !v.Type().Equals(cty.String) {
		return "", false
	}
	return v.AsString(), true
}

// Number returns the numeric attribute named key as a float64.
func (a Args) Number(key string) (float64, bool) {
	v, ok := a[key]
	if !ok || v.IsNull() || !v.Type().Equals(cty.Number) {
		return 0, false
	}
	f, _ := v.AsBigFloat().Float64()
	return f, true
}

// Bool returns the boolean attribute named key.
func (a Args) Bool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok || v.IsNull() || !v.Type().Equals(cty.Bool) {
		return false, false
	}
	return v.True(), true
}

// Duration parses the string attribute named key with time.ParseDuration.
func (a Args) Duration(key string) (time.Duration, bool) {
	s, ok := a.String(key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d, true
}
