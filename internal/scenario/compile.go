package scenario

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/guard"
)

// compileClause turns an invariant's HCL expression into a pure predicate
// over state snapshots. The expression is probed once against the initial
// state so type mistakes surface at load time; at run time an evaluation
// failure counts as "does not hold", since the core predicate contract has no
// error channel.
func compileClause(tag string, expr hcl.Expression, initial cty.Value) (guard.Predicate[cty.Value], error) {
	probe, diags := expr.Value(evalContext(initial))
	if diags.HasErrors() {
		return nil, fmt.Errorf("invariant %q: clause does not evaluate against the initial state: %w", tag, diags)
	}
	if !probe.Type().Equals(cty.Bool) {
		return nil, fmt.Errorf("invariant %q: clause must produce a bool, got %s", tag, probe.Type().FriendlyName())
	}

	return func(snapshot cty.Value) bool {
		v, diags := expr.Value(evalContext(snapshot))
		if diags.HasErrors() || v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.Bool) {
			return false
		}
		return v.True()
	}, nil
}

// evalContext binds a state snapshot to the `state` variable clauses read.
func evalContext(snapshot cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"state": snapshot},
	}
}
