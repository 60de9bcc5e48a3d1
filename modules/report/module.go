// Package report provides a violation handler that prints the state snapshot
// and the violated tags, for scenarios that only need a human-readable record
// of what broke.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/ctystate"
	"github.com/vk/vigilgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnViolationReport is the handler for the 'report' violation runner.
func OnViolationReport(ctx context.Context, snapshot cty.Value, violated []string, _ registry.Args) error {
	logger := ctxlog.FromContext(ctx)
	logger.Warn("Invariant violation report", "violated", violated)

	if len(violated) == 0 {
		fmt.Println("      (no invariants currently violated)")
	} else {
		fmt.Printf("      violated: %s\n", strings.Join(violated, ", "))
	}
	for _, key := range ctystate.Keys(snapshot) {
		fmt.Printf("      state.%s = %s\n", key, formatValue(snapshot.GetAttr(key)))
	}
	return nil
}

// formatValue renders a cty value compactly for the report.
func formatValue(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	switch {
	case v.Type().Equals(cty.String):
		return fmt.Sprintf("%q", v.AsString())
	case v.Type().Equals(cty.Number):
		f, _ := v.AsBigFloat().Float64()
		return fmt.Sprintf("%g", f)
	case v.Type().Equals(cty.Bool):
		return fmt.Sprintf("%t", v.True())
	default:
		return v.GoString()
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("report", OnViolationReport)
}
