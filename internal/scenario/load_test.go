package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/guard"
)

// writeScenario writes the given files into a temp dir and returns its path.
func writeScenario(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

const validScenario = `
state {
  initial = { count = 5 }
}

source "ticker" "drain" {
  arguments {
    key      = "count"
    interval = "10ms"
    step     = -1
  }
}

task "sleep" "main" {
  arguments {
    duration = "1s"
  }
}

invariant "non_negative" {
  clause = state.count >= 0
}

on_violation "report" "log" {
  arguments {}
}
`

func TestLoad_FullScenario(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": validScenario})
	sc, err := Load(context.Background(), dir)
	require.NoError(t, err)

	require.True(t, sc.Initial.GetAttr("count").RawEquals(cty.NumberIntVal(5)))

	require.Equal(t, "sleep", sc.Task.Runner)
	require.Equal(t, "main", sc.Task.Name)
	dur, ok := sc.Task.Args.Duration("duration")
	require.True(t, ok)
	require.Equal(t, "1s", dur.String())

	require.Len(t, sc.Sources, 1)
	require.Equal(t, "ticker", sc.Sources[0].Runner)
	step, ok := sc.Sources[0].Args.Number("step")
	require.True(t, ok)
	require.Equal(t, float64(-1), step)

	require.Len(t, sc.Invariants, 1)
	require.Equal(t, "non_negative", sc.Invariants[0].Tag)

	require.Len(t, sc.Handlers, 1)
	require.Equal(t, "report", sc.Handlers[0].Runner)
}

func TestLoad_SingleFilePath(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": validScenario})
	sc, err := Load(context.Background(), filepath.Join(dir, "main.hcl"))
	require.NoError(t, err)
	require.Equal(t, "sleep", sc.Task.Runner)
}

func TestLoad_CompiledClauseEvaluatesSnapshots(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": validScenario})
	sc, err := Load(context.Background(), dir)
	require.NoError(t, err)

	clause := sc.Invariants[0].Clause
	require.True(t, clause(cty.ObjectVal(map[string]cty.Value{"count": cty.NumberIntVal(5)})))
	require.False(t, clause(cty.ObjectVal(map[string]cty.Value{"count": cty.NumberIntVal(-1)})))

	// A snapshot the clause cannot evaluate against counts as violated.
	require.False(t, clause(cty.ObjectVal(map[string]cty.Value{"other": cty.NumberIntVal(1)})))
}

func TestLoad_MissingStateBlock(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
task "sleep" "main" {}
`})
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing its state block")
}

func TestLoad_MissingTaskBlock(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
state {
  initial = { count = 1 }
}
`})
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing its task block")
}

func TestLoad_DuplicateTaskAcrossFiles(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{
		"a.hcl": `
state {
  initial = { count = 1 }
}
task "sleep" "one" {}
`,
		"b.hcl": `
task "sleep" "two" {}
`,
	})
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate task block")
}

func TestLoad_DuplicateInvariantTag(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
state {
  initial = { count = 1 }
}
task "sleep" "main" {}
invariant "bounded" {
  clause = state.count >= 0
}
invariant "bounded" {
  clause = state.count <= 10
}
`})
	_, err := Load(context.Background(), dir)
	require.ErrorIs(t, err, guard.ErrDuplicateTag)
}

func TestLoad_ReservedInvariantTag(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
state {
  initial = { count = 1 }
}
task "sleep" "main" {}
invariant "@@Saga" {
  clause = state.count >= 0
}
`})
	_, err := Load(context.Background(), dir)
	require.ErrorIs(t, err, guard.ErrReservedTag)
}

func TestLoad_ClauseMustProduceBool(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
state {
  initial = { count = 1 }
}
task "sleep" "main" {}
invariant "bounded" {
  clause = state.count + 1
}
`})
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must produce a bool")
}

func TestLoad_ClauseMustEvaluateAgainstInitialState(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
state {
  initial = { count = 1 }
}
task "sleep" "main" {}
invariant "bounded" {
  clause = state.missing >= 0
}
`})
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not evaluate against the initial state")
}

func TestLoad_InitialStateMustBeObject(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
state {
  initial = 5
}
task "sleep" "main" {}
`})
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be an object")
}

func TestLoad_ParseErrorSurfacesFileName(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
state {
  initial = { count = 1
`})
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "main.hcl")
}

func TestLoad_NoFilesFound(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no .hcl scenario files")
}

// Files merge in sorted path order, so invariant ordering is deterministic
// regardless of how the directory is walked.
func TestLoad_MultiFileMergeIsDeterministic(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{
		"b_extra.hcl": `
invariant "second" {
  clause = state.count <= 10
}
`,
		"a_main.hcl": `
state {
  initial = { count = 1 }
}
task "sleep" "main" {}
invariant "first" {
  clause = state.count >= 0
}
`,
	})
	sc, err := Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, sc.Invariants, 2)
	require.Equal(t, "first", sc.Invariants[0].Tag)
	require.Equal(t, "second", sc.Invariants[1].Tag)
}

func TestLoad_ArgumentsMustBeLiterals(t *testing.T) {
	t.Parallel()

	dir := writeScenario(t, map[string]string{"main.hcl": `
state {
  initial = { count = 1 }
}
task "sleep" "main" {
  arguments {
    duration = state.count
  }
}
`})
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duration")
}
