package scenario

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/guard"
	"github.com/vk/vigilgo/internal/registry"
)

// Load reads the scenario from path, which may be a single .hcl file or a
// directory searched recursively. Files are merged in sorted path order, so
// invariant and handler ordering is deterministic across runs.
func Load(ctx context.Context, path string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findScenarioFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl scenario files found at %q", path)
	}
	logger.Debug("Scenario files discovered.", "count", len(files))

	parser := hclparse.NewParser()
	var merged fileConfig
	for _, name := range files {
		file, diags := parser.ParseHCLFile(name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", name, diags)
		}
		var cfg fileConfig
		if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", name, diags)
		}
		if cfg.State != nil {
			if merged.State != nil {
				return nil, fmt.Errorf("%s: duplicate state block; a scenario declares exactly one", name)
			}
			merged.State = cfg.State
		}
		if cfg.Task != nil {
			if merged.Task != nil {
				return nil, fmt.Errorf("%s: duplicate task block; a scenario declares exactly one", name)
			}
			merged.Task = cfg.Task
		}
		merged.Sources = append(merged.Sources, cfg.Sources...)
		merged.Invariants = append(merged.Invariants, cfg.Invariants...)
		merged.Handlers = append(merged.Handlers, cfg.Handlers...)
	}

	return assemble(ctx, &merged)
}

// assemble validates the merged block set and compiles it into a Scenario.
func assemble(ctx context.Context, cfg *fileConfig) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)

	if cfg.State == nil {
		return nil, fmt.Errorf("scenario is missing its state block")
	}
	if cfg.Task == nil {
		return nil, fmt.Errorf("scenario is missing its task block")
	}

	initial, diags := cfg.State.Initial.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate initial state: %w", diags)
	}
	if !initial.Type().IsObjectType() {
		return nil, fmt.Errorf("initial state must be an object, got %s", initial.Type().FriendlyName())
	}

	sc := &Scenario{Initial: initial}

	task, err := resolveRunnerRef(cfg.Task.RunnerType, cfg.Task.Name, cfg.Task.Arguments)
	if err != nil {
		return nil, err
	}
	sc.Task = task

	for _, src := range cfg.Sources {
		ref, err := resolveRunnerRef(src.RunnerType, src.Name, src.Arguments)
		if err != nil {
			return nil, err
		}
		sc.Sources = append(sc.Sources, ref)
	}

	seen := make(map[string]struct{}, len(cfg.Invariants))
	for _, inv := range cfg.Invariants {
		if inv.Tag == guard.ReservedTag {
			return nil, fmt.Errorf("%w: %q", guard.ErrReservedTag, inv.Tag)
		}
		if _, dup := seen[inv.Tag]; dup {
			return nil, fmt.Errorf("%w: %q", guard.ErrDuplicateTag, inv.Tag)
		}
		seen[inv.Tag] = struct{}{}

		clause, err := compileClause(inv.Tag, inv.Clause, initial)
		if err != nil {
			return nil, err
		}
		sc.Invariants = append(sc.Invariants, Invariant{Tag: inv.Tag, Clause: clause})
	}

	for _, h := range cfg.Handlers {
		ref, err := resolveRunnerRef(h.RunnerType, h.Name, h.Arguments)
		if err != nil {
			return nil, err
		}
		sc.Handlers = append(sc.Handlers, ref)
	}

	logger.Debug("Scenario assembled.",
		"sources", len(sc.Sources), "invariants", len(sc.Invariants), "handlers", len(sc.Handlers))
	return sc, nil
}

// resolveRunnerRef evaluates a runner reference's arguments block. Argument
// attributes are literals; expressions needing variables are rejected here.
func resolveRunnerRef(runnerType, name string, argsBlock *ArgsBlock) (RunnerRef, error) {
	ref := RunnerRef{Runner: runnerType, Name: name, Args: registry.Args{}}
	if argsBlock == nil {
		return ref, nil
	}
	attrs, diags := argsBlock.Body.JustAttributes()
	if diags.HasErrors() {
		return RunnerRef{}, fmt.Errorf("invalid arguments for %s.%s: %w", runnerType, name, diags)
	}
	for attrName, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return RunnerRef{}, fmt.Errorf("invalid argument %q for %s.%s: %w", attrName, runnerType, name, diags)
		}
		ref.Args[attrName] = val
	}
	return ref, nil
}

// findScenarioFiles resolves path to a sorted list of .hcl files.
func findScenarioFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scenario path %q is not readable: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
