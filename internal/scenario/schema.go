package scenario

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/guard"
	"github.com/vk/vigilgo/internal/registry"
)

// ArgsBlock represents the content of an 'arguments' block within a runner
// reference. Attributes are evaluated as literals at load time.
type ArgsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// StateBlock represents the singleton `state` block. Its `initial` expression
// must evaluate to an object literal seeding the shared store.
type StateBlock struct {
	Initial hcl.Expression `hcl:"initial"`
}

// TaskBlock represents the singleton `task` block naming the supervised
// computation.
type TaskBlock struct {
	RunnerType string     `hcl:"runner_type,label"`
	Name       string     `hcl:"instance_name,label"`
	Arguments  *ArgsBlock `hcl:"arguments,block"`
}

// SourceBlock represents a `source` block: a registered state feeder that
// runs concurrently with the supervised task.
type SourceBlock struct {
	RunnerType string     `hcl:"runner_type,label"`
	Name       string     `hcl:"instance_name,label"`
	Arguments  *ArgsBlock `hcl:"arguments,block"`
}

// InvariantBlock represents an `invariant` block. The clause expression is
// evaluated with the current state bound to the `state` variable.
type InvariantBlock struct {
	Tag    string         `hcl:"tag,label"`
	Clause hcl.Expression `hcl:"clause"`
}

// HandlerBlock represents an `on_violation` block naming a registered
// violation handler.
type HandlerBlock struct {
	RunnerType string     `hcl:"runner_type,label"`
	Name       string     `hcl:"instance_name,label"`
	Arguments  *ArgsBlock `hcl:"arguments,block"`
}

// fileConfig is the top-level structure of a single scenario file. Singleton
// blocks are enforced across the whole file set, not per file.
type fileConfig struct {
	State      *StateBlock       `hcl:"state,block"`
	Sources    []*SourceBlock    `hcl:"source,block"`
	Task       *TaskBlock        `hcl:"task,block"`
	Invariants []*InvariantBlock `hcl:"invariant,block"`
	Handlers   []*HandlerBlock   `hcl:"on_violation,block"`
}

// RunnerRef is a resolved reference to a registered runner with its evaluated
// arguments.
type RunnerRef struct {
	Runner string
	Name   string
	Args   registry.Args
}

// Invariant is a compiled invariant: a tag plus a predicate over state
// snapshots ready for the guard core.
type Invariant struct {
	Tag    string
	Clause guard.Predicate[cty.Value]
}

// Scenario is the fully loaded, validated, and compiled configuration of one
// supervised run.
type Scenario struct {
	Initial    cty.Value
	Task       RunnerRef
	Sources    []RunnerRef
	Invariants []Invariant
	Handlers   []RunnerRef
}
