// Package registry holds the named Go runners a scenario can reference:
// tasks (the supervised computation), sources (state feeders that run beside
// it), and handlers (violation callbacks). Modules register runners at
// startup; scenario references are validated before anything executes.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/state"
)

// Task is the supervised computation. It must honor ctx cancellation; when an
// invariant breaks, the supervisor cancels the task and discards its result.
type Task func(ctx context.Context, store *state.Store[cty.Value], args Args) error

// Source is a state feeder. It runs concurrently with the supervised run and
// should block, applying updates to the store, until ctx ends.
type Source func(ctx context.Context, store *state.Store[cty.Value], args Args) error

// Handler is a violation handler. It receives the snapshot and violation set
// computed by the supervisor plus the scenario-declared arguments.
type Handler func(ctx context.Context, snapshot cty.Value, violated []string, args Args) error

// Module is the interface that all runner modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry maps runner names to their Go implementations for a single
// application instance.
type Registry struct {
	tasks    map[string]Task
	sources  map[string]Source
	handlers map[string]Handler
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		tasks:    make(map[string]Task),
		sources:  make(map[string]Source),
		handlers: make(map[string]Handler),
	}
}

// RegisterTask registers a task runner. A duplicate name is a programmer
// error and panics.
func (r *Registry) RegisterTask(name string, fn Task) {
	if _, exists := r.tasks[name]; exists {
		panic(fmt.Sprintf("task runner with name '%s' already registered", name))
	}
	slog.Debug("Registering task runner.", "name", name)
	r.tasks[name] = fn
}

// RegisterSource registers a state source runner. A duplicate name panics.
func (r *Registry) RegisterSource(name string, fn Source) {
	if _, exists := r.sources[name]; exists {
		panic(fmt.Sprintf("source runner with name '%s' already registered", name))
	}
	slog.Debug("Registering source runner.", "name", name)
	r.sources[name] = fn
}

// RegisterHandler registers a violation handler runner. A duplicate name panics.
func (r *Registry) RegisterHandler(name string, fn Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("handler runner with name '%s' already registered", name))
	}
	slog.Debug("Registering handler runner.", "name", name)
	r.handlers[name] = fn
}

// Task looks up a task runner by name.
func (r *Registry) Task(name string) (Task, error) {
	fn, ok := r.tasks[name]
	if !ok {
		return nil, fmt.Errorf("no task runner registered with name '%s'", name)
	}
	return fn, nil
}

// Source looks up a source runner by name.
func (r *Registry) Source(name string) (Source, error) {
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("no source runner registered with name '%s'", name)
	}
	return fn, nil
}

// Handler looks up a handler runner by name.
func (r *Registry) Handler(name string) (Handler, error) {
	fn, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("no handler runner registered with name '%s'", name)
	}
	return fn, nil
}
