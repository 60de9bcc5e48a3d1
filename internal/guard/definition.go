package guard

import (
	"context"
	"fmt"
	"slices"
)

// ReservedTag is the internal race key naming the primary task's branch. It
// can never be used as an invariant tag.
const ReservedTag = "@@Saga"

// Predicate reports whether an invariant still holds for a state snapshot.
// Implementations must be pure: no side effects, no suspension.
type Predicate[S any] func(S) bool

// TaskFunc is the supervised computation. It must honor context cancellation;
// when a watcher wins the race the task's context is cancelled and its result
// is discarded.
type TaskFunc func(ctx context.Context) error

// HandlerFunc is a violation handler. Every handler of a run receives the same
// state snapshot and the same violation set, in invariant registration order.
type HandlerFunc[S any] func(ctx context.Context, snapshot S, violated []string) error

// Invariant pairs a caller-chosen tag with the predicate it guards.
type Invariant[S any] struct {
	Tag    string
	Clause Predicate[S]
}

// Source is the contract the supervisor needs from the shared state: a
// synchronous snapshot read and a blocking watch that completes once a clause
// is observed to evaluate false.
type Source[S any] interface {
	Snapshot() S
	ObserveWhile(ctx context.Context, clause func(S) bool) error
}

// Builder is the empty stage of the definition chain. It carries only the
// state source; AttachTask produces the first runnable stage.
type Builder[S any] struct {
	source Source[S]
}

// New starts a definition chain over the given state source.
func New[S any](source Source[S]) Builder[S] {
	if source == nil {
		panic("guard: New called with nil source")
	}
	return Builder[S]{source: source}
}

// AttachTask attaches the supervised computation and returns the stage that
// accepts invariants and violation handlers.
func (b Builder[S]) AttachTask(task TaskFunc) Definition[S] {
	if task == nil {
		panic("guard: AttachTask called with nil task")
	}
	return Definition[S]{source: b.source, task: task}
}

// Definition is an immutable supervised-run configuration. Methods return new
// values; a Definition can be forked at any stage and reused for any number of
// independent runs.
type Definition[S any] struct {
	source     Source[S]
	task       TaskFunc
	invariants []Invariant[S]
	handlers   []HandlerFunc[S]
}

// AddInvariant appends a tagged predicate. It fails synchronously with
// ErrReservedTag or ErrDuplicateTag; both are configuration-time errors, so a
// started run can never encounter them.
func (d Definition[S]) AddInvariant(tag string, clause Predicate[S]) (Definition[S], error) {
	if tag == ReservedTag {
		return Definition[S]{}, fmt.Errorf("%w: %q", ErrReservedTag, tag)
	}
	for _, inv := range d.invariants {
		if inv.Tag == tag {
			return Definition[S]{}, fmt.Errorf("%w: %q", ErrDuplicateTag, tag)
		}
	}
	next := d
	// Clip forces the append to reallocate, so sibling stages built from the
	// same receiver never share a backing array.
	next.invariants = append(slices.Clip(d.invariants), Invariant[S]{Tag: tag, Clause: clause})
	return next, nil
}

// AddViolationHandler appends a handler. Handlers run sequentially in the
// order they were added.
func (d Definition[S]) AddViolationHandler(fn HandlerFunc[S]) Definition[S] {
	if fn == nil {
		panic("guard: AddViolationHandler called with nil handler")
	}
	next := d
	next.handlers = append(slices.Clip(d.handlers), fn)
	return next
}

// Invariants returns the registered tags in registration order.
func (d Definition[S]) Invariants() []string {
	tags := make([]string, len(d.invariants))
	for i, inv := range d.invariants {
		tags[i] = inv.Tag
	}
	return tags
}
