package guard

import (
	"context"
	"sync"

	"github.com/vk/vigilgo/internal/ctxlog"
)

// outcome identifies which race branch finished first and how. A task branch
// carries the task's own result; a watcher branch carries a nil error when it
// observed its clause turn false, or the context error it was torn down with.
type outcome struct {
	tag  string
	task bool
	err  error
}

// Run executes one supervised run: it races the task against all invariant
// watchers, and on a watcher win evaluates the violation set against one fresh
// snapshot and dispatches the handlers in registration order.
//
// Run defines no error kind of its own. Task and handler errors propagate
// unfiltered; a run whose violation handlers all complete returns nil.
func (d Definition[S]) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Supervised race starting.", "invariants", len(d.invariants), "handlers", len(d.handlers))

	winner := d.race(ctx)
	if winner.task {
		logger.Debug("Task branch won the race.", "error", winner.err)
		return winner.err
	}
	if winner.err != nil {
		// The winning watcher did not observe a violation; it was torn down,
		// typically because the parent context ended.
		return winner.err
	}
	logger.Debug("Watcher branch won the race.", "tag", winner.tag)

	// One consistent snapshot for the whole violation pass. Every clause is
	// re-evaluated against it: the race only found the first break in time,
	// and by now other invariants may have broken too, or the winner may have
	// flapped back. The handlers are owed the live set, in registration order.
	snapshot := d.source.Snapshot()
	violated := make([]string, 0, len(d.invariants))
	for _, inv := range d.invariants {
		if !inv.Clause(snapshot) {
			violated = append(violated, inv.Tag)
		}
	}
	logger.Debug("Violation set evaluated.", "violated", violated)

	for _, handle := range d.handlers {
		if err := handle(ctx, snapshot, violated); err != nil {
			return err
		}
	}
	return nil
}

// race starts the task branch and one watcher branch per invariant, returns
// the first outcome, and tears the rest down. It does not return until every
// losing branch has unwound, so callers observe the cancellation guarantee,
// not just request it.
func (d Definition[S]) race(ctx context.Context) outcome {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered to the branch count so losers never block on send.
	results := make(chan outcome, len(d.invariants)+1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- outcome{tag: ReservedTag, task: true, err: d.task(raceCtx)}
	}()

	for _, inv := range d.invariants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- outcome{tag: inv.Tag, err: d.source.ObserveWhile(raceCtx, inv.Clause)}
		}()
	}

	winner := <-results
	cancel()
	wg.Wait()
	return winner
}
