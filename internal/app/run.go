package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/guard"
	"github.com/vk/vigilgo/internal/state"
)

// Run executes one supervised scenario run: it seeds the store, launches the
// state sources, assembles the guard definition, and races the task against
// the invariant watchers.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	store := state.New(a.scenario.Initial)

	// Sources feed the store for the duration of the race and are cancelled
	// as soon as the supervised run resolves.
	srcCtx, stopSources := context.WithCancel(ctx)
	defer stopSources()
	var srcWG sync.WaitGroup
	for _, src := range a.scenario.Sources {
		fn, err := a.registry.Source(src.Runner)
		if err != nil {
			return err
		}
		srcWG.Add(1)
		go func() {
			defer srcWG.Done()
			logger := a.logger.With("source", src.Runner+"."+src.Name)
			logger.Debug("State source starting.")
			err := fn(ctxlog.WithLogger(srcCtx, logger), store, src.Args)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("State source stopped with error.", "error", err)
				return
			}
			logger.Debug("State source stopped.")
		}()
	}

	def, violated, err := a.buildDefinition(store)
	if err != nil {
		return fmt.Errorf("failed to assemble guard definition: %w", err)
	}

	a.logger.Info("🚀 Starting supervised run...",
		"task", a.scenario.Task.Runner+"."+a.scenario.Task.Name,
		"invariants", len(a.scenario.Invariants),
		"handlers", len(a.scenario.Handlers))

	runErr := def.Run(ctx)
	stopSources()
	srcWG.Wait()

	if runErr != nil {
		return fmt.Errorf("supervised run failed: %w", runErr)
	}
	if *violated != nil {
		a.logger.Warn("🛑 Run ended after an invariant watcher fired.", "violated", *violated)
	} else {
		a.logger.Info("🏁 Task completed with all invariants intact.")
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// buildDefinition assembles the immutable guard definition from the loaded
// scenario. The returned slice pointer is set by a trailing handler, so Run
// can tell afterwards whether the violation path was taken and with what set.
func (a *App) buildDefinition(store *state.Store[cty.Value]) (guard.Definition[cty.Value], *[]string, error) {
	taskFn, err := a.registry.Task(a.scenario.Task.Runner)
	if err != nil {
		return guard.Definition[cty.Value]{}, nil, err
	}
	taskRef := a.scenario.Task
	taskLogger := a.logger.With("task", taskRef.Runner+"."+taskRef.Name)

	def := guard.New[cty.Value](store).AttachTask(func(taskCtx context.Context) error {
		return taskFn(ctxlog.WithLogger(taskCtx, taskLogger), store, taskRef.Args)
	})

	for _, inv := range a.scenario.Invariants {
		def, err = def.AddInvariant(inv.Tag, inv.Clause)
		if err != nil {
			return guard.Definition[cty.Value]{}, nil, err
		}
	}

	for _, h := range a.scenario.Handlers {
		handlerFn, err := a.registry.Handler(h.Runner)
		if err != nil {
			return guard.Definition[cty.Value]{}, nil, err
		}
		ref := h
		handlerLogger := a.logger.With("handler", ref.Runner+"."+ref.Name)
		def = def.AddViolationHandler(func(hctx context.Context, snapshot cty.Value, violated []string) error {
			handlerLogger.Debug("Violation handler starting.", "violated", violated)
			return handlerFn(ctxlog.WithLogger(hctx, handlerLogger), snapshot, violated, ref.Args)
		})
	}

	// Trailing handler: records that the violation path ran. The supervisor
	// passes a non-nil (possibly empty) set, and handlers run sequentially,
	// so the unsynchronized write is safe.
	violated := new([]string)
	def = def.AddViolationHandler(func(_ context.Context, _ cty.Value, tags []string) error {
		*violated = tags
		return nil
	})
	return def, violated, nil
}
