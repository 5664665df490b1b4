package taskrun

import (
	"context"
	"fmt"

	"github.com/vk/taskflowgo/internal/binder"
	"github.com/vk/taskflowgo/internal/ctxlog"
	"github.com/vk/taskflowgo/internal/execctx"
	"github.com/vk/taskflowgo/internal/notify"
)

// Runner resolves and invokes task callables with their execution context.
type Runner struct {
	registry  *Registry
	flattener *execctx.Flattener
	notifiers []notify.Notifier
}

// NewRunner wires a runner from its collaborators. Notifiers are optional.
func NewRunner(registry *Registry, flattener *execctx.Flattener, notifiers ...notify.Notifier) *Runner {
	return &Runner{registry: registry, flattener: flattener, notifiers: notifiers}
}

// Run executes the named callable: the context's candidate pool is narrowed
// to the callable's declared parameters and the opArgs are passed
// positionally. Observers are notified of the start; a notifier failure is
// logged and does not fail the run.
func (r *Runner) Run(ctx context.Context, taskName string, tc *execctx.Context, opArgs []any) (any, error) {
	logger := ctxlog.With(ctx, "task", taskName)

	callable, ok := r.registry.Lookup(taskName)
	if !ok {
		return nil, fmt.Errorf("callable '%s' not registered", taskName)
	}

	envVars, err := r.EnvVars(ctx, tc)
	if err != nil {
		return nil, err
	}
	r.emit(ctx, notify.Event{Name: "task_started", Task: taskName, Vars: envVars})

	logger.Debug("Invoking task callable.", "op_args", len(opArgs))
	result, err := binder.MakeKwargsCallable(callable)(ctx, opArgs, tc.Pool())
	if err != nil {
		r.emit(ctx, notify.Event{Name: "task_failed", Task: taskName})
		return nil, fmt.Errorf("task '%s' failed: %w", taskName, err)
	}

	r.emit(ctx, notify.Event{Name: "task_finished", Task: taskName})
	return result, nil
}

// EnvVars renders the context as environment variables for subprocess-style
// task launches.
func (r *Runner) EnvVars(ctx context.Context, tc *execctx.Context) (map[string]string, error) {
	return r.flattener.Vars(ctx, tc, true)
}

// emit fans one event out to all notifiers sequentially.
func (r *Runner) emit(ctx context.Context, event notify.Event) {
	logger := ctxlog.FromContext(ctx)
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			logger.Warn("Notifier failed.", "event", event.Name, "task", event.Task, "error", err)
		}
	}
}
