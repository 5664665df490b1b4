package execctx

import (
	"context"
	"time"
)

// Context is the metadata bundle for a single task execution. Records are
// optional; a nil record contributes no entries to flattened output.
type Context struct {
	DagRun       *DagRun
	TaskInstance *TaskInstance
	Task         *Task
}

// DagRun describes the run a task instance belongs to.
type DagRun struct {
	RunID       string
	LogicalDate time.Time
}

// TaskInstance describes one attempt of a task within a run.
type TaskInstance struct {
	TaskID      string
	DagID       string
	TryNumber   int
	LogicalDate time.Time
}

// Task describes the static task definition.
type Task struct {
	Owner []string
	Email []string
}

// SupplementalProvider supplies process-wide extra context variables, merged
// into flattened output. Keys and values are expected to be strings; the
// flattener rejects anything else. The returned mapping is treated as an
// immutable snapshot for the duration of one flattening call.
type SupplementalProvider interface {
	ContextVars(ctx context.Context) map[any]any
}

// ProviderFunc adapts a plain function to the SupplementalProvider interface.
type ProviderFunc func(ctx context.Context) map[any]any

// ContextVars implements SupplementalProvider.
func (f ProviderFunc) ContextVars(ctx context.Context) map[any]any {
	return f(ctx)
}

// timestampLayout is the local naive ISO-8601 layout used for logical dates
// in flattened variables and the ts pool value.
const timestampLayout = "2006-01-02T15:04:05"

// Pool returns the candidate keyword values offered to a task callable:
// the records themselves plus the conventional date-derived macro values.
func (tc *Context) Pool() map[string]any {
	pool := make(map[string]any)
	if tc == nil {
		return pool
	}
	if tc.DagRun != nil {
		pool["dag_run"] = tc.DagRun
		pool["run_id"] = tc.DagRun.RunID
	}
	if tc.TaskInstance != nil {
		pool["task_instance"] = tc.TaskInstance
	}
	if tc.Task != nil {
		pool["task"] = tc.Task
	}
	if ld, ok := tc.logicalDate(); ok {
		pool["logical_date"] = ld
		pool["ds"] = ld.Format("2006-01-02")
		pool["ds_nodash"] = ld.Format("20060102")
		pool["ts"] = ld.Format(timestampLayout)
	}
	return pool
}

// logicalDate resolves the effective logical date, preferring the run's over
// the task instance's, mirroring the precedence used when flattening.
func (tc *Context) logicalDate() (time.Time, bool) {
	if tc.DagRun != nil && !tc.DagRun.LogicalDate.IsZero() {
		return tc.DagRun.LogicalDate, true
	}
	if tc.TaskInstance != nil && !tc.TaskInstance.LogicalDate.IsZero() {
		return tc.TaskInstance.LogicalDate, true
	}
	return time.Time{}, false
}
