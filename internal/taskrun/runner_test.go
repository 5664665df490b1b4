package taskrun

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflowgo/internal/binder"
	"github.com/vk/taskflowgo/internal/execctx"
	"github.com/vk/taskflowgo/internal/notify"
	"github.com/vk/taskflowgo/internal/settings"
)

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	events []notify.Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.Event) error {
	n.events = append(n.events, event)
	return n.err
}

func testContext(t *testing.T) *execctx.Context {
	t.Helper()
	logicalDate, err := time.Parse("2006-01-02T15:04:05", "2020-01-01T00:00:00")
	require.NoError(t, err)
	return &execctx.Context{
		DagRun:       &execctx.DagRun{RunID: "manual__1", LogicalDate: logicalDate},
		TaskInstance: &execctx.TaskInstance{TaskID: "extract", DagID: "etl", TryNumber: 1, LogicalDate: logicalDate},
	}
}

func TestRunnerRunBindsPool(t *testing.T) {
	registry := NewRegistry()
	registry.Register(binder.MustNew("extract",
		binder.Signature{{Name: "ds_nodash", Kind: binder.Positional}},
		func(dsNodash any) (any, error) { return dsNodash, nil },
	))

	recorder := &recordingNotifier{}
	runner := NewRunner(registry, execctx.NewFlattener(nil), recorder)

	result, err := runner.Run(context.Background(), "extract", testContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "20200101", result)

	require.Len(t, recorder.events, 2)
	assert.Equal(t, "task_started", recorder.events[0].Name)
	assert.Equal(t, "etl", recorder.events[0].Vars["AIRFLOW_CTX_DAG_ID"])
	assert.Equal(t, "task_finished", recorder.events[1].Name)
}

func TestRunnerRunVarKwargsSeesWholePool(t *testing.T) {
	registry := NewRegistry()
	registry.Register(binder.MustNew("inspect",
		binder.Signature{{Name: "kwargs", Kind: binder.VarKwargs}},
		func(kwargs map[string]any) (any, error) { return kwargs, nil },
	))

	runner := NewRunner(registry, execctx.NewFlattener(nil))
	result, err := runner.Run(context.Background(), "inspect", testContext(t), nil)
	require.NoError(t, err)

	kwargs, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2020-01-01", kwargs["ds"])
	assert.Equal(t, "manual__1", kwargs["run_id"])
}

func TestRunnerRunOpArgsConflict(t *testing.T) {
	registry := NewRegistry()
	registry.Register(binder.MustNew("extract",
		binder.Signature{{Name: "ds_nodash", Kind: binder.Positional}},
		func(dsNodash any) (any, error) { return dsNodash, nil },
	))

	recorder := &recordingNotifier{}
	runner := NewRunner(registry, execctx.NewFlattener(nil), recorder)

	// ds_nodash arrives positionally AND through the context pool.
	_, err := runner.Run(context.Background(), "extract", testContext(t), []any{"20200101"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ds_nodash")
	assert.Equal(t, "task_failed", recorder.events[len(recorder.events)-1].Name)
}

func TestRunnerRunUnknownCallable(t *testing.T) {
	runner := NewRunner(NewRegistry(), execctx.NewFlattener(nil))
	_, err := runner.Run(context.Background(), "missing", testContext(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRunnerNotifierFailureIsNotFatal(t *testing.T) {
	registry := NewRegistry()
	registry.Register(binder.MustNew("noop",
		binder.Signature{},
		func() (any, error) { return "ok", nil },
	))

	runner := NewRunner(registry, execctx.NewFlattener(nil), &recordingNotifier{err: assert.AnError})
	result, err := runner.Run(context.Background(), "noop", testContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestRunnerEnvVarsIncludeSupplemental(t *testing.T) {
	flattener := execctx.NewFlattener(settings.Static(map[any]any{"airflow_cluster": "cluster-a"}))
	runner := NewRunner(NewRegistry(), flattener)

	vars, err := runner.EnvVars(context.Background(), testContext(t))
	require.NoError(t, err)
	assert.Equal(t, "cluster-a", vars["AIRFLOW_CTX_AIRFLOW_CLUSTER"])
	assert.Equal(t, "manual__1", vars["AIRFLOW_CTX_DAG_RUN_ID"])
}

func TestRegistryDuplicatePanics(t *testing.T) {
	registry := NewRegistry()
	c := binder.MustNew("dup", binder.Signature{}, func() (any, error) { return nil, nil })
	registry.Register(c)
	assert.Panics(t, func() { registry.Register(c) })
}
