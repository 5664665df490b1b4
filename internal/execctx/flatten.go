package execctx

import (
	"context"
	"strconv"
	"strings"

	"github.com/vk/taskflowgo/internal/ctxlog"
)

const (
	// ctxVarPrefix marks context-derived variables in their canonical form.
	ctxVarPrefix = "airflow.ctx."
	// envVarPrefix replaces ctxVarPrefix when variables are rendered for a
	// subprocess environment.
	envVarPrefix = "AIRFLOW_CTX_"
)

// Flattener converts execution contexts into flat string variables, merged
// with supplemental variables from the injected provider.
type Flattener struct {
	provider SupplementalProvider
}

// NewFlattener returns a Flattener backed by the given provider. A nil
// provider is valid and contributes no supplemental variables.
func NewFlattener(provider SupplementalProvider) *Flattener {
	return &Flattener{provider: provider}
}

// Vars flattens a task execution context into string key/value pairs. With
// envFormat the keys are rendered as environment variable names
// (AIRFLOW_CTX_DAG_ID) instead of the canonical dotted form
// (airflow.ctx.dag_id). Supplemental variables from the provider are merged
// in last and win on key collision. A supplemental entry with a non-string
// key fails with *KeyTypeError, a non-string value with *ValueTypeError;
// the key check runs first for any given entry.
func (f *Flattener) Vars(ctx context.Context, tc *Context, envFormat bool) (map[string]string, error) {
	logger := ctxlog.FromContext(ctx)
	vars := make(map[string]string)

	if tc != nil {
		if dr := tc.DagRun; dr != nil {
			if dr.RunID != "" {
				vars[ctxVarPrefix+"dag_run_id"] = dr.RunID
			}
			if !dr.LogicalDate.IsZero() {
				vars[ctxVarPrefix+"logical_date"] = dr.LogicalDate.Format(timestampLayout)
			}
		}
		if ti := tc.TaskInstance; ti != nil {
			if ti.TaskID != "" {
				vars[ctxVarPrefix+"task_id"] = ti.TaskID
			}
			if ti.DagID != "" {
				vars[ctxVarPrefix+"dag_id"] = ti.DagID
			}
			vars[ctxVarPrefix+"try_number"] = strconv.Itoa(ti.TryNumber)
			if _, ok := vars[ctxVarPrefix+"logical_date"]; !ok && !ti.LogicalDate.IsZero() {
				vars[ctxVarPrefix+"logical_date"] = ti.LogicalDate.Format(timestampLayout)
			}
		}
		if task := tc.Task; task != nil {
			if len(task.Owner) > 0 {
				vars[ctxVarPrefix+"dag_owner"] = strings.Join(task.Owner, ",")
			}
			if len(task.Email) > 0 {
				vars[ctxVarPrefix+"dag_email"] = strings.Join(task.Email, ",")
			}
		}
	}

	if f.provider != nil {
		for key, value := range f.provider.ContextVars(ctx) {
			name, ok := key.(string)
			if !ok {
				return nil, &KeyTypeError{Key: key}
			}
			str, ok := value.(string)
			if !ok {
				return nil, &ValueTypeError{Key: name, Value: value}
			}
			vars[ctxVarPrefix+name] = str
		}
	}

	if envFormat {
		envVars := make(map[string]string, len(vars))
		for key, value := range vars {
			name := strings.TrimPrefix(key, ctxVarPrefix)
			envVars[envVarPrefix+strings.ToUpper(name)] = value
		}
		vars = envVars
	}

	logger.Debug("Flattened execution context.", "count", len(vars), "env_format", envFormat)
	return vars, nil
}
