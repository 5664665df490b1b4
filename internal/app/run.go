package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/vk/taskflowgo/internal/ctxlog"
	"github.com/vk/taskflowgo/internal/execctx"
)

// Run executes the main application logic: render the configured task
// context as environment variables, then either print them or inject them
// into the configured subprocess.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	tc := a.taskContext()
	vars, err := a.flattener.Vars(ctx, tc, true)
	if err != nil {
		return fmt.Errorf("failed to flatten task context: %w", err)
	}
	a.logger.Debug("Task context flattened.", "count", len(vars))

	if len(a.config.Command) == 0 {
		keys := make([]string, 0, len(vars))
		for key := range vars {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(a.outW, "%s=%s\n", key, vars[key])
		}
		a.logger.Debug("App.Run method finished.")
		return nil
	}

	cmd := exec.CommandContext(ctx, a.config.Command[0], a.config.Command[1:]...)
	cmd.Stdout = a.outW
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	for key, value := range vars {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	a.logger.Info("Launching task command.", "command", a.config.Command[0], "env_vars", len(vars))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("task command failed: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// taskContext assembles the execution context from the configured metadata.
func (a *App) taskContext() *execctx.Context {
	tc := &execctx.Context{}

	var logicalDate time.Time
	if a.config.LogicalDate != "" {
		// Validated by NewConfig.
		logicalDate, _ = time.Parse(logicalDateLayout, a.config.LogicalDate)
	}

	if a.config.RunID != "" || !logicalDate.IsZero() {
		tc.DagRun = &execctx.DagRun{RunID: a.config.RunID, LogicalDate: logicalDate}
	}
	if a.config.TaskID != "" || a.config.DagID != "" {
		tc.TaskInstance = &execctx.TaskInstance{
			TaskID:      a.config.TaskID,
			DagID:       a.config.DagID,
			TryNumber:   a.config.TryNumber,
			LogicalDate: logicalDate,
		}
	}
	if len(a.config.Owner) > 0 || len(a.config.Email) > 0 {
		tc.Task = &execctx.Task{Owner: a.config.Owner, Email: a.config.Email}
	}
	return tc
}
