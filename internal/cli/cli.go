package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/taskflowgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("taskflowgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
taskflowgo - render a task execution context as environment variables.

Usage:
  taskflowgo [options] [COMMAND [ARGS...]]

Without a COMMAND the AIRFLOW_CTX_* variables are printed one per line.
With a COMMAND the variables are injected into its environment.

Options:
`)
		flagSet.PrintDefaults()
	}

	dagIDFlag := flagSet.String("dag-id", "", "DAG identifier of the task instance.")
	taskIDFlag := flagSet.String("task-id", "", "Task identifier of the task instance.")
	runIDFlag := flagSet.String("run-id", "", "Run identifier of the DAG run.")
	logicalDateFlag := flagSet.String("logical-date", "", "Logical date, e.g. 2017-05-21T00:00:00.")
	tryNumberFlag := flagSet.Int("try-number", 1, "Attempt number of the task instance.")
	ownerFlag := flagSet.String("owner", "", "Comma-separated task owners.")
	emailFlag := flagSet.String("email", "", "Comma-separated task notification emails.")
	settingsFlag := flagSet.String("settings", "", "Path to an HCL settings file with a context_vars block.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		DagID:        *dagIDFlag,
		TaskID:       *taskIDFlag,
		RunID:        *runIDFlag,
		LogicalDate:  *logicalDateFlag,
		TryNumber:    *tryNumberFlag,
		Owner:        splitList(*ownerFlag),
		Email:        splitList(*emailFlag),
		SettingsPath: *settingsFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		Command:      flagSet.Args(),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
