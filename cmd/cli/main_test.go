package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// A settings file with a syntax error causes a panic inside app.NewApp().
	invalidHCL := `
		context_vars {
			airflow_cluster = "cluster-a"
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "settings.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-settings", filePath, "-dag-id", "etl"}
	out := &bytes.Buffer{}

	runErr := run(out, args)

	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to load settings"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_PrintsEnvVars(t *testing.T) {
	t.Parallel()

	settingsHCL := `
context_vars {
  airflow_cluster = "cluster-a"
}
`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "settings.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(settingsHCL), 0600))

	args := []string{
		"-settings", filePath,
		"-dag-id", "etl",
		"-task-id", "extract",
		"-run-id", "manual__1",
		"-logical-date", "2017-05-21T00:00:00",
		"-owner", "owner1,owner2",
	}
	out := &bytes.Buffer{}

	require.NoError(t, run(out, args))

	output := out.String()
	require.Contains(t, output, "AIRFLOW_CTX_DAG_ID=etl\n")
	require.Contains(t, output, "AIRFLOW_CTX_TASK_ID=extract\n")
	require.Contains(t, output, "AIRFLOW_CTX_DAG_RUN_ID=manual__1\n")
	require.Contains(t, output, "AIRFLOW_CTX_LOGICAL_DATE=2017-05-21T00:00:00\n")
	require.Contains(t, output, "AIRFLOW_CTX_DAG_OWNER=owner1,owner2\n")
	require.Contains(t, output, "AIRFLOW_CTX_AIRFLOW_CLUSTER=cluster-a\n")
}
