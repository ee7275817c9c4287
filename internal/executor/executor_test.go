package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/go-test-runner/internal/engine"
	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
	"github.com/mrz1836/go-test-runner/internal/metadata"
)

// recordingHooks captures output notifications
type recordingHooks struct {
	stdoutPath string
	stderrPath string
}

func (h *recordingHooks) GotStdout(path string) { h.stdoutPath = path }
func (h *recordingHooks) GotStderr(path string) { h.stderrPath = path }

// writeScript drops an executable shell script into dir and returns a
// Program pointing at it
func writeScript(t *testing.T, dir, body string) *engine.Program {
	t.Helper()
	path := filepath.Join(dir, "test-program")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return &engine.Program{Binary: "test-program", Root: dir, TestSuite: "suite"}
}

func mustMetadata(t *testing.T, props map[string]string) *metadata.Metadata {
	t.Helper()
	md, err := metadata.FromProperties(props)
	require.NoError(t, err)
	return md
}

func TestExecutor_Run_Passed(t *testing.T) {
	dir := t.TempDir()
	program := writeScript(t, dir, "exit 0\n")
	executor := New(WithWorkDir(dir))

	result := executor.Run(context.Background(), program, "case",
		mustMetadata(t, nil), nil, nil)

	assert.Equal(t, engine.NewResult(engine.Passed), result)
}

func TestExecutor_Run_Failed(t *testing.T) {
	dir := t.TempDir()
	program := writeScript(t, dir, "exit 3\n")
	executor := New(WithWorkDir(dir))

	result := executor.Run(context.Background(), program, "case",
		mustMetadata(t, nil), nil, nil)

	assert.Equal(t, engine.Failed, result.Type)
	assert.Contains(t, result.Reason, "exit status 3")
}

func TestExecutor_Run_MissingBinaryIsBroken(t *testing.T) {
	dir := t.TempDir()
	program := &engine.Program{Binary: "does-not-exist", Root: dir}
	executor := New(WithWorkDir(dir))

	result := executor.Run(context.Background(), program, "case",
		mustMetadata(t, nil), nil, nil)

	assert.Equal(t, engine.Broken, result.Type)
}

func TestExecutor_Run_Timeout(t *testing.T) {
	dir := t.TempDir()
	program := writeScript(t, dir, "sleep 10\n")
	executor := New(WithWorkDir(dir))

	start := time.Now()
	result := executor.Run(context.Background(), program, "case",
		mustMetadata(t, map[string]string{"timeout": "1"}), nil, nil)

	assert.Equal(t, engine.Broken, result.Type)
	assert.Contains(t, result.Reason, "timed out")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestExecutor_Run_HooksInvokedForOutput(t *testing.T) {
	dir := t.TempDir()
	program := writeScript(t, dir, "echo to stdout\necho to stderr >&2\nexit 0\n")
	executor := New(WithWorkDir(dir))
	hooks := &recordingHooks{}

	result := executor.Run(context.Background(), program, "case",
		mustMetadata(t, nil), nil, hooks)

	assert.Equal(t, engine.Passed, result.Type)

	require.NotEmpty(t, hooks.stdoutPath)
	data, err := os.ReadFile(hooks.stdoutPath)
	require.NoError(t, err)
	assert.Equal(t, "to stdout\n", string(data))

	require.NotEmpty(t, hooks.stderrPath)
	data, err = os.ReadFile(hooks.stderrPath)
	require.NoError(t, err)
	assert.Equal(t, "to stderr\n", string(data))
}

func TestExecutor_Run_HooksNotInvokedWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	program := writeScript(t, dir, "exit 0\n")
	executor := New(WithWorkDir(dir))
	hooks := &recordingHooks{}

	result := executor.Run(context.Background(), program, "case",
		mustMetadata(t, nil), nil, hooks)

	assert.Equal(t, engine.Passed, result.Type)
	assert.Empty(t, hooks.stdoutPath)
	assert.Empty(t, hooks.stderrPath)
}

func TestExecutor_List(t *testing.T) {
	dir := t.TempDir()
	program := writeScript(t, dir, `cat <<'EOF'
ident: first
descr: First case

ident: second
require.user: root
EOF
`)
	executor := New(WithWorkDir(dir))

	cases, err := executor.List(context.Background(), program)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "first", cases[0].Name())
	assert.Equal(t, "second", cases[1].Name())
}

func TestExecutor_List_FailureReportsProgram(t *testing.T) {
	dir := t.TempDir()
	program := writeScript(t, dir, "exit 1\n")
	executor := New(WithWorkDir(dir))

	cases, err := executor.List(context.Background(), program)
	require.Error(t, err)
	assert.Nil(t, cases)
	assert.ErrorIs(t, err, prerrors.ErrListFailed)
	assert.Contains(t, err.Error(), "test-program")
}
