package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/go-test-runner/internal/config"
	"github.com/mrz1836/go-test-runner/internal/engine"
	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
	"github.com/mrz1836/go-test-runner/internal/executor"
	"github.com/mrz1836/go-test-runner/internal/output"
)

func TestLoadSuiteConfig(t *testing.T) {
	t.Cleanup(func() { configFile = "" })

	t.Run("NoFileRequested", func(t *testing.T) {
		configFile = ""

		tree, err := loadSuiteConfig(&config.Config{})
		require.NoError(t, err)
		assert.Nil(t, tree)
	})

	t.Run("MissingFile", func(t *testing.T) {
		configFile = filepath.Join(t.TempDir(), "absent.yaml")

		_, err := loadSuiteConfig(&config.Config{})
		require.Error(t, err)
		assert.ErrorIs(t, err, prerrors.ErrConfigFileNotFound)
	})

	t.Run("FlagOverridesFrameworkConfig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "suite.yaml")
		require.NoError(t, os.WriteFile(path, []byte("architecture: x86_64\n"), 0o600))
		configFile = path

		tree, err := loadSuiteConfig(&config.Config{ConfigFile: "ignored.yaml"})
		require.NoError(t, err)
		require.NotNil(t, tree)

		arch, err := tree.GetString("architecture")
		require.NoError(t, err)
		assert.Equal(t, "x86_64", arch)
	})

	t.Run("FrameworkConfigFallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "suite.yaml")
		require.NoError(t, os.WriteFile(path, []byte("platform: amd64\n"), 0o600))
		configFile = ""

		tree, err := loadSuiteConfig(&config.Config{ConfigFile: path})
		require.NoError(t, err)
		require.NotNil(t, tree)
	})
}

func TestDiscoverCases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample_test")
	require.NoError(t, os.WriteFile(path, []byte(`#!/bin/sh
cat <<'EOF'
ident: first

ident: second
EOF
`), 0o755))

	var out, errBuf bytes.Buffer
	formatter := output.New(output.Options{Out: &out, Err: &errBuf})

	cases := discoverCases(context.Background(), executor.New(), formatter,
		dir, []string{"sample_test"})

	require.Len(t, cases, 2)
	assert.Equal(t, "first", cases[0].Name())
	assert.Equal(t, "second", cases[1].Name())
	assert.Empty(t, errBuf.String())
}

func TestDiscoverCases_ListFailureBecomesBrokenCase(t *testing.T) {
	dir := t.TempDir()

	var out, errBuf bytes.Buffer
	formatter := output.New(output.Options{Out: &out, Err: &errBuf})

	cases := discoverCases(context.Background(), executor.New(), formatter,
		dir, []string{"does-not-exist"})

	require.Len(t, cases, 1)
	assert.Equal(t, engine.ListCaseName, cases[0].Name())
	assert.Contains(t, errBuf.String(), "does-not-exist")

	result := cases[0].Run(context.Background(), nil, nil, nil)
	assert.Equal(t, engine.Broken, result.Type)
}
