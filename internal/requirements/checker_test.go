package requirements

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/go-test-runner/internal/configtree"
	"github.com/mrz1836/go-test-runner/internal/metadata"
	"github.com/mrz1836/go-test-runner/internal/passwd"
	"github.com/mrz1836/go-test-runner/internal/units"
)

// mustMetadata builds metadata from raw properties for test setup
func mustMetadata(t *testing.T, props map[string]string) *metadata.Metadata {
	t.Helper()
	md, err := metadata.FromProperties(props)
	require.NoError(t, err)
	return md
}

func TestCheck_NoRequirements(t *testing.T) {
	md := mustMetadata(t, map[string]string{})

	assert.Empty(t, Check(md, "suite", Environment{}))
}

func TestCheck_Architectures(t *testing.T) {
	tests := []struct {
		name     string
		allowed  string
		current  string
		expected string
	}{
		{name: "one ok", allowed: "x86_64", current: "x86_64", expected: ""},
		{
			name:     "one fail",
			allowed:  "x86_64",
			current:  "i386",
			expected: "Current architecture 'i386' not supported",
		},
		{name: "many ok", allowed: "x86_64 i386 powerpc", current: "i386", expected: ""},
		{
			name:     "many fail",
			allowed:  "x86_64 i386 powerpc",
			current:  "arm",
			expected: "Current architecture 'arm' not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := mustMetadata(t, map[string]string{"require.arch": tt.allowed})
			env := Environment{Architecture: tt.current}
			assert.Equal(t, tt.expected, Check(md, "suite", env))
		})
	}
}

func TestCheck_Platforms(t *testing.T) {
	tests := []struct {
		name     string
		allowed  string
		current  string
		expected string
	}{
		{name: "one ok", allowed: "amd64", current: "amd64", expected: ""},
		{
			name:     "one fail",
			allowed:  "amd64",
			current:  "i386",
			expected: "Current platform 'i386' not supported",
		},
		{name: "many ok", allowed: "amd64 i386 macppc", current: "i386", expected: ""},
		{
			name:     "many fail",
			allowed:  "amd64 i386 macppc",
			current:  "shark",
			expected: "Current platform 'shark' not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := mustMetadata(t, map[string]string{"require.machine": tt.allowed})
			env := Environment{Platform: tt.current}
			assert.Equal(t, tt.expected, Check(md, "suite", env))
		})
	}
}

func TestCheck_ArchitectureReportedBeforePlatform(t *testing.T) {
	// Both requirements fail; the fixed evaluation order picks the
	// architecture explanation.
	md := mustMetadata(t, map[string]string{
		"require.arch":    "x86_64",
		"require.machine": "amd64",
	})
	env := Environment{Architecture: "arm", Platform: "shark"}

	assert.Equal(t, "Current architecture 'arm' not supported", Check(md, "suite", env))
}

func TestCheck_RequiredConfigs(t *testing.T) {
	tree := configtree.New()
	require.NoError(t, tree.SetString("test_suites.suite.aaa", "value1"))
	require.NoError(t, tree.SetString("test_suites.suite.foo", "value2"))
	require.NoError(t, tree.SetString("test_suites.suite.baz", "value3"))
	require.NoError(t, tree.SetString("test_suites.suite.zzz", "value4"))
	env := Environment{Config: tree}

	t.Run("all present", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.config": "foo baz"})
		assert.Empty(t, Check(md, "suite", env))
	})

	t.Run("first missing cited lexicographically", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.config": "foo bar baz"})
		assert.Equal(t, "Required configuration property 'bar' not defined",
			Check(md, "suite", env))
	})

	t.Run("other suite does not count", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.config": "foo"})
		assert.Equal(t, "Required configuration property 'foo' not defined",
			Check(md, "other", env))
	})

	t.Run("nil config tree", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.config": "foo"})
		assert.Equal(t, "Required configuration property 'foo' not defined",
			Check(md, "suite", Environment{}))
	})
}

func TestCheck_RequiredConfigs_UnprivilegedUserAlias(t *testing.T) {
	md := mustMetadata(t, map[string]string{"require.config": "unprivileged-user"})

	// The reserved name maps to the global unprivileged_user key, not a
	// suite-scoped variable.
	env := Environment{Config: configtree.New()}
	assert.Equal(t, "Required configuration property 'unprivileged-user' not defined",
		Check(md, "suite", env))

	tree := configtree.New()
	require.NoError(t, tree.SetUser("unprivileged_user", passwd.User{Name: "foo", UID: 1, GID: 2}))
	assert.Empty(t, Check(md, "suite", Environment{Config: tree}))
}

func TestCheck_RequiredUser_Root(t *testing.T) {
	md := mustMetadata(t, map[string]string{"require.user": "root"})

	assert.Empty(t, Check(md, "suite", Environment{User: passwd.User{UID: 0, GID: 1}}))
	assert.Equal(t, "Requires root privileges",
		Check(md, "suite", Environment{User: passwd.User{UID: 123, GID: 1}}))
}

func TestCheck_RequiredUser_Unprivileged(t *testing.T) {
	md := mustMetadata(t, map[string]string{"require.user": "unprivileged"})

	t.Run("non-root passes without config", func(t *testing.T) {
		env := Environment{User: passwd.User{UID: 123, GID: 1}}
		assert.Empty(t, Check(md, "suite", env))
	})

	t.Run("root without substitute identity fails", func(t *testing.T) {
		env := Environment{User: passwd.User{UID: 0, GID: 1}, Config: configtree.New()}
		reason := Check(md, "suite", env)
		assert.Contains(t, reason, "unprivileged")
		assert.Contains(t, reason, "unprivileged-user")
	})

	t.Run("root with substitute identity passes", func(t *testing.T) {
		tree := configtree.New()
		require.NoError(t, tree.SetUser("unprivileged_user", passwd.User{Name: "", UID: 123, GID: 1}))
		env := Environment{User: passwd.User{UID: 0, GID: 1}, Config: tree}
		assert.Empty(t, Check(md, "suite", env))
	})
}

func TestCheck_RequiredUser_UnrecognizedValueIgnored(t *testing.T) {
	md := mustMetadata(t, map[string]string{"require.user": "operator"})

	assert.Empty(t, Check(md, "suite", Environment{User: passwd.User{UID: 0}}))
	assert.Empty(t, Check(md, "suite", Environment{User: passwd.User{UID: 123}}))
}

func TestCheck_RequiredFiles(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "test-file")
	require.NoError(t, os.WriteFile(existing, []byte(""), 0o600))

	t.Run("present", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.files": existing})
		assert.Empty(t, Check(md, "suite", Environment{}))
	})

	t.Run("missing", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.files": "/non-existent/file"})
		assert.Equal(t, "'/non-existent/file' not found", Check(md, "suite", Environment{}))
	})

	t.Run("first missing cited lexicographically", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{
			"require.files": "/non-existent/zz /non-existent/aa " + existing,
		})
		assert.Equal(t, "'/non-existent/aa' not found", Check(md, "suite", Environment{}))
	})
}

func TestCheck_RequiredMemory(t *testing.T) {
	md := mustMetadata(t, map[string]string{"require.memory": "1m"})

	t.Run("enough memory", func(t *testing.T) {
		env := Environment{PhysicalMemory: 2 * units.MB}
		assert.Empty(t, Check(md, "suite", env))
	})

	t.Run("unknown amount is unverifiable and passes", func(t *testing.T) {
		env := Environment{PhysicalMemory: 0}
		assert.Empty(t, Check(md, "suite", env))
	})

	t.Run("not enough memory", func(t *testing.T) {
		huge := mustMetadata(t, map[string]string{"require.memory": "100t"})
		env := Environment{PhysicalMemory: 2 * units.MB}
		assert.Equal(t, "Requires 100.00T of memory", Check(huge, "suite", env))
	})
}

func TestCheck_RequiredPrograms(t *testing.T) {
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "foo"), []byte("#!/bin/sh\n"), 0o755))
	absolute := filepath.Join(binDir, "foo")

	t.Run("absolute and relative found", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.progs": absolute + " foo"})
		env := Environment{Path: binDir}
		assert.Empty(t, Check(md, "suite", env))
	})

	t.Run("absolute missing", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.progs": "/non-existent/program"})
		assert.Equal(t, "'/non-existent/program' not found", Check(md, "suite", Environment{}))
	})

	t.Run("relative missing from PATH", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.progs": "foo bar"})
		env := Environment{Path: binDir}
		assert.Equal(t, "'bar' not found in PATH", Check(md, "suite", env))
	})

	t.Run("non-executable file does not satisfy PATH search", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(binDir, "data"), []byte(""), 0o644))
		md := mustMetadata(t, map[string]string{"require.progs": "data"})
		env := Environment{Path: binDir}
		assert.Equal(t, "'data' not found in PATH", Check(md, "suite", env))
	})

	t.Run("empty PATH", func(t *testing.T) {
		md := mustMetadata(t, map[string]string{"require.progs": "foo"})
		assert.Equal(t, "'foo' not found in PATH", Check(md, "suite", Environment{}))
	})
}

func TestCurrent(t *testing.T) {
	tree := configtree.New()
	require.NoError(t, tree.SetString("architecture", "riscv64"))
	require.NoError(t, tree.SetString("platform", "bsd"))

	env := Current(tree)

	// Configured overrides win over the compiled-in values.
	assert.Equal(t, "riscv64", env.Architecture)
	assert.Equal(t, "bsd", env.Platform)
	assert.Equal(t, os.Getuid(), env.User.UID)
	assert.Equal(t, os.Getenv("PATH"), env.Path)
	assert.Same(t, tree, env.Config)
}

func TestCurrent_NilConfig(t *testing.T) {
	env := Current(nil)

	assert.NotEmpty(t, env.Architecture)
	assert.NotEmpty(t, env.Platform)
	assert.Nil(t, env.Config)
}
