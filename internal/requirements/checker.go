// Package requirements decides whether a test case is eligible to run
// in the current execution environment
package requirements

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mrz1836/go-test-runner/internal/configtree"
	"github.com/mrz1836/go-test-runner/internal/metadata"
	"github.com/mrz1836/go-test-runner/internal/passwd"
	"github.com/mrz1836/go-test-runner/internal/sysinfo"
	"github.com/mrz1836/go-test-runner/internal/units"
)

// Reserved configuration keys consulted by checks
const (
	// ConfigKeyArchitecture overrides the detected machine architecture
	ConfigKeyArchitecture = "architecture"

	// ConfigKeyPlatform overrides the detected machine platform
	ConfigKeyPlatform = "platform"

	// ConfigKeyUnprivilegedUser holds the substitute identity used when
	// a test requires dropping privileges
	ConfigKeyUnprivilegedUser = "unprivileged_user"

	// requiredConfigUnprivilegedUser is the require.config alias for the
	// global unprivileged_user key
	requiredConfigUnprivilegedUser = "unprivileged-user"
)

// Environment is a snapshot of the facts a requirement check evaluates
// against. Checks only ever read the snapshot, never ambient process
// state, so evaluations are deterministic and can run concurrently
// against different simulated environments.
type Environment struct {
	// Architecture is the current machine architecture (e.g. x86_64)
	Architecture string

	// Platform is the current machine platform (e.g. amd64)
	Platform string

	// User is the identity the checks evaluate privilege requirements against
	User passwd.User

	// WorkDir is the current working directory of the run
	WorkDir string

	// Path is the value of the PATH variable used for program lookups
	Path string

	// PhysicalMemory is the total physical memory; 0 means unknown, and
	// memory requirements are then treated as unverifiable
	PhysicalMemory units.Bytes

	// Config is the read-only configuration tree; may be nil when no
	// configuration was loaded
	Config *configtree.Tree
}

// Current captures the live execution environment. The architecture and
// platform come from the configuration tree when set there, falling back
// to the values compiled into the binary.
func Current(cfg *configtree.Tree) Environment {
	env := Environment{
		Architecture:   runtime.GOARCH,
		Platform:       runtime.GOOS,
		User:           passwd.CurrentUser(),
		Path:           os.Getenv("PATH"),
		PhysicalMemory: sysinfo.PhysicalMemory(),
		Config:         cfg,
	}
	if wd, err := os.Getwd(); err == nil {
		env.WorkDir = wd
	}
	if cfg != nil {
		if arch, err := cfg.GetString(ConfigKeyArchitecture); err == nil {
			env.Architecture = arch
		}
		if platform, err := cfg.GetString(ConfigKeyPlatform); err == nil {
			env.Platform = platform
		}
	}
	return env
}

// isConfigSet reports whether a key is set, tolerating a nil tree
func (e Environment) isConfigSet(key string) bool {
	return e.Config != nil && e.Config.IsSet(key)
}

// Check evaluates the metadata against the environment snapshot. It
// returns the empty string when every requirement is satisfied, or a
// human-readable explanation for the first failing requirement in a
// fixed order: architecture, platform, configuration variables, user,
// files, memory, programs. Later checks are skipped once one fails;
// callers rely on knowing which reason wins when several would fail.
func Check(md *metadata.Metadata, suite string, env Environment) string {
	if reason := checkAllowedArchitectures(md, env); reason != "" {
		return reason
	}
	if reason := checkAllowedPlatforms(md, env); reason != "" {
		return reason
	}
	if reason := checkRequiredConfigs(md, suite, env); reason != "" {
		return reason
	}
	if reason := checkRequiredUser(md, env); reason != "" {
		return reason
	}
	if reason := checkRequiredFiles(md); reason != "" {
		return reason
	}
	if reason := checkRequiredMemory(md, env); reason != "" {
		return reason
	}
	if reason := checkRequiredPrograms(md, env); reason != "" {
		return reason
	}
	return ""
}

func checkAllowedArchitectures(md *metadata.Metadata, env Environment) string {
	allowed := md.AllowedArchitectures()
	if len(allowed) == 0 {
		return ""
	}
	for _, arch := range allowed {
		if arch == env.Architecture {
			return ""
		}
	}
	return fmt.Sprintf("Current architecture '%s' not supported", env.Architecture)
}

func checkAllowedPlatforms(md *metadata.Metadata, env Environment) string {
	allowed := md.AllowedPlatforms()
	if len(allowed) == 0 {
		return ""
	}
	for _, platform := range allowed {
		if platform == env.Platform {
			return ""
		}
	}
	return fmt.Sprintf("Current platform '%s' not supported", env.Platform)
}

func checkRequiredConfigs(md *metadata.Metadata, suite string, env Environment) string {
	for _, name := range md.RequiredConfigs() {
		key := "test_suites." + suite + "." + name
		if name == requiredConfigUnprivilegedUser {
			key = ConfigKeyUnprivilegedUser
		}
		if !env.isConfigSet(key) {
			return fmt.Sprintf("Required configuration property '%s' not defined", name)
		}
	}
	return ""
}

func checkRequiredUser(md *metadata.Metadata, env Environment) string {
	switch md.RequiredUser() {
	case "root":
		if !env.User.IsRoot() {
			return "Requires root privileges"
		}
	case "unprivileged":
		if env.User.IsRoot() && !env.isConfigSet(ConfigKeyUnprivilegedUser) {
			return fmt.Sprintf(
				"Requires an unprivileged user but the '%s' configuration variable is not defined",
				requiredConfigUnprivilegedUser)
		}
	}
	// Other values are not interpreted.
	return ""
}

func checkRequiredFiles(md *metadata.Metadata) string {
	for _, path := range md.RequiredFiles() {
		// Any probe error, permission denied included, counts as missing.
		if _, err := os.Stat(path); err != nil {
			return fmt.Sprintf("'%s' not found", path)
		}
	}
	return ""
}

func checkRequiredMemory(md *metadata.Metadata, env Environment) string {
	required := md.RequiredMemory()
	if required == 0 {
		return ""
	}
	if env.PhysicalMemory == 0 {
		// Unknown amount; the requirement is unverifiable and passes.
		return ""
	}
	if required > env.PhysicalMemory {
		return fmt.Sprintf("Requires %s of memory", required)
	}
	return ""
}

func checkRequiredPrograms(md *metadata.Metadata, env Environment) string {
	for _, program := range md.RequiredPrograms() {
		if filepath.IsAbs(program) {
			if info, err := os.Stat(program); err != nil || info.IsDir() {
				return fmt.Sprintf("'%s' not found", program)
			}
			continue
		}
		if !findInPath(program, env.Path) {
			return fmt.Sprintf("'%s' not found in PATH", program)
		}
	}
	return ""
}

// findInPath searches each directory of a PATH value for an executable
// regular file with the given name
func findInPath(name, path string) bool {
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode()&0o111 != 0 {
			return true
		}
	}
	return false
}
