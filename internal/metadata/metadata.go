// Package metadata provides the typed, validated model of a test case's
// declared requirements and attributes
package metadata

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
	"github.com/mrz1836/go-test-runner/internal/units"
)

// DefaultTimeout is the execution deadline applied when a test case does
// not declare one
const DefaultTimeout = 300 * time.Second

// UserMetadataPrefix marks free-form properties that are carried through
// verbatim without interpretation
const UserMetadataPrefix = "X-"

// Metadata describes one test case. It is immutable once built; all
// construction goes through a Builder, and accessors return copies of
// any internal collections.
type Metadata struct {
	description          string
	hasCleanup           bool
	timeout              time.Duration
	allowedArchitectures []string
	allowedPlatforms     []string
	requiredConfigs      []string
	requiredFiles        []string
	requiredMemory       units.Bytes
	requiredPrograms     []string
	requiredUser         string
	userMetadata         map[string]string
}

// Description returns the free-text description
func (m *Metadata) Description() string { return m.description }

// HasCleanup reports whether the test case declares a cleanup step
func (m *Metadata) HasCleanup() bool { return m.hasCleanup }

// Timeout returns the execution deadline for the test body
func (m *Metadata) Timeout() time.Duration { return m.timeout }

// AllowedArchitectures returns the sorted set of architectures the test
// case may run on; empty means unrestricted
func (m *Metadata) AllowedArchitectures() []string { return copyStrings(m.allowedArchitectures) }

// AllowedPlatforms returns the sorted set of platforms the test case may
// run on; empty means unrestricted
func (m *Metadata) AllowedPlatforms() []string { return copyStrings(m.allowedPlatforms) }

// RequiredConfigs returns the sorted set of configuration variables that
// must be defined for the test case to run
func (m *Metadata) RequiredConfigs() []string { return copyStrings(m.requiredConfigs) }

// RequiredFiles returns the sorted set of absolute paths that must exist
func (m *Metadata) RequiredFiles() []string { return copyStrings(m.requiredFiles) }

// RequiredMemory returns the minimum amount of physical memory, 0 when
// there is no requirement
func (m *Metadata) RequiredMemory() units.Bytes { return m.requiredMemory }

// RequiredPrograms returns the sorted set of programs that must be
// available, each either an absolute path or a bare name looked up in PATH
func (m *Metadata) RequiredPrograms() []string { return copyStrings(m.requiredPrograms) }

// RequiredUser returns the declared privilege requirement: "root",
// "unprivileged" or empty. Other values are carried but not interpreted.
func (m *Metadata) RequiredUser() string { return m.requiredUser }

// UserMetadata returns the free-form X- properties
func (m *Metadata) UserMetadata() map[string]string {
	out := make(map[string]string, len(m.userMetadata))
	for k, v := range m.userMetadata {
		out[k] = v
	}
	return out
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Builder accumulates typed metadata fields. Validation that spans the
// whole object happens atomically in Build; no Metadata is ever produced
// from a malformed accumulation.
type Builder struct {
	md Metadata
}

// NewBuilder creates a builder preloaded with the field defaults
func NewBuilder() *Builder {
	return &Builder{
		md: Metadata{
			timeout:      DefaultTimeout,
			userMetadata: make(map[string]string),
		},
	}
}

// SetDescription sets the free-text description
func (b *Builder) SetDescription(text string) *Builder {
	b.md.description = text
	return b
}

// SetHasCleanup records whether the test case has a cleanup step
func (b *Builder) SetHasCleanup(hasCleanup bool) *Builder {
	b.md.hasCleanup = hasCleanup
	return b
}

// SetTimeout sets the execution deadline
func (b *Builder) SetTimeout(timeout time.Duration) *Builder {
	b.md.timeout = timeout
	return b
}

// AddAllowedArchitecture adds one architecture to the allowed set
func (b *Builder) AddAllowedArchitecture(arch string) *Builder {
	b.md.allowedArchitectures = append(b.md.allowedArchitectures, arch)
	return b
}

// AddAllowedPlatform adds one platform to the allowed set
func (b *Builder) AddAllowedPlatform(platform string) *Builder {
	b.md.allowedPlatforms = append(b.md.allowedPlatforms, platform)
	return b
}

// AddRequiredConfig adds one configuration variable name to the required set
func (b *Builder) AddRequiredConfig(name string) *Builder {
	b.md.requiredConfigs = append(b.md.requiredConfigs, name)
	return b
}

// AddRequiredFile adds one path to the required files set
func (b *Builder) AddRequiredFile(path string) *Builder {
	b.md.requiredFiles = append(b.md.requiredFiles, path)
	return b
}

// SetRequiredMemory sets the minimum physical memory requirement
func (b *Builder) SetRequiredMemory(amount units.Bytes) *Builder {
	b.md.requiredMemory = amount
	return b
}

// AddRequiredProgram adds one program to the required set
func (b *Builder) AddRequiredProgram(path string) *Builder {
	b.md.requiredPrograms = append(b.md.requiredPrograms, path)
	return b
}

// SetRequiredUser sets the privilege requirement
func (b *Builder) SetRequiredUser(user string) *Builder {
	b.md.requiredUser = user
	return b
}

// AddUserMetadata adds one free-form X- property
func (b *Builder) AddUserMetadata(key, value string) *Builder {
	b.md.userMetadata[key] = value
	return b
}

// Build validates the accumulated fields and returns the immutable
// Metadata. The validation messages cover every malformed field at once
// in the manner of configuration validation, but the result is all or
// nothing.
func (b *Builder) Build() (*Metadata, error) {
	var problems []string

	if b.md.timeout <= 0 {
		problems = append(problems, "timeout must be greater than 0")
	}

	for _, path := range b.md.requiredFiles {
		if !filepath.IsAbs(path) {
			problems = append(problems, fmt.Sprintf("required file '%s' must be an absolute path", path))
		}
	}

	for _, path := range b.md.requiredPrograms {
		if !filepath.IsAbs(path) && strings.ContainsRune(path, filepath.Separator) {
			problems = append(problems, fmt.Sprintf(
				"required program '%s' must be an absolute path or a bare name", path))
		}
	}

	for key := range b.md.userMetadata {
		if !strings.HasPrefix(key, UserMetadataPrefix) {
			problems = append(problems, fmt.Sprintf(
				"user metadata key '%s' must start with '%s'", key, UserMetadataPrefix))
		}
	}

	if len(problems) > 0 {
		return nil, &prerrors.FormatError{
			Err:     prerrors.ErrBadValue,
			Message: strings.Join(problems, "; "),
		}
	}

	md := b.md
	md.allowedArchitectures = sortedSet(md.allowedArchitectures)
	md.allowedPlatforms = sortedSet(md.allowedPlatforms)
	md.requiredConfigs = sortedSet(md.requiredConfigs)
	md.requiredFiles = sortedSet(md.requiredFiles)
	md.requiredPrograms = sortedSet(md.requiredPrograms)

	userMetadata := make(map[string]string, len(md.userMetadata))
	for k, v := range md.userMetadata {
		userMetadata[k] = v
	}
	md.userMetadata = userMetadata

	return &md, nil
}

// sortedSet copies the slice, sorts it and collapses duplicates. Sets
// stored sorted make enumeration order, and therefore the first reported
// failure when several members fail, lexicographic and deterministic.
func sortedSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]string, len(in))
	copy(sorted, in)
	sort.Strings(sorted)

	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
