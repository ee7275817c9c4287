package metadata

import (
	"sort"
	"strconv"
	"strings"
	"time"

	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
	"github.com/mrz1836/go-test-runner/internal/units"
)

// Property keys understood by the parser, as emitted by test case
// declarations
const (
	KeyDescription       = "descr"
	KeyHasCleanup        = "has.cleanup"
	KeyRequiredArchs     = "require.arch"
	KeyRequiredConfigs   = "require.config"
	KeyRequiredFiles     = "require.files"
	KeyRequiredPlatforms = "require.machine"
	KeyRequiredMemory    = "require.memory"
	KeyRequiredPrograms  = "require.progs"
	KeyRequiredUser      = "require.user"
	KeyTimeout           = "timeout"
)

// propertyParser converts one raw property value into typed builder state
type propertyParser func(b *Builder, value string) error

// knownProperties is the single source of truth for the recognized key
// set: membership drives unknown-key rejection and each entry carries
// the field-specific grammar.
var knownProperties = map[string]propertyParser{
	KeyDescription: func(b *Builder, value string) error {
		b.SetDescription(value)
		return nil
	},
	KeyHasCleanup: func(b *Builder, value string) error {
		switch value {
		case "true":
			b.SetHasCleanup(true)
		case "false":
			b.SetHasCleanup(false)
		default:
			return prerrors.NewBadValueError(KeyHasCleanup, value, "must be 'true' or 'false'")
		}
		return nil
	},
	KeyRequiredArchs: func(b *Builder, value string) error {
		for _, arch := range strings.Fields(value) {
			b.AddAllowedArchitecture(arch)
		}
		return nil
	},
	KeyRequiredConfigs: func(b *Builder, value string) error {
		for _, name := range strings.Fields(value) {
			b.AddRequiredConfig(name)
		}
		return nil
	},
	KeyRequiredFiles: func(b *Builder, value string) error {
		for _, path := range strings.Fields(value) {
			if !strings.HasPrefix(path, "/") {
				return prerrors.NewBadValueError(KeyRequiredFiles, path, "must be an absolute path")
			}
			b.AddRequiredFile(path)
		}
		return nil
	},
	KeyRequiredPlatforms: func(b *Builder, value string) error {
		for _, platform := range strings.Fields(value) {
			b.AddAllowedPlatform(platform)
		}
		return nil
	},
	KeyRequiredMemory: func(b *Builder, value string) error {
		amount, err := units.ParseBytes(value)
		if err != nil {
			return prerrors.NewBadValueError(KeyRequiredMemory, value, err.Error())
		}
		b.SetRequiredMemory(amount)
		return nil
	},
	KeyRequiredPrograms: func(b *Builder, value string) error {
		for _, path := range strings.Fields(value) {
			if !strings.HasPrefix(path, "/") && strings.Contains(path, "/") {
				return prerrors.NewBadValueError(KeyRequiredPrograms, path,
					"must be an absolute path or a bare name")
			}
			b.AddRequiredProgram(path)
		}
		return nil
	},
	KeyRequiredUser: func(b *Builder, value string) error {
		// Values other than root/unprivileged are carried verbatim and
		// ignored at check time.
		b.SetRequiredUser(value)
		return nil
	},
	KeyTimeout: func(b *Builder, value string) error {
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return prerrors.NewBadValueError(KeyTimeout, value, "must be an integer count of seconds")
		}
		if seconds <= 0 {
			return prerrors.NewBadValueError(KeyTimeout, value, "must be greater than 0")
		}
		b.SetTimeout(time.Duration(seconds) * time.Second)
		return nil
	},
}

// FromProperties builds Metadata from the flat property map emitted by a
// discovered test case. Any key that is neither in the known set nor
// prefixed with X- aborts the whole parse; no partial Metadata is ever
// produced.
func FromProperties(raw map[string]string) (*Metadata, error) {
	builder := NewBuilder()

	// Iterate in sorted order so that the reported key is deterministic
	// when several are unknown.
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if parse, ok := knownProperties[key]; ok {
			if err := parse(builder, raw[key]); err != nil {
				return nil, err
			}
			continue
		}
		if strings.HasPrefix(key, UserMetadataPrefix) {
			builder.AddUserMetadata(key, raw[key])
			continue
		}
		return nil, prerrors.NewUnknownPropertyError(key)
	}

	return builder.Build()
}

// AllProperties serializes the metadata back into a canonical property
// map: every non-default field appears under its source key, multi-value
// sets are sorted and space-joined, and all user metadata is included
// verbatim. Re-parsing the result reproduces an equivalent Metadata.
func (m *Metadata) AllProperties() map[string]string {
	props := make(map[string]string)

	if m.description != "" {
		props[KeyDescription] = m.description
	}
	if m.hasCleanup {
		props[KeyHasCleanup] = "true"
	}
	if m.timeout != DefaultTimeout {
		props[KeyTimeout] = strconv.Itoa(int(m.timeout / time.Second))
	}
	if len(m.allowedArchitectures) > 0 {
		props[KeyRequiredArchs] = strings.Join(m.allowedArchitectures, " ")
	}
	if len(m.allowedPlatforms) > 0 {
		props[KeyRequiredPlatforms] = strings.Join(m.allowedPlatforms, " ")
	}
	if len(m.requiredConfigs) > 0 {
		props[KeyRequiredConfigs] = strings.Join(m.requiredConfigs, " ")
	}
	if len(m.requiredFiles) > 0 {
		props[KeyRequiredFiles] = strings.Join(m.requiredFiles, " ")
	}
	if m.requiredMemory > 0 {
		props[KeyRequiredMemory] = m.requiredMemory.String()
	}
	if len(m.requiredPrograms) > 0 {
		props[KeyRequiredPrograms] = strings.Join(m.requiredPrograms, " ")
	}
	if m.requiredUser != "" {
		props[KeyRequiredUser] = m.requiredUser
	}
	for key, value := range m.userMetadata {
		props[key] = value
	}

	return props
}
