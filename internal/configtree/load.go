package configtree

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/go-test-runner/internal/passwd"
)

// userSpec is the YAML shape of a configured substitute identity. The
// record may also be given as a bare login name, which is resolved
// against the system user database.
type userSpec struct {
	Name string `yaml:"name"`
	UID  int    `yaml:"uid"`
	GID  int    `yaml:"gid"`
}

// LoadFile reads a suite configuration file into a tree.
//
// The file is a YAML document whose nesting mirrors the dotted key
// space: reserved top-level keys (architecture, platform,
// unprivileged_user) plus per-suite variables under
// test_suites.<suite>.<name>. Scalar leaves are stored as strings;
// unprivileged_user is stored as a structured user record.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return Parse(data)
}

// Parse builds a tree from YAML configuration data
func Parse(data []byte) (*Tree, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	tree := New()
	if err := loadMap(tree, "", raw); err != nil {
		return nil, err
	}
	return tree, nil
}

// loadMap walks one level of the parsed YAML document
func loadMap(tree *Tree, prefix string, raw map[string]interface{}) error {
	for key, val := range raw {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if fullKey == "unprivileged_user" {
			user, err := parseUser(val)
			if err != nil {
				return fmt.Errorf("invalid unprivileged_user: %w", err)
			}
			if err := tree.SetUser(fullKey, user); err != nil {
				return err
			}
			continue
		}

		switch typed := val.(type) {
		case map[string]interface{}:
			if err := loadMap(tree, fullKey, typed); err != nil {
				return err
			}
		case nil:
			// Empty section; nothing to store.
		default:
			if err := tree.SetString(fullKey, fmt.Sprintf("%v", typed)); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseUser accepts either a login name or a {name, uid, gid} mapping
func parseUser(val interface{}) (passwd.User, error) {
	switch typed := val.(type) {
	case string:
		return passwd.LookupUser(typed)
	case map[string]interface{}:
		data, err := yaml.Marshal(typed)
		if err != nil {
			return passwd.User{}, err
		}
		var spec userSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return passwd.User{}, err
		}
		return passwd.User{Name: spec.Name, UID: spec.UID, GID: spec.GID}, nil
	default:
		return passwd.User{}, fmt.Errorf("expected a user name or a name/uid/gid mapping, got %T", val)
	}
}
