// Package configtree provides the hierarchical configuration store used
// by requirement checks
package configtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/go-test-runner/internal/passwd"
)

// Common errors
var (
	// ErrKeyNotFound is returned when a getter addresses a key that has
	// no value
	ErrKeyNotFound = errors.New("configuration key not defined")

	// ErrTypeMismatch is returned when a typed getter addresses a leaf
	// holding a different value kind
	ErrTypeMismatch = errors.New("configuration value has unexpected type")

	// ErrInvalidKey is returned when a key is malformed or conflicts with
	// the existing tree shape
	ErrInvalidKey = errors.New("invalid configuration key")
)

// KeyError decorates a tree error with the dotted key that caused it
type KeyError struct {
	// Base error
	Err error

	// Key is the dotted path being accessed
	Key string
}

// Error implements the error interface
func (e *KeyError) Error() string {
	return fmt.Sprintf("%s: '%s'", e.Err.Error(), e.Key)
}

// Unwrap implements the error unwrapping interface
func (e *KeyError) Unwrap() error {
	return e.Err
}

// ValueKind identifies the variant stored in a leaf
type ValueKind int

const (
	// ValueString is a plain string leaf
	ValueString ValueKind = iota

	// ValueUser is a structured user-record leaf
	ValueUser
)

// value is the closed tagged leaf type; exactly one variant is active
type value struct {
	kind ValueKind
	str  string
	user passwd.User
}

// node is either an inner node (children != nil) or a leaf (leaf != nil)
type node struct {
	children map[string]*node
	leaf     *value
}

// Tree is a hierarchical, dotted-path, typed key/value store. It is not
// safe for concurrent mutation; callers must stop writing before
// requirement checks start reading.
type Tree struct {
	root *node
}

// New creates an empty configuration tree
func New() *Tree {
	return &Tree{root: &node{children: make(map[string]*node)}}
}

// splitKey validates and splits a dotted path
func splitKey(key string) ([]string, error) {
	if key == "" {
		return nil, &KeyError{Err: ErrInvalidKey, Key: key}
	}
	parts := strings.Split(key, ".")
	for _, part := range parts {
		if part == "" {
			return nil, &KeyError{Err: ErrInvalidKey, Key: key}
		}
	}
	return parts, nil
}

// lookup walks the tree and returns the leaf at key, or nil if the path
// does not lead to a leaf
func (t *Tree) lookup(key string) *value {
	parts, err := splitKey(key)
	if err != nil {
		return nil
	}

	current := t.root
	for _, part := range parts {
		if current.children == nil {
			return nil
		}
		next, ok := current.children[part]
		if !ok {
			return nil
		}
		current = next
	}
	return current.leaf
}

// set places a leaf value at key, materializing inner nodes as needed
func (t *Tree) set(key string, v value) error {
	parts, err := splitKey(key)
	if err != nil {
		return err
	}

	current := t.root
	for _, part := range parts[:len(parts)-1] {
		next, ok := current.children[part]
		if !ok {
			next = &node{children: make(map[string]*node)}
			current.children[part] = next
		}
		if next.children == nil {
			// An existing leaf cannot become an inner node.
			return &KeyError{Err: ErrInvalidKey, Key: key}
		}
		current = next
	}

	last := parts[len(parts)-1]
	if existing, ok := current.children[last]; ok && existing.children != nil {
		// An existing inner node cannot become a leaf.
		return &KeyError{Err: ErrInvalidKey, Key: key}
	}
	current.children[last] = &node{leaf: &v}
	return nil
}

// IsSet reports whether key holds a value, of any kind
func (t *Tree) IsSet(key string) bool {
	return t.lookup(key) != nil
}

// SetString stores a string leaf at key
func (t *Tree) SetString(key, s string) error {
	return t.set(key, value{kind: ValueString, str: s})
}

// SetUser stores a user-record leaf at key
func (t *Tree) SetUser(key string, u passwd.User) error {
	return t.set(key, value{kind: ValueUser, user: u})
}

// GetString returns the string stored at key. It fails with
// ErrKeyNotFound if the key is unset and with ErrTypeMismatch if the
// leaf holds a different variant.
func (t *Tree) GetString(key string) (string, error) {
	leaf := t.lookup(key)
	if leaf == nil {
		return "", &KeyError{Err: ErrKeyNotFound, Key: key}
	}
	if leaf.kind != ValueString {
		return "", &KeyError{Err: ErrTypeMismatch, Key: key}
	}
	return leaf.str, nil
}

// GetUser returns the user record stored at key
func (t *Tree) GetUser(key string) (passwd.User, error) {
	leaf := t.lookup(key)
	if leaf == nil {
		return passwd.User{}, &KeyError{Err: ErrKeyNotFound, Key: key}
	}
	if leaf.kind != ValueUser {
		return passwd.User{}, &KeyError{Err: ErrTypeMismatch, Key: key}
	}
	return leaf.user, nil
}
