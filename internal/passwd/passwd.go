// Package passwd provides the user identity model for privilege checks
package passwd

import (
	"os"
	"os/user"
	"strconv"
)

// User represents a system user identity. It is used both for the live
// process identity and for the configured substitute identity used when
// dropping privileges.
type User struct {
	// Name is the login name; may be empty if unknown
	Name string

	// UID is the numeric user identifier
	UID int

	// GID is the numeric primary group identifier
	GID int
}

// IsRoot reports whether the user is the superuser
func (u User) IsRoot() bool {
	return u.UID == 0
}

// CurrentUser captures the identity of the running process. The result
// is meant to be stored in an environment snapshot and passed around
// explicitly; requirement checks never query the process identity on
// their own.
func CurrentUser() User {
	u := User{
		UID: os.Getuid(),
		GID: os.Getgid(),
	}
	if entry, err := user.Current(); err == nil {
		u.Name = entry.Username
	}
	return u
}

// LookupUser resolves a login name into a full user record
func LookupUser(name string) (User, error) {
	entry, err := user.Lookup(name)
	if err != nil {
		return User{}, err
	}

	uid, err := strconv.Atoi(entry.Uid)
	if err != nil {
		return User{}, err
	}
	gid, err := strconv.Atoi(entry.Gid)
	if err != nil {
		return User{}, err
	}

	return User{Name: entry.Username, UID: uid, GID: gid}, nil
}
