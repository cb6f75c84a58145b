// Package identity resolves the uid/gid/supplementary-group record a
// connection's ATTACH establishes. It deliberately caches nothing
// beyond the single resolved User returned to an individual ATTACH
// call, treating user identity as stateless between calls, matching
// diod's own no-cache design (libdiod/diod_upool.c's header comment:
// users are resolved fresh at attach and released when the last fid
// referencing them is gone).
package identity

import (
	"fmt"
	"os/user"
	"strconv"
)

// User is the resolved identity attached to a connection.
type User struct {
	UID      uint32
	GID      uint32
	Name     string
	Groups   []uint32 // supplementary groups, primary GID excluded
}

// Lookup resolves uname to a User. uname may be a numeric uid (as a
// decimal string) or a login name; this mirrors 9P2000.L's uname
// field, which 9p2000.L clients populate with either form depending
// on whether n_uname carries a valid numeric uid already.
func Lookup(uname string) (*User, error) {
	var u *user.User
	var err error
	if _, numErr := strconv.Atoi(uname); numErr == nil {
		u, err = user.LookupId(uname)
	} else {
		u, err = user.Lookup(uname)
	}
	if err != nil {
		return nil, err
	}
	return fromOSUser(u)
}

// LookupUID resolves a numeric uid directly, the path taken when a
// 9P2000.L client supplies n_uname instead of (or in addition to) a
// textual uname.
func LookupUID(uid uint32) (*User, error) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return nil, err
	}
	return fromOSUser(u)
}

func fromOSUser(u *user.User) (*User, error) {
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("identity: malformed uid %q: %w", u.Uid, err)
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("identity: malformed gid %q: %w", u.Gid, err)
	}

	gidStrs, err := u.GroupIds()
	if err != nil {
		return nil, err
	}
	groups := make([]uint32, 0, len(gidStrs))
	for _, s := range gidStrs {
		g, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			continue
		}
		// diod_upool.c's _getsg excludes the primary gid from the
		// supplementary list it hands to setgroups.
		if uint32(g) == uint32(gid) {
			continue
		}
		groups = append(groups, uint32(g))
	}

	return &User{
		UID:    uint32(uid),
		GID:    uint32(gid),
		Name:   u.Username,
		Groups: groups,
	}, nil
}
