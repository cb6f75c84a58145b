//go:build linux

package cred

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Switch pins the calling goroutine to its OS thread and adopts uid,
// gid and the supplied supplementary groups as the thread's
// filesystem credentials, matching diod_switch_user's setgroups,
// setfsgid, setfsuid order. The daemon's own process identity (root,
// in the normal deployment) is the implicit baseline; Restore always
// returns the thread to that baseline rather than to whatever
// credentials happened to be active before Switch, mirroring
// diod_switch_user being invoked fresh for every request rather than
// nested.
func Switch(uid, gid uint32, groups []uint32) (Restore, error) {
	runtime.LockOSThread()

	if err := unix.Setgroups(toInts(groups)); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	if err := unix.Setfsgid(int(gid)); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	if err := unix.Setfsuid(int(uid)); err != nil {
		unix.Setfsgid(0)
		runtime.UnlockOSThread()
		return nil, err
	}

	restore := func() error {
		defer runtime.UnlockOSThread()
		if err := unix.Setfsuid(0); err != nil {
			return err
		}
		if err := unix.Setfsgid(0); err != nil {
			return err
		}
		return unix.Setgroups(nil)
	}
	return restore, nil
}

func toInts(groups []uint32) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = int(g)
	}
	return out
}
