// Package cred implements per-worker credential switching: adopting
// a request's attaching uid/gid (and supplementary groups) for the
// duration of a single filesystem operation, so host access checks
// are evaluated as that user rather than as the server process.
//
// This is grounded directly on diod's libdiod/diod_upool.c
// diod_switch_user(), which performs, in order: setgroups, setfsgid,
// setfsuid. The order matters — setfsgid/setfsuid only change the
// filesystem UID/GID bits used for access checks, not the real or
// effective IDs, so a process retains the privilege to switch again
// on the next request, but setgroups must happen first because it
// requires the process's real or effective uid to still be
// privileged.
package cred

import "errors"

// ErrUnsupported is returned by Switch on platforms where per-thread
// credential switching is not implemented. Deployments on such
// platforms must run the server under a single fixed identity (see
// Export.SquashUser) instead of granting per-request impersonation.
var ErrUnsupported = errors.New("cred: per-thread credential switching not supported on this platform")

// Restore undoes a Switch, returning the calling OS thread to its
// prior credentials.
type Restore func() error
