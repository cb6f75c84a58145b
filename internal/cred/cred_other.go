//go:build !linux

package cred

// Switch is unavailable on non-Linux platforms; per-thread fsuid/fsgid
// switching is a Linux-specific facility. Deployments here must use a
// single squash identity for every request.
func Switch(uid, gid uint32, groups []uint32) (Restore, error) {
	return nil, ErrUnsupported
}
