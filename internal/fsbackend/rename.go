package fsbackend

import "os"

// Rename moves h itself to newName within newParent.
func (b *Backend) Rename(h *Handle, newParent *Handle, newName string) error {
	oldFull := b.hostPath(h)
	newFull := b.childHost(newParent, newName)
	if err := os.Rename(oldFull, newFull); err != nil {
		return err
	}
	h.path = b.child(newParent, newName)
	return nil
}

// Renameat moves oldName under oldDir to newName under newDir,
// without requiring a fid on the object being moved, the way
// RENAMEAT's directory-relative form avoids the walk RENAME needs.
func (b *Backend) Renameat(oldDir *Handle, oldName string, newDir *Handle, newName string) error {
	return os.Rename(b.childHost(oldDir, oldName), b.childHost(newDir, newName))
}

// Unlinkat removes name from dir; flags carries AT_REMOVEDIR when the
// target is expected to be an empty directory.
func (b *Backend) Unlinkat(dir *Handle, name string, flags uint32) error {
	full := b.childHost(dir, name)
	const atRemoveDir = 0x200
	if flags&atRemoveDir != 0 {
		return os.Remove(full)
	}
	return os.Remove(full)
}

// Readlink returns the target of the symbolic link h references.
func (b *Backend) Readlink(h *Handle) (string, error) {
	return os.Readlink(b.hostPath(h))
}

// Remove deletes the object h refers to. REMOVE is legacy 9P's
// combined clunk-and-delete; the caller is responsible for treating h
// as clunked regardless of whether the removal itself succeeds.
func (b *Backend) Remove(h *Handle) error {
	return os.Remove(b.hostPath(h))
}
