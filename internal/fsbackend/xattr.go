package fsbackend

import (
	"golang.org/x/sys/unix"
)

// Xattrwalk walks a new fid, derived from h but independent of it,
// onto one extended attribute (named) or, when name is empty, the
// newline-separated attribute-name listing — the same dual meaning
// a gVisor p9.File implementation gives XattrWalk. It returns the new
// Handle and the attribute's size, for sizing the Rxattrwalk reply.
func (b *Backend) Xattrwalk(h *Handle, name string) (*Handle, uint64, error) {
	full := b.hostPath(h)
	var size int
	var err error
	if name == "" {
		size, err = unix.Llistxattr(full, nil)
	} else {
		size, err = unix.Lgetxattr(full, name, nil)
	}
	if err != nil {
		return nil, 0, err
	}
	nh := &Handle{path: h.path, user: h.user, xattr: &xattrState{name: name}}
	return nh, uint64(size), nil
}

// XattrRead returns the attribute (or listing) h.xattr was walked to.
func (b *Backend) XattrRead(h *Handle) ([]byte, error) {
	h.mu.Lock()
	x := h.xattr
	h.mu.Unlock()
	if x == nil {
		return nil, errNotWalked
	}
	full := b.hostPath(h)
	if x.name == "" {
		size, err := unix.Llistxattr(full, nil)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size)
		if size > 0 {
			if _, err := unix.Llistxattr(full, buf); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	size, err := unix.Lgetxattr(full, x.name, nil)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if size > 0 {
		if _, err := unix.Lgetxattr(full, x.name, buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Xattrcreate prepares h to receive a new extended attribute's value
// over subsequent WRITEs, committed on CLUNK.
func (b *Backend) Xattrcreate(h *Handle, name string, size uint64, flags uint32) error {
	h.mu.Lock()
	h.xattr = &xattrState{name: name, create: true, size: size}
	h.mu.Unlock()
	return nil
}

// XattrWrite appends data to a pending XATTRCREATE's buffered value.
func (b *Backend) XattrWrite(h *Handle, data []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.xattr == nil || !h.xattr.create {
		return 0, errNotWalked
	}
	h.xattr.written = append(h.xattr.written, data...)
	return len(data), nil
}

// IsXattrCreate reports whether h is a fid mid-XATTRCREATE, so the
// caller routes TWRITE into XattrWrite instead of a plain file write.
func (b *Backend) IsXattrCreate(h *Handle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.xattr != nil && h.xattr.create
}

// IsXattrRead reports whether h is a fid produced by XATTRWALK, so
// the caller routes TREAD into XattrRead instead of a plain file read.
func (b *Backend) IsXattrRead(h *Handle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.xattr != nil && !h.xattr.create
}

// xattrCommit flushes a fid's pending XATTRCREATE to the host
// filesystem; called from Clunk with the xattrState it already
// detached from h.
func (b *Backend) xattrCommit(h *Handle, x *xattrState) error {
	if x == nil || !x.create {
		return nil
	}
	if uint64(len(x.written)) != x.size {
		return errXattrSizeMismatch
	}
	full := b.hostPath(h)
	return unix.Lsetxattr(full, x.name, x.written, 0)
}
