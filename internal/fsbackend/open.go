package fsbackend

import (
	"os"
	"syscall"

	"github.com/chaos/ninepd/internal/identity"
	"github.com/chaos/ninepd/proto"
)

// Lopen prepares h for I/O using Linux open(2) flags, and returns its
// current Qid. iounit is always reported as 0, telling the client to
// fall back to msize-based I/O sizing, the same convention
// a gVisor p9.File implementation notes as coming from diod.
func (b *Backend) Lopen(h *Handle, flags uint32) (proto.Qid, uint32, error) {
	fi, err := os.Lstat(b.hostPath(h))
	if err != nil {
		return nil, 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if fi.IsDir() {
		f, err := os.Open(b.hostPath(h))
		if err != nil {
			return nil, 0, err
		}
		h.dir = f
		h.dirOff = 0
	} else {
		f, err := os.OpenFile(b.hostPath(h), translateOpenFlags(flags), 0)
		if err != nil {
			return nil, 0, err
		}
		h.file = f
	}

	st := statT(fi)
	return b.qids.Qid(st.ino, st.mode), 0, nil
}

func translateOpenFlags(flags uint32) int {
	var out int
	switch flags & 3 {
	case 0:
		out = os.O_RDONLY
	case 1:
		out = os.O_WRONLY
	case 2:
		out = os.O_RDWR
	}
	if flags&proto.LOCreate != 0 {
		out |= os.O_CREATE
	}
	if flags&proto.LOExcl != 0 {
		out |= os.O_EXCL
	}
	if flags&proto.LOTrunc != 0 {
		out |= os.O_TRUNC
	}
	if flags&proto.LOAppend != 0 {
		out |= os.O_APPEND
	}
	return out
}

// Lcreate creates a regular file name under h (a directory fid) and
// opens it in one step, rebinding h onto the new file the way
// 9P2000.L's LCREATE (unlike legacy Tcreate) requires.
func (b *Backend) Lcreate(h *Handle, name string, flags uint32, mode uint32, owner *identity.User) (proto.Qid, uint32, error) {
	full := b.childHost(h, name)
	f, err := os.OpenFile(full, translateOpenFlags(flags)|os.O_CREATE, os.FileMode(mode&0777))
	if err != nil {
		return nil, 0, err
	}
	if owner != nil {
		_ = os.Chown(full, int(owner.UID), int(owner.GID))
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	h.path = b.child(h, name)
	h.mu.Lock()
	h.file = f
	h.mu.Unlock()
	st := statT(fi)
	return b.qids.Qid(st.ino, st.mode), 0, nil
}

func (b *Backend) childHost(h *Handle, name string) string {
	return b.Root + "/" + b.child(h, name)
}

// Mkdir creates a new directory name under h.
func (b *Backend) Mkdir(h *Handle, name string, mode uint32, owner *identity.User) (proto.Qid, error) {
	full := b.childHost(h, name)
	if err := os.Mkdir(full, os.FileMode(mode&0777)); err != nil {
		return nil, err
	}
	if owner != nil {
		_ = os.Chown(full, int(owner.UID), int(owner.GID))
	}
	fi, err := os.Lstat(full)
	if err != nil {
		return nil, err
	}
	st := statT(fi)
	return b.qids.Qid(st.ino, st.mode), nil
}

// Symlink creates a symbolic link name under h pointing at target.
func (b *Backend) Symlink(h *Handle, name, target string, owner *identity.User) (proto.Qid, error) {
	full := b.childHost(h, name)
	if err := os.Symlink(target, full); err != nil {
		return nil, err
	}
	if owner != nil {
		_ = syscall.Lchown(full, int(owner.UID), int(owner.GID))
	}
	fi, err := os.Lstat(full)
	if err != nil {
		return nil, err
	}
	st := statT(fi)
	return b.qids.Qid(st.ino, st.mode), nil
}

// Mknod creates a device node, FIFO, or socket under h.
func (b *Backend) Mknod(h *Handle, name string, mode uint32, major, minor uint32, owner *identity.User) (proto.Qid, error) {
	full := b.childHost(h, name)
	dev := int(unixMakedev(major, minor))
	if err := syscall.Mknod(full, mode, dev); err != nil {
		return nil, err
	}
	if owner != nil {
		_ = syscall.Lchown(full, int(owner.UID), int(owner.GID))
	}
	fi, err := os.Lstat(full)
	if err != nil {
		return nil, err
	}
	st := statT(fi)
	return b.qids.Qid(st.ino, st.mode), nil
}

// Link creates a hard link name under dfid pointing at the object
// referenced by h.
func (b *Backend) Link(dfid *Handle, h *Handle, name string) error {
	return os.Link(b.hostPath(h), b.childHost(dfid, name))
}

func unixMakedev(major, minor uint32) uint64 {
	return uint64(minor&0xff) | uint64(major&0xfff)<<8 |
		uint64(minor&0xfffff00)<<12 | uint64(major&0xfffff000)<<32
}
