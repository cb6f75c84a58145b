package fsbackend

import (
	"os"
	"syscall"
	"time"

	"github.com/chaos/ninepd/proto"
)

// Getattr fills in a proto.Attr for h, using whatever the host
// filesystem can provide; request is the GETATTR mask the caller
// sent, but since a single stat(2) already yields every field cheaply
// this backend always returns the full set, matching diod's ufs.c.
func (b *Backend) Getattr(h *Handle, request uint64) (proto.Attr, error) {
	fi, err := os.Lstat(b.hostPath(h))
	if err != nil {
		return proto.Attr{}, err
	}
	st := statT(fi)
	return proto.Attr{
		Valid:       proto.GetattrAll,
		Qid:         b.qids.Qid(st.ino, st.mode),
		Mode:        fi.Mode().Perm() | typeBits(fi),
		UID:         st.uid,
		GID:         st.gid,
		Nlink:       st.nlink,
		Rdev:        st.rdev,
		Size:        uint64(st.size),
		Blksize:     uint64(st.blksize),
		Blocks:      uint64(st.blocks),
		AtimeSec:    uint64(st.atimeSec),
		AtimeNsec:   uint64(st.atimeNsec),
		MtimeSec:    uint64(st.mtimeSec),
		MtimeNsec:   uint64(st.mtimeNsec),
		CtimeSec:    uint64(st.ctimeSec),
		CtimeNsec:   uint64(st.ctimeNsec),
		Gen:         0,
		DataVersion: 0,
	}, nil
}

func typeBits(fi os.FileInfo) uint32 {
	switch {
	case fi.IsDir():
		return syscall.S_IFDIR
	case fi.Mode()&os.ModeSymlink != 0:
		return syscall.S_IFLNK
	case fi.Mode()&os.ModeSocket != 0:
		return syscall.S_IFSOCK
	case fi.Mode()&os.ModeNamedPipe != 0:
		return syscall.S_IFIFO
	case fi.Mode()&os.ModeDevice != 0:
		if fi.Mode()&os.ModeCharDevice != 0 {
			return syscall.S_IFCHR
		}
		return syscall.S_IFBLK
	default:
		return syscall.S_IFREG
	}
}

// Setattr applies whichever fields valid selects from a, following
// SETATTR's field order: mode, ownership, size, then timestamps, so
// that a combined request behaves the way sequential chmod/chown/
// truncate/utimes calls would.
func (b *Backend) Setattr(h *Handle, valid uint64, a proto.Attr) error {
	full := b.hostPath(h)

	if valid&proto.SetattrMode != 0 {
		if err := os.Chmod(full, os.FileMode(a.Mode&0777)); err != nil {
			return err
		}
	}
	if valid&(proto.SetattrUID|proto.SetattrGID) != 0 {
		uid, gid := -1, -1
		if valid&proto.SetattrUID != 0 {
			uid = int(a.UID)
		}
		if valid&proto.SetattrGID != 0 {
			gid = int(a.GID)
		}
		if err := os.Chown(full, uid, gid); err != nil {
			return err
		}
	}
	if valid&proto.SetattrSize != 0 {
		if err := os.Truncate(full, int64(a.Size)); err != nil {
			return err
		}
	}
	if valid&(proto.SetattrAtime|proto.SetattrMtime) != 0 {
		atime, mtime := time.Now(), time.Now()
		if valid&proto.SetattrAtimeSet != 0 {
			atime = time.Unix(int64(a.AtimeSec), int64(a.AtimeNsec))
		}
		if valid&proto.SetattrMtimeSet != 0 {
			mtime = time.Unix(int64(a.MtimeSec), int64(a.MtimeNsec))
		}
		if err := os.Chtimes(full, atime, mtime); err != nil {
			return err
		}
	}
	return nil
}

// Statfs reports filesystem-wide statistics for h's export.
func (b *Backend) Statfs(h *Handle) (proto.StatfsInfo, error) {
	return hostStatfs(b.hostPath(h))
}
