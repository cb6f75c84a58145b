//go:build !linux

package fsbackend

import "os"

// hostStat degrades to whatever os.FileInfo can offer on platforms
// without syscall.Stat_t; device/inode/ownership fields are zero,
// which is only adequate for read-only, single-user testing off this
// platform (see internal/cred's equivalent restriction).
type hostStat struct {
	ino, dev            uint64
	mode                uint32
	uid, gid            uint32
	nlink               uint64
	rdev                uint64
	size                int64
	blksize, blocks     int64
	atimeSec, atimeNsec int64
	mtimeSec, mtimeNsec int64
	ctimeSec, ctimeNsec int64
}

func statT(fi os.FileInfo) hostStat {
	return hostStat{
		mode: uint32(fi.Mode().Perm()),
		size: fi.Size(),
		mtimeSec: fi.ModTime().Unix(),
		mtimeNsec: int64(fi.ModTime().Nanosecond()),
	}
}
