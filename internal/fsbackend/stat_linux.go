//go:build linux

package fsbackend

import (
	"os"
	"syscall"
)

// hostStat is the subset of struct stat GETATTR/Qid derivation need,
// read directly off os.FileInfo.Sys() the way
// a gVisor p9.File implementation does (fi.Sys().(*syscall.Stat_t)).
type hostStat struct {
	ino, dev           uint64
	mode               uint32
	uid, gid           uint32
	nlink              uint64
	rdev               uint64
	size               int64
	blksize, blocks    int64
	atimeSec, atimeNsec int64
	mtimeSec, mtimeNsec int64
	ctimeSec, ctimeNsec int64
}

func statT(fi os.FileInfo) hostStat {
	st := fi.Sys().(*syscall.Stat_t)
	return hostStat{
		ino:       st.Ino,
		dev:       uint64(st.Dev),
		mode:      uint32(st.Mode),
		uid:       st.Uid,
		gid:       st.Gid,
		nlink:     uint64(st.Nlink),
		rdev:      uint64(st.Rdev),
		size:      st.Size,
		blksize:   int64(st.Blksize),
		blocks:    st.Blocks,
		atimeSec:  int64(st.Atim.Sec),
		atimeNsec: int64(st.Atim.Nsec),
		mtimeSec:  int64(st.Mtim.Sec),
		mtimeNsec: int64(st.Mtim.Nsec),
		ctimeSec:  int64(st.Ctim.Sec),
		ctimeNsec: int64(st.Ctim.Nsec),
	}
}
