//go:build linux

package fsbackend

import (
	"syscall"

	"github.com/chaos/ninepd/proto"
)

func hostStatfs(path string) (proto.StatfsInfo, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return proto.StatfsInfo{}, err
	}
	return proto.StatfsInfo{
		Type:    uint32(st.Type),
		Bsize:   uint32(st.Bsize),
		Blocks:  st.Blocks,
		Bfree:   st.Bfree,
		Bavail:  st.Bavail,
		Files:   st.Files,
		Ffree:   st.Ffree,
		Fsid:    uint64(uint32(st.Fsid.X__val[0]))<<32 | uint64(uint32(st.Fsid.X__val[1])),
		Namelen: uint32(st.Namelen),
	}, nil
}
