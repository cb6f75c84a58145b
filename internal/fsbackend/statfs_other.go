//go:build !linux

package fsbackend

import "github.com/chaos/ninepd/proto"

func hostStatfs(path string) (proto.StatfsInfo, error) {
	return proto.StatfsInfo{Bsize: 4096, Namelen: 255}, nil
}
