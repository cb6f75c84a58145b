package ninepd

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// errProtoOrder is reported when a client sends any message before a
// successful Tversion negotiation, which 9P2000.L requires as the
// first exchange on a connection.
var errProtoOrder = syscall.EIO

// errno maps a Go error from a host syscall (or os/io wrapper around
// one) onto the numeric value an Rlerror reports. Errors that carry no
// syscall.Errno are reported as EIO, matching diod's fallback when a
// library call fails for a reason it can't translate more precisely.
func errno(err error) uint32 {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint32(errno)
	}
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, fs.ErrNotExist):
		return uint32(syscall.ENOENT)
	case errors.Is(err, os.ErrExist), errors.Is(err, fs.ErrExist):
		return uint32(syscall.EEXIST)
	case errors.Is(err, os.ErrPermission), errors.Is(err, fs.ErrPermission):
		return uint32(syscall.EACCES)
	case errors.Is(err, os.ErrClosed):
		return uint32(syscall.EBADF)
	}
	return uint32(syscall.EIO)
}
