// Package fsbackend translates 9P2000.L operations onto a host
// directory tree via ordinary POSIX system calls. One Backend serves
// one export, named by its attach name (Tattach's Aname); one Handle
// exists per live fid.
//
// Follows diod's own POSIX-backed export for the operation-to-syscall
// mapping, and a gVisor p9.File implementation for the concrete
// Qid-from-stat and xattr-syscall idioms.
package fsbackend

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chaos/ninepd/internal/identity"
	"github.com/chaos/ninepd/internal/lockmgr"
	"github.com/chaos/ninepd/internal/qidgen"
	"github.com/chaos/ninepd/proto"
)

// Backend serves a single export rooted at Root.
type Backend struct {
	Root     string
	ReadOnly bool

	qids  *qidgen.Generator
	locks *lockmgr.Manager

	mu       sync.Mutex
	xattrSeq uint64
}

// NewBackend returns a Backend exporting the host directory at root.
func NewBackend(root string) *Backend {
	return &Backend{
		Root:  root,
		qids:  qidgen.New(),
		locks: lockmgr.New(),
	}
}

// Handle is the server-side state behind one fid: a path relative to
// the backend's root, plus whatever I/O state LOPEN/XATTRWALK leaves
// attached.
type Handle struct {
	// path is relative to Backend.Root and uses forward slashes;
	// "." denotes the export root itself.
	path string

	user *identity.User

	mu   sync.Mutex
	file *os.File // non-nil once LOPEN'd for plain file I/O

	dir       *os.File      // non-nil once LOPEN'd as a directory
	dirOff    int64         // READDIR resumption cookie: index into dirEntries already sent
	dirEntries []os.DirEntry // cached on first READDIR, consumed by offset

	xattr *xattrState

	procID   uint32
	clientID string
}

type xattrState struct {
	name    string
	create  bool
	size    uint64
	written []byte
}

func (b *Backend) hostPath(h *Handle) string {
	if h.path == "." {
		return b.Root
	}
	return filepath.Join(b.Root, h.path)
}

func (b *Backend) child(h *Handle, name string) string {
	if h.path == "." {
		return name
	}
	return h.path + "/" + name
}

// RootHandle returns the Handle for a freshly attached fid: the
// export's root directory, owned by user.
func (b *Backend) RootHandle(user *identity.User) (*Handle, error) {
	fi, err := os.Lstat(b.Root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("fsbackend: export root %s is not a directory", b.Root)
	}
	return &Handle{path: ".", user: user}, nil
}

// Qid computes the current Qid for h by re-stat'ing the host object.
func (b *Backend) Qid(h *Handle) (proto.Qid, error) {
	fi, err := os.Lstat(b.hostPath(h))
	if err != nil {
		return nil, err
	}
	st := statT(fi)
	return b.qids.Qid(st.ino, st.mode), nil
}
