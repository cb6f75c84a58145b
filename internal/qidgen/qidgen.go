// Package qidgen derives 9P2000.L Qids from host filesystem objects.
// The path component is the object's inode number, the same
// mapping a raw 9P2000.L server over a POSIX filesystem uses (see
// a gVisor p9.File implementation, which builds its Qid.Path
// directly from syscall.Stat_t.Ino). The version component is not
// available from a single stat(2) call; this package tracks a
// per-inode counter, bumped whenever a write-like operation is
// observed, adapted from aqwari.net/net/styx's own internal qid pool
// used for synthetic (non-fs-backed) trees.
package qidgen

import (
	"sync"
	"sync/atomic"

	"github.com/chaos/ninepd/proto"
)

// Generator tracks per-inode version counters for one export.
type Generator struct {
	mu       sync.Mutex
	versions map[uint64]*uint32
}

// New returns an empty Generator.
func New() *Generator {
	return &Generator{versions: make(map[uint64]*uint32)}
}

// Qid builds a Qid for the object identified by ino (its device-local
// inode number) and mode. mode is a raw POSIX mode_t; only its type
// bits are consulted. An export is assumed to live on a single
// filesystem, so the inode number alone is a stable path, the same
// assumption a gVisor p9.File implementation makes.
func (g *Generator) Qid(ino uint64, mode uint32) proto.Qid {
	qtype := qidType(mode)
	v := atomic.LoadUint32(g.counter(ino))
	buf := make([]byte, proto.QidLen)
	q, _, _ := proto.NewQid(buf, qtype, v, ino)
	return q
}

// Bump increments the version counter for the object at ino. Call
// this after any operation that changes a file's content or metadata
// in a way v9fs-style clients use to invalidate cached attributes
// (WRITE, SETATTR, truncate-on-open).
func (g *Generator) Bump(ino uint64) {
	atomic.AddUint32(g.counter(ino), 1)
}

func (g *Generator) counter(path uint64) *uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.versions[path]
	if !ok {
		var zero uint32
		c = &zero
		g.versions[path] = c
	}
	return c
}

// Forget drops the version counter for ino once no fid references
// the object anymore, bounding memory use across a long-lived
// connection.
func (g *Generator) Forget(ino uint64) {
	g.mu.Lock()
	delete(g.versions, ino)
	g.mu.Unlock()
}

func qidType(mode uint32) uint8 {
	const sIFMT = 0170000
	const sIFDIR = 0040000
	const sIFLNK = 0120000
	switch mode & sIFMT {
	case sIFDIR:
		return proto.QTDIR
	case sIFLNK:
		return proto.QTSYMLNK
	default:
		return proto.QTFILE
	}
}
