package ninepd

import (
	"bufio"
	"bytes"
	"net"
	"sync"

	"github.com/chaos/ninepd/internal/cred"
	"github.com/chaos/ninepd/internal/ctlfs"
	"github.com/chaos/ninepd/internal/fidtable"
	"github.com/chaos/ninepd/internal/fsbackend"
	"github.com/chaos/ninepd/internal/identity"
	"github.com/chaos/ninepd/internal/safemap"
	"github.com/chaos/ninepd/internal/tagtable"
	"github.com/chaos/ninepd/proto"
)

// fid is the server-side state a client's fid number designates once
// it has been walked or attached onto a file. A fid is either backed
// by a host directory tree (backend/handle set) or by the synthetic
// control namespace (ctl set, backend nil); the two are mutually
// exclusive.
type fid struct {
	backend *fsbackend.Backend
	aname   string
	handle  *fsbackend.Handle
	user    *identity.User

	ctl     *ctlfs.Counters
	ctlFile string // "" denotes the ctl export's root directory
}

// authState tracks one TAUTH handshake in progress on an afid: WRITEs
// accumulate into blob until the matching ATTACH decodes it. nuname is
// the uid the client claimed when it opened the afid (TAUTH's
// n_uname), checked against both the decoded uid and the ATTACH's own
// n_uname before the attach is admitted.
type authState struct {
	nuname uint32
	aname  string
	blob   []byte
}

type conn struct {
	srv *Server
	rwc net.Conn

	dec *proto.Decoder
	enc *proto.Encoder

	fids  fidtable.Table[fid]
	auths safemap.Map[uint32, *authState]
	tags  *tagtable.Table

	pool *workerPool

	versioned bool
	msize     uint32

	mu        sync.Mutex
	closed    bool
	authed    bool
	authedUID uint32
}

// authOK reports whether uid may ATTACH without a fresh auth
// handshake, because this connection has already authenticated as uid
// itself, or uid is 0 (root is always admitted once any user on the
// connection has authenticated, matching spec.md §4.I).
func (c *conn) authOK(uid uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authed && (uid == 0 || uid == c.authedUID)
}

// recordAuth marks the connection as authenticated for uid, admitting
// later non-auth ATTACHes for that uid (or uid 0) without a fresh
// TAUTH/TATTACH handshake.
func (c *conn) recordAuth(uid uint32) {
	c.mu.Lock()
	c.authed = true
	c.authedUID = uid
	c.mu.Unlock()
}

func newConn(srv *Server, rwc net.Conn) *conn {
	c := &conn{
		srv:   srv,
		rwc:   rwc,
		dec:   proto.NewDecoderSize(rwc, int(srv.cfg.msize())),
		enc:   proto.NewEncoder(bufio.NewWriterSize(rwc, int(srv.cfg.msize()))),
		tags:  tagtable.New(),
		msize: srv.cfg.msize(),
	}
	c.pool = newWorkerPool(c, srv.cfg.workers())
	return c
}

func (c *conn) logf(format string, v ...interface{}) {
	c.srv.logf(format, v...)
}

func (c *conn) serve() {
	defer recoverPanic(c.srv.cfg.logger(), c.rwc.RemoteAddr())
	defer c.close()

	for c.dec.Next() {
		m := proto.Clone(c.dec.Msg())

		if bad, ok := m.(proto.BadMessage); ok {
			c.logf("ninepd: malformed message, closing connection: %v", bad.Err)
			break
		}

		if tv, ok := m.(proto.Tversion); ok {
			c.handleVersion(tv)
			continue
		}

		if tf, ok := m.(proto.Tflush); ok {
			c.pool.spawnUnbounded(func() { c.handleFlush(tf) })
			continue
		}

		if !c.versioned {
			c.enc.WriteRlerror(m.Tag(), errno(errProtoOrder))
			c.enc.Flush()
			continue
		}

		c.pool.submit(m)
	}
	c.pool.wait()
}

func (c *conn) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.fids.Range(func(_ uint32, f *fid) bool {
		if f.backend != nil && f.handle != nil {
			f.backend.Clunk(f.handle)
		}
		return true
	})
	c.srv.ctl.ConnClosed()
	return c.rwc.Close()
}

// resetSession discards everything a VERSION renegotiation must wipe
// out: every open fid (clunking its backend handle the same way
// connection teardown does), any auth handshake in progress, and the
// connection's authenticated-uid record. Callers must have already
// drained the worker pool so no goroutine is still reading the tables
// being reset out from under it.
func (c *conn) resetSession() {
	c.fids.Range(func(_ uint32, f *fid) bool {
		if f.backend != nil && f.handle != nil {
			f.backend.Clunk(f.handle)
		}
		return true
	})
	c.fids = fidtable.Table[fid]{}
	c.auths = safemap.Map[uint32, *authState]{}
	c.tags = tagtable.New()

	c.mu.Lock()
	c.versioned = false
	c.authed = false
	c.authedUID = 0
	c.mu.Unlock()
}

func (c *conn) handleVersion(t proto.Tversion) {
	// A VERSION message is a session reset at any point in the
	// connection's lifetime, not just its opening handshake: drain every
	// request already dispatched, then discard every fid, auth
	// handshake, and the authenticated-uid record before negotiating
	// the new session.
	c.pool.wait()
	c.resetSession()

	version := t.Version()
	max := t.MaxSize()
	if max > c.msize {
		max = c.msize
	}
	if max < 256 || !bytes.HasPrefix(version, []byte("9P2000.L")) {
		c.msize = max
		c.dec.MaxSize = int64(max)
		c.enc.WriteRversion(proto.NoTag, max, []byte("unknown"))
		c.enc.Flush()
		return
	}
	c.msize = max
	c.dec.MaxSize = int64(max)
	c.versioned = true
	c.enc.WriteRversion(proto.NoTag, max, []byte("9P2000.L"))
	c.enc.Flush()
}

func (c *conn) handleFlush(t proto.Tflush) {
	c.tags.Flush(t.Oldtag())
	c.enc.WriteRflush(t.Tag())
	c.enc.Flush()
}

// withUser runs fn with the OS thread's filesystem credentials
// switched to u, restoring them afterward. On platforms or
// configurations where switching is unsupported, fn simply runs under
// the daemon's own identity, matching a single-user "squash" export.
func withUser(u *identity.User, fn func() error) error {
	if u == nil {
		return fn()
	}
	restore, err := cred.Switch(u.UID, u.GID, u.Groups)
	if err != nil {
		return fn()
	}
	defer restore()
	return fn()
}
