package ninepd

import (
	"syscall"

	"github.com/chaos/ninepd/internal/ctlfs"
	"github.com/chaos/ninepd/internal/fsbackend"
	"github.com/chaos/ninepd/internal/identity"
	"github.com/chaos/ninepd/internal/lockmgr"
	"github.com/chaos/ninepd/proto"
)

// ctlAname is the reserved attach name exposing the read-only control
// namespace internal/ctlfs renders; it is always available and is
// never looked up among cfg.Exports.
const ctlAname = "ctl"

// ctlFileIno assigns each ctlfs file a stable synthetic inode number,
// 1-based in ctlfs.Files order, so repeated walks to the same file
// always report the same Qid path.
func ctlFileIno(name string) uint64 {
	for i, n := range ctlfs.Files {
		if n == name {
			return uint64(i + 1)
		}
	}
	return 0
}

// dispatch runs one request to completion and writes its reply. It
// registers the request's tag with the connection's tag table for the
// duration, so a concurrent TFLUSH can find and wait on it.
func (c *conn) dispatch(m proto.Msg) {
	tag := m.Tag()
	if _, ok := c.tags.Start(tag, nil); !ok {
		c.writeErrRaw(tag, syscall.EINVAL)
		return
	}
	defer c.tags.Finish(tag)

	switch v := m.(type) {
	case proto.Tauth:
		c.doAuth(v)
	case proto.Tattach:
		c.doAttach(v)
	case proto.Twalk:
		c.doWalk(v)
	case proto.Tstatfs:
		c.doStatfs(v)
	case proto.Tlopen:
		c.doLopen(v)
	case proto.Tlcreate:
		c.doLcreate(v)
	case proto.Tsymlink:
		c.doSymlink(v)
	case proto.Tmknod:
		c.doMknod(v)
	case proto.Trename:
		c.doRename(v)
	case proto.Treadlink:
		c.doReadlink(v)
	case proto.Tgetattr:
		c.doGetattr(v)
	case proto.Tsetattr:
		c.doSetattr(v)
	case proto.Txattrwalk:
		c.doXattrwalk(v)
	case proto.Txattrcreate:
		c.doXattrcreate(v)
	case proto.Treaddir:
		c.doReaddir(v)
	case proto.Tfsync:
		c.doFsync(v)
	case proto.Tlock:
		c.doLock(v)
	case proto.Tgetlock:
		c.doGetlock(v)
	case proto.Tlink:
		c.doLink(v)
	case proto.Tmkdir:
		c.doMkdir(v)
	case proto.Trenameat:
		c.doRenameat(v)
	case proto.Tunlinkat:
		c.doUnlinkat(v)
	case proto.Tread:
		c.doRead(v)
	case proto.Twrite:
		c.doWrite(v)
	case proto.Tclunk:
		c.doClunk(v)
	case proto.Tremove:
		c.doRemove(v)
	default:
		c.writeErr(tag, syscall.ENOSYS)
	}
}

// writeErr writes Rlerror for tag, unless tag's request has since been
// targeted by a TFLUSH — a flushed request's original response, error
// or not, is suppressed; only RFLUSH answers it.
func (c *conn) writeErr(tag uint16, err error) {
	if c.tags.Cancelled(tag) {
		return
	}
	c.writeErrRaw(tag, err)
}

// writeErrRaw always writes Rlerror, bypassing flush suppression. Used
// for failures that happen outside of a tagtable-registered request,
// such as a duplicate tag rejected before Start.
func (c *conn) writeErrRaw(tag uint16, err error) {
	c.enc.WriteRlerror(tag, errno(err))
	c.enc.Flush()
}

// reply runs fn, which writes a successful response for tag, unless
// tag's request has since been targeted by a TFLUSH.
func (c *conn) reply(tag uint16, fn func()) {
	if c.tags.Cancelled(tag) {
		return
	}
	fn()
	c.enc.Flush()
}

func (c *conn) doAuth(t proto.Tauth) {
	if c.srv.cfg.Auth == nil {
		c.writeErr(t.Tag(), syscall.EINVAL)
		return
	}
	afid := t.Afid()
	st := &authState{nuname: t.NUname(), aname: string(t.Aname())}
	if !c.auths.Add(afid, st) {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	qid, _, err := proto.NewQid(make([]byte, proto.QidLen), proto.QTAUTH, 0, uint64(afid))
	if err != nil {
		c.writeErr(t.Tag(), syscall.EIO)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRauth(t.Tag(), qid)
	})
}

func (c *conn) doAttach(t proto.Tattach) {
	aname := string(t.Aname())
	uname := string(t.Uname())

	if aname == ctlAname {
		c.doAttachCtl(t)
		return
	}

	export, ok := c.srv.cfg.export(aname)
	if !ok {
		c.writeErr(t.Tag(), syscall.ENOENT)
		return
	}

	if c.srv.cfg.Auth != nil {
		afid := t.Afid()
		attachUID := t.NUname()
		if afid == proto.NoFid {
			if !c.authOK(attachUID) {
				c.writeErr(t.Tag(), syscall.EPERM)
				return
			}
		} else {
			st, ok := c.auths.Get(afid)
			if !ok {
				c.writeErr(t.Tag(), syscall.EINVAL)
				return
			}
			decodedUID, err := c.srv.cfg.Auth(st.blob)
			if err != nil || decodedUID != st.nuname || decodedUID != attachUID {
				c.writeErr(t.Tag(), syscall.EPERM)
				return
			}
			c.recordAuth(decodedUID)
		}
	}

	user, err := resolveUser(export, uname, t.NUname())
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}

	backend := c.srv.backends[aname]
	var handle *fsbackend.Handle
	var qid proto.Qid
	err = withUser(user, func() error {
		var ierr error
		handle, ierr = backend.RootHandle(user)
		if ierr != nil {
			return ierr
		}
		qid, ierr = backend.Qid(handle)
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}

	if !c.fids.Add(t.Fid(), &fid{backend: backend, aname: aname, handle: handle, user: user}) {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRattach(t.Tag(), qid)
	})
}

// doAttachCtl attaches fid onto the root of the control namespace.
// It ignores the configured Auth/Exports entirely: the ctl export is
// a built-in diagnostic surface, not one of the host trees a client
// asks to mount.
func (c *conn) doAttachCtl(t proto.Tattach) {
	qid, _, err := proto.NewQid(make([]byte, proto.QidLen), proto.QTDIR, 0, 0)
	if err != nil {
		c.writeErr(t.Tag(), syscall.EIO)
		return
	}
	if !c.fids.Add(t.Fid(), &fid{ctl: c.srv.ctl}) {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRattach(t.Tag(), qid)
	})
}

// resolveUser resolves the identity an ATTACH runs as. A configured
// SquashUser always wins. Otherwise a textual uname is preferred, the
// common case; a client that left uname empty and relies on n_uname
// instead (the NONUNAME convention) falls back to resolving the
// numeric uid directly.
func resolveUser(export Export, uname string, nuname uint32) (*identity.User, error) {
	if export.SquashUser != "" {
		return identity.Lookup(export.SquashUser)
	}
	if uname == "" && nuname != proto.NoUname {
		return identity.LookupUID(nuname)
	}
	return identity.Lookup(uname)
}


func (c *conn) doWalk(t proto.Twalk) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.doWalkCtl(t, f)
		return
	}
	wnames := t.Wname()
	names := make([]string, len(wnames))
	for i, n := range wnames {
		names[i] = string(n)
	}

	var qids []proto.Qid
	var nh *fsbackend.Handle
	var werr error
	withUser(f.user, func() error {
		qids, nh, werr = f.backend.Walk(f.handle, names)
		return nil
	})

	if len(names) > 0 && len(qids) == 0 {
		c.writeErr(t.Tag(), werr)
		return
	}

	if len(qids) == len(names) && werr == nil {
		nf := &fid{backend: f.backend, aname: f.aname, handle: nh, user: f.user}
		if !c.fids.Add(t.Newfid(), nf) {
			c.writeErr(t.Tag(), syscall.EBADF)
			return
		}
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRwalk(t.Tag(), qids)
	})
}

// doWalkCtl walks within the flat, depth-one ctl namespace: zero
// elements clones the fid, one element resolves a file by name, and
// anything else fails the walk the same way a missing path component
// would against a real backend.
func (c *conn) doWalkCtl(t proto.Twalk, f *fid) {
	wnames := t.Wname()
	if len(wnames) == 0 {
		nf := &fid{ctl: f.ctl, ctlFile: f.ctlFile}
		if !c.fids.Add(t.Newfid(), nf) {
			c.writeErr(t.Tag(), syscall.EBADF)
			return
		}
		c.reply(t.Tag(), func() {
			c.enc.WriteRwalk(t.Tag(), nil)
		})
		return
	}
	if len(wnames) > 1 || f.ctlFile != "" {
		c.writeErr(t.Tag(), syscall.ENOENT)
		return
	}
	name := string(wnames[0])
	if ctlFileIno(name) == 0 {
		c.writeErr(t.Tag(), syscall.ENOENT)
		return
	}
	qid, _, err := proto.NewQid(make([]byte, proto.QidLen), proto.QTFILE, 0, ctlFileIno(name))
	if err != nil {
		c.writeErr(t.Tag(), syscall.EIO)
		return
	}
	if !c.fids.Add(t.Newfid(), &fid{ctl: f.ctl, ctlFile: name}) {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRwalk(t.Tag(), []proto.Qid{qid})
	})
}

func (c *conn) doStatfs(t proto.Tstatfs) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.ENOSYS)
		return
	}
	info, err := f.backend.Statfs(f.handle)
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRstatfsInfo(t.Tag(), info)
	})
}

func wantsWrite(flags uint32) bool {
	if flags&3 != 0 {
		return true
	}
	return flags&(proto.LOCreate|proto.LOTrunc) != 0
}

func (c *conn) doLopen(t proto.Tlopen) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.doLopenCtl(t, f)
		return
	}
	if f.backend.ReadOnly && wantsWrite(t.Flags()) {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	var qid proto.Qid
	var iounit uint32
	err := withUser(f.user, func() error {
		var ierr error
		qid, iounit, ierr = f.backend.Lopen(f.handle, t.Flags())
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRlopen(t.Tag(), qid, iounit)
	})
}

// doLopenCtl opens a ctl fid for reading. There is no descriptor to
// hold: ReadFile renders the counters fresh on every TREAD.
func (c *conn) doLopenCtl(t proto.Tlopen, f *fid) {
	if wantsWrite(t.Flags()) {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	qtype := uint8(proto.QTFILE)
	var ino uint64
	if f.ctlFile == "" {
		qtype = proto.QTDIR
	} else {
		ino = ctlFileIno(f.ctlFile)
	}
	qid, _, err := proto.NewQid(make([]byte, proto.QidLen), qtype, 0, ino)
	if err != nil {
		c.writeErr(t.Tag(), syscall.EIO)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRlopen(t.Tag(), qid, 0)
	})
}

func (c *conn) doLcreate(t proto.Tlcreate) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if f.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	name := string(t.Name())
	var qid proto.Qid
	var iounit uint32
	err := withUser(f.user, func() error {
		var ierr error
		qid, iounit, ierr = f.backend.Lcreate(f.handle, name, t.Flags(), t.Mode(), f.user)
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRlcreate(t.Tag(), qid, iounit)
	})
}

func (c *conn) doSymlink(t proto.Tsymlink) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if f.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	name, target := string(t.Name()), string(t.Target())
	var qid proto.Qid
	err := withUser(f.user, func() error {
		var ierr error
		qid, ierr = f.backend.Symlink(f.handle, name, target, f.user)
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRsymlink(t.Tag(), qid)
	})
}

func (c *conn) doMknod(t proto.Tmknod) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if f.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	name := string(t.Name())
	var qid proto.Qid
	err := withUser(f.user, func() error {
		var ierr error
		qid, ierr = f.backend.Mknod(f.handle, name, t.Mode(), t.Major(), t.Minor(), f.user)
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRmknod(t.Tag(), qid)
	})
}

func (c *conn) doMkdir(t proto.Tmkdir) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if f.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	name := string(t.Name())
	var qid proto.Qid
	err := withUser(f.user, func() error {
		var ierr error
		qid, ierr = f.backend.Mkdir(f.handle, name, t.Mode(), f.user)
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRmkdir(t.Tag(), qid)
	})
}

func (c *conn) doLink(t proto.Tlink) {
	df, ok := c.fids.Get(t.Dfid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	tf, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if df.ctl != nil || tf.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if df.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	name := string(t.Name())
	err := withUser(df.user, func() error { return df.backend.Link(df.handle, tf.handle, name) })
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRlink(t.Tag())
	})
}

func (c *conn) doRename(t proto.Trename) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	df, ok := c.fids.Get(t.Dfid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil || df.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if f.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	name := string(t.Name())
	err := withUser(f.user, func() error { return f.backend.Rename(f.handle, df.handle, name) })
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRrename(t.Tag())
	})
}

func (c *conn) doRenameat(t proto.Trenameat) {
	od, ok := c.fids.Get(t.OldDirfid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	nd, ok := c.fids.Get(t.NewDirfid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if od.ctl != nil || nd.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if od.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	err := withUser(od.user, func() error {
		return od.backend.Renameat(od.handle, string(t.OldName()), nd.handle, string(t.NewName()))
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRrenameat(t.Tag())
	})
}

func (c *conn) doUnlinkat(t proto.Tunlinkat) {
	d, ok := c.fids.Get(t.Dirfid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if d.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if d.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	err := withUser(d.user, func() error { return d.backend.Unlinkat(d.handle, string(t.Name()), t.Flags()) })
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRunlinkat(t.Tag())
	})
}

func (c *conn) doReadlink(t proto.Treadlink) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.EINVAL)
		return
	}
	var target string
	err := withUser(f.user, func() error {
		var ierr error
		target, ierr = f.backend.Readlink(f.handle)
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRreadlink(t.Tag(), []byte(target))
	})
}

func (c *conn) doGetattr(t proto.Tgetattr) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.doGetattrCtl(t, f)
		return
	}
	var a proto.Attr
	err := withUser(f.user, func() error {
		var ierr error
		a, ierr = f.backend.Getattr(f.handle, t.RequestMask())
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRgetattr(t.Tag(), a)
	})
}

// doGetattrCtl reports a minimal, static Attr for a ctl fid: file type
// and the counter file's current rendered size, nothing else is
// meaningful for a synthetic, ownerless namespace.
func (c *conn) doGetattrCtl(t proto.Tgetattr, f *fid) {
	mode := uint32(0444)
	var size uint64
	if f.ctlFile == "" {
		mode |= syscall.S_IFDIR | 0111
	} else {
		mode |= syscall.S_IFREG
		data, err := f.ctl.ReadFile(f.ctlFile)
		if err != nil {
			c.writeErr(t.Tag(), err)
			return
		}
		size = uint64(len(data))
	}
	qtype := uint8(proto.QTFILE)
	var ino uint64
	if f.ctlFile == "" {
		qtype = proto.QTDIR
	} else {
		ino = ctlFileIno(f.ctlFile)
	}
	qid, _, err := proto.NewQid(make([]byte, proto.QidLen), qtype, 0, ino)
	if err != nil {
		c.writeErr(t.Tag(), syscall.EIO)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRgetattr(t.Tag(), proto.Attr{Valid: proto.GetattrBasic, Qid: qid, Mode: mode, Nlink: 1, Size: size})
	})
}

func (c *conn) doSetattr(t proto.Tsetattr) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if f.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	a := proto.Attr{
		Mode: t.Mode(), UID: t.UID(), GID: t.GID(), Size: t.Size(),
		AtimeSec: t.AtimeSec(), AtimeNsec: t.AtimeNsec(),
		MtimeSec: t.MtimeSec(), MtimeNsec: t.MtimeNsec(),
	}
	err := withUser(f.user, func() error { return f.backend.Setattr(f.handle, uint64(t.Valid()), a) })
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRsetattr(t.Tag())
	})
}

func (c *conn) doXattrwalk(t proto.Txattrwalk) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.ENOSYS)
		return
	}
	name := string(t.Name())
	var nh *fsbackend.Handle
	var size uint64
	err := withUser(f.user, func() error {
		var ierr error
		nh, size, ierr = f.backend.Xattrwalk(f.handle, name)
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	nf := &fid{backend: f.backend, aname: f.aname, handle: nh, user: f.user}
	if !c.fids.Add(t.Newfid(), nf) {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRxattrwalk(t.Tag(), size)
	})
}

func (c *conn) doXattrcreate(t proto.Txattrcreate) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if f.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	err := f.backend.Xattrcreate(f.handle, string(t.Name()), t.AttrSize(), t.Flags())
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRxattrcreate(t.Tag())
	})
}

// doReaddirCtl lists the ctl namespace's fixed set of files. The
// listing is small enough that no client will ever need a second
// TREADDIR call to finish it, so any nonzero offset just reports EOF.
func (c *conn) doReaddirCtl(t proto.Treaddir, f *fid) {
	if t.Offset() != 0 {
		c.reply(t.Tag(), func() {
			c.enc.WriteRreaddir(t.Tag(), nil)
		})
		return
	}
	var buf []byte
	for i, name := range ctlfs.Files {
		qid, _, err := proto.NewQid(make([]byte, proto.QidLen), proto.QTFILE, 0, uint64(i+1))
		if err != nil {
			c.writeErr(t.Tag(), syscall.EIO)
			return
		}
		buf = proto.AppendDirent(buf, qid, uint64(i+1), proto.DtReg, []byte(name))
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRreaddir(t.Tag(), buf)
	})
}

func (c *conn) doReaddir(t proto.Treaddir) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.doReaddirCtl(t, f)
		return
	}
	count := t.Count()
	if max := c.msize - 11; count > max {
		count = max
	}
	var data []byte
	err := withUser(f.user, func() error {
		var ierr error
		data, ierr = f.backend.Readdir(f.handle, t.Offset(), count)
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRreaddir(t.Tag(), data)
	})
}

func (c *conn) doFsync(t proto.Tfsync) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.ENOSYS)
		return
	}
	err := withUser(f.user, func() error { return f.backend.Fsync(f.handle) })
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRfsync(t.Tag())
	})
}

func (c *conn) doLock(t proto.Tlock) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.ENOSYS)
		return
	}
	l := lockmgr.Lock{
		Type: t.Type(), Start: t.Start(), Length: t.Length(),
		ProcID: t.ProcID(), ClientID: string(t.ClientID()),
	}
	status, err := f.backend.Lock(f.handle, l)
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRlock(t.Tag(), status)
	})
}

func (c *conn) doGetlock(t proto.Tgetlock) {
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.ENOSYS)
		return
	}
	l := lockmgr.Lock{
		Type: t.Type(), Start: t.Start(), Length: t.Length(),
		ProcID: t.ProcID(), ClientID: string(t.ClientID()),
	}
	res, err := f.backend.Getlock(f.handle, l)
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRgetlock(t.Tag(), res.Type, res.Start, res.Length, res.ProcID, []byte(res.ClientID))
	})
}

func (c *conn) doRead(t proto.Tread) {
	if _, ok := c.auths.Get(t.Fid()); ok {
		// An auth-fid carries no response data of its own in this
		// decode-at-ATTACH model; report EOF rather than EBADF so a
		// client that reads the afid speculatively before ATTACH
		// doesn't see it as a protocol error.
		c.reply(t.Tag(), func() {
			c.enc.WriteRread(t.Tag(), nil)
		})
		return
	}
	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.doReadCtl(t, f)
		return
	}
	count := t.Count()
	if max := c.msize - 11; count > max {
		count = max
	}
	buf := make([]byte, count)

	if f.backend.IsXattrRead(f.handle) {
		data, err := f.backend.XattrRead(f.handle)
		if err != nil {
			c.writeErr(t.Tag(), err)
			return
		}
		off := int(t.Offset())
		if off > len(data) {
			off = len(data)
		}
		end := off + int(count)
		if end > len(data) {
			end = len(data)
		}
		c.reply(t.Tag(), func() {
			c.enc.WriteRread(t.Tag(), data[off:end])
		})
		return
	}

	var n int
	err := withUser(f.user, func() error {
		var ierr error
		n, ierr = f.backend.ReadAt(f.handle, buf, int64(t.Offset()))
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRread(t.Tag(), buf[:n])
	})
}

// doReadCtl renders the requested counter file and slices out the
// [offset, offset+count) window, the same truncate-to-EOF behavior a
// host file's ReadAt gives a plain TREAD.
func (c *conn) doReadCtl(t proto.Tread, f *fid) {
	if f.ctlFile == "" {
		c.writeErr(t.Tag(), syscall.EISDIR)
		return
	}
	data, err := f.ctl.ReadFile(f.ctlFile)
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	off := int(t.Offset())
	if off > len(data) {
		off = len(data)
	}
	end := off + int(t.Count())
	if end > len(data) {
		end = len(data)
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRread(t.Tag(), data[off:end])
	})
}

func (c *conn) doWrite(t proto.Twrite) {
	if st, ok := c.auths.Get(t.Fid()); ok {
		st.blob = append(st.blob, t.Data()...)
		c.reply(t.Tag(), func() {
			c.enc.WriteRwrite(t.Tag(), uint32(len(t.Data())))
		})
		return
	}

	f, ok := c.fids.Get(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.ctl != nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	if f.backend.ReadOnly {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}

	if f.backend.IsXattrCreate(f.handle) {
		n, err := f.backend.XattrWrite(f.handle, t.Data())
		if err != nil {
			c.writeErr(t.Tag(), err)
			return
		}
		c.reply(t.Tag(), func() {
			c.enc.WriteRwrite(t.Tag(), uint32(n))
		})
		return
	}

	var n int
	err := withUser(f.user, func() error {
		var ierr error
		n, ierr = f.backend.WriteAt(f.handle, t.Data(), int64(t.Offset()))
		return ierr
	})
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRwrite(t.Tag(), uint32(n))
	})
}

func (c *conn) doClunk(t proto.Tclunk) {
	if st, ok := c.auths.Del(t.Fid()); ok {
		for i := range st.blob {
			st.blob[i] = 0
		}
		c.reply(t.Tag(), func() {
			c.enc.WriteRclunk(t.Tag())
		})
		return
	}
	f, ok := c.fids.Del(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.backend != nil {
		f.backend.Clunk(f.handle)
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRclunk(t.Tag())
	})
}

func (c *conn) doRemove(t proto.Tremove) {
	f, ok := c.fids.Del(t.Fid())
	if !ok {
		c.writeErr(t.Tag(), syscall.EBADF)
		return
	}
	if f.backend == nil {
		c.writeErr(t.Tag(), syscall.EROFS)
		return
	}
	err := withUser(f.user, func() error { return f.backend.Remove(f.handle) })
	f.backend.Clunk(f.handle)
	if err != nil {
		c.writeErr(t.Tag(), err)
		return
	}
	c.reply(t.Tag(), func() {
		c.enc.WriteRremove(t.Tag())
	})
}
