package proto

// parseMsg validates buf as a complete, framed 9P2000.L message and
// returns the concrete, typed view over it. buf must already contain
// exactly one message (its length prefix must equal len(buf)); the
// Decoder guarantees this before calling parseMsg.
func parseMsg(buf []byte) (Msg, error) {
	m := msg(buf)
	t := m.Type()
	min := minSizeLUT[t]
	if min == 0 {
		return nil, errInvalidType
	}
	if int32(len(buf)) < min {
		return nil, errShortMsg
	}
	if err := verify(buf, t); err != nil {
		return nil, err
	}
	return wrap(buf, t), nil
}

// Clone copies a Msg's backing bytes, for callers (such as a worker
// pool) that need to hold onto a message past the Decoder's next
// Next call, which reuses its internal buffer.
func Clone(m Msg) Msg {
	if bm, ok := m.(BadMessage); ok {
		buf := append([]byte(nil), bm.msg...)
		return BadMessage{msg: buf, Err: bm.Err}
	}
	t := msg(rawBytes(m)).Type()
	buf := append([]byte(nil), rawBytes(m)...)
	return wrap(buf, t)
}

func rawBytes(m Msg) []byte {
	switch v := m.(type) {
	case Tversion:
		return v
	case Rversion:
		return v
	case Tauth:
		return v
	case Rauth:
		return v
	case Rlerror:
		return v
	case Tattach:
		return v
	case Rattach:
		return v
	case Tflush:
		return v
	case Rflush:
		return v
	case Twalk:
		return v
	case Rwalk:
		return v
	case Tstatfs:
		return v
	case Rstatfs:
		return v
	case Tlopen:
		return v
	case Rlopen:
		return v
	case Tlcreate:
		return v
	case Rlcreate:
		return v
	case Tsymlink:
		return v
	case Rsymlink:
		return v
	case Tmknod:
		return v
	case Rmknod:
		return v
	case Trename:
		return v
	case Rrename:
		return v
	case Treadlink:
		return v
	case Rreadlink:
		return v
	case Tgetattr:
		return v
	case Rgetattr:
		return v
	case Tsetattr:
		return v
	case Rsetattr:
		return v
	case Txattrwalk:
		return v
	case Rxattrwalk:
		return v
	case Txattrcreate:
		return v
	case Rxattrcreate:
		return v
	case Treaddir:
		return v
	case Rreaddir:
		return v
	case Tfsync:
		return v
	case Rfsync:
		return v
	case Tlock:
		return v
	case Rlock:
		return v
	case Tgetlock:
		return v
	case Rgetlock:
		return v
	case Tlink:
		return v
	case Rlink:
		return v
	case Tmkdir:
		return v
	case Rmkdir:
		return v
	case Trenameat:
		return v
	case Rrenameat:
		return v
	case Tunlinkat:
		return v
	case Runlinkat:
		return v
	case Tread:
		return v
	case Rread:
		return v
	case Twrite:
		return v
	case Rwrite:
		return v
	case Tclunk:
		return v
	case Rclunk:
		return v
	case Tremove:
		return v
	case Rremove:
		return v
	}
	panic("proto: unreachable: Clone given an unknown Msg type")
}

// wrap assumes buf has already passed verify for type t.
func wrap(buf []byte, t uint8) Msg {
	switch t {
	case Tversion:
		return Tversion(buf)
	case Rversion:
		return Rversion(buf)
	case Tauth:
		return Tauth(buf)
	case Rauth:
		return Rauth(buf)
	case Rlerror:
		return Rlerror(buf)
	case Tattach:
		return Tattach(buf)
	case Rattach:
		return Rattach(buf)
	case Tflush:
		return Tflush(buf)
	case Rflush:
		return Rflush(buf)
	case Twalk:
		return Twalk(buf)
	case Rwalk:
		return Rwalk(buf)
	case Tstatfs:
		return Tstatfs(buf)
	case Rstatfs:
		return Rstatfs(buf)
	case Tlopen:
		return Tlopen(buf)
	case Rlopen:
		return Rlopen(buf)
	case Tlcreate:
		return Tlcreate(buf)
	case Rlcreate:
		return Rlcreate(buf)
	case Tsymlink:
		return Tsymlink(buf)
	case Rsymlink:
		return Rsymlink(buf)
	case Tmknod:
		return Tmknod(buf)
	case Rmknod:
		return Rmknod(buf)
	case Trename:
		return Trename(buf)
	case Rrename:
		return Rrename(buf)
	case Treadlink:
		return Treadlink(buf)
	case Rreadlink:
		return Rreadlink(buf)
	case Tgetattr:
		return Tgetattr(buf)
	case Rgetattr:
		return Rgetattr(buf)
	case Tsetattr:
		return Tsetattr(buf)
	case Rsetattr:
		return Rsetattr(buf)
	case Txattrwalk:
		return Txattrwalk(buf)
	case Rxattrwalk:
		return Rxattrwalk(buf)
	case Txattrcreate:
		return Txattrcreate(buf)
	case Rxattrcreate:
		return Rxattrcreate(buf)
	case Treaddir:
		return Treaddir(buf)
	case Rreaddir:
		return Rreaddir(buf)
	case Tfsync:
		return Tfsync(buf)
	case Rfsync:
		return Rfsync(buf)
	case Tlock:
		return Tlock(buf)
	case Rlock:
		return Rlock(buf)
	case Tgetlock:
		return Tgetlock(buf)
	case Rgetlock:
		return Rgetlock(buf)
	case Tlink:
		return Tlink(buf)
	case Rlink:
		return Rlink(buf)
	case Tmkdir:
		return Tmkdir(buf)
	case Rmkdir:
		return Rmkdir(buf)
	case Trenameat:
		return Trenameat(buf)
	case Rrenameat:
		return Rrenameat(buf)
	case Tunlinkat:
		return Tunlinkat(buf)
	case Runlinkat:
		return Runlinkat(buf)
	case Tread:
		return Tread(buf)
	case Rread:
		return Rread(buf)
	case Twrite:
		return Twrite(buf)
	case Rwrite:
		return Rwrite(buf)
	case Tclunk:
		return Tclunk(buf)
	case Rclunk:
		return Rclunk(buf)
	case Tremove:
		return Tremove(buf)
	case Rremove:
		return Rremove(buf)
	}
	panic("proto: unreachable: type accepted by minSizeLUT but not wrap")
}

// scursor walks a message body enforcing bounds and protocol limits;
// the first violation sticks and is returned by done.
type scursor struct {
	b   []byte
	off int
	err error
}

func newScursor(b []byte) *scursor { return &scursor{b: b, off: 7} }

func (c *scursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if n < 0 || c.off+n > len(c.b) {
		c.err = errShortMsg
		return false
	}
	return true
}

func (c *scursor) skip(n int) {
	if c.need(n) {
		c.off += n
	}
}

func (c *scursor) u8() uint8 {
	if !c.need(1) {
		return 0
	}
	v := c.b[c.off]
	c.off++
	return v
}

func (c *scursor) u16() uint16 {
	if !c.need(2) {
		return 0
	}
	v := guint16(c.b[c.off : c.off+2])
	c.off += 2
	return v
}

func (c *scursor) u32() uint32 {
	if !c.need(4) {
		return 0
	}
	v := guint32(c.b[c.off : c.off+4])
	c.off += 4
	return v
}

func (c *scursor) u64() uint64 {
	if !c.need(8) {
		return 0
	}
	v := guint64(c.b[c.off : c.off+8])
	c.off += 8
	return v
}

func (c *scursor) qid() {
	c.skip(QidLen)
}

// str consumes a length-prefixed string field, enforcing maxLen and
// rejecting embedded NUL and (when noSlash is set) path separators.
func (c *scursor) str(maxLen int, noSlash bool) {
	n := int(c.u16())
	if c.err != nil {
		return
	}
	if n > maxLen {
		c.err = errLongFilename
		return
	}
	if !c.need(n) {
		return
	}
	for i := 0; i < n; i++ {
		b := c.b[c.off+i]
		if b == 0 {
			c.err = errNullString
			return
		}
		if noSlash && b == '/' {
			c.err = errContainsSlash
			return
		}
	}
	c.off += n
}

func (c *scursor) done() error {
	if c.err != nil {
		return c.err
	}
	if c.off != len(c.b) {
		return errShortMsg
	}
	return nil
}

// verify checks the body of a syntactically-sized message of type t
// for internal consistency: string lengths that fit within the
// buffer, walk-element and client-id counts within protocol limits,
// and payload counts that match the frame size.
func verify(buf []byte, t uint8) error {
	switch t {
	case Tversion, Rversion:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxVersionLen, false)
		return c.done()
	case Tauth:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxUnameLen, false)
		c.str(MaxFilenameLen, false)
		c.skip(4) // n_uname
		return c.done()
	case Rauth, Rattach, Rsymlink, Rmknod, Rmkdir:
		c := newScursor(buf)
		c.qid()
		return c.done()
	case Rlerror, Tstatfs, Tlopen, Tgetattr, Tfsync, Tclunk, Tremove:
		return nil // pure fixed-size, min-size check already sufficient
	case Tattach:
		c := newScursor(buf)
		c.skip(8)
		c.str(MaxUnameLen, false)
		c.str(MaxFilenameLen, false)
		c.skip(4)
		return c.done()
	case Tflush, Rflush, Rrename, Rsetattr, Rxattrcreate, Rfsync, Rlink, Rrenameat, Runlinkat, Rclunk, Rremove:
		return nil
	case Twalk:
		c := newScursor(buf)
		c.skip(8)
		n := c.u16()
		if n > MaxWElem {
			return errMaxWElem
		}
		for i := 0; i < int(n); i++ {
			c.str(MaxFilenameLen, true)
		}
		return c.done()
	case Rwalk:
		c := newScursor(buf)
		n := c.u16()
		if n > MaxWElem {
			return errMaxWElem
		}
		for i := 0; i < int(n); i++ {
			c.qid()
		}
		return c.done()
	case Tlcreate:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxFilenameLen, true)
		c.skip(12) // flags, mode, gid
		return c.done()
	case Tsymlink:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxFilenameLen, true)
		c.str(MaxSymtgtLen, false)
		c.skip(4)
		return c.done()
	case Tmknod:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxFilenameLen, true)
		c.skip(16)
		return c.done()
	case Trename:
		c := newScursor(buf)
		c.skip(8)
		c.str(MaxFilenameLen, true)
		return c.done()
	case Treadlink:
		return nil
	case Tsetattr:
		return nil
	case Txattrwalk:
		c := newScursor(buf)
		c.skip(8)
		c.str(MaxFilenameLen, false)
		return c.done()
	case Txattrcreate:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxFilenameLen, false)
		c.skip(12)
		return c.done()
	case Treaddir:
		return nil
	case Rreaddir:
		c := newScursor(buf)
		n := c.u32()
		c.skip(int(n))
		return c.done()
	case Tlock:
		c := newScursor(buf)
		c.skip(29)
		c.str(MaxClientIDLen, false)
		return c.done()
	case Rlock:
		return nil
	case Tgetlock:
		c := newScursor(buf)
		c.skip(25)
		c.str(MaxClientIDLen, false)
		return c.done()
	case Rgetlock:
		c := newScursor(buf)
		c.skip(21)
		c.str(MaxClientIDLen, false)
		return c.done()
	case Tlink:
		c := newScursor(buf)
		c.skip(8)
		c.str(MaxFilenameLen, true)
		return c.done()
	case Tmkdir:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxFilenameLen, true)
		c.skip(8)
		return c.done()
	case Trenameat:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxFilenameLen, true)
		c.skip(4)
		c.str(MaxFilenameLen, true)
		return c.done()
	case Tunlinkat:
		c := newScursor(buf)
		c.skip(4)
		c.str(MaxFilenameLen, true)
		c.skip(4)
		return c.done()
	case Tread:
		return nil
	case Rread:
		c := newScursor(buf)
		n := c.u32()
		c.skip(int(n))
		return c.done()
	case Twrite:
		c := newScursor(buf)
		c.skip(12)
		n := c.u32()
		c.skip(int(n))
		return c.done()
	case Rwrite:
		return nil
	}
	return nil
}
