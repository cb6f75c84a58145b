package proto

// 9P2000.L message type numbers. Numbers below 100 are the Linux
// extension messages; numbers 100 and up are inherited from the base
// 9P2000 protocol and keep their original values so that a Tversion
// negotiation failure can still be reported in a format old clients
// recognize.
const (
	Tlerror = 6
	Rlerror = 7

	Tstatfs = 8
	Rstatfs = 9

	Tlopen = 12
	Rlopen = 13

	Tlcreate = 14
	Rlcreate = 15

	Tsymlink = 16
	Rsymlink = 17

	Tmknod = 18
	Rmknod = 19

	Trename = 20
	Rrename = 21

	Treadlink = 22
	Rreadlink = 23

	Tgetattr = 24
	Rgetattr = 25

	Tsetattr = 26
	Rsetattr = 27

	Txattrwalk = 30
	Rxattrwalk = 31

	Txattrcreate = 32
	Rxattrcreate = 33

	Treaddir = 40
	Rreaddir = 41

	Tfsync = 50
	Rfsync = 51

	Tlock = 52
	Rlock = 53

	Tgetlock = 54
	Rgetlock = 55

	Tlink = 70
	Rlink = 71

	Tmkdir = 72
	Rmkdir = 73

	Trenameat = 74
	Rrenameat = 75

	Tunlinkat = 76
	Runlinkat = 77

	Tversion = 100
	Rversion = 101

	Tauth = 102
	Rauth = 103

	Tattach = 104
	Rattach = 105

	Tflush = 108
	Rflush = 109

	Twalk = 110
	Rwalk = 111

	Tread  = 116
	Rread  = 117
	Twrite = 118
	Rwrite = 119

	Tclunk = 120
	Rclunk = 121

	Tremove = 122
	Rremove = 123
)

// Open/create flags, passed through from Linux open(2) rather than the
// translated OREAD/OWRITE bits of legacy 9P2000.
const (
	LOCreate    = 0x00000040
	LOExcl      = 0x00000080
	LOTrunc     = 0x00000200
	LOAppend    = 0x00000400
	LODirectory = 0x00010000
)

// GETATTR request mask bits (which fields the caller wants filled in).
const (
	GetattrMode = 0x00000001
	GetattrNlink = 0x00000002
	GetattrUID  = 0x00000004
	GetattrGID  = 0x00000008
	GetattrRdev = 0x00000010
	GetattrAtime = 0x00000020
	GetattrMtime = 0x00000040
	GetattrCtime = 0x00000080
	GetattrIno  = 0x00000100
	GetattrSize = 0x00000200
	GetattrBlocks = 0x00000400
	GetattrBtime = 0x00000800
	GetattrGen  = 0x00001000
	GetattrDataVersion = 0x00002000

	GetattrBasic = GetattrMode | GetattrNlink | GetattrUID | GetattrGID |
		GetattrRdev | GetattrAtime | GetattrMtime | GetattrCtime |
		GetattrIno | GetattrSize | GetattrBlocks
	GetattrAll = GetattrBasic | GetattrBtime | GetattrGen | GetattrDataVersion
)

// SETATTR valid bits.
const (
	SetattrMode  = 0x00000001
	SetattrUID   = 0x00000002
	SetattrGID   = 0x00000004
	SetattrSize  = 0x00000008
	SetattrAtime = 0x00000010
	SetattrMtime = 0x00000020
	SetattrCtime = 0x00000040
	SetattrAtimeSet = 0x00000080
	SetattrMtimeSet = 0x00000100
)

// Lock types and status, for Tlock/Rlock/Tgetlock/Rgetlock.
const (
	LockTypeRdlck = 0
	LockTypeWrlck = 1
	LockTypeUnlck = 2

	LockSuccess = 0
	LockBlocked = 1
	LockError   = 2
	LockGrace   = 3

	LockFlagsBlock   = 1
	LockFlagsReclaim = 2
)

const (
	NoTag uint16 = 0xFFFF
	NoFid uint32 = 0xFFFFFFFF
	// NoUname is the NONUNAME sentinel a 9P2000.L client sends as
	// n_uname when it is authenticating by uname string instead of a
	// numeric uid.
	NoUname uint32 = 0xFFFFFFFF
)

// A Msg is a single 9P2000.L message: a length-prefixed, tagged
// envelope around a type-specific body. Concrete message types embed
// msg and expose typed accessors over its body.
type Msg interface {
	// Len returns the size in bytes of the message as encoded on
	// the wire, including the 7-byte header.
	Len() int64

	// Tag is the client-chosen identifier for this transaction.
	// NoTag is reserved for the Tversion/Rversion exchange.
	Tag() uint16
}

// msg is the common byte-slice representation every message type is
// defined over. The unexported type keeps callers from constructing
// message values out of arbitrary byte slices.
type msg []byte

func (m msg) Len() int64  { return int64(guint32(m[0:4])) }
func (m msg) Type() uint8 { return m[4] }
func (m msg) Tag() uint16 { return guint16(m[5:7]) }

// cursor walks the variable-length body of a message, one field at a
// time, starting just after the 7-byte header.
type cursor struct {
	b   []byte
	off int
}

func newCursor(m msg) *cursor { return &cursor{b: m, off: 7} }

func (c *cursor) skip(n int) *cursor { c.off += n; return c }

func (c *cursor) u8() uint8 {
	v := c.b[c.off]
	c.off++
	return v
}

func (c *cursor) u16() uint16 {
	v := guint16(c.b[c.off : c.off+2])
	c.off += 2
	return v
}

func (c *cursor) u32() uint32 {
	v := guint32(c.b[c.off : c.off+4])
	c.off += 4
	return v
}

func (c *cursor) u64() uint64 {
	v := guint64(c.b[c.off : c.off+8])
	c.off += 8
	return v
}

func (c *cursor) bytes(n int) []byte {
	v := c.b[c.off : c.off+n]
	c.off += n
	return v
}

func (c *cursor) qid() Qid {
	v := Qid(c.b[c.off : c.off+QidLen])
	c.off += QidLen
	return v
}

func (c *cursor) str() []byte {
	n := int(c.u16())
	return c.bytes(n)
}

// ---- BadMessage ----

// A BadMessage is a message that failed to parse. Err describes why.
// ninepd does not answer it; it logs Err and closes the connection.
type BadMessage struct {
	msg
	Err error
}

// ---- Tversion / Rversion ----

type Tversion msg

func (t Tversion) Len() int64     { return msg(t).Len() }
func (t Tversion) Tag() uint16    { return NoTag }
func (t Tversion) MaxSize() uint32 { return guint32(t[7:11]) }
func (t Tversion) Version() []byte { return newCursor(msg(t)).skip(4).str() }

type Rversion msg

func (r Rversion) Len() int64      { return msg(r).Len() }
func (r Rversion) Tag() uint16     { return NoTag }
func (r Rversion) MaxSize() uint32 { return guint32(r[7:11]) }
func (r Rversion) Version() []byte { return newCursor(msg(r)).skip(4).str() }

// ---- Tauth / Rauth ----

type Tauth msg

func (t Tauth) Len() int64   { return msg(t).Len() }
func (t Tauth) Tag() uint16  { return msg(t).Tag() }
func (t Tauth) Afid() uint32 { return guint32(t[7:11]) }
func (t Tauth) Uname() []byte {
	return newCursor(msg(t)).skip(4).str()
}
func (t Tauth) Aname() []byte {
	c := newCursor(msg(t)).skip(4)
	c.str()
	return c.str()
}
func (t Tauth) NUname() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.str()
	return c.u32()
}

type Rauth msg

func (r Rauth) Len() int64  { return msg(r).Len() }
func (r Rauth) Tag() uint16 { return msg(r).Tag() }
func (r Rauth) Qid() Qid    { return newCursor(msg(r)).qid() }

// ---- Rlerror ----

// Rlerror replaces the textual Rerror of legacy 9P2000 with a numeric
// errno, matching the Linux system call error convention.
type Rlerror msg

func (r Rlerror) Len() int64   { return msg(r).Len() }
func (r Rlerror) Tag() uint16  { return msg(r).Tag() }
func (r Rlerror) Errno() uint32 { return guint32(r[7:11]) }

// ---- Tattach / Rattach ----

type Tattach msg

func (t Tattach) Len() int64    { return msg(t).Len() }
func (t Tattach) Tag() uint16   { return msg(t).Tag() }
func (t Tattach) Fid() uint32   { return guint32(t[7:11]) }
func (t Tattach) Afid() uint32  { return guint32(t[11:15]) }
func (t Tattach) Uname() []byte { return newCursor(msg(t)).skip(8).str() }
func (t Tattach) Aname() []byte {
	c := newCursor(msg(t)).skip(8)
	c.str()
	return c.str()
}
func (t Tattach) NUname() uint32 {
	c := newCursor(msg(t)).skip(8)
	c.str()
	c.str()
	return c.u32()
}

type Rattach msg

func (r Rattach) Len() int64  { return msg(r).Len() }
func (r Rattach) Tag() uint16 { return msg(r).Tag() }
func (r Rattach) Qid() Qid    { return newCursor(msg(r)).qid() }

// ---- Tflush / Rflush ----

type Tflush msg

func (t Tflush) Len() int64    { return msg(t).Len() }
func (t Tflush) Tag() uint16   { return msg(t).Tag() }
func (t Tflush) Oldtag() uint16 { return guint16(t[7:9]) }

type Rflush msg

func (r Rflush) Len() int64  { return msg(r).Len() }
func (r Rflush) Tag() uint16 { return msg(r).Tag() }

// ---- Twalk / Rwalk ----

type Twalk msg

func (t Twalk) Len() int64    { return msg(t).Len() }
func (t Twalk) Tag() uint16   { return msg(t).Tag() }
func (t Twalk) Fid() uint32   { return guint32(t[7:11]) }
func (t Twalk) Newfid() uint32 { return guint32(t[11:15]) }
func (t Twalk) Nwname() uint16 { return guint16(t[15:17]) }

// Wname returns the path elements to walk, in order.
func (t Twalk) Wname() [][]byte {
	n := int(t.Nwname())
	out := make([][]byte, 0, n)
	c := newCursor(msg(t)).skip(10)
	for i := 0; i < n; i++ {
		out = append(out, c.str())
	}
	return out
}

type Rwalk msg

func (r Rwalk) Len() int64    { return msg(r).Len() }
func (r Rwalk) Tag() uint16   { return msg(r).Tag() }
func (r Rwalk) Nwqid() uint16 { return guint16(r[7:9]) }

func (r Rwalk) Wqid() []Qid {
	n := int(r.Nwqid())
	out := make([]Qid, 0, n)
	c := newCursor(msg(r)).skip(2)
	for i := 0; i < n; i++ {
		out = append(out, c.qid())
	}
	return out
}

// ---- Tstatfs / Rstatfs ----

type Tstatfs msg

func (t Tstatfs) Len() int64  { return msg(t).Len() }
func (t Tstatfs) Tag() uint16 { return msg(t).Tag() }
func (t Tstatfs) Fid() uint32 { return guint32(t[7:11]) }

type Rstatfs msg

func (r Rstatfs) Len() int64     { return msg(r).Len() }
func (r Rstatfs) Tag() uint16    { return msg(r).Tag() }
func (r Rstatfs) Type() uint32   { return guint32(r[7:11]) }
func (r Rstatfs) Bsize() uint32  { return guint32(r[11:15]) }
func (r Rstatfs) Blocks() uint64 { return guint64(r[15:23]) }
func (r Rstatfs) Bfree() uint64  { return guint64(r[23:31]) }
func (r Rstatfs) Bavail() uint64 { return guint64(r[31:39]) }
func (r Rstatfs) Files() uint64  { return guint64(r[39:47]) }
func (r Rstatfs) Ffree() uint64  { return guint64(r[47:55]) }
func (r Rstatfs) Fsid() uint64   { return guint64(r[55:63]) }
func (r Rstatfs) Namelen() uint32 { return guint32(r[63:67]) }

// ---- Tlopen / Rlopen ----

type Tlopen msg

func (t Tlopen) Len() int64   { return msg(t).Len() }
func (t Tlopen) Tag() uint16  { return msg(t).Tag() }
func (t Tlopen) Fid() uint32  { return guint32(t[7:11]) }
func (t Tlopen) Flags() uint32 { return guint32(t[11:15]) }

type Rlopen msg

func (r Rlopen) Len() int64    { return msg(r).Len() }
func (r Rlopen) Tag() uint16   { return msg(r).Tag() }
func (r Rlopen) Qid() Qid      { return Qid(r[7 : 7+QidLen]) }
func (r Rlopen) Iounit() uint32 { return guint32(r[7+QidLen : 11+QidLen]) }

// ---- Tlcreate / Rlcreate ----

type Tlcreate msg

func (t Tlcreate) Len() int64  { return msg(t).Len() }
func (t Tlcreate) Tag() uint16 { return msg(t).Tag() }
func (t Tlcreate) Fid() uint32 { return guint32(t[7:11]) }
func (t Tlcreate) Name() []byte {
	return newCursor(msg(t)).skip(4).str()
}
func (t Tlcreate) Flags() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	return c.u32()
}
func (t Tlcreate) Mode() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.u32()
	return c.u32()
}
func (t Tlcreate) Gid() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.u32()
	c.u32()
	return c.u32()
}

type Rlcreate msg

func (r Rlcreate) Len() int64     { return msg(r).Len() }
func (r Rlcreate) Tag() uint16    { return msg(r).Tag() }
func (r Rlcreate) Qid() Qid       { return Qid(r[7 : 7+QidLen]) }
func (r Rlcreate) Iounit() uint32 { return guint32(r[7+QidLen : 11+QidLen]) }

// ---- Tsymlink / Rsymlink ----

type Tsymlink msg

func (t Tsymlink) Len() int64  { return msg(t).Len() }
func (t Tsymlink) Tag() uint16 { return msg(t).Tag() }
func (t Tsymlink) Fid() uint32 { return guint32(t[7:11]) }
func (t Tsymlink) Name() []byte {
	return newCursor(msg(t)).skip(4).str()
}
func (t Tsymlink) Target() []byte {
	c := newCursor(msg(t)).skip(4)
	c.str()
	return c.str()
}
func (t Tsymlink) Gid() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.str()
	return c.u32()
}

type Rsymlink msg

func (r Rsymlink) Len() int64  { return msg(r).Len() }
func (r Rsymlink) Tag() uint16 { return msg(r).Tag() }
func (r Rsymlink) Qid() Qid    { return newCursor(msg(r)).qid() }

// ---- Tmknod / Rmknod ----

type Tmknod msg

func (t Tmknod) Len() int64  { return msg(t).Len() }
func (t Tmknod) Tag() uint16 { return msg(t).Tag() }
func (t Tmknod) Fid() uint32 { return guint32(t[7:11]) }
func (t Tmknod) Name() []byte {
	return newCursor(msg(t)).skip(4).str()
}
func (t Tmknod) Mode() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	return c.u32()
}
func (t Tmknod) Major() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.u32()
	return c.u32()
}
func (t Tmknod) Minor() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.u32()
	c.u32()
	return c.u32()
}
func (t Tmknod) Gid() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.u32()
	c.u32()
	c.u32()
	return c.u32()
}

type Rmknod msg

func (r Rmknod) Len() int64  { return msg(r).Len() }
func (r Rmknod) Tag() uint16 { return msg(r).Tag() }
func (r Rmknod) Qid() Qid    { return newCursor(msg(r)).qid() }

// ---- Trename / Rrename ----

type Trename msg

func (t Trename) Len() int64   { return msg(t).Len() }
func (t Trename) Tag() uint16  { return msg(t).Tag() }
func (t Trename) Fid() uint32  { return guint32(t[7:11]) }
func (t Trename) Dfid() uint32 { return guint32(t[11:15]) }
func (t Trename) Name() []byte { return newCursor(msg(t)).skip(8).str() }

type Rrename msg

func (r Rrename) Len() int64  { return msg(r).Len() }
func (r Rrename) Tag() uint16 { return msg(r).Tag() }

// ---- Treadlink / Rreadlink ----

type Treadlink msg

func (t Treadlink) Len() int64  { return msg(t).Len() }
func (t Treadlink) Tag() uint16 { return msg(t).Tag() }
func (t Treadlink) Fid() uint32 { return guint32(t[7:11]) }

type Rreadlink msg

func (r Rreadlink) Len() int64    { return msg(r).Len() }
func (r Rreadlink) Tag() uint16   { return msg(r).Tag() }
func (r Rreadlink) Target() []byte { return newCursor(msg(r)).str() }

// ---- Tgetattr / Rgetattr ----

type Tgetattr msg

func (t Tgetattr) Len() int64        { return msg(t).Len() }
func (t Tgetattr) Tag() uint16       { return msg(t).Tag() }
func (t Tgetattr) Fid() uint32       { return guint32(t[7:11]) }
func (t Tgetattr) RequestMask() uint64 { return guint64(t[11:19]) }

type Rgetattr msg

func (r Rgetattr) Len() int64  { return msg(r).Len() }
func (r Rgetattr) Tag() uint16 { return msg(r).Tag() }
func (r Rgetattr) Valid() uint64 { return guint64(r[7:15]) }
func (r Rgetattr) Qid() Qid     { return Qid(r[15 : 15+QidLen]) }
func (r Rgetattr) Mode() uint32 { return guint32(r[28:32]) }
func (r Rgetattr) UID() uint32  { return guint32(r[32:36]) }
func (r Rgetattr) GID() uint32  { return guint32(r[36:40]) }
func (r Rgetattr) Nlink() uint64  { return guint64(r[40:48]) }
func (r Rgetattr) Rdev() uint64   { return guint64(r[48:56]) }
func (r Rgetattr) Size() uint64   { return guint64(r[56:64]) }
func (r Rgetattr) Blksize() uint64 { return guint64(r[64:72]) }
func (r Rgetattr) Blocks() uint64 { return guint64(r[72:80]) }
func (r Rgetattr) AtimeSec() uint64  { return guint64(r[80:88]) }
func (r Rgetattr) AtimeNsec() uint64 { return guint64(r[88:96]) }
func (r Rgetattr) MtimeSec() uint64  { return guint64(r[96:104]) }
func (r Rgetattr) MtimeNsec() uint64 { return guint64(r[104:112]) }
func (r Rgetattr) CtimeSec() uint64  { return guint64(r[112:120]) }
func (r Rgetattr) CtimeNsec() uint64 { return guint64(r[120:128]) }
func (r Rgetattr) BtimeSec() uint64  { return guint64(r[128:136]) }
func (r Rgetattr) BtimeNsec() uint64 { return guint64(r[136:144]) }
func (r Rgetattr) Gen() uint64         { return guint64(r[144:152]) }
func (r Rgetattr) DataVersion() uint64 { return guint64(r[152:160]) }

// ---- Tsetattr / Rsetattr ----

type Tsetattr msg

func (t Tsetattr) Len() int64     { return msg(t).Len() }
func (t Tsetattr) Tag() uint16    { return msg(t).Tag() }
func (t Tsetattr) Fid() uint32    { return guint32(t[7:11]) }
func (t Tsetattr) Valid() uint32  { return guint32(t[11:15]) }
func (t Tsetattr) Mode() uint32   { return guint32(t[15:19]) }
func (t Tsetattr) UID() uint32    { return guint32(t[19:23]) }
func (t Tsetattr) GID() uint32    { return guint32(t[23:27]) }
func (t Tsetattr) Size() uint64   { return guint64(t[27:35]) }
func (t Tsetattr) AtimeSec() uint64  { return guint64(t[35:43]) }
func (t Tsetattr) AtimeNsec() uint64 { return guint64(t[43:51]) }
func (t Tsetattr) MtimeSec() uint64  { return guint64(t[51:59]) }
func (t Tsetattr) MtimeNsec() uint64 { return guint64(t[59:67]) }

type Rsetattr msg

func (r Rsetattr) Len() int64  { return msg(r).Len() }
func (r Rsetattr) Tag() uint16 { return msg(r).Tag() }

// ---- Txattrwalk / Rxattrwalk ----

type Txattrwalk msg

func (t Txattrwalk) Len() int64     { return msg(t).Len() }
func (t Txattrwalk) Tag() uint16    { return msg(t).Tag() }
func (t Txattrwalk) Fid() uint32    { return guint32(t[7:11]) }
func (t Txattrwalk) Newfid() uint32 { return guint32(t[11:15]) }
func (t Txattrwalk) Name() []byte   { return newCursor(msg(t)).skip(8).str() }

type Rxattrwalk msg

func (r Rxattrwalk) Len() int64  { return msg(r).Len() }
func (r Rxattrwalk) Tag() uint16 { return msg(r).Tag() }
func (r Rxattrwalk) Size() uint64 { return guint64(r[7:15]) }

// ---- Txattrcreate / Rxattrcreate ----

type Txattrcreate msg

func (t Txattrcreate) Len() int64  { return msg(t).Len() }
func (t Txattrcreate) Tag() uint16 { return msg(t).Tag() }
func (t Txattrcreate) Fid() uint32 { return guint32(t[7:11]) }
func (t Txattrcreate) Name() []byte {
	return newCursor(msg(t)).skip(4).str()
}
func (t Txattrcreate) AttrSize() uint64 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	return c.u64()
}
func (t Txattrcreate) Flags() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.u64()
	return c.u32()
}

type Rxattrcreate msg

func (r Rxattrcreate) Len() int64  { return msg(r).Len() }
func (r Rxattrcreate) Tag() uint16 { return msg(r).Tag() }

// ---- Treaddir / Rreaddir ----

type Treaddir msg

func (t Treaddir) Len() int64    { return msg(t).Len() }
func (t Treaddir) Tag() uint16   { return msg(t).Tag() }
func (t Treaddir) Fid() uint32   { return guint32(t[7:11]) }
func (t Treaddir) Offset() uint64 { return guint64(t[11:19]) }
func (t Treaddir) Count() uint32 { return guint32(t[19:23]) }

// Rreaddir carries a pre-encoded run of directory entries. Dirents
// returns the raw bytes; use AppendDirent while building one to pack
// entries in wire format.
type Rreaddir msg

func (r Rreaddir) Len() int64   { return msg(r).Len() }
func (r Rreaddir) Tag() uint16  { return msg(r).Tag() }
func (r Rreaddir) Count() uint32 { return guint32(r[7:11]) }
func (r Rreaddir) Data() []byte { return r[11 : 11+r.Count()] }

// ---- Tfsync / Rfsync ----

type Tfsync msg

func (t Tfsync) Len() int64  { return msg(t).Len() }
func (t Tfsync) Tag() uint16 { return msg(t).Tag() }
func (t Tfsync) Fid() uint32 { return guint32(t[7:11]) }

type Rfsync msg

func (r Rfsync) Len() int64  { return msg(r).Len() }
func (r Rfsync) Tag() uint16 { return msg(r).Tag() }

// ---- Tlock / Rlock ----

type Tlock msg

func (t Tlock) Len() int64    { return msg(t).Len() }
func (t Tlock) Tag() uint16   { return msg(t).Tag() }
func (t Tlock) Fid() uint32   { return guint32(t[7:11]) }
func (t Tlock) Type() uint8   { return t[11] }
func (t Tlock) Flags() uint32 { return guint32(t[12:16]) }
func (t Tlock) Start() uint64  { return guint64(t[16:24]) }
func (t Tlock) Length() uint64 { return guint64(t[24:32]) }
func (t Tlock) ProcID() uint32 { return guint32(t[32:36]) }
func (t Tlock) ClientID() []byte {
	return newCursor(msg(t)).skip(29).str()
}

type Rlock msg

func (r Rlock) Len() int64   { return msg(r).Len() }
func (r Rlock) Tag() uint16  { return msg(r).Tag() }
func (r Rlock) Status() uint8 { return r[7] }

// ---- Tgetlock / Rgetlock ----

type Tgetlock msg

func (t Tgetlock) Len() int64   { return msg(t).Len() }
func (t Tgetlock) Tag() uint16  { return msg(t).Tag() }
func (t Tgetlock) Fid() uint32  { return guint32(t[7:11]) }
func (t Tgetlock) Type() uint8  { return t[11] }
func (t Tgetlock) Start() uint64  { return guint64(t[12:20]) }
func (t Tgetlock) Length() uint64 { return guint64(t[20:28]) }
func (t Tgetlock) ProcID() uint32 { return guint32(t[28:32]) }
func (t Tgetlock) ClientID() []byte {
	return newCursor(msg(t)).skip(25).str()
}

type Rgetlock msg

func (r Rgetlock) Len() int64  { return msg(r).Len() }
func (r Rgetlock) Tag() uint16 { return msg(r).Tag() }
func (r Rgetlock) Type() uint8 { return r[7] }
func (r Rgetlock) Start() uint64  { return guint64(r[8:16]) }
func (r Rgetlock) Length() uint64 { return guint64(r[16:24]) }
func (r Rgetlock) ProcID() uint32 { return guint32(r[24:28]) }
func (r Rgetlock) ClientID() []byte {
	return newCursor(msg(r)).skip(21).str()
}

// ---- Tlink / Rlink ----

type Tlink msg

func (t Tlink) Len() int64   { return msg(t).Len() }
func (t Tlink) Tag() uint16  { return msg(t).Tag() }
func (t Tlink) Dfid() uint32 { return guint32(t[7:11]) }
func (t Tlink) Fid() uint32  { return guint32(t[11:15]) }
func (t Tlink) Name() []byte { return newCursor(msg(t)).skip(8).str() }

type Rlink msg

func (r Rlink) Len() int64  { return msg(r).Len() }
func (r Rlink) Tag() uint16 { return msg(r).Tag() }

// ---- Tmkdir / Rmkdir ----

type Tmkdir msg

func (t Tmkdir) Len() int64  { return msg(t).Len() }
func (t Tmkdir) Tag() uint16 { return msg(t).Tag() }
func (t Tmkdir) Fid() uint32 { return guint32(t[7:11]) }
func (t Tmkdir) Name() []byte {
	return newCursor(msg(t)).skip(4).str()
}
func (t Tmkdir) Mode() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	return c.u32()
}
func (t Tmkdir) Gid() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.u32()
	return c.u32()
}

type Rmkdir msg

func (r Rmkdir) Len() int64  { return msg(r).Len() }
func (r Rmkdir) Tag() uint16 { return msg(r).Tag() }
func (r Rmkdir) Qid() Qid    { return newCursor(msg(r)).qid() }

// ---- Trenameat / Rrenameat ----

type Trenameat msg

func (t Trenameat) Len() int64       { return msg(t).Len() }
func (t Trenameat) Tag() uint16      { return msg(t).Tag() }
func (t Trenameat) OldDirfid() uint32 { return guint32(t[7:11]) }
func (t Trenameat) OldName() []byte  { return newCursor(msg(t)).skip(4).str() }
func (t Trenameat) NewDirfid() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	return c.u32()
}
func (t Trenameat) NewName() []byte {
	c := newCursor(msg(t)).skip(4)
	c.str()
	c.u32()
	return c.str()
}

type Rrenameat msg

func (r Rrenameat) Len() int64  { return msg(r).Len() }
func (r Rrenameat) Tag() uint16 { return msg(r).Tag() }

// ---- Tunlinkat / Runlinkat ----

type Tunlinkat msg

func (t Tunlinkat) Len() int64    { return msg(t).Len() }
func (t Tunlinkat) Tag() uint16   { return msg(t).Tag() }
func (t Tunlinkat) Dirfid() uint32 { return guint32(t[7:11]) }
func (t Tunlinkat) Name() []byte  { return newCursor(msg(t)).skip(4).str() }
func (t Tunlinkat) Flags() uint32 {
	c := newCursor(msg(t)).skip(4)
	c.str()
	return c.u32()
}

type Runlinkat msg

func (r Runlinkat) Len() int64  { return msg(r).Len() }
func (r Runlinkat) Tag() uint16 { return msg(r).Tag() }

// ---- Tread / Rread ----

type Tread msg

func (t Tread) Len() int64    { return msg(t).Len() }
func (t Tread) Tag() uint16   { return msg(t).Tag() }
func (t Tread) Fid() uint32   { return guint32(t[7:11]) }
func (t Tread) Offset() uint64 { return guint64(t[11:19]) }
func (t Tread) Count() uint32 { return guint32(t[19:23]) }

// Rread carries up to Count() bytes of file data, inline in the
// message buffer.
type Rread msg

func (r Rread) Len() int64   { return msg(r).Len() }
func (r Rread) Tag() uint16  { return msg(r).Tag() }
func (r Rread) Count() uint32 { return guint32(r[7:11]) }
func (r Rread) Data() []byte { return r[11 : 11+r.Count()] }

// ---- Twrite / Rwrite ----

// Twrite carries up to Count() bytes of file data, inline in the
// message buffer.
type Twrite msg

func (t Twrite) Len() int64    { return msg(t).Len() }
func (t Twrite) Tag() uint16   { return msg(t).Tag() }
func (t Twrite) Fid() uint32   { return guint32(t[7:11]) }
func (t Twrite) Offset() uint64 { return guint64(t[11:19]) }
func (t Twrite) Count() uint32 { return guint32(t[19:23]) }
func (t Twrite) Data() []byte  { return t[23 : 23+t.Count()] }

type Rwrite msg

func (r Rwrite) Len() int64   { return msg(r).Len() }
func (r Rwrite) Tag() uint16  { return msg(r).Tag() }
func (r Rwrite) Count() uint32 { return guint32(r[7:11]) }

// ---- Tclunk / Rclunk ----

type Tclunk msg

func (t Tclunk) Len() int64  { return msg(t).Len() }
func (t Tclunk) Tag() uint16 { return msg(t).Tag() }
func (t Tclunk) Fid() uint32 { return guint32(t[7:11]) }

type Rclunk msg

func (r Rclunk) Len() int64  { return msg(r).Len() }
func (r Rclunk) Tag() uint16 { return msg(r).Tag() }

// ---- Tremove / Rremove ----

type Tremove msg

func (t Tremove) Len() int64  { return msg(t).Len() }
func (t Tremove) Tag() uint16 { return msg(t).Tag() }
func (t Tremove) Fid() uint32 { return guint32(t[7:11]) }

type Rremove msg

func (r Rremove) Len() int64  { return msg(r).Len() }
func (r Rremove) Tag() uint16 { return msg(r).Tag() }
