package proto

import (
	"bufio"
	"sync"
)

// An Encoder writes 9P2000.L response messages to an underlying
// io.Writer. It is safe for concurrent use by multiple goroutines;
// each Write* method is atomic with respect to other calls. Encoder
// only knows how to write server-to-client (R-prefixed) messages: a
// 9P2000.L server never originates a T-message.
type Encoder struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func NewEncoder(w *bufio.Writer) *Encoder {
	return &Encoder{w: w}
}

// Flush writes any buffered messages to the underlying writer.
func (e *Encoder) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.w.Flush()
}

func (e *Encoder) write(size uint32, mtype uint8, tag uint16, body func(w *ErrWriter)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	w := &ErrWriter{W: e.w}
	pheader(w, size, mtype, tag)
	body(w)
	return w.Err
}

func (e *Encoder) WriteRversion(tag uint16, maxSize uint32, version []byte) error {
	if len(version) > MaxVersionLen {
		version = version[:MaxVersionLen]
	}
	size := uint32(7 + 4 + 2 + len(version))
	return e.write(size, Rversion, tag, func(w *ErrWriter) {
		var b [4]byte
		puint32(b[:], maxSize)
		w.Write(b[:])
		pstring(w, version)
	})
}

func (e *Encoder) WriteRlerror(tag uint16, errno uint32) error {
	return e.write(11, Rlerror, tag, func(w *ErrWriter) {
		var b [4]byte
		puint32(b[:], errno)
		w.Write(b[:])
	})
}

func (e *Encoder) WriteRauth(tag uint16, aqid Qid) error {
	return e.write(20, Rauth, tag, func(w *ErrWriter) { pqid(w, aqid) })
}

func (e *Encoder) WriteRattach(tag uint16, qid Qid) error {
	return e.write(20, Rattach, tag, func(w *ErrWriter) { pqid(w, qid) })
}

func (e *Encoder) WriteRflush(tag uint16) error {
	return e.write(7, Rflush, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRwalk(tag uint16, wqid []Qid) error {
	if len(wqid) > MaxWElem {
		wqid = wqid[:MaxWElem]
	}
	size := uint32(7 + 2 + len(wqid)*QidLen)
	return e.write(size, Rwalk, tag, func(w *ErrWriter) {
		var b [2]byte
		puint16(b[:], uint16(len(wqid)))
		w.Write(b[:])
		for _, q := range wqid {
			pqid(w, q)
		}
	})
}

func (e *Encoder) WriteRstatfs(tag uint16, fstype, bsize uint32, blocks, bfree, bavail, files, ffree, fsid uint64, namelen uint32) error {
	return e.write(67, Rstatfs, tag, func(w *ErrWriter) {
		var b [60]byte
		puint32(b[0:4], fstype)
		puint32(b[4:8], bsize)
		puint64(b[8:16], blocks)
		puint64(b[16:24], bfree)
		puint64(b[24:32], bavail)
		puint64(b[32:40], files)
		puint64(b[40:48], ffree)
		puint64(b[48:56], fsid)
		puint32(b[56:60], namelen)
		w.Write(b[:])
	})
}

// StatfsInfo bundles Rstatfs's fields the way Attr bundles Rgetattr's.
type StatfsInfo struct {
	Type    uint32
	Bsize   uint32
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Files   uint64
	Ffree   uint64
	Fsid    uint64
	Namelen uint32
}

func (e *Encoder) WriteRstatfsInfo(tag uint16, s StatfsInfo) error {
	return e.WriteRstatfs(tag, s.Type, s.Bsize, s.Blocks, s.Bfree, s.Bavail, s.Files, s.Ffree, s.Fsid, s.Namelen)
}

func (e *Encoder) WriteRlopen(tag uint16, qid Qid, iounit uint32) error {
	return e.write(24, Rlopen, tag, func(w *ErrWriter) {
		pqid(w, qid)
		var b [4]byte
		puint32(b[:], iounit)
		w.Write(b[:])
	})
}

func (e *Encoder) WriteRlcreate(tag uint16, qid Qid, iounit uint32) error {
	return e.write(24, Rlcreate, tag, func(w *ErrWriter) {
		pqid(w, qid)
		var b [4]byte
		puint32(b[:], iounit)
		w.Write(b[:])
	})
}

func (e *Encoder) WriteRsymlink(tag uint16, qid Qid) error {
	return e.write(20, Rsymlink, tag, func(w *ErrWriter) { pqid(w, qid) })
}

func (e *Encoder) WriteRmknod(tag uint16, qid Qid) error {
	return e.write(20, Rmknod, tag, func(w *ErrWriter) { pqid(w, qid) })
}

func (e *Encoder) WriteRrename(tag uint16) error {
	return e.write(7, Rrename, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRreadlink(tag uint16, target []byte) error {
	if len(target) > MaxSymtgtLen {
		target = target[:MaxSymtgtLen]
	}
	size := uint32(7 + 2 + len(target))
	return e.write(size, Rreadlink, tag, func(w *ErrWriter) { pstring(w, target) })
}

// Attr carries the Rgetattr/Tsetattr field set in one place so
// callers in internal/fsbackend don't need to juggle two dozen
// positional arguments.
type Attr struct {
	Valid       uint64
	Qid         Qid
	Mode        uint32
	UID, GID    uint32
	Nlink       uint64
	Rdev        uint64
	Size        uint64
	Blksize     uint64
	Blocks      uint64
	AtimeSec, AtimeNsec uint64
	MtimeSec, MtimeNsec uint64
	CtimeSec, CtimeNsec uint64
	BtimeSec, BtimeNsec uint64
	Gen         uint64
	DataVersion uint64
}

func (e *Encoder) WriteRgetattr(tag uint16, a Attr) error {
	return e.write(160, Rgetattr, tag, func(w *ErrWriter) {
		var b [8]byte
		puint64(b[:], a.Valid)
		w.Write(b[:])
		pqid(w, a.Qid)
		var fixed [145 - QidLen]byte
		i := 0
		put32 := func(v uint32) { puint32(fixed[i:i+4], v); i += 4 }
		put64 := func(v uint64) { puint64(fixed[i:i+8], v); i += 8 }
		put32(a.Mode)
		put32(a.UID)
		put32(a.GID)
		put64(a.Nlink)
		put64(a.Rdev)
		put64(a.Size)
		put64(a.Blksize)
		put64(a.Blocks)
		put64(a.AtimeSec)
		put64(a.AtimeNsec)
		put64(a.MtimeSec)
		put64(a.MtimeNsec)
		put64(a.CtimeSec)
		put64(a.CtimeNsec)
		put64(a.BtimeSec)
		put64(a.BtimeNsec)
		put64(a.Gen)
		put64(a.DataVersion)
		w.Write(fixed[:])
	})
}

func (e *Encoder) WriteRsetattr(tag uint16) error {
	return e.write(7, Rsetattr, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRxattrwalk(tag uint16, size uint64) error {
	return e.write(15, Rxattrwalk, tag, func(w *ErrWriter) {
		var b [8]byte
		puint64(b[:], size)
		w.Write(b[:])
	})
}

func (e *Encoder) WriteRxattrcreate(tag uint16) error {
	return e.write(7, Rxattrcreate, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRreaddir(tag uint16, data []byte) error {
	size := uint32(7 + 4 + len(data))
	return e.write(size, Rreaddir, tag, func(w *ErrWriter) {
		var b [4]byte
		puint32(b[:], uint32(len(data)))
		w.Write(b[:])
		w.Write(data)
	})
}

func (e *Encoder) WriteRfsync(tag uint16) error {
	return e.write(7, Rfsync, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRlock(tag uint16, status uint8) error {
	return e.write(8, Rlock, tag, func(w *ErrWriter) { w.Write([]byte{status}) })
}

func (e *Encoder) WriteRgetlock(tag uint16, ltype uint8, start, length uint64, procID uint32, clientID []byte) error {
	if len(clientID) > MaxClientIDLen {
		clientID = clientID[:MaxClientIDLen]
	}
	size := uint32(7 + 1 + 8 + 8 + 4 + 2 + len(clientID))
	return e.write(size, Rgetlock, tag, func(w *ErrWriter) {
		w.Write([]byte{ltype})
		var b [20]byte
		puint64(b[0:8], start)
		puint64(b[8:16], length)
		puint32(b[16:20], procID)
		w.Write(b[:])
		pstring(w, clientID)
	})
}

func (e *Encoder) WriteRlink(tag uint16) error {
	return e.write(7, Rlink, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRmkdir(tag uint16, qid Qid) error {
	return e.write(20, Rmkdir, tag, func(w *ErrWriter) { pqid(w, qid) })
}

func (e *Encoder) WriteRrenameat(tag uint16) error {
	return e.write(7, Rrenameat, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRunlinkat(tag uint16) error {
	return e.write(7, Runlinkat, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRread(tag uint16, data []byte) error {
	size := uint32(7 + 4 + len(data))
	return e.write(size, Rread, tag, func(w *ErrWriter) {
		var b [4]byte
		puint32(b[:], uint32(len(data)))
		w.Write(b[:])
		w.Write(data)
	})
}

func (e *Encoder) WriteRwrite(tag uint16, count uint32) error {
	return e.write(11, Rwrite, tag, func(w *ErrWriter) {
		var b [4]byte
		puint32(b[:], count)
		w.Write(b[:])
	})
}

func (e *Encoder) WriteRclunk(tag uint16) error {
	return e.write(7, Rclunk, tag, func(w *ErrWriter) {})
}

func (e *Encoder) WriteRremove(tag uint16) error {
	return e.write(7, Rremove, tag, func(w *ErrWriter) {})
}
