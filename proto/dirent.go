package proto

// AppendDirent appends one directory entry — qid[13] offset[8]
// type[1] name[2+n] — to buf in the wire format Rreaddir's data
// payload is made of, and returns the extended slice. offset is the
// opaque cookie a subsequent Treaddir should resume after; type is
// the DT_* directory-entry type byte from POSIX readdir(3), not a
// Qid type.
func AppendDirent(buf []byte, qid Qid, offset uint64, dtype uint8, name []byte) []byte {
	buf = append(buf, qid...)
	var off [8]byte
	buint64(off[:], offset)
	buf = append(buf, off[:]...)
	buf = append(buf, dtype)
	var n [2]byte
	buint16(n[:], uint16(len(name)))
	buf = append(buf, n[:]...)
	buf = append(buf, name...)
	return buf
}

// DirentSize returns the encoded size of a directory entry named
// name, letting callers stop filling an Rreaddir buffer before they
// overflow the client's requested count.
func DirentSize(name []byte) int {
	return QidLen + 8 + 1 + 2 + len(name)
}

// Dt* are the POSIX readdir(3) d_type values 9P2000.L dirents carry.
const (
	DtUnknown = 0
	DtFifo    = 1
	DtChr     = 2
	DtDir     = 4
	DtBlk     = 6
	DtReg     = 8
	DtLnk     = 10
	DtSock    = 12
)
