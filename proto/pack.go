package proto

import "encoding/binary"

var (
	guint16 = binary.LittleEndian.Uint16
	guint32 = binary.LittleEndian.Uint32
	guint64 = binary.LittleEndian.Uint64

	buint16 = binary.LittleEndian.PutUint16
	buint32 = binary.LittleEndian.PutUint32
	buint64 = binary.LittleEndian.PutUint64
)

func puint8(b []byte, v uint8)   { b[0] = v }
func puint16(b []byte, v uint16) { buint16(b, v) }
func puint32(b []byte, v uint32) { buint32(b, v) }
func puint64(b []byte, v uint64) { buint64(b, v) }

// pstring writes a 9P string: a uint16 length prefix followed by the
// raw bytes. It does not validate length or content; callers must
// check MaxFilenameLen/MaxUnameLen/etc. before calling.
func pstring(w *ErrWriter, s []byte) {
	var lenbuf [2]byte
	puint16(lenbuf[:], uint16(len(s)))
	w.Write(lenbuf[:])
	w.Write(s)
}

// pheader writes the common size[4] type[1] tag[2] envelope. size is
// the total message length including the header itself.
func pheader(w *ErrWriter, size uint32, mtype uint8, tag uint16) {
	var buf [7]byte
	puint32(buf[0:4], size)
	buf[4] = mtype
	puint16(buf[5:7], tag)
	w.Write(buf[:])
}

func pqid(w *ErrWriter, q Qid) {
	w.Write(q)
}
