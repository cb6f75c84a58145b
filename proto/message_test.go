package proto

import (
	"bufio"
	"bytes"
	"testing"
)

// putString writes a 9P string field (uint16 length prefix + bytes)
// at buf[off:] and returns the offset just past it.
func putString(buf []byte, off int, s string) int {
	puint16(buf[off:], uint16(len(s)))
	off += 2
	off += copy(buf[off:], s)
	return off
}

func putHeader(buf []byte, mtype uint8, tag uint16) {
	puint32(buf[0:4], uint32(len(buf)))
	buf[4] = mtype
	puint16(buf[5:7], tag)
}

func buildTversion(tag uint16, maxSize uint32, version string) []byte {
	size := 7 + 4 + 2 + len(version)
	buf := make([]byte, size)
	putHeader(buf, Tversion, tag)
	puint32(buf[7:11], maxSize)
	putString(buf, 11, version)
	return buf
}

func buildTattach(tag uint16, fid, afid uint32, uname, aname string) []byte {
	size := 7 + 4 + 4 + 2 + len(uname) + 2 + len(aname) + 4
	buf := make([]byte, size)
	putHeader(buf, Tattach, tag)
	puint32(buf[7:11], fid)
	puint32(buf[11:15], afid)
	off := putString(buf, 15, uname)
	off = putString(buf, off, aname)
	puint32(buf[off:off+4], 0xFFFFFFFF) // n_uname: NONUNAME
	return buf
}

func buildTwalk(tag uint16, fid, newfid uint32, names []string) []byte {
	size := 7 + 4 + 4 + 2
	for _, n := range names {
		size += 2 + len(n)
	}
	buf := make([]byte, size)
	putHeader(buf, Twalk, tag)
	puint32(buf[7:11], fid)
	puint32(buf[11:15], newfid)
	puint16(buf[15:17], uint16(len(names)))
	off := 17
	for _, n := range names {
		off = putString(buf, off, n)
	}
	return buf
}

func decodeOne(t *testing.T, buf []byte) Msg {
	t.Helper()
	d := NewDecoder(bytes.NewReader(buf))
	if !d.Next() {
		t.Fatalf("Next: %v", d.Err())
	}
	return d.Msg()
}

func TestDecodeTversion(t *testing.T) {
	buf := buildTversion(NoTag, 1<<20, "9P2000.L")
	m := decodeOne(t, buf)
	tv, ok := m.(Tversion)
	if !ok {
		t.Fatalf("got %T, want Tversion", m)
	}
	if tv.MaxSize() != 1<<20 {
		t.Errorf("MaxSize = %d, want %d", tv.MaxSize(), 1<<20)
	}
	if string(tv.Version()) != "9P2000.L" {
		t.Errorf("Version = %q", tv.Version())
	}
	if tv.Tag() != NoTag {
		t.Errorf("Tag = %d, want NoTag", tv.Tag())
	}
}

func TestDecodeTattach(t *testing.T) {
	buf := buildTattach(7, 1, NoFid, "alice", "export")
	m := decodeOne(t, buf)
	ta, ok := m.(Tattach)
	if !ok {
		t.Fatalf("got %T, want Tattach", m)
	}
	if ta.Fid() != 1 || ta.Afid() != NoFid {
		t.Errorf("Fid/Afid = %d/%d", ta.Fid(), ta.Afid())
	}
	if string(ta.Uname()) != "alice" || string(ta.Aname()) != "export" {
		t.Errorf("Uname/Aname = %q/%q", ta.Uname(), ta.Aname())
	}
	if ta.Tag() != 7 {
		t.Errorf("Tag = %d, want 7", ta.Tag())
	}
}

func TestDecodeTwalkRoundtrip(t *testing.T) {
	names := []string{"a", "bb", "ccc"}
	buf := buildTwalk(3, 1, 2, names)
	m := decodeOne(t, buf)
	tw, ok := m.(Twalk)
	if !ok {
		t.Fatalf("got %T, want Twalk", m)
	}
	if tw.Fid() != 1 || tw.Newfid() != 2 {
		t.Errorf("Fid/Newfid = %d/%d", tw.Fid(), tw.Newfid())
	}
	got := tw.Wname()
	if len(got) != len(names) {
		t.Fatalf("Wname len = %d, want %d", len(got), len(names))
	}
	for i, n := range names {
		if string(got[i]) != n {
			t.Errorf("Wname[%d] = %q, want %q", i, got[i], n)
		}
	}
}

func TestBadMessageOnShortFrame(t *testing.T) {
	buf := buildTversion(NoTag, 1<<20, "9P2000.L")
	buf = buf[:len(buf)-1] // truncate the version string by one byte
	buint32(buf[0:4], uint32(len(buf)))
	m := decodeOne(t, buf)
	if _, ok := m.(BadMessage); !ok {
		t.Fatalf("got %T, want BadMessage", m)
	}
}

func TestEncoderRversionRoundtrip(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(bufio.NewWriter(&out))
	if err := enc.WriteRversion(NoTag, 1<<20, []byte("9P2000.L")); err != nil {
		t.Fatal(err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatal(err)
	}
	m := decodeOne(t, out.Bytes())
	rv, ok := m.(Rversion)
	if !ok {
		t.Fatalf("got %T, want Rversion", m)
	}
	if rv.MaxSize() != 1<<20 || string(rv.Version()) != "9P2000.L" {
		t.Errorf("Rversion = %d %q", rv.MaxSize(), rv.Version())
	}
}

func TestEncoderRwalkRoundtrip(t *testing.T) {
	qids := []Qid{
		mustQid(t, QTDIR, 1, 100),
		mustQid(t, 0, 2, 101),
	}
	var out bytes.Buffer
	enc := NewEncoder(bufio.NewWriter(&out))
	if err := enc.WriteRwalk(9, qids); err != nil {
		t.Fatal(err)
	}
	enc.Flush()
	m := decodeOne(t, out.Bytes())
	rw, ok := m.(Rwalk)
	if !ok {
		t.Fatalf("got %T, want Rwalk", m)
	}
	got := rw.Wqid()
	if len(got) != 2 {
		t.Fatalf("Wqid len = %d, want 2", len(got))
	}
	if rw.Tag() != 9 {
		t.Errorf("Tag = %d, want 9", rw.Tag())
	}
}

func mustQid(t *testing.T, qtype uint8, version uint32, path uint64) Qid {
	t.Helper()
	q, _, err := NewQid(make([]byte, QidLen), qtype, version, path)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestCloneCopiesBytes(t *testing.T) {
	stream := append(buildTattach(1, 1, NoFid, "bob", "x"), buildTattach(2, 5, NoFid, "mallory", "y")...)
	d := NewDecoder(bytes.NewReader(stream))
	if !d.Next() {
		t.Fatalf("Next: %v", d.Err())
	}
	cloned := Clone(d.Msg())
	ta := cloned.(Tattach)

	// Decoding the second message reuses d's internal buffer, which
	// would corrupt an un-cloned view of the first message.
	if !d.Next() {
		t.Fatalf("Next: %v", d.Err())
	}

	if string(ta.Uname()) != "bob" {
		t.Errorf("clone corrupted by later decode: Uname = %q, want bob", ta.Uname())
	}
}
