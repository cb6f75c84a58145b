package ninepd

import (
	"bufio"
	"context"
	"encoding/binary"
	"net"
	"os/user"
	"testing"
	"time"

	"github.com/chaos/ninepd/internal/netutil"
	"github.com/chaos/ninepd/proto"
)

// currentUsername resolves the user running the test, so exports can
// squash onto a uname guaranteed to exist in the passwd database the
// test host actually has, rather than a plausible but unverifiable
// name like "nobody".
func currentUsername(t *testing.T) string {
	t.Helper()
	u, err := user.Current()
	if err != nil {
		t.Skipf("user.Current: %v", err)
	}
	return u.Username
}

// The helpers below hand-assemble 9P2000.L request messages the way
// a real client library would, so the test drives conn.serve's
// dispatch through an actual wire round trip rather than calling
// internal methods directly.

func putStr(buf []byte, off int, s string) int {
	binary.LittleEndian.PutUint16(buf[off:], uint16(len(s)))
	off += 2
	return off + copy(buf[off:], s)
}

func header(buf []byte, mtype uint8, tag uint16) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	buf[4] = mtype
	binary.LittleEndian.PutUint16(buf[5:7], tag)
}

func tversion(tag uint16, maxSize uint32, version string) []byte {
	buf := make([]byte, 7+4+2+len(version))
	header(buf, proto.Tversion, tag)
	binary.LittleEndian.PutUint32(buf[7:11], maxSize)
	putStr(buf, 11, version)
	return buf
}

func tattach(tag uint16, fid, afid uint32, uname, aname string) []byte {
	buf := make([]byte, 7+4+4+2+len(uname)+2+len(aname)+4)
	header(buf, proto.Tattach, tag)
	binary.LittleEndian.PutUint32(buf[7:11], fid)
	binary.LittleEndian.PutUint32(buf[11:15], afid)
	off := putStr(buf, 15, uname)
	off = putStr(buf, off, aname)
	binary.LittleEndian.PutUint32(buf[off:off+4], 0xFFFFFFFF)
	return buf
}

func twalk(tag uint16, fid, newfid uint32, names []string) []byte {
	size := 7 + 4 + 4 + 2
	for _, n := range names {
		size += 2 + len(n)
	}
	buf := make([]byte, size)
	header(buf, proto.Twalk, tag)
	binary.LittleEndian.PutUint32(buf[7:11], fid)
	binary.LittleEndian.PutUint32(buf[11:15], newfid)
	binary.LittleEndian.PutUint16(buf[15:17], uint16(len(names)))
	off := 17
	for _, n := range names {
		off = putStr(buf, off, n)
	}
	return buf
}

func tlcreate(tag uint16, fid uint32, name string, flags, mode, gid uint32) []byte {
	buf := make([]byte, 7+4+2+len(name)+4+4+4)
	header(buf, proto.Tlcreate, tag)
	binary.LittleEndian.PutUint32(buf[7:11], fid)
	off := putStr(buf, 11, name)
	binary.LittleEndian.PutUint32(buf[off:off+4], flags)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], mode)
	binary.LittleEndian.PutUint32(buf[off+8:off+12], gid)
	return buf
}

func tlopen(tag uint16, fid uint32, flags uint32) []byte {
	buf := make([]byte, 7+4+4)
	header(buf, proto.Tlopen, tag)
	binary.LittleEndian.PutUint32(buf[7:11], fid)
	binary.LittleEndian.PutUint32(buf[11:15], flags)
	return buf
}

func twrite(tag uint16, fid uint32, offset uint64, data []byte) []byte {
	buf := make([]byte, 7+4+8+4+len(data))
	header(buf, proto.Twrite, tag)
	binary.LittleEndian.PutUint32(buf[7:11], fid)
	binary.LittleEndian.PutUint64(buf[11:19], offset)
	binary.LittleEndian.PutUint32(buf[19:23], uint32(len(data)))
	copy(buf[23:], data)
	return buf
}

func tread(tag uint16, fid uint32, offset uint64, count uint32) []byte {
	buf := make([]byte, 7+4+8+4)
	header(buf, proto.Tread, tag)
	binary.LittleEndian.PutUint32(buf[7:11], fid)
	binary.LittleEndian.PutUint64(buf[11:19], offset)
	binary.LittleEndian.PutUint32(buf[19:23], count)
	return buf
}

func tclunk(tag uint16, fid uint32) []byte {
	buf := make([]byte, 7+4)
	header(buf, proto.Tclunk, tag)
	binary.LittleEndian.PutUint32(buf[7:11], fid)
	return buf
}

// testClient wraps a raw net.Conn with a request/response helper that
// writes a request and decodes exactly one reply.
type testClient struct {
	t   *testing.T
	c   net.Conn
	dec *proto.Decoder
}

func newTestClient(t *testing.T, c net.Conn) *testClient {
	return &testClient{t: t, c: c, dec: proto.NewDecoder(bufio.NewReader(c))}
}

func (tc *testClient) roundTrip(req []byte) proto.Msg {
	tc.t.Helper()
	if _, err := tc.c.Write(req); err != nil {
		tc.t.Fatalf("write: %v", err)
	}
	if !tc.dec.Next() {
		tc.t.Fatalf("decode reply: %v", tc.dec.Err())
	}
	return proto.Clone(tc.dec.Msg())
}

func startTestServer(t *testing.T, exports []Export) *testClient {
	t.Helper()
	uname := currentUsername(t)
	for i := range exports {
		exports[i].SquashUser = uname
	}
	ln := &netutil.PipeListener{}
	srv := New(Config{Exports: exports})
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	conn, err := ln.Dial()
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	tc := newTestClient(t, conn)
	rv := tc.roundTrip(tversion(proto.NoTag, 1<<20, "9P2000.L"))
	if _, ok := rv.(proto.Rversion); !ok {
		t.Fatalf("version reply = %T, want Rversion", rv)
	}
	return tc
}

func TestFullSessionAttachWalkCreateWriteReadClunk(t *testing.T) {
	root := t.TempDir()
	tc := startTestServer(t, []Export{{Aname: "test", Root: root}})

	ra := tc.roundTrip(tattach(1, 1, proto.NoFid, "nobody", "test"))
	att, ok := ra.(proto.Rattach)
	if !ok {
		t.Fatalf("attach reply = %T, want Rattach", ra)
	}
	if att.Tag() != 1 {
		t.Errorf("attach Tag = %d, want 1", att.Tag())
	}

	rl := tc.roundTrip(tlcreate(2, 1, "greeting", 1 /* O_WRONLY */, 0644, 0))
	if _, ok := rl.(proto.Rlcreate); !ok {
		t.Fatalf("lcreate reply = %T, want Rlcreate", rl)
	}

	data := []byte("hello from a wire test")
	rw := tc.roundTrip(twrite(3, 1, 0, data))
	wr, ok := rw.(proto.Rwrite)
	if !ok {
		t.Fatalf("write reply = %T, want Rwrite", rw)
	}
	if int(wr.Count()) != len(data) {
		t.Errorf("write Count = %d, want %d", wr.Count(), len(data))
	}

	rc := tc.roundTrip(tclunk(4, 1))
	if _, ok := rc.(proto.Rclunk); !ok {
		t.Fatalf("clunk reply = %T, want Rclunk", rc)
	}

	ra2 := tc.roundTrip(tattach(5, 2, proto.NoFid, "nobody", "test"))
	if _, ok := ra2.(proto.Rattach); !ok {
		t.Fatalf("second attach reply = %T, want Rattach", ra2)
	}

	rwalk := tc.roundTrip(twalk(6, 2, 3, []string{"greeting"}))
	wk, ok := rwalk.(proto.Rwalk)
	if !ok {
		t.Fatalf("walk reply = %T, want Rwalk", rwalk)
	}
	if len(wk.Wqid()) != 1 {
		t.Fatalf("walk Wqid len = %d, want 1", len(wk.Wqid()))
	}

	rlo := tc.roundTrip(tlopen(7, 3, 0 /* O_RDONLY */))
	if _, ok := rlo.(proto.Rlopen); !ok {
		t.Fatalf("lopen reply = %T, want Rlopen", rlo)
	}

	rrd := tc.roundTrip(tread(8, 3, 0, uint32(len(data))))
	rr, ok := rrd.(proto.Rread)
	if !ok {
		t.Fatalf("read reply = %T, want Rread", rrd)
	}
	if string(rr.Data()) != string(data) {
		t.Errorf("read Data = %q, want %q", rr.Data(), data)
	}
}

func TestAttachToUnknownExportFails(t *testing.T) {
	root := t.TempDir()
	tc := startTestServer(t, []Export{{Aname: "test", Root: root}})

	r := tc.roundTrip(tattach(1, 1, proto.NoFid, "nobody", "nosuch"))
	if _, ok := r.(proto.Rlerror); !ok {
		t.Fatalf("attach to unknown export = %T, want Rlerror", r)
	}
}

func TestWriteRejectedOnReadOnlyExport(t *testing.T) {
	root := t.TempDir()
	tc := startTestServer(t, []Export{{Aname: "test", Root: root, ReadOnly: true}})

	r := tc.roundTrip(tattach(1, 1, proto.NoFid, "nobody", "test"))
	if _, ok := r.(proto.Rattach); !ok {
		t.Fatalf("attach = %T, want Rattach", r)
	}
	r2 := tc.roundTrip(tlcreate(2, 1, "nope", 1, 0644, 0))
	if _, ok := r2.(proto.Rlerror); !ok {
		t.Fatalf("lcreate on read-only export = %T, want Rlerror", r2)
	}
}
