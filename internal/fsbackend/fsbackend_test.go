package fsbackend

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/chaos/ninepd/internal/identity"
	"github.com/chaos/ninepd/internal/lockmgr"
	"github.com/chaos/ninepd/proto"
)

func testUser() *identity.User {
	return &identity.User{UID: uint32(os.Getuid()), GID: uint32(os.Getgid()), Name: "tester"}
}

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	return NewBackend(t.TempDir())
}

func rootHandle(t *testing.T, b *Backend) *Handle {
	t.Helper()
	h, err := b.RootHandle(testUser())
	if err != nil {
		t.Fatalf("RootHandle: %v", err)
	}
	return h
}

func TestWalkDescendsAndReportsPartial(t *testing.T) {
	b := newTestBackend(t)
	if err := os.MkdirAll(filepath.Join(b.Root, "a", "b"), 0755); err != nil {
		t.Fatal(err)
	}
	root := rootHandle(t, b)

	qids, nh, err := b.Walk(root, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(qids) != 2 {
		t.Fatalf("len(qids) = %d, want 2", len(qids))
	}
	if nh.path != "a/b" {
		t.Errorf("nh.path = %q, want a/b", nh.path)
	}

	qids, nh, err = b.Walk(root, []string{"a", "missing", "c"})
	if err == nil {
		t.Fatal("Walk: want error for missing component")
	}
	if len(qids) != 1 {
		t.Fatalf("partial walk len(qids) = %d, want 1", len(qids))
	}
	if nh != nil {
		t.Errorf("nh = %+v, want nil on partial walk", nh)
	}
}

func TestWalkZeroElementsClonesFid(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)
	qids, nh, err := b.Walk(root, nil)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(qids) != 0 {
		t.Errorf("len(qids) = %d, want 0", len(qids))
	}
	if nh == nil || nh.path != root.path {
		t.Errorf("nh = %+v, want clone of root", nh)
	}
}

func TestWalkRejectsEscapeAboveRoot(t *testing.T) {
	b := newTestBackend(t)
	if err := os.Mkdir(filepath.Join(b.Root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	root := rootHandle(t, b)
	_, sub, err := b.Walk(root, []string{"sub"})
	if err != nil {
		t.Fatalf("Walk sub: %v", err)
	}
	if _, _, err := b.Walk(sub, []string{"..", ".."}); err == nil {
		t.Error("Walk: want error escaping above export root")
	}
}

func TestLcreateWriteReadRoundtrip(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)

	_, _, err := b.Lcreate(root, "f", 1 /* O_WRONLY */, 0644, testUser())
	if err != nil {
		t.Fatalf("Lcreate: %v", err)
	}

	data := []byte("hello world")
	n, err := b.WriteAt(root, data, 0)
	if err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if n != len(data) {
		t.Fatalf("WriteAt n = %d, want %d", n, len(data))
	}
	if err := b.Clunk(root); err != nil {
		t.Fatalf("Clunk: %v", err)
	}

	rh, err := b.RootHandle(testUser())
	if err != nil {
		t.Fatal(err)
	}
	qids, nh, err := b.Walk(rh, []string{"f"})
	if err != nil || len(qids) != 1 {
		t.Fatalf("Walk f: qids=%v err=%v", qids, err)
	}
	if _, _, err := b.Lopen(nh, 0 /* O_RDONLY */); err != nil {
		t.Fatalf("Lopen: %v", err)
	}
	buf := make([]byte, len(data))
	n, err = b.ReadAt(nh, buf, 0)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(buf[:n], data) {
		t.Errorf("ReadAt = %q, want %q", buf[:n], data)
	}
}

func TestMkdirAndReaddir(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)

	if _, err := b.Mkdir(root, "d", 0755, testUser()); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	for _, name := range []string{"x", "y", "z"} {
		if _, _, err := b.Lcreate(&Handle{path: "d", user: testUser()}, name, 1, 0644, testUser()); err != nil {
			t.Fatalf("Lcreate %s: %v", name, err)
		}
	}

	dh := &Handle{path: "d", user: testUser()}
	if _, _, err := b.Lopen(dh, 0); err != nil {
		t.Fatalf("Lopen dir: %v", err)
	}
	buf, err := b.Readdir(dh, 0, 1<<16)
	if err != nil {
		t.Fatalf("Readdir: %v", err)
	}
	if len(buf) == 0 {
		t.Fatal("Readdir returned no entries")
	}
}

func TestSetattrSizeTruncates(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)
	if _, _, err := b.Lcreate(root, "f", 1, 0644, testUser()); err != nil {
		t.Fatal(err)
	}
	if _, err := b.WriteAt(root, []byte("0123456789"), 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Setattr(root, proto.SetattrSize, proto.Attr{Size: 4}); err != nil {
		t.Fatalf("Setattr: %v", err)
	}
	attr, err := b.Getattr(root, proto.GetattrAll)
	if err != nil {
		t.Fatal(err)
	}
	if attr.Size != 4 {
		t.Errorf("Size = %d, want 4", attr.Size)
	}
}

func TestRenameMovesFileAndUpdatesHandlePath(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)
	if _, err := b.Mkdir(root, "dst", 0755, testUser()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.Lcreate(root, "f", 1, 0644, testUser()); err != nil {
		t.Fatal(err)
	}
	fh := &Handle{path: "f", user: testUser()}
	dst := &Handle{path: "dst", user: testUser()}
	if err := b.Rename(fh, dst, "g"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if fh.path != "dst/g" {
		t.Errorf("fh.path = %q, want dst/g", fh.path)
	}
	if _, err := os.Lstat(filepath.Join(b.Root, "dst", "g")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestXattrCreateCommitsOnClunk(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)
	if _, _, err := b.Lcreate(root, "f", 1, 0644, testUser()); err != nil {
		t.Fatal(err)
	}
	fh := &Handle{path: "f", user: testUser()}

	if err := b.Xattrcreate(fh, "user.note", 5, 0); err != nil {
		t.Fatalf("Xattrcreate: %v", err)
	}
	if !b.IsXattrCreate(fh) {
		t.Fatal("IsXattrCreate = false, want true")
	}
	if _, err := b.XattrWrite(fh, []byte("hello")); err != nil {
		t.Fatalf("XattrWrite: %v", err)
	}
	if err := b.Clunk(fh); err != nil {
		t.Fatalf("Clunk: %v", err)
	}

	wh := &Handle{path: "f", user: testUser()}
	nh, size, err := b.Xattrwalk(wh, "user.note")
	if err != nil {
		t.Fatalf("Xattrwalk: %v", err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	got, err := b.XattrRead(nh)
	if err != nil {
		t.Fatalf("XattrRead: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("XattrRead = %q, want hello", got)
	}
}

func TestXattrCreateSizeMismatchFailsOnClunk(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)
	if _, _, err := b.Lcreate(root, "f", 1, 0644, testUser()); err != nil {
		t.Fatal(err)
	}
	fh := &Handle{path: "f", user: testUser()}
	if err := b.Xattrcreate(fh, "user.note", 5, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := b.XattrWrite(fh, []byte("ab")); err != nil {
		t.Fatal(err)
	}
	if err := b.Clunk(fh); err == nil {
		t.Error("Clunk: want size-mismatch error, got nil")
	}
}

func TestLockThenConflictThenRelease(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)
	if _, _, err := b.Lcreate(root, "f", 1, 0644, testUser()); err != nil {
		t.Fatal(err)
	}
	fh := &Handle{path: "f", user: testUser()}

	l1 := lockmgr.Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 1, ClientID: "c1"}
	status, err := b.Lock(fh, l1)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if status != proto.LockSuccess {
		t.Fatalf("status = %d, want LockSuccess", status)
	}

	l2 := lockmgr.Lock{Type: proto.LockTypeWrlck, Start: 5, Length: 10, ProcID: 2, ClientID: "c2"}
	conflict, err := b.Getlock(fh, l2)
	if err != nil {
		t.Fatalf("Getlock: %v", err)
	}
	if conflict.Type != proto.LockTypeWrlck || conflict.ProcID != 1 {
		t.Errorf("Getlock = %+v, want conflict against proc 1", conflict)
	}

	status, err = b.Lock(fh, l2)
	if err != nil {
		t.Fatalf("Lock l2: %v", err)
	}
	if status != proto.LockBlocked {
		t.Fatalf("status = %d, want LockBlocked", status)
	}

	if err := b.Clunk(fh); err != nil {
		t.Fatalf("Clunk: %v", err)
	}
}

func TestRemoveThenClunk(t *testing.T) {
	b := newTestBackend(t)
	root := rootHandle(t, b)
	if _, _, err := b.Lcreate(root, "f", 1, 0644, testUser()); err != nil {
		t.Fatal(err)
	}
	fh := &Handle{path: "f", user: testUser()}
	if err := b.Remove(fh); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(b.Root, "f")); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove: %v", err)
	}
	if err := b.Clunk(fh); err != nil {
		t.Errorf("Clunk after Remove: %v", err)
	}
}
