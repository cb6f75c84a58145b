package qidgen

import (
	"testing"

	"github.com/chaos/ninepd/proto"
)

func TestQidStableUntilBump(t *testing.T) {
	g := New()
	q1 := g.Qid(42, 0100644)
	q2 := g.Qid(42, 0100644)
	if q1.Version() != q2.Version() {
		t.Errorf("Version changed without a Bump: %d vs %d", q1.Version(), q2.Version())
	}
	if q1.Path() != 42 {
		t.Errorf("Path = %d, want 42", q1.Path())
	}
}

func TestBumpAdvancesVersion(t *testing.T) {
	g := New()
	q1 := g.Qid(1, 0100644)
	g.Bump(1)
	q2 := g.Qid(1, 0100644)
	if q2.Version() != q1.Version()+1 {
		t.Errorf("Version after Bump = %d, want %d", q2.Version(), q1.Version()+1)
	}
}

func TestQidTypeFromMode(t *testing.T) {
	g := New()
	const sIFDIR = 0040000
	const sIFLNK = 0120000
	const sIFREG = 0100000
	if got := g.Qid(1, sIFDIR).Type(); got != proto.QTDIR {
		t.Errorf("dir type = %d, want QTDIR", got)
	}
	if got := g.Qid(2, sIFLNK).Type(); got != proto.QTSYMLNK {
		t.Errorf("symlink type = %d, want QTSYMLNK", got)
	}
	if got := g.Qid(3, sIFREG).Type(); got != proto.QTFILE {
		t.Errorf("regular type = %d, want QTFILE", got)
	}
}

func TestForgetResetsVersionCounter(t *testing.T) {
	g := New()
	g.Bump(7)
	g.Bump(7)
	g.Forget(7)
	q := g.Qid(7, 0100644)
	if q.Version() != 0 {
		t.Errorf("Version after Forget = %d, want 0", q.Version())
	}
}
