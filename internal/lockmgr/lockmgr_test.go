package lockmgr

import (
	"testing"

	"github.com/chaos/ninepd/proto"
)

func TestNonOverlappingLocksBothSucceed(t *testing.T) {
	m := New()
	l1 := Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 1, ClientID: "a"}
	l2 := Lock{Type: proto.LockTypeWrlck, Start: 10, Length: 10, ProcID: 2, ClientID: "b"}
	if got := m.TryLock(1, l1); got != proto.LockSuccess {
		t.Fatalf("l1 = %d, want LockSuccess", got)
	}
	if got := m.TryLock(1, l2); got != proto.LockSuccess {
		t.Fatalf("l2 = %d, want LockSuccess", got)
	}
}

func TestOverlappingWriteLocksFromDifferentOwnersBlock(t *testing.T) {
	m := New()
	l1 := Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 1, ClientID: "a"}
	l2 := Lock{Type: proto.LockTypeWrlck, Start: 5, Length: 10, ProcID: 2, ClientID: "b"}
	m.TryLock(1, l1)
	if got := m.TryLock(1, l2); got != proto.LockBlocked {
		t.Fatalf("l2 = %d, want LockBlocked", got)
	}
}

func TestOverlappingReadLocksDoNotConflict(t *testing.T) {
	m := New()
	l1 := Lock{Type: proto.LockTypeRdlck, Start: 0, Length: 10, ProcID: 1, ClientID: "a"}
	l2 := Lock{Type: proto.LockTypeRdlck, Start: 5, Length: 10, ProcID: 2, ClientID: "b"}
	m.TryLock(1, l1)
	if got := m.TryLock(1, l2); got != proto.LockSuccess {
		t.Fatalf("l2 = %d, want LockSuccess", got)
	}
}

func TestSameOwnerOverlapDoesNotConflict(t *testing.T) {
	m := New()
	l1 := Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 1, ClientID: "a"}
	l2 := Lock{Type: proto.LockTypeWrlck, Start: 5, Length: 10, ProcID: 1, ClientID: "a"}
	m.TryLock(1, l1)
	if got := m.TryLock(1, l2); got != proto.LockSuccess {
		t.Fatalf("l2 = %d, want LockSuccess (same owner)", got)
	}
}

func TestTestReportsConflict(t *testing.T) {
	m := New()
	held := Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 1, ClientID: "a"}
	m.TryLock(1, held)

	query := Lock{Type: proto.LockTypeRdlck, Start: 2, Length: 2, ProcID: 2, ClientID: "b"}
	conflict, ok := m.Test(1, query)
	if !ok {
		t.Fatal("Test: want conflict")
	}
	if conflict.ProcID != 1 {
		t.Errorf("conflict.ProcID = %d, want 1", conflict.ProcID)
	}

	noConflict := Lock{Type: proto.LockTypeRdlck, Start: 20, Length: 5, ProcID: 2, ClientID: "b"}
	if _, ok := m.Test(1, noConflict); ok {
		t.Error("Test: want no conflict for disjoint range")
	}
}

func TestReleaseAllDropsOwnedLocksOnly(t *testing.T) {
	m := New()
	l1 := Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 1, ClientID: "a"}
	l2 := Lock{Type: proto.LockTypeWrlck, Start: 20, Length: 10, ProcID: 2, ClientID: "b"}
	m.TryLock(1, l1)
	m.TryLock(1, l2)

	m.ReleaseAll(1, 1, "a")

	query := Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 3, ClientID: "c"}
	if _, ok := m.Test(1, query); ok {
		t.Error("Test: l1's range should be free after ReleaseAll")
	}
	query2 := Lock{Type: proto.LockTypeWrlck, Start: 20, Length: 10, ProcID: 3, ClientID: "c"}
	if _, ok := m.Test(1, query2); !ok {
		t.Error("Test: l2 should still hold after ReleaseAll(proc 1)")
	}
}

func TestUnlockClearsRange(t *testing.T) {
	m := New()
	l1 := Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 1, ClientID: "a"}
	m.TryLock(1, l1)

	unlock := Lock{Type: proto.LockTypeUnlck, Start: 0, Length: 10, ProcID: 1, ClientID: "a"}
	if got := m.TryLock(1, unlock); got != proto.LockSuccess {
		t.Fatalf("unlock = %d, want LockSuccess", got)
	}

	query := Lock{Type: proto.LockTypeWrlck, Start: 0, Length: 10, ProcID: 2, ClientID: "b"}
	if got := m.TryLock(1, query); got != proto.LockSuccess {
		t.Fatalf("query after unlock = %d, want LockSuccess", got)
	}
}
