package fidtable

import "testing"

type dummy struct {
	name string
}

func TestAddGetDel(t *testing.T) {
	var tbl Table[dummy]
	if !tbl.Add(1, &dummy{name: "root"}) {
		t.Fatal("Add: want success")
	}
	if tbl.Add(1, &dummy{name: "dup"}) {
		t.Fatal("Add: duplicate fid should fail")
	}
	f, ok := tbl.Get(1)
	if !ok || f.name != "root" {
		t.Fatalf("Get = %+v, %v", f, ok)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}
	got, ok := tbl.Del(1)
	if !ok || got.name != "root" {
		t.Fatalf("Del = %+v, %v", got, ok)
	}
	if _, ok := tbl.Get(1); ok {
		t.Error("Get after Del: still present")
	}
}

func TestRangeVisitsAll(t *testing.T) {
	var tbl Table[dummy]
	tbl.Add(1, &dummy{name: "a"})
	tbl.Add(2, &dummy{name: "b"})
	tbl.Add(3, &dummy{name: "c"})
	seen := map[uint32]bool{}
	tbl.Range(func(fid uint32, h *dummy) bool {
		seen[fid] = true
		return true
	})
	if len(seen) != 3 {
		t.Errorf("saw %d fids, want 3", len(seen))
	}
}
