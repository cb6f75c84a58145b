// Package fidtable implements the per-connection table mapping a
// client-chosen fid number to the server-side file handle it
// designates.
package fidtable

import "github.com/chaos/ninepd/internal/safemap"

// Table is a per-connection fid table. The zero value is ready to
// use. A Table is safe for concurrent use by the connection's worker
// goroutines.
type Table[F any] struct {
	m safemap.Map[uint32, *F]
}

// Add associates fid with f, unless fid is already in use, in which
// case Add reports false and leaves the table unchanged. This is the
// precondition TWALK-into-an-existing-fid and double-TATTACH must
// both fail on.
func (t *Table[F]) Add(fid uint32, f *F) bool {
	return t.m.Add(fid, f)
}

// Get retrieves the handle associated with fid.
func (t *Table[F]) Get(fid uint32) (*F, bool) {
	return t.m.Get(fid)
}

// Del removes fid from the table, returning its handle if present.
// Callers are responsible for releasing any resources the handle
// holds (open file descriptors, xattr state, locks) before or after
// calling Del; the table itself holds no cleanup logic.
func (t *Table[F]) Del(fid uint32) (*F, bool) {
	return t.m.Del(fid)
}

// Len reports how many fids are currently live on the connection.
func (t *Table[F]) Len() int {
	return t.m.Len()
}

// Range calls f for every live fid. Range stops early if f returns
// false. Used by connection teardown to release every handle at once.
func (t *Table[F]) Range(f func(fid uint32, h *F) bool) {
	t.m.Range(f)
}
