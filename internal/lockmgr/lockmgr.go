// Package lockmgr emulates POSIX record locks (fcntl F_SETLK/F_GETLK
// semantics) at the granularity TLOCK/TGETLOCK need. A real fcntl
// lock is scoped to a process, not a thread or file descriptor,
// which does not match a multi-connection, multi-fid server sharing
// one process: diod's POSIX-backed export works around the same
// mismatch by keeping its own lock table rather than trusting the
// host kernel's per-process view. This package is the Go-idiomatic
// rendering of that workaround: an in-memory interval table keyed by
// inode, guarded by a mutex, with no host syscalls involved.
package lockmgr

import (
	"sync"

	"github.com/chaos/ninepd/proto"
)

// Lock describes one held or requested byte-range lock.
type Lock struct {
	Type     uint8 // proto.LockTypeRdlck or proto.LockTypeWrlck
	Start    uint64
	Length   uint64 // 0 means "to end of file"
	ProcID   uint32
	ClientID string
}

func (l Lock) end() uint64 {
	if l.Length == 0 {
		return ^uint64(0)
	}
	return l.Start + l.Length
}

func (l Lock) overlaps(o Lock) bool {
	return l.Start < o.end() && o.Start < l.end()
}

func (l Lock) conflicts(o Lock) bool {
	if !l.overlaps(o) {
		return false
	}
	if l.ClientID == o.ClientID && l.ProcID == o.ProcID {
		return false
	}
	return l.Type == proto.LockTypeWrlck || o.Type == proto.LockTypeWrlck
}

// Manager holds the lock tables for every inode of one export. Each
// export's Backend owns one Manager, shared by every connection that
// attaches to that export; locks are told apart by client id and
// proc id.
type Manager struct {
	mu    sync.Mutex
	locks map[uint64][]Lock
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{locks: make(map[uint64][]Lock)}
}

// TryLock attempts to acquire l on ino. It reports LockSuccess if the
// lock (or an equivalent already held by the same client/proc) is now
// held, or LockBlocked if an incompatible lock is held by someone
// else. TryLock never blocks; TLOCK's "wait for the lock" mode is the
// caller's responsibility to implement by retrying.
func (m *Manager) TryLock(ino uint64, l Lock) uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.locks[ino]
	if l.Type == proto.LockTypeUnlck {
		m.locks[ino] = removeOwned(existing, l)
		return proto.LockSuccess
	}
	for _, o := range existing {
		if l.conflicts(o) {
			return proto.LockBlocked
		}
	}
	m.locks[ino] = append(removeOwned(existing, l), l)
	return proto.LockSuccess
}

// Test reports the first lock that would conflict with l, as
// TGETLOCK needs. ok is false if no conflict exists, in which case
// the caller reports LockTypeUnlck back (meaning "would succeed").
func (m *Manager) Test(ino uint64, l Lock) (conflict Lock, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.locks[ino] {
		if l.conflicts(o) {
			return o, true
		}
	}
	return Lock{}, false
}

// ReleaseAll drops every lock held on ino by (procID, clientID),
// called when a fid holding locks is clunked without an explicit
// unlock — matching POSIX close()-releases-locks semantics.
func (m *Manager) ReleaseAll(ino uint64, procID uint32, clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.locks[ino][:0]
	for _, o := range m.locks[ino] {
		if o.ProcID == procID && o.ClientID == clientID {
			continue
		}
		out = append(out, o)
	}
	m.locks[ino] = out
}

func removeOwned(locks []Lock, l Lock) []Lock {
	out := locks[:0]
	for _, o := range locks {
		if o.overlaps(l) && o.ProcID == l.ProcID && o.ClientID == l.ClientID {
			continue
		}
		out = append(out, o)
	}
	return out
}
