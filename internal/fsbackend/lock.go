package fsbackend

import (
	"os"

	"github.com/chaos/ninepd/internal/lockmgr"
	"github.com/chaos/ninepd/proto"
)

func (b *Backend) ino(h *Handle) (uint64, error) {
	fi, err := os.Lstat(b.hostPath(h))
	if err != nil {
		return 0, err
	}
	return statT(fi).ino, nil
}

// Lock attempts to acquire or release a byte-range lock on h,
// returning one of proto.LockSuccess/LockBlocked.
func (b *Backend) Lock(h *Handle, l lockmgr.Lock) (uint8, error) {
	ino, err := b.ino(h)
	if err != nil {
		return 0, err
	}
	h.mu.Lock()
	h.procID = l.ProcID
	h.clientID = l.ClientID
	h.mu.Unlock()
	return b.locks.TryLock(ino, l), nil
}

// Getlock reports the first lock conflicting with l, or l itself
// (with Type set to proto.LockTypeUnlck) when no conflict exists.
func (b *Backend) Getlock(h *Handle, l lockmgr.Lock) (lockmgr.Lock, error) {
	ino, err := b.ino(h)
	if err != nil {
		return lockmgr.Lock{}, err
	}
	if conflict, ok := b.locks.Test(ino, l); ok {
		return conflict, nil
	}
	l.Type = proto.LockTypeUnlck
	return l, nil
}

// releaseLocks drops every lock h's (procID, clientID) pair holds on
// its current file, called from Clunk.
func (b *Backend) releaseLocks(h *Handle) {
	if h.procID == 0 && h.clientID == "" {
		return
	}
	ino, err := b.ino(h)
	if err != nil {
		return
	}
	b.locks.ReleaseAll(ino, h.procID, h.clientID)
}
