package fsbackend

// Clunk releases whatever host resources h accumulated: its open
// file or directory descriptor, any locks it holds, and a pending
// XATTRCREATE, which is committed rather than discarded.
func (b *Backend) Clunk(h *Handle) error {
	h.mu.Lock()
	f, d, x := h.file, h.dir, h.xattr
	h.file, h.dir, h.xattr = nil, nil, nil
	h.mu.Unlock()

	b.releaseLocks(h)

	var err error
	if x != nil && x.create {
		err = b.xattrCommit(h, x)
	}
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if d != nil {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
