package fsbackend

import (
	"os"

	"github.com/chaos/ninepd/proto"
)

// Readdir packs as many directory entries as fit in count bytes into
// an Rreaddir payload, resuming after offset. offset 0 means "start
// over"; any other value must be one this Backend previously handed
// back as a dirent's own offset field, per 9P2000.L's opaque-cookie
// contract — here that cookie is simply the index of the next entry
// to send, since nothing outside this process ever inspects it.
func (b *Backend) Readdir(h *Handle, offset uint64, count uint32) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dir == nil {
		return nil, errNotOpen
	}

	if offset == 0 {
		if _, err := h.dir.Seek(0, os.SEEK_SET); err != nil {
			return nil, err
		}
		entries, err := h.dir.ReadDir(-1)
		if err != nil {
			return nil, err
		}
		h.dirEntries = entries
	}

	idx := int(offset)
	if idx > len(h.dirEntries) {
		idx = len(h.dirEntries)
	}

	buf := make([]byte, 0, count)
	n := idx
	for n < len(h.dirEntries) {
		ent := h.dirEntries[n]
		fi, err := os.Lstat(b.Root + "/" + childJoin(h.path, ent.Name()))
		if err != nil {
			n++
			continue
		}
		st := statT(fi)
		qid := b.qids.Qid(st.ino, st.mode)
		size := proto.DirentSize([]byte(ent.Name()))
		if len(buf)+size > int(count) && len(buf) > 0 {
			break
		}
		buf = proto.AppendDirent(buf, qid, uint64(n+1), direntType(fi), []byte(ent.Name()))
		n++
	}
	h.dirOff = int64(n)
	return buf, nil
}

func childJoin(path, name string) string {
	if path == "." {
		return name
	}
	return path + "/" + name
}

func direntType(fi os.FileInfo) uint8 {
	switch {
	case fi.IsDir():
		return proto.DtDir
	case fi.Mode()&os.ModeSymlink != 0:
		return proto.DtLnk
	case fi.Mode()&os.ModeSocket != 0:
		return proto.DtSock
	case fi.Mode()&os.ModeNamedPipe != 0:
		return proto.DtFifo
	case fi.Mode()&os.ModeDevice != 0:
		if fi.Mode()&os.ModeCharDevice != 0 {
			return proto.DtChr
		}
		return proto.DtBlk
	default:
		return proto.DtReg
	}
}
