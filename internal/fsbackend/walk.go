package fsbackend

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/chaos/ninepd/proto"
)

// Walk descends from h through each element of names in turn,
// stat'ing every intermediate component to collect its Qid. It stops
// at the first name that does not exist or is not reachable,
// returning the Qids collected so far — the 9P2000.L "partial walk"
// contract — along with a new Handle for the final component when
// every element resolved.
func (b *Backend) Walk(h *Handle, names []string) ([]proto.Qid, *Handle, error) {
	if len(names) == 0 {
		// Walking zero elements clones the fid onto the same file.
		if _, err := os.Lstat(b.hostPath(h)); err != nil {
			return nil, nil, err
		}
		return nil, &Handle{path: h.path, user: h.user}, nil
	}

	qids := make([]proto.Qid, 0, len(names))
	cur := h.path
	for _, name := range names {
		next := stepPath(cur, name)
		full := filepath.Join(b.Root, next)
		if !withinRoot(b.Root, full) {
			return qids, nil, os.ErrPermission
		}
		fi, err := os.Lstat(full)
		if err != nil {
			return qids, nil, err
		}
		st := statT(fi)
		qids = append(qids, b.qids.Qid(st.ino, st.mode))
		cur = next
	}
	return qids, &Handle{path: cur, user: h.user}, nil
}

func stepPath(cur, name string) string {
	if name == ".." {
		if cur == "." {
			return ".."
		}
		dir := filepath.Dir(cur)
		return dir
	}
	if cur == "." {
		return name
	}
	return cur + "/" + name
}

// withinRoot reports whether full, once resolved, still lives at or
// under root. ".." walk elements are otherwise a path-traversal
// escape hatch out of the export.
func withinRoot(root, full string) bool {
	root = filepath.Clean(root)
	full = filepath.Clean(full)
	if full == root {
		return true
	}
	return strings.HasPrefix(full, root+string(filepath.Separator))
}
