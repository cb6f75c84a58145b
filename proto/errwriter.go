package proto

import "io"

// An ErrWriter defers error checking across several successive writes
// to an underlying io.Writer: once a write fails, later writes become
// no-ops and the first error is retained in Err.
type ErrWriter struct {
	W   io.Writer
	Err error
	N   int
}

func (w *ErrWriter) Write(p []byte) (int, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err := w.W.Write(p)
	w.N += n
	w.Err = err
	return n, err
}
