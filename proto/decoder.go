package proto

import (
	"bufio"
	"io"
)

// A Decoder reads a sequence of 9P2000.L messages from an
// io.Reader. Each call to Next overwrites the buffer backing the
// previously returned Msg; callers that need to retain message data
// past the following Next call must copy it.
type Decoder struct {
	// MaxSize caps the size of any single decoded message. Messages
	// larger than MaxSize cause Next to fail with ErrMaxSize. It
	// defaults to the protocol's absolute maximum and should be set
	// to the negotiated msize once Tversion completes.
	MaxSize int64

	r   *bufio.Reader
	buf []byte
	msg Msg
	err error
}

// NewDecoder returns a Decoder with a default-sized internal buffer.
func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderSize(r, DefaultBufSize)
}

// NewDecoderSize returns a Decoder whose internal buffer is at least
// size bytes, and never smaller than MinBufSize.
func NewDecoderSize(r io.Reader, size int) *Decoder {
	if size < MinBufSize {
		size = MinBufSize
	}
	return &Decoder{
		r:       bufio.NewReaderSize(r, size),
		buf:     make([]byte, size),
		MaxSize: maxMsgSize,
	}
}

// Reset discards any buffered data and error state and prepares d to
// read from r.
func (d *Decoder) Reset(r io.Reader) {
	if r == nil {
		r = eofReader{}
	}
	d.r.Reset(r)
	d.msg = nil
	d.err = nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// Err returns the first error encountered by the Decoder, if any. A
// clean io.EOF is reported as a nil error.
func (d *Decoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// Msg returns the message produced by the most recent call to Next.
func (d *Decoder) Msg() Msg { return d.msg }

// Next reads and parses the next message. It returns false once the
// stream is exhausted or an unrecoverable error occurs; Err reports
// which. A syntactically valid message that fails semantic
// validation is still returned, as a BadMessage, so callers can tell
// it apart and close the connection.
func (d *Decoder) Next() bool {
	if d.err != nil {
		return false
	}
	var lenbuf [4]byte
	if _, err := io.ReadFull(d.r, lenbuf[:]); err != nil {
		d.err = err
		return false
	}
	size := int64(guint32(lenbuf[:]))
	if size < minMsgSize {
		d.err = errShortMsg
		return false
	}
	if size > d.MaxSize {
		d.err = ErrMaxSize
		return false
	}
	if int64(cap(d.buf)) < size {
		d.buf = make([]byte, size)
	}
	buf := d.buf[:size]
	copy(buf[:4], lenbuf[:])
	if _, err := io.ReadFull(d.r, buf[4:]); err != nil {
		d.err = err
		return false
	}
	m, err := parseMsg(buf)
	if err != nil {
		d.msg = BadMessage{msg: buf, Err: err}
		return true
	}
	d.msg = m
	return true
}
