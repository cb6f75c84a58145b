package ninepd

import (
	"context"
	"net"
	"runtime"
	"sync"
	"time"

	"aqwari.net/retry"
	"golang.org/x/sys/unix"

	"github.com/chaos/ninepd/internal/ctlfs"
	"github.com/chaos/ninepd/internal/fsbackend"
)

// Server listens for 9P2000.L connections and dispatches requests
// against the exports in its Config.
type Server struct {
	cfg      Config
	backends map[string]*fsbackend.Backend
	ctl      *ctlfs.Counters

	mu sync.Mutex
	ln net.Listener
}

// New returns a Server for cfg. The returned Server does not listen
// until Serve or ListenAndServe is called.
func New(cfg Config) *Server {
	return &Server{
		cfg:      cfg,
		backends: newBackends(cfg.Exports),
		ctl:      ctlfs.New(),
	}
}

// Shutdown closes the listener, causing Serve to return. It does not
// wait for in-flight requests on already-accepted connections; those
// drain on their own once each conn.serve loop notices EOF or a read
// error from the closed listener's peers. ctx bounds nothing today
// and exists so callers can later add a drain deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) logf(format string, v ...interface{}) {
	s.cfg.logger().Printf(format, v...)
}

// ListenAndServe listens on cfg.Addr and serves connections until the
// listener fails or the process exits.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections from l, applying an exponential backoff
// between retries on temporary accept errors, the same pattern
// aqwari.net/net/styx's own accept loop uses.
func (s *Server) Serve(l net.Listener) error {
	type tempErr interface {
		Temporary() bool
	}
	backoff := retry.Exponential(time.Millisecond).Max(time.Second)
	try := 0

	s.mu.Lock()
	s.ln = l
	s.mu.Unlock()

	for {
		rwc, err := l.Accept()
		if err != nil {
			if terr, ok := err.(tempErr); ok && terr.Temporary() {
				try++
				wait := backoff(try)
				s.logf("ninepd: accept error: %v; retrying in %v", err, wait)
				time.Sleep(wait)
				continue
			}
			return err
		}
		try = 0
		tuneKeepalive(rwc, s.cfg.logger())
		c := newConn(s, rwc)
		s.ctl.ConnOpened()
		go c.serve()
	}
}

func tuneKeepalive(rwc net.Conn, log Logger) {
	tc, ok := rwc.(*net.TCPConn)
	if !ok {
		return
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(120 * time.Second)

	raw, err := tc.SyscallConn()
	if err != nil {
		return
	}
	raw.Control(func(fd uintptr) {
		unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, 9)
		unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, 120)
	})
}

func recoverPanic(log Logger, remote net.Addr) {
	if err := recover(); err != nil {
		const size = 64 << 10
		buf := make([]byte, size)
		buf = buf[:runtime.Stack(buf, false)]
		log.Printf("ninepd: panic serving %v: %v\n%s", remote, err, buf)
	}
}
