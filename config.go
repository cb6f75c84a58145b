// Package ninepd implements a 9P2000.L file server: it accepts TCP
// connections, speaks the wire protocol in package proto, and serves
// requests against one or more host directory trees via
// internal/fsbackend.
package ninepd

import (
	"log"

	"github.com/chaos/ninepd/internal/fsbackend"
)

// Export maps a 9P attach name (Tattach's Aname) onto a host
// directory tree.
type Export struct {
	Aname string
	Root  string

	// ReadOnly rejects every request that would modify the export.
	ReadOnly bool

	// SquashUser, if non-empty, is the local user every attaching
	// client is mapped onto regardless of the uname it presents,
	// matching diod's "squashuser" export option.
	SquashUser string
}

// Config describes one server's listening and export configuration.
type Config struct {
	// Addr is the "host:port" the server listens on.
	Addr string

	Exports []Export

	// Msize caps the negotiated message size; 0 selects
	// proto.DefaultBufSize.
	Msize uint32

	// Workers sets the fixed worker-pool size per connection; 0
	// selects 16.
	Workers int

	// Auth authenticates TAUTH/TATTACH, or nil to accept every
	// attach without a handshake.
	Auth AuthFunc

	// Logger receives connection and error events. A nil Logger
	// discards them.
	Logger Logger
}

func (c *Config) export(aname string) (Export, bool) {
	for _, e := range c.Exports {
		if e.Aname == aname {
			return e, true
		}
	}
	return Export{}, false
}

func (c *Config) msize() uint32 {
	if c.Msize == 0 {
		return 1 << 20
	}
	return c.Msize
}

func (c *Config) workers() int {
	if c.Workers <= 0 {
		return 16
	}
	return c.Workers
}

func (c *Config) logger() Logger {
	if c.Logger == nil {
		return discardLogger{}
	}
	return c.Logger
}

// Logger is the one-method sink the server reports connection
// lifecycle and request errors to; *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

var _ Logger = (*log.Logger)(nil)

func newBackends(exports []Export) map[string]*fsbackend.Backend {
	out := make(map[string]*fsbackend.Backend, len(exports))
	for _, e := range exports {
		b := fsbackend.NewBackend(e.Root)
		b.ReadOnly = e.ReadOnly
		out[e.Aname] = b
	}
	return out
}
