// Package ctlfs implements the synthetic, read-only control
// namespace exposed under the reserved aname "ctl", the same
// counters diod's own dtop monitoring tool reads. It is a flat,
// depth-one directory of plain-text files reporting live server
// counters; there is no write path and no subdirectories, so this
// does not need internal/fsbackend's general host-filesystem
// machinery.
package ctlfs

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// File names exposed under the ctl export, matching the field groups
// dtop.c reads.
const (
	FileConnections = "connections"
	FileRequests    = "requests"
	FileTpools      = "tpools"
)

// Files lists every name exposed under the ctl export, in the fixed
// order ReadDir should present them.
var Files = []string{FileConnections, FileRequests, FileTpools}

// Counters is the live counter set backing the control namespace. A
// Server owns one Counters and updates it as connections and
// requests come and go; ctlfs only knows how to render it.
type Counters struct {
	mu sync.RWMutex

	connections   int
	connectionsHi int

	requestsTotal  uint64
	requestsActive int
	requestsErrors uint64

	tpools map[string]*tpool // keyed by "uid@aname"
}

type tpool struct {
	uid, aname string
	requests   uint64
	started    time.Time
}

// New returns an empty Counters.
func New() *Counters {
	return &Counters{tpools: make(map[string]*tpool)}
}

// ConnOpened records a new connection.
func (c *Counters) ConnOpened() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connections++
	if c.connections > c.connectionsHi {
		c.connectionsHi = c.connections
	}
}

// ConnClosed records a connection going away.
func (c *Counters) ConnClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connections > 0 {
		c.connections--
	}
}

// RequestStarted records the start of one request under (uid, aname),
// the (user, export) pair diod calls a Tpool.
func (c *Counters) RequestStarted(uid, aname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestsTotal++
	c.requestsActive++
	key := uid + "@" + aname
	tp, ok := c.tpools[key]
	if !ok {
		tp = &tpool{uid: uid, aname: aname, started: time.Now()}
		c.tpools[key] = tp
	}
	tp.requests++
}

// RequestFinished records a request completing, successfully or not.
func (c *Counters) RequestFinished(failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requestsActive > 0 {
		c.requestsActive--
	}
	if failed {
		c.requestsErrors++
	}
}

// ReadFile renders the named synthetic file. It returns an error for
// any name not in Files.
func (c *Counters) ReadFile(name string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch name {
	case FileConnections:
		return []byte(fmt.Sprintf("current %d\nhighwater %d\n", c.connections, c.connectionsHi)), nil
	case FileRequests:
		return []byte(fmt.Sprintf("total %d\nactive %d\nerrors %d\n",
			c.requestsTotal, c.requestsActive, c.requestsErrors)), nil
	case FileTpools:
		var b strings.Builder
		fmt.Fprintf(&b, "%-16s %-16s %10s %s\n", "UID", "ANAME", "REQUESTS", "AGE")
		for _, tp := range c.tpools {
			fmt.Fprintf(&b, "%-16s %-16s %10d %s\n", tp.uid, tp.aname, tp.requests, time.Since(tp.started).Round(time.Second))
		}
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("ctlfs: no such file %q", name)
	}
}
