package ninepd

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/chaos/ninepd/proto"
)

// workerPool bounds how many requests one connection processes
// concurrently to n, the fixed-size thread-pool pattern
// diod's own worker pool implements with a pthread pool draining
// a shared request queue; here a semaphore plus errgroup plays the
// same role without a dedicated queue goroutine.
type workerPool struct {
	c   *conn
	sem chan struct{}
	g   *errgroup.Group
}

func newWorkerPool(c *conn, n int) *workerPool {
	g, _ := errgroup.WithContext(context.Background())
	return &workerPool{
		c:   c,
		sem: make(chan struct{}, n),
		g:   g,
	}
}

// submit runs m's dispatch once a worker slot is free.
func (p *workerPool) submit(m proto.Msg) {
	p.sem <- struct{}{}
	p.g.Go(func() error {
		defer func() { <-p.sem }()
		defer recoverPanic(p.c.srv.cfg.logger(), p.c.rwc.RemoteAddr())
		p.c.dispatch(m)
		return nil
	})
}

// spawnUnbounded runs fn outside the worker-slot semaphore, for
// TFLUSH handlers that must never queue behind the very requests a
// full pool is busy serving.
func (p *workerPool) spawnUnbounded(fn func()) {
	p.g.Go(func() error {
		defer recoverPanic(p.c.srv.cfg.logger(), p.c.rwc.RemoteAddr())
		fn()
		return nil
	})
}

// wait blocks until every submitted request has finished, called once
// the connection's read loop has ended.
func (p *workerPool) wait() {
	p.g.Wait()
}
