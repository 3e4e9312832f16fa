// SPDX-License-Identifier: GPL-3.0-or-later

// Package closepool collects the resources opened while running a
// command (UDP connections, the metrics server) and releases them
// in a single operation.
package closepool

import (
	"errors"
	"io"
	"slices"
	"sync"
)

// Pool is a set of resources released together by [*Pool.Close].
//
// The zero value is ready to use. A Pool is safe for concurrent use.
type Pool struct {
	closers []io.Closer
	mu      sync.Mutex
}

// Add registers c for closing.
func (p *Pool) Add(c io.Closer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closers = append(p.closers, c)
}

// AddFunc registers fx for invocation when closing the pool. Use it for
// resources that are not an [io.Closer], such as an HTTP server to shut
// down gracefully.
func (p *Pool) AddFunc(fx func() error) {
	p.Add(closerFunc(fx))
}

type closerFunc func() error

func (fx closerFunc) Close() error {
	return fx()
}

// Close releases the registered resources, most recently added first,
// so a metrics server added after the connection it observes stops
// before the connection goes away. Close attempts every resource and
// returns the join of the errors. The pool is emptied, so a second
// Close is a no-op.
func (p *Pool) Close() error {
	p.mu.Lock()
	closers := p.closers
	p.closers = nil
	p.mu.Unlock()

	errv := make([]error, 0, len(closers))
	for _, c := range slices.Backward(closers) {
		errv = append(errv, c.Close())
	}
	return errors.Join(errv...)
}
