// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>


// Package co holds goroutine life-cycle helpers.
package co

import (
	"sync"
)

// Goes runs a set of goroutines and waits for them.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a new goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait blocks until every goroutine started by Go has returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once every goroutine has returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}

// Stopper is Goes with a shared stop channel. Goroutines watch the channel
// and return once it is closed.
type Stopper struct {
	goes Goes
	stop chan struct{}
	once sync.Once
}

// NewStopper creates a Stopper.
func NewStopper() *Stopper {
	return &Stopper{stop: make(chan struct{})}
}

// Go runs f in a new goroutine, handing it the stop channel.
func (s *Stopper) Go(f func(stop <-chan struct{})) {
	s.goes.Go(func() { f(s.stop) })
}

// Stop closes the stop channel and waits for all goroutines. It is safe to
// call more than once.
func (s *Stopper) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.goes.Wait()
}
