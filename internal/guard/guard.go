// Package guard holds the per-key locks used around pages and import jobs:
// Guard refuses a second generation or import for a key already in flight,
// KeyedMutex queues load-modify-save edits of the same page.
package guard

import (
	"context"
	"sync"
)

// Guard is a non-blocking per-key lock. A generation holds its target page
// from the provider call until the batch is merged; an import holds its job
// name for the whole run. The zero value is ready to use.
type Guard struct {
	mu   sync.Mutex
	held map[string]struct{}
	wg   sync.WaitGroup
}

// TryLock takes key, or reports false when it is already held.
func (g *Guard) TryLock(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return false
	}
	if g.held == nil {
		g.held = make(map[string]struct{})
	}
	g.held[key] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock releases key. Releasing a key that is not held does nothing.
func (g *Guard) Unlock(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; !busy {
		return
	}
	delete(g.held, key)
	g.wg.Done()
}

// Running reports whether key is held.
func (g *Guard) Running(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.held[key]
	return busy
}

// WaitAll blocks until every held key is released or ctx is done. Used on
// shutdown to let in-flight generations and imports finish their writes.
func (g *Guard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// KeyedMutex is a blocking lock per key. Entries are dropped once no caller
// holds or waits for them. The zero value is ready to use.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the function releasing it.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.Unlock()
			k.mu.Lock()
			defer k.mu.Unlock()
			if l.refs--; l.refs == 0 {
				delete(k.locks, key)
			}
		})
	}
}
