// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"sync"
)

// FetchFunc computes the value for a missing key
type FetchFunc[K comparable, V any] func(key K) (V, error)

// FIFOCache is a bounded cache that evicts in insertion order. Concurrent
// Gets of the same missing key share a single fetch.
type FIFOCache[K comparable, V any] struct {
	lock    sync.Mutex
	values  map[K]V
	ring    []K
	next    int
	pending map[K]*fetch[V]
}

type fetch[V any] struct {
	done chan struct{}
	val  V
	err  error
}

func NewFIFOCache[K comparable, V any](capacity int) *FIFOCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &FIFOCache[K, V]{
		values:  make(map[K]V, capacity),
		ring:    make([]K, 0, capacity),
		pending: make(map[K]*fetch[V]),
	}
}

// Get returns the cached value for key or runs fetchFunc to produce it.
// Failed fetches are not cached, so a later Get retries.
func (c *FIFOCache[K, V]) Get(key K, fetchFunc FetchFunc[K, V]) (V, error) {
	c.lock.Lock()
	if val, ok := c.values[key]; ok {
		c.lock.Unlock()
		return val, nil
	}
	if f, ok := c.pending[key]; ok {
		c.lock.Unlock()
		<-f.done
		return f.val, f.err
	}
	f := &fetch[V]{done: make(chan struct{})}
	c.pending[key] = f
	c.lock.Unlock()

	f.val, f.err = fetchFunc(key)

	c.lock.Lock()
	delete(c.pending, key)
	if f.err == nil {
		c.put(key, f.val)
	}
	c.lock.Unlock()
	close(f.done)

	return f.val, f.err
}

// Contains reports whether key is cached
func (c *FIFOCache[K, V]) Contains(key K) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	_, ok := c.values[key]
	return ok
}

// caller must hold the lock
func (c *FIFOCache[K, V]) put(key K, val V) {
	if _, ok := c.values[key]; ok {
		c.values[key] = val
		return
	}
	if len(c.ring) < cap(c.ring) {
		c.ring = append(c.ring, key)
	} else {
		delete(c.values, c.ring[c.next])
		c.ring[c.next] = key
		c.next = (c.next + 1) % len(c.ring)
	}
	c.values[key] = val
}

// Len returns the number of cached entries
func (c *FIFOCache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return len(c.values)
}
