// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// LRUCache is a fetch-through cache for immutable derived values
type LRUCache[K comparable, V any] struct {
	cache *lru.Cache
}

func NewLRUCache[K comparable, V any](size int) (*LRUCache[K, V], error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUCache[K, V]{cache: c}, nil
}

// Get checks if the cached value exists for a given key, otherwise fetches
// the value using fetchFunc. Failed fetches are not cached.
// If [invalidate] is true, the value will be cleared from the cache prior to fetching.
func (c *LRUCache[K, V]) Get(key K, fetchFunc func(K) (V, error), invalidate bool) (V, error) {
	if invalidate {
		c.cache.Remove(key)
	} else if value, found := c.cache.Get(key); found {
		return value.(V), nil
	}

	newValue, err := fetchFunc(key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.cache.Add(key, newValue)
	return newValue, nil
}

// Len returns the number of cached entries
func (c *LRUCache[K, V]) Len() int {
	return c.cache.Len()
}
