// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUCache(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		invalidate    bool
		expectedValue string
		expectedCount int
	}{
		{
			name:          "miss fetches",
			key:           "neutron1hub",
			invalidate:    false,
			expectedValue: "prefix",
			expectedCount: 1,
		},
		{
			name:          "hit skips fetch",
			key:           "neutron1hub",
			invalidate:    false,
			expectedValue: "prefix",
			expectedCount: 1,
		},
		{
			name:          "invalidate refetches",
			key:           "neutron1hub",
			invalidate:    true,
			expectedValue: "prefix",
			expectedCount: 2,
		},
		{
			name:          "other key fetches",
			key:           "stars1outpost",
			invalidate:    false,
			expectedValue: "prefix",
			expectedCount: 3,
		},
	}

	cache, err := NewLRUCache[string, string](10)
	require.NoError(t, err)
	fetchCount := 0
	fetchFunc := func(key string) (string, error) {
		fetchCount++
		return "prefix", nil
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			val, err := cache.Get(tt.key, fetchFunc, tt.invalidate)
			require.NoError(err)
			require.Equal(tt.expectedValue, val)
			require.Equal(tt.expectedCount, fetchCount)
		})
	}
}

func TestLRUCacheFetchError(t *testing.T) {
	require := require.New(t)

	cache, err := NewLRUCache[string, int](2)
	require.NoError(err)

	errFetch := errors.New("fetch failed")
	_, err = cache.Get("k", func(string) (int, error) { return 0, errFetch }, false)
	require.ErrorIs(err, errFetch)
	require.Zero(cache.Len())

	for _, k := range []string{"a", "b", "c"} {
		_, err := cache.Get(k, func(string) (int, error) { return 1, nil }, false)
		require.NoError(err)
	}
	require.Equal(2, cache.Len())
}

func TestLRUCacheInvalidSize(t *testing.T) {
	_, err := NewLRUCache[string, int](0)
	require.Error(t, err)
}
