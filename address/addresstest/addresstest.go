// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package addresstest builds deterministic bech32 addresses for tests.
package addresstest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/transceiver/address"
)

// Codec returns a fresh bech32 codec
func Codec(t testing.TB) *address.Bech32 {
	c, err := address.NewBech32(address.DefaultCacheSize)
	require.NoError(t, err)
	return c
}

// New returns the address with a 20 byte body filled with seed
func New(t testing.TB, prefix string, seed byte) string {
	return NewWithBody(t, prefix, bytes.Repeat([]byte{seed}, 20))
}

// Contract returns the address with a 32 byte body filled with seed
func Contract(t testing.TB, prefix string, seed byte) string {
	return NewWithBody(t, prefix, bytes.Repeat([]byte{seed}, 32))
}

func NewWithBody(t testing.TB, prefix string, body []byte) string {
	addr, err := Codec(t).Rebuild(prefix, body)
	require.NoError(t, err)
	return addr
}
