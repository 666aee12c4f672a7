// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package address splits chain addresses into a network prefix and an
// account body and rebuilds them under another prefix.
package address

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/cache"
)

const DefaultCacheSize = 1024

// Codec maps addresses to (prefix, body) pairs and back
type Codec interface {
	Split(addr string) (string, []byte, error)
	Rebuild(prefix string, body []byte) (string, error)
	Prefix(addr string) (string, error)
	Reprefix(addr string, prefix string) (string, error)
}

type parsed struct {
	prefix string
	body   []byte
}

// Bech32 is a Codec for bech32 account addresses
type Bech32 struct {
	cache *cache.LRUCache[string, parsed]
}

// NewBech32 creates a bech32 codec that memoizes up to cacheSize parsed addresses
func NewBech32(cacheSize int) (*Bech32, error) {
	c, err := cache.NewLRUCache[string, parsed](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create address cache: %w", err)
	}
	return &Bech32{cache: c}, nil
}

func (b *Bech32) Split(addr string) (string, []byte, error) {
	p, err := b.cache.Get(addr, decode, false)
	if err != nil {
		return "", nil, err
	}
	body := make([]byte, len(p.body))
	copy(body, p.body)
	return p.prefix, body, nil
}

func (b *Bech32) Rebuild(prefix string, body []byte) (string, error) {
	if prefix == "" || len(body) == 0 {
		return "", fmt.Errorf("%w: empty prefix or body", transceiver.ErrInvalidAddress)
	}
	conv, err := bech32.ConvertBits(body, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", transceiver.ErrInvalidAddress, err)
	}
	addr, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", transceiver.ErrInvalidAddress, err)
	}
	return addr, nil
}

func (b *Bech32) Prefix(addr string) (string, error) {
	prefix, _, err := b.Split(addr)
	return prefix, err
}

// Reprefix keeps the account body of addr and replaces its network prefix.
func (b *Bech32) Reprefix(addr string, prefix string) (string, error) {
	_, body, err := b.Split(addr)
	if err != nil {
		return "", err
	}
	return b.Rebuild(prefix, body)
}

func decode(addr string) (parsed, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return parsed{}, fmt.Errorf("%w: %q: %v", transceiver.ErrInvalidAddress, addr, err)
	}
	body, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return parsed{}, fmt.Errorf("%w: %q: %v", transceiver.ErrInvalidAddress, addr, err)
	}
	if len(body) == 0 {
		return parsed{}, fmt.Errorf("%w: %q has empty body", transceiver.ErrInvalidAddress, addr)
	}
	return parsed{prefix: hrp, body: body}, nil
}

// SamePrefix reports whether a and b live on the same network
func SamePrefix(c Codec, a, b string) (bool, error) {
	pa, err := c.Prefix(a)
	if err != nil {
		return false, err
	}
	pb, err := c.Prefix(b)
	if err != nil {
		return false, err
	}
	return pa == pb, nil
}
