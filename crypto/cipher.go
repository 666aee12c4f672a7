// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package crypto provides the symmetric ciphers that protect packets between transceivers.
// All transceivers of one network share a single 32 byte key.
package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luxfi/geth/common/hexutil"
	"github.com/tink-crypto/tink-go/v2/daead/subtle"
	"golang.org/x/crypto/hkdf"

	"github.com/luxfi/transceiver"
)

// Scheme represents a cipher type
type Scheme string

// SchemeAESSIV is deterministic AES-SIV (RFC 5297) with the nonce bound as
// associated data. Two different packets sealed under the same nonce get
// independent synthetic IVs, so a nonce shared by two transceivers only
// reveals whether the packets were identical.
const SchemeAESSIV Scheme = "aes-256-siv"

const (
	KeySize   = 32
	NonceSize = 12
)

var sivKeyInfo = []byte("transceiver aes-256-siv")

// Cipher encrypts packets under caller supplied nonces
type Cipher interface {
	Scheme() Scheme
	Seal(nonce, plaintext []byte) ([]byte, error)
	Open(nonce, ciphertext []byte) ([]byte, error)
}

type siv struct {
	daead *subtle.AESSIV
}

// New creates a cipher of the given scheme
func New(scheme Scheme, key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", transceiver.ErrInvalidKey, KeySize, len(key))
	}
	if scheme != SchemeAESSIV {
		return nil, fmt.Errorf("%w: unknown scheme %q", transceiver.ErrInvalidKey, scheme)
	}

	// AES-SIV takes a 64 byte key, half for S2V and half for CTR
	sivKey := make([]byte, subtle.AESSIVKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, sivKeyInfo), sivKey); err != nil {
		return nil, fmt.Errorf("%w: %v", transceiver.ErrInvalidKey, err)
	}
	d, err := subtle.NewAESSIV(sivKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transceiver.ErrInvalidKey, err)
	}
	return &siv{daead: d}, nil
}

func (*siv) Scheme() Scheme {
	return SchemeAESSIV
}

func (s *siv) Seal(nonce, plaintext []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", transceiver.ErrInvalidTimestamp, NonceSize)
	}
	return s.daead.EncryptDeterministically(plaintext, nonce)
}

func (s *siv) Open(nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", transceiver.ErrInvalidTimestamp, NonceSize)
	}
	plaintext, err := s.daead.DecryptDeterministically(ciphertext, nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transceiver.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// NonceFromTimestamp returns the first 12 decimal digits of a nanosecond timestamp.
func NonceFromTimestamp(nanos uint64) ([]byte, error) {
	digits := strconv.FormatUint(nanos, 10)
	if len(digits) < NonceSize {
		return nil, fmt.Errorf("%w: %s", transceiver.ErrInvalidTimestamp, digits)
	}
	return []byte(digits[:NonceSize]), nil
}

// ParseKey decodes a hex key, with or without 0x prefix
func ParseKey(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	key, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transceiver.ErrInvalidKey, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", transceiver.ErrInvalidKey, KeySize, len(key))
	}
	return key, nil
}
