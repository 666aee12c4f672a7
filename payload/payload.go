// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package payload turns packets into the encrypted strings carried between transceivers.
package payload

import (
	"encoding/base64"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/crypto"
)

// Encrypted is a serialized and encrypted packet with the timestamp its nonce was derived from
type Encrypted struct {
	Value     string
	Timestamp uint64
}

// ID identifies the encrypted packet for replay protection
func (e *Encrypted) ID() ids.ID {
	return transceiver.PacketID(e.Value, e.Timestamp)
}

// Encode serializes the packet and encrypts it under the timestamp nonce.
// Equal packets encoded at equal timestamps produce equal values.
func Encode(c crypto.Cipher, p *transceiver.Packet, timestamp uint64) (*Encrypted, error) {
	if err := p.Verify(); err != nil {
		return nil, err
	}
	nonce, err := crypto.NonceFromTimestamp(timestamp)
	if err != nil {
		return nil, err
	}
	sealed, err := c.Seal(nonce, p.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt packet: %w", err)
	}
	return &Encrypted{
		Value:     base64.StdEncoding.EncodeToString(sealed),
		Timestamp: timestamp,
	}, nil
}

// Decode reverses Encode
func Decode(c crypto.Cipher, value string, timestamp uint64) (*transceiver.Packet, error) {
	sealed, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transceiver.ErrMalformedPayload, err)
	}
	nonce, err := crypto.NonceFromTimestamp(timestamp)
	if err != nil {
		return nil, err
	}
	plaintext, err := c.Open(nonce, sealed)
	if err != nil {
		return nil, err
	}
	return transceiver.ParsePacket(plaintext)
}
