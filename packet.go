// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package transceiver

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

// MaxPacketSize bounds the serialized packet before encryption
const MaxPacketSize = 64 * 1024

// Packet is the transfer intent carried between transceivers.
type Packet struct {
	Sender         string
	Recipient      string
	HubCollection  string
	HomeCollection string
	TokenList      []string
	// Destination is the endpoint transceiver where the transfer finalizes.
	Destination string
}

// NewPacket creates a new packet
func NewPacket(
	sender string,
	recipient string,
	hubCollection string,
	homeCollection string,
	tokenList []string,
	destination string,
) (*Packet, error) {
	p := &Packet{
		Sender:         sender,
		Recipient:      recipient,
		HubCollection:  hubCollection,
		HomeCollection: homeCollection,
		TokenList:      tokenList,
		Destination:    destination,
	}
	if err := p.Verify(); err != nil {
		return nil, err
	}
	return p, nil
}

// Verify verifies the packet format
func (p *Packet) Verify() error {
	switch {
	case p.Sender == "":
		return fmt.Errorf("%w: sender is empty", ErrMalformedPayload)
	case p.Recipient == "":
		return fmt.Errorf("%w: recipient is empty", ErrMalformedPayload)
	case p.Destination == "":
		return fmt.Errorf("%w: destination is empty", ErrMalformedPayload)
	case p.HubCollection == "" || p.HomeCollection == "":
		return fmt.Errorf("%w: collection is empty", ErrMalformedPayload)
	case len(p.TokenList) == 0:
		return fmt.Errorf("%w: %w", ErrMalformedPayload, ErrEmptyTokenList)
	}
	tokens := set.NewSet[string](len(p.TokenList))
	for _, id := range p.TokenList {
		if tokens.Contains(id) {
			return fmt.Errorf("%w: %w: %s", ErrMalformedPayload, ErrNftDuplication, id)
		}
		tokens.Add(id)
	}
	return nil
}

// Bytes returns the byte representation of the packet
func (p *Packet) Bytes() []byte {
	b, _ := Codec.Marshal(CodecVersion, p)
	return b
}

// ID returns the hash of the serialized packet
func (p *Packet) ID() ids.ID {
	return ids.ID(ComputeHash256Array(p.Bytes()))
}

// ParsePacket parses a packet from bytes
func ParsePacket(b []byte) (*Packet, error) {
	if len(b) > MaxPacketSize {
		return nil, fmt.Errorf("%w: packet size %d exceeds maximum %d", ErrMalformedPayload, len(b), MaxPacketSize)
	}
	p := &Packet{}
	if _, err := Codec.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal packet: %v", ErrMalformedPayload, err)
	}
	if err := p.Verify(); err != nil {
		return nil, err
	}
	return p, nil
}
