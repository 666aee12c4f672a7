// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package transceiver

import (
	"crypto/sha256"
	"strconv"
	"time"

	"github.com/luxfi/ids"
)

const (
	// DefaultTokenLimit is the max amount of tokens in a single transfer
	DefaultTokenLimit = 10

	// DefaultMinRelayFee is charged on top of the base unit when the hub
	// sends over the transport layer
	DefaultMinRelayFee = 1_000_000

	// DefaultDenom is the fee denomination
	DefaultDenom = "untrn"

	// TransferPort is the transport port used for relay transfers
	TransferPort = "transfer"

	// RelayTimeout bounds how long a relay transfer may stay in flight
	RelayTimeout = 10 * time.Minute

	// AdminTransferTimeout is the window for accepting the admin role
	AdminTransferTimeout = 7 * 24 * time.Hour

	// OwnershipPageSize and OwnershipMaxPages bound the ownership scan
	OwnershipPageSize = 100
	OwnershipMaxPages = 50

	DefaultChannelPrefix  = "stars"
	DefaultChannelFromHub = "channel-18"
	DefaultChannelToHub   = "channel-191"
)

// ComputeHash256 computes SHA256 hash
func ComputeHash256(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// ComputeHash256Array computes SHA256 hash and returns as array
func ComputeHash256Array(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// PacketID identifies an encrypted packet by its timestamp and ciphertext.
func PacketID(value string, timestamp uint64) ids.ID {
	b := make([]byte, 0, len(value)+20)
	b = strconv.AppendUint(b, timestamp, 10)
	b = append(b, ':')
	b = append(b, value...)
	return ids.ID(sha256.Sum256(b))
}

// Nanos converts a block time into the nanosecond timestamp carried by packets.
func Nanos(t time.Time) uint64 {
	return uint64(t.UnixNano())
}
