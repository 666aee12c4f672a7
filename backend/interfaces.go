// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package backend

import (
	"time"

	"github.com/luxfi/transceiver"
)

// Transfer is an interchain transfer waiting for a relayer
type Transfer struct {
	SourceChain string
	transceiver.InterchainTransfer
}

// Backend is the view of a multi-chain ledger a relayer needs
type Backend interface {
	// Drain removes and returns the queued interchain transfers in submission order.
	Drain() []Transfer

	// Contract returns the contract at addr and the current time of its chain.
	Contract(addr string) (transceiver.Acceptor, time.Time, error)
}
