// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package transceiver

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

// MsgKind identifies an outbound message
type MsgKind uint8

const (
	MsgTransferNft MsgKind = iota
	MsgApproveAll
	MsgMintNft
	MsgBurnNft
	MsgExecuteAccept
	MsgInterchainTransfer
)

func (k MsgKind) String() string {
	switch k {
	case MsgTransferNft:
		return "transfer_nft"
	case MsgApproveAll:
		return "approve_all"
	case MsgMintNft:
		return "mint"
	case MsgBurnNft:
		return "burn"
	case MsgExecuteAccept:
		return "accept"
	case MsgInterchainTransfer:
		return "interchain_transfer"
	default:
		return "unknown"
	}
}

// Msg is an effect emitted by a transceiver and executed by a Dispatcher
// on behalf of the emitting contract.
type Msg interface {
	Kind() MsgKind
}

// TransferNft moves a token of Collection to Recipient
type TransferNft struct {
	Collection string
	Recipient  string
	TokenID    string
}

// ApproveAll grants Operator control over every token the caller holds in Collection
type ApproveAll struct {
	Collection string
	Operator   string
}

// MintNft asks the minter contract to create tokens for Recipient
type MintNft struct {
	Minter     string
	Collection string
	Recipient  string
	TokenList  []string
}

// BurnNft asks the minter contract to destroy tokens
type BurnNft struct {
	Minter     string
	Collection string
	TokenList  []string
}

// ExecuteAccept delivers an encrypted packet to a transceiver on the same chain
type ExecuteAccept struct {
	Contract  string
	Msg       string
	Timestamp uint64
}

// InterchainTransfer is a transport-layer token transfer carrying a relay memo
type InterchainTransfer struct {
	SourcePort    string
	SourceChannel string
	Token         Coin
	// Fee is paid to relayers; zero when the sender does not pay one.
	Fee              Coin
	Sender           string
	Receiver         string
	TimeoutTimestamp uint64
	Memo             string
}

func (TransferNft) Kind() MsgKind        { return MsgTransferNft }
func (ApproveAll) Kind() MsgKind         { return MsgApproveAll }
func (MintNft) Kind() MsgKind            { return MsgMintNft }
func (BurnNft) Kind() MsgKind            { return MsgBurnNft }
func (ExecuteAccept) Kind() MsgKind      { return MsgExecuteAccept }
func (InterchainTransfer) Kind() MsgKind { return MsgInterchainTransfer }

// Coin is an amount of a single denomination
type Coin struct {
	Denom  string
	Amount *uint256.Int
}

// NewCoin creates a coin from a uint64 amount
func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: uint256.NewInt(amount)}
}

// IsZero reports whether the coin carries no value
func (c Coin) IsZero() bool {
	return c.Amount == nil || c.Amount.IsZero()
}

func (c Coin) String() string {
	if c.Amount == nil {
		return "0" + c.Denom
	}
	return fmt.Sprintf("%s%s", c.Amount.Dec(), c.Denom)
}

// CallInfo describes the caller and the environment of a single call
type CallInfo struct {
	Sender string
	Funds  []Coin
	Time   time.Time
}

// Response lists the messages produced by a call in dispatch order
type Response struct {
	Action string
	Msgs   []Msg
}
