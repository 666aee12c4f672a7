// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package transceiver

import (
	"errors"
	"fmt"
)

// Kind groups errors by the reason a call was rejected.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAuthorization
	KindValidation
	KindNotFound
	KindTopology
	KindPaused
	KindCodec
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTopology:
		return "topology"
	case KindPaused:
		return "paused"
	case KindCodec:
		return "codec"
	default:
		return "unknown"
	}
}

// Error represents a transceiver error
type Error struct {
	Kind    Kind
	Code    int32
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("transceiver error %d: %s", e.Code, e.Message)
}

var (
	ErrUnauthorized          = &Error{Kind: KindAuthorization, Code: 1, Message: "sender does not have access permissions"}
	ErrTransferAdminDeadline = &Error{Kind: KindAuthorization, Code: 2, Message: "it's too late to accept admin role"}

	ErrNoParameters          = &Error{Kind: KindValidation, Code: 10, Message: "parameters are not provided"}
	ErrExceededTokenLimit    = &Error{Kind: KindValidation, Code: 11, Message: "max tokens amount per tx is exceeded"}
	ErrNftDuplication        = &Error{Kind: KindValidation, Code: 12, Message: "NFT duplication"}
	ErrEmptyTokenList        = &Error{Kind: KindValidation, Code: 13, Message: "empty token list"}
	ErrCollectionDuplication = &Error{Kind: KindValidation, Code: 14, Message: "collection duplication"}
	ErrWrongAssetType        = &Error{Kind: KindValidation, Code: 15, Message: "wrong asset type"}
	ErrWrongFundsCombination = &Error{Kind: KindValidation, Code: 16, Message: "wrong funds combination"}
	ErrWrongMessageType      = &Error{Kind: KindValidation, Code: 17, Message: "wrong message type"}
	ErrWrongActionType       = &Error{Kind: KindValidation, Code: 18, Message: "wrong action type"}
	ErrPacketReplayed        = &Error{Kind: KindValidation, Code: 19, Message: "packet is already consumed"}
	ErrInvalidAddress        = &Error{Kind: KindValidation, Code: 20, Message: "invalid address"}

	ErrNftIsNotFound        = &Error{Kind: KindNotFound, Code: 30, Message: "NFT is not found"}
	ErrCollectionIsNotFound = &Error{Kind: KindNotFound, Code: 31, Message: "collection is not found"}
	ErrOutpostIsNotFound    = &Error{Kind: KindNotFound, Code: 32, Message: "outpost is not found"}
	ErrChannelIsNotFound    = &Error{Kind: KindNotFound, Code: 33, Message: "channel is not found"}

	ErrWrongTargetAddress           = &Error{Kind: KindTopology, Code: 40, Message: "wrong target address"}
	ErrHubIsNotOutpost              = &Error{Kind: KindTopology, Code: 41, Message: "hub can't be outpost"}
	ErrHubIsNotRetranslator         = &Error{Kind: KindTopology, Code: 42, Message: "hub can't be retranslation outpost"}
	ErrHomeOutpostIsNotRetranslator = &Error{Kind: KindTopology, Code: 43, Message: "home outpost can't be retranslation outpost"}
	ErrTransceiversAreNotInterchain = &Error{Kind: KindTopology, Code: 44, Message: "transceivers must be placed on different networks"}

	ErrContractIsPaused = &Error{Kind: KindPaused, Code: 50, Message: "contract is paused"}

	ErrMalformedPayload = &Error{Kind: KindCodec, Code: 60, Message: "malformed payload"}
	ErrDecryptionFailed = &Error{Kind: KindCodec, Code: 61, Message: "decryption failed"}
	ErrInvalidTimestamp = &Error{Kind: KindCodec, Code: 62, Message: "timestamp is too short for nonce"}
	ErrInvalidKey       = &Error{Kind: KindCodec, Code: 63, Message: "invalid encryption key"}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
