// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package transceiver

import (
	"context"
)

// Dispatcher executes messages emitted by a contract.
// Messages run in order; an error from any of them fails the whole batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, caller string, msgs []Msg) error
}

// Querier reads NFT ownership from collection contracts.
type Querier interface {
	// ListOwnedTokens returns up to limit token ids of owner in collection,
	// sorted, strictly after startAfter when it is non-empty.
	ListOwnedTokens(ctx context.Context, collection, owner, startAfter string, limit int) ([]string, error)
}
