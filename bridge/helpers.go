// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/math/set"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/payload"
	"github.com/luxfi/transceiver/state"
	"github.com/luxfi/transceiver/topology"
)

// checkTokenList rejects duplicated, empty and oversized token lists, in that order
func checkTokenList(cfg *state.Config, tokenList []string) error {
	tokens := set.Of(tokenList...)
	if tokens.Len() != len(tokenList) {
		return transceiver.ErrNftDuplication
	}
	if len(tokenList) == 0 {
		return transceiver.ErrEmptyTokenList
	}
	if len(tokenList) > int(cfg.TokenLimit) {
		return fmt.Errorf("%w: %d > %d", transceiver.ErrExceededTokenLimit, len(tokenList), cfg.TokenLimit)
	}
	return nil
}

// requiredAmount is one base unit, plus the relay fee when the hub sends over transport
func requiredAmount(cfg *state.Config, info *topology.Info) *uint256.Int {
	amount := uint256.NewInt(1)
	if cfg.Role == topology.Hub && info.Mode == topology.Interchain {
		amount.Add(amount, cfg.MinRelayFee)
	}
	return amount
}

// checkFunds verifies the call carries exactly the required amount of the configured denom
func checkFunds(cfg *state.Config, info *topology.Info, funds []transceiver.Coin) error {
	if len(funds) != 1 {
		return fmt.Errorf("%w: expected a single coin, got %d", transceiver.ErrWrongFundsCombination, len(funds))
	}
	coin := funds[0]
	if coin.Denom != cfg.Denom {
		return fmt.Errorf("%w: expected %s, got %s", transceiver.ErrWrongAssetType, cfg.Denom, coin.Denom)
	}
	required := requiredAmount(cfg, info)
	if coin.Amount == nil || !coin.Amount.Eq(required) {
		return fmt.Errorf("%w: expected %s%s, got %s", transceiver.ErrWrongFundsCombination, required.Dec(), cfg.Denom, coin)
	}
	return nil
}

// checkTokensHolder verifies holder owns every token in tokenList, scanning at
// most OwnershipMaxPages pages of OwnershipPageSize tokens.
func checkTokensHolder(
	ctx context.Context,
	querier transceiver.Querier,
	holder string,
	collection string,
	tokenList []string,
) error {
	owned := set.NewSet[string](transceiver.OwnershipPageSize)
	startAfter := ""
	for i := 0; i < transceiver.OwnershipMaxPages; i++ {
		page, err := querier.ListOwnedTokens(ctx, collection, holder, startAfter, transceiver.OwnershipPageSize)
		if err != nil {
			return fmt.Errorf("failed to query tokens of %s: %w", holder, err)
		}
		owned.Add(page...)
		if len(page) < transceiver.OwnershipPageSize {
			break
		}
		startAfter = page[len(page)-1]
	}

	for _, id := range tokenList {
		if !owned.Contains(id) {
			return fmt.Errorf("%w: %s", transceiver.ErrNftIsNotFound, id)
		}
	}
	return nil
}

func findCollection(collections []state.Collection, hubCollection string) (state.Collection, error) {
	for _, c := range collections {
		if c.HubCollection == hubCollection {
			return c, nil
		}
	}
	return state.Collection{}, fmt.Errorf("%w: %s", transceiver.ErrCollectionIsNotFound, hubCollection)
}

// channelFor selects the transport channel for an interchain hop. Hops to
// the hub use the to_hub channel of this chain's entry; every other hop uses
// the from_hub channel of the target chain's entry.
func (t *Transceiver) channelFor(info *topology.Info) (string, error) {
	key, pick := info.Target, func(c state.Channel) string { return c.FromHub }
	if info.Direction == topology.ToHub {
		key, pick = info.Transceiver, func(c state.Channel) string { return c.ToHub }
	}
	prefix, err := t.codec.Prefix(key)
	if err != nil {
		return "", err
	}
	channels, err := t.state.Channels()
	if err != nil {
		return "", err
	}
	for _, c := range channels {
		if c.Prefix == prefix && pick(c) != "" {
			return pick(c), nil
		}
	}
	return "", fmt.Errorf("%w: %s %s", transceiver.ErrChannelIsNotFound, prefix, info.Direction)
}

// deliver builds the message that hands an encrypted packet to info.Target
func (t *Transceiver) deliver(
	cfg *state.Config,
	info *topology.Info,
	enc *payload.Encrypted,
	fee *uint256.Int,
	now time.Time,
) (transceiver.Msg, error) {
	if info.Mode == topology.Local {
		return transceiver.ExecuteAccept{
			Contract:  info.Target,
			Msg:       enc.Value,
			Timestamp: enc.Timestamp,
		}, nil
	}

	channel, err := t.channelFor(info)
	if err != nil {
		return nil, err
	}
	memo, err := payload.BuildRelayMemo(info.Target, enc)
	if err != nil {
		return nil, err
	}
	transfer := transceiver.InterchainTransfer{
		SourcePort:       transceiver.TransferPort,
		SourceChannel:    channel,
		Token:            transceiver.NewCoin(cfg.Denom, 1),
		Sender:           t.address,
		Receiver:         info.Target,
		TimeoutTimestamp: transceiver.Nanos(now.Add(transceiver.RelayTimeout)),
		Memo:             memo,
	}
	if fee != nil && !fee.IsZero() {
		transfer.Fee = transceiver.Coin{Denom: cfg.Denom, Amount: new(uint256.Int).Set(fee)}
	}
	return transfer, nil
}
