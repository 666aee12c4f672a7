// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"

	"github.com/luxfi/log"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/payload"
	"github.com/luxfi/transceiver/topology"
)

// SendMsg requests a transfer of tokens of a registered collection
type SendMsg struct {
	HubCollection string
	TokenList     []string
	// Target overrides the default target: the home outpost on a hub and the
	// hub on an outpost. It may name the retranslation outpost.
	Target string
}

// Send takes custody of the caller's tokens and ships them toward the opposite endpoint.
//
// An outpost locks the tokens. The hub locks them, approves the minter and
// burns them. Either way the packet goes to the target directly when it lives
// on the same chain and as a relay memo on a transport transfer otherwise.
func (t *Transceiver) Send(ctx context.Context, info transceiver.CallInfo, msg SendMsg) (*transceiver.Response, error) {
	var (
		routeName string
		tokens    = len(msg.TokenList)
	)
	resp, err := t.execute(ctx, "send", func() ([]transceiver.Msg, error) {
		cfg, err := t.loadActive()
		if err != nil {
			return nil, err
		}
		if err := checkTokenList(cfg, msg.TokenList); err != nil {
			return nil, err
		}

		collections, err := t.state.Collections()
		if err != nil {
			return nil, err
		}
		collection, err := findCollection(collections, msg.HubCollection)
		if err != nil {
			return nil, err
		}
		retranslationOutpost, err := t.state.RetranslationOutpost()
		if err != nil {
			return nil, err
		}
		outposts, err := t.state.Outposts()
		if err != nil {
			return nil, err
		}

		route, err := topology.Resolve(t.codec, topology.Input{
			Role:                 cfg.Role,
			Hub:                  cfg.HubAddress,
			RetranslationOutpost: retranslationOutpost,
			Target:               msg.Target,
			HomeCollection:       collection.HomeCollection,
			Outposts:             outposts,
			Transceiver:          t.address,
			Counterpart:          t.address,
		})
		if err != nil {
			return nil, err
		}
		if err := topology.CheckSend(t.codec, route); err != nil {
			return nil, err
		}
		if err := checkFunds(cfg, route, info.Funds); err != nil {
			return nil, err
		}

		isHub := cfg.Role == topology.Hub
		custodyCollection := collection.HomeCollection
		if isHub {
			custodyCollection = collection.HubCollection
		}
		if err := checkTokensHolder(ctx, t.querier, info.Sender, custodyCollection, msg.TokenList); err != nil {
			return nil, err
		}

		msgs := make([]transceiver.Msg, 0, len(msg.TokenList)+3)
		for _, id := range msg.TokenList {
			msgs = append(msgs, transceiver.TransferNft{
				Collection: custodyCollection,
				Recipient:  t.address,
				TokenID:    id,
			})
		}
		if isHub {
			msgs = append(msgs,
				transceiver.ApproveAll{
					Collection: collection.HubCollection,
					Operator:   cfg.NftMinter,
				},
				transceiver.BurnNft{
					Minter:     cfg.NftMinter,
					Collection: collection.HubCollection,
					TokenList:  msg.TokenList,
				},
			)
		}

		destination := route.Destination()
		destinationPrefix, err := t.codec.Prefix(destination)
		if err != nil {
			return nil, err
		}
		recipient, err := t.codec.Reprefix(info.Sender, destinationPrefix)
		if err != nil {
			return nil, err
		}
		packet, err := transceiver.NewPacket(
			t.address,
			recipient,
			collection.HubCollection,
			collection.HomeCollection,
			msg.TokenList,
			destination,
		)
		if err != nil {
			return nil, err
		}
		enc, err := payload.Encode(t.cipher, packet, transceiver.Nanos(info.Time))
		if err != nil {
			return nil, err
		}

		fee := requiredAmount(cfg, route)
		fee.SubUint64(fee, 1)
		delivery, err := t.deliver(cfg, route, enc, fee, info.Time)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, delivery)

		routeName = route.Route.String()
		t.log.Info("sending tokens",
			log.String("sender", info.Sender),
			log.String("collection", custodyCollection),
			log.Int("tokens", len(msg.TokenList)),
			log.String("target", route.Target),
			log.String("destination", destination),
			log.Stringer("route", route.Description),
		)
		return msgs, nil
	})
	if err != nil {
		return nil, err
	}
	t.metrics.transferred("send", routeName, tokens)
	return resp, nil
}
