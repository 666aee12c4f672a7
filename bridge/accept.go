// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"fmt"
	"slices"

	"github.com/luxfi/log"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
	"github.com/luxfi/transceiver/payload"
	"github.com/luxfi/transceiver/state"
	"github.com/luxfi/transceiver/topology"
)

var _ transceiver.Acceptor = (*Transceiver)(nil)

// Accept processes an encrypted packet. The retranslation outpost forwards
// it unchanged to its destination. The destination hub mints the tokens to
// the recipient; the destination outpost releases them from custody.
func (t *Transceiver) Accept(ctx context.Context, info transceiver.CallInfo, msg string, timestamp uint64) (*transceiver.Response, error) {
	var (
		action    string
		routeName string
		tokens    int
	)
	resp, err := t.execute(ctx, "accept", func() ([]transceiver.Msg, error) {
		cfg, err := t.loadActive()
		if err != nil {
			return nil, err
		}
		packet, err := payload.Decode(t.cipher, msg, timestamp)
		if err != nil {
			return nil, err
		}
		packetID := transceiver.PacketID(msg, timestamp)
		consumed, err := t.state.IsConsumed(packetID)
		if err != nil {
			return nil, err
		}
		if consumed {
			return nil, fmt.Errorf("%w: %s", transceiver.ErrPacketReplayed, packetID)
		}

		retranslationOutpost, err := t.state.RetranslationOutpost()
		if err != nil {
			return nil, err
		}
		outposts, err := t.state.Outposts()
		if err != nil {
			return nil, err
		}
		// the outpost side of the transfer is the destination of hub packets
		// and the sender of every other packet
		counterpart := packet.Sender
		if packet.Sender == cfg.HubAddress {
			counterpart = packet.Destination
		}
		route, err := topology.Resolve(t.codec, topology.Input{
			Role:                 cfg.Role,
			Hub:                  cfg.HubAddress,
			RetranslationOutpost: retranslationOutpost,
			Target:               packet.Destination,
			HomeCollection:       packet.HomeCollection,
			Outposts:             outposts,
			Transceiver:          t.address,
			Counterpart:          counterpart,
		})
		if err != nil {
			return nil, err
		}
		if err := t.state.MarkConsumed(packetID); err != nil {
			return nil, err
		}
		routeName = route.Route.String()
		tokens = len(packet.TokenList)

		if route.Stage == topology.Second {
			action = "relay"
			return t.relay(cfg, route, packet, &payload.Encrypted{Value: msg, Timestamp: timestamp}, info)
		}

		if packet.Destination != t.address {
			return nil, fmt.Errorf("%w: packet is addressed to %s", transceiver.ErrWrongTargetAddress, packet.Destination)
		}
		if err := topology.CheckEndpoints(route); err != nil {
			return nil, err
		}
		collections, err := t.state.Collections()
		if err != nil {
			return nil, err
		}
		if !slices.Contains(collections, state.Collection{
			HomeCollection: packet.HomeCollection,
			HubCollection:  packet.HubCollection,
		}) {
			return nil, fmt.Errorf("%w: %s", transceiver.ErrCollectionIsNotFound, packet.HubCollection)
		}

		if cfg.Role == topology.Hub {
			action = "mint"
			return t.mint(cfg, route, outposts, packet)
		}
		action = "release"
		return t.release(cfg, packet)
	})
	if err != nil {
		return nil, err
	}
	t.metrics.transferred(action, routeName, tokens)
	return resp, nil
}

// mint registers a newly seen outpost and mints the tokens on the hub collection
func (t *Transceiver) mint(
	cfg *state.Config,
	route *topology.Info,
	outposts []string,
	packet *transceiver.Packet,
) ([]transceiver.Msg, error) {
	home, err := address.SamePrefix(t.codec, packet.Sender, packet.HomeCollection)
	if err != nil {
		return nil, err
	}
	if !home || packet.Sender != route.HomeOutpost {
		return nil, fmt.Errorf("%w: %s is not the outpost of %s", transceiver.ErrOutpostIsNotFound, packet.Sender, packet.HomeCollection)
	}
	if !slices.Contains(outposts, packet.Sender) {
		if err := t.state.SetOutposts(append(outposts, packet.Sender)); err != nil {
			return nil, err
		}
		t.log.Info("registered outpost", log.String("outpost", packet.Sender))
	}

	t.log.Info("minting tokens",
		log.String("collection", packet.HubCollection),
		log.String("recipient", packet.Recipient),
		log.Int("tokens", len(packet.TokenList)),
	)
	return []transceiver.Msg{
		transceiver.MintNft{
			Minter:     cfg.NftMinter,
			Collection: packet.HubCollection,
			Recipient:  packet.Recipient,
			TokenList:  packet.TokenList,
		},
	}, nil
}

// release returns locked tokens of the home collection to the recipient
func (t *Transceiver) release(cfg *state.Config, packet *transceiver.Packet) ([]transceiver.Msg, error) {
	if packet.Sender != cfg.HubAddress {
		return nil, fmt.Errorf("%w: only the hub releases tokens", transceiver.ErrUnauthorized)
	}

	msgs := make([]transceiver.Msg, 0, len(packet.TokenList))
	for _, id := range packet.TokenList {
		msgs = append(msgs, transceiver.TransferNft{
			Collection: packet.HomeCollection,
			Recipient:  packet.Recipient,
			TokenID:    id,
		})
	}
	t.log.Info("releasing tokens",
		log.String("collection", packet.HomeCollection),
		log.String("recipient", packet.Recipient),
		log.Int("tokens", len(packet.TokenList)),
	)
	return msgs, nil
}

// relay forwards a packet from the retranslation outpost to its destination
func (t *Transceiver) relay(
	cfg *state.Config,
	route *topology.Info,
	packet *transceiver.Packet,
	enc *payload.Encrypted,
	info transceiver.CallInfo,
) ([]transceiver.Msg, error) {
	if err := topology.CheckRelay(t.codec, route); err != nil {
		return nil, err
	}
	delivery, err := t.deliver(cfg, route, enc, nil, info.Time)
	if err != nil {
		return nil, err
	}
	t.log.Info("relaying packet",
		log.String("sender", packet.Sender),
		log.String("destination", packet.Destination),
		log.Stringer("route", route.Description),
	)
	return []transceiver.Msg{delivery}, nil
}
