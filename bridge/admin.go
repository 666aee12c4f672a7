// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"fmt"
	"slices"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/state"
	"github.com/luxfi/transceiver/topology"
)

// UpdateConfigMsg lists the config fields to change. Nil fields are kept.
type UpdateConfigMsg struct {
	Admin       *string
	NftMinter   *string
	HubAddress  *string
	TokenLimit  *uint32
	MinRelayFee *uint256.Int
}

// checkAdmin loads the config and verifies the caller is the admin.
// Admin calls carry no funds.
func (t *Transceiver) checkAdmin(info transceiver.CallInfo) (*state.Config, error) {
	if len(info.Funds) != 0 {
		return nil, fmt.Errorf("%w: admin calls take no funds", transceiver.ErrWrongFundsCombination)
	}
	cfg, err := t.state.Config()
	if err != nil {
		return nil, err
	}
	if info.Sender != cfg.Admin {
		return nil, transceiver.ErrUnauthorized
	}
	return cfg, nil
}

func (t *Transceiver) Pause(ctx context.Context, info transceiver.CallInfo) (*transceiver.Response, error) {
	return t.setPaused(ctx, "pause", info, true)
}

func (t *Transceiver) Unpause(ctx context.Context, info transceiver.CallInfo) (*transceiver.Response, error) {
	return t.setPaused(ctx, "unpause", info, false)
}

func (t *Transceiver) setPaused(ctx context.Context, action string, info transceiver.CallInfo, paused bool) (*transceiver.Response, error) {
	return t.execute(ctx, action, func() ([]transceiver.Msg, error) {
		if _, err := t.checkAdmin(info); err != nil {
			return nil, err
		}
		if err := t.state.SetPaused(paused); err != nil {
			return nil, err
		}
		t.log.Info("pause state changed", log.Bool("paused", paused))
		return nil, nil
	})
}

// UpdateConfig changes config fields in place. A new admin is not applied
// directly: it opens a handover the new admin has to accept within
// AdminTransferTimeout.
func (t *Transceiver) UpdateConfig(ctx context.Context, info transceiver.CallInfo, msg UpdateConfigMsg) (*transceiver.Response, error) {
	return t.execute(ctx, "update_config", func() ([]transceiver.Msg, error) {
		cfg, err := t.checkAdmin(info)
		if err != nil {
			return nil, err
		}

		updated := false
		if msg.Admin != nil {
			if _, _, err := t.codec.Split(*msg.Admin); err != nil {
				return nil, err
			}
			deadline := uint64(info.Time.Add(transceiver.AdminTransferTimeout).Unix())
			if err := t.state.SetTransferAdmin(&state.TransferAdminState{
				NewAdmin: *msg.Admin,
				Deadline: deadline,
			}); err != nil {
				return nil, err
			}
			updated = true
		}
		if msg.NftMinter != nil {
			if _, _, err := t.codec.Split(*msg.NftMinter); err != nil {
				return nil, err
			}
			cfg.NftMinter = *msg.NftMinter
			updated = true
		}
		if msg.HubAddress != nil {
			if cfg.Role == topology.Hub {
				return nil, fmt.Errorf("%w: hub address of a hub is fixed", transceiver.ErrWrongActionType)
			}
			if _, _, err := t.codec.Split(*msg.HubAddress); err != nil {
				return nil, err
			}
			cfg.HubAddress = *msg.HubAddress
			updated = true
		}
		if msg.TokenLimit != nil {
			cfg.TokenLimit = *msg.TokenLimit
			updated = true
		}
		if msg.MinRelayFee != nil {
			cfg.MinRelayFee = new(uint256.Int).Set(msg.MinRelayFee)
			updated = true
		}
		if !updated {
			return nil, transceiver.ErrNoParameters
		}
		return nil, t.state.SetConfig(cfg)
	})
}

// AcceptAdminRole completes a pending admin handover
func (t *Transceiver) AcceptAdminRole(ctx context.Context, info transceiver.CallInfo) (*transceiver.Response, error) {
	return t.execute(ctx, "accept_admin_role", func() ([]transceiver.Msg, error) {
		cfg, err := t.state.Config()
		if err != nil {
			return nil, err
		}
		pending, err := t.state.TransferAdmin()
		if err != nil {
			return nil, err
		}
		if pending == nil || info.Sender != pending.NewAdmin {
			return nil, transceiver.ErrUnauthorized
		}
		now := uint64(info.Time.Unix())
		if now >= pending.Deadline {
			return nil, transceiver.ErrTransferAdminDeadline
		}

		previous := cfg.Admin
		cfg.Admin = pending.NewAdmin
		pending.Deadline = now
		if err := t.state.SetConfig(cfg); err != nil {
			return nil, err
		}
		if err := t.state.SetTransferAdmin(pending); err != nil {
			return nil, err
		}
		t.log.Info("admin role transferred",
			log.String("previous", previous),
			log.String("admin", cfg.Admin),
		)
		return nil, nil
	})
}

// AddCollection registers a home collection and its hub mirror
func (t *Transceiver) AddCollection(ctx context.Context, info transceiver.CallInfo, hubCollection, homeCollection string) (*transceiver.Response, error) {
	return t.execute(ctx, "add_collection", func() ([]transceiver.Msg, error) {
		cfg, err := t.checkAdmin(info)
		if err != nil {
			return nil, err
		}
		// only the collection on this chain is checked
		local := homeCollection
		if cfg.Role == topology.Hub {
			local = hubCollection
		}
		if _, _, err := t.codec.Split(local); err != nil {
			return nil, err
		}

		collections, err := t.state.Collections()
		if err != nil {
			return nil, err
		}
		for _, c := range collections {
			if c.HubCollection == hubCollection || c.HomeCollection == homeCollection {
				return nil, transceiver.ErrCollectionDuplication
			}
		}
		collections = append(collections, state.Collection{
			HomeCollection: homeCollection,
			HubCollection:  hubCollection,
		})
		return nil, t.state.SetCollections(collections)
	})
}

func (t *Transceiver) RemoveCollection(ctx context.Context, info transceiver.CallInfo, hubCollection string) (*transceiver.Response, error) {
	return t.execute(ctx, "remove_collection", func() ([]transceiver.Msg, error) {
		if _, err := t.checkAdmin(info); err != nil {
			return nil, err
		}
		collections, err := t.state.Collections()
		if err != nil {
			return nil, err
		}
		i := slices.IndexFunc(collections, func(c state.Collection) bool {
			return c.HubCollection == hubCollection
		})
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", transceiver.ErrCollectionIsNotFound, hubCollection)
		}
		return nil, t.state.SetCollections(slices.Delete(collections, i, i+1))
	})
}

// SetChannel stores the channels of a prefix, replacing a previous entry
func (t *Transceiver) SetChannel(ctx context.Context, info transceiver.CallInfo, channel state.Channel) (*transceiver.Response, error) {
	return t.execute(ctx, "set_channel", func() ([]transceiver.Msg, error) {
		if _, err := t.checkAdmin(info); err != nil {
			return nil, err
		}
		if channel.Prefix == "" || (channel.FromHub == "" && channel.ToHub == "") {
			return nil, transceiver.ErrNoParameters
		}
		channels, err := t.state.Channels()
		if err != nil {
			return nil, err
		}
		if i := slices.IndexFunc(channels, func(c state.Channel) bool { return c.Prefix == channel.Prefix }); i >= 0 {
			channels[i] = channel
		} else {
			channels = append(channels, channel)
		}
		return nil, t.state.SetChannels(channels)
	})
}

// SetRetranslationOutpost designates the retranslation outpost. An empty
// address clears it.
func (t *Transceiver) SetRetranslationOutpost(ctx context.Context, info transceiver.CallInfo, addr string) (*transceiver.Response, error) {
	return t.execute(ctx, "set_retranslation_outpost", func() ([]transceiver.Msg, error) {
		cfg, err := t.checkAdmin(info)
		if err != nil {
			return nil, err
		}
		if addr != "" {
			if _, _, err := t.codec.Split(addr); err != nil {
				return nil, err
			}
			if addr == cfg.HubAddress {
				return nil, transceiver.ErrHubIsNotRetranslator
			}
			outposts, err := t.state.Outposts()
			if err != nil {
				return nil, err
			}
			if slices.Contains(outposts, addr) {
				return nil, transceiver.ErrHomeOutpostIsNotRetranslator
			}
		}
		return nil, t.state.SetRetranslationOutpost(addr)
	})
}
