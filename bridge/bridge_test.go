// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address/addresstest"
	"github.com/luxfi/transceiver/crypto"
	"github.com/luxfi/transceiver/state"
	"github.com/luxfi/transceiver/topology"
)

var testTime = time.Unix(1_700_000_000, 123_456_789)

// mockQuerier serves ownership from a collection -> owner -> tokens map
type mockQuerier struct {
	owned map[string]map[string][]string
	calls int
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{owned: make(map[string]map[string][]string)}
}

func (m *mockQuerier) give(collection, owner string, tokens ...string) {
	if m.owned[collection] == nil {
		m.owned[collection] = make(map[string][]string)
	}
	m.owned[collection][owner] = append(m.owned[collection][owner], tokens...)
	slices.Sort(m.owned[collection][owner])
}

func (m *mockQuerier) ListOwnedTokens(_ context.Context, collection, owner, startAfter string, limit int) ([]string, error) {
	m.calls++
	var page []string
	for _, id := range m.owned[collection][owner] {
		if startAfter != "" && strings.Compare(id, startAfter) <= 0 {
			continue
		}
		if len(page) == limit {
			break
		}
		page = append(page, id)
	}
	return page, nil
}

type testNetwork struct {
	admin        string
	user         string
	hubUser      string
	hub          string
	outpost      string
	otherOutpost string
	relay        string
	minter       string
	homeNft      string
	hubNft       string
	channels     []state.Channel
	cipher       crypto.Cipher
}

func newTestNetwork(t *testing.T) *testNetwork {
	c, err := crypto.New(crypto.SchemeAESSIV, bytes.Repeat([]byte{7}, crypto.KeySize))
	require.NoError(t, err)
	return &testNetwork{
		admin:        addresstest.New(t, "stars", 1),
		user:         addresstest.New(t, "stars", 2),
		hubUser:      addresstest.New(t, "neutron", 2),
		hub:          addresstest.Contract(t, "neutron", 10),
		outpost:      addresstest.Contract(t, "stars", 11),
		otherOutpost: addresstest.Contract(t, "juno", 12),
		relay:        addresstest.Contract(t, "osmo", 13),
		minter:       addresstest.Contract(t, "neutron", 20),
		homeNft:      addresstest.Contract(t, "stars", 30),
		hubNft:       addresstest.Contract(t, "neutron", 31),
		channels: []state.Channel{
			{Prefix: "stars", FromHub: "channel-18", ToHub: "channel-191"},
			{Prefix: "osmo", FromHub: "channel-40", ToHub: "channel-41"},
		},
		cipher: c,
	}
}

type harness struct {
	*Transceiver
	dispatcher *transceiver.FakeDispatcher
	querier    *mockQuerier
}

func (n *testNetwork) newTransceiver(t *testing.T, addr string) *harness {
	h := &harness{
		dispatcher: &transceiver.FakeDispatcher{},
		querier:    newMockQuerier(),
	}
	tr, err := New(&Config{
		Address:    addr,
		DB:         memdb.New(),
		Codec:      addresstest.Codec(t),
		Cipher:     n.cipher,
		Querier:    h.querier,
		Dispatcher: h.dispatcher,
	})
	require.NoError(t, err)
	h.Transceiver = tr
	return h
}

func (n *testNetwork) adminCall() transceiver.CallInfo {
	return transceiver.CallInfo{Sender: n.admin, Time: testTime}
}

func (n *testNetwork) newOutpost(t *testing.T) *harness {
	h := n.newTransceiver(t, n.outpost)
	ctx := context.Background()
	_, err := h.Instantiate(ctx, n.adminCall(), InstantiateMsg{
		Role:       topology.Outpost,
		NftMinter:  n.minter,
		HubAddress: n.hub,
		Channels:   n.channels,
	})
	require.NoError(t, err)
	_, err = h.AddCollection(ctx, n.adminCall(), n.hubNft, n.homeNft)
	require.NoError(t, err)
	return h
}

func (n *testNetwork) newHub(t *testing.T) *harness {
	h := n.newTransceiver(t, n.hub)
	ctx := context.Background()
	_, err := h.Instantiate(ctx, n.adminCall(), InstantiateMsg{
		Role:      topology.Hub,
		NftMinter: n.minter,
		Channels:  n.channels,
	})
	require.NoError(t, err)
	_, err = h.AddCollection(ctx, n.adminCall(), n.hubNft, n.homeNft)
	require.NoError(t, err)
	return h
}

func sendCall(sender string, amount uint64) transceiver.CallInfo {
	return transceiver.CallInfo{
		Sender: sender,
		Funds:  []transceiver.Coin{transceiver.NewCoin(transceiver.DefaultDenom, amount)},
		Time:   testTime,
	}
}

func TestNewMissingDependencies(t *testing.T) {
	n := newTestNetwork(t)
	full := func() *Config {
		return &Config{
			Address:    n.hub,
			DB:         memdb.New(),
			Codec:      addresstest.Codec(t),
			Cipher:     n.cipher,
			Querier:    newMockQuerier(),
			Dispatcher: &transceiver.FakeDispatcher{},
		}
	}
	tests := []struct {
		name        string
		modify      func(*Config)
		expectedErr error
	}{
		{name: "database", modify: func(c *Config) { c.DB = nil }, expectedErr: errMissingDependency},
		{name: "codec", modify: func(c *Config) { c.Codec = nil }, expectedErr: errMissingDependency},
		{name: "cipher", modify: func(c *Config) { c.Cipher = nil }, expectedErr: errMissingDependency},
		{name: "querier", modify: func(c *Config) { c.Querier = nil }, expectedErr: errMissingDependency},
		{name: "dispatcher", modify: func(c *Config) { c.Dispatcher = nil }, expectedErr: errMissingDependency},
		{name: "address", modify: func(c *Config) { c.Address = "not-an-address" }, expectedErr: transceiver.ErrInvalidAddress},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := full()
			test.modify(cfg)
			_, err := New(cfg)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestInstantiate(t *testing.T) {
	require := require.New(t)
	n := newTestNetwork(t)
	ctx := context.Background()
	h := n.newTransceiver(t, n.hub)

	_, err := h.Instantiate(ctx, n.adminCall(), InstantiateMsg{Role: topology.Hub, IsRetranslationOutpost: true})
	require.ErrorIs(err, transceiver.ErrHubIsNotRetranslator)

	_, err = h.Instantiate(ctx, n.adminCall(), InstantiateMsg{Role: topology.Hub, NftMinter: n.minter})
	require.NoError(err)

	cfg, err := h.Config()
	require.NoError(err)
	require.Equal(n.admin, cfg.Admin)
	require.Equal(n.hub, cfg.HubAddress)
	require.Equal(uint32(transceiver.DefaultTokenLimit), cfg.TokenLimit)
	require.Equal(uint64(transceiver.DefaultMinRelayFee), cfg.MinRelayFee.Uint64())
	require.Equal(transceiver.DefaultDenom, cfg.Denom)

	channels, err := h.ChannelList()
	require.NoError(err)
	require.Equal([]state.Channel{{
		Prefix:  transceiver.DefaultChannelPrefix,
		FromHub: transceiver.DefaultChannelFromHub,
		ToHub:   transceiver.DefaultChannelToHub,
	}}, channels)

	paused, err := h.PauseState()
	require.NoError(err)
	require.False(paused)

	_, err = h.Instantiate(ctx, n.adminCall(), InstantiateMsg{Role: topology.Hub})
	require.ErrorIs(err, transceiver.ErrWrongActionType)
}

func TestInstantiateRetranslationOutpost(t *testing.T) {
	require := require.New(t)
	n := newTestNetwork(t)
	h := n.newTransceiver(t, n.relay)

	_, err := h.Instantiate(context.Background(), n.adminCall(), InstantiateMsg{
		Role:                   topology.Outpost,
		HubAddress:             n.hub,
		IsRetranslationOutpost: true,
	})
	require.NoError(err)

	relay, err := h.RetranslationOutpost()
	require.NoError(err)
	require.Equal(n.relay, relay)
}

func TestAdminHandover(t *testing.T) {
	require := require.New(t)
	n := newTestNetwork(t)
	ctx := context.Background()
	h := n.newOutpost(t)
	newAdmin := addresstest.New(t, "stars", 99)

	_, err := h.AcceptAdminRole(ctx, transceiver.CallInfo{Sender: newAdmin, Time: testTime})
	require.ErrorIs(err, transceiver.ErrUnauthorized)

	_, err = h.UpdateConfig(ctx, n.adminCall(), UpdateConfigMsg{Admin: &newAdmin})
	require.NoError(err)

	// the handover does not change the admin by itself
	cfg, err := h.Config()
	require.NoError(err)
	require.Equal(n.admin, cfg.Admin)

	_, err = h.AcceptAdminRole(ctx, transceiver.CallInfo{Sender: n.user, Time: testTime})
	require.ErrorIs(err, transceiver.ErrUnauthorized)

	late := transceiver.CallInfo{Sender: newAdmin, Time: testTime.Add(transceiver.AdminTransferTimeout)}
	_, err = h.AcceptAdminRole(ctx, late)
	require.ErrorIs(err, transceiver.ErrTransferAdminDeadline)

	onTime := transceiver.CallInfo{Sender: newAdmin, Time: testTime.Add(time.Hour)}
	_, err = h.AcceptAdminRole(ctx, onTime)
	require.NoError(err)

	cfg, err = h.Config()
	require.NoError(err)
	require.Equal(newAdmin, cfg.Admin)

	// the handover is spent
	_, err = h.AcceptAdminRole(ctx, onTime)
	require.ErrorIs(err, transceiver.ErrTransferAdminDeadline)

	_, err = h.Pause(ctx, n.adminCall())
	require.ErrorIs(err, transceiver.ErrUnauthorized)
	_, err = h.Pause(ctx, onTime)
	require.NoError(err)
}

func TestUpdateConfig(t *testing.T) {
	n := newTestNetwork(t)
	minter := addresstest.Contract(t, "stars", 50)
	hub := addresstest.Contract(t, "neutron", 51)
	limit := uint32(3)

	tests := []struct {
		name        string
		hub         bool
		info        func() transceiver.CallInfo
		msg         UpdateConfigMsg
		expectedErr error
		check       func(*require.Assertions, *state.Config)
	}{
		{
			name:        "no parameters",
			info:        n.adminCall,
			expectedErr: transceiver.ErrNoParameters,
		},
		{
			name:        "not admin",
			info:        func() transceiver.CallInfo { return transceiver.CallInfo{Sender: n.user, Time: testTime} },
			msg:         UpdateConfigMsg{TokenLimit: &limit},
			expectedErr: transceiver.ErrUnauthorized,
		},
		{
			name: "funds attached",
			info: func() transceiver.CallInfo {
				info := sendCall(n.admin, 1)
				return info
			},
			msg:         UpdateConfigMsg{TokenLimit: &limit},
			expectedErr: transceiver.ErrWrongFundsCombination,
		},
		{
			name:        "hub address of a hub",
			hub:         true,
			info:        n.adminCall,
			msg:         UpdateConfigMsg{HubAddress: &hub},
			expectedErr: transceiver.ErrWrongActionType,
		},
		{
			name: "outpost fields",
			info: n.adminCall,
			msg:  UpdateConfigMsg{NftMinter: &minter, HubAddress: &hub, TokenLimit: &limit},
			check: func(require *require.Assertions, cfg *state.Config) {
				require.Equal(minter, cfg.NftMinter)
				require.Equal(hub, cfg.HubAddress)
				require.Equal(limit, cfg.TokenLimit)
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			h := n.newOutpost(t)
			if test.hub {
				h = n.newHub(t)
			}
			_, err := h.UpdateConfig(context.Background(), test.info(), test.msg)
			require.ErrorIs(err, test.expectedErr)
			if test.check == nil {
				return
			}
			cfg, err := h.Config()
			require.NoError(err)
			test.check(require, cfg)
		})
	}
}

func TestCollections(t *testing.T) {
	require := require.New(t)
	n := newTestNetwork(t)
	ctx := context.Background()
	h := n.newHub(t)
	otherHome := addresstest.Contract(t, "juno", 40)
	otherHub := addresstest.Contract(t, "neutron", 41)

	_, err := h.AddCollection(ctx, n.adminCall(), n.hubNft, otherHome)
	require.ErrorIs(err, transceiver.ErrCollectionDuplication)
	_, err = h.AddCollection(ctx, n.adminCall(), otherHub, n.homeNft)
	require.ErrorIs(err, transceiver.ErrCollectionDuplication)
	_, err = h.AddCollection(ctx, n.adminCall(), otherHub, otherHome)
	require.NoError(err)

	c, err := h.Collection("", otherHome)
	require.NoError(err)
	require.Equal(otherHub, c.HubCollection)
	c, err = h.Collection(n.hubNft, "")
	require.NoError(err)
	require.Equal(n.homeNft, c.HomeCollection)
	_, err = h.Collection("", "")
	require.ErrorIs(err, transceiver.ErrNoParameters)

	_, err = h.RemoveCollection(ctx, n.adminCall(), n.hubNft)
	require.NoError(err)
	_, err = h.RemoveCollection(ctx, n.adminCall(), n.hubNft)
	require.ErrorIs(err, transceiver.ErrCollectionIsNotFound)
	_, err = h.Collection(n.hubNft, "")
	require.ErrorIs(err, transceiver.ErrCollectionIsNotFound)

	list, err := h.CollectionList()
	require.NoError(err)
	require.Equal([]state.Collection{{HomeCollection: otherHome, HubCollection: otherHub}}, list)
}

func TestAddCollectionValidatesLocalSide(t *testing.T) {
	n := newTestNetwork(t)
	validHub := addresstest.Contract(t, "neutron", 42)
	validHome := addresstest.Contract(t, "stars", 43)

	tests := []struct {
		name        string
		newNode     func(t *testing.T) *harness
		hub         string
		home        string
		expectedErr error
	}{
		{
			name:        "hub rejects a malformed hub collection",
			newNode:     n.newHub,
			hub:         "collection",
			home:        validHome,
			expectedErr: transceiver.ErrInvalidAddress,
		},
		{
			name:    "hub leaves the home collection to its outpost",
			newNode: n.newHub,
			hub:     validHub,
			home:    "collection",
		},
		{
			name:        "outpost rejects a malformed home collection",
			newNode:     n.newOutpost,
			hub:         validHub,
			home:        "collection",
			expectedErr: transceiver.ErrInvalidAddress,
		},
		{
			name:    "outpost leaves the hub collection to the hub",
			newNode: n.newOutpost,
			hub:     "collection",
			home:    validHome,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			h := test.newNode(t)

			_, err := h.AddCollection(context.Background(), n.adminCall(), test.hub, test.home)
			require.ErrorIs(err, test.expectedErr)
			collections, err := h.CollectionList()
			require.NoError(err)
			if test.expectedErr != nil {
				require.Len(collections, 1)
				return
			}
			require.Len(collections, 2)
		})
	}
}

func TestSetChannel(t *testing.T) {
	require := require.New(t)
	n := newTestNetwork(t)
	ctx := context.Background()
	h := n.newOutpost(t)

	_, err := h.SetChannel(ctx, n.adminCall(), state.Channel{Prefix: "juno"})
	require.ErrorIs(err, transceiver.ErrNoParameters)

	replaced := state.Channel{Prefix: "stars", FromHub: "channel-1", ToHub: "channel-2"}
	_, err = h.SetChannel(ctx, n.adminCall(), replaced)
	require.NoError(err)
	added := state.Channel{Prefix: "juno", FromHub: "channel-3"}
	_, err = h.SetChannel(ctx, n.adminCall(), added)
	require.NoError(err)

	channels, err := h.ChannelList()
	require.NoError(err)
	require.Equal([]state.Channel{replaced, n.channels[1], added}, channels)
}

func TestSetRetranslationOutpost(t *testing.T) {
	require := require.New(t)
	n := newTestNetwork(t)
	ctx := context.Background()
	hub := n.newHub(t)
	deliverToHub(t, n, hub, "1")

	_, err := hub.SetRetranslationOutpost(ctx, n.adminCall(), n.hub)
	require.ErrorIs(err, transceiver.ErrHubIsNotRetranslator)
	_, err = hub.SetRetranslationOutpost(ctx, n.adminCall(), n.outpost)
	require.ErrorIs(err, transceiver.ErrHomeOutpostIsNotRetranslator)
	_, err = hub.SetRetranslationOutpost(ctx, n.adminCall(), "osmo")
	require.ErrorIs(err, transceiver.ErrInvalidAddress)

	_, err = hub.SetRetranslationOutpost(ctx, n.adminCall(), n.relay)
	require.NoError(err)
	relay, err := hub.RetranslationOutpost()
	require.NoError(err)
	require.Equal(n.relay, relay)

	_, err = hub.SetRetranslationOutpost(ctx, n.adminCall(), "")
	require.NoError(err)
	relay, err = hub.RetranslationOutpost()
	require.NoError(err)
	require.Empty(relay)
}

func TestPause(t *testing.T) {
	require := require.New(t)
	n := newTestNetwork(t)
	ctx := context.Background()
	h := n.newOutpost(t)
	h.querier.give(n.homeNft, n.user, "1")

	_, err := h.Pause(ctx, transceiver.CallInfo{Sender: n.user})
	require.ErrorIs(err, transceiver.ErrUnauthorized)
	_, err = h.Pause(ctx, n.adminCall())
	require.NoError(err)

	_, err = h.Send(ctx, sendCall(n.user, 1), SendMsg{HubCollection: n.hubNft, TokenList: []string{"1"}})
	require.ErrorIs(err, transceiver.ErrContractIsPaused)
	_, err = h.Accept(ctx, transceiver.CallInfo{Time: testTime}, "garbage", 1)
	require.ErrorIs(err, transceiver.ErrContractIsPaused)
	require.Empty(h.dispatcher.Msgs())

	_, err = h.Unpause(ctx, n.adminCall())
	require.NoError(err)
	_, err = h.Send(ctx, sendCall(n.user, 1), SendMsg{HubCollection: n.hubNft, TokenList: []string{"1"}})
	require.NoError(err)
}
