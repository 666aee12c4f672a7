// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
	"github.com/luxfi/transceiver/backend"
	"github.com/luxfi/transceiver/bridge"
	"github.com/luxfi/transceiver/config"
	"github.com/luxfi/transceiver/crypto"
	"github.com/luxfi/transceiver/relayer"
	"github.com/luxfi/transceiver/state"
	"github.com/luxfi/transceiver/topology"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a round trip on an in-memory network",
	Long: `Deploy an outpost, a hub and optionally a retranslation outpost on
in-memory chains, send tokens from the outpost to the hub and back and print
the owner of every token after each step.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		hubPrefix, _ := flags.GetString("hub-prefix")
		outpostPrefix, _ := flags.GetString("outpost-prefix")
		relayPrefix, _ := flags.GetString("retranslation-prefix")
		tokens, _ := flags.GetStringSlice("tokens")

		v, err := buildViper(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.BuildConfig(v)
		if err != nil {
			return err
		}

		logger := log.NewLogger("transceiver")
		sim, err := newSimulation(&cfg, logger, hubPrefix, outpostPrefix, relayPrefix)
		if err != nil {
			return err
		}
		return sim.run(cmd.Context(), tokens)
	},
}

func init() {
	simulateCmd.Flags().String("hub-prefix", "neutron", "Address prefix of the hub chain")
	simulateCmd.Flags().String("outpost-prefix", "stars", "Address prefix of the home chain")
	simulateCmd.Flags().String("retranslation-prefix", "", "Address prefix of the retranslation chain, direct routes when empty")
	simulateCmd.Flags().StringSlice("tokens", []string{"1", "2"}, "Token ids minted to the user")
}

type simulation struct {
	log     log.Logger
	network *backend.Network
	relayer *relayer.Relayer

	home, hubChain *backend.Chain
	outpost, hub   *bridge.Transceiver
	relay          string

	admin, user, hubUser string
	homeNft, hubNft      string
	minter               string
}

func newSimulation(cfg *config.Config, logger log.Logger, hubPrefix, outpostPrefix, relayPrefix string) (*simulation, error) {
	codec, err := address.NewBech32(cfg.AddressCacheSize)
	if err != nil {
		return nil, err
	}
	key := make([]byte, crypto.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	c, err := crypto.New(crypto.SchemeAESSIV, key)
	if err != nil {
		return nil, err
	}

	s := &simulation{
		log:     logger,
		network: backend.NewNetwork(codec, logger),
	}
	s.relayer = relayer.New(cfg.RelayerConfig(s.network, codec, logger, prometheus.NewRegistry()))

	addr := func(prefix, name string) string {
		if err != nil {
			return ""
		}
		var a string
		a, err = codec.Rebuild(prefix, transceiver.ComputeHash256([]byte(name)))
		return a
	}
	s.admin = addr(outpostPrefix, "admin")
	s.user = addr(outpostPrefix, "user")
	s.hubUser = addr(hubPrefix, "user")
	s.homeNft = addr(outpostPrefix, "home-collection")
	s.hubNft = addr(hubPrefix, "hub-collection")
	s.minter = addr(hubPrefix, "minter")
	outpostAddr := addr(outpostPrefix, "outpost")
	hubAddr := addr(hubPrefix, "hub")
	if relayPrefix != "" {
		s.relay = addr(relayPrefix, "retranslation-outpost")
	}
	if err != nil {
		return nil, err
	}

	genesis := time.Now()
	s.home = s.network.AddChain(outpostPrefix, genesis)
	s.hubChain = s.home
	if hubPrefix != outpostPrefix {
		s.hubChain = s.network.AddChain(hubPrefix, genesis)
	}
	s.home.CreateCollection(s.homeNft)
	s.hubChain.CreateCollection(s.hubNft)
	s.hubChain.SetMinter(s.minter)

	channels := simulatedChannels(outpostPrefix, relayPrefix)

	deploy := func(chain *backend.Chain, at string, msg bridge.InstantiateMsg) (*bridge.Transceiver, error) {
		tr, err := bridge.New(&bridge.Config{
			Address:    at,
			DB:         memdb.New(),
			Codec:      codec,
			Cipher:     c,
			Querier:    chain,
			Dispatcher: chain,
			Log:        logger,
			Registerer: prometheus.NewRegistry(),
		})
		if err != nil {
			return nil, err
		}
		msg.NftMinter = s.minter
		msg.Channels = channels
		if _, err := tr.Instantiate(context.Background(), transceiver.CallInfo{Sender: s.admin, Time: chain.Now()}, msg); err != nil {
			return nil, err
		}
		chain.RegisterContract(at, tr)
		return tr, nil
	}

	if s.outpost, err = deploy(s.home, outpostAddr, bridge.InstantiateMsg{Role: topology.Outpost, HubAddress: hubAddr}); err != nil {
		return nil, err
	}
	if s.hub, err = deploy(s.hubChain, hubAddr, bridge.InstantiateMsg{Role: topology.Hub}); err != nil {
		return nil, err
	}
	if s.relay != "" {
		relayChain := s.network.AddChain(relayPrefix, genesis)
		if _, err := deploy(relayChain, s.relay, bridge.InstantiateMsg{
			Role:                   topology.Outpost,
			HubAddress:             hubAddr,
			IsRetranslationOutpost: true,
		}); err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	admin := transceiver.CallInfo{Sender: s.admin, Time: genesis}
	for _, tr := range []*bridge.Transceiver{s.outpost, s.hub} {
		if _, err := tr.AddCollection(ctx, admin, s.hubNft, s.homeNft); err != nil {
			return nil, err
		}
		if s.relay == "" {
			continue
		}
		if _, err := tr.SetRetranslationOutpost(ctx, admin, s.relay); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *simulation) run(ctx context.Context, tokens []string) error {
	if err := s.home.Mint(s.homeNft, s.user, tokens...); err != nil {
		return err
	}
	s.report("genesis", tokens)

	if err := s.home.Dispatch(ctx, s.user, []transceiver.Msg{
		transceiver.ApproveAll{Collection: s.homeNft, Operator: s.outpost.Address()},
	}); err != nil {
		return err
	}
	amount := uint64(1)
	if _, err := s.outpost.Send(ctx, s.call(s.home, s.user, amount), bridge.SendMsg{
		HubCollection: s.hubNft,
		TokenList:     tokens,
		Target:        s.relay,
	}); err != nil {
		return err
	}
	if err := s.flush(ctx); err != nil {
		return err
	}
	s.report("outpost to hub", tokens)

	if err := s.hubChain.Dispatch(ctx, s.hubUser, []transceiver.Msg{
		transceiver.ApproveAll{Collection: s.hubNft, Operator: s.hub.Address()},
	}); err != nil {
		return err
	}
	if s.hubChain != s.home {
		amount += transceiver.DefaultMinRelayFee
	}
	if _, err := s.hub.Send(ctx, s.call(s.hubChain, s.hubUser, amount), bridge.SendMsg{
		HubCollection: s.hubNft,
		TokenList:     tokens,
		Target:        s.relay,
	}); err != nil {
		return err
	}
	if err := s.flush(ctx); err != nil {
		return err
	}
	s.report("hub to outpost", tokens)
	return nil
}

func (s *simulation) call(chain *backend.Chain, sender string, amount uint64) transceiver.CallInfo {
	return transceiver.CallInfo{
		Sender: sender,
		Funds:  []transceiver.Coin{transceiver.NewCoin(transceiver.DefaultDenom, amount)},
		Time:   chain.Now(),
	}
}

func (s *simulation) flush(ctx context.Context) error {
	delivered, err := s.relayer.Flush(ctx)
	if err != nil {
		return err
	}
	s.log.Info("relayed transfers", log.Int("delivered", delivered))
	return nil
}

func (s *simulation) report(step string, tokens []string) {
	fmt.Printf("%s:\n", step)
	for _, id := range tokens {
		home, err := s.home.OwnerOf(s.homeNft, id)
		if err != nil {
			home = "-"
		}
		hub, err := s.hubChain.OwnerOf(s.hubNft, id)
		if err != nil {
			hub = "-"
		}
		fmt.Printf("  token %s  home: %s  hub: %s\n", id, home, hub)
	}
}

func simulatedChannels(outpostPrefix, relayPrefix string) []state.Channel {
	channels := []state.Channel{{Prefix: outpostPrefix, FromHub: "channel-18", ToHub: "channel-191"}}
	if relayPrefix != "" {
		channels = append(channels, state.Channel{Prefix: relayPrefix, FromHub: "channel-40", ToHub: "channel-41"})
	}
	return channels
}
