// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge implements the NFT transceiver: it locks or burns tokens on the
// source chain, ships an encrypted packet to the destination transceiver and
// mints or releases the tokens there.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
	"github.com/luxfi/transceiver/crypto"
	"github.com/luxfi/transceiver/state"
	"github.com/luxfi/transceiver/topology"
)

var errMissingDependency = errors.New("missing dependency")

// Config configuration for a transceiver
type Config struct {
	// Address is the contract address of this transceiver
	Address    string
	DB         database.Database
	Codec      address.Codec
	Cipher     crypto.Cipher
	Querier    transceiver.Querier
	Dispatcher transceiver.Dispatcher
	Log        log.Logger
	Registerer prometheus.Registerer
}

// Transceiver is a single transceiver contract. Calls are serialized; each
// call either commits all of its state changes and dispatches its messages
// or leaves no trace.
type Transceiver struct {
	address    string
	state      *state.State
	codec      address.Codec
	cipher     crypto.Cipher
	querier    transceiver.Querier
	dispatcher transceiver.Dispatcher
	log        log.Logger
	metrics    *Metrics

	mu sync.Mutex
}

// New creates a transceiver over cfg.DB. The transceiver must be
// instantiated before it serves calls.
func New(cfg *Config) (*Transceiver, error) {
	switch {
	case cfg.DB == nil:
		return nil, fmt.Errorf("%w: database", errMissingDependency)
	case cfg.Codec == nil:
		return nil, fmt.Errorf("%w: address codec", errMissingDependency)
	case cfg.Cipher == nil:
		return nil, fmt.Errorf("%w: cipher", errMissingDependency)
	case cfg.Querier == nil:
		return nil, fmt.Errorf("%w: querier", errMissingDependency)
	case cfg.Dispatcher == nil:
		return nil, fmt.Errorf("%w: dispatcher", errMissingDependency)
	}
	if _, _, err := cfg.Codec.Split(cfg.Address); err != nil {
		return nil, fmt.Errorf("invalid transceiver address: %w", err)
	}

	logger := cfg.Log
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	registerer := cfg.Registerer
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	metrics, err := NewMetrics(prometheus.WrapRegistererWith(
		prometheus.Labels{"transceiver": cfg.Address},
		registerer,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &Transceiver{
		address:    cfg.Address,
		state:      state.New(cfg.DB),
		codec:      cfg.Codec,
		cipher:     cfg.Cipher,
		querier:    cfg.Querier,
		dispatcher: cfg.Dispatcher,
		log:        logger,
		metrics:    metrics,
	}, nil
}

// Address returns the contract address of the transceiver
func (t *Transceiver) Address() string {
	return t.address
}

// InstantiateMsg configures a new transceiver
type InstantiateMsg struct {
	Role      topology.Role
	NftMinter string
	// HubAddress is ignored on a hub, which is its own hub.
	HubAddress             string
	TokenLimit             uint32
	MinRelayFee            *uint256.Int
	Denom                  string
	IsRetranslationOutpost bool
	// Channels replaces the default channel registry when set.
	Channels []state.Channel
}

// Instantiate stores the initial configuration. The caller becomes the admin.
func (t *Transceiver) Instantiate(ctx context.Context, info transceiver.CallInfo, msg InstantiateMsg) (*transceiver.Response, error) {
	return t.execute(ctx, "instantiate", func() ([]transceiver.Msg, error) {
		initialized, err := t.state.Initialized()
		if err != nil {
			return nil, err
		}
		if initialized {
			return nil, fmt.Errorf("%w: already instantiated", transceiver.ErrWrongActionType)
		}
		if msg.Role == topology.Hub && msg.IsRetranslationOutpost {
			return nil, transceiver.ErrHubIsNotRetranslator
		}

		cfg := &state.Config{
			Role:        msg.Role,
			Admin:       info.Sender,
			NftMinter:   msg.NftMinter,
			HubAddress:  msg.HubAddress,
			TokenLimit:  msg.TokenLimit,
			MinRelayFee: msg.MinRelayFee,
			Denom:       msg.Denom,
		}
		if msg.Role == topology.Hub {
			cfg.HubAddress = t.address
		}
		if cfg.TokenLimit == 0 {
			cfg.TokenLimit = transceiver.DefaultTokenLimit
		}
		if cfg.MinRelayFee == nil {
			cfg.MinRelayFee = uint256.NewInt(transceiver.DefaultMinRelayFee)
		}
		if cfg.Denom == "" {
			cfg.Denom = transceiver.DefaultDenom
		}
		for _, addr := range []string{cfg.Admin, cfg.HubAddress} {
			if _, _, err := t.codec.Split(addr); err != nil {
				return nil, err
			}
		}

		channels := msg.Channels
		if len(channels) == 0 {
			channels = []state.Channel{{
				Prefix:  transceiver.DefaultChannelPrefix,
				FromHub: transceiver.DefaultChannelFromHub,
				ToHub:   transceiver.DefaultChannelToHub,
			}}
		}

		retranslationOutpost := ""
		if msg.IsRetranslationOutpost {
			retranslationOutpost = t.address
		}

		if err := t.state.SetConfig(cfg); err != nil {
			return nil, err
		}
		if err := t.state.SetPaused(false); err != nil {
			return nil, err
		}
		if err := t.state.SetRetranslationOutpost(retranslationOutpost); err != nil {
			return nil, err
		}
		if err := t.state.SetOutposts(nil); err != nil {
			return nil, err
		}
		if err := t.state.SetCollections(nil); err != nil {
			return nil, err
		}
		if err := t.state.SetChannels(channels); err != nil {
			return nil, err
		}

		t.log.Info("instantiated transceiver",
			log.String("address", t.address),
			log.Stringer("role", cfg.Role),
			log.String("hub", cfg.HubAddress),
		)
		return nil, nil
	})
}

// execute runs fn under the call lock, dispatches the messages it returns
// and commits its state changes only if both succeed.
func (t *Transceiver) execute(
	ctx context.Context,
	action string,
	fn func() ([]transceiver.Msg, error),
) (*transceiver.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	msgs, err := fn()
	if err == nil && len(msgs) > 0 {
		if err = t.dispatcher.Dispatch(ctx, t.address, msgs); err != nil {
			err = fmt.Errorf("failed to dispatch %s messages: %w", action, err)
		}
	}
	if err != nil {
		t.state.Abort()
		t.metrics.failed(action, err)
		t.log.Debug("call failed",
			log.String("action", action),
			log.Err(err),
		)
		return nil, err
	}
	if err := t.state.Commit(); err != nil {
		t.log.Error("failed to commit state",
			log.String("action", action),
			log.Err(err),
		)
		return nil, fmt.Errorf("failed to commit state: %w", err)
	}
	t.metrics.succeeded(action, len(msgs))
	return &transceiver.Response{Action: action, Msgs: msgs}, nil
}

// loadActive returns the config of an unpaused transceiver
func (t *Transceiver) loadActive() (*state.Config, error) {
	paused, err := t.state.IsPaused()
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, transceiver.ErrContractIsPaused
	}
	return t.state.Config()
}
