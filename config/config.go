// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
	"github.com/luxfi/transceiver/bridge"
	"github.com/luxfi/transceiver/backend"
	"github.com/luxfi/transceiver/crypto"
	"github.com/luxfi/transceiver/relayer"
	"github.com/luxfi/transceiver/state"
	"github.com/luxfi/transceiver/topology"
)

const (
	defaultLogLevel          = "info"
	defaultRole              = "outpost"
	defaultRelayRetryTimeout = relayer.DefaultRetryTimeout
)

var logLevels = []string{"trace", "debug", "info", "warn", "error", "crit"}

var (
	errInvalidLogLevel      = errors.New("invalid log level")
	errMissingAddress       = errors.New("transceiver address is not set")
	errMissingHubAddress    = errors.New("hub address is required on an outpost")
	errMissingEncryptionKey = errors.New("encryption key is not set")
	errInvalidChannel       = errors.New("channel needs a prefix and at least one channel id")
)

// ChannelConfig is a channel registry entry
type ChannelConfig struct {
	Prefix  string `mapstructure:"prefix" json:"prefix"`
	FromHub string `mapstructure:"from-hub" json:"from-hub"`
	ToHub   string `mapstructure:"to-hub" json:"to-hub"`
}

// Config is the configuration of a transceiver node
type Config struct {
	LogLevel               string          `mapstructure:"log-level" json:"log-level"`
	Role                   string          `mapstructure:"role" json:"role"`
	Address                string          `mapstructure:"address" json:"address"`
	HubAddress             string          `mapstructure:"hub-address" json:"hub-address"`
	NftMinter              string          `mapstructure:"nft-minter" json:"nft-minter"`
	TokenLimit             uint32          `mapstructure:"token-limit" json:"token-limit"`
	MinRelayFee            uint64          `mapstructure:"min-relay-fee" json:"min-relay-fee"`
	Denom                  string          `mapstructure:"denom" json:"denom"`
	EncryptionKey          string          `mapstructure:"encryption-key" json:"encryption-key"`
	CipherScheme           string          `mapstructure:"cipher-scheme" json:"cipher-scheme"`
	IsRetranslationOutpost bool            `mapstructure:"is-retranslation-outpost" json:"is-retranslation-outpost"`
	Channels               []ChannelConfig `mapstructure:"channels" json:"channels"`
	AddressCacheSize       int             `mapstructure:"address-cache-size" json:"address-cache-size"`
	RelayRetryTimeout      time.Duration   `mapstructure:"relay-retry-timeout" json:"relay-retry-timeout"`
	RelayDeliveredCache    int             `mapstructure:"relay-delivered-cache-size" json:"relay-delivered-cache-size"`

	// Fields parsed by Validate
	role          topology.Role
	encryptionKey []byte
}

// Validate checks the configuration and parses the derived fields
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, c.LogLevel)
	}

	role, err := topology.ParseRole(c.Role)
	if err != nil {
		return err
	}
	c.role = role
	if role == topology.Hub && c.IsRetranslationOutpost {
		return transceiver.ErrHubIsNotRetranslator
	}

	codec, err := address.NewBech32(c.AddressCacheSize)
	if err != nil {
		return err
	}
	if c.Address == "" {
		return errMissingAddress
	}
	if role == topology.Outpost && c.HubAddress == "" {
		return errMissingHubAddress
	}
	for _, addr := range []string{c.Address, c.HubAddress, c.NftMinter} {
		if addr == "" {
			continue
		}
		if _, _, err := codec.Split(addr); err != nil {
			return err
		}
	}

	if c.EncryptionKey == "" {
		return errMissingEncryptionKey
	}
	key, err := crypto.ParseKey(c.EncryptionKey)
	if err != nil {
		return err
	}
	if _, err := crypto.New(crypto.Scheme(c.CipherScheme), key); err != nil {
		return err
	}
	c.encryptionKey = key

	for _, ch := range c.Channels {
		if ch.Prefix == "" || (ch.FromHub == "" && ch.ToHub == "") {
			return fmt.Errorf("%w: %+v", errInvalidChannel, ch)
		}
	}
	return nil
}

func (c *Config) GetRole() topology.Role {
	return c.role
}

// NewCipher builds the packet cipher from the validated key
func (c *Config) NewCipher() (crypto.Cipher, error) {
	return crypto.New(crypto.Scheme(c.CipherScheme), c.encryptionKey)
}

// InstantiateMsg converts the configuration into the instantiate call of a new transceiver
func (c *Config) InstantiateMsg() bridge.InstantiateMsg {
	msg := bridge.InstantiateMsg{
		Role:                   c.role,
		NftMinter:              c.NftMinter,
		HubAddress:             c.HubAddress,
		TokenLimit:             c.TokenLimit,
		MinRelayFee:            uint256.NewInt(c.MinRelayFee),
		Denom:                  c.Denom,
		IsRetranslationOutpost: c.IsRetranslationOutpost,
	}
	for _, ch := range c.Channels {
		msg.Channels = append(msg.Channels, state.Channel{
			Prefix:  ch.Prefix,
			FromHub: ch.FromHub,
			ToHub:   ch.ToHub,
		})
	}
	return msg
}

// RelayerConfig builds the relayer settings for b. It does not require a
// validated configuration.
func (c *Config) RelayerConfig(
	b backend.Backend,
	codec address.Codec,
	logger log.Logger,
	registerer prometheus.Registerer,
) relayer.Config {
	return relayer.Config{
		Backend:            b,
		Codec:              codec,
		Log:                logger,
		Registerer:         registerer,
		RetryTimeout:       c.RelayRetryTimeout,
		DeliveredCacheSize: c.RelayDeliveredCache,
	}
}
