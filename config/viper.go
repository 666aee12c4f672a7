// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
	"github.com/luxfi/transceiver/crypto"
	"github.com/luxfi/transceiver/relayer"
)

func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// Build the viper instance. The config file is optional and may be provided
// via the command line flag or environment variable. All config keys may be
// provided via config file, environment variable or flag.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	// Map flag names to env var names. Flags are capitalized, and hyphens are replaced with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if err := v.BindEnv(ConfigFileKey, ConfigFileEnvKey); err != nil {
		return nil, err
	}

	if !v.IsSet(ConfigFileKey) {
		return v, nil
	}
	v.SetConfigFile(v.GetString(ConfigFileKey))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return v, nil
}

// AddFlags registers the configuration keys on fs
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "path to the configuration file")
	fs.String(LogLevelKey, defaultLogLevel, "log level")
	fs.String(RoleKey, defaultRole, "transceiver role, hub or outpost")
	fs.String(AddressKey, "", "contract address of this transceiver")
	fs.String(HubAddressKey, "", "address of the hub transceiver")
	fs.String(NftMinterKey, "", "address of the mint/burn contract")
	fs.String(EncryptionKeyKey, "", "hex encoded 32 byte packet key")
	fs.String(CipherSchemeKey, string(crypto.SchemeAESSIV), "packet cipher")
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(RoleKey, defaultRole)
	v.SetDefault(TokenLimitKey, transceiver.DefaultTokenLimit)
	v.SetDefault(MinRelayFeeKey, transceiver.DefaultMinRelayFee)
	v.SetDefault(DenomKey, transceiver.DefaultDenom)
	v.SetDefault(CipherSchemeKey, string(crypto.SchemeAESSIV))
	v.SetDefault(AddressCacheSizeKey, address.DefaultCacheSize)
	v.SetDefault(RelayRetryTimeoutKey, defaultRelayRetryTimeout)
	v.SetDefault(RelayDeliveredCacheKey, relayer.DefaultDeliveredCacheSize)
	v.SetDefault(ChannelsKey, []ChannelConfig{{
		Prefix:  transceiver.DefaultChannelPrefix,
		FromHub: transceiver.DefaultChannelFromHub,
		ToHub:   transceiver.DefaultChannelToHub,
	}})
}

// BuildConfig constructs the transceiver config using Viper.
// The following precedence order is used. Each item takes precedence over the item below it:
//  1. Flags
//  2. Environment variables
//  3. Config file
//  4. Defaults
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	return cfg, nil
}
