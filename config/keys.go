// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"
	VersionKey    = "version"
	HelpKey       = "help"

	// Environment variable keys
	ConfigFileEnvKey = "CONFIG_FILE"

	// Top-level configuration keys
	LogLevelKey               = "log-level"
	RoleKey                   = "role"
	AddressKey                = "address"
	HubAddressKey             = "hub-address"
	NftMinterKey              = "nft-minter"
	TokenLimitKey             = "token-limit"
	MinRelayFeeKey            = "min-relay-fee"
	DenomKey                  = "denom"
	EncryptionKeyKey          = "encryption-key"
	CipherSchemeKey           = "cipher-scheme"
	IsRetranslationOutpostKey = "is-retranslation-outpost"
	ChannelsKey               = "channels"
	AddressCacheSizeKey       = "address-cache-size"
	RelayRetryTimeoutKey      = "relay-retry-timeout"
	RelayDeliveredCacheKey    = "relay-delivered-cache-size"
)
