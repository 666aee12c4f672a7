// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "fmt"

func DisplayUsageText() {
	usageText := fmt.Sprintf(
		"Usage: transceiver <command> [--%s <file>] [--%s] [--%s]\n"+
			"  --%s <file>  path to a JSON, YAML or TOML configuration file (env %s)\n"+
			"  --%s         display the version and exit\n"+
			"  --%s         display the help text and exit\n"+
			"Configuration keys:\n"+
			"  %s, %s, %s, %s, %s,\n"+
			"  %s, %s, %s, %s, %s,\n"+
			"  %s, %s, %s, %s, %s\n"+
			"Every configuration key may also be set as an environment variable,\n"+
			"upper-cased with '-' replaced by '_', e.g. %s.\n",
		ConfigFileKey, VersionKey, HelpKey,
		ConfigFileKey, ConfigFileEnvKey,
		VersionKey,
		HelpKey,
		LogLevelKey, RoleKey, AddressKey, HubAddressKey, NftMinterKey,
		TokenLimitKey, MinRelayFeeKey, DenomKey, EncryptionKeyKey, CipherSchemeKey,
		IsRetranslationOutpostKey, ChannelsKey, AddressCacheSizeKey, RelayRetryTimeoutKey, RelayDeliveredCacheKey,
		"ENCRYPTION_KEY",
	)
	fmt.Print(usageText)
}
