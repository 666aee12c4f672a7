// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
	"github.com/luxfi/transceiver/config"
	"github.com/luxfi/transceiver/crypto"
	"github.com/luxfi/transceiver/payload"
	"github.com/luxfi/transceiver/topology"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "transceiver",
	Short: "Cross-chain NFT transceiver tools",
	Long: `Tools for the NFT transceiver: build and open encrypted packets and relay
memos, resolve routes for a configured transceiver and simulate transfers on an
in-memory network.`,
	Version:      fmt.Sprintf("%s (built %s)", version, buildDate),
	SilenceUsage: true,
}

func init() {
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(memoCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Describe the configuration keys",
	Run: func(*cobra.Command, []string) {
		config.DisplayUsageText()
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encrypt a packet",
	Long:  `Serialize and encrypt a packet under the nonce of the given timestamp.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadCipher(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		sender, _ := flags.GetString("sender")
		recipient, _ := flags.GetString("recipient")
		hubCollection, _ := flags.GetString("hub-collection")
		homeCollection, _ := flags.GetString("home-collection")
		tokens, _ := flags.GetStringSlice("tokens")
		destination, _ := flags.GetString("destination")
		timestamp, _ := flags.GetUint64("timestamp")
		if timestamp == 0 {
			timestamp = transceiver.Nanos(time.Now())
		}

		packet, err := transceiver.NewPacket(sender, recipient, hubCollection, homeCollection, tokens, destination)
		if err != nil {
			return err
		}
		enc, err := payload.Encode(c, packet, timestamp)
		if err != nil {
			return err
		}
		return printJSON(enc)
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decrypt a packet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadCipher(cmd)
		if err != nil {
			return err
		}
		value, _ := cmd.Flags().GetString("value")
		timestamp, _ := cmd.Flags().GetUint64("timestamp")

		packet, err := payload.Decode(c, value, timestamp)
		if err != nil {
			return err
		}
		return printJSON(packet)
	},
}

var memoCmd = &cobra.Command{
	Use:   "memo",
	Short: "Build or parse a relay memo",
	Long: `Build the relay memo that delivers an encrypted packet to a contract, or
parse one with --parse.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		if memo, _ := flags.GetString("parse"); memo != "" {
			contract, enc, err := payload.ParseRelayMemo(memo)
			if err != nil {
				return err
			}
			return printJSON(struct {
				Contract  string
				Value     string
				Timestamp uint64
			}{contract, enc.Value, enc.Timestamp})
		}

		contract, _ := flags.GetString("contract")
		value, _ := flags.GetString("value")
		timestamp, _ := flags.GetUint64("timestamp")
		memo, err := payload.BuildRelayMemo(contract, &payload.Encrypted{Value: value, Timestamp: timestamp})
		if err != nil {
			return err
		}
		fmt.Println(memo)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the route of a transfer",
	Long: `Resolve the transmission info of a transfer leaving the configured
transceiver and check it against the send guards.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		codec, err := address.NewBech32(cfg.AddressCacheSize)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		homeCollection, _ := flags.GetString("home-collection")
		target, _ := flags.GetString("target")
		outposts, _ := flags.GetStringSlice("outposts")
		retranslation, _ := flags.GetString("retranslation-outpost")

		hub := cfg.HubAddress
		if cfg.GetRole() == topology.Hub {
			hub = cfg.Address
		}
		if cfg.IsRetranslationOutpost {
			retranslation = cfg.Address
		}
		info, err := topology.Resolve(codec, topology.Input{
			Role:                 cfg.GetRole(),
			Hub:                  hub,
			RetranslationOutpost: retranslation,
			Target:               target,
			HomeCollection:       homeCollection,
			Outposts:             outposts,
			Transceiver:          cfg.Address,
			Counterpart:          cfg.Address,
		})
		if err != nil {
			return err
		}
		result := struct {
			Route       string
			Target      string
			Destination string
			HomeOutpost string
			Error       string `json:",omitempty"`
		}{
			Route:       info.Description.String(),
			Target:      info.Target,
			Destination: info.Destination(),
			HomeOutpost: info.HomeOutpost,
		}
		if err := topology.CheckSend(codec, info); err != nil {
			result.Error = err.Error()
		}
		return printJSON(result)
	},
}

func init() {
	// Encode command flags
	encodeCmd.Flags().String("sender", "", "Sending transceiver")
	encodeCmd.Flags().String("recipient", "", "Account receiving the tokens")
	encodeCmd.Flags().String("hub-collection", "", "Hub collection")
	encodeCmd.Flags().String("home-collection", "", "Home collection")
	encodeCmd.Flags().StringSlice("tokens", nil, "Token ids")
	encodeCmd.Flags().String("destination", "", "Destination transceiver")
	encodeCmd.Flags().Uint64("timestamp", 0, "Block time in nanoseconds, now when unset")
	for _, name := range []string{"sender", "recipient", "hub-collection", "home-collection", "tokens", "destination"} {
		_ = encodeCmd.MarkFlagRequired(name)
	}

	// Decode command flags
	decodeCmd.Flags().String("value", "", "Encrypted packet (base64)")
	decodeCmd.Flags().Uint64("timestamp", 0, "Timestamp the packet was encrypted at")
	_ = decodeCmd.MarkFlagRequired("value")
	_ = decodeCmd.MarkFlagRequired("timestamp")

	// Memo command flags
	memoCmd.Flags().String("contract", "", "Receiving transceiver")
	memoCmd.Flags().String("value", "", "Encrypted packet (base64)")
	memoCmd.Flags().Uint64("timestamp", 0, "Timestamp the packet was encrypted at")
	memoCmd.Flags().String("parse", "", "Relay memo to parse")

	// Resolve command flags
	resolveCmd.Flags().String("home-collection", "", "Home collection of the transferred tokens")
	resolveCmd.Flags().String("target", "", "Explicit target transceiver")
	resolveCmd.Flags().StringSlice("outposts", nil, "Outposts known to the hub")
	resolveCmd.Flags().String("retranslation-outpost", "", "Retranslation outpost")
	_ = resolveCmd.MarkFlagRequired("home-collection")
}

func buildViper(cmd *cobra.Command) (*viper.Viper, error) {
	return config.BuildViper(cmd.Flags())
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := buildViper(cmd)
	if err != nil {
		return config.Config{}, err
	}
	return config.NewConfig(v)
}

// loadCipher builds the packet cipher without requiring a full node configuration
func loadCipher(cmd *cobra.Command) (crypto.Cipher, error) {
	v, err := buildViper(cmd)
	if err != nil {
		return nil, err
	}
	config.SetDefaultConfigValues(v)
	key, err := crypto.ParseKey(v.GetString(config.EncryptionKeyKey))
	if err != nil {
		return nil, err
	}
	return crypto.New(crypto.Scheme(v.GetString(config.CipherSchemeKey)), key)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
