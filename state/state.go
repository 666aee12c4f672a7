// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists the transceiver slots. Every mutating call works on
// a version layer that is committed when the call succeeds and aborted otherwise.
package state

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/topology"
)

var (
	SingletonPrefix = []byte("singleton")
	ConsumedPrefix  = []byte("consumed")

	ConfigKey               = []byte("config")
	PausedKey               = []byte("is paused")
	TransferAdminKey        = []byte("transfer admin")
	RetranslationOutpostKey = []byte("retranslation outpost")
	OutpostsKey             = []byte("outposts")
	CollectionsKey          = []byte("collections")
	ChannelsKey             = []byte("channels")

	errNotInitialized = errors.New("state is not initialized")
)

// Config is the per-node configuration
type Config struct {
	Role        topology.Role
	Admin       string
	NftMinter   string
	HubAddress  string
	TokenLimit  uint32
	MinRelayFee *uint256.Int
	Denom       string
}

// TransferAdminState is a pending admin handover. Deadline is in unix seconds.
type TransferAdminState struct {
	NewAdmin string
	Deadline uint64
}

// Collection pairs a home chain collection with its hub mirror
type Collection struct {
	HomeCollection string
	HubCollection  string
}

// Channel holds the transport channels used for a chain prefix
type Channel struct {
	Prefix  string
	FromHub string
	ToHub   string
}

// State is the persisted state of one transceiver
type State struct {
	db          *versiondb.Database
	singletonDB database.Database
	consumedDB  database.Database
}

func New(db database.Database) *State {
	vdb := versiondb.New(db)
	return &State{
		db:          vdb,
		singletonDB: prefixdb.New(SingletonPrefix, vdb),
		consumedDB:  prefixdb.New(ConsumedPrefix, vdb),
	}
}

// Commit writes the pending changes to the underlying database
func (s *State) Commit() error {
	return s.db.Commit()
}

// Abort discards the pending changes
func (s *State) Abort() {
	s.db.Abort()
}

func (s *State) Initialized() (bool, error) {
	return s.singletonDB.Has(ConfigKey)
}

func (s *State) Config() (*Config, error) {
	cfg := &Config{}
	if err := s.get(ConfigKey, cfg); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errNotInitialized
		}
		return nil, err
	}
	return cfg, nil
}

func (s *State) SetConfig(cfg *Config) error {
	return s.put(ConfigKey, cfg)
}

func (s *State) IsPaused() (bool, error) {
	var paused bool
	if err := s.get(PausedKey, &paused); err != nil && !errors.Is(err, database.ErrNotFound) {
		return false, err
	}
	return paused, nil
}

func (s *State) SetPaused(paused bool) error {
	return s.put(PausedKey, paused)
}

// TransferAdmin returns the pending handover, or nil when there is none
func (s *State) TransferAdmin() (*TransferAdminState, error) {
	t := &TransferAdminState{}
	if err := s.get(TransferAdminKey, t); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (s *State) SetTransferAdmin(t *TransferAdminState) error {
	return s.put(TransferAdminKey, t)
}

// RetranslationOutpost returns the retranslation outpost, empty when unset
func (s *State) RetranslationOutpost() (string, error) {
	var addr string
	if err := s.get(RetranslationOutpostKey, &addr); err != nil && !errors.Is(err, database.ErrNotFound) {
		return "", err
	}
	return addr, nil
}

func (s *State) SetRetranslationOutpost(addr string) error {
	if addr == "" {
		return s.singletonDB.Delete(RetranslationOutpostKey)
	}
	return s.put(RetranslationOutpostKey, addr)
}

func (s *State) Outposts() ([]string, error) {
	var outposts []string
	if err := s.get(OutpostsKey, &outposts); err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	return outposts, nil
}

func (s *State) SetOutposts(outposts []string) error {
	return s.put(OutpostsKey, outposts)
}

func (s *State) Collections() ([]Collection, error) {
	var collections []Collection
	if err := s.get(CollectionsKey, &collections); err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	return collections, nil
}

func (s *State) SetCollections(collections []Collection) error {
	return s.put(CollectionsKey, collections)
}

func (s *State) Channels() ([]Channel, error) {
	var channels []Channel
	if err := s.get(ChannelsKey, &channels); err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	return channels, nil
}

func (s *State) SetChannels(channels []Channel) error {
	return s.put(ChannelsKey, channels)
}

// IsConsumed reports whether the packet was already finalized or relayed here
func (s *State) IsConsumed(packetID ids.ID) (bool, error) {
	return s.consumedDB.Has(packetID[:])
}

func (s *State) MarkConsumed(packetID ids.ID) error {
	return s.consumedDB.Put(packetID[:], []byte{1})
}

func (s *State) get(key []byte, v interface{}) error {
	b, err := s.singletonDB.Get(key)
	if err != nil {
		return err
	}
	if _, err := transceiver.Codec.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to unmarshal %q: %w", key, err)
	}
	return nil
}

func (s *State) put(key []byte, v interface{}) error {
	b, err := transceiver.Codec.Marshal(transceiver.CodecVersion, v)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}
	return s.singletonDB.Put(key, b)
}
