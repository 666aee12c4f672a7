// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/state"
)

func (t *Transceiver) Config() (*state.Config, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Config()
}

func (t *Transceiver) PauseState() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.IsPaused()
}

// Outposts lists the outposts observed by a hub in discovery order
func (t *Transceiver) Outposts() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Outposts()
}

func (t *Transceiver) RetranslationOutpost() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.RetranslationOutpost()
}

// Collection finds a collection pair by its hub side, or by its home side
// when hubCollection is empty.
func (t *Transceiver) Collection(hubCollection, homeCollection string) (*state.Collection, error) {
	if hubCollection == "" && homeCollection == "" {
		return nil, transceiver.ErrNoParameters
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	collections, err := t.state.Collections()
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		if (hubCollection != "" && c.HubCollection == hubCollection) ||
			(hubCollection == "" && c.HomeCollection == homeCollection) {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s%s", transceiver.ErrCollectionIsNotFound, hubCollection, homeCollection)
}

func (t *Transceiver) CollectionList() ([]state.Collection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Collections()
}

func (t *Transceiver) ChannelList() ([]state.Channel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Channels()
}
