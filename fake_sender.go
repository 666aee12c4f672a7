// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package transceiver

import (
	"context"
	"sync"
)

// FakeDispatcher is a test implementation of Dispatcher that records batches.
type FakeDispatcher struct {
	// Err is returned from every Dispatch call when set.
	Err error

	mu      sync.Mutex
	batches [][]Msg
}

func (f *FakeDispatcher) Dispatch(_ context.Context, _ string, msgs []Msg) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	f.batches = append(f.batches, msgs)
	return nil
}

// Msgs returns every dispatched message in order.
func (f *FakeDispatcher) Msgs() []Msg {
	f.mu.Lock()
	defer f.mu.Unlock()

	var msgs []Msg
	for _, b := range f.batches {
		msgs = append(msgs, b...)
	}
	return msgs
}

// Reset forgets recorded batches.
func (f *FakeDispatcher) Reset() {
	f.mu.Lock()
	f.batches = nil
	f.mu.Unlock()
}
