// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package relayer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address/addresstest"
	"github.com/luxfi/transceiver/backend"
	"github.com/luxfi/transceiver/payload"
)

var now = time.Unix(1_700_000_000, 0)

type mockAcceptor struct {
	calls []transceiver.CallInfo
	msgs  []string
	errs  []error
	// each successful call queues the next enqueue entry on the backend
	enqueue []backend.Transfer
	backend *mockBackend
}

func (m *mockAcceptor) Accept(_ context.Context, info transceiver.CallInfo, msg string, _ uint64) (*transceiver.Response, error) {
	m.calls = append(m.calls, info)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	m.msgs = append(m.msgs, msg)
	if m.backend != nil && len(m.enqueue) > 0 {
		m.backend.queue = append(m.backend.queue, m.enqueue[0])
		m.enqueue = m.enqueue[1:]
	}
	return &transceiver.Response{Action: "accept"}, nil
}

type mockBackend struct {
	queue     []backend.Transfer
	contracts map[string]transceiver.Acceptor
	now       time.Time
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		contracts: make(map[string]transceiver.Acceptor),
		now:       now,
	}
}

func (m *mockBackend) Drain() []backend.Transfer {
	out := m.queue
	m.queue = nil
	return out
}

func (m *mockBackend) Contract(addr string) (transceiver.Acceptor, time.Time, error) {
	c, ok := m.contracts[addr]
	if !ok {
		return nil, time.Time{}, backend.ErrUnknownContract
	}
	return c, m.now, nil
}

func newTransfer(t *testing.T, receiver string, value string) backend.Transfer {
	memo, err := payload.BuildRelayMemo(receiver, &payload.Encrypted{Value: value, Timestamp: 42})
	require.NoError(t, err)
	return backend.Transfer{
		SourceChain: "stars",
		InterchainTransfer: transceiver.InterchainTransfer{
			SourcePort:       transceiver.TransferPort,
			SourceChannel:    "channel-0",
			Token:            transceiver.NewCoin("untrn", 1),
			Sender:           addresstest.Contract(t, "stars", 1),
			Receiver:         receiver,
			TimeoutTimestamp: transceiver.Nanos(now.Add(transceiver.RelayTimeout)),
			Memo:             memo,
		},
	}
}

func newRelayer(t *testing.T, b backend.Backend) *Relayer {
	return New(Config{
		Backend:      b,
		Codec:        addresstest.Codec(t),
		RetryTimeout: 100 * time.Millisecond,
	})
}

func TestFlushDelivers(t *testing.T) {
	require := require.New(t)
	b := newMockBackend()
	receiver := addresstest.Contract(t, "neutron", 2)
	acceptor := &mockAcceptor{}
	b.contracts[receiver] = acceptor
	b.queue = []backend.Transfer{newTransfer(t, receiver, "first"), newTransfer(t, receiver, "second")}

	delivered, err := newRelayer(t, b).Flush(context.Background())
	require.NoError(err)
	require.Equal(2, delivered)
	require.Equal([]string{"first", "second"}, acceptor.msgs)

	info := acceptor.calls[0]
	require.Equal(addresstest.Contract(t, "stars", 1), info.Sender)
	require.Equal(now, info.Time)
	require.Len(info.Funds, 1)
	require.Equal("untrn", info.Funds[0].Denom)
}

func TestFlushFollowsNewTransfers(t *testing.T) {
	require := require.New(t)
	b := newMockBackend()
	relay := addresstest.Contract(t, "osmo", 3)
	hub := addresstest.Contract(t, "neutron", 2)

	hubAcceptor := &mockAcceptor{}
	b.contracts[hub] = hubAcceptor
	b.contracts[relay] = &mockAcceptor{
		backend: b,
		enqueue: []backend.Transfer{newTransfer(t, hub, "forwarded")},
	}
	b.queue = []backend.Transfer{newTransfer(t, relay, "original")}

	delivered, err := newRelayer(t, b).Flush(context.Background())
	require.NoError(err)
	require.Equal(2, delivered)
	require.Equal([]string{"forwarded"}, hubAcceptor.msgs)
}

func TestRelayFailures(t *testing.T) {
	receiver := addresstest.Contract(t, "neutron", 2)
	other := addresstest.Contract(t, "neutron", 3)

	tests := []struct {
		name        string
		transfer    func(t *testing.T) backend.Transfer
		acceptErrs  []error
		expectedErr error
		calls       int
	}{
		{
			name: "unknown receiver",
			transfer: func(t *testing.T) backend.Transfer {
				return newTransfer(t, other, "v")
			},
			expectedErr: backend.ErrUnknownContract,
		},
		{
			name: "timed out",
			transfer: func(t *testing.T) backend.Transfer {
				tr := newTransfer(t, receiver, "v")
				tr.TimeoutTimestamp = transceiver.Nanos(now)
				return tr
			},
			expectedErr: ErrTransferTimedOut,
		},
		{
			name: "memo names another contract",
			transfer: func(t *testing.T) backend.Transfer {
				tr := newTransfer(t, receiver, "v")
				tr.Memo = newTransfer(t, other, "v").Memo
				return tr
			},
			expectedErr: ErrReceiverMismatch,
		},
		{
			name: "malformed memo",
			transfer: func(t *testing.T) backend.Transfer {
				tr := newTransfer(t, receiver, "v")
				tr.Memo = "{"
				return tr
			},
			expectedErr: transceiver.ErrMalformedPayload,
		},
		{
			name: "rejected by contract",
			transfer: func(t *testing.T) backend.Transfer {
				return newTransfer(t, receiver, "v")
			},
			acceptErrs:  []error{transceiver.ErrPacketReplayed},
			expectedErr: transceiver.ErrPacketReplayed,
			calls:       1,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			b := newMockBackend()
			acceptor := &mockAcceptor{errs: test.acceptErrs}
			b.contracts[receiver] = acceptor

			err := newRelayer(t, b).Relay(context.Background(), test.transfer(t))
			require.ErrorIs(err, test.expectedErr)
			require.Len(acceptor.calls, test.calls)
		})
	}
}

func TestRelayRetriesTransientErrors(t *testing.T) {
	require := require.New(t)
	b := newMockBackend()
	receiver := addresstest.Contract(t, "neutron", 2)
	acceptor := &mockAcceptor{errs: []error{errors.New("node unavailable")}}
	b.contracts[receiver] = acceptor

	relayer := New(Config{
		Backend:      b,
		Codec:        addresstest.Codec(t),
		RetryTimeout: 5 * time.Second,
	})
	require.NoError(relayer.Relay(context.Background(), newTransfer(t, receiver, "v")))
	require.Len(acceptor.calls, 2)
	require.Equal([]string{"v"}, acceptor.msgs)
}

func TestFlushStopsAfterMaxRounds(t *testing.T) {
	require := require.New(t)
	b := newMockBackend()
	receiver := addresstest.Contract(t, "neutron", 2)
	b.contracts[receiver] = &mockAcceptor{
		backend: b,
		enqueue: []backend.Transfer{
			newTransfer(t, receiver, "v1"),
			newTransfer(t, receiver, "v2"),
			newTransfer(t, receiver, "v3"),
		},
	}
	b.queue = []backend.Transfer{newTransfer(t, receiver, "v0")}

	r := New(Config{Backend: b, Codec: addresstest.Codec(t), MaxRounds: 2})
	delivered, err := r.Flush(context.Background())
	require.ErrorIs(err, ErrTooManyRounds)
	require.Equal(2, delivered)
}

func TestRelaySkipsDeliveredPackets(t *testing.T) {
	require := require.New(t)
	b := newMockBackend()
	receiver := addresstest.Contract(t, "neutron", 2)
	acceptor := &mockAcceptor{}
	b.contracts[receiver] = acceptor

	transfer := newTransfer(t, receiver, "v")
	b.queue = []backend.Transfer{transfer, newTransfer(t, receiver, "w"), transfer}

	r := newRelayer(t, b)
	delivered, err := r.Flush(context.Background())
	require.NoError(err)
	require.Equal(3, delivered)
	require.Equal([]string{"v", "w"}, acceptor.msgs)

	require.NoError(r.Relay(context.Background(), transfer))
	require.Len(acceptor.calls, 2)
}

func TestRelayForgetsFailedDeliveries(t *testing.T) {
	require := require.New(t)
	b := newMockBackend()
	receiver := addresstest.Contract(t, "neutron", 2)
	acceptor := &mockAcceptor{errs: []error{transceiver.ErrContractIsPaused}}
	b.contracts[receiver] = acceptor

	r := newRelayer(t, b)
	transfer := newTransfer(t, receiver, "v")
	require.ErrorIs(r.Relay(context.Background(), transfer), transceiver.ErrContractIsPaused)

	// failed deliveries are not remembered, a later attempt reaches the contract
	require.NoError(r.Relay(context.Background(), transfer))
	require.Len(acceptor.calls, 2)
	require.Equal([]string{"v"}, acceptor.msgs)
}

func TestRelayDeliversForwardedPacket(t *testing.T) {
	require := require.New(t)
	b := newMockBackend()
	relay := addresstest.Contract(t, "osmo", 3)
	hub := addresstest.Contract(t, "neutron", 2)
	relayAcceptor := &mockAcceptor{}
	hubAcceptor := &mockAcceptor{}
	b.contracts[relay] = relayAcceptor
	b.contracts[hub] = hubAcceptor

	r := newRelayer(t, b)
	require.NoError(r.Relay(context.Background(), newTransfer(t, relay, "v")))
	require.NoError(r.Relay(context.Background(), newTransfer(t, hub, "v")))
	require.Equal([]string{"v"}, relayAcceptor.msgs)
	require.Equal([]string{"v"}, hubAcceptor.msgs)
}
