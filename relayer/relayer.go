// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package relayer delivers queued interchain transfers to the transceiver
// named in their relay memo.
package relayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
	"github.com/luxfi/transceiver/backend"
	"github.com/luxfi/transceiver/cache"
	"github.com/luxfi/transceiver/payload"
	"github.com/luxfi/transceiver/utils"
)

const (
	DefaultMaxRounds          = 8
	DefaultRetryTimeout       = 5 * time.Second
	DefaultDeliveredCacheSize = 1024
)

var (
	ErrTransferTimedOut = errors.New("transfer timed out")
	ErrReceiverMismatch = errors.New("memo contract does not match the receiver")
	ErrTooManyRounds    = errors.New("transfers are still pending")
)

// Config configuration for a relayer
type Config struct {
	Backend    backend.Backend
	Codec      address.Codec
	Log        log.Logger
	Registerer prometheus.Registerer
	// MaxRounds bounds how many times Flush drains the queue. A delivery
	// can queue a new transfer, e.g. a retranslation hop.
	MaxRounds    int
	RetryTimeout time.Duration
	// DeliveredCacheSize is how many deliveries are remembered. A transfer
	// whose packet was recently delivered to the same receiver is skipped.
	DeliveredCacheSize int
}

type Relayer struct {
	backend      backend.Backend
	codec        address.Codec
	log          log.Logger
	metrics      *Metrics
	maxRounds    int
	retryTimeout time.Duration
	delivered    *cache.FIFOCache[ids.ID, struct{}]
}

func New(cfg Config) *Relayer {
	r := &Relayer{
		backend:      cfg.Backend,
		codec:        cfg.Codec,
		log:          cfg.Log,
		maxRounds:    cfg.MaxRounds,
		retryTimeout: cfg.RetryTimeout,
	}
	if r.log == nil {
		r.log = log.NewNoOpLogger()
	}
	registerer := cfg.Registerer
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	r.metrics = NewMetrics(registerer)
	if r.maxRounds <= 0 {
		r.maxRounds = DefaultMaxRounds
	}
	if r.retryTimeout <= 0 {
		r.retryTimeout = DefaultRetryTimeout
	}
	size := cfg.DeliveredCacheSize
	if size <= 0 {
		size = DefaultDeliveredCacheSize
	}
	r.delivered = cache.NewFIFOCache[ids.ID, struct{}](size)
	return r
}

// Flush delivers queued transfers until the queue stays empty. It returns the
// number of delivered transfers and the joined errors of the failed ones.
func (r *Relayer) Flush(ctx context.Context) (int, error) {
	var (
		delivered int
		errs      []error
	)
	for round := 0; round < r.maxRounds; round++ {
		transfers := r.backend.Drain()
		if len(transfers) == 0 {
			return delivered, errors.Join(errs...)
		}
		for _, t := range transfers {
			if err := ctx.Err(); err != nil {
				return delivered, errors.Join(append(errs, err)...)
			}
			if err := r.Relay(ctx, t); err != nil {
				errs = append(errs, err)
				continue
			}
			delivered++
		}
	}
	errs = append(errs, ErrTooManyRounds)
	return delivered, errors.Join(errs...)
}

// Relay delivers a single transfer. Rejections by the receiving contract are
// final; other failures are retried until the retry timeout. A transfer
// carrying a packet this relayer already delivered to the same receiver is
// skipped.
func (r *Relayer) Relay(ctx context.Context, t backend.Transfer) error {
	start := time.Now()
	destination := r.chainOf(t.Receiver)

	enc, err := r.parseMemo(t)
	if err != nil {
		return r.fail(t, destination, err)
	}
	// a retranslation hop forwards the same packet to another receiver
	packetID := enc.ID()
	deliveryID := ids.ID(transceiver.ComputeHash256Array(append([]byte(t.Receiver), packetID[:]...)))
	if r.delivered.Contains(deliveryID) {
		r.log.Debug("skipping delivered packet",
			log.Stringer("packetID", packetID),
			log.String("receiver", t.Receiver),
		)
		return nil
	}

	_, err = r.delivered.Get(deliveryID, func(ids.ID) (struct{}, error) {
		return struct{}{}, utils.WithMaxRetries(
			func() error {
				return r.deliver(ctx, t, enc)
			},
			r.retryTimeout,
			r.log,
		)
	})
	if err != nil {
		return r.fail(t, destination, err)
	}

	r.metrics.successfulRelayCount.WithLabelValues(t.SourceChain, destination).Inc()
	r.metrics.relayLatencyMS.
		WithLabelValues(t.SourceChain, destination).
		Set(float64(time.Since(start).Milliseconds()))
	r.log.Debug("relayed transfer",
		log.String("source", t.SourceChain),
		log.String("receiver", t.Receiver),
		log.Stringer("packetID", packetID),
	)
	return nil
}

func (r *Relayer) fail(t backend.Transfer, destination string, err error) error {
	r.log.Warn("failed to relay transfer",
		log.String("source", t.SourceChain),
		log.String("channel", t.SourceChannel),
		log.String("receiver", t.Receiver),
		log.Err(err),
	)
	r.metrics.failedRelayCount.
		WithLabelValues(t.SourceChain, destination, failureReason(err)).
		Inc()
	return fmt.Errorf("failed to relay transfer from %s to %s: %w", t.SourceChain, t.Receiver, err)
}

func (*Relayer) parseMemo(t backend.Transfer) (*payload.Encrypted, error) {
	memoContract, enc, err := payload.ParseRelayMemo(t.Memo)
	if err != nil {
		return nil, err
	}
	if memoContract != t.Receiver {
		return nil, fmt.Errorf("%w: %s", ErrReceiverMismatch, memoContract)
	}
	return enc, nil
}

func (r *Relayer) deliver(ctx context.Context, t backend.Transfer, enc *payload.Encrypted) error {
	contract, now, err := r.backend.Contract(t.Receiver)
	if err != nil {
		return backoff.Permanent(err)
	}
	if transceiver.Nanos(now) >= t.TimeoutTimestamp {
		return backoff.Permanent(fmt.Errorf("%w: at %d", ErrTransferTimedOut, t.TimeoutTimestamp))
	}

	_, err = contract.Accept(ctx, transceiver.CallInfo{
		Sender: t.Sender,
		Funds:  []transceiver.Coin{t.Token},
		Time:   now,
	}, enc.Value, enc.Timestamp)
	if err != nil && transceiver.KindOf(err) != transceiver.KindUnknown {
		return backoff.Permanent(err)
	}
	return err
}

func (r *Relayer) chainOf(addr string) string {
	prefix, err := r.codec.Prefix(addr)
	if err != nil {
		return "unknown"
	}
	return prefix
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrTransferTimedOut):
		return "timed_out"
	case errors.Is(err, ErrReceiverMismatch):
		return "receiver_mismatch"
	case errors.Is(err, backend.ErrUnknownContract), errors.Is(err, backend.ErrUnknownChain):
		return "unknown_receiver"
	}
	if kind := transceiver.KindOf(err); kind != transceiver.KindUnknown {
		return kind.String()
	}
	return "failed"
}
