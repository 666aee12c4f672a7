// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/luxfi/log"
)

// WithMaxRetries uses an exponential backoff to run the operation until it
// succeeds, returns a permanent error or the timeout has been reached.
func WithMaxRetries(
	operation backoff.Operation,
	timeout time.Duration,
	logger log.Logger,
) error {
	expBackOff := backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(timeout),
	)
	notify := func(err error, duration time.Duration) {
		logger.Warn("operation failed, retrying...",
			log.Err(err),
			log.Duration("retryIn", duration),
		)
	}
	return backoff.RetryNotify(operation, expBackOff, notify)
}
