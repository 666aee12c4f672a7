// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
)

func TestWithMaxRetries(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		timeout   time.Duration
		expectErr bool
	}{
		{
			// the default schedule fits two attempts
			name:      "gives up before the endpoint recovers",
			failures:  3,
			timeout:   624 * time.Millisecond,
			expectErr: true,
		},
		{
			name:     "endpoint recovers on the third attempt",
			failures: 2,
			timeout:  2 * time.Second,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			endpoint := &flakyEndpoint{failures: tt.failures}

			err := WithMaxRetries(endpoint.deliver, tt.timeout, log.NewNoOpLogger())
			if tt.expectErr {
				require.ErrorIs(err, errUnavailable)
				require.False(endpoint.delivered)
				return
			}
			require.NoError(err)
			require.True(endpoint.delivered)
			require.Equal(tt.failures+1, endpoint.attempts)
		})
	}
}

func TestWithMaxRetriesPermanent(t *testing.T) {
	require := require.New(t)
	errStop := errors.New("stop")
	calls := 0
	err := WithMaxRetries(
		func() error {
			calls++
			return backoff.Permanent(errStop)
		},
		time.Minute,
		log.NewNoOpLogger(),
	)
	require.ErrorIs(err, errStop)
	require.Equal(1, calls)
}

var errUnavailable = errors.New("endpoint unavailable")

// flakyEndpoint fails the first failures deliveries
type flakyEndpoint struct {
	failures  int
	attempts  int
	delivered bool
}

func (e *flakyEndpoint) deliver() error {
	e.attempts++
	if e.attempts <= e.failures {
		return errUnavailable
	}
	e.delivered = true
	return nil
}
