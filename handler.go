// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package transceiver

import (
	"context"
)

// Acceptor handles encrypted packets delivered to a transceiver
type Acceptor interface {
	Accept(ctx context.Context, info CallInfo, msg string, timestamp uint64) (*Response, error)
}
