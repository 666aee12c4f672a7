// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package topology

import (
	"fmt"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
)

// Input is the static configuration and request data the resolver works on
type Input struct {
	Role                 Role
	Hub                  string
	RetranslationOutpost string
	// Target is the caller supplied target, empty when absent.
	Target         string
	HomeCollection string
	Outposts       []string
	Transceiver    string
	// Counterpart is treated as the home outpost when no known outpost
	// shares the home collection's chain.
	Counterpart string
}

// Resolve computes the transmission info for a request.
// The returned info is not checked against route guards, see CheckSend and CheckRelay.
func Resolve(codec address.Codec, in Input) (*Info, error) {
	homePrefix, err := codec.Prefix(in.HomeCollection)
	if err != nil {
		return nil, err
	}

	homeOutpost := in.Counterpart
	for _, outpost := range in.Outposts {
		prefix, err := codec.Prefix(outpost)
		if err != nil {
			return nil, err
		}
		if prefix == homePrefix {
			homeOutpost = outpost
			break
		}
	}

	isHub := in.Role == Hub
	target := in.Target
	if target == "" {
		if isHub {
			target = homeOutpost
		} else {
			target = in.Hub
		}
	}

	if target != in.Hub &&
		target != homeOutpost &&
		(in.RetranslationOutpost == "" || target != in.RetranslationOutpost) {
		return nil, fmt.Errorf("%w: %s", transceiver.ErrWrongTargetAddress, target)
	}

	local, err := address.SamePrefix(codec, in.Transceiver, target)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Role:                 in.Role,
		HomeOutpost:          homeOutpost,
		Hub:                  in.Hub,
		RetranslationOutpost: in.RetranslationOutpost,
		Transceiver:          in.Transceiver,
		Target:               target,
	}
	if local {
		info.Mode = Local
	} else {
		info.Mode = Interchain
	}
	if isHub || target != in.Hub {
		info.Direction = FromHub
	} else {
		info.Direction = ToHub
	}
	if in.RetranslationOutpost != "" && in.Transceiver == in.RetranslationOutpost {
		info.Stage = Second
	} else {
		info.Stage = First
	}
	if (isHub && target == homeOutpost) || (!isHub && target == in.Hub) {
		info.Route = Short
	} else {
		info.Route = Long
	}
	return info, nil
}
