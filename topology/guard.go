// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package topology

import (
	"fmt"

	"github.com/luxfi/math/set"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
)

// CheckEndpoints rejects topologies where one transceiver plays two roles.
func CheckEndpoints(info *Info) error {
	if info.HomeOutpost == info.Hub {
		return transceiver.ErrHubIsNotOutpost
	}
	if info.RetranslationOutpost == "" {
		return nil
	}
	if info.RetranslationOutpost == info.Hub {
		return transceiver.ErrHubIsNotRetranslator
	}
	if info.RetranslationOutpost == info.HomeOutpost {
		return transceiver.ErrHomeOutpostIsNotRetranslator
	}
	return nil
}

// CheckSend validates a first stage route leaving this transceiver.
func CheckSend(codec address.Codec, info *Info) error {
	if info.Stage == Second {
		return fmt.Errorf("%w: retranslation outpost can't initiate a transfer", transceiver.ErrWrongMessageType)
	}
	if err := CheckEndpoints(info); err != nil {
		return err
	}
	if info.Target == info.Transceiver {
		return fmt.Errorf("%w: %s is this transceiver", transceiver.ErrWrongTargetAddress, info.Target)
	}
	if info.Route == Short {
		return nil
	}
	if info.Target != info.RetranslationOutpost {
		return fmt.Errorf("%w: long route must go through the retranslation outpost", transceiver.ErrWrongTargetAddress)
	}
	return CheckInterchain(codec, info)
}

// CheckRelay validates a second stage route at the retranslation outpost.
func CheckRelay(codec address.Codec, info *Info) error {
	if info.Stage != Second {
		return fmt.Errorf("%w: not a retranslation outpost", transceiver.ErrWrongMessageType)
	}
	if err := CheckEndpoints(info); err != nil {
		return err
	}
	if info.Target != info.Hub && info.Target != info.HomeOutpost {
		return fmt.Errorf("%w: relay target must be an endpoint", transceiver.ErrWrongTargetAddress)
	}
	return CheckInterchain(codec, info)
}

// CheckInterchain requires the hub, the home outpost and the retranslation
// outpost to live on pairwise distinct chains.
func CheckInterchain(codec address.Codec, info *Info) error {
	prefixes := set.NewSet[string](3)
	for _, addr := range []string{info.Hub, info.HomeOutpost, info.RetranslationOutpost} {
		prefix, err := codec.Prefix(addr)
		if err != nil {
			return err
		}
		if prefixes.Contains(prefix) {
			return fmt.Errorf("%w: %s is shared", transceiver.ErrTransceiversAreNotInterchain, prefix)
		}
		prefixes.Add(prefix)
	}
	return nil
}
