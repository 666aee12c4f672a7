// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package topology classifies a transfer by the position of the transceivers it involves.
//
// A network has one Hub, one home outpost per foreign chain and at most one
// retranslation outpost. Routes are either short, between the hub and a home
// outpost, or long, relayed once through the retranslation outpost:
//
//	short  HomeOutpost -> Hub, Hub -> HomeOutpost
//	long   HomeOutpost -> RetranslationOutpost -> Hub
//	long   Hub -> RetranslationOutpost -> HomeOutpost
package topology

import "fmt"

// Role is the position of a transceiver in the network
type Role uint8

const (
	Outpost Role = iota
	Hub
)

func (r Role) String() string {
	switch r {
	case Hub:
		return "hub"
	case Outpost:
		return "outpost"
	default:
		return "unknown"
	}
}

// ParseRole parses the textual role name
func ParseRole(s string) (Role, error) {
	switch s {
	case "hub":
		return Hub, nil
	case "outpost":
		return Outpost, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

type Mode uint8

const (
	Local Mode = iota
	Interchain
)

func (m Mode) String() string {
	if m == Local {
		return "local"
	}
	return "interchain"
}

type Direction uint8

const (
	FromHub Direction = iota
	ToHub
)

func (d Direction) String() string {
	if d == FromHub {
		return "from_hub"
	}
	return "to_hub"
}

type Stage uint8

const (
	First Stage = iota
	Second
)

func (s Stage) String() string {
	if s == First {
		return "first"
	}
	return "second"
}

type Route uint8

const (
	Short Route = iota
	Long
)

func (r Route) String() string {
	if r == Short {
		return "short"
	}
	return "long"
}

// Description is the routing decision for a single request
type Description struct {
	Mode      Mode
	Direction Direction
	Stage     Stage
	Route     Route
}

func (d Description) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", d.Mode, d.Direction, d.Stage, d.Route)
}

// Info is a Description together with the addresses it was derived from
type Info struct {
	Description

	Role                 Role
	HomeOutpost          string
	Hub                  string
	RetranslationOutpost string
	Transceiver          string
	Target               string
}

// Destination is the endpoint where the transfer finalizes: the home
// outpost for hub-originated transfers and the hub otherwise.
func (i *Info) Destination() string {
	if i.Role == Hub {
		return i.HomeOutpost
	}
	return i.Hub
}
