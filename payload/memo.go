// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/luxfi/transceiver"
)

// RelayMemo is the hook memo attached to a transport transfer. The receiving
// chain executes msg against contract once the transfer lands.
type RelayMemo struct {
	Wasm WasmHook `json:"wasm"`
}

type WasmHook struct {
	Contract string  `json:"contract"`
	Msg      HookMsg `json:"msg"`
}

type HookMsg struct {
	Accept *AcceptMsg `json:"accept,omitempty"`
}

// AcceptMsg carries an encrypted packet; the timestamp is a decimal string
type AcceptMsg struct {
	Msg       string `json:"msg"`
	Timestamp string `json:"timestamp"`
}

// BuildRelayMemo renders the memo that makes the receiving chain call accept on contract
func BuildRelayMemo(contract string, e *Encrypted) (string, error) {
	memo := RelayMemo{
		Wasm: WasmHook{
			Contract: contract,
			Msg: HookMsg{
				Accept: &AcceptMsg{
					Msg:       e.Value,
					Timestamp: strconv.FormatUint(e.Timestamp, 10),
				},
			},
		},
	}
	b, err := json.Marshal(memo)
	if err != nil {
		return "", fmt.Errorf("failed to marshal relay memo: %w", err)
	}
	return string(b), nil
}

// ParseRelayMemo returns the target contract and the encrypted packet of a memo
func ParseRelayMemo(memo string) (string, *Encrypted, error) {
	var m RelayMemo
	if err := json.Unmarshal([]byte(memo), &m); err != nil {
		return "", nil, fmt.Errorf("%w: relay memo: %v", transceiver.ErrMalformedPayload, err)
	}
	if m.Wasm.Contract == "" || m.Wasm.Msg.Accept == nil {
		return "", nil, fmt.Errorf("%w: relay memo is not an accept hook", transceiver.ErrWrongMessageType)
	}
	ts, err := strconv.ParseUint(m.Wasm.Msg.Accept.Timestamp, 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: relay memo timestamp: %v", transceiver.ErrMalformedPayload, err)
	}
	return m.Wasm.Contract, &Encrypted{Value: m.Wasm.Msg.Accept.Msg, Timestamp: ts}, nil
}
