// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package backend is an in-memory multi-chain ledger. Each chain hosts NFT
// collections, a mint/burn contract and transceiver contracts, executes the
// messages they emit and queues interchain transfers for a relayer.
package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/transceiver"
	"github.com/luxfi/transceiver/address"
)

var (
	ErrUnknownChain      = errors.New("unknown chain")
	ErrUnknownContract   = errors.New("unknown contract")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenExists       = errors.New("token already exists")
	ErrNotApproved       = errors.New("spender is not approved")
	ErrUnknownMsg        = errors.New("unknown message")
)

var (
	_ Backend               = (*Network)(nil)
	_ transceiver.Querier    = (*Chain)(nil)
	_ transceiver.Dispatcher = (*Chain)(nil)
)

// Network is a set of chains identified by their address prefix
type Network struct {
	codec address.Codec
	log   log.Logger

	mu     sync.Mutex
	chains map[string]*Chain
	outbox []Transfer
}

func NewNetwork(codec address.Codec, logger log.Logger) *Network {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Network{
		codec:  codec,
		log:    logger,
		chains: make(map[string]*Chain),
	}
}

// AddChain creates a chain whose block time starts at genesis
func (n *Network) AddChain(prefix string, genesis time.Time) *Chain {
	n.mu.Lock()
	defer n.mu.Unlock()

	c := &Chain{
		prefix:      prefix,
		network:     n,
		now:         genesis,
		collections: make(map[string]*collection),
		contracts:   make(map[string]transceiver.Acceptor),
	}
	n.chains[prefix] = c
	return c
}

// ChainOf returns the chain an address lives on
func (n *Network) ChainOf(addr string) (*Chain, error) {
	prefix, err := n.codec.Prefix(addr)
	if err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.chains[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChain, prefix)
	}
	return c, nil
}

func (n *Network) Drain() []Transfer {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := n.outbox
	n.outbox = nil
	return out
}

// Pending returns the number of queued transfers
func (n *Network) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.outbox)
}

func (n *Network) Contract(addr string) (transceiver.Acceptor, time.Time, error) {
	c, err := n.ChainOf(addr)
	if err != nil {
		return nil, time.Time{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	contract, ok := c.contracts[addr]
	if !ok {
		return nil, time.Time{}, fmt.Errorf("%w: %s", ErrUnknownContract, addr)
	}
	return contract, c.now, nil
}

func (n *Network) enqueue(t Transfer) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outbox = append(n.outbox, t)
	return len(n.outbox)
}

// truncate drops transfers queued after a failed batch started
func (n *Network) truncate(size int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if size < len(n.outbox) {
		n.outbox = n.outbox[:size]
	}
}

func (n *Network) outboxLen() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.outbox)
}

// Chain is a single ledger. Messages of one Dispatch call apply atomically:
// a failing message rolls back every token movement of the batch.
type Chain struct {
	prefix  string
	network *Network

	mu          sync.Mutex
	now         time.Time
	collections map[string]*collection
	minter      string
	contracts   map[string]transceiver.Acceptor
}

func (c *Chain) Prefix() string {
	return c.prefix
}

// Now returns the current block time
func (c *Chain) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the block time forward
func (c *Chain) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *Chain) CreateCollection(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.collections[addr]; !ok {
		c.collections[addr] = newCollection()
	}
}

// SetMinter installs the mint/burn contract
func (c *Chain) SetMinter(addr string) {
	c.mu.Lock()
	c.minter = addr
	c.mu.Unlock()
}

// RegisterContract makes a transceiver reachable by ExecuteAccept and by relayers
func (c *Chain) RegisterContract(addr string, contract transceiver.Acceptor) {
	c.mu.Lock()
	c.contracts[addr] = contract
	c.mu.Unlock()
}

// Mint creates tokens outside of any contract call, for genesis state
func (c *Chain) Mint(collectionAddr, owner string, tokenIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.collection(collectionAddr)
	if err != nil {
		return err
	}
	for _, id := range tokenIDs {
		if _, ok := col.owners[id]; ok {
			return fmt.Errorf("%w: %s", ErrTokenExists, id)
		}
		col.owners[id] = owner
	}
	return nil
}

// OwnerOf returns the owner of a token
func (c *Chain) OwnerOf(collectionAddr, tokenID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.collection(collectionAddr)
	if err != nil {
		return "", err
	}
	owner, ok := col.owners[tokenID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID)
	}
	return owner, nil
}

func (c *Chain) ListOwnedTokens(_ context.Context, collectionAddr, owner, startAfter string, limit int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.collection(collectionAddr)
	if err != nil {
		return nil, err
	}
	return col.tokensOf(owner, startAfter, limit), nil
}

// Dispatch executes msgs in order on behalf of caller. The chain lock is not
// held while a contract runs so nested calls may dispatch again.
func (c *Chain) Dispatch(ctx context.Context, caller string, msgs []transceiver.Msg) error {
	snapshot := c.snapshot()
	queued := c.network.outboxLen()

	for i, msg := range msgs {
		if err := c.apply(ctx, caller, msg); err != nil {
			c.restore(snapshot)
			c.network.truncate(queued)
			return fmt.Errorf("message %d (%s) failed: %w", i, msg.Kind(), err)
		}
	}
	return nil
}

func (c *Chain) apply(ctx context.Context, caller string, msg transceiver.Msg) error {
	switch m := msg.(type) {
	case transceiver.TransferNft:
		return c.transfer(caller, m)
	case transceiver.ApproveAll:
		return c.approveAll(caller, m)
	case transceiver.MintNft:
		return c.mint(caller, m)
	case transceiver.BurnNft:
		return c.burn(m)
	case transceiver.ExecuteAccept:
		return c.executeAccept(ctx, caller, m)
	case transceiver.InterchainTransfer:
		return c.submitTransfer(caller, m)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownMsg, msg)
	}
}

func (c *Chain) transfer(caller string, m transceiver.TransferNft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.collection(m.Collection)
	if err != nil {
		return err
	}
	owner, ok := col.owners[m.TokenID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, m.TokenID)
	}
	if !col.canSpend(owner, caller) {
		return fmt.Errorf("%w: %s can't move %s", ErrNotApproved, caller, m.TokenID)
	}
	col.owners[m.TokenID] = m.Recipient
	return nil
}

func (c *Chain) approveAll(caller string, m transceiver.ApproveAll) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.collection(m.Collection)
	if err != nil {
		return err
	}
	col.approveAll(caller, m.Operator)
	return nil
}

// mint runs the mint contract. Only registered contracts may call it.
func (c *Chain) mint(caller string, m transceiver.MintNft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkMinter(caller, m.Minter); err != nil {
		return err
	}
	col, err := c.collection(m.Collection)
	if err != nil {
		return err
	}
	for _, id := range m.TokenList {
		if _, ok := col.owners[id]; ok {
			return fmt.Errorf("%w: %s", ErrTokenExists, id)
		}
	}
	for _, id := range m.TokenList {
		col.owners[id] = m.Recipient
	}
	return nil
}

// burn runs the burn contract, which needs transfer rights over the tokens
func (c *Chain) burn(m transceiver.BurnNft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.Minter == "" || m.Minter != c.minter {
		return fmt.Errorf("%w: minter %s", ErrUnknownContract, m.Minter)
	}
	col, err := c.collection(m.Collection)
	if err != nil {
		return err
	}
	for _, id := range m.TokenList {
		owner, ok := col.owners[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTokenNotFound, id)
		}
		if !col.canSpend(owner, m.Minter) {
			return fmt.Errorf("%w: minter can't burn %s", ErrNotApproved, id)
		}
		delete(col.owners, id)
	}
	return nil
}

func (c *Chain) executeAccept(ctx context.Context, caller string, m transceiver.ExecuteAccept) error {
	c.mu.Lock()
	contract, ok := c.contracts[m.Contract]
	now := c.now
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownContract, m.Contract)
	}
	_, err := contract.Accept(ctx, transceiver.CallInfo{Sender: caller, Time: now}, m.Msg, m.Timestamp)
	return err
}

func (c *Chain) submitTransfer(caller string, m transceiver.InterchainTransfer) error {
	if m.Sender != caller {
		return fmt.Errorf("%w: %s can't send for %s", ErrNotApproved, caller, m.Sender)
	}
	if m.Token.IsZero() {
		return fmt.Errorf("%w: empty transfer", transceiver.ErrWrongFundsCombination)
	}
	n := c.network.enqueue(Transfer{SourceChain: c.prefix, InterchainTransfer: m})
	c.network.log.Debug("queued interchain transfer",
		log.String("source", c.prefix),
		log.String("channel", m.SourceChannel),
		log.String("receiver", m.Receiver),
		log.Int("pending", n),
	)
	return nil
}

func (c *Chain) checkMinter(caller, minter string) error {
	if minter == "" || minter != c.minter {
		return fmt.Errorf("%w: minter %s", ErrUnknownContract, minter)
	}
	if _, ok := c.contracts[caller]; !ok {
		return fmt.Errorf("%w: %s may not mint", ErrNotApproved, caller)
	}
	return nil
}

func (c *Chain) collection(addr string) (*collection, error) {
	col, ok := c.collections[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, addr)
	}
	return col, nil
}

func (c *Chain) snapshot() map[string]*collection {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := make(map[string]*collection, len(c.collections))
	for addr, col := range c.collections {
		cp[addr] = col.clone()
	}
	return cp
}

func (c *Chain) restore(snapshot map[string]*collection) {
	c.mu.Lock()
	c.collections = snapshot
	c.mu.Unlock()
}
