// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package backend

import (
	"maps"
	"slices"
	"strings"

	"github.com/luxfi/math/set"
)

// collection is the state of an NFT collection contract
type collection struct {
	owners    map[string]string
	operators map[string]set.Set[string]
}

func newCollection() *collection {
	return &collection{
		owners:    make(map[string]string),
		operators: make(map[string]set.Set[string]),
	}
}

func (c *collection) clone() *collection {
	cp := &collection{
		owners:    maps.Clone(c.owners),
		operators: make(map[string]set.Set[string], len(c.operators)),
	}
	for owner, ops := range c.operators {
		cp.operators[owner] = set.Of(ops.List()...)
	}
	return cp
}

// canSpend reports whether spender may move tokens held by owner
func (c *collection) canSpend(owner, spender string) bool {
	if owner == spender {
		return true
	}
	ops, ok := c.operators[owner]
	return ok && ops.Contains(spender)
}

func (c *collection) approveAll(owner, operator string) {
	ops, ok := c.operators[owner]
	if !ok {
		ops = set.NewSet[string](1)
		c.operators[owner] = ops
	}
	ops.Add(operator)
}

// tokensOf returns the sorted tokens of owner after startAfter
func (c *collection) tokensOf(owner, startAfter string, limit int) []string {
	var tokens []string
	for id, o := range c.owners {
		if o == owner && (startAfter == "" || strings.Compare(id, startAfter) > 0) {
			tokens = append(tokens, id)
		}
	}
	slices.Sort(tokens)
	if limit >= 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}
	return tokens
}
