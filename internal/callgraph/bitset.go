// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package callgraph

import "github.com/petar-djukic/go-codemap/pkg/types"

// bitset marks symbol ids; it is sized to the index, not the graph.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(id types.SymbolID) {
	b[id/64] |= 1 << (uint(id) % 64)
}

func (b bitset) has(id types.SymbolID) bool {
	if id < 0 || int(id/64) >= len(b) {
		return false
	}
	return b[id/64]&(1<<(uint(id)%64)) != 0
}
