// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/metrics"
	"github.com/metanode/stake/state"
)

var metricStorageSlots = metrics.LazyLoadCounterVec("builtin_storage_slots", []string{"contract", "op"})

// Context binds storage helpers to a contract address on a state.
type Context struct {
	name    string
	address meta.Address
	state   *state.State
}

// NewContext creates a context. name labels the storage metrics of the contract.
func NewContext(name string, address meta.Address, state *state.State) *Context {
	return &Context{
		name:    name,
		address: address,
		state:   state,
	}
}

func (c *Context) Address() meta.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// touch records the number of 32 bytes words read or written.
func (c *Context) touch(op string, length int) {
	if length == 0 {
		return
	}
	words := (length + 31) / 32
	metricStorageSlots().AddWithLabel(int64(words), map[string]string{"contract": c.name, "op": op})
}
