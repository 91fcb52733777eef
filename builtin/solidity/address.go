// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/metanode/stake/meta"
)

// Address is a wrapper for storage and retrieval of an address. Similar to storing an address in a smart contract.
type Address struct {
	context *Context
	pos     meta.Bytes32
}

func NewAddress(context *Context, pos meta.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (meta.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return meta.Address{}, err
	}
	a.context.touch("read", 32)
	return meta.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr meta.Address) {
	a.context.touch("write", 32)
	a.context.state.SetStorage(a.context.address, a.pos, meta.BytesToBytes32(addr.Bytes()))
}
