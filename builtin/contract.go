// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import "github.com/metanode/stake/meta"

type contract struct {
	name    string
	Address meta.Address
}

// newContract binds name to the address derived from it.
func newContract(name string) *contract {
	return &contract{
		name:    name,
		Address: meta.BytesToAddress([]byte(name)),
	}
}

func (c *contract) Name() string {
	return c.name
}
