// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"github.com/metanode/stake/meta"
)

// entry links a role member to its neighbours.
type entry struct {
	Member bool
	Prev   *meta.Address `rlp:"nil"`
	Next   *meta.Address `rlp:"nil"`
}

// IsEmpty returns whether the entry can be treated as empty.
func (e *entry) IsEmpty() bool {
	return !e.Member && e.Prev == nil && e.Next == nil
}
