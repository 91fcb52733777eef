// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/metanode/stake/meta"
)

// TokenLedger moves fungible balances. Each call either fully succeeds or fails
// with no effect.
type TokenLedger interface {
	TransferIn(asset, from meta.Address, amount *big.Int) error
	TransferOut(asset, to meta.Address, amount *big.Int) error
	BalanceOf(asset, account meta.Address) (*big.Int, error)
}

// AccessControl answers role checks for privileged calls.
type AccessControl interface {
	IsAuthorized(caller meta.Address, role meta.Bytes32) (bool, error)
}

// Clock supplies the current block. It never goes backwards.
type Clock interface {
	BlockNumber() uint32
}

// ClockFunc adapts a func to Clock.
type ClockFunc func() uint32

func (f ClockFunc) BlockNumber() uint32 { return f() }
