// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meta

import (
	"encoding/binary"
	"math/big"
)

// RewardScale is the fixed-point scale of accumulated reward per share.
var RewardScale = big.NewInt(1e12)

// NativeAsset is the sentinel asset id of the chain native coin.
var NativeAsset = Address{}

var (
	// AdminRole may configure pools, emission and pauses.
	AdminRole = Keccak256([]byte("admin_role"))
	// UpgradeRole is granted alongside AdminRole at bootstrap. The engine never asks for it.
	UpgradeRole = Keccak256([]byte("upgrade_role"))
)

// ToWei converts whole tokens into 18 decimals base units.
func ToWei(tokens uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(tokens), big.NewInt(1e18))
}

// Uint64Key is a storage mapping key made of a big endian uint64.
type Uint64Key uint64

// Bytes implements solidity.Key.
func (k Uint64Key) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}
