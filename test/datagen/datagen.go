// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>


// Package datagen generates random values for tests.
package datagen

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"

	"github.com/metanode/stake/meta"
)

func RandomAddress() meta.Address {
	var addr meta.Address

	rand.Read(addr[:])
	return addr
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandAmount returns a wei amount of 1 to maxTokens whole tokens.
func RandAmount(maxTokens uint64) *big.Int {
	return meta.ToWei(mathrand.Uint64N(maxTokens) + 1) //#nosec G404
}
