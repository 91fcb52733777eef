// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixRange(t *testing.T) {
	assert.Equal(t, Range{Start: []byte("a"), Limit: []byte("b")}, PrefixRange([]byte("a")))
	assert.Equal(t, Range{Start: []byte{1, 0xff}, Limit: []byte{2}}, PrefixRange([]byte{1, 0xff}))
	assert.Nil(t, PrefixRange([]byte{0xff}).Limit)
	assert.Nil(t, PrefixRange(nil).Limit)
}
