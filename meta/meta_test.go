// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())

	_, err = ParseAddress("7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.NoError(t, err)

	_, err = ParseAddress("0x7567")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("1x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.EqualError(t, err, "invalid prefix")

	assert.True(t, NativeAsset.IsZero())
	assert.False(t, BytesToAddress([]byte("pool")).IsZero())
}

func TestAddressYAML(t *testing.T) {
	type doc struct {
		Account Address `yaml:"account"`
	}
	var d doc
	require.NoError(t, yaml.Unmarshal([]byte("account: 0x0000000000000000000000000000000000000001\n"), &d))
	assert.Equal(t, BytesToAddress([]byte{1}), d.Account)
}

func TestBytes32(t *testing.T) {
	b := BytesToBytes32([]byte("master"))
	assert.Equal(t, "0x00000000000000000000000000000000000000000000000000006d6173746572", b.String())

	parsed, err := ParseBytes32(b.String())
	require.NoError(t, err)
	assert.Equal(t, b, parsed)
	assert.True(t, Bytes32{}.IsZero())
	assert.Panics(t, func() { MustParseBytes32("0x01") })
}

func TestHashes(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, Blake2b([]byte("a")), Keccak256([]byte("a")))
	// keccak256("") is a well known constant
	assert.Equal(t,
		MustParseBytes32("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		Keccak256())
	assert.NotEqual(t, AdminRole, UpgradeRole)
}

func TestUint64Key(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, Uint64Key(256).Bytes())
	assert.Equal(t, "1000000000000000000", ToWei(1).String())
}
