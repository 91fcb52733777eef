// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metanode/stake/lvldb"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

type TestStruct struct {
	Field1 uint64
	Amount *big.Int
	Addr1  meta.Address
	List   []uint32
}

// newTestContext returns a fresh Context with in-memory DB.
func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext("test", meta.Address{1}, state.New(db))
}

func TestMappingStruct(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[meta.Uint64Key, *TestStruct](ctx, meta.Bytes32{1})

	// missing entries decode into a zero value
	got, err := m.Get(7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(0), got.Field1)
	exists, err := m.Exists(7)
	require.NoError(t, err)
	assert.False(t, exists)

	value := &TestStruct{Field1: 100, Amount: big.NewInt(5), Addr1: meta.BytesToAddress([]byte("a")), List: []uint32{3, 1}}
	require.NoError(t, m.Set(7, value))

	got, err = m.Get(7)
	require.NoError(t, err)
	assert.Equal(t, value, got)
	exists, err = m.Exists(7)
	require.NoError(t, err)
	assert.True(t, exists)

	// positions are distinct per key and per base
	other := NewMapping[meta.Uint64Key, *TestStruct](ctx, meta.Bytes32{2})
	got, err = other.Get(7)
	require.NoError(t, err)
	assert.Nil(t, got.Amount)

	m.Delete(7)
	exists, err = m.Exists(7)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMappingValueTypes(t *testing.T) {
	ctx := newTestContext(t)

	byAddr := NewMapping[meta.Address, uint64](ctx, meta.Bytes32{3})
	alice := meta.BytesToAddress([]byte("alice"))
	require.NoError(t, byAddr.Set(alice, 42))
	v, err := byAddr.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	v, err = byAddr.Get(meta.BytesToAddress([]byte("bob")))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	byID := NewMapping[*big.Int, bool](ctx, meta.Bytes32{4})
	require.NoError(t, byID.Set(big.NewInt(1), true))
	flag, err := byID.Get(big.NewInt(1))
	require.NoError(t, err)
	assert.True(t, flag)
}

func TestRaw(t *testing.T) {
	ctx := newTestContext(t)
	raw := NewRaw[*TestStruct](ctx, meta.BytesToBytes32([]byte("params")))

	got, err := raw.Get()
	require.NoError(t, err)
	assert.Equal(t, &TestStruct{}, got)

	require.NoError(t, raw.Set(&TestStruct{Field1: 9, Amount: big.NewInt(1)}))
	got, err = raw.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got.Field1)
	assert.Equal(t, big.NewInt(1), got.Amount)
}

func TestUint256AndAddress(t *testing.T) {
	ctx := newTestContext(t)

	u := NewUint256(ctx, meta.BytesToBytes32([]byte("total")))
	require.NoError(t, u.Add(big.NewInt(10)))
	require.NoError(t, u.Sub(big.NewInt(3)))
	got, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), got)

	a := NewAddress(ctx, meta.BytesToBytes32([]byte("token")))
	token := meta.BytesToAddress([]byte("meta"))
	a.Set(token)
	addr, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, token, addr)

	a.Set(meta.Address{})
	addr, err = a.Get()
	require.NoError(t, err)
	assert.True(t, addr.IsZero())
}
