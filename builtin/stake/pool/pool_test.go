// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metanode/stake/builtin/solidity"
	"github.com/metanode/stake/builtin/stake/reverts"
	"github.com/metanode/stake/lvldb"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

func newRegistry(t *testing.T) *Registry {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext("stake", meta.BytesToAddress([]byte("stake")), state.New(db)))
}

func emission(perBlock int64) *Emission {
	return &Emission{StartBlock: 0, EndBlock: 1_000_000, RewardPerBlock: big.NewInt(perBlock)}
}

func TestEmissionMultiplier(t *testing.T) {
	e := &Emission{StartBlock: 10, EndBlock: 20, RewardPerBlock: big.NewInt(3)}

	tests := []struct {
		from, to uint32
		expected int64
	}{
		{0, 5, 0},
		{0, 10, 0},
		{0, 15, 15},
		{12, 15, 9},
		{15, 30, 15},
		{20, 30, 0},
		{15, 15, 0},
		{15, 12, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, big.NewInt(tt.expected), e.Multiplier(tt.from, tt.to), "(%d, %d]", tt.from, tt.to)
	}
}

func TestRegistryAddGet(t *testing.T) {
	r := newRegistry(t)
	token := meta.BytesToAddress([]byte("token"))

	id, err := r.Add(meta.NativeAsset, 100, big.NewInt(100), 20, true, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)
	id, err = r.Add(token, 50, big.NewInt(10), 5, false, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	count, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
	total, err := r.TotalWeight()
	require.NoError(t, err)
	assert.Equal(t, uint64(150), total)

	p, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.ID())
	assert.Equal(t, token, p.StakeAsset())
	assert.Equal(t, uint64(50), p.Weight())
	assert.Equal(t, uint32(7), p.LastAccrualBlock())
	assert.Equal(t, big.NewInt(10), p.MinDepositAmount())
	assert.Equal(t, uint32(5), p.UnstakeLockedBlocks())
	assert.False(t, p.AcceptsDeposits())
	assert.Equal(t, 0, p.TotalStaked().Sign())
	assert.Equal(t, 0, p.AccRewardPerShare().Sign())

	_, err = r.Get(2)
	assert.ErrorIs(t, err, reverts.ErrPoolNotFound)

	_, err = r.Add(token, 1, big.NewInt(-1), 0, true, 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)
}

func TestRegistryWeightOverflow(t *testing.T) {
	r := newRegistry(t)

	_, err := r.Add(meta.NativeAsset, ^uint64(0)-1, new(big.Int), 0, true, 0)
	require.NoError(t, err)
	_, err = r.Add(meta.NativeAsset, 2, new(big.Int), 0, true, 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)

	count, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, r.SetWeight(0, 10))
	total, err := r.TotalWeight()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), total)
}

func TestSettle(t *testing.T) {
	r := newRegistry(t)
	e := emission(1000)

	_, err := r.Add(meta.NativeAsset, 1, new(big.Int), 0, true, 0)
	require.NoError(t, err)
	_, err = r.Add(meta.NativeAsset, 3, new(big.Int), 0, true, 0)
	require.NoError(t, err)

	// empty pool advances the block but not the accumulator
	p, err := r.Settle(0, 10, e)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), p.LastAccrualBlock())
	assert.Equal(t, 0, p.AccRewardPerShare().Sign())

	p, err = r.Get(0)
	require.NoError(t, err)
	require.NoError(t, r.AddStake(p, big.NewInt(400)))

	// 10 blocks * 1000 * 1/4 = 2500 over 400 staked
	p, err = r.Settle(0, 20, e)
	require.NoError(t, err)
	expected := new(big.Int).Mul(big.NewInt(2500), meta.RewardScale)
	expected.Quo(expected, big.NewInt(400))
	assert.Equal(t, expected, p.AccRewardPerShare())
	assert.Equal(t, big.NewInt(2500), Accrued(big.NewInt(400), p.AccRewardPerShare(), new(big.Int)))

	// idempotent, and never moves backwards
	for _, block := range []uint32{20, 15, 0} {
		p, err = r.Settle(0, block, e)
		require.NoError(t, err)
		assert.Equal(t, uint32(20), p.LastAccrualBlock())
		assert.Equal(t, expected, p.AccRewardPerShare())
	}

	_, err = r.Settle(5, 20, e)
	assert.ErrorIs(t, err, reverts.ErrPoolNotFound)
}

func TestPendingDoesNotWrite(t *testing.T) {
	r := newRegistry(t)
	e := emission(10)

	_, err := r.Add(meta.NativeAsset, 1, new(big.Int), 0, true, 0)
	require.NoError(t, err)
	p, err := r.Get(0)
	require.NoError(t, err)
	require.NoError(t, r.AddStake(p, big.NewInt(10)))

	_, acc, err := r.Pending(0, 5, e)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(5), meta.RewardScale), acc)

	p, err = r.Get(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), p.LastAccrualBlock())
	assert.Equal(t, 0, p.AccRewardPerShare().Sign())

	settled, err := r.Settle(0, 5, e)
	require.NoError(t, err)
	assert.Equal(t, acc, settled.AccRewardPerShare())
}

func TestSettleAllAndUpdates(t *testing.T) {
	r := newRegistry(t)
	e := emission(10)

	for range 3 {
		_, err := r.Add(meta.NativeAsset, 1, new(big.Int), 0, true, 0)
		require.NoError(t, err)
	}
	require.NoError(t, r.SettleAll(9, e))
	for id := range uint64(3) {
		p, err := r.Get(id)
		require.NoError(t, err)
		assert.Equal(t, uint32(9), p.LastAccrualBlock())
	}

	require.NoError(t, r.Update(1, big.NewInt(77), 42))
	require.NoError(t, r.SetAcceptsDeposits(1, false))
	p, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(77), p.MinDepositAmount())
	assert.Equal(t, uint32(42), p.UnstakeLockedBlocks())
	assert.False(t, p.AcceptsDeposits())

	assert.ErrorIs(t, r.Update(1, big.NewInt(-1), 0), reverts.ErrInvalidParams)
	assert.ErrorIs(t, r.SetAcceptsDeposits(3, true), reverts.ErrPoolNotFound)
}

func TestSubStakeUnderflow(t *testing.T) {
	r := newRegistry(t)

	_, err := r.Add(meta.NativeAsset, 1, new(big.Int), 0, true, 0)
	require.NoError(t, err)
	p, err := r.Get(0)
	require.NoError(t, err)
	require.NoError(t, r.AddStake(p, big.NewInt(5)))
	require.NoError(t, r.SubStake(p, big.NewInt(2)))
	assert.Equal(t, big.NewInt(3), p.TotalStaked())
	assert.Error(t, r.SubStake(p, big.NewInt(4)))
}

func TestAccruedFloors(t *testing.T) {
	scale := meta.RewardScale
	acc := new(big.Int).Quo(scale, big.NewInt(3)) // 0.333..
	debt := new(big.Int).Mul(big.NewInt(2), acc)

	// floor(3*acc/S) - floor(2*acc/S) = 0 - 0
	assert.Equal(t, 0, Accrued(big.NewInt(3), acc, debt).Sign())
	// debt above earned never goes negative
	assert.Equal(t, 0, Accrued(big.NewInt(1), acc, new(big.Int).Mul(big.NewInt(10), scale)).Sign())
	assert.Equal(t, big.NewInt(3), Accrued(big.NewInt(10), acc, new(big.Int)))
}

func TestUnlockBlock(t *testing.T) {
	tests := []struct {
		lock  uint32
		block uint32
		want  uint32
	}{
		{0, 10, 10},
		{5, 10, 15},
		{math.MaxUint32 - 10, 10, math.MaxUint32},
		{math.MaxUint32 - 9, 10, math.MaxUint32},
		{math.MaxUint32, 10, math.MaxUint32},
		{1, math.MaxUint32, math.MaxUint32},
	}
	for _, tt := range tests {
		p := &Pool{body: &body{UnstakeLockedBlocks: tt.lock}}
		assert.Equal(t, tt.want, p.UnlockBlock(tt.block), "lock %d at block %d", tt.lock, tt.block)
	}
}
