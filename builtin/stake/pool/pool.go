// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"math/big"

	"github.com/metanode/stake/meta"
)

// body is the stored form of a pool.
type body struct {
	StakeAsset          meta.Address
	Weight              uint64
	LastAccrualBlock    uint32
	AccRewardPerShare   *big.Int // scaled by meta.RewardScale
	TotalStaked         *big.Int
	MinDepositAmount    *big.Int
	UnstakeLockedBlocks uint32
	AcceptsDeposits     bool
}

// Pool is a staking bucket with its own asset, weight and accrual state.
type Pool struct {
	id uint64
	*body
}

func (p *Pool) ID() uint64 { return p.id }

// StakeAsset returns the asset accepted by the pool, meta.NativeAsset for the native coin.
func (p *Pool) StakeAsset() meta.Address { return p.body.StakeAsset }

func (p *Pool) Weight() uint64 { return p.body.Weight }

func (p *Pool) LastAccrualBlock() uint32 { return p.body.LastAccrualBlock }

func (p *Pool) AccRewardPerShare() *big.Int { return orZero(p.body.AccRewardPerShare) }

func (p *Pool) TotalStaked() *big.Int { return orZero(p.body.TotalStaked) }

func (p *Pool) MinDepositAmount() *big.Int { return orZero(p.body.MinDepositAmount) }

func (p *Pool) UnstakeLockedBlocks() uint32 { return p.body.UnstakeLockedBlocks }

// UnlockBlock returns the block at which an unstake requested at block matures.
// It saturates at math.MaxUint32 so a long lock never wraps into the past.
func (p *Pool) UnlockBlock(block uint32) uint32 {
	lock := p.body.UnstakeLockedBlocks
	if lock > math.MaxUint32-block {
		return math.MaxUint32
	}
	return block + lock
}

func (p *Pool) AcceptsDeposits() bool { return p.body.AcceptsDeposits }

// orZero returns a copy of v, zero if v is nil.
func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
