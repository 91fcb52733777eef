// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/metanode/stake/meta"
)

// Emission is the global reward schedule shared by all pools.
type Emission struct {
	StartBlock     uint32
	EndBlock       uint32
	RewardPerBlock *big.Int
}

// Multiplier returns the reward emitted over blocks (from, to], counting only
// blocks inside [StartBlock, EndBlock].
func (e *Emission) Multiplier(from, to uint32) *big.Int {
	if from < e.StartBlock {
		from = e.StartBlock
	}
	if to > e.EndBlock {
		to = e.EndBlock
	}
	if to <= from || e.RewardPerBlock == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(big.NewInt(int64(to-from)), e.RewardPerBlock)
}

// accrued returns the accumulator of p advanced to block, without touching p.
func (p *Pool) accrued(block uint32, emission *Emission, totalWeight uint64) *big.Int {
	acc := p.AccRewardPerShare()
	if block <= p.body.LastAccrualBlock || totalWeight == 0 {
		return acc
	}
	staked := p.TotalStaked()
	if staked.Sign() == 0 {
		return acc
	}
	reward := emission.Multiplier(p.body.LastAccrualBlock, block)
	reward.Mul(reward, new(big.Int).SetUint64(p.body.Weight))
	reward.Quo(reward, new(big.Int).SetUint64(totalWeight))

	reward.Mul(reward, meta.RewardScale)
	reward.Quo(reward, staked)
	return acc.Add(acc, reward)
}

// settle folds the reward emitted up to block into the accumulator.
// It reports whether the pool changed.
func (p *Pool) settle(block uint32, emission *Emission, totalWeight uint64) bool {
	if block <= p.body.LastAccrualBlock {
		return false
	}
	p.body.AccRewardPerShare = p.accrued(block, emission, totalWeight)
	p.body.LastAccrualBlock = block
	return true
}

// Debt returns the unscaled reward debt of a stake at the current accumulator.
func (p *Pool) Debt(staked *big.Int) *big.Int {
	return new(big.Int).Mul(staked, p.AccRewardPerShare())
}

// Accrued returns floor(staked*acc/SCALE) - floor(debt/SCALE), the reward a stake
// earned since its debt was recorded. It is never negative.
func Accrued(staked, acc, debt *big.Int) *big.Int {
	earned := new(big.Int).Mul(staked, acc)
	earned.Quo(earned, meta.RewardScale)
	paid := new(big.Int).Quo(debt, meta.RewardScale)
	if earned.Cmp(paid) <= 0 {
		return new(big.Int)
	}
	return earned.Sub(earned, paid)
}
