// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/metanode/stake/builtin/stake/pool"
	"github.com/metanode/stake/builtin/stake/reverts"
)

// Request is a pending unstake, payable once the clock reaches UnlockBlock.
type Request struct {
	Amount      *big.Int
	UnlockBlock uint32
}

type body struct {
	Staked        *big.Int
	RewardDebt    *big.Int
	PendingReward *big.Int
	Requests      []*Request
}

// Record is the stake of one account in one pool.
// A record never stored reads as zero.
type Record struct {
	*body
}

func newRecord(b *body) *Record {
	if b.Staked == nil {
		b.Staked = new(big.Int)
	}
	if b.RewardDebt == nil {
		b.RewardDebt = new(big.Int)
	}
	if b.PendingReward == nil {
		b.PendingReward = new(big.Int)
	}
	return &Record{b}
}

func (r *Record) Staked() *big.Int        { return new(big.Int).Set(r.body.Staked) }
func (r *Record) RewardDebt() *big.Int    { return new(big.Int).Set(r.body.RewardDebt) }
func (r *Record) PendingReward() *big.Int { return new(big.Int).Set(r.body.PendingReward) }

// Requests returns copies of the queued unstake requests in creation order.
func (r *Record) Requests() []Request {
	out := make([]Request, 0, len(r.body.Requests))
	for _, req := range r.body.Requests {
		out = append(out, Request{new(big.Int).Set(req.Amount), req.UnlockBlock})
	}
	return out
}

// Earned returns the reward accrued since the debt was recorded, at acc.
func (r *Record) Earned(acc *big.Int) *big.Int {
	return pool.Accrued(r.body.Staked, acc, r.body.RewardDebt)
}

// Accrue moves the reward earned at acc into the pending buffer and resets the debt.
func (r *Record) Accrue(acc *big.Int) {
	earned := r.Earned(acc)
	if earned.Sign() > 0 {
		r.body.PendingReward = earned.Add(earned, r.body.PendingReward)
	}
	r.resetDebt(acc)
}

func (r *Record) resetDebt(acc *big.Int) {
	r.body.RewardDebt = new(big.Int).Mul(r.body.Staked, acc)
}

// Deposit adds amount to the stake, buffering what was earned before.
func (r *Record) Deposit(amount, acc *big.Int) {
	r.Accrue(acc)
	r.body.Staked = new(big.Int).Add(r.body.Staked, amount)
	r.resetDebt(acc)
}

// Unstake moves amount out of the stake into a request unlocking at unlockBlock.
// A zero amount only buffers the reward.
func (r *Record) Unstake(amount, acc *big.Int, unlockBlock uint32) error {
	if amount.Cmp(r.body.Staked) > 0 {
		return reverts.ErrInsufficientStake.Withf("staked %v, requested %v", r.body.Staked, amount)
	}
	r.Accrue(acc)
	if amount.Sign() == 0 {
		return nil
	}
	r.body.Staked = new(big.Int).Sub(r.body.Staked, amount)
	r.body.Requests = append(r.body.Requests, &Request{new(big.Int).Set(amount), unlockBlock})
	r.resetDebt(acc)
	return nil
}

// Withdrawable sums the requests matured at block.
func (r *Record) Withdrawable(block uint32) *big.Int {
	sum := new(big.Int)
	for _, req := range r.body.Requests {
		if req.UnlockBlock <= block {
			sum.Add(sum, req.Amount)
		}
	}
	return sum
}

// Requested sums every queued request, matured or not.
func (r *Record) Requested() *big.Int {
	sum := new(big.Int)
	for _, req := range r.body.Requests {
		sum.Add(sum, req.Amount)
	}
	return sum
}

// Withdraw removes every request matured at block and returns their sum.
// The remaining requests keep their order.
func (r *Record) Withdraw(block uint32) *big.Int {
	sum := new(big.Int)
	kept := r.body.Requests[:0]
	for _, req := range r.body.Requests {
		if req.UnlockBlock <= block {
			sum.Add(sum, req.Amount)
			continue
		}
		kept = append(kept, req)
	}
	clear(r.body.Requests[len(kept):])
	r.body.Requests = kept
	return sum
}

// Claim empties the buffer plus what was earned at acc and returns the total.
func (r *Record) Claim(acc *big.Int) *big.Int {
	r.Accrue(acc)
	amount := r.body.PendingReward
	r.body.PendingReward = new(big.Int)
	return amount
}
