// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/metanode/stake/builtin/solidity"
	"github.com/metanode/stake/builtin/stake/reverts"
	"github.com/metanode/stake/meta"
)

var (
	slotPools       = meta.BytesToBytes32([]byte("pools"))
	slotPoolCount   = meta.BytesToBytes32([]byte("pool-count"))
	slotTotalWeight = meta.BytesToBytes32([]byte("total-weight"))
)

// Registry is the append only arena of pools. A pool id is its index.
type Registry struct {
	pools       *solidity.Mapping[meta.Uint64Key, *body]
	count       *solidity.Raw[uint64]
	totalWeight *solidity.Raw[uint64]
}

func New(sctx *solidity.Context) *Registry {
	return &Registry{
		pools:       solidity.NewMapping[meta.Uint64Key, *body](sctx, slotPools),
		count:       solidity.NewRaw[uint64](sctx, slotPoolCount),
		totalWeight: solidity.NewRaw[uint64](sctx, slotTotalWeight),
	}
}

// Count returns the number of pools.
func (r *Registry) Count() (uint64, error) {
	n, err := r.count.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get pool count")
	}
	return n, nil
}

// TotalWeight returns the sum of all pool weights.
func (r *Registry) TotalWeight() (uint64, error) {
	w, err := r.totalWeight.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get total weight")
	}
	return w, nil
}

// Get returns the pool with id.
func (r *Registry) Get(id uint64) (*Pool, error) {
	count, err := r.Count()
	if err != nil {
		return nil, err
	}
	if id >= count {
		return nil, reverts.ErrPoolNotFound.Withf("pool %d, count %d", id, count)
	}
	b, err := r.pools.Get(meta.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	return &Pool{id, b}, nil
}

// Save writes p back.
func (r *Registry) Save(p *Pool) error {
	if err := r.pools.Set(meta.Uint64Key(p.id), p.body); err != nil {
		return errors.Wrap(err, "failed to set pool")
	}
	return nil
}

// Add appends a pool that starts accruing at block, and returns its id.
func (r *Registry) Add(
	asset meta.Address,
	weight uint64,
	minDeposit *big.Int,
	lockedBlocks uint32,
	acceptsDeposits bool,
	block uint32,
) (uint64, error) {
	if minDeposit == nil || minDeposit.Sign() < 0 {
		return 0, reverts.ErrInvalidParams.Withf("min deposit %v", minDeposit)
	}
	if err := r.addWeight(0, weight); err != nil {
		return 0, err
	}

	id, err := r.Count()
	if err != nil {
		return 0, err
	}
	p := &Pool{id, &body{
		StakeAsset:          asset,
		Weight:              weight,
		LastAccrualBlock:    block,
		AccRewardPerShare:   new(big.Int),
		TotalStaked:         new(big.Int),
		MinDepositAmount:    new(big.Int).Set(minDeposit),
		UnstakeLockedBlocks: lockedBlocks,
		AcceptsDeposits:     acceptsDeposits,
	}}
	if err := r.Save(p); err != nil {
		return 0, err
	}
	if err := r.count.Set(id + 1); err != nil {
		return 0, errors.Wrap(err, "failed to set pool count")
	}
	return id, nil
}

// addWeight replaces old with new in the total weight.
func (r *Registry) addWeight(old, new uint64) error {
	total, err := r.TotalWeight()
	if err != nil {
		return err
	}
	total -= old
	if new > math.MaxUint64-total {
		return reverts.ErrInvalidParams.Withf("total weight overflow")
	}
	if err := r.totalWeight.Set(total + new); err != nil {
		return errors.Wrap(err, "failed to set total weight")
	}
	return nil
}

// Settle advances the accrual of pool id to block. It is a no-op when the pool
// already accrued up to block.
func (r *Registry) Settle(id uint64, block uint32, emission *Emission) (*Pool, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	total, err := r.TotalWeight()
	if err != nil {
		return nil, err
	}
	if p.settle(block, emission, total) {
		if err := r.Save(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SettleAll settles every pool to block.
func (r *Registry) SettleAll(block uint32, emission *Emission) error {
	count, err := r.Count()
	if err != nil {
		return err
	}
	for id := range count {
		if _, err := r.Settle(id, block, emission); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns the accumulator pool id would have if settled at block.
func (r *Registry) Pending(id uint64, block uint32, emission *Emission) (*Pool, *big.Int, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, nil, err
	}
	total, err := r.TotalWeight()
	if err != nil {
		return nil, nil, err
	}
	return p, p.accrued(block, emission, total), nil
}

// SetWeight changes the weight of pool id. Callers settle all pools first.
func (r *Registry) SetWeight(id uint64, weight uint64) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.addWeight(p.body.Weight, weight); err != nil {
		return err
	}
	p.body.Weight = weight
	return r.Save(p)
}

// Update changes the deposit floor and unstake lock of pool id.
// Requests already queued keep their unlock block.
func (r *Registry) Update(id uint64, minDeposit *big.Int, lockedBlocks uint32) error {
	if minDeposit == nil || minDeposit.Sign() < 0 {
		return reverts.ErrInvalidParams.Withf("min deposit %v", minDeposit)
	}
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	p.body.MinDepositAmount = new(big.Int).Set(minDeposit)
	p.body.UnstakeLockedBlocks = lockedBlocks
	return r.Save(p)
}

// SetAcceptsDeposits opens or closes pool id for deposits.
func (r *Registry) SetAcceptsDeposits(id uint64, accepts bool) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	p.body.AcceptsDeposits = accepts
	return r.Save(p)
}

// AddStake increases the total stake of p and saves it.
func (r *Registry) AddStake(p *Pool, amount *big.Int) error {
	p.body.TotalStaked = new(big.Int).Add(p.TotalStaked(), amount)
	return r.Save(p)
}

// SubStake decreases the total stake of p and saves it.
func (r *Registry) SubStake(p *Pool, amount *big.Int) error {
	total := p.TotalStaked()
	if total.Cmp(amount) < 0 {
		return errors.Errorf("pool %d total stake underflow", p.id)
	}
	p.body.TotalStaked = total.Sub(total, amount)
	return r.Save(p)
}
