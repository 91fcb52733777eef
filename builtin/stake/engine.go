// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stake implements the pool staking engine: deposits into weighted
// pools, reward accrual per share, and a locked unstake queue.
package stake

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/event"

	"github.com/metanode/stake/builtin/solidity"
	"github.com/metanode/stake/builtin/stake/ledger"
	"github.com/metanode/stake/builtin/stake/pool"
	"github.com/metanode/stake/builtin/stake/reverts"
	"github.com/metanode/stake/log"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

var logger = log.WithContext("pkg", "stake")

func SetLogger(l log.Logger) {
	logger = l
}

// Engine implements the staking operations over contract storage.
// It is not safe for concurrent use, callers serialize calls.
type Engine struct {
	addr   meta.Address
	state  *state.State
	clock  Clock
	tokens TokenLedger
	acl    AccessControl

	params *paramsService
	pools  *pool.Registry
	stakes *ledger.Service

	feed    event.Feed
	scope   event.SubscriptionScope
	pending []*Event
}

// New create a new instance.
func New(addr meta.Address, state *state.State, clock Clock, tokens TokenLedger, acl AccessControl) *Engine {
	sctx := solidity.NewContext("stake", addr, state)
	return &Engine{
		addr:   addr,
		state:  state,
		clock:  clock,
		tokens: tokens,
		acl:    acl,
		params: newParamsService(sctx),
		pools:  pool.New(sctx),
		stakes: ledger.New(sctx),
	}
}

// Address returns the storage address of the engine.
func (e *Engine) Address() meta.Address {
	return e.addr
}

// SubscribeEvents delivers every event of successful calls to ch.
func (e *Engine) SubscribeEvents(ch chan<- *Event) event.Subscription {
	return e.scope.Track(e.feed.Subscribe(ch))
}

// Close ends all subscriptions.
func (e *Engine) Close() {
	e.scope.Close()
}

// call runs fn at the current block inside a state checkpoint. When fn fails
// the state is reverted and its events are dropped.
func (e *Engine) call(op string, ctx []any, fn func(block uint32) error) error {
	start := time.Now()
	block := e.clock.BlockNumber()
	logger.Debug(op, append(ctx, "block", block)...)

	rev := e.state.NewCheckpoint()
	e.pending = e.pending[:0]
	err := fn(block)

	status := "ok"
	if err != nil {
		e.state.RevertTo(rev)
		e.pending = e.pending[:0]
		status = "error"
		if reverts.IsRevertErr(err) {
			status = "revert"
		}
		logger.Info(op+" failed", append(ctx, "block", block, "error", err)...)
	} else {
		logger.Info(op+" done", append(ctx, "block", block)...)
	}
	metricCalls().AddWithLabel(1, map[string]string{"op": op, "status": status})
	metricCallDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": op})
	if err != nil {
		return err
	}

	events := e.pending
	e.pending = nil
	for _, ev := range events {
		e.feed.Send(ev)
	}
	return nil
}

func (e *Engine) emit(ev *Event) {
	e.pending = append(e.pending, ev)
}

func (e *Engine) authorize(caller meta.Address) error {
	ok, err := e.acl.IsAuthorized(caller, meta.AdminRole)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrUnauthorized.Withf("caller %v", caller)
	}
	return nil
}

// admin loads the params after checking caller.
func (e *Engine) admin(caller meta.Address) (*Params, error) {
	if err := e.authorize(caller); err != nil {
		return nil, err
	}
	return e.params.Get()
}

func (e *Engine) emission() (*pool.Emission, error) {
	p, err := e.params.Get()
	if err != nil {
		return nil, err
	}
	return p.Emission(), nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.ErrInvalidParams.Withf("amount %v", amount)
	}
	return nil
}

func (e *Engine) pay(asset, to meta.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := e.tokens.TransferOut(asset, to, amount); err != nil {
		return reverts.ErrTokenTransferFailed.Wrap(err)
	}
	return nil
}

//
// Administration
//

// Initialize sets the reward token and emission schedule once.
func (e *Engine) Initialize(caller, rewardToken meta.Address, startBlock, endBlock uint32, rewardPerBlock *big.Int) error {
	return e.call("initialize", []any{"caller", caller, "rewardToken", rewardToken}, func(block uint32) error {
		p, err := e.admin(caller)
		if err != nil {
			return err
		}
		if p.Initialized {
			return reverts.ErrAlreadyInitialized
		}
		if startBlock > endBlock {
			return reverts.ErrInvalidParams.Withf("start block %d after end block %d", startBlock, endBlock)
		}
		if rewardPerBlock == nil || rewardPerBlock.Sign() <= 0 {
			return reverts.ErrInvalidParams.Withf("reward per block %v", rewardPerBlock)
		}
		p = &Params{
			Initialized:    true,
			RewardToken:    rewardToken,
			StartBlock:     startBlock,
			EndBlock:       endBlock,
			RewardPerBlock: new(big.Int).Set(rewardPerBlock),
		}
		if err := e.params.Set(p); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventRewardTokenChanged, Block: block, Asset: rewardToken})
		e.emit(e.emissionEvent(block, p))
		return nil
	})
}

func (e *Engine) emissionEvent(block uint32, p *Params) *Event {
	return &Event{
		Kind:       EventEmissionUpdated,
		Block:      block,
		Amount:     p.rewardPerBlock(),
		StartBlock: p.StartBlock,
		EndBlock:   p.EndBlock,
	}
}

// AddPool appends a pool accruing from the current block and returns its id.
// Every pool is settled first so the new weight only applies from now on.
func (e *Engine) AddPool(
	caller meta.Address,
	asset meta.Address,
	weight uint64,
	minDeposit *big.Int,
	lockedBlocks uint32,
	acceptsDeposits bool,
) (uint64, error) {
	var id uint64
	err := e.call("addPool", []any{"caller", caller, "asset", asset, "weight", weight}, func(block uint32) error {
		p, err := e.admin(caller)
		if err != nil {
			return err
		}
		if err := e.pools.SettleAll(block, p.Emission()); err != nil {
			return err
		}
		if id, err = e.pools.Add(asset, weight, minDeposit, lockedBlocks, acceptsDeposits, block); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventPoolAdded, Block: block, PoolID: id, Asset: asset, Weight: weight})
		return nil
	})
	if err != nil {
		return 0, err
	}
	metricPools().Set(int64(id + 1))
	return id, nil
}

// SetRewardToken changes the asset paid by Claim.
func (e *Engine) SetRewardToken(caller, asset meta.Address) error {
	return e.call("setRewardToken", []any{"caller", caller, "asset", asset}, func(block uint32) error {
		p, err := e.admin(caller)
		if err != nil {
			return err
		}
		p.RewardToken = asset
		if err := e.params.Set(p); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventRewardTokenChanged, Block: block, Asset: asset})
		return nil
	})
}

// SetMetaNode is SetRewardToken.
func (e *Engine) SetMetaNode(caller, asset meta.Address) error {
	return e.SetRewardToken(caller, asset)
}

// SetPoolWeight changes the share of emission of pool id.
func (e *Engine) SetPoolWeight(caller meta.Address, id uint64, weight uint64) error {
	return e.call("setPoolWeight", []any{"caller", caller, "pool", id, "weight", weight}, func(block uint32) error {
		p, err := e.admin(caller)
		if err != nil {
			return err
		}
		if _, err := e.pools.Get(id); err != nil {
			return err
		}
		if err := e.pools.SettleAll(block, p.Emission()); err != nil {
			return err
		}
		if err := e.pools.SetWeight(id, weight); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventPoolWeightUpdated, Block: block, PoolID: id, Weight: weight})
		return nil
	})
}

// UpdatePool changes the deposit floor and unstake lock of pool id.
func (e *Engine) UpdatePool(caller meta.Address, id uint64, minDeposit *big.Int, lockedBlocks uint32) error {
	return e.call("updatePool", []any{"caller", caller, "pool", id}, func(block uint32) error {
		if err := e.authorize(caller); err != nil {
			return err
		}
		if err := e.pools.Update(id, minDeposit, lockedBlocks); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventPoolUpdated, Block: block, PoolID: id, Amount: new(big.Int).Set(minDeposit), LockedBlocks: lockedBlocks})
		return nil
	})
}

// SetAcceptsDeposits opens or closes pool id for deposits.
func (e *Engine) SetAcceptsDeposits(caller meta.Address, id uint64, accepts bool) error {
	return e.call("setAcceptsDeposits", []any{"caller", caller, "pool", id, "accepts", accepts}, func(block uint32) error {
		if err := e.authorize(caller); err != nil {
			return err
		}
		if err := e.pools.SetAcceptsDeposits(id, accepts); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventDepositsSwitched, Block: block, PoolID: id, On: accepts})
		return nil
	})
}

// setEmission settles every pool under the old schedule, then applies update.
func (e *Engine) setEmission(op string, caller meta.Address, value any, update func(p *Params) error) error {
	return e.call(op, []any{"caller", caller, "value", value}, func(block uint32) error {
		p, err := e.admin(caller)
		if err != nil {
			return err
		}
		if !p.Initialized {
			return reverts.ErrNotInitialized
		}
		if err := e.pools.SettleAll(block, p.Emission()); err != nil {
			return err
		}
		if err := update(p); err != nil {
			return err
		}
		if err := e.params.Set(p); err != nil {
			return err
		}
		e.emit(e.emissionEvent(block, p))
		return nil
	})
}

// SetStartBlock moves the first block of emission.
func (e *Engine) SetStartBlock(caller meta.Address, startBlock uint32) error {
	return e.setEmission("setStartBlock", caller, startBlock, func(p *Params) error {
		if startBlock > p.EndBlock {
			return reverts.ErrInvalidParams.Withf("start block %d after end block %d", startBlock, p.EndBlock)
		}
		p.StartBlock = startBlock
		return nil
	})
}

// SetEndBlock moves the last block of emission.
func (e *Engine) SetEndBlock(caller meta.Address, endBlock uint32) error {
	return e.setEmission("setEndBlock", caller, endBlock, func(p *Params) error {
		if endBlock < p.StartBlock {
			return reverts.ErrInvalidParams.Withf("end block %d before start block %d", endBlock, p.StartBlock)
		}
		p.EndBlock = endBlock
		return nil
	})
}

// SetRewardPerBlock changes the emission rate.
func (e *Engine) SetRewardPerBlock(caller meta.Address, rewardPerBlock *big.Int) error {
	return e.setEmission("setRewardPerBlock", caller, rewardPerBlock, func(p *Params) error {
		if rewardPerBlock == nil || rewardPerBlock.Sign() <= 0 {
			return reverts.ErrInvalidParams.Withf("reward per block %v", rewardPerBlock)
		}
		p.RewardPerBlock = new(big.Int).Set(rewardPerBlock)
		return nil
	})
}

func (e *Engine) PauseWithdraw(caller meta.Address) error   { return e.setWithdrawPaused(caller, true) }
func (e *Engine) UnpauseWithdraw(caller meta.Address) error { return e.setWithdrawPaused(caller, false) }
func (e *Engine) PauseClaim(caller meta.Address) error      { return e.setClaimPaused(caller, true) }
func (e *Engine) UnpauseClaim(caller meta.Address) error    { return e.setClaimPaused(caller, false) }

func (e *Engine) setWithdrawPaused(caller meta.Address, paused bool) error {
	return e.call("setWithdrawPaused", []any{"caller", caller, "paused", paused}, func(block uint32) error {
		p, err := e.admin(caller)
		if err != nil {
			return err
		}
		if p.WithdrawPaused == paused {
			return reverts.ErrInvalidParams.Withf("withdraw paused already %v", paused)
		}
		p.WithdrawPaused = paused
		if err := e.params.Set(p); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventWithdrawPauseSwitched, Block: block, On: paused})
		return nil
	})
}

func (e *Engine) setClaimPaused(caller meta.Address, paused bool) error {
	return e.call("setClaimPaused", []any{"caller", caller, "paused", paused}, func(block uint32) error {
		p, err := e.admin(caller)
		if err != nil {
			return err
		}
		if p.ClaimPaused == paused {
			return reverts.ErrInvalidParams.Withf("claim paused already %v", paused)
		}
		p.ClaimPaused = paused
		if err := e.params.Set(p); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventClaimPauseSwitched, Block: block, On: paused})
		return nil
	})
}

// SettleAll brings the accrual of every pool up to the current block.
func (e *Engine) SettleAll() error {
	return e.call("settleAll", nil, func(block uint32) error {
		emission, err := e.emission()
		if err != nil {
			return err
		}
		return e.pools.SettleAll(block, emission)
	})
}

//
// Staking
//

// Deposit stakes amount of the pool asset from account.
func (e *Engine) Deposit(account meta.Address, id uint64, amount *big.Int) error {
	return e.call("deposit", []any{"account", account, "pool", id, "amount", amount}, func(block uint32) error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		p, err := e.pools.Get(id)
		if err != nil {
			return err
		}
		if !p.AcceptsDeposits() {
			return reverts.ErrPoolClosed.Withf("pool %d", id)
		}
		if amount.Cmp(p.MinDepositAmount()) < 0 {
			return reverts.ErrBelowMinimum.Withf("minimum %v, got %v", p.MinDepositAmount(), amount)
		}

		p, rec, err := e.settled(id, account, block)
		if err != nil {
			return err
		}
		if err := e.tokens.TransferIn(p.StakeAsset(), account, amount); err != nil {
			return reverts.ErrTokenTransferFailed.Wrap(err)
		}
		rec.Deposit(amount, p.AccRewardPerShare())
		if err := e.pools.AddStake(p, amount); err != nil {
			return err
		}
		if err := e.stakes.Save(id, account, rec); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventDeposited, Block: block, PoolID: id, Account: account, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// Unstake moves amount out of the stake of account into a request that
// unlocks after the pool lock. A zero amount only buffers the reward.
func (e *Engine) Unstake(account meta.Address, id uint64, amount *big.Int) error {
	return e.call("unstake", []any{"account", account, "pool", id, "amount", amount}, func(block uint32) error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		p, rec, err := e.settled(id, account, block)
		if err != nil {
			return err
		}
		if err := rec.Unstake(amount, p.AccRewardPerShare(), p.UnlockBlock(block)); err != nil {
			return err
		}
		if err := e.pools.SubStake(p, amount); err != nil {
			return err
		}
		if err := e.stakes.Save(id, account, rec); err != nil {
			return err
		}
		if amount.Sign() > 0 {
			e.emit(&Event{Kind: EventUnstakeRequested, Block: block, PoolID: id, Account: account, Amount: new(big.Int).Set(amount)})
		}
		return nil
	})
}

// Withdraw pays account every matured unstake request of pool id and returns the sum.
func (e *Engine) Withdraw(account meta.Address, id uint64) (*big.Int, error) {
	var amount *big.Int
	err := e.call("withdraw", []any{"account", account, "pool", id}, func(block uint32) error {
		params, err := e.params.Get()
		if err != nil {
			return err
		}
		if params.WithdrawPaused {
			return reverts.ErrWithdrawPaused
		}
		p, err := e.pools.Get(id)
		if err != nil {
			return err
		}
		rec, err := e.stakes.Get(id, account)
		if err != nil {
			return err
		}
		amount = rec.Withdraw(block)
		if amount.Sign() == 0 {
			return nil
		}
		if err := e.stakes.Save(id, account, rec); err != nil {
			return err
		}
		if err := e.pay(p.StakeAsset(), account, amount); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventWithdrawn, Block: block, PoolID: id, Account: account, Amount: new(big.Int).Set(amount)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// Claim pays account its reward in pool id and returns the amount.
func (e *Engine) Claim(account meta.Address, id uint64) (*big.Int, error) {
	var amount *big.Int
	err := e.call("claim", []any{"account", account, "pool", id}, func(block uint32) error {
		params, err := e.params.Get()
		if err != nil {
			return err
		}
		if params.ClaimPaused {
			return reverts.ErrClaimPaused
		}
		p, rec, err := e.settled(id, account, block)
		if err != nil {
			return err
		}
		amount = rec.Claim(p.AccRewardPerShare())
		if err := e.stakes.Save(id, account, rec); err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return nil
		}
		if err := e.pay(params.RewardToken, account, amount); err != nil {
			return err
		}
		e.emit(&Event{Kind: EventClaimed, Block: block, PoolID: id, Account: account, Asset: params.RewardToken, Amount: new(big.Int).Set(amount)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// settled settles pool id and returns it with the record of account.
func (e *Engine) settled(id uint64, account meta.Address, block uint32) (*pool.Pool, *ledger.Record, error) {
	emission, err := e.emission()
	if err != nil {
		return nil, nil, err
	}
	p, err := e.pools.Settle(id, block, emission)
	if err != nil {
		return nil, nil, err
	}
	rec, err := e.stakes.Get(id, account)
	if err != nil {
		return nil, nil, err
	}
	return p, rec, nil
}

//
// Getters - no state change
//

// Params returns the engine settings.
func (e *Engine) Params() (*Params, error) {
	return e.params.Get()
}

// PoolLength returns the number of pools.
func (e *Engine) PoolLength() (uint64, error) {
	return e.pools.Count()
}

// Pool returns pool id.
func (e *Engine) Pool(id uint64) (*pool.Pool, error) {
	return e.pools.Get(id)
}

// TotalWeight returns the sum of pool weights.
func (e *Engine) TotalWeight() (uint64, error) {
	return e.pools.TotalWeight()
}

// StakingBalance returns the active stake of account in pool id.
func (e *Engine) StakingBalance(id uint64, account meta.Address) (*big.Int, error) {
	if _, err := e.pools.Get(id); err != nil {
		return nil, err
	}
	rec, err := e.stakes.Get(id, account)
	if err != nil {
		return nil, err
	}
	return rec.Staked(), nil
}

// Stake returns the full record of account in pool id.
func (e *Engine) Stake(id uint64, account meta.Address) (*ledger.Record, error) {
	if _, err := e.pools.Get(id); err != nil {
		return nil, err
	}
	return e.stakes.Get(id, account)
}

// PendingReward returns what Claim would pay account at the current block.
func (e *Engine) PendingReward(id uint64, account meta.Address) (*big.Int, error) {
	emission, err := e.emission()
	if err != nil {
		return nil, err
	}
	_, acc, err := e.pools.Pending(id, e.clock.BlockNumber(), emission)
	if err != nil {
		return nil, err
	}
	rec, err := e.stakes.Get(id, account)
	if err != nil {
		return nil, err
	}
	earned := rec.Earned(acc)
	return earned.Add(earned, rec.PendingReward()), nil
}

// WithdrawAmount returns the queued unstake amount of account in pool id and
// the part of it matured at the current block.
func (e *Engine) WithdrawAmount(id uint64, account meta.Address) (requested, withdrawable *big.Int, err error) {
	if _, err := e.pools.Get(id); err != nil {
		return nil, nil, err
	}
	rec, err := e.stakes.Get(id, account)
	if err != nil {
		return nil, nil, err
	}
	return rec.Requested(), rec.Withdrawable(e.clock.BlockNumber()), nil
}
