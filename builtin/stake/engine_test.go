// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metanode/stake/builtin/stake/reverts"
	"github.com/metanode/stake/meta"
)

func TestInitialize(t *testing.T) {
	te := newTestEngine(t)

	assert.ErrorIs(t, te.Initialize(alice, rewardToken, 1, 10, rewardPerBlock), reverts.ErrUnauthorized)
	assert.ErrorIs(t, te.Initialize(admin, rewardToken, 11, 10, rewardPerBlock), reverts.ErrInvalidParams)
	assert.ErrorIs(t, te.Initialize(admin, rewardToken, 1, 10, new(big.Int)), reverts.ErrInvalidParams)
	assert.ErrorIs(t, te.SetRewardPerBlock(admin, rewardPerBlock), reverts.ErrNotInitialized)

	events := te.subscribe()
	require.NoError(t, te.Initialize(admin, rewardToken, 1, 10, rewardPerBlock))
	assert.ErrorIs(t, te.Initialize(admin, rewardToken, 1, 10, rewardPerBlock), reverts.ErrAlreadyInitialized)

	params, err := te.Params()
	require.NoError(t, err)
	assert.True(t, params.Initialized)
	assert.Equal(t, rewardToken, params.RewardToken)
	assert.Equal(t, uint32(1), params.StartBlock)
	assert.Equal(t, uint32(10), params.EndBlock)
	assert.Equal(t, rewardPerBlock, params.RewardPerBlock)

	got := drain(events)
	require.Len(t, got, 2)
	assert.Equal(t, EventRewardTokenChanged, got[0].Kind)
	assert.Equal(t, EventEmissionUpdated, got[1].Kind)
	assert.Equal(t, rewardPerBlock, got[1].Amount)
}

// single staker takes the pool share of the emission
func TestScenarioA(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(1)
	te.fund(stakeToken, alice, wei(1000))

	id := te.addPool(stakeToken, 100, wei(1), 0)
	te.addPool(stakeToken, 300, wei(1), 0)
	require.NoError(t, te.Deposit(alice, id, wei(100)))

	te.mine(10)
	pending, err := te.PendingReward(id, alice)
	require.NoError(t, err)
	// 10 blocks * 1e18 * 100 / 400
	expected := new(big.Int).Div(wei(25), big.NewInt(10))
	assert.Equal(t, expected, pending)

	claimed, err := te.Claim(alice, id)
	require.NoError(t, err)
	assert.Equal(t, expected, claimed)
	assert.Equal(t, expected, te.balance(rewardToken, alice))

	staked, err := te.StakingBalance(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(100), staked)

	// nothing more accrued at the same block
	claimed, err = te.Claim(alice, id)
	require.NoError(t, err)
	assert.Equal(t, 0, claimed.Sign())
}

// unstaked funds stay locked until the unlock block
func TestScenarioB(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(1)
	te.fund(stakeToken, alice, wei(100))
	id := te.addPool(stakeToken, 100, new(big.Int), 5)

	require.NoError(t, te.Deposit(alice, id, wei(100)))
	require.NoError(t, te.Unstake(alice, id, wei(50)))
	staked, err := te.StakingBalance(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(50), staked)

	events := te.subscribe()
	for range 4 {
		te.mine(1)
		paid, err := te.Withdraw(alice, id)
		require.NoError(t, err)
		assert.Equal(t, 0, paid.Sign())
	}
	assert.Equal(t, 0, te.balance(stakeToken, alice).Sign())
	assert.Empty(t, drain(events))

	te.mine(1)
	requested, withdrawable, err := te.WithdrawAmount(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(50), requested)
	assert.Equal(t, wei(50), withdrawable)

	paid, err := te.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, wei(50), paid)
	assert.Equal(t, wei(50), te.balance(stakeToken, alice))
	assert.Equal(t, []*Event{{
		Kind:    EventWithdrawn,
		Block:   te.block,
		PoolID:  id,
		Account: alice,
		Amount:  wei(50),
	}}, drain(events))

	// paid once
	paid, err = te.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, 0, paid.Sign())
}

func TestScenarioC(t *testing.T) {
	te := newInitializedEngine(t)

	_, err := te.AddPool(alice, meta.NativeAsset, 100, new(big.Int), 0, true)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	n, err := te.PoolLength()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	for _, call := range []func() error{
		func() error { return te.SetRewardToken(alice, stakeToken) },
		func() error { return te.SetMetaNode(alice, stakeToken) },
		func() error { return te.SetPoolWeight(alice, 0, 1) },
		func() error { return te.UpdatePool(alice, 0, new(big.Int), 1) },
		func() error { return te.SetAcceptsDeposits(alice, 0, false) },
		func() error { return te.SetStartBlock(alice, 0) },
		func() error { return te.SetEndBlock(alice, 100) },
		func() error { return te.SetRewardPerBlock(alice, big.NewInt(1)) },
		func() error { return te.PauseWithdraw(alice) },
		func() error { return te.PauseClaim(alice) },
	} {
		assert.ErrorIs(t, call(), reverts.ErrUnauthorized)
	}
}

func TestScenarioD(t *testing.T) {
	te := newInitializedEngine(t)
	te.fund(stakeToken, alice, wei(1000))
	id := te.addPool(stakeToken, 100, wei(100), 0)

	err := te.Deposit(alice, id, wei(99))
	assert.ErrorIs(t, err, reverts.ErrBelowMinimum)
	assert.Equal(t, wei(1000), te.balance(stakeToken, alice))
	assert.Equal(t, 0, te.balance(stakeToken, engineAddr).Sign())

	require.NoError(t, te.Deposit(alice, id, wei(100)))
	assert.Equal(t, wei(100), te.balance(stakeToken, engineAddr))
}

// the flow of the deployment test harness
func TestDeployedFlow(t *testing.T) {
	te := newTestEngine(t)
	user1 := meta.BytesToAddress([]byte("user1"))
	te.fund(stakeToken, user1, wei(1000))

	te.mine(1)
	require.NoError(t, te.Initialize(admin, rewardToken, 1, math.MaxUint32, rewardPerBlock))
	native := te.addPool(meta.NativeAsset, 100, big.NewInt(100), 20)
	erc20 := te.addPool(stakeToken, 100, big.NewInt(100), 5)
	assert.Equal(t, uint64(0), native)
	assert.Equal(t, uint64(1), erc20)

	require.NoError(t, te.Deposit(user1, erc20, wei(100)))
	require.NoError(t, te.Unstake(user1, erc20, wei(50)))

	events := te.subscribe()
	te.mine(6)
	paid, err := te.Withdraw(user1, erc20)
	require.NoError(t, err)
	assert.Equal(t, wei(50), paid)
	got := drain(events)
	require.Len(t, got, 1)
	assert.Equal(t, EventWithdrawn, got[0].Kind)
	assert.Equal(t, te.block, got[0].Block)
	assert.Equal(t, wei(950), te.balance(stakeToken, user1))

	claimed, err := te.Claim(user1, erc20)
	require.NoError(t, err)
	assert.Positive(t, claimed.Sign())
	assert.Equal(t, claimed, te.balance(rewardToken, user1))
}

func TestDepositRules(t *testing.T) {
	te := newInitializedEngine(t)
	te.fund(stakeToken, alice, wei(10))
	id := te.addPool(stakeToken, 1, new(big.Int), 0)

	assert.ErrorIs(t, te.Deposit(alice, 7, wei(1)), reverts.ErrPoolNotFound)
	assert.ErrorIs(t, te.Deposit(alice, id, big.NewInt(-1)), reverts.ErrInvalidParams)

	require.NoError(t, te.SetAcceptsDeposits(admin, id, false))
	assert.ErrorIs(t, te.Deposit(alice, id, wei(1)), reverts.ErrPoolClosed)
	require.NoError(t, te.SetAcceptsDeposits(admin, id, true))
	require.NoError(t, te.Deposit(alice, id, wei(1)))

	// a closed pool still lets the stake out
	require.NoError(t, te.SetAcceptsDeposits(admin, id, false))
	require.NoError(t, te.Unstake(alice, id, wei(1)))
	paid, err := te.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, wei(1), paid)

	assert.ErrorIs(t, te.Unstake(alice, id, wei(1)), reverts.ErrInsufficientStake)
}

func TestFailedCallHasNoEffect(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(1)
	te.fund(stakeToken, alice, wei(100))
	id := te.addPool(stakeToken, 1, new(big.Int), 0)
	require.NoError(t, te.Deposit(alice, id, wei(100)))
	events := te.subscribe()

	// bob holds nothing, the settle done before the transfer is rolled back
	te.mine(5)
	err := te.Deposit(bob, id, wei(1))
	assert.ErrorIs(t, err, reverts.ErrTokenTransferFailed)
	p, err := te.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p.LastAccrualBlock())
	assert.Equal(t, 0, p.AccRewardPerShare().Sign())
	assert.Equal(t, wei(100), p.TotalStaked())

	// custody cannot pay the reward, the buffer is kept
	require.NoError(t, te.token.Transfer(rewardToken, engineAddr, bob, te.balance(rewardToken, engineAddr)))
	_, err = te.Claim(alice, id)
	assert.ErrorIs(t, err, reverts.ErrTokenTransferFailed)
	pending, err := te.PendingReward(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(5), pending)
	rec, err := te.Stake(id, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.PendingReward().Sign())
	assert.Equal(t, 0, rec.RewardDebt().Sign())

	assert.Empty(t, drain(events))
}

func TestPauses(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(1)
	te.fund(stakeToken, alice, wei(10))
	id := te.addPool(stakeToken, 1, new(big.Int), 0)
	require.NoError(t, te.Deposit(alice, id, wei(10)))
	require.NoError(t, te.Unstake(alice, id, wei(5)))
	te.mine(1)

	require.NoError(t, te.PauseWithdraw(admin))
	assert.ErrorIs(t, te.PauseWithdraw(admin), reverts.ErrInvalidParams)
	_, err := te.Withdraw(alice, id)
	assert.ErrorIs(t, err, reverts.ErrWithdrawPaused)
	require.NoError(t, te.UnpauseWithdraw(admin))
	assert.ErrorIs(t, te.UnpauseWithdraw(admin), reverts.ErrInvalidParams)
	paid, err := te.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, wei(5), paid)

	require.NoError(t, te.PauseClaim(admin))
	_, err = te.Claim(alice, id)
	assert.ErrorIs(t, err, reverts.ErrClaimPaused)
	require.NoError(t, te.UnpauseClaim(admin))
	claimed, err := te.Claim(alice, id)
	require.NoError(t, err)
	assert.Equal(t, wei(1), claimed)

	params, err := te.Params()
	require.NoError(t, err)
	assert.False(t, params.WithdrawPaused)
	assert.False(t, params.ClaimPaused)
}

func TestZeroAmountCalls(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(1)
	te.fund(stakeToken, alice, wei(10))
	id := te.addPool(stakeToken, 1, new(big.Int), 3)
	require.NoError(t, te.Deposit(alice, id, wei(10)))
	events := te.subscribe()

	te.mine(2)
	require.NoError(t, te.Unstake(alice, id, new(big.Int)))
	requested, _, err := te.WithdrawAmount(id, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, requested.Sign())
	rec, err := te.Stake(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(2), rec.PendingReward())

	paid, err := te.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, 0, paid.Sign())
	assert.Empty(t, drain(events))

	claimed, err := te.Claim(bob, id)
	require.NoError(t, err)
	assert.Equal(t, 0, claimed.Sign())
}

// equal stakes over equal blocks earn equally, whatever the call order
func TestRewardFairness(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(1)
	te.fund(stakeToken, alice, wei(30))
	te.fund(stakeToken, bob, wei(30))
	id := te.addPool(stakeToken, 1, new(big.Int), 0)

	require.NoError(t, te.Deposit(alice, id, wei(10)))
	require.NoError(t, te.Deposit(bob, id, wei(10)))
	te.mine(3)
	require.NoError(t, te.Deposit(bob, id, wei(10)))
	require.NoError(t, te.Deposit(alice, id, wei(10)))
	te.mine(7)

	b, err := te.Claim(bob, id)
	require.NoError(t, err)
	a, err := te.Claim(alice, id)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, wei(5), a)
}

// a weight change applies from the block it is made
func TestPoolWeightNotRetroactive(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(1)
	te.fund(stakeToken, alice, wei(100))
	id := te.addPool(stakeToken, 100, new(big.Int), 0)
	other := te.addPool(stakeToken, 100, new(big.Int), 0)
	require.NoError(t, te.Deposit(alice, id, wei(100)))

	te.mine(10)
	events := te.subscribe()
	require.NoError(t, te.SetPoolWeight(admin, other, 300))
	assert.ErrorIs(t, te.SetPoolWeight(admin, 9, 300), reverts.ErrPoolNotFound)
	te.mine(10)

	total, err := te.TotalWeight()
	require.NoError(t, err)
	assert.Equal(t, uint64(400), total)

	// 10 blocks at 1/2 then 10 blocks at 1/4
	pending, err := te.PendingReward(id, alice)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Div(wei(75), big.NewInt(10)), pending)

	got := drain(events)
	require.Len(t, got, 1)
	assert.Equal(t, &Event{Kind: EventPoolWeightUpdated, Block: 11, PoolID: other, Weight: 300}, got[0])
}

func TestEmissionWindow(t *testing.T) {
	te := newTestEngine(t)
	require.NoError(t, te.Initialize(admin, rewardToken, 5, 15, rewardPerBlock))
	te.fund(stakeToken, alice, wei(1))
	id := te.addPool(stakeToken, 1, new(big.Int), 0)
	require.NoError(t, te.Deposit(alice, id, wei(1)))

	te.mine(30)
	pending, err := te.PendingReward(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(10), pending)

	// extending the end resumes emission from the current block only
	require.NoError(t, te.SetEndBlock(admin, 40))
	te.mine(5)
	pending, err = te.PendingReward(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(15), pending)

	require.NoError(t, te.SetRewardPerBlock(admin, wei(2)))
	te.mine(5)
	pending, err = te.PendingReward(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(25), pending)

	assert.ErrorIs(t, te.SetStartBlock(admin, 41), reverts.ErrInvalidParams)
	assert.ErrorIs(t, te.SetEndBlock(admin, 4), reverts.ErrInvalidParams)
	assert.ErrorIs(t, te.SetRewardPerBlock(admin, new(big.Int)), reverts.ErrInvalidParams)
}

func TestUpdatePool(t *testing.T) {
	te := newInitializedEngine(t)
	te.fund(stakeToken, alice, wei(10))
	id := te.addPool(stakeToken, 1, new(big.Int), 10)
	require.NoError(t, te.Deposit(alice, id, wei(2)))
	require.NoError(t, te.Unstake(alice, id, wei(1)))

	require.NoError(t, te.UpdatePool(admin, id, wei(5), 1))
	p, err := te.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, wei(5), p.MinDepositAmount())
	assert.Equal(t, uint32(1), p.UnstakeLockedBlocks())
	assert.ErrorIs(t, te.Deposit(alice, id, wei(4)), reverts.ErrBelowMinimum)

	// queued requests keep their unlock block
	require.NoError(t, te.Unstake(alice, id, wei(1)))
	te.mine(1)
	paid, err := te.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, wei(1), paid)
	requested, _, err := te.WithdrawAmount(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(1), requested)
}

func TestLongLockNeverMaturesEarly(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(9)
	te.fund(stakeToken, alice, wei(100))
	id := te.addPool(stakeToken, 1, new(big.Int), math.MaxUint32)

	require.NoError(t, te.Deposit(alice, id, wei(100)))
	require.NoError(t, te.Unstake(alice, id, wei(50)))

	requested, withdrawable, err := te.WithdrawAmount(id, alice)
	require.NoError(t, err)
	assert.Equal(t, wei(50), requested)
	assert.Equal(t, 0, withdrawable.Sign())

	te.mine(1000)
	paid, err := te.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, 0, paid.Sign())
	assert.Equal(t, 0, te.balance(stakeToken, alice).Sign())
}

func TestSettleAllIdempotent(t *testing.T) {
	te := newInitializedEngine(t)
	te.mine(1)
	te.fund(stakeToken, alice, wei(3))
	id := te.addPool(stakeToken, 1, new(big.Int), 0)
	require.NoError(t, te.Deposit(alice, id, wei(3)))

	te.mine(4)
	require.NoError(t, te.SettleAll())
	first, err := te.Pool(id)
	require.NoError(t, err)
	require.NoError(t, te.SettleAll())
	second, err := te.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, uint32(5), second.LastAccrualBlock())
}

func TestEventKindString(t *testing.T) {
	for k := EventPoolAdded; k <= EventClaimPauseSwitched; k++ {
		parsed, ok := ParseEventKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	assert.Equal(t, "Unknown", EventKind(0).String())
}
