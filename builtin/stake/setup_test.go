// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metanode/stake/builtin/authority"
	"github.com/metanode/stake/builtin/token"
	"github.com/metanode/stake/lvldb"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

var (
	engineAddr     = meta.BytesToAddress([]byte("stake"))
	tokenAddr      = meta.BytesToAddress([]byte("token"))
	authorityAddr  = meta.BytesToAddress([]byte("authority"))
	rewardToken    = meta.BytesToAddress([]byte("metanode"))
	stakeToken     = meta.BytesToAddress([]byte("erc20"))
	admin          = meta.BytesToAddress([]byte("admin"))
	alice          = meta.BytesToAddress([]byte("alice"))
	bob            = meta.BytesToAddress([]byte("bob"))
	rewardPerBlock = meta.ToWei(1)
)

type testEngine struct {
	*Engine
	t     *testing.T
	state *state.State
	token *token.Token
	block uint32
}

// newTestEngine returns an engine at block 0 with admin holding the admin role
// and the custody funded with reward tokens.
func newTestEngine(t *testing.T) *testEngine {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	tok := token.New(tokenAddr, st)
	aut := authority.New(authorityAddr, st)
	_, err = aut.Grant(meta.AdminRole, admin)
	require.NoError(t, err)
	require.NoError(t, tok.Mint(rewardToken, engineAddr, meta.ToWei(1_000_000)))

	te := &testEngine{t: t, state: st, token: tok}
	te.Engine = New(engineAddr, st, ClockFunc(func() uint32 { return te.block }), tok.Custody(engineAddr), aut)
	t.Cleanup(te.Close)
	return te
}

// initialized also runs Initialize with emission from block 1 on.
func newInitializedEngine(t *testing.T) *testEngine {
	te := newTestEngine(t)
	require.NoError(t, te.Initialize(admin, rewardToken, 1, math.MaxUint32, rewardPerBlock))
	return te
}

func (te *testEngine) mine(n uint32) {
	te.block += n
}

func (te *testEngine) fund(asset, account meta.Address, amount *big.Int) {
	require.NoError(te.t, te.token.Mint(asset, account, amount))
}

func (te *testEngine) balance(asset, account meta.Address) *big.Int {
	bal, err := te.token.BalanceOf(asset, account)
	require.NoError(te.t, err)
	return bal
}

func (te *testEngine) addPool(asset meta.Address, weight uint64, minDeposit *big.Int, lockedBlocks uint32) uint64 {
	id, err := te.AddPool(admin, asset, weight, minDeposit, lockedBlocks, true)
	require.NoError(te.t, err)
	return id
}

func (te *testEngine) subscribe() chan *Event {
	ch := make(chan *Event, 64)
	te.SubscribeEvents(ch)
	return ch
}

// drain returns the events delivered so far.
func drain(ch chan *Event) []*Event {
	var events []*Event
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func wei(tokens uint64) *big.Int {
	return meta.ToWei(tokens)
}
