// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the storage contracts to their well known addresses.
package builtin

import (
	"github.com/metanode/stake/builtin/authority"
	"github.com/metanode/stake/builtin/stake"
	"github.com/metanode/stake/builtin/token"
	"github.com/metanode/stake/state"
)

// Builtin contracts binding.
var (
	Authority = &authorityContract{newContract("Authority")}
	Token     = &tokenContract{newContract("Token")}
	Stake     = &stakeContract{newContract("Stake")}
)

type (
	authorityContract struct{ *contract }
	tokenContract     struct{ *contract }
	stakeContract     struct{ *contract }
)

func (a *authorityContract) WithState(state *state.State) *authority.Authority {
	return authority.New(a.Address, state)
}

func (t *tokenContract) WithState(state *state.State) *token.Token {
	return token.New(t.Address, state)
}

// WithState returns the engine holding deposits in its own token custody and
// checking roles against the authority contract.
func (s *stakeContract) WithState(state *state.State, clock stake.Clock) *stake.Engine {
	return stake.New(
		s.Address,
		state,
		clock,
		Token.WithState(state).Custody(s.Address),
		Authority.WithState(state),
	)
}
