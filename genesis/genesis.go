// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis bootstraps the staking state: roles, token balances,
// engine parameters and the initial pools.
package genesis

import (
	"github.com/metanode/stake/builtin"
	"github.com/metanode/stake/builtin/stake"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

// Genesis is a buildable genesis state.
type Genesis struct {
	builder *Builder
	config  *Config
}

// New returns the genesis described by cfg.
func New(cfg *Config) *Genesis {
	builder := new(Builder).
		State(func(state *state.State) error {
			aut := builtin.Authority.WithState(state)
			for _, admin := range cfg.Admins {
				if _, err := aut.Grant(meta.AdminRole, admin); err != nil {
					return err
				}
				if _, err := aut.Grant(meta.UpgradeRole, admin); err != nil {
					return err
				}
			}

			tok := builtin.Token.WithState(state)
			for _, b := range cfg.Balances {
				if err := tok.Mint(b.Asset, b.Account, b.Amount.Int()); err != nil {
					return err
				}
			}
			if fund := cfg.Engine.RewardFund.Int(); fund.Sign() > 0 {
				return tok.Mint(cfg.Engine.RewardToken, builtin.Stake.Address, fund)
			}
			return nil
		})

	caller := cfg.Admins[0]
	builder.Call(func(engine *stake.Engine) error {
		return engine.Initialize(
			caller,
			cfg.Engine.RewardToken,
			cfg.Engine.StartBlock,
			cfg.Engine.endBlock(),
			cfg.Engine.RewardPerBlock.Int(),
		)
	})
	for _, p := range cfg.Pools {
		builder.Call(func(engine *stake.Engine) error {
			_, err := engine.AddPool(caller, p.Asset, p.Weight, p.MinDeposit.Int(), p.LockedBlocks, p.acceptsDeposits())
			return err
		})
	}
	return &Genesis{builder, cfg}
}

// Config returns the config the genesis was made of.
func (g *Genesis) Config() *Config {
	return g.config
}

// Build writes the genesis state through stater.
func (g *Genesis) Build(stater *state.Stater) (meta.Bytes32, []*stake.Event, error) {
	return g.builder.Build(stater)
}
