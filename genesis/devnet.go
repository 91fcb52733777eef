// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/metanode/stake/meta"
)

// DevAccount is a named account of the dev network.
type DevAccount struct {
	Name    string
	Address meta.Address
}

var devNames = []string{"admin", "user1", "user2", "user3"}

// DevAccounts returns the accounts funded by DevConfig.
func DevAccounts() []DevAccount {
	accs := make([]DevAccount, 0, len(devNames))
	for _, name := range devNames {
		accs = append(accs, DevAccount{name, meta.BytesToAddress([]byte(name))})
	}
	return accs
}

var (
	// DevRewardToken is the asset paid as reward on the dev network.
	DevRewardToken = meta.BytesToAddress([]byte("MetaNode"))
	// DevStakeToken is the token staked in pool 1 of the dev network.
	DevStakeToken = meta.BytesToAddress([]byte("StakeToken"))
)

// DevConfig returns a config with a native pool and a token pool, emitting one
// reward token per block from block 1.
func DevConfig() *Config {
	accs := DevAccounts()
	cfg := &Config{
		Admins: []meta.Address{accs[0].Address},
		Engine: Engine{
			RewardToken:    DevRewardToken,
			StartBlock:     1,
			RewardPerBlock: NewAmount(meta.ToWei(1)),
			RewardFund:     NewAmount(meta.ToWei(10_000_000)),
		},
		Pools: []Pool{
			{Asset: meta.NativeAsset, Weight: 100, MinDeposit: NewAmount(big.NewInt(100)), LockedBlocks: 20},
			{Asset: DevStakeToken, Weight: 100, MinDeposit: NewAmount(big.NewInt(100)), LockedBlocks: 5},
		},
	}
	for _, acc := range accs[1:] {
		for _, asset := range []meta.Address{meta.NativeAsset, DevStakeToken} {
			cfg.Balances = append(cfg.Balances, Balance{asset, acc.Address, NewAmount(meta.ToWei(1000))})
		}
	}
	return cfg
}
