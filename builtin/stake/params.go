// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/metanode/stake/builtin/solidity"
	"github.com/metanode/stake/builtin/stake/pool"
	"github.com/metanode/stake/meta"
)

var slotParams = meta.BytesToBytes32([]byte("params"))

// Params are the engine wide settings.
type Params struct {
	Initialized    bool
	RewardToken    meta.Address
	StartBlock     uint32
	EndBlock       uint32
	RewardPerBlock *big.Int
	WithdrawPaused bool
	ClaimPaused    bool
}

// Emission returns the reward schedule described by p.
func (p *Params) Emission() *pool.Emission {
	return &pool.Emission{
		StartBlock:     p.StartBlock,
		EndBlock:       p.EndBlock,
		RewardPerBlock: p.rewardPerBlock(),
	}
}

func (p *Params) rewardPerBlock() *big.Int {
	if p.RewardPerBlock == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(p.RewardPerBlock)
}

type paramsService struct {
	raw *solidity.Raw[*Params]
}

func newParamsService(sctx *solidity.Context) *paramsService {
	return &paramsService{solidity.NewRaw[*Params](sctx, slotParams)}
}

func (s *paramsService) Get() (*Params, error) {
	p, err := s.raw.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get params")
	}
	return p, nil
}

func (s *paramsService) Set(p *Params) error {
	if err := s.raw.Set(p); err != nil {
		return errors.Wrap(err, "failed to set params")
	}
	return nil
}
