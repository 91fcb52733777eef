// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/metanode/stake/builtin/stake"
	"github.com/metanode/stake/builtin/stake/reverts"
	"github.com/metanode/stake/genesis"
	"github.com/metanode/stake/meta"
)

// Scenario is an ordered list of engine calls read from yaml.
type Scenario struct {
	Steps []*Step `yaml:"steps"`
}

// Step is one engine call, or "mine" to advance the clock. Addresses accept
// dev account and asset names. A step naming a Revert code must fail with it.
type Step struct {
	Op           string          `yaml:"op"`
	Caller       string          `yaml:"caller"`
	Account      string          `yaml:"account"`
	Asset        string          `yaml:"asset"`
	Pool         uint64          `yaml:"pool"`
	Amount       *genesis.Amount `yaml:"amount"`
	MinDeposit   *genesis.Amount `yaml:"minDeposit"`
	Weight       uint64          `yaml:"weight"`
	LockedBlocks uint32          `yaml:"lockedBlocks"`
	StartBlock   uint32          `yaml:"startBlock"`
	EndBlock     uint32          `yaml:"endBlock"`
	On           *bool           `yaml:"on"`
	Blocks       uint32          `yaml:"blocks"`
	Revert       string          `yaml:"revert"`
}

// StepResult is the outcome of a step.
type StepResult struct {
	Block  uint32
	Paid   *big.Int
	PoolID *uint64
	Revert string
}

// ParseScenario decodes a yaml scenario and checks every op is known.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	for i, step := range sc.Steps {
		if _, ok := stepOps[step.Op]; !ok {
			return nil, errors.Errorf("step %d: unknown op %q", i, step.Op)
		}
	}
	return &sc, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	return ParseScenario(data)
}

type stepOp func(e *stake.Engine, s *Step, res *StepResult) error

var stepOps = map[string]stepOp{
	"mine": nil,
	"initialize": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddrs(s.Caller, s.Asset, func(caller, token meta.Address) error {
			return e.Initialize(caller, token, s.StartBlock, s.EndBlock, s.Amount.Int())
		})
	},
	"addPool": func(e *stake.Engine, s *Step, res *StepResult) error {
		return withAddrs(s.Caller, s.Asset, func(caller, asset meta.Address) error {
			id, err := e.AddPool(caller, asset, s.Weight, s.MinDeposit.Int(), s.LockedBlocks, s.on(true))
			if err == nil {
				res.PoolID = &id
			}
			return err
		})
	},
	"setRewardToken": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddrs(s.Caller, s.Asset, e.SetRewardToken)
	},
	"setMetaNode": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddrs(s.Caller, s.Asset, e.SetMetaNode)
	},
	"setPoolWeight": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, func(caller meta.Address) error {
			return e.SetPoolWeight(caller, s.Pool, s.Weight)
		})
	},
	"updatePool": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, func(caller meta.Address) error {
			return e.UpdatePool(caller, s.Pool, s.MinDeposit.Int(), s.LockedBlocks)
		})
	},
	"setAcceptsDeposits": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, func(caller meta.Address) error {
			return e.SetAcceptsDeposits(caller, s.Pool, s.on(true))
		})
	},
	"setStartBlock": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, func(caller meta.Address) error {
			return e.SetStartBlock(caller, s.StartBlock)
		})
	},
	"setEndBlock": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, func(caller meta.Address) error {
			return e.SetEndBlock(caller, s.EndBlock)
		})
	},
	"setRewardPerBlock": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, func(caller meta.Address) error {
			return e.SetRewardPerBlock(caller, s.Amount.Int())
		})
	},
	"pauseWithdraw": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, e.PauseWithdraw)
	},
	"unpauseWithdraw": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, e.UnpauseWithdraw)
	},
	"pauseClaim": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, e.PauseClaim)
	},
	"unpauseClaim": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Caller, e.UnpauseClaim)
	},
	"settleAll": func(e *stake.Engine, _ *Step, _ *StepResult) error {
		return e.SettleAll()
	},
	"deposit": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Account, func(account meta.Address) error {
			return e.Deposit(account, s.Pool, s.Amount.Int())
		})
	},
	"unstake": func(e *stake.Engine, s *Step, _ *StepResult) error {
		return withAddr(s.Account, func(account meta.Address) error {
			return e.Unstake(account, s.Pool, s.Amount.Int())
		})
	},
	"withdraw": func(e *stake.Engine, s *Step, res *StepResult) error {
		return withAddr(s.Account, func(account meta.Address) (err error) {
			res.Paid, err = e.Withdraw(account, s.Pool)
			return
		})
	},
	"claim": func(e *stake.Engine, s *Step, res *StepResult) error {
		return withAddr(s.Account, func(account meta.Address) (err error) {
			res.Paid, err = e.Claim(account, s.Pool)
			return
		})
	},
}

func (s *Step) on(def bool) bool {
	if s.On == nil {
		return def
	}
	return *s.On
}

func withAddr(s string, fn func(addr meta.Address) error) error {
	addr, err := parseAddress(s)
	if err != nil {
		return err
	}
	return fn(addr)
}

func withAddrs(a, b string, fn func(a, b meta.Address) error) error {
	return withAddr(a, func(a meta.Address) error {
		return withAddr(b, func(b meta.Address) error {
			return fn(a, b)
		})
	})
}

// Run executes one step on n. A revert matching s.Revert counts as success.
func (s *Step) Run(n *node) (*StepResult, error) {
	res := &StepResult{Block: n.Block()}
	if s.Op == "mine" {
		if err := n.Mine(s.Blocks); err != nil {
			return nil, err
		}
		res.Block = n.Block()
		return res, nil
	}
	op, ok := stepOps[s.Op]
	if !ok {
		return nil, errors.Errorf("unknown op %q", s.Op)
	}

	err := n.Apply(func(e *stake.Engine) error { return op(e, s, res) })
	var revert *reverts.ErrRevert
	if errors.As(err, &revert) {
		res.Revert = revert.Code()
	} else if err != nil {
		return nil, err
	}
	switch {
	case s.Revert != res.Revert && s.Revert == "":
		return res, errors.Wrapf(err, "%s reverted", s.Op)
	case s.Revert != res.Revert:
		return res, errors.Errorf("%s: want revert %s, got %q", s.Op, s.Revert, res.Revert)
	}
	return res, nil
}
