// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math"
	"math/big"
	"os"

	gomath "github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/metanode/stake/meta"
)

// Config is the yaml description of a genesis state.
type Config struct {
	// Admins receive the admin and upgrade roles. The first one runs the setup calls.
	Admins   []meta.Address `yaml:"admins"`
	Balances []Balance      `yaml:"balances"`
	Engine   Engine         `yaml:"engine"`
	Pools    []Pool         `yaml:"pools"`
}

// Balance mints Amount of Asset to Account.
type Balance struct {
	Asset   meta.Address `yaml:"asset"`
	Account meta.Address `yaml:"account"`
	Amount  *Amount      `yaml:"amount"`
}

// Engine holds the Initialize arguments. A zero EndBlock means no end.
type Engine struct {
	RewardToken    meta.Address `yaml:"rewardToken"`
	StartBlock     uint32       `yaml:"startBlock"`
	EndBlock       uint32       `yaml:"endBlock"`
	RewardPerBlock *Amount      `yaml:"rewardPerBlock"`
	// RewardFund is minted in the reward token to the engine custody.
	RewardFund *Amount `yaml:"rewardFund"`
}

// Pool holds the AddPool arguments. AcceptsDeposits defaults to true.
type Pool struct {
	Asset           meta.Address `yaml:"asset"`
	Weight          uint64       `yaml:"weight"`
	MinDeposit      *Amount      `yaml:"minDeposit"`
	LockedBlocks    uint32       `yaml:"lockedBlocks"`
	AcceptsDeposits *bool        `yaml:"acceptsDeposits"`
}

func (p *Pool) acceptsDeposits() bool {
	return p.AcceptsDeposits == nil || *p.AcceptsDeposits
}

func (e *Engine) endBlock() uint32 {
	if e.EndBlock == 0 {
		return math.MaxUint32
	}
	return e.EndBlock
}

// Amount marshals big.Int as hex or decimal.
type Amount gomath.HexOrDecimal256

// NewAmount returns v as an Amount.
func NewAmount(v *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(v))
}

// Int returns the value, zero for a nil Amount.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(input []byte) error {
	v, ok := gomath.ParseBig256(string(input))
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*a = Amount(*v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a *Amount) MarshalText() ([]byte, error) {
	return (*gomath.HexOrDecimal256)(a).MarshalText()
}

// ParseConfig decodes a yaml config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads a yaml config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis config")
	}
	return ParseConfig(data)
}

// Validate checks what the engine would only reject at build time.
func (c *Config) Validate() error {
	if len(c.Admins) == 0 {
		return errors.New("at least one admin is required")
	}
	for i, b := range c.Balances {
		if b.Amount == nil || b.Amount.Int().Sign() <= 0 {
			return fmt.Errorf("balances[%d]: amount must be a positive integer", i)
		}
	}
	if c.Engine.RewardPerBlock == nil || c.Engine.RewardPerBlock.Int().Sign() <= 0 {
		return errors.New("engine: rewardPerBlock must be a positive integer")
	}
	if c.Engine.StartBlock > c.Engine.endBlock() {
		return fmt.Errorf("engine: startBlock %d after endBlock %d", c.Engine.StartBlock, c.Engine.endBlock())
	}
	return nil
}
