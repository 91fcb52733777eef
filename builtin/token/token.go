// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is a multi asset fungible ledger kept in contract storage.
// The native asset is addressed by meta.NativeAsset.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/metanode/stake/builtin/solidity"
	"github.com/metanode/stake/log"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

var logger = log.WithContext("pkg", "token")

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeAmount      = errors.New("negative amount")
)

var (
	balancesSlot = meta.Blake2b([]byte("balances"))
	suppliesSlot = meta.Blake2b([]byte("supplies"))
)

// Token implements the ledger of every asset.
type Token struct {
	balances *solidity.Mapping[meta.Bytes32, *big.Int]
	supplies *solidity.Mapping[meta.Address, *big.Int]
}

// New create a new instance.
func New(addr meta.Address, state *state.State) *Token {
	ctx := solidity.NewContext("token", addr, state)
	return &Token{
		balances: solidity.NewMapping[meta.Bytes32, *big.Int](ctx, balancesSlot),
		supplies: solidity.NewMapping[meta.Address, *big.Int](ctx, suppliesSlot),
	}
}

func balanceKey(asset, account meta.Address) meta.Bytes32 {
	return meta.Blake2b(asset[:], account[:])
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// BalanceOf returns the balance of account in asset.
func (t *Token) BalanceOf(asset, account meta.Address) (*big.Int, error) {
	return t.balances.Get(balanceKey(asset, account))
}

// TotalSupply returns the minted amount of asset.
func (t *Token) TotalSupply(asset meta.Address) (*big.Int, error) {
	return t.supplies.Get(asset)
}

// Mint credits amount of asset to account.
func (t *Token) Mint(asset, to meta.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	bal, err := t.BalanceOf(asset, to)
	if err != nil {
		return err
	}
	supply, err := t.TotalSupply(asset)
	if err != nil {
		return err
	}
	if err := t.balances.Set(balanceKey(asset, to), bal.Add(bal, amount)); err != nil {
		return err
	}
	logger.Trace("minted", "asset", asset, "to", to, "amount", amount)
	return t.supplies.Set(asset, supply.Add(supply, amount))
}

// Transfer moves amount of asset between accounts. Nothing is written when
// from lacks the balance.
func (t *Token) Transfer(asset, from, to meta.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	fromBal, err := t.BalanceOf(asset, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%v has %v, needs %v", from, fromBal, amount)
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	if err := t.balances.Set(balanceKey(asset, from), fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.BalanceOf(asset, to)
	if err != nil {
		return err
	}
	return t.balances.Set(balanceKey(asset, to), toBal.Add(toBal, amount))
}

// Custody returns a ledger view that moves funds in and out of holder.
func (t *Token) Custody(holder meta.Address) *Custody {
	return &Custody{token: t, holder: holder}
}

// Custody is a ledger bound to the account holding deposited funds.
type Custody struct {
	token  *Token
	holder meta.Address
}

// Holder returns the custody account.
func (c *Custody) Holder() meta.Address {
	return c.holder
}

// TransferIn pulls amount of asset from an account into custody.
func (c *Custody) TransferIn(asset, from meta.Address, amount *big.Int) error {
	return c.token.Transfer(asset, from, c.holder, amount)
}

// TransferOut pays amount of asset from custody to an account.
func (c *Custody) TransferOut(asset, to meta.Address, amount *big.Int) error {
	return c.token.Transfer(asset, c.holder, to, amount)
}

func (c *Custody) BalanceOf(asset, account meta.Address) (*big.Int, error) {
	return c.token.BalanceOf(asset, account)
}
