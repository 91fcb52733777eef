// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"math/big"

	"github.com/metanode/stake/builtin/stake"
	"github.com/metanode/stake/meta"
)

// Event is a stored stake.Event.
type Event struct {
	BlockNumber uint32
	Index       uint32
	Kind        string
	PoolID      uint64
	Account     meta.Address
	Asset       meta.Address
	Amount      *big.Int
	Weight      uint64

	LockedBlocks uint32
	StartBlock   uint32
	EndBlock     uint32
	On           bool
}

func newEvent(index uint32, ev *stake.Event) *Event {
	return &Event{
		BlockNumber:  ev.Block,
		Index:        index,
		Kind:         ev.Kind.String(),
		PoolID:       ev.PoolID,
		Account:      ev.Account,
		Asset:        ev.Asset,
		Amount:       ev.Amount,
		Weight:       ev.Weight,
		LockedBlocks: ev.LockedBlocks,
		StartBlock:   ev.StartBlock,
		EndBlock:     ev.EndBlock,
		On:           ev.On,
	}
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive block range. To below From leaves it open ended.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Criteria matches events on every field set.
type Criteria struct {
	Kind    string
	PoolID  *uint64
	Account *meta.Address
}

// Filter selects events matching any of CriteriaSet.
type Filter struct {
	CriteriaSet []*Criteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
