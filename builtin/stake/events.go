// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/metanode/stake/meta"
)

// EventKind tells which notification an Event carries.
type EventKind uint8

const (
	EventPoolAdded EventKind = iota + 1
	EventRewardTokenChanged
	EventDeposited
	EventUnstakeRequested
	EventWithdrawn
	EventClaimed
	EventPoolWeightUpdated
	EventPoolUpdated
	EventDepositsSwitched
	EventEmissionUpdated
	EventWithdrawPauseSwitched
	EventClaimPauseSwitched
)

var eventNames = map[EventKind]string{
	EventPoolAdded:             "PoolAdded",
	EventRewardTokenChanged:    "RewardTokenChanged",
	EventDeposited:             "Deposited",
	EventUnstakeRequested:      "UnstakeRequested",
	EventWithdrawn:             "Withdrawn",
	EventClaimed:               "Claimed",
	EventPoolWeightUpdated:     "PoolWeightUpdated",
	EventPoolUpdated:           "PoolUpdated",
	EventDepositsSwitched:      "DepositsSwitched",
	EventEmissionUpdated:       "EmissionUpdated",
	EventWithdrawPauseSwitched: "WithdrawPauseSwitched",
	EventClaimPauseSwitched:    "ClaimPauseSwitched",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(name string) (EventKind, bool) {
	for k, n := range eventNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Event is a notification published once the call producing it succeeded.
// Fields a kind does not use are left zero.
type Event struct {
	Kind    EventKind
	Block   uint32 // block of the call
	PoolID  uint64
	Account meta.Address
	Asset   meta.Address
	Amount  *big.Int
	Weight  uint64

	// PoolUpdated
	LockedBlocks uint32
	// EmissionUpdated, Amount holds the reward per block
	StartBlock uint32
	EndBlock   uint32
	// DepositsSwitched, WithdrawPauseSwitched, ClaimPauseSwitched
	On bool
}
