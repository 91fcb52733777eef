// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"github.com/metanode/stake/builtin/solidity"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

var (
	headSlot    = meta.Blake2b([]byte("head"))
	tailSlot    = meta.Blake2b([]byte("tail"))
	entriesSlot = meta.Blake2b([]byte("entries"))
)

// Authority is the role registry. Members of every role are kept in a linked
// list so they can be enumerated in grant order.
type Authority struct {
	context *solidity.Context
	entries *solidity.Mapping[meta.Bytes32, *entry]
	heads   *solidity.Mapping[meta.Bytes32, *meta.Address]
	tails   *solidity.Mapping[meta.Bytes32, *meta.Address]
}

// New create a new instance.
func New(addr meta.Address, state *state.State) *Authority {
	ctx := solidity.NewContext("authority", addr, state)
	return &Authority{
		context: ctx,
		entries: solidity.NewMapping[meta.Bytes32, *entry](ctx, entriesSlot),
		heads:   solidity.NewMapping[meta.Bytes32, *meta.Address](ctx, headSlot),
		tails:   solidity.NewMapping[meta.Bytes32, *meta.Address](ctx, tailSlot),
	}
}

func entryKey(role meta.Bytes32, account meta.Address) meta.Bytes32 {
	return meta.Blake2b(role[:], account[:])
}

func (a *Authority) getEntry(role meta.Bytes32, account meta.Address) (*entry, error) {
	return a.entries.Get(entryKey(role, account))
}

func (a *Authority) setEntry(role meta.Bytes32, account meta.Address, e *entry) error {
	if e.IsEmpty() {
		a.entries.Delete(entryKey(role, account))
		return nil
	}
	return a.entries.Set(entryKey(role, account), e)
}

func (a *Authority) getPtr(m *solidity.Mapping[meta.Bytes32, *meta.Address], role meta.Bytes32) (*meta.Address, error) {
	exists, err := m.Exists(role)
	if err != nil || !exists {
		return nil, err
	}
	return m.Get(role)
}

func (a *Authority) setPtr(m *solidity.Mapping[meta.Bytes32, *meta.Address], role meta.Bytes32, addr *meta.Address) error {
	if addr == nil {
		m.Delete(role)
		return nil
	}
	return m.Set(role, addr)
}

// HasRole returns whether account holds role.
func (a *Authority) HasRole(role meta.Bytes32, account meta.Address) (bool, error) {
	e, err := a.getEntry(role, account)
	if err != nil {
		return false, err
	}
	return e.Member, nil
}

// IsAuthorized reports whether caller holds role.
func (a *Authority) IsAuthorized(caller meta.Address, role meta.Bytes32) (bool, error) {
	return a.HasRole(role, caller)
}

// Grant appends account to the members of role.
// False is returned if account already holds the role.
func (a *Authority) Grant(role meta.Bytes32, account meta.Address) (bool, error) {
	e, err := a.getEntry(role, account)
	if err != nil {
		return false, err
	}
	if e.Member {
		return false, nil
	}

	tailPtr, err := a.getPtr(a.tails, role)
	if err != nil {
		return false, err
	}
	e.Member = true
	e.Prev = tailPtr
	e.Next = nil

	if tailPtr == nil {
		if err := a.setPtr(a.heads, role, &account); err != nil {
			return false, err
		}
	} else {
		tail, err := a.getEntry(role, *tailPtr)
		if err != nil {
			return false, err
		}
		tail.Next = &account
		if err := a.setEntry(role, *tailPtr, tail); err != nil {
			return false, err
		}
	}
	if err := a.setPtr(a.tails, role, &account); err != nil {
		return false, err
	}
	if err := a.setEntry(role, account, e); err != nil {
		return false, err
	}
	return true, nil
}

// Revoke removes account from the members of role.
// False is returned if account does not hold the role.
func (a *Authority) Revoke(role meta.Bytes32, account meta.Address) (bool, error) {
	e, err := a.getEntry(role, account)
	if err != nil {
		return false, err
	}
	if !e.Member {
		return false, nil
	}

	if e.Prev == nil {
		if err := a.setPtr(a.heads, role, e.Next); err != nil {
			return false, err
		}
	} else {
		prev, err := a.getEntry(role, *e.Prev)
		if err != nil {
			return false, err
		}
		prev.Next = e.Next
		if err := a.setEntry(role, *e.Prev, prev); err != nil {
			return false, err
		}
	}

	if e.Next == nil {
		if err := a.setPtr(a.tails, role, e.Prev); err != nil {
			return false, err
		}
	} else {
		next, err := a.getEntry(role, *e.Next)
		if err != nil {
			return false, err
		}
		next.Prev = e.Prev
		if err := a.setEntry(role, *e.Next, next); err != nil {
			return false, err
		}
	}

	if err := a.setEntry(role, account, &entry{}); err != nil {
		return false, err
	}
	return true, nil
}

// Members lists the holders of role in grant order.
func (a *Authority) Members(role meta.Bytes32) ([]meta.Address, error) {
	ptr, err := a.getPtr(a.heads, role)
	if err != nil {
		return nil, err
	}
	var members []meta.Address
	for ptr != nil {
		members = append(members, *ptr)
		e, err := a.getEntry(role, *ptr)
		if err != nil {
			return nil, err
		}
		ptr = e.Next
	}
	return members, nil
}
