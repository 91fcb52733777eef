// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/metanode/stake/builtin"
	"github.com/metanode/stake/builtin/stake"
	"github.com/metanode/stake/co"
	"github.com/metanode/stake/eventdb"
	"github.com/metanode/stake/genesis"
	"github.com/metanode/stake/health"
	"github.com/metanode/stake/kv"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

const metaBucket = kv.Bucket("m")

var (
	bestBlockKey = []byte("best-block")
	genesisKey   = []byte("genesis")
)

// node owns the databases and the block clock of a local engine instance.
type node struct {
	meta   kv.Store
	stater *state.Stater
	events *eventdb.EventDB
	health *health.Health
	block  uint32
}

func newNode(store kv.Store, events *eventdb.EventDB, cacheMB int, h *health.Health) (*node, error) {
	n := &node{
		meta:   metaBucket.NewStore(store),
		stater: state.NewStater(store, cacheMB),
		events: events,
		health: h,
	}
	data, err := n.meta.Get(bestBlockKey)
	if err != nil {
		if !n.meta.IsNotFound(err) {
			return nil, errors.Wrap(err, "load best block")
		}
		return n, nil
	}
	if len(data) != 4 {
		return nil, errors.Errorf("corrupted best block %x", data)
	}
	n.block = binary.BigEndian.Uint32(data)
	return n, nil
}

// Block returns the current block.
func (n *node) Block() uint32 {
	return n.block
}

// Bootstrap builds gene into an empty database. It reports false if the
// database already holds a genesis state.
func (n *node) Bootstrap(gene *genesis.Genesis) (bool, error) {
	has, err := n.meta.Has(genesisKey)
	if err != nil {
		return false, errors.Wrap(err, "check genesis")
	}
	if has {
		n.health.Bootstrapped(true)
		return false, nil
	}

	root, events, err := gene.Build(n.stater)
	if err != nil {
		return false, errors.Wrap(err, "build genesis")
	}
	if err := n.insertEvents(events); err != nil {
		return false, err
	}
	if err := n.meta.Put(genesisKey, root.Bytes()); err != nil {
		return false, errors.Wrap(err, "save genesis")
	}
	logger.Info("genesis built", "root", root, "events", len(events))
	n.health.Bootstrapped(true)
	return true, nil
}

// Genesis returns the root of the genesis changes.
func (n *node) Genesis() (meta.Bytes32, error) {
	data, err := n.meta.Get(genesisKey)
	if err != nil {
		return meta.Bytes32{}, errors.Wrap(err, "load genesis")
	}
	return meta.BytesToBytes32(data), nil
}

// Mine advances the clock by blocks.
func (n *node) Mine(blocks uint32) error {
	if blocks > math.MaxUint32-n.block {
		return errors.Errorf("mine %d blocks: clock overflow at block %d", blocks, n.block)
	}
	var data [4]byte
	binary.BigEndian.PutUint32(data[:], n.block+blocks)
	if err := n.meta.Put(bestBlockKey, data[:]); err != nil {
		return errors.Wrap(err, "save best block")
	}
	n.block += blocks
	n.health.NewBestBlock(n.block)
	metricBestBlock().Set(int64(n.block))
	return nil
}

// Apply runs fn against an engine at the current block, then commits the
// state and stores the emitted events. The error of fn is returned after the
// commit since a rejected call leaves the state untouched.
func (n *node) Apply(fn func(engine *stake.Engine) error) error {
	st := n.stater.NewState()
	engine := builtin.Stake.WithState(st, stake.ClockFunc(n.Block))
	defer engine.Close()

	var (
		goes   co.Goes
		events []*stake.Event
		ch     = make(chan *stake.Event)
	)
	sub := engine.SubscribeEvents(ch)
	goes.Go(func() {
		for ev := range ch {
			events = append(events, ev)
		}
	})
	callErr := fn(engine)
	sub.Unsubscribe()
	close(ch)
	goes.Wait()

	if _, err := st.Stage().Commit(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	if err := n.insertEvents(events); err != nil {
		return err
	}
	return callErr
}

// View runs fn against an engine at the current block and drops every change.
func (n *node) View(fn func(engine *stake.Engine) error) error {
	engine := builtin.Stake.WithState(n.stater.NewState(), stake.ClockFunc(n.Block))
	defer engine.Close()
	return fn(engine)
}

func (n *node) insertEvents(events []*stake.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := n.events.Insert(events...); err != nil {
		return errors.Wrap(err, "store events")
	}
	return nil
}
