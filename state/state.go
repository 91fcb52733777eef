// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/qianbin/directcache"

	"github.com/metanode/stake/kv"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr meta.Address
	key  meta.Bytes32
}

// bytes returns the key of the slot in the backing store.
func (k storageKey) bytes() []byte {
	b := make([]byte, 0, meta.AddressLength+32)
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State manages contract storage with checkpoint and revert.
// It is not safe for concurrent use.
type State struct {
	store kv.Store
	cache *directcache.Cache // optional
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object over the given store. It has no read cache and
// reads slots straight from store, without a bucket prefix.
func New(store kv.Store) *State {
	return newState(store, nil)
}

func newState(store kv.Store, cache *directcache.Cache) *State {
	s := &State{
		store: store,
		cache: cache,
	}
	s.sm = stackedmap.New(s.load)
	return s
}

// load implements stackedmap.MapGetter.
func (s *State) load(key storageKey) (rlp.RawValue, bool, error) {
	k := key.bytes()
	if s.cache != nil {
		if v, ok := s.cache.Get(k); ok {
			metricStorageReads().AddWithLabel(1, map[string]string{"source": "cache"})
			return v, true, nil
		}
	}

	v, err := s.store.Get(k)
	if err != nil {
		if s.store.IsNotFound(err) {
			metricStorageReads().AddWithLabel(1, map[string]string{"source": "miss"})
			return nil, true, nil
		}
		return nil, false, err
	}
	metricStorageReads().AddWithLabel(1, map[string]string{"source": "store"})
	if s.cache != nil {
		s.cache.Set(k, v)
	}
	return v, true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr meta.Address, key meta.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr meta.Address, key meta.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr meta.Address, key meta.Bytes32) (meta.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return meta.Bytes32{}, err
	}
	if len(raw) == 0 {
		return meta.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return meta.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return meta.Blake2b(raw), nil
	}
	return meta.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr meta.Address, key, value meta.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(trimLeftZeros(value[:]))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by *Error type.
func (s *State) EncodeStorage(addr meta.Address, key meta.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by *Error type.
func (s *State) DecodeStorage(addr meta.Address, key meta.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage makes a stage object holding the net change of every touched slot.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return newStage(s.store, s.cache, changes)
}

func trimLeftZeros(b []byte) []byte {
	for i, c := range b {
		if c != 0 {
			return b[i:]
		}
	}
	return nil
}
