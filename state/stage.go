// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/qianbin/directcache"

	"github.com/metanode/stake/kv"
	"github.com/metanode/stake/meta"
)

// Stage abstracts the pending changes of a state.
type Stage struct {
	store   kv.Store
	cache   *directcache.Cache
	changes []change
}

type change struct {
	key []byte
	val rlp.RawValue
}

func newStage(store kv.Store, cache *directcache.Cache, changes map[storageKey]rlp.RawValue) *Stage {
	list := make([]change, 0, len(changes))
	for k, v := range changes {
		list = append(list, change{k.bytes(), v})
	}
	slices.SortFunc(list, func(a, b change) int {
		return bytes.Compare(a.key, b.key)
	})
	return &Stage{store, cache, list}
}

// Len returns the count of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes the digest of all changes, sorted by slot.
func (s *Stage) Hash() meta.Bytes32 {
	return meta.Blake2bFn(func(w io.Writer) {
		for _, c := range s.changes {
			w.Write(c.key)
			rlp.Encode(w, []byte(c.val))
		}
	})
}

// Commit writes all changes into the store in a single batch.
func (s *Stage) Commit() (meta.Bytes32, error) {
	batch := s.store.NewBatch()
	for _, c := range s.changes {
		var err error
		if len(c.val) == 0 {
			err = batch.Delete(c.key)
		} else {
			err = batch.Put(c.key, c.val)
		}
		if err != nil {
			return meta.Bytes32{}, errors.Wrap(err, "stage storage change")
		}
	}
	if err := batch.Write(); err != nil {
		return meta.Bytes32{}, errors.Wrap(err, "commit storage changes")
	}

	if s.cache != nil {
		for _, c := range s.changes {
			if len(c.val) == 0 {
				s.cache.Del(c.key)
			} else {
				s.cache.Set(c.key, c.val)
			}
		}
	}
	metricStorageCommits().Add(1)
	return s.Hash(), nil
}
