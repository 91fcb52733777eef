// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/qianbin/directcache"

	"github.com/metanode/stake/kv"
)

// StorageBucket prefixes every storage slot in the backing store.
const StorageBucket = kv.Bucket("s")

// Stater is the state creator.
// States created by the same stater share the read cache.
type Stater struct {
	store kv.Store
	cache *directcache.Cache
}

// NewStater create a new stater. cacheSizeMB of zero disables the read cache.
func NewStater(store kv.Store, cacheSizeMB int) *Stater {
	var cache *directcache.Cache
	if cacheSizeMB > 0 {
		cache = directcache.New(cacheSizeMB * 1024 * 1024)
	}
	return &Stater{
		store: StorageBucket.NewStore(store),
		cache: cache,
	}
}

// NewState create a new state object over the latest committed storage.
func (s *Stater) NewState() *State {
	return newState(s.store, s.cache)
}
