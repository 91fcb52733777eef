// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"database/sql"

	lru "github.com/hashicorp/golang-lru"
)

// stmtCache keeps the prepared statements of recent queries. Evicted
// statements are closed.
type stmtCache struct {
	db    *sql.DB
	cache *lru.Cache
}

func newStmtCache(db *sql.DB, size int) *stmtCache {
	cache, _ := lru.NewWithEvict(size, func(_, value any) {
		_ = value.(*sql.Stmt).Close()
	})
	return &stmtCache{db: db, cache: cache}
}

func (sc *stmtCache) Prepare(query string) (*sql.Stmt, error) {
	if cached, ok := sc.cache.Get(query); ok {
		return cached.(*sql.Stmt), nil
	}
	stmt, err := sc.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	if found, _ := sc.cache.ContainsOrAdd(query, stmt); found {
		// prepared concurrently, use the cached one
		_ = stmt.Close()
		return sc.Prepare(query)
	}
	return stmt, nil
}

func (sc *stmtCache) Len() int {
	return sc.cache.Len()
}

func (sc *stmtCache) Clear() {
	sc.cache.Purge()
}
