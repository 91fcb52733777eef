// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb keeps the history of staking events in sqlite.
package eventdb

import (
	"context"
	"database/sql"
	"math"
	"math/big"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/metanode/stake/builtin/stake"
	"github.com/metanode/stake/meta"
)

const stmtCacheSize = 64

type EventDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string

	lock    sync.Mutex
	lastSeq sequence
	hasLast bool
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a memory db lives as long as its connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	var last sql.NullInt64
	if err := db.QueryRow("SELECT MAX(seq) FROM event").Scan(&last); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db, stmtCacheSize),
		driverVersion: driverVer,
		lastSeq:       sequence(last.Int64),
		hasLast:       last.Valid,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the linked sqlite library.
func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Insert stores events in order. Blocks must not go backwards across calls.
func (db *EventDB) Insert(events ...*stake.Event) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	seq, hasLast := db.lastSeq, db.hasLast
	rows := make([]*Event, 0, len(events))
	seqs := make([]sequence, 0, len(events))
	for _, ev := range events {
		var index uint32
		if hasLast {
			if ev.Block < seq.BlockNumber() {
				return errors.Errorf("event at block %d after block %d", ev.Block, seq.BlockNumber())
			}
			if ev.Block == seq.BlockNumber() {
				index = seq.Index() + 1
			}
		}
		seq, hasLast = newSequence(ev.Block, index), true
		rows = append(rows, newEvent(index, ev))
		seqs = append(seqs, seq)
	}

	err := db.execInTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT INTO event(" + eventColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, ev := range rows {
			if _, err := stmt.Exec(
				int64(seqs[i]),
				ev.Kind,
				int64(ev.PoolID),
				ev.Account.Bytes(),
				ev.Asset.Bytes(),
				amountValue(ev.Amount),
				int64(ev.Weight),
				ev.LockedBlocks,
				ev.StartBlock,
				ev.EndBlock,
				ev.On,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "insert events")
	}
	db.lastSeq, db.hasLast = seq, hasLast
	metricInsertedEvents().Add(int64(len(rows)))
	return nil
}

func (db *EventDB) execInTx(proc func(*sql.Tx) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func amountValue(amount *big.Int) []byte {
	if amount == nil {
		return nil
	}
	return amount.Bytes()
}

// Filter returns the events selected by filter, all of them when filter is nil.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query(ctx, "SELECT "+eventColumns+" FROM event ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := "SELECT " + eventColumns + " FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, int64(newSequence(filter.Range.From, 0)))
		stmt += " AND seq >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, int64(newSequence(filter.Range.To, math.MaxInt32)))
			stmt += " AND seq <= ?"
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Kind != "" {
			args = append(args, criteria.Kind)
			stmt += " AND kind = ?"
		}
		if criteria.PoolID != nil {
			args = append(args, int64(*criteria.PoolID))
			stmt += " AND poolID = ?"
		}
		if criteria.Account != nil {
			args = append(args, criteria.Account.Bytes())
			stmt += " AND account = ?"
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += " )"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, int64(filter.Options.Offset), int64(filter.Options.Limit))
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq          int64
			kind         string
			poolID       int64
			account      []byte
			asset        []byte
			amount       []byte
			weight       int64
			lockedBlocks uint32
			startBlock   uint32
			endBlock     uint32
			on           bool
		)
		if err := rows.Scan(
			&seq,
			&kind,
			&poolID,
			&account,
			&asset,
			&amount,
			&weight,
			&lockedBlocks,
			&startBlock,
			&endBlock,
			&on,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BlockNumber:  sequence(seq).BlockNumber(),
			Index:        sequence(seq).Index(),
			Kind:         kind,
			PoolID:       uint64(poolID),
			Account:      meta.BytesToAddress(account),
			Asset:        meta.BytesToAddress(asset),
			Weight:       uint64(weight),
			LockedBlocks: lockedBlocks,
			StartBlock:   startBlock,
			EndBlock:     endBlock,
			On:           on,
		}
		if amount != nil {
			event.Amount = new(big.Int).SetBytes(amount)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
