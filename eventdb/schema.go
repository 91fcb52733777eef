// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `
create table if not exists event (
	seq integer primary key,
	kind text not null,
	poolID integer,
	account blob(20),
	asset blob(20),
	amount blob,
	weight integer,
	lockedBlocks integer,
	startBlock integer,
	endBlock integer,
	switchOn integer
);

CREATE INDEX if not exists kindIndex on event(kind);
CREATE INDEX if not exists poolIndex on event(poolID);
CREATE INDEX if not exists accountIndex on event(account);
`

const eventColumns = "seq, kind, poolID, account, asset, amount, weight, lockedBlocks, startBlock, endBlock, switchOn"
