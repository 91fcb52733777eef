// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the state and event databases",
	}
	memFlag = cli.BoolFlag{
		Name:  "mem",
		Usage: "keep all databases in memory",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a genesis yaml file, dev genesis if empty",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "state read cache size in MiB",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	poolFlag = cli.Uint64Flag{
		Name:  "pool",
		Usage: "pool id",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "account address or dev account name",
	}
	kindFlag = cli.StringFlag{
		Name:  "kind",
		Usage: "event kind, e.g. Deposited",
	}
	fromFlag = cli.Uint64Flag{
		Name:  "from",
		Usage: "first block of the range",
	}
	toFlag = cli.Uint64Flag{
		Name:  "to",
		Usage: "last block of the range, open ended if zero",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Value: 100,
		Usage: "maximum number of events to print",
	}
	descFlag = cli.BoolFlag{
		Name:  "desc",
		Usage: "newest events first",
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "dump raw values",
	}
	blockIntervalFlag = cli.DurationFlag{
		Name:  "block-interval",
		Usage: "advance one block per interval while serving, disabled if zero",
	}
)
