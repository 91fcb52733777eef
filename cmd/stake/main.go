// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "stake"
	app.Usage = "MetaNode pool staking engine"
	app.Flags = []cli.Flag{
		dataDirFlag,
		memFlag,
		genesisFlag,
		cacheFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "build the genesis state into the data dir",
			Action: initAction,
		},
		{
			Name:      "run",
			Usage:     "run a yaml scenario of engine calls",
			ArgsUsage: "<scenario.yaml>",
			Flags:     []cli.Flag{dumpFlag},
			Action:    runAction,
		},
		{
			Name:   "pools",
			Usage:  "print the engine params and every pool",
			Flags:  []cli.Flag{dumpFlag},
			Action: poolsAction,
		},
		{
			Name:   "stake",
			Usage:  "print the stake record of an account",
			Flags:  []cli.Flag{poolFlag, accountFlag, dumpFlag},
			Action: stakeAction,
		},
		{
			Name:      "balance",
			Usage:     "print token balances of an account",
			ArgsUsage: "<asset>...",
			Flags:     []cli.Flag{accountFlag},
			Action:    balanceAction,
		},
		{
			Name:   "events",
			Usage:  "query stored engine events",
			Flags:  []cli.Flag{kindFlag, poolFlag, accountFlag, fromFlag, toFlag, limitFlag, descFlag},
			Action: eventsAction,
		},
		{
			Name:   "serve",
			Usage:  "keep the node up, serving metrics and admin endpoints",
			Flags:  []cli.Flag{blockIntervalFlag},
			Action: serveAction,
		},
	}
	return app
}
