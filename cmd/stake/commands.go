// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/big"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/metanode/stake/builtin"
	"github.com/metanode/stake/builtin/stake"
	"github.com/metanode/stake/eventdb"
	"github.com/metanode/stake/health"
	"github.com/metanode/stake/meta"
)

// withNode opens the databases, bootstraps genesis if needed and runs fn.
func withNode(ctx *cli.Context, fn func(n *node) error) error {
	logLevel := initLogger(ctx)
	// a serving node is unhealthy after missing a few blocks
	h := health.New(3 * ctx.Duration(blockIntervalFlag.Name))

	stop, err := startServers(ctx, logLevel, h)
	if err != nil {
		return err
	}
	defer stop()

	mainDB, eventDB, err := openDatabases(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Debug("closing main database..."); mainDB.Close() }()
	defer func() { logger.Debug("closing event database..."); eventDB.Close() }()

	n, err := newNode(mainDB, eventDB, normalizeCacheSize(ctx.GlobalInt(cacheFlag.Name)), h)
	if err != nil {
		return err
	}
	gene, err := loadGenesis(ctx)
	if err != nil {
		return err
	}
	if _, err := n.Bootstrap(gene); err != nil {
		return err
	}
	return fn(n)
}

func initAction(ctx *cli.Context) error {
	return withNode(ctx, func(n *node) error {
		root, err := n.Genesis()
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "genesis %v at block %d\n", root, n.Block())
		return nil
	})
}

func runAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expect exactly one scenario file")
	}
	sc, err := LoadScenario(ctx.Args().First())
	if err != nil {
		return err
	}
	return withNode(ctx, func(n *node) error {
		return runScenario(ctx.App.Writer, n, sc, ctx.Bool(dumpFlag.Name))
	})
}

func runScenario(w io.Writer, n *node, sc *Scenario, dump bool) error {
	bar := pb.New(len(sc.Steps)).SetMaxWidth(90)
	bar.NotPrint = !isTerminalWriter(w)
	bar.Start()
	defer bar.Finish()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tOP\tBLOCK\tRESULT")
	for i, step := range sc.Steps {
		res, err := step.Run(n)
		if err != nil {
			metricSteps().AddWithLabel(1, map[string]string{"op": step.Op, "status": "error"})
			tw.Flush()
			return errors.Wrapf(err, "step %d", i)
		}
		status := "ok"
		if res.Revert != "" {
			status = "revert"
		}
		metricSteps().AddWithLabel(1, map[string]string{"op": step.Op, "status": status})
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i, step.Op, res.Block, res)
		if dump {
			tw.Flush()
			spew.Fdump(w, step)
		}
		bar.Increment()
	}
	return tw.Flush()
}

func (r *StepResult) String() string {
	switch {
	case r.Revert != "":
		return "revert " + r.Revert
	case r.PoolID != nil:
		return fmt.Sprintf("pool %d", *r.PoolID)
	case r.Paid != nil:
		return "paid " + r.Paid.String()
	default:
		return "ok"
	}
}

func poolsAction(ctx *cli.Context) error {
	return withNode(ctx, func(n *node) error {
		return n.View(func(e *stake.Engine) error {
			return printPools(ctx.App.Writer, e, n.Block(), ctx.Bool(dumpFlag.Name))
		})
	})
}

func printPools(w io.Writer, e *stake.Engine, block uint32, dump bool) error {
	params, err := e.Params()
	if err != nil {
		return err
	}
	count, err := e.PoolLength()
	if err != nil {
		return err
	}
	totalWeight, err := e.TotalWeight()
	if err != nil {
		return err
	}
	if dump {
		spew.Fdump(w, params)
	}
	fmt.Fprintf(w, "block %d, reward token %v, %v per block in [%d, %d], total weight %d\n",
		block, params.RewardToken, params.RewardPerBlock, params.StartBlock, params.EndBlock, totalWeight)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tASSET\tWEIGHT\tSTAKED\tMIN\tLOCK\tOPEN\tLAST\tACC")
	for id := range count {
		p, err := e.Pool(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%v\t%d\t%v\t%v\t%d\t%t\t%d\t%v\n",
			id,
			p.StakeAsset(),
			p.Weight(),
			p.TotalStaked(),
			p.MinDepositAmount(),
			p.UnstakeLockedBlocks(),
			p.AcceptsDeposits(),
			p.LastAccrualBlock(),
			p.AccRewardPerShare(),
		)
	}
	return tw.Flush()
}

func stakeAction(ctx *cli.Context) error {
	account, err := parseAddress(ctx.String(accountFlag.Name))
	if err != nil {
		return err
	}
	id := ctx.Uint64(poolFlag.Name)
	return withNode(ctx, func(n *node) error {
		return n.View(func(e *stake.Engine) error {
			return printStake(ctx.App.Writer, e, id, account, ctx.Bool(dumpFlag.Name))
		})
	})
}

func printStake(w io.Writer, e *stake.Engine, id uint64, account meta.Address, dump bool) error {
	rec, err := e.Stake(id, account)
	if err != nil {
		return err
	}
	pending, err := e.PendingReward(id, account)
	if err != nil {
		return err
	}
	requested, withdrawable, err := e.WithdrawAmount(id, account)
	if err != nil {
		return err
	}
	if dump {
		spew.Fdump(w, rec.Requests())
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "staked\t%v\n", rec.Staked())
	fmt.Fprintf(tw, "pending reward\t%v\n", pending)
	fmt.Fprintf(tw, "requested\t%v\n", requested)
	fmt.Fprintf(tw, "withdrawable\t%v\n", withdrawable)
	for _, req := range rec.Requests() {
		fmt.Fprintf(tw, "  unlock %d\t%v\n", req.UnlockBlock, req.Amount)
	}
	return tw.Flush()
}

func balanceAction(ctx *cli.Context) error {
	account, err := parseAddress(ctx.String(accountFlag.Name))
	if err != nil {
		return err
	}
	assets := make([]meta.Address, 0, ctx.NArg())
	for _, arg := range ctx.Args() {
		asset, err := parseAddress(arg)
		if err != nil {
			return err
		}
		assets = append(assets, asset)
	}
	return withNode(ctx, func(n *node) error {
		tokens := builtin.Token.WithState(n.stater.NewState())
		tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
		for _, asset := range assets {
			bal, err := tokens.BalanceOf(asset, account)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%v\t%v\n", asset, bal)
		}
		return tw.Flush()
	})
}

func eventsAction(ctx *cli.Context) error {
	filter, err := eventFilter(ctx)
	if err != nil {
		return err
	}
	return withNode(ctx, func(n *node) error {
		events, err := n.events.Filter(context.Background(), filter)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "BLOCK\tINDEX\tKIND\tPOOL\tACCOUNT\tAMOUNT")
		for _, ev := range events {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%v\t%v\n", ev.BlockNumber, ev.Index, ev.Kind, ev.PoolID, ev.Account, formatAmount(ev.Amount))
		}
		return tw.Flush()
	})
}

func eventFilter(ctx *cli.Context) (*eventdb.Filter, error) {
	var crit eventdb.Criteria
	hasCrit := false
	if kind := ctx.String(kindFlag.Name); kind != "" {
		if _, ok := stake.ParseEventKind(kind); !ok {
			return nil, errors.Errorf("unknown event kind %q", kind)
		}
		crit.Kind, hasCrit = kind, true
	}
	if ctx.IsSet(poolFlag.Name) {
		id := ctx.Uint64(poolFlag.Name)
		crit.PoolID, hasCrit = &id, true
	}
	if s := ctx.String(accountFlag.Name); s != "" {
		account, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		crit.Account, hasCrit = &account, true
	}

	from, to := ctx.Uint64(fromFlag.Name), ctx.Uint64(toFlag.Name)
	if to == 0 || to > math.MaxUint32 {
		to = math.MaxUint32
	}
	if from > to {
		return nil, errors.Errorf("invalid block range [%d, %d]", from, to)
	}

	filter := &eventdb.Filter{
		Range:   &eventdb.Range{From: uint32(from), To: uint32(to)},
		Options: &eventdb.Options{Limit: ctx.Uint64(limitFlag.Name)},
		Order:   eventdb.ASC,
	}
	if hasCrit {
		filter.CriteriaSet = []*eventdb.Criteria{&crit}
	}
	if ctx.Bool(descFlag.Name) {
		filter.Order = eventdb.DESC
	}
	return filter, nil
}

func formatAmount(v *big.Int) string {
	if v == nil || v.Sign() == 0 {
		return "-"
	}
	return v.String()
}

func serveAction(ctx *cli.Context) error {
	interval := ctx.Duration(blockIntervalFlag.Name)
	return withNode(ctx, func(n *node) error {
		exitCtx, cancel := handleExitSignal()
		defer cancel()

		g, gctx := errgroup.WithContext(exitCtx)
		n.health.NewBestBlock(n.Block())
		if interval > 0 {
			g.Go(func() error {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-ticker.C:
						if err := n.Mine(1); err != nil {
							return err
						}
						logger.Debug("block mined", "number", n.Block())
					}
				}
			})
		}
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
		logger.Info("serving", "block", n.Block(), "interval", interval)
		return g.Wait()
	})
}
