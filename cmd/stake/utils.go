// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/metanode/stake/admin"
	"github.com/metanode/stake/co"
	"github.com/metanode/stake/eventdb"
	"github.com/metanode/stake/genesis"
	"github.com/metanode/stake/health"
	"github.com/metanode/stake/log"
	"github.com/metanode/stake/lvldb"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/metrics"
)

var logger = log.WithContext("pkg", "main")

func initLogger(ctx *cli.Context) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.GlobalBool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, &level)
	} else {
		useColor := isTerminal(os.Stderr) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".metanode-stake")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

// openDatabases opens the state and event databases, in memory with --mem.
func openDatabases(ctx *cli.Context) (*lvldb.LevelDB, *eventdb.EventDB, error) {
	if ctx.GlobalBool(memFlag.Name) {
		mainDB, err := lvldb.NewMem()
		if err != nil {
			return nil, nil, err
		}
		eventDB, err := eventdb.NewMem()
		if err != nil {
			mainDB.Close()
			return nil, nil, err
		}
		return mainDB, eventDB, nil
	}

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return nil, nil, err
	}
	mainDB, err := lvldb.New(filepath.Join(dataDir, "main.db"), lvldb.Options{
		CacheSize:              normalizeCacheSize(ctx.GlobalInt(cacheFlag.Name)),
		OpenFilesCacheCapacity: suggestFDCache(),
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open main database [%v]", dataDir)
	}
	eventDB, err := eventdb.New(filepath.Join(dataDir, "events.db"))
	if err != nil {
		mainDB.Close()
		return nil, nil, errors.Wrapf(err, "open event database [%v]", dataDir)
	}
	return mainDB, eventDB, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 64
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func loadGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.GlobalString(genesisFlag.Name)
	if path == "" {
		return genesis.New(genesis.DevConfig()), nil
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return genesis.New(cfg), nil
}

// namedAddresses are accepted wherever an address is expected.
var namedAddresses = func() map[string]meta.Address {
	m := map[string]meta.Address{
		"native":     meta.NativeAsset,
		"reward":     genesis.DevRewardToken,
		"stakeToken": genesis.DevStakeToken,
	}
	for _, acc := range genesis.DevAccounts() {
		m[acc.Name] = acc.Address
	}
	return m
}()

func parseAddress(s string) (meta.Address, error) {
	s = strings.TrimSpace(s)
	if addr, ok := namedAddresses[s]; ok {
		return addr, nil
	}
	addr, err := meta.ParseAddress(s)
	if err != nil {
		return meta.Address{}, errors.Wrapf(err, "address %q", s)
	}
	return *addr, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	srv := &http.Server{
		Handler:           handlers.CompressHandler(router),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// startServers starts the optional metrics and admin servers. The returned
// func stops whatever was started.
func startServers(ctx *cli.Context, logLevel *slog.LevelVar, h *health.Health) (func(), error) {
	var closers []func()
	stop := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if ctx.GlobalBool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFn, err := startMetricsServer(ctx.GlobalString(metricsAddrFlag.Name))
		if err != nil {
			return nil, err
		}
		logger.Info("metrics server started", "url", url)
		closers = append(closers, func() { logger.Info("stopping metrics server..."); closeFn() })
	}

	if ctx.GlobalBool(enableAdminFlag.Name) {
		url, closeFn, err := admin.StartServer(ctx.GlobalString(adminAddrFlag.Name), logLevel, h)
		if err != nil {
			stop()
			return nil, err
		}
		logger.Info("admin server started", "url", url)
		closers = append(closers, func() { logger.Info("stopping admin server..."); closeFn() })
	}
	return stop, nil
}

func handleExitSignal() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(exitSignalCh)

		select {
		case sig := <-exitSignalCh:
			logger.Info("exit signal received", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
